// ABOUTME: Deal pipeline stage enum shared by every component
// ABOUTME: Holds the ordered stage list and the stage to probability table
package models

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Stage is a deal's position in the sales pipeline.
type Stage string

const (
	StageLead        Stage = "Lead"
	StageQualified   Stage = "Qualified"
	StageProposal    Stage = "Proposal"
	StageNegotiation Stage = "Negotiation"
	StageClosed      Stage = "Closed"
)

// Stages is the board order, left to right.
var Stages = []Stage{
	StageLead,
	StageQualified,
	StageProposal,
	StageNegotiation,
	StageClosed,
}

var stageProbabilities = map[Stage]int{
	StageLead:        25,
	StageQualified:   50,
	StageProposal:    75,
	StageNegotiation: 90,
	StageClosed:      100,
}

// DefaultProbability is the win probability the deal form assigns when the
// stage is selected. Unknown stages fall back to the Lead value.
func (s Stage) DefaultProbability() int {
	if p, ok := stageProbabilities[s]; ok {
		return p
	}
	return stageProbabilities[StageLead]
}

// Valid reports whether s is one of the five pipeline stages.
func (s Stage) Valid() bool {
	return s.Index() >= 0
}

// Index returns the column position of s, or -1 for unknown stages.
func (s Stage) Index() int {
	for i, stage := range Stages {
		if stage == s {
			return i
		}
	}
	return -1
}

// Next returns the stage to the right of s, clamped at Closed.
func (s Stage) Next() Stage {
	i := s.Index()
	if i < 0 || i == len(Stages)-1 {
		return s
	}
	return Stages[i+1]
}

// Prev returns the stage to the left of s, clamped at Lead.
func (s Stage) Prev() Stage {
	i := s.Index()
	if i <= 0 {
		return s
	}
	return Stages[i-1]
}

func (s Stage) String() string {
	return string(s)
}

// ParseStage accepts any casing of a stage label ("negotiation", "LEAD").
func ParseStage(value string) (Stage, error) {
	candidate := Stage(cases.Title(language.English).String(strings.TrimSpace(value)))
	if !candidate.Valid() {
		return "", fmt.Errorf("invalid stage: %s (valid: %s)", value, strings.Join(StageNames(), ", "))
	}
	return candidate, nil
}

// StageNames lists the stage labels in board order.
func StageNames() []string {
	names := make([]string, len(Stages))
	for i, s := range Stages {
		names[i] = string(s)
	}
	return names
}
