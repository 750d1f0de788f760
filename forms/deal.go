// ABOUTME: Deal edit form with stage selector and probability tracking
// ABOUTME: Selecting a stage resets probability unless the user overrides it afterwards
package forms

import (
	"context"

	"github.com/harperreed/dealboard/models"
)

// DealForm holds the state of the deal editor between keystrokes.
type DealForm struct {
	Deal              models.Deal
	customProbability bool
}

// NewDealForm opens the editor on an existing deal, or on a blank Lead when
// d has no stage.
func NewDealForm(d models.Deal) *DealForm {
	f := &DealForm{Deal: d.Clone()}
	if f.Deal.Stage == "" {
		f.SelectStage(models.StageLead)
	}
	return f
}

// SelectStage sets the stage and resets probability to the stage default.
func (f *DealForm) SelectStage(stage models.Stage) {
	f.Deal.Stage = stage
	f.Deal.Probability = stage.DefaultProbability()
	f.customProbability = false
}

// SetProbability records a manual probability, clamped to 0-100. It holds
// until the next SelectStage.
func (f *DealForm) SetProbability(p int) {
	f.Deal.Probability = min(max(p, 0), 100)
	f.customProbability = true
}

// CustomProbability reports whether the probability was typed by the user
// since the last stage selection.
func (f *DealForm) CustomProbability() bool {
	return f.customProbability
}

func (f *DealForm) Validate() error {
	return f.problems().OrNil()
}

func (f *DealForm) problems() *ValidationError {
	problems := check(f.Deal)
	if _, ok := problems.Fields["value"]; ok {
		problems.Fields["value"] = "Please enter a valid deal value"
	}
	if _, ok := problems.Fields["contact_id"]; ok {
		problems.Fields["contact_id"] = "Please select a contact"
	}
	return problems
}

// Submit validates the deal, copies the contact's current name onto it and
// saves it. The copied name is not refreshed if the contact changes later.
func (f *DealForm) Submit(ctx context.Context, deals Writer[models.Deal], contacts Reader[models.Contact]) (models.Deal, error) {
	problems := f.problems()
	if err := problems.OrNil(); err != nil {
		return models.Deal{}, err
	}
	contact, err := contacts.GetByID(ctx, f.Deal.ContactID)
	if err != nil {
		return models.Deal{}, err
	}
	f.Deal.ContactName = contact.Name
	return save(ctx, deals, f.Deal.ID, f.Deal, problems)
}
