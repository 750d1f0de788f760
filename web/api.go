// ABOUTME: Entity routes and pipeline, quote, table and report endpoints
// ABOUTME: Every write goes through the same forms the MCP tools and TUI use
package web

import (
	"context"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/harperreed/dealboard/forms"
	"github.com/harperreed/dealboard/models"
	"github.com/harperreed/dealboard/notify"
	"github.com/harperreed/dealboard/pipeline"
	"github.com/harperreed/dealboard/reports"
	"github.com/harperreed/dealboard/viz"
)

func (s *Server) contactResource() resource[models.Contact] {
	return resource[models.Contact]{
		store: s.db.Contacts,
		blank: func() models.Contact { return models.Contact{Status: models.ContactProspect} },
		create: func(ctx context.Context, c models.Contact) (models.Contact, error) {
			c.ID = 0
			return forms.SaveContact(ctx, s.db.Contacts, c)
		},
		update: func(ctx context.Context, id int, c models.Contact) (models.Contact, error) {
			c.ID = id
			return forms.SaveContact(ctx, s.db.Contacts, c)
		},
	}
}

func (s *Server) companyResource() resource[models.Company] {
	return resource[models.Company]{
		store: s.db.Companies,
		blank: func() models.Company { return models.Company{Status: models.CompanyProspect} },
		create: func(ctx context.Context, c models.Company) (models.Company, error) {
			c.ID = 0
			return forms.SaveCompany(ctx, s.db.Companies, c)
		},
		update: func(ctx context.Context, id int, c models.Company) (models.Company, error) {
			c.ID = id
			return forms.SaveCompany(ctx, s.db.Companies, c)
		},
	}
}

// dealResource saves through the deal form. A new deal with no probability
// gets its stage default; an update that changes the stage resets
// probability unless the body also changes it.
func (s *Server) dealResource() resource[models.Deal] {
	return resource[models.Deal]{
		store: s.db.Deals,
		blank: func() models.Deal { return models.Deal{} },
		create: func(ctx context.Context, d models.Deal) (models.Deal, error) {
			form := forms.NewDealForm(models.Deal{})
			if d.Stage != "" {
				form.SelectStage(d.Stage)
			}
			if d.Probability != 0 {
				form.SetProbability(d.Probability)
			}
			copyDealFields(&form.Deal, d)
			deal, err := form.Submit(ctx, s.db.Deals, s.db.Contacts)
			if err != nil {
				return deal, err
			}
			s.board.Replace(deal)
			return deal, nil
		},
		update: func(ctx context.Context, id int, d models.Deal) (models.Deal, error) {
			current, ok := s.board.Deal(id)
			if !ok {
				var err error
				if current, err = s.db.Deals.GetByID(ctx, id); err != nil {
					return current, err
				}
			}
			form := forms.NewDealForm(current)
			if d.Stage != current.Stage {
				form.SelectStage(d.Stage)
			}
			if d.Probability != current.Probability {
				form.SetProbability(d.Probability)
			}
			copyDealFields(&form.Deal, d)
			deal, err := form.Submit(ctx, s.db.Deals, s.db.Contacts)
			if err != nil {
				return deal, err
			}
			s.board.Replace(deal)
			return deal, nil
		},
		removed: func(d models.Deal) { s.board.Remove(d.ID) },
	}
}

func copyDealFields(dst *models.Deal, src models.Deal) {
	dst.Title = src.Title
	dst.Value = src.Value
	dst.ContactID = src.ContactID
	dst.ExpectedCloseDate = src.ExpectedCloseDate
	dst.Notes = src.Notes
}

func (s *Server) activityResource() resource[models.Activity] {
	return resource[models.Activity]{
		store: s.db.Activities,
		blank: func() models.Activity { return models.Activity{Type: models.ActivityNote, Date: s.now()} },
		create: func(ctx context.Context, a models.Activity) (models.Activity, error) {
			a.ID = 0
			return forms.SaveActivity(ctx, s.db.Activities, a)
		},
		update: func(ctx context.Context, id int, a models.Activity) (models.Activity, error) {
			a.ID = id
			return forms.SaveActivity(ctx, s.db.Activities, a)
		},
	}
}

func (s *Server) quoteResource() resource[models.Quote] {
	return resource[models.Quote]{
		store: s.db.Quotes,
		blank: func() models.Quote { return forms.NewQuote(s.now()) },
		create: func(ctx context.Context, q models.Quote) (models.Quote, error) {
			q.ID = 0
			if q.ShippingAddress == (models.Address{}) {
				forms.CopyBillingToShipping(&q)
			}
			return forms.SaveQuote(ctx, s.db.Quotes, q, s.now())
		},
		update: func(ctx context.Context, id int, q models.Quote) (models.Quote, error) {
			q.ID = id
			return forms.SaveQuote(ctx, s.db.Quotes, q, s.now())
		},
	}
}

func (s *Server) orderResource() resource[models.SalesOrder] {
	return resource[models.SalesOrder]{
		store: s.db.SalesOrders,
		blank: func() models.SalesOrder { return forms.NewSalesOrder(s.now()) },
		create: func(ctx context.Context, o models.SalesOrder) (models.SalesOrder, error) {
			o.ID = 0
			return forms.SaveSalesOrder(ctx, s.db.SalesOrders, o, s.now())
		},
		update: func(ctx context.Context, id int, o models.SalesOrder) (models.SalesOrder, error) {
			o.ID = id
			return forms.SaveSalesOrder(ctx, s.db.SalesOrders, o, s.now())
		},
	}
}

func (s *Server) tableResource() resource[models.Table] {
	return resource[models.Table]{
		store: s.db.Tables,
		blank: func() models.Table { return models.Table{} },
		create: func(ctx context.Context, t models.Table) (models.Table, error) {
			t.ID = 0
			return forms.SaveTable(ctx, s.db.Tables, t)
		},
		update: func(ctx context.Context, id int, t models.Table) (models.Table, error) {
			t.ID = id
			return forms.SaveTable(ctx, s.db.Tables, t)
		},
	}
}

type moveRequest struct {
	Stage string `json:"stage" binding:"required"`
}

// handleMoveDeal is the drag-and-drop endpoint. The response carries the
// notifications raised by this move only; on failure the error text is the
// same notification the other boards show.
func (s *Server) handleMoveDeal(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	target, err := models.ParseStage(req.Stage)
	if err != nil {
		target = models.Stage(req.Stage)
	}

	notes := &notify.Recorder{}
	deal, err := s.board.Move(notify.WithNotifier(c.Request.Context(), notes), id, target)
	if err != nil {
		status, body := errorResponse(c, err)
		if last, ok := notes.Last(); ok {
			body["error"] = last.Message
		}
		body["notifications"] = notes.Notes()
		c.AbortWithStatusJSON(status, body)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deal": deal, "notifications": notes.Notes()})
}

func (s *Server) handleConvertQuote(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	order, err := forms.ConvertQuote(c.Request.Context(), s.db.Quotes, s.db.SalesOrders, id, s.now())
	if err != nil {
		if order.ID != 0 {
			c.JSON(http.StatusMultiStatus, gin.H{"order": order, "error": err.Error()})
			return
		}
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (s *Server) handleOrderSummary(c *gin.Context) {
	summary, err := s.db.SalesOrders.Summary(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"total_orders":        summary.TotalOrders,
		"total_revenue":       summary.TotalRevenue.StringFixed(2),
		"average_order_value": summary.AverageOrderValue.StringFixed(2),
		"status_counts":       summary.StatusCounts,
	})
}

func (s *Server) handleAddField(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var field models.Field
	if err := c.ShouldBindJSON(&field); err != nil {
		badRequest(c, err)
		return
	}
	table, err := forms.AddField(c.Request.Context(), s.db.Tables, id, field)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, table)
}

func (s *Server) handleUpdateField(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var field models.Field
	if err := c.ShouldBindJSON(&field); err != nil {
		badRequest(c, err)
		return
	}
	table, err := forms.UpdateField(c.Request.Context(), s.db.Tables, id, c.Param("name"), field)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, table)
}

func (s *Server) handleDeleteField(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	table, err := s.db.Tables.DeleteField(c.Request.Context(), id, c.Param("name"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, table)
}

type stageView struct {
	Stage      models.Stage  `json:"stage"`
	Count      int           `json:"count"`
	TotalValue string        `json:"total_value"`
	AvgValue   string        `json:"avg_value"`
	PctOfTotal string        `json:"pct_of_total"`
	Deals      []models.Deal `json:"deals"`
}

type pipelineView struct {
	Columns            []stageView `json:"columns"`
	TotalCount         int         `json:"total_count"`
	TotalPipelineValue string      `json:"total_pipeline_value"`
	ClosedCount        int         `json:"closed_count"`
	ConversionRate     string      `json:"conversion_rate"`
	AvgDealSize        string      `json:"avg_deal_size"`
}

// handlePipeline returns the board: one column per stage with its deals and
// stats, plus totals. reload=true re-reads the store first.
func (s *Server) handlePipeline(c *gin.Context) {
	if c.Query("reload") == "true" {
		if err := s.board.Load(c.Request.Context()); err != nil {
			writeError(c, err)
			return
		}
	}
	cols := s.board.Columns()
	sum := s.board.Summary()
	view := pipelineView{
		Columns:            make([]stageView, len(cols)),
		TotalCount:         sum.TotalCount,
		TotalPipelineValue: pipeline.FormatCurrency(sum.TotalPipelineValue),
		ClosedCount:        sum.ClosedCount,
		ConversionRate:     pipeline.FormatPercent(sum.ConversionRate),
		AvgDealSize:        pipeline.FormatCurrency(sum.AvgDealSize),
	}
	for i, col := range cols {
		deals := col.Deals
		if deals == nil {
			deals = []models.Deal{}
		}
		view.Columns[i] = stageView{
			Stage:      col.Stage,
			Count:      col.Stats.Count,
			TotalValue: pipeline.FormatCurrency(col.Stats.TotalValue),
			AvgValue:   pipeline.FormatCurrency(col.Stats.AvgValue),
			PctOfTotal: pipeline.FormatPercent(col.Stats.PctOfTotal),
			Deals:      deals,
		}
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) report(c *gin.Context) (reports.Envelope, bool) {
	kind, err := reports.ParseKind(c.Query("type"))
	if err != nil {
		writeError(c, validation("type", err.Error()))
		return reports.Envelope{}, false
	}
	now := s.now()
	r, err := reports.ParseRange(c.Query("from"), c.Query("to"), now)
	if err != nil {
		writeError(c, validation("range", err.Error()))
		return reports.Envelope{}, false
	}
	rep, err := reports.Generate(c.Request.Context(), reports.FromDatabase(s.db), r, now)
	if err != nil {
		writeError(c, err)
		return reports.Envelope{}, false
	}
	return reports.NewEnvelope(kind, rep), true
}

// handleReport returns the report envelope for ?type=&from=&to=.
func (s *Server) handleReport(c *gin.Context) {
	env, ok := s.report(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, env)
}

// handleExport downloads the report as json, csv or a sqlite file.
func (s *Server) handleExport(c *gin.Context) {
	format, err := reports.ParseFormat(c.DefaultQuery("format", "json"))
	if err != nil {
		writeError(c, validation("format", err.Error()))
		return
	}
	env, ok := s.report(c)
	if !ok {
		return
	}
	name := env.FileName(format)

	if format == reports.FormatSQLite {
		dir, err := os.MkdirTemp("", "dealboard-export-")
		if err != nil {
			writeError(c, err)
			return
		}
		defer os.RemoveAll(dir)
		path, err := reports.ExportFile(dir, format, env)
		if err != nil {
			writeError(c, err)
			return
		}
		c.FileAttachment(path, filepath.Base(path))
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Header("Content-Type", format.ContentType())
	c.Status(http.StatusOK)
	if err := reports.Write(c.Writer, format, env); err != nil {
		_ = c.Error(err)
	}
}

func (s *Server) handleDashboard(c *gin.Context) {
	stats, err := viz.GenerateDashboardStats(c.Request.Context(), s.db, s.now())
	if err != nil {
		writeError(c, err)
		return
	}
	c.String(http.StatusOK, viz.RenderDashboard(stats))
}

func validation(field, message string) error {
	err := &forms.ValidationError{}
	err.Add(field, message)
	return err
}
