// ABOUTME: Generic JSON CRUD routes over a record store
// ABOUTME: Maps store and form errors to HTTP status codes
package web

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/harperreed/dealboard/forms"
	"github.com/harperreed/dealboard/notify"
	"go.uber.org/zap"
)

// lister is the read and delete surface shared by every store.
type lister[T any] interface {
	GetAll(ctx context.Context) ([]T, error)
	GetByID(ctx context.Context, id int) (T, error)
	Delete(ctx context.Context, id int) (T, error)
}

// resource describes one entity's routes. create and update receive the
// request body decoded onto blank or the current record and save it through
// the entity's form.
type resource[T any] struct {
	store   lister[T]
	blank   func() T
	create  func(ctx context.Context, rec T) (T, error)
	update  func(ctx context.Context, id int, rec T) (T, error)
	removed func(rec T)
}

func registerResource[T any](g *gin.RouterGroup, path string, r resource[T]) {
	g.GET("/"+path, r.list)
	g.GET("/"+path+"/:id", r.get)
	g.POST("/"+path, r.post)
	g.PUT("/"+path+"/:id", r.put)
	g.PATCH("/"+path+"/:id", r.put)
	g.DELETE("/"+path+"/:id", r.delete)
}

func (r resource[T]) list(c *gin.Context) {
	items, err := r.store.GetAll(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (r resource[T]) get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	item, err := r.store.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (r resource[T]) post(c *gin.Context) {
	rec := r.blank()
	if err := c.ShouldBindJSON(&rec); err != nil {
		badRequest(c, err)
		return
	}
	created, err := r.create(c.Request.Context(), rec)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// put decodes the body over the current record, so absent fields keep their
// values.
func (r resource[T]) put(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	current, err := r.store.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	if err := c.ShouldBindJSON(&current); err != nil {
		badRequest(c, err)
		return
	}
	updated, err := r.update(c.Request.Context(), id, current)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (r resource[T]) delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	removed, err := r.store.Delete(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	if r.removed != nil {
		r.removed(removed)
	}
	c.Status(http.StatusNoContent)
}

func pathID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid id: " + c.Param("id")})
		return 0, false
	}
	return id, true
}

func badRequest(c *gin.Context, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
}

// writeError maps not-found to 404, validation problems to 422 and anything
// else to 500. The error is logged once here.
func writeError(c *gin.Context, err error) {
	status, body := errorResponse(c, err)
	c.AbortWithStatusJSON(status, body)
}

func errorResponse(c *gin.Context, err error) (int, gin.H) {
	_ = c.Error(err)
	body := gin.H{"error": notify.Message(err)}

	var status int
	switch notify.Classify(err) {
	case notify.NotFound:
		status = http.StatusNotFound
	case notify.ValidationFailed:
		status = http.StatusUnprocessableEntity
		var verr *forms.ValidationError
		if errors.As(err, &verr) {
			body["fields"] = verr.Fields
		}
	default:
		status = http.StatusInternalServerError
		requestLogger(c).Error("request failed", zap.Error(err))
	}
	return status, body
}
