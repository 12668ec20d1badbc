package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kubecrud/items-api/internal/database"
	"github.com/kubecrud/items-api/internal/item"
	"github.com/kubecrud/items-api/internal/item/service"
	"github.com/kubecrud/items-api/pkg/logger"
)

// Handler exposes the items resource over HTTP.
type Handler struct {
	svc *service.Service
}

func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register mounts the five item routes on r.
func (h *Handler) Register(r gin.IRouter) {
	r.GET("/items", h.List)
	r.GET("/items/:id", h.Get)
	r.POST("/items", h.Create)
	r.PUT("/items/:id", h.Replace)
	r.DELETE("/items/:id", h.Delete)
}

// List returns every item ordered by id.
func (h *Handler) List(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	it, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, it)
}

// Create accepts { name, description? } and returns the stored item.
func (h *Handler) Create(c *gin.Context) {
	var in service.CreateInput
	if !bindBody(c, &in) {
		return
	}
	it, err := h.svc.Create(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, it)
}

// Replace overwrites name and description of an existing item.
func (h *Handler) Replace(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var in service.ReplaceInput
	if !bindBody(c, &in) {
		return
	}
	it, err := h.svc.Replace(c.Request.Context(), id, in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, it)
}

func (h *Handler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// parseID answers 404 for ids that cannot have been issued.
func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return 0, false
	}
	return id, true
}

// bindBody decodes a JSON body. An empty body counts as {}.
func bindBody(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return false
	}
	return true
}

// fail maps service and store errors to a status code. Store failures are
// logged here and never echoed to the client.
func (h *Handler) fail(c *gin.Context, err error) {
	var verr *item.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Message})
	case errors.Is(err, item.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, database.ErrTimeout):
		logger.L().Warn().Err(err).
			Str("request_id", c.GetString("request_id")).
			Str("route", c.FullPath()).
			Msg("database pool exhausted")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "db busy"})
	default:
		logger.L().Error().Err(err).
			Str("request_id", c.GetString("request_id")).
			Str("route", c.FullPath()).
			Msg("database error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
	}
}
