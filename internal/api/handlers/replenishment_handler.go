package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/andresuchdata/replenish/internal/cache"
	"github.com/andresuchdata/replenish/internal/classification"
	"github.com/andresuchdata/replenish/internal/domain"
	"github.com/andresuchdata/replenish/internal/export"
	"github.com/andresuchdata/replenish/internal/replenishment"
	"github.com/andresuchdata/replenish/internal/repository"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ReplenishmentService is what the REST handlers need from the service layer.
type ReplenishmentService interface {
	Result(ctx context.Context, filter domain.ReplenishmentFilter) (*replenishment.Result, error)
	GetProjection(ctx context.Context, filter domain.ReplenishmentFilter, skuCode string) (*replenishment.SKUProjection, error)
	GetMeetingSummary(ctx context.Context, filter domain.ReplenishmentFilter) (string, error)
	RecordRun(ctx context.Context, filter domain.ReplenishmentFilter) (*domain.Run, error)
	GetLatestRun(ctx context.Context) (*domain.Run, error)
}

// Reclassifier recomputes the ABC/XYZ classification.
type Reclassifier interface {
	Reclassify(ctx context.Context) (*classification.Result, error)
}

type ReplenishmentHandler struct {
	service      ReplenishmentService
	reclassifier Reclassifier
}

func NewReplenishmentHandler(service ReplenishmentService, reclassifier Reclassifier) *ReplenishmentHandler {
	return &ReplenishmentHandler{service: service, reclassifier: reclassifier}
}

func (h *ReplenishmentHandler) parseFilter(c *gin.Context) (domain.ReplenishmentFilter, bool) {
	var filter domain.ReplenishmentFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query", "details": err.Error()})
		return filter, false
	}
	return filter.Normalize(), true
}

func (h *ReplenishmentHandler) result(c *gin.Context) (*replenishment.Result, bool) {
	filter, ok := h.parseFilter(c)
	if !ok {
		return nil, false
	}
	res, err := h.service.Result(c.Request.Context(), filter)
	if err != nil {
		respondError(c, "failed to compute replenishment", err)
		return nil, false
	}
	return res, true
}

func (h *ReplenishmentHandler) GetSummary(c *gin.Context) {
	res, ok := h.result(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, res.Summary)
}

// GetProjections lists projections, optionally narrowed by ?urgency=.
func (h *ReplenishmentHandler) GetProjections(c *gin.Context) {
	var urgency replenishment.Urgency
	if raw := strings.TrimSpace(c.Query("urgency")); raw != "" {
		u, err := replenishment.ParseUrgency(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		urgency = u
	}

	res, ok := h.result(c)
	if !ok {
		return
	}

	projections := res.Projections
	if urgency != "" {
		projections = make([]replenishment.SKUProjection, 0)
		for _, p := range res.Projections {
			if p.Urgency == urgency {
				projections = append(projections, p)
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"current_week": res.Summary.CurrentWeek,
		"total":        len(projections),
		"projections":  projections,
	})
}

func (h *ReplenishmentHandler) GetProjection(c *gin.Context) {
	filter, ok := h.parseFilter(c)
	if !ok {
		return
	}

	p, err := h.service.GetProjection(c.Request.Context(), filter, c.Param("sku"))
	if err != nil {
		respondError(c, "failed to fetch projection", err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// GetSuggestions returns JSON, or CSV with ?format=csv.
func (h *ReplenishmentHandler) GetSuggestions(c *gin.Context) {
	res, ok := h.result(c)
	if !ok {
		return
	}

	if strings.EqualFold(c.Query("format"), "csv") {
		var buf bytes.Buffer
		if err := export.WriteSuggestionsCSV(&buf, res.Suggestions); err != nil {
			respondError(c, "failed to export suggestions", err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=suggestions-w%02d.csv", res.Summary.CurrentWeek))
		c.Data(http.StatusOK, "text/csv", buf.Bytes())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"current_week": res.Summary.CurrentWeek,
		"total":        len(res.Suggestions),
		"suggestions":  res.Suggestions,
	})
}

func (h *ReplenishmentHandler) GetPurchaseOrders(c *gin.Context) {
	res, ok := h.result(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"current_week":    res.Summary.CurrentWeek,
		"purchase_orders": res.PurchaseOrders,
	})
}

func (h *ReplenishmentHandler) ExportPurchaseOrders(c *gin.Context) {
	res, ok := h.result(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := export.WritePurchaseOrdersWorkbook(&buf, res.PurchaseOrders, res.Summary.CurrentWeek); err != nil {
		respondError(c, "failed to export purchase orders", err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=purchase-orders-w%02d.xlsx", res.Summary.CurrentWeek))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

func (h *ReplenishmentHandler) GetRiskReport(c *gin.Context) {
	res, ok := h.result(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, res.Risk)
}

func (h *ReplenishmentHandler) GetMeetingSummary(c *gin.Context) {
	filter, ok := h.parseFilter(c)
	if !ok {
		return
	}

	text, err := h.service.GetMeetingSummary(c.Request.Context(), filter)
	if err != nil {
		respondError(c, "failed to render meeting summary", err)
		return
	}
	c.String(http.StatusOK, text)
}

func (h *ReplenishmentHandler) CreateRun(c *gin.Context) {
	filter, ok := h.parseFilter(c)
	if !ok {
		return
	}

	run, err := h.service.RecordRun(c.Request.Context(), filter)
	if err != nil {
		respondError(c, "failed to record run", err)
		return
	}
	c.JSON(http.StatusCreated, run)
}

func (h *ReplenishmentHandler) GetLatestRun(c *gin.Context) {
	run, err := h.service.GetLatestRun(c.Request.Context())
	if err != nil {
		respondError(c, "failed to fetch latest run", err)
		return
	}
	c.JSON(http.StatusOK, run)
}

func (h *ReplenishmentHandler) Reclassify(c *gin.Context) {
	if h.reclassifier == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "classification is not configured"})
		return
	}

	res, err := h.reclassifier.Reclassify(c.Request.Context())
	if err != nil {
		respondError(c, "failed to reclassify", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"total":           len(res.Classes),
		"estimated_count": res.Estimated,
		"cell_counts":     res.CellCounts,
	})
}

// respondError maps service errors onto HTTP statuses.
func respondError(c *gin.Context, message string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, replenishment.ErrInvalidCurrentWeek):
		status = http.StatusBadRequest
	case errors.Is(err, repository.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, cache.ErrLockNotObtained):
		status = http.StatusConflict
	}

	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg(message)
	}
	c.JSON(status, gin.H{"error": message, "details": err.Error()})
}
