// internal/handler/flag_handler.go
package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mohittaneja156/AI-Powered-Trust-Safety-System/internal/models"
	"github.com/mohittaneja156/AI-Powered-Trust-Safety-System/internal/service"
)

type FlagHandler struct {
	registry *service.FlagRegistry
	triage   *service.TriageController
	logger   *zap.Logger
}

func NewFlagHandler(registry *service.FlagRegistry, triage *service.TriageController, logger *zap.Logger) *FlagHandler {
	return &FlagHandler{
		registry: registry,
		triage:   triage,
		logger:   logger,
	}
}

func (h *FlagHandler) ListFlags(c *gin.Context) {
	q := models.FlagQuery{
		Text:   c.Query("q"),
		Status: models.FlagStatus(c.Query("status")),
		Sort:   c.DefaultQuery("sort", models.SortBySeverity),
	}
	switch q.Sort {
	case models.SortBySeverity, models.SortByDate, models.SortByID:
	default:
		badRequest(c, fmt.Errorf("unknown sort %q", q.Sort))
		return
	}

	flags, err := h.registry.List(c.Request.Context(), q)
	if err != nil {
		respondError(c, h.logger, err, "Failed to list flags")
		return
	}
	c.JSON(http.StatusOK, gin.H{"flags": flags, "total": len(flags)})
}

func (h *FlagHandler) EscalateFlag(c *gin.Context) {
	var req models.NewFlag
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	flag, err := h.registry.Escalate(c.Request.Context(), req, c.GetHeader(OperatorHeader))
	if err != nil {
		respondError(c, h.logger, err, "Failed to create flag")
		return
	}
	c.JSON(http.StatusCreated, flag)
}

func (h *FlagHandler) GetFlag(c *gin.Context) {
	detail, err := h.registry.Detail(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err, "Failed to get flag")
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *FlagHandler) Investigate(c *gin.Context) {
	flag, err := h.registry.MarkInvestigating(c.Request.Context(), c.Param("id"), c.GetHeader(OperatorHeader))
	if err != nil {
		respondError(c, h.logger, err, "Failed to update flag")
		return
	}
	c.JSON(http.StatusOK, flag)
}

func (h *FlagHandler) ApplyAction(c *gin.Context) {
	var req models.ActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	flag, err := h.triage.ApplyAction(c.Request.Context(), c.Param("id"), req.Action, req.Note, c.GetHeader(OperatorHeader))
	if err != nil {
		respondError(c, h.logger, err, "Failed to apply action")
		return
	}
	c.JSON(http.StatusOK, flag)
}

func (h *FlagHandler) AddNote(c *gin.Context) {
	var req models.NoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	flag, err := h.triage.AddNote(c.Request.Context(), c.Param("id"), req.Note, c.GetHeader(OperatorHeader))
	if err != nil {
		respondError(c, h.logger, err, "Failed to add note")
		return
	}
	c.JSON(http.StatusCreated, flag)
}

func (h *FlagHandler) SeverityStats(c *gin.Context) {
	counts, err := h.registry.SeverityCounts(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "Failed to count flags")
		return
	}
	c.JSON(http.StatusOK, counts)
}

func (h *FlagHandler) TrendStats(c *gin.Context) {
	series, err := h.registry.Trends(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "Failed to build trends")
		return
	}
	c.JSON(http.StatusOK, series)
}
