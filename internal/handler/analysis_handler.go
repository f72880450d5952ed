// internal/handler/analysis_handler.go
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mohittaneja156/AI-Powered-Trust-Safety-System/internal/models"
	"github.com/mohittaneja156/AI-Powered-Trust-Safety-System/internal/service"
)

type AnalysisHandler struct {
	reviews  *service.ReviewAnalyzer
	monitor  *service.StepMonitor
	listings *service.ListingAnalyzer
	verifier *service.VerificationScanner
	logger   *zap.Logger
}

func NewAnalysisHandler(
	reviews *service.ReviewAnalyzer,
	monitor *service.StepMonitor,
	listings *service.ListingAnalyzer,
	verifier *service.VerificationScanner,
	logger *zap.Logger,
) *AnalysisHandler {
	return &AnalysisHandler{
		reviews:  reviews,
		monitor:  monitor,
		listings: listings,
		verifier: verifier,
		logger:   logger,
	}
}

func (h *AnalysisHandler) AnalyzeReview(c *gin.Context) {
	var req models.ReviewAnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.reviews.Analyze(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err, "Failed to analyze review")
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *AnalysisHandler) AnalyzeProductReviews(c *gin.Context) {
	result, err := h.reviews.AnalyzeProduct(c.Request.Context(), c.Param("product_id"))
	if err != nil {
		respondError(c, h.logger, err, "Failed to analyze product reviews")
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *AnalysisHandler) MonitorStep(c *gin.Context) {
	var req models.StepMonitorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.monitor.Monitor(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err, "Failed to monitor step")
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *AnalysisHandler) GetSession(c *gin.Context) {
	session, err := h.monitor.Session(c.Request.Context(), c.Param("product_id"))
	if err != nil {
		respondError(c, h.logger, err, "Failed to load monitoring session")
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *AnalysisHandler) SubmitListing(c *gin.Context) {
	var req models.ListingSubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.listings.Analyze(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err, "Failed to analyze listing")
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *AnalysisHandler) Verify(c *gin.Context) {
	var req models.VerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.verifier.Scan(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err, "Failed to verify product")
		return
	}
	c.JSON(http.StatusOK, result)
}
