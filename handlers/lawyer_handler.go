package handlers

import (
	"errors"
	"net/http"

	"github.com/danilovichz/lawpro-v2/models"
	"github.com/danilovichz/lawpro-v2/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// LawyerHandler handles HTTP requests for lawyer search
type LawyerHandler struct {
	searchService *service.LawyerSearchService
}

// NewLawyerHandler creates a new lawyer handler
func NewLawyerHandler(searchService *service.LawyerSearchService) *LawyerHandler {
	return &LawyerHandler{searchService: searchService}
}

// SearchLawyersRequest represents the request body for an ad-hoc search
type SearchLawyersRequest struct {
	County   string `json:"county"`
	State    string `json:"state" binding:"required"`
	CaseType string `json:"caseType"`
}

// SearchForSession handles GET /api/sessions/:id/lawyers
func (h *LawyerHandler) SearchForSession(c *gin.Context) {
	lawyers, err := h.searchService.SearchForSession(c.Request.Context(), c.Param("id"), c.Query("case_type"))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "SEARCH_FAILED", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    lawyers,
		"count":   len(lawyers),
	})
}

// Search handles POST /api/lawyers/search
func (h *LawyerHandler) Search(c *gin.Context) {
	var req SearchLawyersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	state := &models.ConversationState{
		County:   models.StringPtr(req.County),
		State:    models.StringPtr(req.State),
		CaseType: service.CaseTypeFromHint(req.CaseType),
	}

	lawyers := h.searchService.Search(c.Request.Context(), state)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    lawyers,
		"count":   len(lawyers),
	})
}

// GetLawyer handles GET /api/lawyers/:id
func (h *LawyerHandler) GetLawyer(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid lawyer id")
		return
	}

	lawyer, err := h.searchService.Lawyer(c.Request.Context(), id)
	if errors.Is(err, models.ErrLawyerNotFound) {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "Lawyer not found")
		return
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, "SEARCH_FAILED", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    lawyer,
	})
}
