package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"asha/internal/model"
	"asha/internal/service"
)

// ListingHandler serves the session-less listing endpoints.
type ListingHandler struct {
	chat service.ChatService
}

// NewListingHandler creates a listing handler.
func NewListingHandler(chat service.ChatService) *ListingHandler {
	return &ListingHandler{chat: chat}
}

// ListingResponse wraps the listings for one category.
type ListingResponse struct {
	Category model.Category      `json:"category"`
	Results  []model.Opportunity `json:"results"`
}

// Jobs godoc
// @Summary Job listings
// @Tags opportunities
// @Produce json
// @Param q query string true "Comma separated skills"
// @Success 200 {object} ListingResponse
// @Failure 400 {object} errors.ErrorResponse
// @Router /api/jobs [get]
func (h *ListingHandler) Jobs(c echo.Context) error {
	return h.list(c, model.CategoryJobs)
}

// Events godoc
// @Summary Event listings
// @Tags opportunities
// @Produce json
// @Param q query string true "Comma separated skills"
// @Success 200 {object} ListingResponse
// @Failure 400 {object} errors.ErrorResponse
// @Router /api/events [get]
func (h *ListingHandler) Events(c echo.Context) error {
	return h.list(c, model.CategoryEvents)
}

// Mentorship godoc
// @Summary Mentoring program listings
// @Tags opportunities
// @Produce json
// @Param q query string true "Comma separated skills"
// @Success 200 {object} ListingResponse
// @Failure 400 {object} errors.ErrorResponse
// @Router /api/mentorship [get]
func (h *ListingHandler) Mentorship(c echo.Context) error {
	return h.list(c, model.CategoryMentoring)
}

func (h *ListingHandler) list(c echo.Context, category model.Category) error {
	skills := strings.Split(c.QueryParam("q"), ",")
	results, err := h.chat.Listings(c.Request().Context(), skills, category)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, ListingResponse{Category: category, Results: results})
}
