package handler

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"

	"asha/internal/document"
	apperrors "asha/internal/errors"
	"asha/internal/model"
	"asha/internal/service"
)

// ChatHandler serves the conversational endpoints.
type ChatHandler struct {
	chat service.ChatService
}

// NewChatHandler creates a chat handler.
func NewChatHandler(chat service.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

// PlainChatRequest is the body of POST /chat.
type PlainChatRequest struct {
	SessionID string              `json:"sessionId"`
	Text      string              `json:"text"`
	Context   service.ChatContext `json:"context"`
}

// PlainChatResponse is returned by POST /chat.
type PlainChatResponse struct {
	Text      string `json:"text"`
	SessionID string `json:"sessionId"`
}

// ChatRequest is the body of POST /api/gemini. Text is accepted as an alias
// of Message.
type ChatRequest struct {
	SessionID string              `json:"sessionId"`
	Message   string              `json:"message"`
	Text      string              `json:"text"`
	Context   service.ChatContext `json:"context"`
}

// JobLinkRequest is the body of POST /api/analyze-job-link.
type JobLinkRequest struct {
	URL       string `json:"url" validate:"required"`
	SessionID string `json:"sessionId"`
}

// SearchRequest is the body of POST /api/search-opportunities.
type SearchRequest struct {
	Skills     []string `json:"skills"`
	SessionID  string   `json:"sessionId"`
	SearchType string   `json:"searchType"`
}

// FeedbackRequest is the body of POST /api/feedback.
type FeedbackRequest struct {
	SessionID string `json:"sessionId" validate:"required"`
	MessageID string `json:"messageId"`
	Rating    int    `json:"rating" validate:"required,min=1,max=5"`
	Comment   string `json:"comment" validate:"max=2000"`
}

// HistoryResponse is returned by GET /api/chat/history/{sessionId}.
type HistoryResponse struct {
	History  []model.Message `json:"history"`
	UserInfo model.UserInfo  `json:"userInfo"`
}

// PlainChat godoc
// @Summary Keyword chat
// @Description Answers with canned career tips chosen by keyword.
// @Tags chat
// @Accept json
// @Produce json
// @Param request body PlainChatRequest true "Message"
// @Success 200 {object} PlainChatResponse
// @Failure 400 {object} errors.ErrorResponse
// @Router /chat [post]
func (h *ChatHandler) PlainChat(c echo.Context) error {
	var req PlainChatRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}
	if strings.TrimSpace(req.Text) == "" {
		return badRequest("Message is required")
	}

	reply := h.chat.PlainChat(c.Request().Context(), sessionIDOrNew(req.SessionID), req.Text, req.Context)
	return c.JSON(http.StatusOK, PlainChatResponse{Text: reply.Response, SessionID: reply.SessionID})
}

// Converse godoc
// @Summary Assistant chat
// @Description Answers through the language model. Skills found in the message are remembered and matching jobs appended; job portal links are analysed.
// @Tags chat
// @Accept json
// @Produce json
// @Param request body ChatRequest true "Message"
// @Success 200 {object} service.ChatReply
// @Failure 400 {object} errors.ErrorResponse
// @Router /api/gemini [post]
func (h *ChatHandler) Converse(c echo.Context) error {
	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}
	message := req.Message
	if message == "" {
		message = req.Text
	}
	if strings.TrimSpace(message) == "" {
		return badRequest("Message is required")
	}

	reply := h.chat.Converse(c.Request().Context(), sessionIDOrNew(req.SessionID), message, req.Context)
	return c.JSON(http.StatusOK, reply)
}

// UploadResume godoc
// @Summary Resume analysis
// @Description Extracts text and skills from a PDF resume and returns feedback plus matching opportunities.
// @Tags chat
// @Accept multipart/form-data
// @Produce json
// @Param resume formData file true "PDF resume, at most 10MB"
// @Param sessionId formData string false "Session ID"
// @Success 200 {object} service.ResumeReply
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/resume-upload [post]
func (h *ChatHandler) UploadResume(c echo.Context) error {
	fh, err := c.FormFile("resume")
	if err != nil {
		return fail(c, apperrors.ErrInvalidUpload)
	}
	if !isPDF(fh.Header.Get(echo.HeaderContentType), fh.Filename) || fh.Size > document.MaxUploadBytes {
		return fail(c, apperrors.ErrInvalidUpload)
	}

	f, err := fh.Open()
	if err != nil {
		return fail(c, err)
	}
	defer f.Close()

	sessionID := sessionIDOrNew(c.FormValue("sessionId"))
	reply, err := h.chat.AnalyzeResume(c.Request().Context(), sessionID, filepath.Base(fh.Filename), f)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, reply)
}

// AnalyzeJobLink godoc
// @Summary Job posting analysis
// @Tags chat
// @Accept json
// @Produce json
// @Param request body JobLinkRequest true "Job posting URL"
// @Success 200 {object} service.JobLinkReply
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/analyze-job-link [post]
func (h *ChatHandler) AnalyzeJobLink(c echo.Context) error {
	var req JobLinkRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return fail(c, apperrors.ErrInvalidURL)
	}

	reply, err := h.chat.AnalyzeJobLink(c.Request().Context(), sessionIDOrNew(req.SessionID), req.URL)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, reply)
}

// SearchOpportunities godoc
// @Summary Opportunity search
// @Description Searches jobs, events and mentoring programs for the given skills. searchType is all (default), jobs, events or mentoring.
// @Tags opportunities
// @Accept json
// @Produce json
// @Param request body SearchRequest true "Skills and search type"
// @Success 200 {object} service.SearchReply
// @Failure 400 {object} errors.ErrorResponse
// @Router /api/search-opportunities [post]
func (h *ChatHandler) SearchOpportunities(c echo.Context) error {
	var req SearchRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}

	reply, err := h.chat.SearchOpportunities(c.Request().Context(), sessionIDOrNew(req.SessionID), req.Skills, req.SearchType)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, reply)
}

// History godoc
// @Summary Session history
// @Tags chat
// @Produce json
// @Param sessionId path string true "Session ID"
// @Success 200 {object} HistoryResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/chat/history/{sessionId} [get]
func (h *ChatHandler) History(c echo.Context) error {
	sess, err := h.chat.History(c.Param("sessionId"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, HistoryResponse{History: sess.History, UserInfo: sess.UserInfo})
}

func isPDF(contentType, filename string) bool {
	return strings.HasPrefix(strings.ToLower(contentType), "application/pdf") &&
		strings.EqualFold(filepath.Ext(filename), ".pdf")
}

// Feedback godoc
// @Summary Rate a reply
// @Description Records a 1 to 5 rating, with an optional comment, in the session history.
// @Tags chat
// @Accept json
// @Produce json
// @Param request body FeedbackRequest true "Rating"
// @Success 200 {object} map[string]string
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/feedback [post]
func (h *ChatHandler) Feedback(c echo.Context) error {
	var req FeedbackRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest("sessionId and a rating from 1 to 5 are required")
	}

	fb := service.Feedback{MessageID: req.MessageID, Rating: req.Rating, Comment: req.Comment}
	if err := h.chat.Feedback(c.Request().Context(), req.SessionID, fb); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "success",
		"message": "Feedback received",
	})
}
