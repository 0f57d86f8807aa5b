// Package handler is the thin HTTP layer over the conversation engine. It
// delegates to the service without embedding flow logic so transport
// concerns stay isolated.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"bhandara/internal/platform/middleware"
	"bhandara/internal/registration/models"
	dErrors "bhandara/pkg/domain-errors"
	"bhandara/pkg/platform/httputil"
)

// Service defines the engine operations the transport needs.
type Service interface {
	Start(ctx context.Context) (string, error)
	Advance(ctx context.Context, id, input string) (*models.StepResult, error)
	List(ctx context.Context, q models.ListQuery) (*models.Page, error)
}

// Handler handles the registration endpoints.
type Handler struct {
	logger  *slog.Logger
	service Service
}

// New creates a new registration Handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, service: service}
}

// Register registers the registration routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/start", h.handleStart)
	r.Post("/process", h.handleProcess)
	r.Get("/registrations", h.handleList)
}

func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	id, err := h.service.Start(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to start conversation",
			"request_id", middleware.GetRequestID(r.Context()),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"conversation_id": id})
}

// processRequest mirrors the client payload. current_step is accepted for
// wire compatibility but deliberately ignored: the engine trusts only its
// own stored step, so a client cannot teleport a conversation.
type processRequest struct {
	ConversationID string `json:"conversation_id"`
	CurrentStep    string `json:"current_step"`
	UserInput      string `json:"user_input"`
}

func (h *Handler) handleProcess(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req processRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid process request",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if req.ConversationID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "conversation_id is required"))
		return
	}

	result, err := h.service.Advance(ctx, req.ConversationID, req.UserInput)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) || dErrors.HasCode(err, dErrors.CodeInvalidState) {
			h.logger.WarnContext(ctx, "process rejected",
				"request_id", middleware.GetRequestID(ctx),
				"conversation_id", req.ConversationID,
				"error", err.Error(),
			)
			httputil.WriteError(w, err)
			return
		}
		h.logger.ErrorContext(ctx, "failed to process step",
			"request_id", middleware.GetRequestID(ctx),
			"conversation_id", req.ConversationID,
			"error", err,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to process step"))
		return
	}

	// Validation rejections ride the same 200 envelope as successes; only
	// protocol failures become HTTP errors.
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	q := models.ListQuery{
		Skip:      intQuery(r, "skip", 0),
		Limit:     intQuery(r, "limit", 100),
		SortBy:    stringQuery(r, "sort_by", "timestamp"),
		SortOrder: stringQuery(r, "sort_order", "desc"),
	}

	page, err := h.service.List(r.Context(), q)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to list registrations",
			"request_id", middleware.GetRequestID(r.Context()),
			"error", err,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to list registrations"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, page)
}

func intQuery(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func stringQuery(r *http.Request, key, fallback string) string {
	if v := r.URL.Query().Get(key); v != "" {
		return v
	}
	return fallback
}
