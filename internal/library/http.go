package library

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/quiz-widget/internal/auth"
	"github.com/gokatarajesh/quiz-widget/internal/quiz"
	httperrors "github.com/gokatarajesh/quiz-widget/pkg/http/errors"
)

// BasePath is the collection route of the library API.
const BasePath = "/library/v1/quizzes"

const maxBodyBytes = 1 << 20

// envelope is the success body of every library response.
type envelope struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// HTTPHandler exposes the library REST endpoints.
type HTTPHandler struct {
	svc    *Service
	logger zerolog.Logger
}

func NewHTTPHandler(svc *Service, logger zerolog.Logger) *HTTPHandler {
	return &HTTPHandler{
		svc:    svc,
		logger: logger.With().Str("component", "library_http").Logger(),
	}
}

// Register mounts the routes on mux behind the auth middleware.
func (h *HTTPHandler) Register(mux *http.ServeMux, authenticate func(http.Handler) http.Handler) {
	protect := func(fn http.HandlerFunc) http.Handler {
		return authenticate(auth.RequireAuth(fn))
	}
	mux.Handle("GET "+BasePath, protect(h.HandleList))
	mux.Handle("POST "+BasePath, protect(h.HandleSave))
	mux.Handle("GET "+BasePath+"/{id}", protect(h.HandleGet))
}

// HandleList serves GET /library/v1/quizzes?page=1&pageSize=20&wisebaseId=inbox
func (h *HTTPHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerOf(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	page := intParam(q.Get("page"), 1)
	pageSize := intParam(q.Get("pageSize"), 0)

	result, err := h.svc.List(r.Context(), owner, q.Get("wisebaseId"), page, pageSize)
	if err != nil {
		h.logger.Error().Err(err).Str("owner", owner.String()).Int("page", page).Msg("list quizzes failed")
		httperrors.RespondError(w, http.StatusInternalServerError, httperrors.ErrCodeListFailed, "Failed to list quizzes")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type saveRequest struct {
	Data       quiz.QuizData `json:"data"`
	WisebaseID string        `json:"wisebaseId,omitempty"`
}

// HandleSave serves POST /library/v1/quizzes with body {"data": QuizData}.
func (h *HTTPHandler) HandleSave(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerOf(w, r)
	if !ok {
		return
	}

	var req saveRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid request body")
		return
	}

	item, err := h.svc.Save(r.Context(), owner, req.WisebaseID, req.Data)
	if err != nil {
		if errors.Is(err, ErrInvalidQuiz) {
			httperrors.RespondValidationError(w, httperrors.ErrCodeValidationFailed, err.Error(), "data")
			return
		}
		h.logger.Error().Err(err).Str("owner", owner.String()).Msg("save quiz failed")
		httperrors.RespondError(w, http.StatusInternalServerError, httperrors.ErrCodeSaveFailed, "Failed to save quiz")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": item.ID})
}

// HandleGet serves GET /library/v1/quizzes/{id}.
func (h *HTTPHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerOf(w, r)
	if !ok {
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidQuizID, "Invalid quiz id")
		return
	}

	item, err := h.svc.Get(r.Context(), owner, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httperrors.RespondNotFound(w, httperrors.ErrCodeQuizNotFound, "Quiz not found")
			return
		}
		h.logger.Error().Err(err).Str("quiz_id", id.String()).Msg("get quiz failed")
		httperrors.RespondInternalError(w, "Failed to load quiz")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func ownerOf(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeAuthenticationRequired, "Authentication required")
		return uuid.Nil, false
	}
	return claims.UserID, true
}

func intParam(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Code: 0, Message: "ok", Data: data})
}
