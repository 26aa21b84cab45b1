package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"lms-quiz-service/internal/app"
	"lms-quiz-service/internal/domain"
)

// userIDHeader carries the acting user's identity. Authentication is
// handled upstream; the service trusts this header.
const userIDHeader = "X-User-ID"

type Handler struct {
	attempts *app.AttemptService
	admin    *app.QuizAdminService
	feed     *app.ResultsFeed
	validate *validator.Validate
	clock    func() time.Time
}

func NewHandler(attempts *app.AttemptService, admin *app.QuizAdminService, feed *app.ResultsFeed) *Handler {
	return NewHandlerWithClock(attempts, admin, feed, time.Now)
}

func NewHandlerWithClock(attempts *app.AttemptService, admin *app.QuizAdminService, feed *app.ResultsFeed, clock func() time.Time) *Handler {
	return &Handler{
		attempts: attempts,
		admin:    admin,
		feed:     feed,
		validate: validator.New(),
		clock:    clock,
	}
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", userIDHeader},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/quizzes", func(r chi.Router) {
		r.Post("/", h.createQuiz)
		r.Route("/{quizID}", func(r chi.Router) {
			r.Get("/", h.getQuiz)
			r.Put("/", h.updateQuiz)
			r.Delete("/", h.deleteQuiz)
			r.Get("/eligible", h.getEligibleQuiz)
			r.Post("/submit", h.submitAnswers)
			r.Get("/attempts", h.listAttempts)
		})
	})

	r.Get("/ws/quizzes/{quizID}/results", h.serveResultsFeed)

	return r
}

func (h *Handler) createQuiz(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	var req createQuizRequest
	if !h.decode(w, r, &req) {
		return
	}
	quiz, err := h.admin.CreateQuiz(r.Context(), userID, req.toDomain())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, quiz)
}

// getQuiz returns the full definition, correct flags included; restricted to
// the owning instructor. Learners use the eligible view instead.
func (h *Handler) getQuiz(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	quizID, ok := h.quizID(w, r)
	if !ok {
		return
	}
	quiz, err := h.admin.GetQuiz(r.Context(), userID, quizID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

func (h *Handler) updateQuiz(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	quizID, ok := h.quizID(w, r)
	if !ok {
		return
	}
	var req createQuizRequest
	if !h.decode(w, r, &req) {
		return
	}
	quiz, err := h.admin.UpdateQuiz(r.Context(), userID, quizID, req.toDomain())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

func (h *Handler) deleteQuiz(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	quizID, ok := h.quizID(w, r)
	if !ok {
		return
	}
	if err := h.admin.DeleteQuiz(r.Context(), userID, quizID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) getEligibleQuiz(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	quizID, ok := h.quizID(w, r)
	if !ok {
		return
	}
	view, err := h.attempts.GetEligibleQuiz(r.Context(), quizID, userID, h.clock())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, eligibleQuizFromDomain(view))
}

func (h *Handler) submitAnswers(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	quizID, ok := h.quizID(w, r)
	if !ok {
		return
	}
	var req submitAnswersRequest
	if !h.decode(w, r, &req) {
		return
	}
	result, err := h.attempts.SubmitAnswers(r.Context(), quizID, userID, req.Answers, h.clock())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) listAttempts(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	quizID, ok := h.quizID(w, r)
	if !ok {
		return
	}
	attempts, err := h.attempts.AttemptHistory(r.Context(), quizID, userID)
	if err != nil {
		writeError(w, err)
		return
	}
	if attempts == nil {
		attempts = []domain.Attempt{}
	}
	writeJSON(w, http.StatusOK, attempts)
}

func (h *Handler) userID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := r.Header.Get(userIDHeader)
	if raw == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: errorBody{
			Kind:    "missing_user",
			Message: "missing " + userIDHeader + " header",
		}})
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: errorBody{
			Kind:    "invalid_user",
			Message: "invalid " + userIDHeader + " header",
		}})
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) quizID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "quizID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: errorBody{
			Kind:    "invalid_quiz_id",
			Message: "quiz id must be a UUID",
		}})
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: errorBody{
			Kind:    "malformed_body",
			Message: "request body is not valid JSON",
		}})
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: errorBody{
			Kind:    "invalid_request",
			Message: err.Error(),
		}})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	status, kind := classifyError(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		log.Printf("internal error: %v", err)
		message = "internal error"
	}
	writeJSON(w, status, errorResponse{Error: errorBody{Kind: kind, Message: message}})
}

func classifyError(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrQuizNotFound):
		return http.StatusNotFound, "quiz_not_found"
	case errors.Is(err, domain.ErrNotStarted):
		return http.StatusConflict, "not_started"
	case errors.Is(err, domain.ErrExpired):
		return http.StatusConflict, "expired"
	case errors.Is(err, domain.ErrAlreadyAttempted):
		return http.StatusConflict, "already_attempted"
	case errors.Is(err, domain.ErrAttemptLimitExceeded):
		return http.StatusConflict, "attempt_limit_exceeded"
	case errors.Is(err, domain.ErrAlreadyCompleted):
		return http.StatusConflict, "already_completed"
	case errors.Is(err, domain.ErrConcurrentConflict):
		return http.StatusConflict, "concurrent_conflict"
	case errors.Is(err, domain.ErrQuizStarted):
		return http.StatusConflict, "quiz_started"
	case errors.Is(err, domain.ErrIncompleteSubmission):
		return http.StatusUnprocessableEntity, "incomplete_submission"
	case errors.Is(err, domain.ErrInvalidOptionReference):
		return http.StatusUnprocessableEntity, "invalid_option_reference"
	case errors.Is(err, domain.ErrInvalidQuiz):
		return http.StatusUnprocessableEntity, "invalid_quiz"
	case errors.Is(err, domain.ErrNotQuizOwner):
		return http.StatusForbidden, "not_quiz_owner"
	default:
		return http.StatusInternalServerError, "internal"
	}
}
