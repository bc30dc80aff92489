// Package http exposes the assessment engine over REST and a websocket
// results feed. Handlers stay thin: they validate shape, call the services,
// and map the engine's error taxonomy onto status codes.
package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"

	"quiz-assessment-service/internal/app"
	"quiz-assessment-service/internal/codec"
	"quiz-assessment-service/internal/domain"
)

type API struct {
	submissions *app.SubmissionService
	imports     *app.ImportService
	feed        *app.ResultFeed
	validate    *validator.Validate
}

func NewAPI(submissions *app.SubmissionService, imports *app.ImportService, feed *app.ResultFeed) *API {
	return &API{
		submissions: submissions,
		imports:     imports,
		feed:        feed,
		validate:    validator.New(),
	}
}

// Router builds the chi router for the whole service.
func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Route("/api/quizzes/{quizID}", func(r chi.Router) {
		r.Post("/submissions", a.handleSubmit)
		r.Post("/questions/import", a.handleImport)
		r.Get("/results", a.handleListResults)
	})
	r.Get("/ws/results", a.serveResultsFeed)
	return r
}

type submitRequest struct {
	UserID  string                   `json:"userId" validate:"required"`
	Answers []domain.SubmittedAnswer `json:"answers" validate:"required,min=1"`
}

func (a *API) handleSubmit(w http.ResponseWriter, r *http.Request) {
	quizID := chi.URLParam(r, "quizID")

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := a.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	for _, answer := range req.Answers {
		if answer.QuestionID == "" {
			writeError(w, http.StatusBadRequest, "answers require questionId")
			return
		}
	}

	result, err := a.submissions.Submit(r.Context(), quizID, req.UserID, req.Answers)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

type importRequest struct {
	Questions []codec.Definition `json:"questions" validate:"required,min=1"`
}

func (a *API) handleImport(w http.ResponseWriter, r *http.Request) {
	quizID := chi.URLParam(r, "quizID")

	var req importRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := a.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	outcome, err := a.imports.ImportBatch(r.Context(), quizID, req.Questions)
	if errors.Is(err, domain.ErrAllQuestionsInvalid) {
		// Carry the per-item reasons so authors can fix the batch.
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":  domain.ErrAllQuestionsInvalid.Error(),
			"failed": outcome.Failed,
		})
		return
	}
	if err != nil {
		writeEngineError(w, err)
		return
	}
	// A partially failed batch is still a successful import.
	writeJSON(w, http.StatusOK, outcome)
}

func (a *API) handleListResults(w http.ResponseWriter, r *http.Request) {
	quizID := chi.URLParam(r, "quizID")
	results, err := a.submissions.Results(r.Context(), quizID)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if results == nil {
		results = []domain.Result{}
	}
	writeJSON(w, http.StatusOK, results)
}

func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrDuplicateAttempt):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrQuizNotFound),
		errors.Is(err, domain.ErrQuizHasNoQuestions),
		errors.Is(err, domain.ErrUnknownQuestion),
		errors.Is(err, domain.ErrUserNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrQuizHasNoPoints):
		log.Printf("quiz misconfiguration: %v", err)
		writeError(w, http.StatusInternalServerError, "quiz is not gradable")
	default:
		log.Printf("submission failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
