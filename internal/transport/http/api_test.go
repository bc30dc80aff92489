package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"quiz-assessment-service/internal/app"
	"quiz-assessment-service/internal/domain"
	"quiz-assessment-service/internal/infra/memory"
)

func newTestAPI(t *testing.T) (*API, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	store.SetRole("student-1", domain.RoleStudent)
	_ = store.SaveAll(context.Background(), []domain.Question{
		{ID: "q1", QuizID: "quiz-1", Text: "x", Type: domain.SingleChoice,
			Options: []string{"A", "B"}, CorrectAnswers: []string{"A"}, Points: 1},
	})
	feed := app.NewResultFeed()
	submissions := app.NewSubmissionService(store, store, store, store, feed)
	imports := app.NewImportService(store)
	return NewAPI(submissions, imports, feed), store
}

func postJSON(t *testing.T, server *httptest.Server, path string, payload any) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	resp, err := http.Post(server.URL+path, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("post %s: %v", path, err)
	}
	return resp
}

func TestSubmitEndpoint(t *testing.T) {
	api, _ := newTestAPI(t)
	server := httptest.NewServer(api.Router())
	defer server.Close()

	resp := postJSON(t, server, "/api/quizzes/quiz-1/submissions", map[string]any{
		"userId": "student-1",
		"answers": []map[string]any{
			{"questionId": "q1", "selectedAnswer": "A"},
		},
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var result domain.Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if result.Score != 10 || result.CorrectAnswers != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}

	// Second attempt must conflict.
	dup := postJSON(t, server, "/api/quizzes/quiz-1/submissions", map[string]any{
		"userId": "student-1",
		"answers": []map[string]any{
			{"questionId": "q1", "selectedAnswer": "A"},
		},
	})
	defer dup.Body.Close()
	if dup.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 on duplicate, got %d", dup.StatusCode)
	}
}

func TestSubmitEndpointValidation(t *testing.T) {
	api, _ := newTestAPI(t)
	server := httptest.NewServer(api.Router())
	defer server.Close()

	resp := postJSON(t, server, "/api/quizzes/quiz-1/submissions", map[string]any{
		"userId":  "",
		"answers": []map[string]any{},
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestSubmitEndpointUnknownQuestion(t *testing.T) {
	api, _ := newTestAPI(t)
	server := httptest.NewServer(api.Router())
	defer server.Close()

	resp := postJSON(t, server, "/api/quizzes/quiz-1/submissions", map[string]any{
		"userId": "student-1",
		"answers": []map[string]any{
			{"questionId": "ghost", "selectedAnswer": "A"},
		},
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestImportEndpointMixedBatch(t *testing.T) {
	api, store := newTestAPI(t)
	server := httptest.NewServer(api.Router())
	defer server.Close()

	resp := postJSON(t, server, "/api/quizzes/quiz-2/questions/import", map[string]any{
		"questions": []map[string]any{
			{"text": "ok", "type": "single_choice", "options": []string{"A", "B"}, "correctAnswer": "A"},
			{"text": "bad", "type": "single_choice", "options": []string{"A"}, "correctAnswer": "Z"},
		},
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("mixed batch should be 200, got %d", resp.StatusCode)
	}
	var outcome app.ImportOutcome
	if err := json.NewDecoder(resp.Body).Decode(&outcome); err != nil {
		t.Fatalf("decode outcome: %v", err)
	}
	if len(outcome.Imported) != 1 || len(outcome.Failed) != 1 {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
	if persisted, _ := store.FindAllByQuiz(context.Background(), "quiz-2"); len(persisted) != 1 {
		t.Fatalf("expected 1 persisted question, got %d", len(persisted))
	}
}

func TestImportEndpointAllInvalid(t *testing.T) {
	api, _ := newTestAPI(t)
	server := httptest.NewServer(api.Router())
	defer server.Close()

	resp := postJSON(t, server, "/api/quizzes/quiz-2/questions/import", map[string]any{
		"questions": []map[string]any{
			{"text": "bad", "type": "single_choice", "options": []string{"A"}, "correctAnswer": "Z"},
		},
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	var body struct {
		Failed []app.ImportFailure `json:"failed"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Failed) != 1 {
		t.Fatalf("expected failure diagnostics, got %+v", body.Failed)
	}
}

func TestListResultsEndpoint(t *testing.T) {
	api, store := newTestAPI(t)
	server := httptest.NewServer(api.Router())
	defer server.Close()

	_ = store.SaveSubmission(context.Background(), nil, domain.Result{
		ID: "r1", UserID: "student-1", QuizID: "quiz-1", Score: 10,
	})

	resp, err := http.Get(server.URL + "/api/quizzes/quiz-1/results")
	if err != nil {
		t.Fatalf("get results: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var results []domain.Result
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(results) != 1 || results[0].ID != "r1" {
		t.Fatalf("unexpected results: %+v", results)
	}
}
