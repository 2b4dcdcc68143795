package studyapi

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/vietddude/studyclient/internal/core/domain"
	"github.com/vietddude/studyclient/internal/infra/storage/memory"
	"github.com/vietddude/studyclient/internal/resolve"
)

func sampleSheet(topicID, title string) domain.StudySheet {
	return domain.StudySheet{
		Title:     title,
		TopicID:   topicID,
		TopicName: "Algebra",
		Sections: []domain.Section{
			{Title: "Explanation", Content: "Variables stand for numbers.", Type: domain.SectionExplanation},
		},
		DifficultyLevel: 0.5,
	}
}

func TestFetchStudySheet_AllServerErrorsSynthesize(t *testing.T) {
	b := newBackend()
	b.handle("GET /api/test/studysheet/{id}", fail(http.StatusInternalServerError))
	b.handle("POST /api/generate/studysheet", fail(http.StatusInternalServerError))
	h := newHarness(t, b)
	h.loginAs(t, "tok")

	res, err := h.client.FetchStudySheet(context.Background(), "t1")
	if err != nil {
		t.Fatalf("FetchStudySheet: %v", err)
	}
	if res.Provenance != domain.ProvenanceSynthetic {
		t.Errorf("expected synthetic, got %s", res.Provenance)
	}
	if res.Value.Title != "Comprehensive Study Guide: Algebra" {
		t.Errorf("unexpected title %q", res.Value.Title)
	}
	if res.Value.Provenance != domain.ProvenanceSynthetic {
		t.Errorf("expected entity tagged synthetic, got %s", res.Value.Provenance)
	}

	// fetch-only and direct share the path; each is retried three times.
	if got := b.count("GET /api/test/studysheet/t1"); got != 6 {
		t.Errorf("expected 6 sheet requests, got %d", got)
	}
	if got := b.count("POST /api/generate/studysheet"); got != 3 {
		t.Errorf("expected 3 regenerate requests, got %d", got)
	}
}

func TestFetchStudySheet_StrategyOrder(t *testing.T) {
	b := newBackend()
	b.handle("GET /api/test/studysheet/{id}", fail(http.StatusNotFound))
	b.handle("POST /api/generate/studysheet", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("topic_id") != "t2" {
			t.Errorf("expected topic_id query, got %q", r.URL.RawQuery)
		}
		writeJSON(w, http.StatusOK, sampleSheet("t2", "Fresh sheet"))
	})
	h := newHarness(t, b)
	h.loginAs(t, "tok")

	res, err := h.client.FetchStudySheet(context.Background(), "t2")
	if err != nil {
		t.Fatalf("FetchStudySheet: %v", err)
	}
	if res.Provenance != domain.ProvenanceRegenerated || res.Strategy != "regenerate" {
		t.Errorf("expected regenerated from regenerate, got %s from %s", res.Provenance, res.Strategy)
	}
	if res.Value.Title != "Fresh sheet" {
		t.Errorf("unexpected title %q", res.Value.Title)
	}

	var order []string
	for _, a := range res.Timeline.Attempts {
		order = append(order, a.Strategy)
	}
	want := []string{"fetch-only", "direct", "regenerate"}
	if len(order) != len(want) {
		t.Fatalf("expected attempts %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("attempt %d: expected %s, got %s", i, want[i], order[i])
		}
	}
}

func TestFetchStudySheet_FetchOnlyQuery(t *testing.T) {
	b := newBackend()
	b.handle("GET /api/test/studysheet/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("fetch_only") != "true" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "expected fetch_only"})
			return
		}
		writeJSON(w, http.StatusOK, sampleSheet(r.PathValue("id"), "Stored sheet"))
	})
	h := newHarness(t, b)

	res, err := h.client.FetchStudySheet(context.Background(), "t3")
	if err != nil {
		t.Fatalf("FetchStudySheet: %v", err)
	}
	if res.Strategy != "fetch-only" || res.Provenance != domain.ProvenanceReal {
		t.Errorf("expected real from fetch-only, got %s from %s", res.Provenance, res.Strategy)
	}
	if res.Value.Provenance != domain.ProvenanceReal {
		t.Errorf("expected entity tagged real, got %s", res.Value.Provenance)
	}
}

func TestFetchStudySheet_BackoffSchedule(t *testing.T) {
	b := newBackend()
	b.handle("GET /api/test/studysheet/{id}", fail(http.StatusServiceUnavailable))
	h := newHarness(t, b)

	res, err := h.client.FetchStudySheet(context.Background(), "t1")
	if err != nil {
		t.Fatalf("FetchStudySheet: %v", err)
	}

	var offsets []time.Duration
	for _, a := range res.Timeline.Attempts {
		if a.Strategy == "fetch-only" {
			offsets = append(offsets, a.Start.Sub(res.Timeline.Started))
		}
	}
	want := []time.Duration{0, 200 * time.Millisecond, 600 * time.Millisecond}
	if len(offsets) != len(want) {
		t.Fatalf("expected %d attempts, got %d", len(want), len(offsets))
	}
	for i := range want {
		if offsets[i] != want[i] {
			t.Errorf("attempt %d: expected t=%s, got t=%s", i+1, want[i], offsets[i])
		}
	}
}

func TestFetchStudySheet_Idempotent(t *testing.T) {
	b := newBackend()
	b.handle("GET /api/test/studysheet/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, sampleSheet("t1", "Stored sheet"))
	})
	h := newHarness(t, b)
	ctx := context.Background()

	first, err := h.client.FetchStudySheet(ctx, "t1")
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := h.client.FetchStudySheet(ctx, "t1")
	if err != nil {
		t.Fatalf("second: %v", err)
	}

	a, _ := json.Marshal(first.Value)
	c, _ := json.Marshal(second.Value)
	if string(a) != string(c) {
		t.Errorf("payload drifted:\n%s\n%s", a, c)
	}
	if first.Provenance != second.Provenance || first.Strategy != second.Strategy {
		t.Errorf("provenance drifted: %s/%s vs %s/%s", first.Provenance, first.Strategy, second.Provenance, second.Strategy)
	}
}

func TestFetchStudySheet_ServesCacheWhenBackendDown(t *testing.T) {
	b := newBackend()
	var down atomic.Bool
	b.handle("GET /api/test/studysheet/{id}", func(w http.ResponseWriter, r *http.Request) {
		if down.Load() {
			fail(http.StatusBadGateway)(w, r)
			return
		}
		writeJSON(w, http.StatusOK, sampleSheet("t1", "Stored sheet"))
	})
	h := newHarness(t, b, WithCache(memory.NewCacheRepo()))
	ctx := context.Background()

	if _, err := h.client.FetchStudySheet(ctx, "t1"); err != nil {
		t.Fatalf("warm: %v", err)
	}
	down.Store(true)

	res, err := h.client.FetchStudySheet(ctx, "t1")
	if err != nil {
		t.Fatalf("FetchStudySheet: %v", err)
	}
	if res.Provenance != domain.ProvenanceCached || res.Value.Provenance != domain.ProvenanceCached {
		t.Errorf("expected cached, got %s/%s", res.Provenance, res.Value.Provenance)
	}
	if res.Value.Title != "Stored sheet" {
		t.Errorf("unexpected title %q", res.Value.Title)
	}
}

func TestFetchStudySheet_RequiresTopic(t *testing.T) {
	b := newBackend()
	h := newHarness(t, b)

	_, err := h.client.FetchStudySheet(context.Background(), "")
	if resolve.Classify(err) != resolve.ClassValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if b.total() != 0 {
		t.Errorf("expected zero requests, got %d", b.total())
	}
}

func TestGenerateStudySheet_EnhancedBody(t *testing.T) {
	b := newBackend()
	b.handle("POST /api/generate/enhanced-study-sheet", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			t.Errorf("expected bearer token, got %q", r.Header.Get("Authorization"))
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode: %v", err)
		}
		if body["topic_id"] != "t1" || body["knowledge_level"] != 7.0 || body["education_system"] != "es1" || body["use_textbooks"] != true {
			t.Errorf("unexpected body %v", body)
		}
		writeJSON(w, http.StatusOK, sampleSheet("t1", "Enhanced sheet"))
	})
	h := newHarness(t, b)
	h.loginAs(t, "tok")

	res, err := h.client.GenerateStudySheet(context.Background(), domain.GenerateRequest{
		TopicID:         "t1",
		KnowledgeLevel:  7,
		EducationSystem: "es1",
		UseTextbooks:    true,
	})
	if err != nil {
		t.Fatalf("GenerateStudySheet: %v", err)
	}
	if res.Strategy != "enhanced" || res.Value.Title != "Enhanced sheet" {
		t.Errorf("unexpected result %s %q", res.Strategy, res.Value.Title)
	}
}

func TestGenerateStudySheet_FallsBackToTestSheet(t *testing.T) {
	b := newBackend()
	b.handle("POST /api/generate/enhanced-study-sheet", fail(http.StatusInternalServerError))
	b.handle("POST /api/generate/studysheet", fail(http.StatusBadRequest))
	b.handle("GET /api/test/studysheet/{id}", func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("knowledge_level"); got != "8" {
			t.Errorf("expected knowledge_level 8, got %q", got)
		}
		writeJSON(w, http.StatusOK, sampleSheet(r.PathValue("id"), "Test sheet"))
	})
	h := newHarness(t, b)
	h.loginAs(t, "tok")

	res, err := h.client.GenerateStudySheet(context.Background(), domain.GenerateRequest{TopicID: "t1", KnowledgeLevel: 8})
	if err != nil {
		t.Fatalf("GenerateStudySheet: %v", err)
	}
	if res.Strategy != "test-sheet" || res.Provenance != domain.ProvenanceReal {
		t.Errorf("expected real from test-sheet, got %s from %s", res.Provenance, res.Strategy)
	}
	if got := b.count("POST /api/generate/enhanced-study-sheet"); got != 3 {
		t.Errorf("expected 3 enhanced attempts, got %d", got)
	}
	if got := b.count("POST /api/generate/studysheet"); got != 1 {
		t.Errorf("expected 1 generate attempt, got %d", got)
	}
}

func TestGenerateStudySheet_ValidationRunsNoStrategy(t *testing.T) {
	b := newBackend()
	h := newHarness(t, b)
	h.loginAs(t, "tok")

	_, err := h.client.GenerateStudySheet(context.Background(), domain.GenerateRequest{TopicID: "t1", KnowledgeLevel: 11})
	if resolve.Classify(err) != resolve.ClassValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if b.total() != 0 {
		t.Errorf("expected zero requests, got %d", b.total())
	}
}

func TestGenerateQuestions(t *testing.T) {
	b := newBackend()
	b.handle("POST /api/generate/questions", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("topic_id") != "t1" || q.Get("num_questions") != "5" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		writeJSON(w, http.StatusOK, []domain.Question{{TopicID: "t1", Text: "Solve x + 2 = 5", CorrectAnswer: "3"}})
	})
	h := newHarness(t, b)
	h.loginAs(t, "tok")

	qs, err := h.client.GenerateQuestions(context.Background(), domain.QuestionRequest{TopicID: "t1"})
	if err != nil {
		t.Fatalf("GenerateQuestions: %v", err)
	}
	if len(qs) != 1 || qs[0].CorrectAnswer != "3" {
		t.Errorf("unexpected questions %+v", qs)
	}

	_, err = h.client.GenerateQuestions(context.Background(), domain.QuestionRequest{TopicID: "t1", NumQuestions: 21})
	if resolve.Classify(err) != resolve.ClassValidation {
		t.Errorf("expected validation error for 21 questions, got %v", err)
	}
}

func TestRecommendations_Query(t *testing.T) {
	b := newBackend()
	b.handle("POST /api/generate/recommendations", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("limit") != "5" || q.Get("topic_id") != "t1" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		if r.Header.Get("Authorization") != "Bearer tok" {
			t.Errorf("expected bearer token, got %q", r.Header.Get("Authorization"))
		}
		writeJSON(w, http.StatusOK, []domain.Content{{ID: "c9", TopicID: "t1", Type: "example", Title: "Try this"}})
	})
	h := newHarness(t, b)
	h.loginAs(t, "tok")

	res, err := h.client.Recommendations(context.Background(), RecommendationQuery{TopicID: "t1"})
	if err != nil {
		t.Fatalf("Recommendations: %v", err)
	}
	if res.Strategy != "recommendations" || len(res.Value) != 1 || res.Value[0].Provenance != domain.ProvenanceReal {
		t.Errorf("unexpected result %s %+v", res.Strategy, res.Value)
	}
}

func TestRecommendations_OmitsEmptyTopic(t *testing.T) {
	b := newBackend()
	b.handle("POST /api/generate/recommendations", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Has("topic_id") {
			t.Errorf("topic_id should be omitted, got %s", r.URL.RawQuery)
		}
		writeJSON(w, http.StatusOK, []domain.Content{})
	})
	h := newHarness(t, b)
	h.loginAs(t, "tok")

	if _, err := h.client.Recommendations(context.Background(), RecommendationQuery{Limit: 3}); err != nil {
		t.Fatalf("Recommendations: %v", err)
	}
}

func TestRecommendations_SynthesizesOnFailure(t *testing.T) {
	b := newBackend()
	b.handle("POST /api/generate/recommendations", fail(http.StatusInternalServerError))
	h := newHarness(t, b)
	h.loginAs(t, "tok")

	res, err := h.client.Recommendations(context.Background(), RecommendationQuery{Limit: 2})
	if err != nil {
		t.Fatalf("Recommendations: %v", err)
	}
	if !res.Synthetic() || len(res.Value) != 2 {
		t.Fatalf("expected 2 synthetic recommendations, got %s with %d", res.Provenance, len(res.Value))
	}
	if res.Value[0].TopicID == res.Value[1].TopicID {
		t.Errorf("expected recommendations from different topics, got %+v", res.Value)
	}
}

func TestRecommendations_LoggedOutSynthesizes(t *testing.T) {
	b := newBackend()
	h := newHarness(t, b)

	res, err := h.client.Recommendations(context.Background(), RecommendationQuery{TopicID: "t1", Limit: 2})
	if err != nil {
		t.Fatalf("Recommendations: %v", err)
	}
	if !res.Synthetic() || len(res.Value) != 2 || res.Value[0].TopicID != "t1" {
		t.Errorf("unexpected result %s %+v", res.Provenance, res.Value)
	}
	if b.total() != 0 {
		t.Errorf("expected zero requests without a token, got %d", b.total())
	}
}

func TestRecommendations_LimitBounds(t *testing.T) {
	b := newBackend()
	h := newHarness(t, b)
	h.loginAs(t, "tok")

	for _, limit := range []int{-1, 21} {
		_, err := h.client.Recommendations(context.Background(), RecommendationQuery{Limit: limit})
		if resolve.Classify(err) != resolve.ClassValidation {
			t.Errorf("limit %d: expected validation error, got %v", limit, err)
		}
	}
	if b.total() != 0 {
		t.Errorf("expected zero requests, got %d", b.total())
	}
}
