package studyapi

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/vietddude/studyclient/internal/core/domain"
	"github.com/vietddude/studyclient/internal/infra/api"
	"github.com/vietddude/studyclient/internal/infra/storage"
	"github.com/vietddude/studyclient/internal/resolve"
	"github.com/vietddude/studyclient/internal/synth"
)

func tagSheet(s domain.StudySheet, p domain.Provenance) domain.StudySheet {
	s.Provenance = p
	return s
}

func sheetKey(topicID string) string {
	return storage.Key(OpFetchStudySheet, topicID)
}

// requestSheet sends req and checks the response looks like a study sheet.
func (c *Client) requestSheet(ctx context.Context, req api.Request, topicID string, p domain.Provenance) (domain.StudySheet, error) {
	sheet, err := call[domain.StudySheet](ctx, c.transport, req)
	if err != nil {
		return sheet, err
	}
	if sheet.Title == "" && len(sheet.Sections) == 0 {
		return sheet, &resolve.Error{Class: resolve.ClassDecode, Op: req.Method + " " + req.Path, Err: errors.New("response is not a study sheet")}
	}
	if sheet.TopicID == "" {
		sheet.TopicID = topicID
	}
	return tagSheet(sheet, p), nil
}

func testSheetRequest(topicID string, query url.Values) api.Request {
	return api.Request{
		Method:   http.MethodGet,
		Path:     "/api/test/studysheet/" + url.PathEscape(topicID),
		Endpoint: "GET /api/test/studysheet/{id}",
		Query:    query,
	}
}

// regenerateRequest asks the backend to build a new sheet. The backend reads
// topic_id from the query; the body carries it too for older deployments.
func regenerateRequest(topicID string) api.Request {
	return api.Request{
		Method:   http.MethodPost,
		Path:     "/api/generate/studysheet",
		Query:    url.Values{"topic_id": {topicID}},
		Encoding: api.EncodingJSON,
		Body:     map[string]string{"topic_id": topicID},
		Auth:     true,
	}
}

func (c *Client) synthesizeSheet(_ context.Context, topicID string) domain.StudySheet {
	return synth.StudySheet(topicID, c.now())
}

func (c *Client) generateSheetOperation() *resolve.Builder[domain.GenerateRequest, domain.StudySheet] {
	synthesize := func(ctx context.Context, in domain.GenerateRequest) domain.StudySheet {
		return c.synthesizeSheet(ctx, in.TopicID)
	}
	return operation[domain.GenerateRequest, domain.StudySheet](c, OpGenerateStudySheet).
		Shortcut(offlineShortcut(c, synthesize)).
		Strategy("enhanced", domain.ProvenanceReal, func(ctx context.Context, in domain.GenerateRequest) (domain.StudySheet, error) {
			return c.requestSheet(ctx, api.Request{
				Method:   http.MethodPost,
				Path:     "/api/generate/enhanced-study-sheet",
				Encoding: api.EncodingJSON,
				Body:     in,
				Auth:     true,
			}, in.TopicID, domain.ProvenanceReal)
		}).
		Strategy("generate", domain.ProvenanceReal, func(ctx context.Context, in domain.GenerateRequest) (domain.StudySheet, error) {
			return c.requestSheet(ctx, regenerateRequest(in.TopicID), in.TopicID, domain.ProvenanceReal)
		}).
		Strategy("test-sheet", domain.ProvenanceReal, func(ctx context.Context, in domain.GenerateRequest) (domain.StudySheet, error) {
			q := url.Values{"knowledge_level": {strconv.FormatFloat(in.KnowledgeLevel, 'f', -1, 64)}}
			return c.requestSheet(ctx, testSheetRequest(in.TopicID, q), in.TopicID, domain.ProvenanceReal)
		}).
		Synthesize(synthesize)
}

// GenerateStudySheet creates a personalised study sheet. Backend failures
// degrade to a locally generated sheet.
func (c *Client) GenerateStudySheet(ctx context.Context, req domain.GenerateRequest) (resolve.Result[domain.StudySheet], error) {
	if req.KnowledgeLevel == 0 {
		req.KnowledgeLevel = 5
	}
	if err := c.check(req); err != nil {
		return resolve.Result[domain.StudySheet]{}, err
	}
	res, err := c.generateSheet.Resolve(ctx, req)
	if err == nil {
		remember(ctx, c, sheetKey(req.TopicID), res)
	}
	return res, err
}

func (c *Client) fetchSheetOperation() *resolve.Builder[string, domain.StudySheet] {
	b := operation[string, domain.StudySheet](c, OpFetchStudySheet).
		Dedupe(sheetKey).
		Shortcut(offlineShortcut(c, c.synthesizeSheet)).
		Strategy("fetch-only", domain.ProvenanceReal, func(ctx context.Context, topicID string) (domain.StudySheet, error) {
			return c.requestSheet(ctx, testSheetRequest(topicID, url.Values{"fetch_only": {"true"}}), topicID, domain.ProvenanceReal)
		}).
		Strategy("direct", domain.ProvenanceReal, func(ctx context.Context, topicID string) (domain.StudySheet, error) {
			return c.requestSheet(ctx, testSheetRequest(topicID, nil), topicID, domain.ProvenanceReal)
		}).
		Strategy("regenerate", domain.ProvenanceRegenerated, func(ctx context.Context, topicID string) (domain.StudySheet, error) {
			sheet, err := c.requestSheet(ctx, regenerateRequest(topicID), topicID, domain.ProvenanceRegenerated)
			if err == nil {
				return sheet, nil
			}
			var re *resolve.Error
			if !errors.As(err, &re) || re.Class != resolve.ClassDecode {
				return sheet, err
			}
			// Generation succeeded without returning the sheet; read it back.
			return c.requestSheet(ctx, testSheetRequest(topicID, nil), topicID, domain.ProvenanceRegenerated)
		})
	return withCache(c, b, sheetKey, tagSheet).Synthesize(c.synthesizeSheet)
}

// FetchStudySheet returns the stored study sheet of a topic, regenerating it
// when none exists. It never fails for backend reasons.
func (c *Client) FetchStudySheet(ctx context.Context, topicID string) (resolve.Result[domain.StudySheet], error) {
	if topicID == "" {
		return resolve.Result[domain.StudySheet]{}, resolve.Invalid(errRequired("topic id"))
	}
	res, err := c.fetchSheet.Resolve(ctx, topicID)
	if err == nil {
		remember(ctx, c, sheetKey(topicID), res)
	}
	return res, err
}

func (c *Client) generateQuestionsOperation() *resolve.Builder[domain.QuestionRequest, []domain.Question] {
	return operation[domain.QuestionRequest, []domain.Question](c, OpGenerateQuestions).
		Strategy("questions", domain.ProvenanceReal, func(ctx context.Context, in domain.QuestionRequest) ([]domain.Question, error) {
			return call[[]domain.Question](ctx, c.transport, api.Request{
				Method: http.MethodPost,
				Path:   "/api/generate/questions",
				Query: url.Values{
					"topic_id":      {in.TopicID},
					"num_questions": {strconv.Itoa(in.NumQuestions)},
				},
				Encoding: api.EncodingJSON,
				Body:     in,
				Auth:     true,
			})
		})
}

// GenerateQuestions asks the backend for practice questions. There is no
// local fallback.
func (c *Client) GenerateQuestions(ctx context.Context, req domain.QuestionRequest) ([]domain.Question, error) {
	if req.NumQuestions == 0 {
		req.NumQuestions = 5
	}
	if err := c.check(req); err != nil {
		return nil, err
	}
	if err := c.requireSession(ctx); err != nil {
		return nil, err
	}
	res, err := c.generateQuestions.Resolve(ctx, req)
	return res.Value, err
}

// RecommendationQuery asks for suggested learning material, optionally
// limited to one topic.
type RecommendationQuery struct {
	TopicID string
	Limit   int `validate:"gte=1,lte=20"`
}

func (c *Client) recommendationsOperation() *resolve.Builder[RecommendationQuery, []domain.Content] {
	synthesize := func(_ context.Context, q RecommendationQuery) []domain.Content {
		return synth.Recommendations(q.TopicID, q.Limit)
	}
	return operation[RecommendationQuery, []domain.Content](c, OpRecommendations).
		Shortcut(offlineShortcut(c, synthesize)).
		Strategy("recommendations", domain.ProvenanceReal, func(ctx context.Context, q RecommendationQuery) ([]domain.Content, error) {
			query := url.Values{"limit": {strconv.Itoa(q.Limit)}}
			if q.TopicID != "" {
				query.Set("topic_id", q.TopicID)
			}
			items, err := call[[]domain.Content](ctx, c.transport, api.Request{
				Method: http.MethodPost,
				Path:   "/api/generate/recommendations",
				Query:  query,
				Auth:   true,
			})
			return tagContents(items, domain.ProvenanceReal), err
		}).
		Synthesize(synthesize)
}

// Recommendations returns suggested contents. Limit defaults to 5 and must be
// between 1 and 20.
func (c *Client) Recommendations(ctx context.Context, q RecommendationQuery) (resolve.Result[[]domain.Content], error) {
	if q.Limit == 0 {
		q.Limit = 5
	}
	if err := c.check(q); err != nil {
		return resolve.Result[[]domain.Content]{}, err
	}
	return c.recommendations.Resolve(ctx, q)
}
