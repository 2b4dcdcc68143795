package studyapi

import (
	"context"
	"net/http"
	"net/url"

	"github.com/vietddude/studyclient/internal/core/domain"
	"github.com/vietddude/studyclient/internal/infra/api"
	"github.com/vietddude/studyclient/internal/infra/storage"
	"github.com/vietddude/studyclient/internal/resolve"
	"github.com/vietddude/studyclient/internal/synth"
)

// ContentQuery filters learning contents.
type ContentQuery struct {
	TopicID     string
	ContentType string
}

func tagSubjects(items []domain.Subject, p domain.Provenance) []domain.Subject {
	for i := range items {
		items[i].Provenance = p
	}
	return items
}

func tagTopics(items []domain.Topic, p domain.Provenance) []domain.Topic {
	for i := range items {
		items[i].Provenance = p
	}
	return items
}

func tagContents(items []domain.Content, p domain.Provenance) []domain.Content {
	for i := range items {
		items[i].Provenance = p
	}
	return items
}

func tagSystems(items []domain.EducationSystem, p domain.Provenance) []domain.EducationSystem {
	for i := range items {
		items[i].Provenance = p
	}
	return items
}

func (c *Client) listSubjectsOperation() *resolve.Builder[struct{}, []domain.Subject] {
	synthesize := func(context.Context, struct{}) []domain.Subject { return synth.Subjects() }
	fetch := func(path string, auth bool) resolve.ExecuteFunc[struct{}, []domain.Subject] {
		return func(ctx context.Context, _ struct{}) ([]domain.Subject, error) {
			items, err := call[[]domain.Subject](ctx, c.transport, api.Request{Method: http.MethodGet, Path: path, Auth: auth})
			return tagSubjects(items, domain.ProvenanceReal), err
		}
	}

	b := operation[struct{}, []domain.Subject](c, OpListSubjects).
		Dedupe(func(struct{}) string { return OpListSubjects }).
		Shortcut(offlineShortcut(c, synthesize)).
		Strategy("subjects", domain.ProvenanceReal, fetch("/api/subjects", true)).
		Strategy("test-subjects", domain.ProvenanceReal, fetch("/api/test/subjects", false))
	return withCache(c, b, func(struct{}) string { return OpListSubjects }, tagSubjects).
		Synthesize(synthesize)
}

// ListSubjects returns every subject. It never fails for backend reasons.
func (c *Client) ListSubjects(ctx context.Context) (resolve.Result[[]domain.Subject], error) {
	res, err := c.listSubjects.Resolve(ctx, struct{}{})
	if err == nil {
		remember(ctx, c, OpListSubjects, res)
	}
	return res, err
}

func (c *Client) listTopicsOperation() *resolve.Builder[string, []domain.Topic] {
	key := func(subjectID string) string { return storage.Key(OpListTopics, subjectID) }
	synthesize := func(_ context.Context, subjectID string) []domain.Topic { return synth.Topics(subjectID) }

	b := operation[string, []domain.Topic](c, OpListTopics).
		Dedupe(key).
		Shortcut(offlineShortcut(c, synthesize)).
		Strategy("topics", domain.ProvenanceReal, func(ctx context.Context, subjectID string) ([]domain.Topic, error) {
			var q url.Values
			if subjectID != "" {
				q = url.Values{"subject_id": {subjectID}}
			}
			items, err := call[[]domain.Topic](ctx, c.transport, api.Request{Method: http.MethodGet, Path: "/api/topics", Query: q, Auth: true})
			return tagTopics(items, domain.ProvenanceReal), err
		}).
		Strategy("test-topics", domain.ProvenanceReal, func(ctx context.Context, subjectID string) ([]domain.Topic, error) {
			items, err := call[[]domain.Topic](ctx, c.transport, api.Request{Method: http.MethodGet, Path: "/api/test/topics"})
			return tagTopics(domain.FilterTopics(items, subjectID), domain.ProvenanceReal), err
		})
	return withCache(c, b, key, tagTopics).Synthesize(synthesize)
}

// ListTopics returns the topics of a subject, or every topic when subjectID is empty.
func (c *Client) ListTopics(ctx context.Context, subjectID string) (resolve.Result[[]domain.Topic], error) {
	res, err := c.listTopics.Resolve(ctx, subjectID)
	if err == nil {
		remember(ctx, c, storage.Key(OpListTopics, subjectID), res)
	}
	return res, err
}

func (c *Client) getSubjectOperation() *resolve.Builder[string, domain.Subject] {
	synthesize := func(_ context.Context, id string) domain.Subject {
		if s, ok := synth.Subject(id); ok {
			return s
		}
		return domain.Subject{ID: id, Name: "Unknown Subject", Provenance: domain.ProvenanceSynthetic}
	}
	return operation[string, domain.Subject](c, OpGetSubject).
		Dedupe(func(id string) string { return id }).
		Shortcut(offlineShortcut(c, synthesize)).
		Strategy("subject", domain.ProvenanceReal, func(ctx context.Context, id string) (domain.Subject, error) {
			s, err := call[domain.Subject](ctx, c.transport, api.Request{
				Method:   http.MethodGet,
				Path:     "/api/subjects/" + url.PathEscape(id),
				Endpoint: "GET /api/subjects/{id}",
				Auth:     true,
			})
			s.Provenance = domain.ProvenanceReal
			return s, err
		}).
		Synthesize(synthesize)
}

// GetSubject returns one subject.
func (c *Client) GetSubject(ctx context.Context, id string) (resolve.Result[domain.Subject], error) {
	if id == "" {
		return resolve.Result[domain.Subject]{}, resolve.Invalid(errRequired("subject id"))
	}
	return c.getSubject.Resolve(ctx, id)
}

func (c *Client) getTopicOperation() *resolve.Builder[string, domain.Topic] {
	synthesize := func(_ context.Context, id string) domain.Topic {
		if t, ok := synth.Topic(id); ok {
			return t
		}
		t, _ := synth.Topic("t1")
		t.ID = id
		return t
	}
	return operation[string, domain.Topic](c, OpGetTopic).
		Dedupe(func(id string) string { return id }).
		Shortcut(offlineShortcut(c, synthesize)).
		Strategy("topic", domain.ProvenanceReal, func(ctx context.Context, id string) (domain.Topic, error) {
			t, err := call[domain.Topic](ctx, c.transport, api.Request{
				Method:   http.MethodGet,
				Path:     "/api/topics/" + url.PathEscape(id),
				Endpoint: "GET /api/topics/{id}",
				Auth:     true,
			})
			t.Provenance = domain.ProvenanceReal
			return t, err
		}).
		Synthesize(synthesize)
}

// GetTopic returns one topic.
func (c *Client) GetTopic(ctx context.Context, id string) (resolve.Result[domain.Topic], error) {
	if id == "" {
		return resolve.Result[domain.Topic]{}, resolve.Invalid(errRequired("topic id"))
	}
	return c.getTopic.Resolve(ctx, id)
}

func (c *Client) listContentsOperation() *resolve.Builder[ContentQuery, []domain.Content] {
	synthesize := func(_ context.Context, q ContentQuery) []domain.Content { return synth.Contents(q.TopicID, q.ContentType) }
	return operation[ContentQuery, []domain.Content](c, OpListContents).
		Shortcut(offlineShortcut(c, synthesize)).
		Strategy("contents", domain.ProvenanceReal, func(ctx context.Context, q ContentQuery) ([]domain.Content, error) {
			query := url.Values{}
			if q.TopicID != "" {
				query.Set("topic_id", q.TopicID)
			}
			if q.ContentType != "" {
				query.Set("content_type", q.ContentType)
			}
			items, err := call[[]domain.Content](ctx, c.transport, api.Request{Method: http.MethodGet, Path: "/api/contents", Query: query, Auth: true})
			return tagContents(items, domain.ProvenanceReal), err
		}).
		Synthesize(synthesize)
}

// ListContents returns learning material for a topic, optionally of one type.
func (c *Client) ListContents(ctx context.Context, q ContentQuery) (resolve.Result[[]domain.Content], error) {
	return c.listContents.Resolve(ctx, q)
}

func (c *Client) getContentOperation() *resolve.Builder[string, domain.Content] {
	synthesize := func(_ context.Context, id string) domain.Content { return synth.Content(id) }
	return operation[string, domain.Content](c, OpGetContent).
		Dedupe(func(id string) string { return id }).
		Shortcut(offlineShortcut(c, synthesize)).
		Strategy("content", domain.ProvenanceReal, func(ctx context.Context, id string) (domain.Content, error) {
			item, err := call[domain.Content](ctx, c.transport, api.Request{
				Method:   http.MethodGet,
				Path:     "/api/contents/" + url.PathEscape(id),
				Endpoint: "GET /api/contents/{id}",
				Auth:     true,
			})
			item.Provenance = domain.ProvenanceReal
			return item, err
		}).
		Synthesize(synthesize)
}

// GetContent returns one content item.
func (c *Client) GetContent(ctx context.Context, id string) (resolve.Result[domain.Content], error) {
	if id == "" {
		return resolve.Result[domain.Content]{}, resolve.Invalid(errRequired("content id"))
	}
	return c.getContent.Resolve(ctx, id)
}

func (c *Client) educationSystemsOperation() *resolve.Builder[struct{}, []domain.EducationSystem] {
	synthesize := func(context.Context, struct{}) []domain.EducationSystem { return synth.EducationSystems() }
	b := operation[struct{}, []domain.EducationSystem](c, OpEducationSystems).
		Shortcut(offlineShortcut(c, synthesize)).
		Strategy("education-systems", domain.ProvenanceReal, func(ctx context.Context, _ struct{}) ([]domain.EducationSystem, error) {
			items, err := call[[]domain.EducationSystem](ctx, c.transport, api.Request{Method: http.MethodGet, Path: "/api/education-systems"})
			return tagSystems(items, domain.ProvenanceReal), err
		})
	return withCache(c, b, func(struct{}) string { return OpEducationSystems }, tagSystems).
		Synthesize(synthesize)
}

// EducationSystems lists the curricula a study sheet can be tuned to.
func (c *Client) EducationSystems(ctx context.Context) (resolve.Result[[]domain.EducationSystem], error) {
	res, err := c.educationSystems.Resolve(ctx, struct{}{})
	if err == nil {
		remember(ctx, c, OpEducationSystems, res)
	}
	return res, err
}

// The backend has no grades endpoint, so grades always come from the local catalog.
func (c *Client) gradesOperation() *resolve.Builder[string, []domain.Grade] {
	return operation[string, []domain.Grade](c, OpGrades).
		Synthesize(func(_ context.Context, systemID string) []domain.Grade { return synth.Grades(systemID) })
}

// Grades lists the grades of an education system.
func (c *Client) Grades(ctx context.Context, systemID string) (resolve.Result[[]domain.Grade], error) {
	return c.grades.Resolve(ctx, systemID)
}
