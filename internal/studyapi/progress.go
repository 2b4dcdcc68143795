package studyapi

import (
	"context"
	"net/http"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/vietddude/studyclient/internal/core/domain"
	"github.com/vietddude/studyclient/internal/infra/api"
	"github.com/vietddude/studyclient/internal/resolve"
)

const (
	dashboardSubjects = 4
	dashboardRecent   = 3
)

func (c *Client) getProgressOperation() *resolve.Builder[struct{}, []domain.Progress] {
	empty := func(context.Context, struct{}) []domain.Progress { return []domain.Progress{} }
	return operation[struct{}, []domain.Progress](c, OpGetProgress).
		Shortcut(offlineShortcut(c, empty)).
		Strategy("progress", domain.ProvenanceReal, func(ctx context.Context, _ struct{}) ([]domain.Progress, error) {
			return call[[]domain.Progress](ctx, c.transport, api.Request{Method: http.MethodGet, Path: "/api/users/me/progress", Auth: true})
		}).
		Synthesize(empty)
}

// GetProgress returns the user's progress across topics.
func (c *Client) GetProgress(ctx context.Context) (resolve.Result[[]domain.Progress], error) {
	return c.getProgress.Resolve(ctx, struct{}{})
}

func (c *Client) updateProgressOperation() *resolve.Builder[domain.ProgressUpdate, domain.Progress] {
	return operation[domain.ProgressUpdate, domain.Progress](c, OpUpdateProgress).
		Strategy("progress", domain.ProvenanceReal, func(ctx context.Context, in domain.ProgressUpdate) (domain.Progress, error) {
			return call[domain.Progress](ctx, c.transport, api.Request{
				Method:   http.MethodPost,
				Path:     "/api/users/me/progress",
				Encoding: api.EncodingJSON,
				Body:     in,
				Auth:     true,
			})
		})
}

// UpdateProgress records a study session. The user ID is looked up when not set.
func (c *Client) UpdateProgress(ctx context.Context, update domain.ProgressUpdate) (domain.Progress, error) {
	if err := c.check(update); err != nil {
		return domain.Progress{}, err
	}
	if err := c.requireSession(ctx); err != nil {
		return domain.Progress{}, err
	}
	if update.UserID == "" {
		me, err := c.CurrentUser(ctx)
		if err != nil {
			return domain.Progress{}, err
		}
		update.UserID = me.Value.ID
	}
	res, err := c.updateProgress.Resolve(ctx, update)
	return res.Value, err
}

// Dashboard loads the landing view: the first subjects, the user's progress
// and the most recently studied topics.
func (c *Client) Dashboard(ctx context.Context) (domain.Dashboard, error) {
	var (
		subjects []domain.Subject
		progress []domain.Progress
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res, err := c.ListSubjects(gctx)
		if err != nil {
			return err
		}
		subjects = res.Value
		if len(subjects) > dashboardSubjects {
			subjects = subjects[:dashboardSubjects]
		}
		return nil
	})
	g.Go(func() error {
		if err := c.requireSession(gctx); err != nil {
			progress = []domain.Progress{}
			return nil
		}
		res, err := c.GetProgress(gctx)
		if err != nil {
			return err
		}
		progress = append([]domain.Progress(nil), res.Value...)
		return nil
	})
	if err := g.Wait(); err != nil {
		return domain.Dashboard{}, err
	}

	sort.SliceStable(progress, func(i, j int) bool {
		return progress[i].LastAccessed.After(progress[j].LastAccessed.Time)
	})

	var ids []string
	seen := make(map[string]bool)
	for _, p := range progress {
		if len(ids) == dashboardRecent {
			break
		}
		if p.TopicID == "" || seen[p.TopicID] {
			continue
		}
		seen[p.TopicID] = true
		ids = append(ids, p.TopicID)
	}

	recent := make([]domain.Topic, len(ids))
	g, gctx = errgroup.WithContext(ctx)
	for i, id := range ids {
		g.Go(func() error {
			res, err := c.GetTopic(gctx, id)
			if err != nil {
				return err
			}
			recent[i] = res.Value
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.Dashboard{}, err
	}

	return domain.Dashboard{Subjects: subjects, Progress: progress, RecentTopics: recent}, nil
}
