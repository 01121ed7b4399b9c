package lib

import (
	"context"
	"sync"

	"storybox-cli/logger"
	shared "storybox-cli/shared"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const enrichConcurrency = 8

// Authored is anything that carries an owner id and can show that owner's
// name and avatar.
type Authored interface {
	AuthorId() string
	SetAuthor(u *shared.User)
}

type UserLookup interface {
	GetUser(ctx context.Context, userId string) (*shared.User, *shared.ApiError)
}

// Enricher resolves owner profiles for lists of posts and comments. Each
// distinct owner is looked up once and kept for the life of the view.
type Enricher struct {
	users UserLookup

	mu    sync.Mutex
	cache map[string]*shared.User
}

func NewEnricher(users UserLookup) *Enricher {
	return &Enricher{
		users: users,
		cache: map[string]*shared.User{},
	}
}

// Lookup returns the profiles it could resolve for ids. Failed lookups are
// left out and retried on the next call.
func (e *Enricher) Lookup(ctx context.Context, ids []string) map[string]*shared.User {
	found := map[string]*shared.User{}
	var missing []string

	e.mu.Lock()
	seen := map[string]bool{}
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true

		if u, ok := e.cache[id]; ok {
			found[id] = u
			continue
		}
		missing = append(missing, id)
	}
	e.mu.Unlock()

	if len(missing) == 0 {
		return found
	}

	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(enrichConcurrency)

	for _, id := range missing {
		id := id
		g.Go(func() error {
			u, apiErr := e.users.GetUser(ctx, id)
			if apiErr != nil {
				// one missing author must not hold up the rest
				logger.Logger.Debug("error looking up author", zap.String("userId", id), zap.String("err", apiErr.Msg))
				return nil
			}

			mu.Lock()
			found[id] = u
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	e.mu.Lock()
	for _, id := range missing {
		if u, ok := found[id]; ok {
			e.cache[id] = u
		}
	}
	e.mu.Unlock()

	return found
}

// Enrich fills in author fields on items in place. Items whose owner could
// not be resolved keep empty author fields.
func Enrich[T Authored](ctx context.Context, e *Enricher, items []T) {
	if len(items) == 0 {
		return
	}

	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.AuthorId())
	}

	users := e.Lookup(ctx, ids)

	for _, item := range items {
		if u, ok := users[item.AuthorId()]; ok {
			item.SetAuthor(u)
		}
	}
}
