package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const defaultStoreKey = "store:default"

type repository interface {
	Default(ctx context.Context) (*Store, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Store, error)
}

// Service resolves store records with a cache-aside Redis layer in
// front of Postgres. It implements CurrentStore.
type Service struct {
	repo   repository
	cache  *Cache
	logger zerolog.Logger
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Repo   repository
	Cache  *Cache
	Logger zerolog.Logger
}

// NewService constructs a Service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Repo == nil {
		return nil, fmt.Errorf("store: repo is required")
	}
	return &Service{repo: cfg.Repo, cache: cfg.Cache, logger: cfg.Logger}, nil
}

// Store implements CurrentStore. Cache failures degrade to a database
// read; they never fail the request.
func (s *Service) Store(ctx context.Context) (*Store, error) {
	return s.cached(ctx, defaultStoreKey, s.repo.Default)
}

// Get returns one store by ID, or nil when it does not exist.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Store, error) {
	return s.cached(ctx, "store:"+id.String(), func(ctx context.Context) (*Store, error) {
		return s.repo.GetByID(ctx, id)
	})
}

func (s *Service) cached(ctx context.Context, key string, load func(context.Context) (*Store, error)) (*Store, error) {
	var hit Store
	ok, err := s.cache.GetJSON(ctx, key, &hit)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("store cache read failed")
	}
	if ok {
		return &hit, nil
	}

	loaded, err := load(ctx)
	if err != nil {
		return nil, err
	}
	if loaded == nil {
		return nil, nil
	}
	if err := s.cache.SetJSON(ctx, key, loaded); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("store cache write failed")
	}
	return loaded, nil
}
