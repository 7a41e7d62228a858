package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"anime-tracker-backend/internal/common/cache"
	apperrors "anime-tracker-backend/internal/common/errors"
	"anime-tracker-backend/internal/common/metrics"
	"anime-tracker-backend/internal/features/catalog/models"
	"anime-tracker-backend/internal/platform/jikan"
)

// MaxSearchLimit is the largest page Jikan accepts.
const MaxSearchLimit = 25

// Catalog is the upstream anime database.
type Catalog interface {
	Search(ctx context.Context, query string, limit int) ([]jikan.Anime, error)
	GetByID(ctx context.Context, malID int) (*jikan.Anime, error)
}

type CatalogService interface {
	Search(ctx context.Context, query string, limit int) ([]models.AnimeSummary, error)
	GetDetails(ctx context.Context, malID int) (*models.AnimeDetails, error)
}

type catalogService struct {
	catalog      Catalog
	cache        *cache.CacheService
	ttl          time.Duration
	defaultLimit int
}

func NewCatalogService(catalog Catalog, cache *cache.CacheService, ttl time.Duration, defaultLimit int) CatalogService {
	return &catalogService{
		catalog:      catalog,
		cache:        cache,
		ttl:          ttl,
		defaultLimit: defaultLimit,
	}
}

func (s *catalogService) Search(ctx context.Context, query string, limit int) ([]models.AnimeSummary, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.AnimeSummary{}, nil
	}
	if limit <= 0 {
		limit = s.defaultLimit
	}
	if limit > MaxSearchLimit {
		limit = MaxSearchLimit
	}

	key := fmt.Sprintf("search:%d:%s", limit, strings.ToLower(query))

	var result []models.AnimeSummary
	hit, err := s.cache.GetOrSet(ctx, key, &result, s.ttl, func() (interface{}, error) {
		list, err := s.catalog.Search(ctx, query, limit)
		if err != nil {
			return nil, err
		}
		out := make([]models.AnimeSummary, 0, len(list))
		for _, a := range list {
			out = append(out, models.FromJikanSummary(a))
		}
		return out, nil
	})
	record("search", hit, err)
	if err != nil {
		return nil, apperrors.NewExternalAPIError("anime catalog", err)
	}

	return result, nil
}

func (s *catalogService) GetDetails(ctx context.Context, malID int) (*models.AnimeDetails, error) {
	if malID <= 0 {
		return nil, apperrors.NewValidationError("malId", "must be a positive integer")
	}

	var result models.AnimeDetails
	hit, err := s.cache.GetOrSet(ctx, fmt.Sprintf("anime:%d", malID), &result, s.ttl, func() (interface{}, error) {
		a, err := s.catalog.GetByID(ctx, malID)
		if err != nil {
			return nil, err
		}
		return models.FromJikanDetails(*a), nil
	})
	record("details", hit, err)
	if err != nil {
		if errors.Is(err, jikan.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("anime", malID)
		}
		return nil, apperrors.NewExternalAPIError("anime catalog", err)
	}

	return &result, nil
}

func record(endpoint string, hit bool, err error) {
	result := "miss"
	switch {
	case err != nil:
		result = "error"
	case hit:
		result = "hit"
	}
	metrics.CatalogRequests.WithLabelValues(endpoint, result).Inc()
}
