package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/amelio/internal/domain"
)

const (
	courseCachePrefix   = "amelio:course:"
	courseNamesCacheKey = "amelio:course-names"
	defaultCourseTTL    = 5 * time.Minute
)

// cachedCourseRepository serves course lookups from Redis and falls back to the wrapped store.
// Cache failures are logged and never surface to callers.
type cachedCourseRepository struct {
	next   CourseRepository
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedCourseRepository decorates next with a Redis read-through cache.
// A nil client returns next unchanged.
func NewCachedCourseRepository(next CourseRepository, client *redis.Client, ttl time.Duration, logger *zap.Logger) CourseRepository {
	if client == nil {
		return next
	}
	if ttl <= 0 {
		ttl = defaultCourseTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &cachedCourseRepository{next: next, client: client, ttl: ttl, logger: logger}
}

func (r *cachedCourseRepository) Create(ctx context.Context, course *domain.Course) error {
	if err := r.next.Create(ctx, course); err != nil {
		return err
	}
	r.invalidate(ctx, courseNamesCacheKey)
	return nil
}

// SetActive drops the cached course and the name list so ticket creation sees the new
// flag at once.
func (r *cachedCourseRepository) SetActive(ctx context.Context, id int64, active bool) error {
	if err := r.next.SetActive(ctx, id, active); err != nil {
		return err
	}
	r.invalidate(ctx, courseKey(id), courseNamesCacheKey)
	return nil
}

func courseKey(id int64) string {
	return fmt.Sprintf("%s%d", courseCachePrefix, id)
}

func (r *cachedCourseRepository) invalidate(ctx context.Context, keys ...string) {
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		r.logger.Warn("invalidate course cache", zap.Strings("keys", keys), zap.Error(err))
	}
}

func (r *cachedCourseRepository) Get(ctx context.Context, id int64) (*domain.Course, error) {
	key := courseKey(id)

	var cached domain.Course
	if r.load(ctx, key, &cached) {
		return &cached, nil
	}

	course, err := r.next.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	r.store(ctx, key, course)
	return course, nil
}

func (r *cachedCourseRepository) ListNames(ctx context.Context) ([]domain.CourseName, error) {
	var cached []domain.CourseName
	if r.load(ctx, courseNamesCacheKey, &cached) {
		return cached, nil
	}

	names, err := r.next.ListNames(ctx)
	if err != nil {
		return nil, err
	}
	r.store(ctx, courseNamesCacheKey, names)
	return names, nil
}

// ListWithNames is not cached; it backs administrative listings only.
func (r *cachedCourseRepository) ListWithNames(ctx context.Context) ([]domain.CourseWithNames, error) {
	return r.next.ListWithNames(ctx)
}

func (r *cachedCourseRepository) load(ctx context.Context, key string, dest any) bool {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Warn("read course cache", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		r.logger.Warn("decode course cache entry", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (r *cachedCourseRepository) store(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		r.logger.Warn("encode course cache entry", zap.String("key", key), zap.Error(err))
		return
	}
	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		r.logger.Warn("write course cache", zap.String("key", key), zap.Error(err))
	}
}
