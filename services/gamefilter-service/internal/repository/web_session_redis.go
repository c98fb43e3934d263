package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vasapolrittideah/gamefilter-api/services/gamefilter-service/internal/model"
)

const webSessionKeyPrefix = "sess:"

type webSessionRedisRepository struct {
	client *redis.Client
}

// NewWebSessionRedisRepository stores sessions as JSON values whose key TTL
// matches the session expiry.
func NewWebSessionRedisRepository(client *redis.Client) WebSessionRepository {
	return &webSessionRedisRepository{client: client}
}

func (r *webSessionRedisRepository) key(id string) string {
	return webSessionKeyPrefix + id
}

func (r *webSessionRedisRepository) CreateWebSession(ctx context.Context, session *model.WebSession) error {
	if session.ID == "" {
		return errors.New("web session: missing id")
	}

	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return errors.New("web session: expires must be in the future")
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("web session: failed to marshal: %w", err)
	}

	return r.client.Set(ctx, r.key(session.ID), data, ttl).Err()
}

func (r *webSessionRedisRepository) GetWebSession(ctx context.Context, id string) (*model.WebSession, error) {
	val, err := r.client.Get(ctx, r.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrWebSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	var session model.WebSession
	if err := json.Unmarshal(val, &session); err != nil {
		return nil, fmt.Errorf("web session: failed to unmarshal: %w", err)
	}

	return &session, nil
}

func (r *webSessionRedisRepository) DeleteWebSession(ctx context.Context, id string) error {
	return r.client.Del(ctx, r.key(id)).Err()
}
