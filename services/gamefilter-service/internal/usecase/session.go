package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/vasapolrittideah/gamefilter-api/services/gamefilter-service/internal/model"
	"github.com/vasapolrittideah/gamefilter-api/services/gamefilter-service/internal/repository"
	"github.com/vasapolrittideah/gamefilter-api/shared/metrics"
)

// SessionUsecase reconciles the session registry with the web session store.
type SessionUsecase interface {
	// Validate reports whether the access token held by userID is no longer
	// backed by a live web session. Expired sessions are always removed from
	// both stores; forceDelete removes a live one too. A user without a
	// session is reported as expired.
	Validate(ctx context.Context, userID string, forceDelete bool) (bool, error)

	// Create starts a new web session for userID.
	Create(ctx context.Context, userID string) (*model.WebSession, error)

	// Discard deletes a web session that never got a registry entry.
	Discard(ctx context.Context, sessionID string) error
}

// WebSessionUserKey is the payload key holding the owner of a web session.
const WebSessionUserKey = "userId"

type sessionUsecase struct {
	userSessionRepo repository.UserSessionRepository
	webSessionRepo  repository.WebSessionRepository
	ttl             time.Duration
	logger          *zerolog.Logger
	metrics         *metrics.Metrics
	now             func() time.Time
}

func NewSessionUsecase(
	userSessionRepo repository.UserSessionRepository,
	webSessionRepo repository.WebSessionRepository,
	ttl time.Duration,
	logger *zerolog.Logger,
	m *metrics.Metrics,
) SessionUsecase {
	return &sessionUsecase{
		userSessionRepo: userSessionRepo,
		webSessionRepo:  webSessionRepo,
		ttl:             ttl,
		logger:          logger,
		metrics:         m,
		now:             time.Now,
	}
}

func (u *sessionUsecase) Validate(ctx context.Context, userID string, forceDelete bool) (bool, error) {
	userSession, err := u.userSessionRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return true, nil
		}
		return false, err
	}

	expired := true
	webSession, err := u.webSessionRepo.GetWebSession(ctx, userSession.SessionID)
	switch {
	case errors.Is(err, repository.ErrWebSessionNotFound):
	case err != nil:
		return false, err
	default:
		expired = webSession.Expired(u.now())
	}

	if !forceDelete && !expired {
		return false, nil
	}

	if err := u.webSessionRepo.DeleteWebSession(ctx, userSession.SessionID); err != nil {
		return expired, err
	}
	if err := u.userSessionRepo.DeleteBySessionID(ctx, userSession.SessionID); err != nil {
		return expired, err
	}

	reason := "forced"
	if expired {
		reason = "expired"
	}
	u.metrics.AuthEvent("session_invalidated", reason)
	u.logger.Debug().
		Str("user_id", userID).
		Str("reason", reason).
		Msg("session invalidated")

	return expired, nil
}

func (u *sessionUsecase) Create(ctx context.Context, userID string) (*model.WebSession, error) {
	session := &model.WebSession{
		ID:        uuid.NewString(),
		Payload:   map[string]string{WebSessionUserKey: userID},
		ExpiresAt: u.now().Add(u.ttl),
	}

	if err := u.webSessionRepo.CreateWebSession(ctx, session); err != nil {
		return nil, err
	}

	return session, nil
}

func (u *sessionUsecase) Discard(ctx context.Context, sessionID string) error {
	return u.webSessionRepo.DeleteWebSession(ctx, sessionID)
}
