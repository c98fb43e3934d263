// Package middleware holds the HTTP stages that run before route handlers.
package middleware

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/vasapolrittideah/gamefilter-api/services/gamefilter-service/internal/payload"
	"github.com/vasapolrittideah/gamefilter-api/services/gamefilter-service/internal/render"
	"github.com/vasapolrittideah/gamefilter-api/services/gamefilter-service/internal/repository"
	"github.com/vasapolrittideah/gamefilter-api/services/gamefilter-service/internal/usecase"
)

// Reasons written by the authorization stages.
const (
	ReasonMissingToken  = "missing_token"
	ReasonInvalidToken  = "invalid_token"
	ReasonExpiredToken  = "expired_token"
	ReasonInternalError = "internal_error"
)

// Authorizer resolves the access token every authenticated request carries
// in its body.
type Authorizer struct {
	userSessionRepo repository.UserSessionRepository
	userRepo        repository.UserRepository
	sessions        usecase.SessionUsecase
	logger          *zerolog.Logger
}

func NewAuthorizer(
	userSessionRepo repository.UserSessionRepository,
	userRepo repository.UserRepository,
	sessions usecase.SessionUsecase,
	logger *zerolog.Logger,
) *Authorizer {
	return &Authorizer{
		userSessionRepo: userSessionRepo,
		userRepo:        userRepo,
		sessions:        sessions,
		logger:          logger,
	}
}

// Authorize rejects requests whose accessToken is missing or unknown and
// attaches the session and its user otherwise. It does not check expiry.
func (a *Authorizer) Authorize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body payload.TokenRequest
		if err := payload.Decode(r, &body); err != nil && !errors.Is(err, payload.ErrEmptyBody) {
			a.logger.Debug().Err(err).Msg("unreadable request body")
		}

		if body.AccessToken == "" {
			render.Error(w, http.StatusUnauthorized, ReasonMissingToken)
			return
		}

		session, err := a.userSessionRepo.GetByAccessToken(r.Context(), body.AccessToken)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				render.Error(w, http.StatusUnauthorized, ReasonInvalidToken)
				return
			}
			a.logger.Error().Err(err).Msg("failed to resolve access token")
			render.Error(w, http.StatusInternalServerError, ReasonInternalError)
			return
		}

		user, err := a.userRepo.GetUser(r.Context(), session.UserID)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				render.Error(w, http.StatusUnauthorized, ReasonInvalidToken)
				return
			}
			a.logger.Error().Err(err).Str("user_id", session.UserID).Msg("failed to load session user")
			render.Error(w, http.StatusInternalServerError, ReasonInternalError)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithAuth(r.Context(), session, user)))
	})
}

// RequireLiveSession runs after Authorize and rejects sessions whose web
// session has expired, cleaning both stores up.
func (a *Authorizer) RequireLiveSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, ok := UserSessionFromContext(r.Context())
		if !ok {
			render.Error(w, http.StatusUnauthorized, ReasonMissingToken)
			return
		}

		expired, err := a.sessions.Validate(r.Context(), session.UserID, false)
		if err != nil {
			a.logger.Error().Err(err).Str("user_id", session.UserID).Msg("failed to validate session")
			render.Error(w, http.StatusInternalServerError, ReasonInternalError)
			return
		}
		if expired {
			render.Error(w, http.StatusUnauthorized, ReasonExpiredToken)
			return
		}

		next.ServeHTTP(w, r)
	})
}
