// Package handler serves the gamefilter HTTP API.
package handler

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/vasapolrittideah/gamefilter-api/services/gamefilter-service/internal/middleware"
	"github.com/vasapolrittideah/gamefilter-api/services/gamefilter-service/internal/model"
	"github.com/vasapolrittideah/gamefilter-api/services/gamefilter-service/internal/render"
	"github.com/vasapolrittideah/gamefilter-api/services/gamefilter-service/internal/usecase"
)

// Reasons written by handlers, in addition to the middleware ones.
const (
	reasonMissingFields          = "missing_fields"
	reasonBadEmail               = "bad_email"
	reasonBadDisplayName         = "bad_display_name"
	reasonPending                = "pending"
	reasonVerified               = "verified"
	reasonInvalid                = "invalid"
	reasonInvalidCredentials     = "invalid_credentials"
	reasonUnverified             = "unverified"
	reasonSessionConflict        = "session_conflict"
	reasonBadMethod              = "bad_method"
	reasonBadCategory            = "bad_category"
	reasonBadMessage             = "bad_message"
	reasonUnknownProvider        = "unknown_provider"
	reasonProviderNotImplemented = "provider_not_implemented"
	reasonNotFound               = "not_found"
)

// CookieConfig controls the session cookie set on login.
type CookieConfig struct {
	Name   string
	Domain string
	Secure bool
}

// Handler holds the use cases behind the HTTP routes.
type Handler struct {
	authUsecase  usecase.AuthUsecase
	userUsecase  usecase.UserUsecase
	linkUsecase  usecase.LinkUsecase
	debugUsecase usecase.DebugUsecase
	gameUsecase  usecase.GameUsecase

	cookie         CookieConfig
	clientRedirect string
	logger         *zerolog.Logger
}

// Usecases groups the dependencies of Handler.
type Usecases struct {
	Auth  usecase.AuthUsecase
	User  usecase.UserUsecase
	Link  usecase.LinkUsecase
	Debug usecase.DebugUsecase
	Game  usecase.GameUsecase
}

func NewHandler(uc Usecases, cookie CookieConfig, clientRedirect string, logger *zerolog.Logger) *Handler {
	return &Handler{
		authUsecase:    uc.Auth,
		userUsecase:    uc.User,
		linkUsecase:    uc.Link,
		debugUsecase:   uc.Debug,
		gameUsecase:    uc.Game,
		cookie:         cookie,
		clientRedirect: clientRedirect,
		logger:         logger,
	}
}

// internalError logs err and writes a generic 500.
func (h *Handler) internalError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	h.logger.Error().Err(err).Str("path", r.URL.Path).Msg(msg)
	render.Error(w, http.StatusInternalServerError, middleware.ReasonInternalError)
}

// authContext returns what Authorize attached. Routes using it are always
// mounted behind Authorize.
func authContext(r *http.Request) (*model.UserSession, *model.User, bool) {
	session, ok := middleware.UserSessionFromContext(r.Context())
	if !ok {
		return nil, nil, false
	}
	user, ok := middleware.UserFromContext(r.Context())
	return session, user, ok
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, sessionID string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    sessionID,
		Path:     "/",
		Domain:   h.cookie.Domain,
		Expires:  expires,
		Secure:   h.cookie.Secure,
		HttpOnly: true,
		SameSite: h.sameSite(),
	})
}

func (h *Handler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		Domain:   h.cookie.Domain,
		MaxAge:   -1,
		Secure:   h.cookie.Secure,
		HttpOnly: true,
		SameSite: h.sameSite(),
	})
}

// Cross-site clients need SameSite=None, which browsers only accept on
// secure cookies.
func (h *Handler) sameSite() http.SameSite {
	if h.cookie.Secure {
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}
