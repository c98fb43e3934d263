package handler

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/vasapolrittideah/gamefilter-api/services/gamefilter-service/internal/middleware"
	"github.com/vasapolrittideah/gamefilter-api/services/gamefilter-service/internal/render"
	"github.com/vasapolrittideah/gamefilter-api/services/gamefilter-service/internal/social"
	"github.com/vasapolrittideah/gamefilter-api/services/gamefilter-service/internal/usecase"
)

// LinkURL answers with the provider consent URL as plain text.
func (h *Handler) LinkURL(w http.ResponseWriter, r *http.Request) {
	session, _, ok := authContext(r)
	if !ok {
		render.Error(w, http.StatusUnauthorized, middleware.ReasonMissingToken)
		return
	}

	authURL, err := h.linkUsecase.AuthURL(r.Context(), chi.URLParam(r, "provider"), session.UserID, session.AccessToken)
	if err != nil {
		switch {
		case errors.Is(err, social.ErrUnknownProvider):
			render.Error(w, http.StatusBadRequest, reasonUnknownProvider)
		case errors.Is(err, social.ErrProviderNotImplemented):
			render.Error(w, http.StatusNotImplemented, reasonProviderNotImplemented)
		default:
			h.internalError(w, r, err, "failed to build link url")
		}
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(authURL))
}

// LinkCallback finishes the OAuth round trip and sends the browser back to
// the client, appending the base64url encoded reason on failure.
func (h *Handler) LinkCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	err := h.linkUsecase.Callback(r.Context(), chi.URLParam(r, "provider"), q.Get("state"), q.Get("code"))
	if err == nil {
		http.Redirect(w, r, h.clientRedirect, http.StatusFound)
		return
	}

	var reason string
	switch {
	case errors.Is(err, social.ErrUnknownProvider):
		reason = reasonUnknownProvider
	case errors.Is(err, social.ErrProviderNotImplemented):
		reason = reasonProviderNotImplemented
	case errors.Is(err, usecase.ErrInvalidLinkState), errors.Is(err, usecase.ErrInvalidToken):
		reason = middleware.ReasonInvalidToken
	case errors.Is(err, usecase.ErrExpiredSession):
		reason = middleware.ReasonExpiredToken
	default:
		reason = middleware.ReasonInternalError
	}
	h.logger.Warn().Err(err).Str("reason", reason).Msg("account link failed")

	target := strings.TrimRight(h.clientRedirect, "/") + "/" + base64.RawURLEncoding.EncodeToString([]byte(reason))
	http.Redirect(w, r, target, http.StatusFound)
}
