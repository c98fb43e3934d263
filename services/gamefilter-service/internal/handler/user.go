package handler

import (
	"errors"
	"net/http"

	"github.com/vasapolrittideah/gamefilter-api/services/gamefilter-service/internal/middleware"
	"github.com/vasapolrittideah/gamefilter-api/services/gamefilter-service/internal/payload"
	"github.com/vasapolrittideah/gamefilter-api/services/gamefilter-service/internal/render"
	"github.com/vasapolrittideah/gamefilter-api/services/gamefilter-service/internal/usecase"
)

func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	session, _, ok := authContext(r)
	if !ok {
		render.Error(w, http.StatusUnauthorized, middleware.ReasonMissingToken)
		return
	}

	profile, err := h.userUsecase.Profile(r.Context(), session.UserID)
	if err != nil {
		if errors.Is(err, usecase.ErrExpiredSession) {
			render.Error(w, http.StatusUnauthorized, middleware.ReasonExpiredToken)
			return
		}
		h.internalError(w, r, err, "failed to load profile")
		return
	}

	linked := make([]payload.LinkedAccount, 0, len(profile.Linked))
	for _, account := range profile.Linked {
		linked = append(linked, payload.LinkedAccount{Provider: account.Provider, Data: account.Data})
	}

	roles := profile.Roles
	if roles == nil {
		roles = []string{}
	}

	render.JSON(w, http.StatusOK, payload.ProfileResponse{
		Email:       profile.Email,
		DisplayName: profile.DisplayName,
		Verified:    profile.Verified,
		Roles:       roles,
		Preferences: profile.Preferences,
		Linked:      linked,
	})
}
