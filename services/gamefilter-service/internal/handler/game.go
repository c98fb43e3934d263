package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vasapolrittideah/gamefilter-api/services/gamefilter-service/internal/middleware"
	"github.com/vasapolrittideah/gamefilter-api/services/gamefilter-service/internal/payload"
	"github.com/vasapolrittideah/gamefilter-api/services/gamefilter-service/internal/render"
	"github.com/vasapolrittideah/gamefilter-api/services/gamefilter-service/internal/usecase"
)

// Catalog data changes at most daily.
const gameCacheControl = "public, max-age=86400"

func (h *Handler) GetGame(w http.ResponseWriter, r *http.Request) {
	game, err := h.gameUsecase.Get(r.Context(), chi.URLParam(r, "gameId"))
	if err != nil {
		if errors.Is(err, usecase.ErrGameNotFound) {
			render.Error(w, http.StatusNotFound, reasonNotFound)
			return
		}
		h.internalError(w, r, err, "failed to load game")
		return
	}

	w.Header().Set("Cache-Control", gameCacheControl)
	render.JSON(w, http.StatusOK, game)
}

// UpsertGame must be mounted behind RequireRole.
func (h *Handler) UpsertGame(w http.ResponseWriter, r *http.Request) {
	if err := middleware.RoleErrorFromContext(r.Context()); err != nil {
		render.Error(w, middleware.RoleStatus(err), err.Error())
		return
	}

	var req payload.UpsertGameRequest
	if err := payload.Decode(r, &req); err != nil {
		render.Error(w, http.StatusBadRequest, reasonMissingFields)
		return
	}

	game, err := h.gameUsecase.Upsert(r.Context(), &req.Game)
	if err != nil {
		if errors.Is(err, usecase.ErrMissingFields) {
			render.Error(w, http.StatusBadRequest, reasonMissingFields)
			return
		}
		h.internalError(w, r, err, "failed to save game")
		return
	}

	render.JSON(w, http.StatusOK, game)
}
