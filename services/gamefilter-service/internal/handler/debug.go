package handler

import (
	"errors"
	"net/http"

	"github.com/vasapolrittideah/gamefilter-api/services/gamefilter-service/internal/middleware"
	"github.com/vasapolrittideah/gamefilter-api/services/gamefilter-service/internal/model"
	"github.com/vasapolrittideah/gamefilter-api/services/gamefilter-service/internal/payload"
	"github.com/vasapolrittideah/gamefilter-api/services/gamefilter-service/internal/render"
	"github.com/vasapolrittideah/gamefilter-api/services/gamefilter-service/internal/usecase"
)

var pullRoles = middleware.AnyOf(model.RoleDesigner, model.RoleDeveloper, model.RoleAdmin)

// Debug pushes a client log or pulls stored logs. It must be mounted behind
// RequireRole.
func (h *Handler) Debug(w http.ResponseWriter, r *http.Request) {
	if err := middleware.RoleErrorFromContext(r.Context()); err != nil {
		render.Error(w, middleware.RoleStatus(err), err.Error())
		return
	}

	_, user, ok := authContext(r)
	if !ok {
		render.Error(w, http.StatusUnauthorized, middleware.ReasonMissingToken)
		return
	}

	var req payload.DebugRequest
	if err := payload.Decode(r, &req); err != nil {
		render.Error(w, http.StatusBadRequest, reasonBadMethod)
		return
	}

	switch req.Method {
	case payload.DebugPush:
		h.debugPush(w, r, user, req)
	case payload.DebugPull:
		h.debugPull(w, r, user, req)
	default:
		render.Error(w, http.StatusBadRequest, reasonBadMethod)
	}
}

func (h *Handler) debugPush(w http.ResponseWriter, r *http.Request, user *model.User, req payload.DebugRequest) {
	err := h.debugUsecase.Push(r.Context(), user, usecase.PushParams{
		Category: req.Category,
		Message:  req.Message,
	})
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrBadCategory):
			render.Error(w, http.StatusBadRequest, reasonBadCategory)
		case errors.Is(err, usecase.ErrBadMessage):
			render.Error(w, http.StatusBadRequest, reasonBadMessage)
		default:
			h.internalError(w, r, err, "failed to store debug log")
		}
		return
	}

	render.OK(w)
}

func (h *Handler) debugPull(w http.ResponseWriter, r *http.Request, user *model.User, req payload.DebugRequest) {
	if err := middleware.ValidateRole(pullRoles, user); err != nil {
		render.Error(w, middleware.RoleStatus(err), err.Error())
		return
	}

	logs, err := h.debugUsecase.Pull(r.Context(), usecase.PullParams{
		Emails:     req.Email,
		Categories: req.Categories,
	})
	if err != nil {
		h.internalError(w, r, err, "failed to pull debug logs")
		return
	}

	render.JSON(w, http.StatusOK, logs)
}
