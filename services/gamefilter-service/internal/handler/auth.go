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

func (h *Handler) AuthStatus(w http.ResponseWriter, _ *http.Request) {
	render.OK(w)
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req payload.RegisterRequest
	if err := payload.Decode(r, &req); err != nil {
		render.Error(w, http.StatusBadRequest, reasonMissingFields)
		return
	}

	err := h.authUsecase.Register(r.Context(), usecase.RegisterParams{
		Email:       req.Email,
		DisplayName: req.DisplayName,
		Password:    req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrMissingFields):
			render.Error(w, http.StatusBadRequest, reasonMissingFields)
		case errors.Is(err, usecase.ErrBadEmail):
			render.Error(w, http.StatusBadRequest, reasonBadEmail)
		case errors.Is(err, usecase.ErrBadDisplayName):
			render.Error(w, http.StatusBadRequest, reasonBadDisplayName)
		case errors.Is(err, usecase.ErrPending):
			render.Error(w, http.StatusConflict, reasonPending)
		case errors.Is(err, usecase.ErrVerified):
			render.Error(w, http.StatusTeapot, reasonVerified)
		default:
			h.internalError(w, r, err, "failed to register user")
		}
		return
	}

	render.OK(w)
}

func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	err := h.authUsecase.Verify(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrMissingFields):
			render.Error(w, http.StatusBadRequest, reasonMissingFields)
		case errors.Is(err, usecase.ErrInvalidRegistrationToken):
			render.Error(w, http.StatusNotFound, reasonInvalid)
		case errors.Is(err, usecase.ErrVerified):
			render.Error(w, http.StatusTeapot, reasonVerified)
		default:
			h.internalError(w, r, err, "failed to verify user")
		}
		return
	}

	render.OK(w)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req payload.LoginRequest
	if err := payload.Decode(r, &req); err != nil {
		render.Error(w, http.StatusBadRequest, reasonMissingFields)
		return
	}

	result, err := h.authUsecase.Login(r.Context(), usecase.LoginParams{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrMissingFields):
			render.Error(w, http.StatusBadRequest, reasonMissingFields)
		case errors.Is(err, usecase.ErrInvalidCredentials):
			render.Error(w, http.StatusUnauthorized, reasonInvalidCredentials)
		case errors.Is(err, usecase.ErrUnverified):
			render.Error(w, http.StatusForbidden, reasonUnverified)
		case errors.Is(err, usecase.ErrSessionConflict):
			render.Error(w, http.StatusConflict, reasonSessionConflict)
		default:
			h.internalError(w, r, err, "failed to log in")
		}
		return
	}

	h.setSessionCookie(w, result.SessionID, result.ExpiresAt)
	render.JSON(w, http.StatusOK, payload.LoginResponse{AccessToken: result.AccessToken})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	session, _, ok := authContext(r)
	if !ok {
		render.Error(w, http.StatusUnauthorized, middleware.ReasonMissingToken)
		return
	}

	if err := h.authUsecase.Logout(r.Context(), session.UserID); err != nil {
		h.internalError(w, r, err, "failed to log out")
		return
	}

	h.clearSessionCookie(w)
	render.OK(w)
}
