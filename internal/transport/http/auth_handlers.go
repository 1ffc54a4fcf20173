package httptransport

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"surveyhub/internal/domains"
	"surveyhub/internal/httpx"
	"surveyhub/internal/service"
	"surveyhub/internal/storage"
)

type AuthHandlers struct {
	service AuthServices
}

type AuthServices interface {
	Register(ctx context.Context, account domains.AccountCreate) error
	Login(ctx context.Context, email string, password string) (string, string, error)
	Refresh(ctx context.Context, token string) (string, string, error)
	Me(ctx context.Context, token string) (domains.Account, error)
}

func NewAuthHandlers(service AuthServices) *AuthHandlers {
	return &AuthHandlers{
		service: service,
	}
}

func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	account, err := httpx.ReadBody[domains.AccountCreate](r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if account.Email == "" || account.Password == "" {
		httpx.Error(w, http.StatusBadRequest, "email and password are required")
		return
	}

	if err := h.service.Register(r.Context(), account); err != nil {
		if errors.Is(err, storage.ErrUserExist) {
			httpx.Error(w, http.StatusConflict, "Account already exists")
			return
		}
		httpx.Error(w, http.StatusInternalServerError, "Internal error")
		return
	}

	w.WriteHeader(http.StatusCreated)
}

func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	loginData, err := httpx.ReadBody[LoginData](r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	accessToken, refreshToken, err := h.service.Login(r.Context(), loginData.Email, loginData.Password)
	if err != nil {
		if errors.Is(err, service.ErrPasswordIncorrect) || errors.Is(err, storage.ErrUserNotFound) {
			httpx.Error(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		httpx.Error(w, http.StatusInternalServerError, "Internal error")
		return
	}

	setRefreshCookie(w, refreshToken)
	httpx.JSON(w, http.StatusOK, struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}{AccessToken: accessToken, RefreshToken: refreshToken})
}

func (h *AuthHandlers) Refresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie("refreshToken")
	if err != nil || cookie.Value == "" {
		httpx.Error(w, http.StatusBadRequest, "Refresh token is required")
		return
	}

	accessToken, refreshToken, err := h.service.Refresh(r.Context(), cookie.Value)
	if err != nil {
		if errors.Is(err, service.ErrTokenIncorrect) {
			httpx.Error(w, http.StatusUnauthorized, "Token is incorrect")
			return
		}
		if errors.Is(err, storage.ErrUserNotFound) {
			httpx.Error(w, http.StatusUnauthorized, "Account not found")
			return
		}
		httpx.Error(w, http.StatusInternalServerError, "Internal error")
		return
	}

	setRefreshCookie(w, refreshToken)
	httpx.JSON(w, http.StatusOK, struct {
		AccessToken string `json:"access_token"`
	}{AccessToken: accessToken})
}

func (h *AuthHandlers) Me(w http.ResponseWriter, r *http.Request) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		httpx.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	account, err := h.service.Me(r.Context(), strings.TrimPrefix(authHeader, "Bearer "))
	if err != nil {
		httpx.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	httpx.JSON(w, http.StatusOK, account)
}

func setRefreshCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     "refreshToken",
		Value:    token,
		Path:     "/api/auth",
		Expires:  time.Now().Add(7 * 24 * time.Hour),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
