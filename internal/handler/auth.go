package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/poker-club/internal/config"
	"github.com/iliyamo/poker-club/internal/logging"
	"github.com/iliyamo/poker-club/internal/middleware"
	"github.com/iliyamo/poker-club/internal/model"
	"github.com/iliyamo/poker-club/internal/repository"
	"github.com/iliyamo/poker-club/internal/utils"
)

type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id uint64) (*model.User, error)
}

type TokenStore interface {
	StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
	ValidateRefresh(ctx context.Context, tokenHash string, now time.Time) (uint64, error)
	RevokeByHash(ctx context.Context, tokenHash string) error
	RevokeAllForUser(ctx context.Context, userID uint64) error
}

// AuthHandler serves the admin login.  There is no self-registration;
// the first account is bootstrapped from configuration.
type AuthHandler struct {
	Secret         string
	AccessTTLMin   int
	RefreshTTLDays int
	Users          UserStore
	Tokens         TokenStore
	Log            *logging.Logger
	Now            func() time.Time
}

func NewAuthHandler(cfg config.Config, users UserStore, tokens TokenStore, log *logging.Logger) *AuthHandler {
	return &AuthHandler{
		Secret:         cfg.JWTSecret,
		AccessTTLMin:   cfg.AccessTTLMin,
		RefreshTTLDays: cfg.RefreshTTLDays,
		Users:          users,
		Tokens:         tokens,
		Log:            loggerOr(log).With("handler", "auth"),
		Now:            time.Now,
	}
}

type loginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshReq struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

type userPart struct {
	ID    uint64 `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type authResp struct {
	User    userPart  `json:"user"`
	Access  tokenPart `json:"access"`
	Refresh tokenPart `json:"refresh"`
}

// Login verifies credentials and returns a token pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := bind(c, &req); err != nil {
		return fail(c, h.Log, "login", err)
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if errors.Is(err, repository.ErrNotFound) {
		utils.BurnPasswordCheck(req.Password)
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	if err != nil {
		return fail(c, h.Log, "login", err)
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	if !u.IsActive {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "account disabled"})
	}

	resp, err := h.issue(ctx, u)
	if err != nil {
		return fail(c, h.Log, "login", err)
	}
	h.Log.Info("admin logged in", "user_id", u.ID)
	return c.JSON(http.StatusOK, resp)
}

// Refresh rotates a refresh token: the presented one is revoked and a new
// pair is issued.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := bind(c, &req); err != nil {
		return fail(c, h.Log, "refresh", err)
	}
	hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

	ctx, cancel := dbCtx(c)
	defer cancel()

	userID, err := h.Tokens.ValidateRefresh(ctx, hash, h.Now().UTC())
	if errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
	}
	if err != nil {
		return fail(c, h.Log, "refresh", err)
	}
	if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
		return fail(c, h.Log, "refresh", err)
	}

	u, err := h.Users.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && !u.IsActive) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
	}
	if err != nil {
		return fail(c, h.Log, "refresh", err)
	}

	resp, err := h.issue(ctx, u)
	if err != nil {
		return fail(c, h.Log, "refresh", err)
	}
	return c.JSON(http.StatusOK, resp)
}

// Logout revokes the refresh token in the body, or every session of the
// bearer when the body carries none.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	_ = c.Bind(&req)

	ctx, cancel := dbCtx(c)
	defer cancel()

	if raw := strings.TrimSpace(req.RefreshToken); raw != "" {
		if err := h.Tokens.RevokeByHash(ctx, utils.HashRefreshRaw(raw)); err != nil {
			return fail(c, h.Log, "logout", err)
		}
		return c.NoContent(http.StatusNoContent)
	}

	auth := c.Request().Header.Get(echo.HeaderAuthorization)
	if !strings.HasPrefix(auth, "Bearer ") {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refreshToken or bearer token required"})
	}
	claims, err := utils.ParseAccessToken(h.Secret, strings.TrimSpace(strings.TrimPrefix(auth, "Bearer ")))
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
	}
	uid, _ := claims.UserID()
	if err := h.Tokens.RevokeAllForUser(ctx, uid); err != nil {
		return fail(c, h.Log, "logout", err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Me returns the authenticated account.
func (h *AuthHandler) Me(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return fail(c, h.Log, "user", err)
	}
	return c.JSON(http.StatusOK, userPart{ID: u.ID, Email: u.Email, Role: u.Role})
}

func (h *AuthHandler) issue(ctx context.Context, u *model.User) (authResp, error) {
	access, err := utils.NewAccessToken(h.Secret, u.ID, u.Role, h.AccessTTLMin)
	if err != nil {
		return authResp{}, err
	}
	refresh, err := utils.NewRefreshToken(h.RefreshTTLDays)
	if err != nil {
		return authResp{}, err
	}
	if err := h.Tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return authResp{}, err
	}
	return authResp{
		User:    userPart{ID: u.ID, Email: u.Email, Role: u.Role},
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp},
	}, nil
}
