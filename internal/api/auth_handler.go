package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/taskhub/taskhub-api/internal/api/shared"
	"github.com/taskhub/taskhub-api/internal/domain"
	"github.com/taskhub/taskhub-api/internal/service/auth"
	"github.com/taskhub/taskhub-api/internal/store"
)

// AuthHandler handles authentication-related API requests.
type AuthHandler struct {
	userStore        store.UserStore
	jwtService       auth.JWTService
	passwordVerifier auth.PasswordVerifier
	denylist         auth.TokenDenylist
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(
	userStore store.UserStore,
	jwtService auth.JWTService,
	passwordVerifier auth.PasswordVerifier,
	denylist auth.TokenDenylist,
) *AuthHandler {
	return &AuthHandler{
		userStore:        userStore,
		jwtService:       jwtService,
		passwordVerifier: passwordVerifier,
		denylist:         denylist,
	}
}

// Register handles the /api/auth/register endpoint.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest

	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.Validate.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	user, err := domain.NewUser(req.Email, req.Password)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid user data")
		return
	}

	if err := h.userStore.Create(r.Context(), user); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			shared.RespondWithError(w, r, http.StatusConflict, "Email already exists")
			return
		}
		shared.RespondWithErrorAndLog(
			w, r, http.StatusInternalServerError, "Failed to create user", err)
		return
	}

	h.respondWithTokenPair(w, r, user, http.StatusCreated)
}

// Login handles the /api/auth/login endpoint.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest

	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.Validate.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	user, err := h.userStore.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		shared.RespondWithErrorAndLog(
			w, r, http.StatusInternalServerError, "Failed to authenticate user", err)
		return
	}

	if err := h.passwordVerifier.Compare(user.HashedPassword, req.Password); err != nil {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	h.respondWithTokenPair(w, r, user, http.StatusOK)
}

// RefreshToken handles the /api/auth/refresh endpoint. It validates the
// presented refresh token and issues a fresh token pair.
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req RefreshTokenRequest

	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.Validate.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	claims, err := h.jwtService.ValidateRefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		shared.RespondWithError(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err))
		return
	}

	accessToken, err := h.jwtService.GenerateToken(r.Context(), claims.UserID)
	if err != nil {
		shared.RespondWithErrorAndLog(
			w, r, http.StatusInternalServerError, "Failed to generate authentication token", err)
		return
	}

	refreshToken, err := h.jwtService.GenerateRefreshToken(r.Context(), claims.UserID)
	if err != nil {
		shared.RespondWithErrorAndLog(
			w, r, http.StatusInternalServerError, "Failed to generate refresh token", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, RefreshTokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	})
}

// revocationSlack extends a revocation entry past the token's expiry so
// tokens still accepted under the validator's clock skew leeway stay revoked.
const revocationSlack = 5 * time.Minute

// Logout handles the /api/auth/logout endpoint. It revokes the presented
// access token so it can no longer be used, even before its natural expiry.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	authHeader := r.Header.Get("Authorization")
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid authorization format")
		return
	}

	claims, err := h.jwtService.ValidateToken(r.Context(), parts[1])
	if err != nil {
		shared.RespondWithError(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err))
		return
	}

	ttl := time.Until(claims.ExpiresAt) + revocationSlack
	if err := h.denylist.Revoke(r.Context(), claims.ID, ttl); err != nil {
		shared.RespondWithErrorAndLog(
			w, r, http.StatusInternalServerError, "Failed to log out", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, MessageResponse{
		Message: "Logged out successfully",
	})
}

// Me handles the /api/auth/me endpoint. It returns the profile of the
// authenticated user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	user, err := h.userStore.GetByID(r.Context(), userID)
	if err != nil {
		shared.RespondWithErrorAndLog(
			w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewUserResponse(user))
}

// respondWithTokenPair issues access and refresh tokens for the user.
func (h *AuthHandler) respondWithTokenPair(
	w http.ResponseWriter,
	r *http.Request,
	user *domain.User,
	status int,
) {
	accessToken, err := h.jwtService.GenerateToken(r.Context(), user.ID)
	if err != nil {
		slog.Error("failed to generate token", "error", err, "user_id", user.ID)
		shared.RespondWithError(
			w, r, http.StatusInternalServerError, "Failed to generate authentication token")
		return
	}

	refreshToken, err := h.jwtService.GenerateRefreshToken(r.Context(), user.ID)
	if err != nil {
		slog.Error("failed to generate refresh token", "error", err, "user_id", user.ID)
		shared.RespondWithError(
			w, r, http.StatusInternalServerError, "Failed to generate refresh token")
		return
	}

	shared.RespondWithJSON(w, r, status, AuthResponse{
		UserID:       user.ID,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	})
}
