package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhub/taskhub-api/internal/api/shared"
	"github.com/taskhub/taskhub-api/internal/mocks"
	"github.com/taskhub/taskhub-api/internal/service/auth"
)

type authAPIFixture struct {
	handler    *AuthHandler
	userStore  *mocks.MemoryUserStore
	jwtService *mocks.MockJWTService
	denylist   *mocks.MemoryDenylist
}

func newAuthAPIFixture(t *testing.T) *authAPIFixture {
	t.Helper()

	userStore := mocks.NewMemoryUserStore()
	jwtService := &mocks.MockJWTService{
		GenerateTokenFn: func(ctx context.Context, userID uuid.UUID) (string, error) {
			return "access-" + userID.String(), nil
		},
		GenerateRefreshTokenFn: func(ctx context.Context, userID uuid.UUID) (string, error) {
			return "refresh-" + userID.String(), nil
		},
	}
	denylist := mocks.NewMemoryDenylist()
	handler := NewAuthHandler(userStore, jwtService, auth.NewBcryptVerifier(), denylist)

	return &authAPIFixture{
		handler:    handler,
		userStore:  userStore,
		jwtService: jwtService,
		denylist:   denylist,
	}
}

func postJSON(t *testing.T, handlerFn http.HandlerFunc, body any) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	handlerFn(rec, req)
	return rec
}

func (f *authAPIFixture) register(t *testing.T, email, password string) AuthResponse {
	t.Helper()

	rec := postJSON(t, f.handler.Register, map[string]string{
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestRegisterEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("returns a token pair on success", func(t *testing.T) {
		t.Parallel()
		f := newAuthAPIFixture(t)

		resp := f.register(t, "new@example.com", "securepassword")

		assert.NotEqual(t, uuid.Nil, resp.UserID)
		assert.Equal(t, "access-"+resp.UserID.String(), resp.AccessToken)
		assert.Equal(t, "refresh-"+resp.UserID.String(), resp.RefreshToken)
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		t.Parallel()
		f := newAuthAPIFixture(t)
		f.register(t, "dup@example.com", "securepassword")

		rec := postJSON(t, f.handler.Register, map[string]string{
			"email":    "dup@example.com",
			"password": "anotherpassword",
		})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("rejects invalid payloads", func(t *testing.T) {
		t.Parallel()
		f := newAuthAPIFixture(t)

		cases := []struct {
			name string
			body map[string]string
		}{
			{name: "malformed email", body: map[string]string{
				"email": "not-an-email", "password": "securepassword"}},
			{name: "short password", body: map[string]string{
				"email": "ok@example.com", "password": "short"}},
			{name: "missing password", body: map[string]string{
				"email": "ok@example.com"}},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				rec := postJSON(t, f.handler.Register, tc.body)
				assert.Equal(t, http.StatusBadRequest, rec.Code)
			})
		}
	})
}

func TestLoginEndpoint(t *testing.T) {
	t.Parallel()

	f := newAuthAPIFixture(t)
	registered := f.register(t, "login@example.com", "securepassword")

	t.Run("valid credentials", func(t *testing.T) {
		rec := postJSON(t, f.handler.Login, map[string]string{
			"email":    "login@example.com",
			"password": "securepassword",
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp AuthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, registered.UserID, resp.UserID)
		assert.NotEmpty(t, resp.AccessToken)
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := postJSON(t, f.handler.Login, map[string]string{
			"email":    "login@example.com",
			"password": "wrongpassword",
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("unknown email gets the same answer as a bad password", func(t *testing.T) {
		rec := postJSON(t, f.handler.Login, map[string]string{
			"email":    "nobody@example.com",
			"password": "securepassword",
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)

		var resp shared.ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "Invalid credentials", resp.Error)
	})
}

func TestRefreshTokenEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("issues a fresh pair", func(t *testing.T) {
		t.Parallel()
		f := newAuthAPIFixture(t)
		userID := uuid.New()
		f.jwtService.ValidateRefreshTokenFn = func(
			ctx context.Context, tokenString string,
		) (*auth.Claims, error) {
			require.Equal(t, "good-refresh-token", tokenString)
			return &auth.Claims{UserID: userID, TokenType: "refresh"}, nil
		}

		rec := postJSON(t, f.handler.RefreshToken, map[string]string{
			"refresh_token": "good-refresh-token",
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp RefreshTokenResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "access-"+userID.String(), resp.AccessToken)
		assert.Equal(t, "refresh-"+userID.String(), resp.RefreshToken)
	})

	t.Run("expired refresh token is unauthorized", func(t *testing.T) {
		t.Parallel()
		f := newAuthAPIFixture(t)
		f.jwtService.ValidateRefreshTokenFn = func(
			ctx context.Context, tokenString string,
		) (*auth.Claims, error) {
			return nil, auth.ErrExpiredRefreshToken
		}

		rec := postJSON(t, f.handler.RefreshToken, map[string]string{
			"refresh_token": "stale-token",
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("missing token is a bad request", func(t *testing.T) {
		t.Parallel()
		f := newAuthAPIFixture(t)
		rec := postJSON(t, f.handler.RefreshToken, map[string]string{})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestLogoutEndpoint(t *testing.T) {
	t.Parallel()

	logout := func(t *testing.T, f *authAPIFixture, authHeader string) *httptest.ResponseRecorder {
		t.Helper()
		req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
		if authHeader != "" {
			req.Header.Set("Authorization", authHeader)
		}
		rec := httptest.NewRecorder()
		f.handler.Logout(rec, req)
		return rec
	}

	t.Run("revokes the presented token", func(t *testing.T) {
		t.Parallel()
		f := newAuthAPIFixture(t)
		tokenID := uuid.New().String()
		remaining := 30 * time.Minute
		f.jwtService.ValidateTokenFn = func(ctx context.Context, tokenString string) (*auth.Claims, error) {
			require.Equal(t, "valid-access-token", tokenString)
			return &auth.Claims{
				UserID:    uuid.New(),
				TokenType: "access",
				ExpiresAt: time.Now().Add(remaining),
				ID:        tokenID,
			}, nil
		}

		rec := logout(t, f, "Bearer valid-access-token")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp MessageResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "Logged out successfully", resp.Message)

		ttl, ok := f.denylist.TTL(tokenID)
		require.True(t, ok, "token ID should be in the denylist")
		assert.Greater(t, ttl, remaining, "revocation should outlive the token")
	})

	t.Run("rejects a malformed authorization header", func(t *testing.T) {
		t.Parallel()
		f := newAuthAPIFixture(t)

		for _, header := range []string{"", "Bearer", "Basic dXNlcjpwYXNz"} {
			rec := logout(t, f, header)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		}
		assert.Zero(t, f.denylist.Len())
	})

	t.Run("rejects an invalid token", func(t *testing.T) {
		t.Parallel()
		f := newAuthAPIFixture(t)
		f.jwtService.ValidateTokenFn = func(ctx context.Context, tokenString string) (*auth.Claims, error) {
			return nil, auth.ErrInvalidToken
		}

		rec := logout(t, f, "Bearer garbage")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Zero(t, f.denylist.Len())
	})

	t.Run("reports a denylist failure", func(t *testing.T) {
		t.Parallel()
		f := newAuthAPIFixture(t)
		f.jwtService.ValidateTokenFn = func(ctx context.Context, tokenString string) (*auth.Claims, error) {
			return &auth.Claims{
				UserID:    uuid.New(),
				TokenType: "access",
				ExpiresAt: time.Now().Add(time.Hour),
				ID:        uuid.New().String(),
			}, nil
		}
		f.denylist.RevokeErr = errors.New("redis unavailable")

		rec := logout(t, f, "Bearer valid-access-token")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestMeEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("returns the authenticated profile", func(t *testing.T) {
		t.Parallel()
		f := newAuthAPIFixture(t)
		registered := f.register(t, "me@example.com", "securepassword")

		req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
		ctx := context.WithValue(req.Context(), shared.UserIDContextKey, registered.UserID)
		req = req.WithContext(ctx)

		rec := httptest.NewRecorder()
		f.handler.Me(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp UserResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, registered.UserID, resp.ID)
		assert.Equal(t, "me@example.com", resp.Email)
	})

	t.Run("missing identity is unauthorized", func(t *testing.T) {
		t.Parallel()
		f := newAuthAPIFixture(t)

		req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
		rec := httptest.NewRecorder()
		f.handler.Me(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
