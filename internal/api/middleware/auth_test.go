package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhub/taskhub-api/internal/api/shared"
	"github.com/taskhub/taskhub-api/internal/mocks"
	"github.com/taskhub/taskhub-api/internal/service/auth"
)

func TestAuthenticate(t *testing.T) {
	t.Parallel()

	validUserID := uuid.New()

	tests := []struct {
		name            string
		authHeader      string
		validateErr     error
		expectedStatus  int
		expectedMessage string
	}{
		{
			name:            "missing header",
			authHeader:      "",
			expectedStatus:  http.StatusUnauthorized,
			expectedMessage: "Authorization header required",
		},
		{
			name:            "wrong scheme",
			authHeader:      "Basic dXNlcjpwYXNz",
			expectedStatus:  http.StatusUnauthorized,
			expectedMessage: "Invalid authorization format",
		},
		{
			name:            "no token after scheme",
			authHeader:      "Bearer",
			expectedStatus:  http.StatusUnauthorized,
			expectedMessage: "Invalid authorization format",
		},
		{
			name:            "expired token",
			authHeader:      "Bearer some.jwt.token",
			validateErr:     auth.ErrExpiredToken,
			expectedStatus:  http.StatusUnauthorized,
			expectedMessage: "Token expired",
		},
		{
			name:            "invalid token",
			authHeader:      "Bearer some.jwt.token",
			validateErr:     auth.ErrInvalidToken,
			expectedStatus:  http.StatusUnauthorized,
			expectedMessage: "Invalid token",
		},
		{
			name:            "revoked token",
			authHeader:      "Bearer some.jwt.token",
			validateErr:     auth.ErrRevokedToken,
			expectedStatus:  http.StatusUnauthorized,
			expectedMessage: "Invalid token",
		},
		{
			name:            "refresh token used as access token",
			authHeader:      "Bearer some.jwt.token",
			validateErr:     auth.ErrWrongTokenType,
			expectedStatus:  http.StatusUnauthorized,
			expectedMessage: "Invalid token",
		},
		{
			name:            "unexpected validation failure",
			authHeader:      "Bearer some.jwt.token",
			validateErr:     errors.New("keystore unreachable"),
			expectedStatus:  http.StatusInternalServerError,
			expectedMessage: "Authentication error",
		},
		{
			name:           "valid token",
			authHeader:     "Bearer some.jwt.token",
			expectedStatus: http.StatusOK,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			jwtService := &mocks.MockJWTService{
				ValidateTokenFn: func(ctx context.Context, tokenString string) (*auth.Claims, error) {
					if tc.validateErr != nil {
						return nil, tc.validateErr
					}
					return &auth.Claims{UserID: validUserID, TokenType: "access"}, nil
				},
			}
			middleware := NewAuthMiddleware(jwtService)

			var seenUserID uuid.UUID
			var nextCalled bool
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true
				seenUserID, _ = GetUserID(r)
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
			if tc.authHeader != "" {
				req.Header.Set("Authorization", tc.authHeader)
			}

			rec := httptest.NewRecorder()
			middleware.Authenticate(next).ServeHTTP(rec, req)

			assert.Equal(t, tc.expectedStatus, rec.Code)

			if tc.expectedStatus == http.StatusOK {
				assert.True(t, nextCalled)
				assert.Equal(t, validUserID, seenUserID)
				return
			}

			assert.False(t, nextCalled)
			var resp shared.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tc.expectedMessage, resp.Error)
		})
	}
}

func TestGetUserIDWithoutIdentity(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := GetUserID(req)
	assert.False(t, ok)
}
