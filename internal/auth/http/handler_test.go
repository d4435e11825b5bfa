package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	accessDomain "github.com/allisson/carevault/internal/access/domain"
	authDomain "github.com/allisson/carevault/internal/auth/domain"
	"github.com/allisson/carevault/internal/auth/http/dto"
	"github.com/allisson/carevault/internal/auth/http/mocks"
	authUseCase "github.com/allisson/carevault/internal/auth/usecase"
	transportDomain "github.com/allisson/carevault/internal/transport/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newAuthRouter(handler *AuthHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/v1/auth/login", handler.LoginHandler)
	router.POST("/v1/users", handler.CreateUserHandler)
	router.POST("/v1/users/:id/unlock", handler.UnlockUserHandler)
	return router
}

func serve(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

const loginBody = `{"email":"jane@example.com","password":"secret","timestamp":1760000000000}`

func TestAuthHandler_LoginHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		login := mocks.NewMockLoginUseCase(t)
		user := &authDomain.User{ID: uuid.Must(uuid.NewV7()), Role: accessDomain.RolePatient}
		expiresAt := time.Date(2026, 10, 15, 13, 0, 0, 0, time.UTC)

		login.On("Login", mock.Anything, &transportDomain.Credentials{
			Email:     "jane@example.com",
			Password:  "secret",
			Timestamp: 1760000000000,
		}).Return(&authDomain.Session{Token: "jwt", ExpiresAt: expiresAt, User: user}, nil).Once()

		handler := NewAuthHandler(login, mocks.NewMockUserUseCase(t), false, discardLogger())
		w := serve(newAuthRouter(handler), http.MethodPost, "/v1/auth/login", loginBody)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))

		var resp dto.LoginResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "jwt", resp.Token)
		assert.Equal(t, user.ID.String(), resp.UserID)
		assert.Equal(t, "patient", resp.Role)
	})

	t.Run("Error_StatusMapping", func(t *testing.T) {
		tests := []struct {
			name   string
			err    error
			status int
		}{
			{"invalid_credentials", authDomain.ErrInvalidCredentials, http.StatusUnauthorized},
			{"replay", transportDomain.ErrReplayDetected, http.StatusUnauthorized},
			{"locked", authDomain.ErrUserLocked, http.StatusLocked},
			{"inactive", authDomain.ErrUserInactive, http.StatusForbidden},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				login := mocks.NewMockLoginUseCase(t)
				login.On("Login", mock.Anything, mock.Anything).Return(nil, tt.err).Once()

				handler := NewAuthHandler(login, mocks.NewMockUserUseCase(t), false, discardLogger())
				w := serve(newAuthRouter(handler), http.MethodPost, "/v1/auth/login", loginBody)
				assert.Equal(t, tt.status, w.Code)
			})
		}
	})

	t.Run("Error_MissingTimestamp", func(t *testing.T) {
		handler := NewAuthHandler(mocks.NewMockLoginUseCase(t), mocks.NewMockUserUseCase(t), false, discardLogger())
		w := serve(newAuthRouter(handler), http.MethodPost, "/v1/auth/login",
			`{"email":"jane@example.com","password":"secret"}`)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("Error_PlaintextWhenEncryptionRequired", func(t *testing.T) {
		handler := NewAuthHandler(mocks.NewMockLoginUseCase(t), mocks.NewMockUserUseCase(t), true, discardLogger())
		w := serve(newAuthRouter(handler), http.MethodPost, "/v1/auth/login", loginBody)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAuthHandler_CreateUserHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		users := mocks.NewMockUserUseCase(t)
		user := &authDomain.User{
			ID:       uuid.Must(uuid.NewV7()),
			Email:    "doc@example.com",
			Role:     accessDomain.RoleClinician,
			IsActive: true,
		}
		users.On("Create", mock.Anything, &authUseCase.CreateUserInput{
			Email:    "doc@example.com",
			Password: "Str0ng!Password",
			Role:     accessDomain.RoleClinician,
		}).Return(user, nil).Once()

		handler := NewAuthHandler(mocks.NewMockLoginUseCase(t), users, false, discardLogger())
		w := serve(newAuthRouter(handler), http.MethodPost, "/v1/users",
			`{"email":"doc@example.com","password":"Str0ng!Password","role":"clinician"}`)

		require.Equal(t, http.StatusCreated, w.Code)
		assert.NotContains(t, w.Body.String(), "password")
	})

	t.Run("Error_UnknownRole", func(t *testing.T) {
		handler := NewAuthHandler(mocks.NewMockLoginUseCase(t), mocks.NewMockUserUseCase(t), false, discardLogger())
		w := serve(newAuthRouter(handler), http.MethodPost, "/v1/users",
			`{"email":"doc@example.com","password":"Str0ng!Password","role":"nurse"}`)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("Error_Duplicate", func(t *testing.T) {
		users := mocks.NewMockUserUseCase(t)
		users.On("Create", mock.Anything, mock.Anything).Return(nil, authDomain.ErrUserAlreadyExists).Once()

		handler := NewAuthHandler(mocks.NewMockLoginUseCase(t), users, false, discardLogger())
		w := serve(newAuthRouter(handler), http.MethodPost, "/v1/users",
			`{"email":"doc@example.com","password":"Str0ng!Password","role":"clinician"}`)
		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestAuthHandler_UnlockUserHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		users := mocks.NewMockUserUseCase(t)
		id := uuid.Must(uuid.NewV7())
		users.On("Unlock", mock.Anything, id).Return(nil).Once()

		handler := NewAuthHandler(mocks.NewMockLoginUseCase(t), users, false, discardLogger())
		w := serve(newAuthRouter(handler), http.MethodPost, "/v1/users/"+id.String()+"/unlock", "")
		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("Error_InvalidID", func(t *testing.T) {
		handler := NewAuthHandler(mocks.NewMockLoginUseCase(t), mocks.NewMockUserUseCase(t), false, discardLogger())
		w := serve(newAuthRouter(handler), http.MethodPost, "/v1/users/nope/unlock", "")
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		users := mocks.NewMockUserUseCase(t)
		users.On("Unlock", mock.Anything, mock.Anything).Return(authDomain.ErrUserNotFound).Once()

		handler := NewAuthHandler(mocks.NewMockLoginUseCase(t), users, false, discardLogger())
		w := serve(newAuthRouter(handler), http.MethodPost, "/v1/users/"+uuid.NewString()+"/unlock", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestAuthenticationMiddleware(t *testing.T) {
	actor := accessDomain.Actor{ID: uuid.Must(uuid.NewV7()), Role: accessDomain.RoleClinician}

	newRouter := func(login authUseCase.LoginUseCase) *gin.Engine {
		gin.SetMode(gin.TestMode)
		router := gin.New()
		router.Use(AuthenticationMiddleware(login, discardLogger()))
		router.GET("/whoami", func(c *gin.Context) {
			got, ok := accessDomain.ActorFromContext(c.Request.Context())
			if !ok {
				c.Status(http.StatusTeapot)
				return
			}
			c.String(http.StatusOK, got.ID.String())
		})
		return router
	}

	request := func(router http.Handler, header string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	t.Run("Success_CaseInsensitiveScheme", func(t *testing.T) {
		login := mocks.NewMockLoginUseCase(t)
		login.On("Authenticate", mock.Anything, "jwt").Return(actor, nil).Once()

		w := request(newRouter(login), "BEARER jwt")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, actor.ID.String(), w.Body.String())
	})

	t.Run("Error_MissingOrMalformed", func(t *testing.T) {
		for _, header := range []string{"", "Basic abc", "Bearer ", "Bear"} {
			w := request(newRouter(mocks.NewMockLoginUseCase(t)), header)
			assert.Equal(t, http.StatusUnauthorized, w.Code, header)
		}
	})

	t.Run("Error_InvalidToken", func(t *testing.T) {
		login := mocks.NewMockLoginUseCase(t)
		login.On("Authenticate", mock.Anything, "expired").
			Return(accessDomain.Actor{}, authDomain.ErrInvalidToken).Once()

		w := request(newRouter(login), "Bearer expired")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Error_InactiveUser", func(t *testing.T) {
		login := mocks.NewMockLoginUseCase(t)
		login.On("Authenticate", mock.Anything, "jwt").
			Return(accessDomain.Actor{}, authDomain.ErrUserInactive).Once()

		w := request(newRouter(login), "Bearer jwt")
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	alice := accessDomain.Actor{ID: uuid.Must(uuid.NewV7()), Role: accessDomain.RolePatient}
	bob := accessDomain.Actor{ID: uuid.Must(uuid.NewV7()), Role: accessDomain.RolePatient}

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		switch c.GetHeader("X-Test-Actor") {
		case "alice":
			c.Request = c.Request.WithContext(accessDomain.WithActor(c.Request.Context(), alice))
		case "bob":
			c.Request = c.Request.WithContext(accessDomain.WithActor(c.Request.Context(), bob))
		}
		c.Next()
	})
	router.Use(RateLimitMiddleware(ctx, 0.001, 1, discardLogger()))
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	call := func(who string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("X-Test-Actor", who)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, call("alice").Code)

	limited := call("alice")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.NotEmpty(t, limited.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, call("bob").Code)
	assert.Equal(t, http.StatusUnauthorized, call("").Code)
}

func TestLoginRateLimitMiddleware(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(LoginRateLimitMiddleware(ctx, 0.001, 2, discardLogger()))
	router.POST("/v1/auth/login", func(c *gin.Context) { c.Status(http.StatusOK) })

	call := func(addr string) int {
		req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", nil)
		req.RemoteAddr = addr
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, call("10.0.0.1:1234"))
	assert.Equal(t, http.StatusOK, call("10.0.0.1:1235"))
	assert.Equal(t, http.StatusTooManyRequests, call("10.0.0.1:1236"))
	assert.Equal(t, http.StatusOK, call("10.0.0.2:1234"))
}

func TestLimiterStore_EvictIdle(t *testing.T) {
	store := &limiterStore{rps: 1, burst: 1, now: time.Now}
	store.getLimiter("stale")

	store.evictIdle(time.Now().Add(time.Minute))

	_, ok := store.limiters.Load("stale")
	assert.False(t, ok)
}
