package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"gas-monitor/internal/storage"
)

type MockProfileProvider struct {
	mock.Mock
}

func (m *MockProfileProvider) GetProfileByLogin(ctx context.Context, login string) (*storage.Profile, error) {
	args := m.Called(ctx, login)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.Profile), args.Error(1)
}

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestBasicAuth(t *testing.T) {
	handler := BasicAuth("admin", "secret")(http.HandlerFunc(okHandler))

	tests := []struct {
		name       string
		user, pass string
		setAuth    bool
		want       int
	}{
		{"no header", "", "", false, http.StatusUnauthorized},
		{"wrong password", "admin", "nope", true, http.StatusUnauthorized},
		{"wrong user", "root", "secret", true, http.StatusUnauthorized},
		{"ok", "admin", "secret", true, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/admin/profiles", nil)
			if tt.setAuth {
				req.SetBasicAuth(tt.user, tt.pass)
			}
			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.want, rr.Code)
			if tt.want == http.StatusUnauthorized {
				assert.Contains(t, rr.Header().Get("WWW-Authenticate"), "Basic")
			}
		})
	}
}

func TestBasicAuth_EmptyConfiguredLoginRejects(t *testing.T) {
	handler := BasicAuth("", "")(http.HandlerFunc(okHandler))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.SetBasicAuth("", "")
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestOperator(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	require.NoError(t, err)

	profiles := new(MockProfileProvider)
	profiles.On("GetProfileByLogin", mock.Anything, "ana").
		Return(&storage.Profile{ID: "p1", Login: "ana", DisplayName: "Ana", IsActive: true, PasswordHash: string(hash)}, nil)
	profiles.On("GetProfileByLogin", mock.Anything, "old").
		Return(&storage.Profile{ID: "p2", Login: "old", IsActive: false, PasswordHash: string(hash)}, nil)
	profiles.On("GetProfileByLogin", mock.Anything, "ghost").Return(nil, storage.ErrNotFound)
	profiles.On("GetProfileByLogin", mock.Anything, "broken").Return(nil, errors.New("db down"))

	var got storage.Profile
	handler := Operator(slog.Default(), profiles)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = ProfileFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	do := func(login, pass string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/readings", nil)
		req.SetBasicAuth(login, pass)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr.Code
	}

	assert.Equal(t, http.StatusOK, do("ana", "pw"))
	assert.Equal(t, "Ana", got.DisplayName)

	assert.Equal(t, http.StatusUnauthorized, do("ana", "wrong"))
	assert.Equal(t, http.StatusUnauthorized, do("old", "pw"))
	assert.Equal(t, http.StatusUnauthorized, do("ghost", "pw"))
	assert.Equal(t, http.StatusInternalServerError, do("broken", "pw"))
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret")))
}

func TestProfileFromContext_Missing(t *testing.T) {
	_, ok := ProfileFromContext(context.Background())
	assert.False(t, ok)
}
