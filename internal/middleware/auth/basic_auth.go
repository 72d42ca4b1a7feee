package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"gas-monitor/internal/storage"
)

// BasicAuth закрывает админский роутер логином и паролем из конфига.
func BasicAuth(username, password string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, pass, ok := r.BasicAuth()
			if !ok || username == "" {
				requireAuth(w, "Admin Area")
				return
			}

			if !equal(user, username) || !equal(pass, password) {
				requireAuth(w, "Admin Area")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

type ProfileProvider interface {
	GetProfileByLogin(ctx context.Context, login string) (*storage.Profile, error)
}

type ctxKey struct{}

// Operator authenticates an operator against the profile's bcrypt hash and
// puts the profile into the request context.
func Operator(log *slog.Logger, profiles ProfileProvider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middleware.auth.Operator"

			login, pass, ok := r.BasicAuth()
			if !ok || login == "" {
				requireAuth(w, "Operators")
				return
			}

			profile, err := profiles.GetProfileByLogin(r.Context(), login)
			if err != nil {
				if !errors.Is(err, storage.ErrNotFound) {
					log.Error("failed to load profile", slog.String("op", op), slog.String("error", err.Error()))
					http.Error(w, "Internal error", http.StatusInternalServerError)
					return
				}
				requireAuth(w, "Operators")
				return
			}

			if !profile.IsActive || bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(pass)) != nil {
				requireAuth(w, "Operators")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithProfile(r.Context(), *profile)))
		})
	}
}

func WithProfile(ctx context.Context, p storage.Profile) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

func ProfileFromContext(ctx context.Context) (storage.Profile, bool) {
	p, ok := ctx.Value(ctxKey{}).(storage.Profile)
	return p, ok
}

func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func requireAuth(w http.ResponseWriter, realm string) {
	w.Header().Set("WWW-Authenticate", `Basic realm="`+realm+`"`)
	http.Error(w, "Unauthorized", http.StatusUnauthorized)
}
