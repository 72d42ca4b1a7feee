package save

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/render"
	"github.com/google/uuid"

	"gas-monitor/internal/middleware/auth"
	"gas-monitor/internal/storage"
)

type ProfileCreateProvider interface {
	CreateProfile(ctx context.Context, p storage.Profile) error
}

const minPasswordLen = 8

func SaveProfileAdmin(log *slog.Logger, profiles ProfileCreateProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.profiles.SaveProfileAdmin"

		var req struct {
			Login       string `json:"login"`
			DisplayName string `json:"display_name"`
			Role        string `json:"role"`
			Password    string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "ошибка парсинга JSON", http.StatusBadRequest)
			return
		}

		req.Login = strings.TrimSpace(req.Login)
		if req.Login == "" || strings.TrimSpace(req.DisplayName) == "" {
			http.Error(w, "поля login и display_name обязательны", http.StatusBadRequest)
			return
		}
		if len(req.Password) < minPasswordLen {
			http.Error(w, fmt.Sprintf("пароль короче %d символов", minPasswordLen), http.StatusBadRequest)
			return
		}
		if req.Role == "" {
			req.Role = storage.RoleOperator
		}
		if req.Role != storage.RoleOperator && req.Role != storage.RoleAdmin {
			http.Error(w, "неизвестная роль", http.StatusBadRequest)
			return
		}

		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			log.Error(fmt.Sprintf("%s: ошибка хеширования пароля: %v", op, err))
			http.Error(w, "ошибка создания оператора", http.StatusInternalServerError)
			return
		}

		profile := storage.Profile{
			ID:           uuid.NewString(),
			Login:        req.Login,
			DisplayName:  strings.TrimSpace(req.DisplayName),
			Role:         req.Role,
			IsActive:     true,
			PasswordHash: hash,
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := profiles.CreateProfile(ctx, profile); err != nil {
			if errors.Is(err, storage.ErrDuplicate) {
				http.Error(w, "логин уже занят", http.StatusConflict)
				return
			}
			log.Error(fmt.Sprintf("%s: %v", op, err))
			http.Error(w, "ошибка создания оператора", http.StatusInternalServerError)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, profile)
	}
}
