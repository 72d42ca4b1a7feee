package update

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"gas-monitor/internal/storage"
)

type ProfileUpdateProvider interface {
	UpdateProfiles(ctx context.Context, profiles []storage.Profile) error
}

// UpdateProfilesAdmin принимает список профилей целиком, как их редактирует админка.
func UpdateProfilesAdmin(log *slog.Logger, update ProfileUpdateProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.profiles.UpdateProfilesAdmin"

		var profiles []storage.Profile
		if err := json.NewDecoder(r.Body).Decode(&profiles); err != nil {
			http.Error(w, "Неверный JSON", http.StatusBadRequest)
			return
		}

		for _, p := range profiles {
			if p.ID == "" || (p.Role != storage.RoleOperator && p.Role != storage.RoleAdmin) {
				http.Error(w, "у профиля должны быть id и роль", http.StatusBadRequest)
				return
			}
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		err := update.UpdateProfiles(ctx, profiles)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				http.Error(w, "Профиль не найден", http.StatusNotFound)
				return
			}
			log.Error("Ошибка обновления операторов", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Ошибка сервера", http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusOK)
	}
}
