package get

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"gas-monitor/internal/storage"
)

type ProfileLister interface {
	ListProfiles(ctx context.Context) ([]*storage.Profile, error)
}

func GetProfilesAdmin(log *slog.Logger, profiles ProfileLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.profiles.GetProfilesAdmin"

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		items, err := profiles.ListProfiles(ctx)
		if err != nil {
			log.Error("Ошибка получения операторов", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, items)
	}
}
