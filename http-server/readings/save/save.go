package save

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"gas-monitor/internal/middleware/auth"
	"gas-monitor/internal/service/monitor"
	"gas-monitor/internal/storage"
)

type ReadingRecorder interface {
	Record(ctx context.Context, operator storage.Profile, in monitor.NewReading) (*storage.Reading, error)
}

type Response struct {
	Reading *storage.Reading `json:"reading,omitempty"`
	Error   string           `json:"error,omitempty"`
}

func SaveReading(log *slog.Logger, recorder ReadingRecorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.readings.SaveReading"

		operator, ok := auth.ProfileFromContext(r.Context())
		if !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		var req monitor.NewReading
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "ошибка парсинга JSON", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		reading, err := recorder.Record(ctx, operator, req)
		if err != nil {
			switch {
			case monitor.IsValidation(err):
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, Response{Error: err.Error()})
			case errors.Is(err, storage.ErrDuplicate):
				render.Status(r, http.StatusConflict)
				render.JSON(w, r, Response{Error: "показание уже сохранено"})
			default:
				log.With(slog.String("op", op), slog.String("error", err.Error())).Error("Failed to save reading")
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, Response{Error: "не удалось сохранить показание"})
			}
			return
		}

		log.Info("reading saved",
			slog.String("id", reading.ID),
			slog.String("customer", reading.CustomerCode),
			slog.String("operator", operator.Login),
		)

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, Response{Reading: reading})
	}
}
