package update

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"gas-monitor/internal/service/monitor"
	"gas-monitor/internal/storage"
)

type ReadingEditor interface {
	Get(ctx context.Context, id string) (*storage.Reading, error)
	Update(ctx context.Context, upd storage.UpdateReading) error
	Delete(ctx context.Context, id string) error
}

func GetReadingAdmin(log *slog.Logger, editor ReadingEditor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.readings.GetReadingAdmin"

		id := chi.URLParam(r, "id")

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		reading, err := editor.Get(ctx, id)
		if err != nil {
			writeError(w, log, op, id, err)
			return
		}

		render.JSON(w, r, reading)
	}
}

func UpdateReadingAdmin(log *slog.Logger, editor ReadingEditor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.readings.UpdateReadingAdmin"

		id := chi.URLParam(r, "id")

		var upd storage.UpdateReading
		if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
			http.Error(w, "Неверный JSON", http.StatusBadRequest)
			return
		}
		upd.ID = id

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := editor.Update(ctx, upd); err != nil {
			writeError(w, log, op, id, err)
			return
		}

		render.JSON(w, r, map[string]interface{}{
			"status": "updated",
			"id":     id,
		})
	}
}

func DeleteReadingAdmin(log *slog.Logger, editor ReadingEditor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.readings.DeleteReadingAdmin"

		id := chi.URLParam(r, "id")

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := editor.Delete(ctx, id); err != nil {
			writeError(w, log, op, id, err)
			return
		}

		log.Info("reading deleted", slog.String("id", id))
		w.WriteHeader(http.StatusNoContent)
	}
}

func writeError(w http.ResponseWriter, log *slog.Logger, op, id string, err error) {
	switch {
	case monitor.IsValidation(err):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, storage.ErrNotFound):
		log.With(slog.String("op", op), slog.String("id", id)).Warn("Reading not found")
		http.Error(w, "Reading not found", http.StatusNotFound)
	default:
		log.With(
			slog.String("op", op),
			slog.String("id", id),
			slog.String("error", err.Error()),
		).Error("Reading request failed")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
