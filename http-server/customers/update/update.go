package update

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"gas-monitor/internal/storage"
)

type CustomerUpdateProvider interface {
	UpdateCustomer(ctx context.Context, code string, c storage.Customer) error
}

func UpdateCustomerAdmin(log *slog.Logger, customers CustomerUpdateProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.customers.UpdateCustomerAdmin"

		code := chi.URLParam(r, "code")

		var req storage.Customer
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Неверный JSON", http.StatusBadRequest)
			return
		}
		req.Code = code
		req.Name = strings.TrimSpace(req.Name)
		if req.Name == "" {
			http.Error(w, "поле name обязательно", http.StatusBadRequest)
			return
		}
		if req.Storages == nil {
			req.Storages = []string{}
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := customers.UpdateCustomer(ctx, code, req); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				http.Error(w, "Customer not found", http.StatusNotFound)
				return
			}
			log.Error("Ошибка обновления заказчика", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Ошибка сервера", http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusOK)
	}
}
