package get

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"gas-monitor/internal/storage"
)

type CustomerLister interface {
	ListCustomers(ctx context.Context, onlyActive bool) ([]*storage.Customer, error)
}

// GetCustomers отдаёт активных заказчиков для формы оператора.
func GetCustomers(log *slog.Logger, customers CustomerLister) http.HandlerFunc {
	return list(log, customers, true, "handlers.customers.GetCustomers")
}

func GetAllCustomersAdmin(log *slog.Logger, customers CustomerLister) http.HandlerFunc {
	return list(log, customers, false, "handlers.customers.GetAllCustomersAdmin")
}

func list(log *slog.Logger, customers CustomerLister, onlyActive bool, op string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		items, err := customers.ListCustomers(ctx, onlyActive)
		if err != nil {
			log.With(slog.String("op", op), slog.String("error", err.Error())).Error("Failed to fetch customers")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, items)
	}
}
