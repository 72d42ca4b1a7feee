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

	"gas-monitor/internal/storage"
)

type CustomerCreateProvider interface {
	CreateCustomer(ctx context.Context, c storage.Customer) error
}

func SaveCustomerAdmin(log *slog.Logger, customers CustomerCreateProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.customers.SaveCustomerAdmin"

		var req storage.Customer
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "ошибка парсинга JSON", http.StatusBadRequest)
			return
		}

		req.Code = strings.TrimSpace(req.Code)
		req.Name = strings.TrimSpace(req.Name)
		if req.Code == "" || req.Name == "" {
			http.Error(w, "поля code и name обязательны", http.StatusBadRequest)
			return
		}
		if req.Storages == nil {
			req.Storages = []string{}
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := customers.CreateCustomer(ctx, req); err != nil {
			if errors.Is(err, storage.ErrDuplicate) {
				http.Error(w, "заказчик с таким кодом уже существует", http.StatusConflict)
				return
			}
			log.Error(fmt.Sprintf("%s: %v", op, err))
			http.Error(w, "ошибка создания заказчика", http.StatusInternalServerError)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, map[string]string{"status": "created"})
	}
}
