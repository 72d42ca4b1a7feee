package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"gas-monitor/internal/storage"
)

func (s *Storage) ListCustomers(ctx context.Context, onlyActive bool) ([]*storage.Customer, error) {
	const op = "storage.postgres.ListCustomers"

	stmt := `SELECT code, name, is_active, storages FROM customers`
	if onlyActive {
		stmt += ` WHERE is_active`
	}
	stmt += ` ORDER BY code ASC`

	rows, err := s.pool.Query(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("%s: ошибка получения заказчиков: %w", op, err)
	}
	defer rows.Close()

	customers := []*storage.Customer{}
	for rows.Next() {
		c := &storage.Customer{}
		if err := rows.Scan(&c.Code, &c.Name, &c.IsActive, &c.Storages); err != nil {
			return nil, fmt.Errorf("%s: ошибка сканирования строки: %w", op, err)
		}
		customers = append(customers, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: ошибка при итерации по строкам: %w", op, err)
	}

	return customers, nil
}

func (s *Storage) GetCustomer(ctx context.Context, code string) (*storage.Customer, error) {
	const op = "storage.postgres.GetCustomer"

	c := &storage.Customer{}
	err := s.pool.QueryRow(ctx, `SELECT code, name, is_active, storages FROM customers WHERE code = $1`, code).
		Scan(&c.Code, &c.Name, &c.IsActive, &c.Storages)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: заказчик code='%s': %w", op, code, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return c, nil
}

func (s *Storage) CreateCustomer(ctx context.Context, c storage.Customer) error {
	const op = "storage.postgres.CreateCustomer"

	_, err := s.pool.Exec(ctx,
		`INSERT INTO customers (code, name, is_active, storages) VALUES ($1, $2, $3, $4)`,
		c.Code, c.Name, c.IsActive, storagesOrEmpty(c.Storages))
	if err != nil {
		return fmt.Errorf("%s: ошибка сохранения заказчика code='%s': %w", op, c.Code, mapErr(err))
	}

	return nil
}

func (s *Storage) UpdateCustomer(ctx context.Context, code string, c storage.Customer) error {
	const op = "storage.postgres.UpdateCustomer"

	tag, err := s.pool.Exec(ctx,
		`UPDATE customers SET name = $1, is_active = $2, storages = $3 WHERE code = $4`,
		c.Name, c.IsActive, storagesOrEmpty(c.Storages), code)
	if err != nil {
		return fmt.Errorf("%s: ошибка обновления заказчика code='%s': %w", op, code, mapErr(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: заказчик code='%s': %w", op, code, storage.ErrNotFound)
	}

	return nil
}

func storagesOrEmpty(storages []string) []string {
	if storages == nil {
		return []string{}
	}
	return storages
}
