package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"gas-monitor/internal/storage"
)

func (s *Storage) ListCustomers(ctx context.Context, onlyActive bool) ([]*storage.Customer, error) {
	const op = "storage.mysql.ListCustomers"

	stmt := `SELECT code, name, is_active, storages FROM customers`
	if onlyActive {
		stmt += ` WHERE is_active = TRUE`
	}
	stmt += ` ORDER BY code ASC`

	rows, err := s.db.QueryContext(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("%s: ошибка получения заказчиков: %w", op, err)
	}
	defer rows.Close()

	customers := []*storage.Customer{}
	for rows.Next() {
		c := &storage.Customer{}
		var storagesJSON string

		if err := rows.Scan(&c.Code, &c.Name, &c.IsActive, &storagesJSON); err != nil {
			return nil, fmt.Errorf("%s: ошибка сканирования строки: %w", op, err)
		}
		if err := json.Unmarshal([]byte(storagesJSON), &c.Storages); err != nil {
			return nil, fmt.Errorf("%s: ошибка парсинга JSON хранилищ заказчика %s: %w", op, c.Code, err)
		}

		customers = append(customers, c)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: ошибка при итерации по строкам: %w", op, err)
	}

	return customers, nil
}

func (s *Storage) GetCustomer(ctx context.Context, code string) (*storage.Customer, error) {
	const op = "storage.mysql.GetCustomer"

	c := &storage.Customer{}
	var storagesJSON string

	err := s.db.QueryRowContext(ctx, `SELECT code, name, is_active, storages FROM customers WHERE code = ?`, code).
		Scan(&c.Code, &c.Name, &c.IsActive, &storagesJSON)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: заказчик code='%s': %w", op, code, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: выполнение запроса завершилось ошибкой: %w", op, err)
	}

	if err := json.Unmarshal([]byte(storagesJSON), &c.Storages); err != nil {
		return nil, fmt.Errorf("%s: ошибка парсинга JSON хранилищ: %w", op, err)
	}

	return c, nil
}

func (s *Storage) CreateCustomer(ctx context.Context, c storage.Customer) error {
	const op = "storage.mysql.CreateCustomer"

	storagesJSON, err := marshalStorages(c.Storages)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO customers (code, name, is_active, storages) VALUES (?, ?, ?, ?)`,
		c.Code, c.Name, c.IsActive, storagesJSON)
	if err != nil {
		return fmt.Errorf("%s: ошибка сохранения заказчика code='%s': %w", op, c.Code, mapErr(err))
	}

	return nil
}

func (s *Storage) UpdateCustomer(ctx context.Context, code string, c storage.Customer) error {
	const op = "storage.mysql.UpdateCustomer"

	storagesJSON, err := marshalStorages(c.Storages)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE customers SET name = ?, is_active = ?, storages = ? WHERE code = ?`,
		c.Name, c.IsActive, storagesJSON, code)
	if err != nil {
		return fmt.Errorf("%s: ошибка обновления заказчика code='%s': %w", op, code, mapErr(err))
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: заказчик code='%s': %w", op, code, storage.ErrNotFound)
	}

	return nil
}

func marshalStorages(storages []string) (string, error) {
	if storages == nil {
		storages = []string{}
	}
	b, err := json.Marshal(storages)
	if err != nil {
		return "", fmt.Errorf("ошибка сериализации хранилищ: %w", err)
	}
	return string(b), nil
}
