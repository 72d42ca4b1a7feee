package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"gas-monitor/internal/storage"
)

const selectReadings = `
	SELECT r.id, r.recorded_at, r.created_at, r.customer_code, r.storage_number,
	       r.operation_type, r.fixed_storage_quantity, r.psi, r.temp, r.psi_out,
	       r.flow_turbine, r.remarks, r.operator_id, COALESCE(p.display_name, '')
	FROM readings r
	LEFT JOIN profiles p ON p.id = r.operator_id`

func (s *Storage) scanReading(row pgx.Row) (storage.Reading, error) {
	var r storage.Reading
	var opType string

	err := row.Scan(
		&r.ID,
		&r.RecordedAt,
		&r.CreatedAt,
		&r.CustomerCode,
		&r.StorageNumber,
		&opType,
		&r.FixedStorageQuantity,
		&r.PSI,
		&r.Temp,
		&r.PSIOut,
		&r.FlowTurbine,
		&r.Remarks,
		&r.OperatorID,
		&r.Operator,
	)
	if err != nil {
		return storage.Reading{}, err
	}

	r.OperationType = storage.OperationType(opType)
	r.RecordedAt = r.RecordedAt.In(s.loc)
	r.CreatedAt = r.CreatedAt.In(s.loc)

	return r, nil
}

// args собирает позиционные параметры $1, $2, ...
type args []any

func (a *args) add(v any) string {
	*a = append(*a, v)
	return fmt.Sprintf("$%d", len(*a))
}

func (s *Storage) ListReadings(ctx context.Context, filter storage.ReadingFilter) ([]storage.Reading, error) {
	const op = "storage.postgres.ListReadings"

	var where []string
	var params args

	if len(filter.CustomerCodes) > 0 {
		where = append(where, "r.customer_code = ANY("+params.add(filter.CustomerCodes)+")")
	}
	if !filter.From.IsZero() {
		where = append(where, "r.recorded_at >= "+params.add(filter.From))
	}
	if !filter.To.IsZero() {
		where = append(where, "r.recorded_at < "+params.add(filter.To))
	}
	if filter.Search != "" {
		p := params.add(storage.LikePattern(filter.Search))
		where = append(where, "(r.storage_number ILIKE "+p+" ESCAPE '!' OR r.remarks ILIKE "+p+" ESCAPE '!' OR p.display_name ILIKE "+p+" ESCAPE '!')")
	}

	stmt := selectReadings
	if len(where) > 0 {
		stmt += " WHERE " + strings.Join(where, " AND ")
	}
	stmt += " ORDER BY r.customer_code ASC, r.recorded_at ASC, r.created_at ASC"

	rows, err := s.pool.Query(ctx, stmt, params...)
	if err != nil {
		return nil, fmt.Errorf("%s: ошибка получения показаний: %w", op, err)
	}
	defer rows.Close()

	readings := []storage.Reading{}
	for rows.Next() {
		r, err := s.scanReading(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: ошибка сканирования строки показаний: %w", op, err)
		}
		readings = append(readings, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: ошибка при итерации по строкам: %w", op, err)
	}

	return readings, nil
}

func (s *Storage) GetReading(ctx context.Context, id string) (*storage.Reading, error) {
	const op = "storage.postgres.GetReading"

	r, err := s.scanReading(s.pool.QueryRow(ctx, selectReadings+" WHERE r.id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: показание id=%s: %w", op, id, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &r, nil
}

func (s *Storage) CreateReading(ctx context.Context, r storage.Reading) error {
	const op = "storage.postgres.CreateReading"

	_, err := s.pool.Exec(ctx, `
		INSERT INTO readings (id, recorded_at, created_at, customer_code, storage_number,
			operation_type, fixed_storage_quantity, psi, temp, psi_out, flow_turbine, remarks, operator_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		r.ID,
		r.RecordedAt,
		r.CreatedAt,
		r.CustomerCode,
		r.StorageNumber,
		string(r.OperationType),
		r.FixedStorageQuantity,
		r.PSI,
		r.Temp,
		r.PSIOut,
		r.FlowTurbine,
		r.Remarks,
		r.OperatorID,
	)
	if err != nil {
		return fmt.Errorf("%s: ошибка сохранения показания id=%s: %w", op, r.ID, mapErr(err))
	}

	return nil
}

func (s *Storage) UpdateReading(ctx context.Context, upd storage.UpdateReading) error {
	const op = "storage.postgres.UpdateReading"

	var sets []string
	var params args

	if upd.RecordedAt != nil {
		sets = append(sets, "recorded_at = "+params.add(*upd.RecordedAt))
	}
	if upd.StorageNumber != nil {
		sets = append(sets, "storage_number = "+params.add(*upd.StorageNumber))
	}
	if upd.OperationType != nil {
		sets = append(sets, "operation_type = "+params.add(string(*upd.OperationType)))
	}
	if upd.FixedStorageQuantity != nil {
		sets = append(sets, "fixed_storage_quantity = "+params.add(*upd.FixedStorageQuantity))
	}
	if upd.PSI != nil {
		sets = append(sets, "psi = "+params.add(*upd.PSI))
	}
	if upd.Temp != nil {
		sets = append(sets, "temp = "+params.add(*upd.Temp))
	}
	if upd.PSIOut != nil {
		sets = append(sets, "psi_out = "+params.add(*upd.PSIOut))
	}
	if upd.FlowTurbine != nil {
		sets = append(sets, "flow_turbine = "+params.add(*upd.FlowTurbine))
	}
	if upd.Remarks != nil {
		sets = append(sets, "remarks = "+params.add(*upd.Remarks))
	}

	if len(sets) == 0 {
		return nil
	}

	stmt := "UPDATE readings SET " + strings.Join(sets, ", ") + " WHERE id = " + params.add(upd.ID)

	tag, err := s.pool.Exec(ctx, stmt, params...)
	if err != nil {
		return fmt.Errorf("%s: ошибка обновления показания id=%s: %w", op, upd.ID, mapErr(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: показание id=%s: %w", op, upd.ID, storage.ErrNotFound)
	}

	return nil
}

func (s *Storage) DeleteReading(ctx context.Context, id string) error {
	const op = "storage.postgres.DeleteReading"

	tag, err := s.pool.Exec(ctx, `DELETE FROM readings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: ошибка удаления показания id=%s: %w", op, id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: показание id=%s: %w", op, id, storage.ErrNotFound)
	}

	return nil
}
