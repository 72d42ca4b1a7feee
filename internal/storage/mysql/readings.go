package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"gas-monitor/internal/storage"
)

const selectReadings = `
	SELECT r.id, r.recorded_at, r.created_at, r.customer_code, r.storage_number,
	       r.operation_type, r.fixed_storage_quantity, r.psi, r.temp, r.psi_out,
	       r.flow_turbine, r.remarks, r.operator_id, COALESCE(p.display_name, '')
	FROM readings r
	LEFT JOIN profiles p ON p.id = r.operator_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *Storage) scanReading(row rowScanner) (storage.Reading, error) {
	var r storage.Reading
	var flowTurbine sql.NullFloat64
	var remarks sql.NullString

	err := row.Scan(
		&r.ID,
		&r.RecordedAt,
		&r.CreatedAt,
		&r.CustomerCode,
		&r.StorageNumber,
		&r.OperationType,
		&r.FixedStorageQuantity,
		&r.PSI,
		&r.Temp,
		&r.PSIOut,
		&flowTurbine,
		&remarks,
		&r.OperatorID,
		&r.Operator,
	)
	if err != nil {
		return storage.Reading{}, err
	}

	r.RecordedAt = r.RecordedAt.In(s.loc)
	r.CreatedAt = r.CreatedAt.In(s.loc)
	if flowTurbine.Valid {
		v := flowTurbine.Float64
		r.FlowTurbine = &v
	}
	if remarks.Valid {
		v := remarks.String
		r.Remarks = &v
	}

	return r, nil
}

// ListReadings возвращает показания, отсортированные по заказчику и времени замера.
func (s *Storage) ListReadings(ctx context.Context, filter storage.ReadingFilter) ([]storage.Reading, error) {
	const op = "storage.mysql.ListReadings"

	var where []string
	var args []any

	if len(filter.CustomerCodes) > 0 {
		where = append(where, "r.customer_code IN ("+placeholders(len(filter.CustomerCodes))+")")
		for _, code := range filter.CustomerCodes {
			args = append(args, code)
		}
	}
	if !filter.From.IsZero() {
		where = append(where, "r.recorded_at >= ?")
		args = append(args, filter.From.UTC())
	}
	if !filter.To.IsZero() {
		where = append(where, "r.recorded_at < ?")
		args = append(args, filter.To.UTC())
	}
	if filter.Search != "" {
		where = append(where, "(r.storage_number LIKE ? ESCAPE '!' OR r.remarks LIKE ? ESCAPE '!' OR p.display_name LIKE ? ESCAPE '!')")
		like := storage.LikePattern(filter.Search)
		args = append(args, like, like, like)
	}

	stmt := selectReadings
	if len(where) > 0 {
		stmt += " WHERE " + strings.Join(where, " AND ")
	}
	stmt += " ORDER BY r.customer_code ASC, r.recorded_at ASC, r.created_at ASC"

	rows, err := s.db.QueryContext(ctx, stmt, args...)
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

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: ошибка при итерации по строкам: %w", op, err)
	}

	return readings, nil
}

func (s *Storage) GetReading(ctx context.Context, id string) (*storage.Reading, error) {
	const op = "storage.mysql.GetReading"

	r, err := s.scanReading(s.db.QueryRowContext(ctx, selectReadings+" WHERE r.id = ?", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: показание id=%s: %w", op, id, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &r, nil
}

func (s *Storage) CreateReading(ctx context.Context, r storage.Reading) error {
	const op = "storage.mysql.CreateReading"

	stmt := `INSERT INTO readings (id, recorded_at, created_at, customer_code, storage_number,
            operation_type, fixed_storage_quantity, psi, temp, psi_out, flow_turbine, remarks, operator_id)
            VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, stmt,
		r.ID,
		r.RecordedAt.UTC(),
		r.CreatedAt.UTC(),
		r.CustomerCode,
		r.StorageNumber,
		string(r.OperationType),
		r.FixedStorageQuantity,
		r.PSI,
		r.Temp,
		r.PSIOut,
		nullFloat(r.FlowTurbine),
		nullString(r.Remarks),
		r.OperatorID,
	)
	if err != nil {
		return fmt.Errorf("%s: ошибка сохранения показания id=%s: %w", op, r.ID, mapErr(err))
	}

	return nil
}

func (s *Storage) UpdateReading(ctx context.Context, upd storage.UpdateReading) error {
	const op = "storage.mysql.UpdateReading"

	var sets []string
	var args []any

	if upd.RecordedAt != nil {
		sets = append(sets, "recorded_at = ?")
		args = append(args, upd.RecordedAt.UTC())
	}
	if upd.StorageNumber != nil {
		sets = append(sets, "storage_number = ?")
		args = append(args, *upd.StorageNumber)
	}
	if upd.OperationType != nil {
		sets = append(sets, "operation_type = ?")
		args = append(args, string(*upd.OperationType))
	}
	if upd.FixedStorageQuantity != nil {
		sets = append(sets, "fixed_storage_quantity = ?")
		args = append(args, *upd.FixedStorageQuantity)
	}
	if upd.PSI != nil {
		sets = append(sets, "psi = ?")
		args = append(args, *upd.PSI)
	}
	if upd.Temp != nil {
		sets = append(sets, "temp = ?")
		args = append(args, *upd.Temp)
	}
	if upd.PSIOut != nil {
		sets = append(sets, "psi_out = ?")
		args = append(args, *upd.PSIOut)
	}
	if upd.FlowTurbine != nil {
		sets = append(sets, "flow_turbine = ?")
		args = append(args, *upd.FlowTurbine)
	}
	if upd.Remarks != nil {
		sets = append(sets, "remarks = ?")
		args = append(args, *upd.Remarks)
	}

	if len(sets) == 0 {
		return nil
	}

	stmt := "UPDATE readings SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	args = append(args, upd.ID)

	res, err := s.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("%s: ошибка обновления показания id=%s: %w", op, upd.ID, mapErr(err))
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: показание id=%s: %w", op, upd.ID, storage.ErrNotFound)
	}

	return nil
}

func (s *Storage) DeleteReading(ctx context.Context, id string) error {
	const op = "storage.mysql.DeleteReading"

	res, err := s.db.ExecContext(ctx, `DELETE FROM readings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("%s: ошибка удаления показания id=%s: %w", op, id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: показание id=%s: %w", op, id, storage.ErrNotFound)
	}

	return nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}
