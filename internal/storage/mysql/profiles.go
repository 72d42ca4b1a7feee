package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"gas-monitor/internal/storage"
)

func (s *Storage) GetProfileByLogin(ctx context.Context, login string) (*storage.Profile, error) {
	const op = "storage.mysql.GetProfileByLogin"

	p := &storage.Profile{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, login, display_name, role, is_active, password_hash FROM profiles WHERE login = ?`, login).
		Scan(&p.ID, &p.Login, &p.DisplayName, &p.Role, &p.IsActive, &p.PasswordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: профиль login='%s': %w", op, login, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return p, nil
}

func (s *Storage) ListProfiles(ctx context.Context) ([]*storage.Profile, error) {
	const op = "storage.mysql.ListProfiles"

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, login, display_name, role, is_active FROM profiles ORDER BY display_name ASC`)
	if err != nil {
		return nil, fmt.Errorf("%s: ошибка получения профилей: %w", op, err)
	}
	defer rows.Close()

	profiles := []*storage.Profile{}
	for rows.Next() {
		p := &storage.Profile{}
		if err := rows.Scan(&p.ID, &p.Login, &p.DisplayName, &p.Role, &p.IsActive); err != nil {
			return nil, fmt.Errorf("%s: ошибка сканирования строки профиля: %w", op, err)
		}
		profiles = append(profiles, p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: ошибка при итерации по строкам: %w", op, err)
	}

	return profiles, nil
}

func (s *Storage) CreateProfile(ctx context.Context, p storage.Profile) error {
	const op = "storage.mysql.CreateProfile"

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO profiles (id, login, display_name, role, is_active, password_hash) VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.Login, p.DisplayName, p.Role, p.IsActive, p.PasswordHash)
	if err != nil {
		return fmt.Errorf("%s: ошибка сохранения профиля login='%s': %w", op, p.Login, mapErr(err))
	}

	return nil
}

// UpdateProfiles обновляет имя, роль и активность; пароль не трогает.
func (s *Storage) UpdateProfiles(ctx context.Context, profiles []storage.Profile) error {
	const op = "storage.mysql.UpdateProfiles"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: ошибка при создании транзакции: %w", op, err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`UPDATE profiles SET display_name = ?, role = ?, is_active = ? WHERE id = ?`)
	if err != nil {
		return fmt.Errorf("%s: ошибка при подготовке запроса: %w", op, err)
	}
	defer stmt.Close()

	for _, p := range profiles {
		res, err := stmt.ExecContext(ctx, p.DisplayName, p.Role, p.IsActive, p.ID)
		if err != nil {
			return fmt.Errorf("%s: ошибка обновления профиля id=%s: %w", op, p.ID, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if affected == 0 {
			return fmt.Errorf("%s: профиль id=%s: %w", op, p.ID, storage.ErrNotFound)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: ошибка коммита транзакции: %w", op, err)
	}

	return nil
}
