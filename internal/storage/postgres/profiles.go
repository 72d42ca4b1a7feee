package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"gas-monitor/internal/storage"
)

func (s *Storage) GetProfileByLogin(ctx context.Context, login string) (*storage.Profile, error) {
	const op = "storage.postgres.GetProfileByLogin"

	p := &storage.Profile{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, login, display_name, role, is_active, password_hash FROM profiles WHERE login = $1`, login).
		Scan(&p.ID, &p.Login, &p.DisplayName, &p.Role, &p.IsActive, &p.PasswordHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: профиль login='%s': %w", op, login, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return p, nil
}

func (s *Storage) ListProfiles(ctx context.Context) ([]*storage.Profile, error) {
	const op = "storage.postgres.ListProfiles"

	rows, err := s.pool.Query(ctx,
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

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: ошибка при итерации по строкам: %w", op, err)
	}

	return profiles, nil
}

func (s *Storage) CreateProfile(ctx context.Context, p storage.Profile) error {
	const op = "storage.postgres.CreateProfile"

	_, err := s.pool.Exec(ctx,
		`INSERT INTO profiles (id, login, display_name, role, is_active, password_hash) VALUES ($1, $2, $3, $4, $5, $6)`,
		p.ID, p.Login, p.DisplayName, p.Role, p.IsActive, p.PasswordHash)
	if err != nil {
		return fmt.Errorf("%s: ошибка сохранения профиля login='%s': %w", op, p.Login, mapErr(err))
	}

	return nil
}

func (s *Storage) UpdateProfiles(ctx context.Context, profiles []storage.Profile) error {
	const op = "storage.postgres.UpdateProfiles"

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%s: ошибка при создании транзакции: %w", op, err)
	}
	defer tx.Rollback(ctx)

	for _, p := range profiles {
		tag, err := tx.Exec(ctx,
			`UPDATE profiles SET display_name = $1, role = $2, is_active = $3 WHERE id = $4`,
			p.DisplayName, p.Role, p.IsActive, p.ID)
		if err != nil {
			return fmt.Errorf("%s: ошибка обновления профиля id=%s: %w", op, p.ID, err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%s: профиль id=%s: %w", op, p.ID, storage.ErrNotFound)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%s: ошибка коммита транзакции: %w", op, err)
	}

	return nil
}
