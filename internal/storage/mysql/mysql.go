package mysql

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"gas-monitor/internal/config"
	"gas-monitor/internal/storage"
)

type Storage struct {
	db  *sql.DB
	loc *time.Location
}

func New(cfg config.Config) (*Storage, error) {
	const op = "storage.mysql.New"

	dsn := mysql.NewConfig()
	dsn.User = cfg.DBUser
	dsn.Passwd = cfg.DBPassword
	dsn.Net = "tcp"
	dsn.Addr = fmt.Sprintf("%s:%d", cfg.DBHost, cfg.DBPort)
	dsn.DBName = cfg.DBName
	dsn.ParseTime = true
	dsn.Loc = time.UTC
	// иначе UPDATE без изменений вернёт 0 затронутых строк
	dsn.ClientFoundRows = true

	db, err := sql.Open("mysql", dsn.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	db.SetMaxOpenConns(int(cfg.DBMaxConns))
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: ping: %w", op, err)
	}

	return &Storage{db: db, loc: cfg.Location()}, nil
}

// NewWithDB wraps an already opened database. Any driver using "?"
// placeholders works.
func NewWithDB(db *sql.DB, loc *time.Location) *Storage {
	if loc == nil {
		loc = time.UTC
	}
	return &Storage{db: db, loc: loc}
}

func (s *Storage) Close() error {
	return s.db.Close()
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// mapErr переводит коды ошибок MySQL в ошибки storage.
func mapErr(err error) error {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		switch mysqlErr.Number {
		case 1062:
			return fmt.Errorf("%w: %s", storage.ErrDuplicate, mysqlErr.Message)
		case 1452:
			return fmt.Errorf("%w: %s", storage.ErrReference, mysqlErr.Message)
		}
	}
	return err
}
