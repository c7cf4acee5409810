package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/mattn/go-sqlite3"

	"github.com/ayush/travel-journal/backend/internal/models"
)

// Dialect selects placeholder syntax and error decoding.
type Dialect string

const (
	Postgres Dialect = "pgx"
	SQLite   Dialect = "sqlite3"
)

// AccountStore handles account rows in PostgreSQL or SQLite.
type AccountStore struct {
	db      *sql.DB
	dialect Dialect
	now     func() time.Time
}

// OpenAccountStore connects with the given driver ("pgx" or "sqlite3") and pings.
func OpenAccountStore(ctx context.Context, driver, dsn string) (*AccountStore, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if Dialect(driver) == Postgres {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	} else {
		// SQLite allows a single writer.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	return NewAccountStore(db, Dialect(driver)), nil
}

func NewAccountStore(db *sql.DB, dialect Dialect) *AccountStore {
	return &AccountStore{db: db, dialect: dialect, now: time.Now}
}

// Migrate creates the users table if it doesn't exist.
func (s *AccountStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id         VARCHAR(36)  PRIMARY KEY,
			full_name  VARCHAR(255) NOT NULL,
			email      VARCHAR(255) UNIQUE NOT NULL,
			password   VARCHAR(255) NOT NULL,
			created_on TIMESTAMP    NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("migrate users: %w", err)
	}
	return nil
}

func (s *AccountStore) CreateUser(ctx context.Context, fullName, email, hashedPassword string) (*models.User, error) {
	u := models.User{
		ID:        uuid.NewString(),
		FullName:  fullName,
		Email:     email,
		Password:  hashedPassword,
		CreatedOn: s.now().UTC(),
	}
	_, err := s.db.ExecContext(ctx, s.rebind(
		`INSERT INTO users (id, full_name, email, password, created_on) VALUES (?, ?, ?, ?, ?)`),
		u.ID, u.FullName, u.Email, u.Password, u.CreatedOn,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &u, nil
}

func (s *AccountStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUser(ctx, "email", email)
}

func (s *AccountStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.getUser(ctx, "id", id)
}

func (s *AccountStore) getUser(ctx context.Context, column, value string) (*models.User, error) {
	var u models.User
	err := s.db.QueryRowContext(ctx, s.rebind(
		`SELECT id, full_name, email, password, created_on FROM users WHERE `+column+` = ?`), value,
	).Scan(&u.ID, &u.FullName, &u.Email, &u.Password, &u.CreatedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by %s: %w", column, err)
	}
	return &u, nil
}

func (s *AccountStore) Close() error {
	return s.db.Close()
}

// rebind converts ? placeholders to $1, $2, ... for PostgreSQL.
func (s *AccountStore) rebind(query string) string {
	if s.dialect != Postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, c := range query {
		if c == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
