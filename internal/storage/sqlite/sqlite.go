// Package sqlite provides a SQLite-backed implementation of the
// storage.Storage interface using Go's standard database/sql package.
//
// WHY SQLite?
// ───────────
// SQLite stores everything in a single file on disk. There is no network,
// no separate server process, and no installation beyond the driver. It is
// the default driver; see the kv and remote packages for the others.
//
// Importing go-sqlite3 registers the "sqlite3" driver with database/sql as
// a side effect. We also use its Error type to recognise a UNIQUE
// constraint failure on the email column.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/aanand-mishra/registration-api/internal/config"
	"github.com/aanand-mishra/registration-api/internal/storage"
	"github.com/aanand-mishra/registration-api/internal/types"
)

// SQLite is the concrete implementation of storage.Storage.
// It holds a *sql.DB, a connection pool that is safe for concurrent use.
type SQLite struct {
	Db  *sql.DB
	now func() time.Time
}

var _ storage.Storage = (*SQLite)(nil)

// New opens the SQLite database at cfg.Storage.Path, creates the users
// table if it does not already exist, and returns a ready-to-use *SQLite.
func New(cfg *config.Config) (*SQLite, error) {
	db, err := sql.Open("sqlite3", cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}

	// Schema:
	//   email: unique, compared case-insensitively (COLLATE NOCASE), so
	//          "Jean@Test.com" and "jean@test.com" collide
	//   birth: ISO date as submitted, YYYY-MM-DD
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id          INTEGER   PRIMARY KEY AUTOINCREMENT,
			first_name  TEXT      NOT NULL,
			last_name   TEXT      NOT NULL,
			email       TEXT      NOT NULL UNIQUE COLLATE NOCASE,
			birth       TEXT      NOT NULL,
			city        TEXT      NOT NULL,
			postal_code TEXT      NOT NULL,
			created_at  TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite.New: create table: %w", err)
	}

	return &SQLite{Db: db, now: time.Now}, nil
}

// Close releases the connection pool.
func (s *SQLite) Close() error {
	return s.Db.Close()
}

// ─────────────────────────────────────────────────────────────────────────────
// CreateUser inserts a new row into the users table.
//
// Values are bound through ? placeholders, never concatenated into the SQL,
// so user input is always treated as data.
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) CreateUser(ctx context.Context, u types.User) (int64, error) {
	stmt, err := s.Db.PrepareContext(ctx, `
		INSERT INTO users (first_name, last_name, email, birth, city, postal_code, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("CreateUser: prepare: %w", err)
	}
	defer stmt.Close()

	result, err := stmt.ExecContext(ctx,
		u.FirstName, u.LastName, u.Email, u.Birth, u.City, u.PostalCode,
		s.now().UTC(),
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return 0, storage.ErrDuplicateEmail
		}
		return 0, fmt.Errorf("CreateUser: exec: %w", err)
	}

	lastID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("CreateUser: last insert id: %w", err)
	}

	return lastID, nil
}

const selectUser = `
	SELECT id, first_name, last_name, email, birth, city, postal_code, created_at
	FROM users
`

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanUser reads the columns of selectUser, in order, into a User.
func scanUser(row scanner) (types.User, error) {
	var u types.User
	err := row.Scan(
		&u.ID,
		&u.FirstName,
		&u.LastName,
		&u.Email,
		&u.Birth,
		&u.City,
		&u.PostalCode,
		&u.CreatedAt,
	)
	return u, err
}

// GetUserByID fetches exactly one user row matched by primary key.
func (s *SQLite) GetUserByID(ctx context.Context, id int64) (types.User, error) {
	stmt, err := s.Db.PrepareContext(ctx, selectUser+" WHERE id = ? LIMIT 1")
	if err != nil {
		return types.User{}, fmt.Errorf("GetUserByID: prepare: %w", err)
	}
	defer stmt.Close()

	u, err := scanUser(stmt.QueryRowContext(ctx, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, fmt.Errorf("%w: id %d", storage.ErrNotFound, id)
		}
		return types.User{}, fmt.Errorf("GetUserByID: scan: %w", err)
	}

	return u, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// GetUsers returns all user rows in insertion order.
//
// rows.Next() advances the cursor and returns false when exhausted; any
// error hit while iterating surfaces through rows.Err(), separately from
// Scan errors.
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) GetUsers(ctx context.Context) ([]types.User, error) {
	stmt, err := s.Db.PrepareContext(ctx, selectUser+" ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("GetUsers: prepare: %w", err)
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("GetUsers: query: %w", err)
	}
	defer rows.Close()

	// Empty, not nil: the list endpoint encodes [] rather than null.
	users := make([]types.User, 0)

	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("GetUsers: scan row: %w", err)
		}
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetUsers: rows iteration: %w", err)
	}

	return users, nil
}
