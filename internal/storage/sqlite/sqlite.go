// Package sqlite stores zettels in a SQLite database through mattn/go-sqlite3.
//
// Searches use a REGEXP operator backed by Go's regexp package, installed on
// every connection by a custom driver registered under DriverName.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	sqlite3 "github.com/mattn/go-sqlite3"
	"golang.org/x/crypto/bcrypt"

	"github.com/Trangar/zettelkasten/internal/logging"
	"github.com/Trangar/zettelkasten/internal/storage"
)

// DriverName is the database/sql driver that understands REGEXP.
const DriverName = "sqlite3_zettelkasten"

var log = logging.New("sqlite")

func init() {
	sql.Register(DriverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("regexp", regexpMatch, true)
		},
	})
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS users (
	user_id             INTEGER PRIMARY KEY AUTOINCREMENT,
	username            TEXT NOT NULL UNIQUE,
	password            TEXT NOT NULL,
	last_visited_zettel INTEGER NULL
);

CREATE TABLE IF NOT EXISTS zettel (
	zettel_id        INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id          INTEGER NOT NULL REFERENCES users(user_id),
	path             TEXT NOT NULL,
	body             TEXT NOT NULL DEFAULT '',
	created_on       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	last_modified_on DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE(user_id, path)
);

CREATE TABLE IF NOT EXISTS config (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// DB is a storage.Storage backed by SQLite.
type DB struct {
	conn *sql.DB
	cost int
}

var _ storage.Storage = (*DB)(nil)

// Option customises Open.
type Option func(*DB)

// WithBcryptCost sets the cost used for new password hashes.
func WithBcryptCost(cost int) Option {
	return func(db *DB) { db.cost = cost }
}

// Open opens (or creates) the database at dsn, applies the schema and seeds
// the default system config.
func Open(ctx context.Context, dsn string, opts ...Option) (*DB, error) {
	conn, err := sql.Open(DriverName, withParams(dsn))
	if err != nil {
		return nil, fmt.Errorf("sqlite: open db: %w", err)
	}
	// One connection keeps :memory: databases intact and serialises writers.
	conn.SetMaxOpenConns(1)
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}
	if _, err := conn.ExecContext(ctx, schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: apply schema: %w", err)
	}

	db := &DB{conn: conn, cost: bcrypt.DefaultCost}
	for _, opt := range opts {
		opt(db)
	}
	if err := db.seedConfig(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	log.Info("opened database", "dsn", dsn)
	return db, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func withParams(dsn string) string {
	dsn = strings.TrimPrefix(dsn, "sqlite://")
	dsn = strings.TrimPrefix(dsn, "sqlite:")
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_busy_timeout=5000&_foreign_keys=on"
}

func (db *DB) seedConfig(ctx context.Context) error {
	rows, err := storage.ConfigRows(storage.DefaultSystemConfig())
	if err != nil {
		return err
	}
	for key, value := range rows {
		if _, err := db.conn.ExecContext(ctx, `INSERT OR IGNORE INTO config (key, value) VALUES (?, ?)`, key, value); err != nil {
			return fmt.Errorf("sqlite: seed config %q: %w", key, err)
		}
	}
	return nil
}

func (db *DB) UserCount(ctx context.Context) (int, error) {
	var n int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(user_id) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite: count users: %w", err)
	}
	return n, nil
}

const userColumns = `user_id, username, password, last_visited_zettel`

func scanUser(row *sql.Row) (storage.User, error) {
	var (
		u    storage.User
		last sql.NullInt64
	)
	if err := row.Scan(&u.ID, &u.Name, &u.PasswordHash, &last); err != nil {
		return storage.User{}, err
	}
	u.LastVisitedZettel = storage.ZettelID(last.Int64)
	return u, nil
}

func (db *DB) LoginSingleUser(ctx context.Context) (storage.User, error) {
	u, err := scanUser(db.conn.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY user_id LIMIT 1`))
	if errors.Is(err, sql.ErrNoRows) {
		return storage.User{}, fmt.Errorf("sqlite: login single user: %w", storage.ErrNotFound)
	}
	if err != nil {
		return storage.User{}, fmt.Errorf("sqlite: login single user: %w", err)
	}
	return u, nil
}

func (db *DB) Login(ctx context.Context, username, password string) (storage.User, error) {
	u, err := scanUser(db.conn.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username))
	if errors.Is(err, sql.ErrNoRows) {
		return storage.User{}, storage.ErrCredentialMismatch
	}
	if err != nil {
		return storage.User{}, fmt.Errorf("sqlite: login: %w", err)
	}
	err = bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return storage.User{}, storage.ErrCredentialMismatch
	}
	if err != nil {
		return storage.User{}, fmt.Errorf("sqlite: verify password: %w", err)
	}
	return u, nil
}

func (db *DB) Register(ctx context.Context, username, password string) (storage.User, error) {
	var n int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(user_id) FROM users WHERE username = ?`, username).Scan(&n); err != nil {
		return storage.User{}, fmt.Errorf("sqlite: register: %w", err)
	}
	if n != 0 {
		return storage.User{}, storage.ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), db.cost)
	if err != nil {
		return storage.User{}, fmt.Errorf("sqlite: hash password: %w", err)
	}
	res, err := db.conn.ExecContext(ctx, `INSERT INTO users (username, password) VALUES (?, ?)`, username, string(hash))
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return storage.User{}, storage.ErrUserExists
		}
		return storage.User{}, fmt.Errorf("sqlite: register: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return storage.User{}, fmt.Errorf("sqlite: register: %w", err)
	}
	log.Info("registered user", "user", username)
	return storage.User{ID: storage.UserID(id), Name: username, PasswordHash: string(hash)}, nil
}

func (db *DB) GetNoteByID(ctx context.Context, user storage.UserID, id storage.ZettelID) (storage.Zettel, error) {
	var z storage.Zettel
	err := db.conn.QueryRowContext(ctx,
		`SELECT zettel_id, path, body FROM zettel WHERE user_id = ? AND zettel_id = ?`, user, id,
	).Scan(&z.ID, &z.Path, &z.Body)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.Zettel{}, fmt.Errorf("sqlite: zettel %d: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return storage.Zettel{}, fmt.Errorf("sqlite: get zettel %d: %w", id, err)
	}
	return z, nil
}

func (db *DB) GetNoteByPath(ctx context.Context, user storage.UserID, path string) (storage.Zettel, error) {
	var z storage.Zettel
	err := db.conn.QueryRowContext(ctx,
		`SELECT zettel_id, path, body FROM zettel WHERE user_id = ? AND path = ?`, user, path,
	).Scan(&z.ID, &z.Path, &z.Body)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.Zettel{}, fmt.Errorf("sqlite: zettel %q: %w", path, storage.ErrNotFound)
	}
	if err != nil {
		return storage.Zettel{}, fmt.Errorf("sqlite: get zettel %q: %w", path, err)
	}
	return z, nil
}

func (db *DB) ListOrSearchNotes(ctx context.Context, user storage.UserID, opts storage.SearchOpts) ([]storage.ZettelHeader, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if opts.ListAll {
		rows, err := db.conn.QueryContext(ctx,
			`SELECT zettel_id, path FROM zettel WHERE user_id = ? ORDER BY path ASC`, user)
		if err != nil {
			return nil, fmt.Errorf("sqlite: list zettels: %w", err)
		}
		defer rows.Close()
		var out []storage.ZettelHeader
		for rows.Next() {
			var h storage.ZettelHeader
			if err := rows.Scan(&h.ID, &h.Path); err != nil {
				return nil, fmt.Errorf("sqlite: list zettels: %w", err)
			}
			out = append(out, h)
		}
		return out, rows.Err()
	}

	re, err := storage.CompilePattern(opts.Query)
	if err != nil {
		return nil, err
	}
	rows, err := db.conn.QueryContext(ctx,
		`SELECT zettel_id, path, body FROM zettel
		WHERE user_id = ? AND (body REGEXP ? OR path REGEXP ?)
		ORDER BY path ASC`, user, opts.Query, opts.Query)
	if err != nil {
		return nil, fmt.Errorf("sqlite: search zettels: %w", err)
	}
	defer rows.Close()
	var out []storage.ZettelHeader
	for rows.Next() {
		var (
			h    storage.ZettelHeader
			body string
		)
		if err := rows.Scan(&h.ID, &h.Path, &body); err != nil {
			return nil, fmt.Errorf("sqlite: search zettels: %w", err)
		}
		h.Highlight = storage.Excerpt(re, body)
		out = append(out, h)
	}
	return out, rows.Err()
}

func (db *DB) SaveNote(ctx context.Context, user storage.UserID, zettel *storage.Zettel) error {
	if !zettel.IsNew() {
		res, err := db.conn.ExecContext(ctx,
			`UPDATE zettel SET path = ?, body = ?, last_modified_on = datetime()
			WHERE zettel_id = ? AND user_id = ?`,
			zettel.Path, zettel.Body, zettel.ID, user)
		if err != nil {
			return fmt.Errorf("sqlite: update zettel %d: %w", zettel.ID, err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return fmt.Errorf("sqlite: update zettel %d: %w", zettel.ID, storage.ErrNotFound)
		}
		return nil
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO zettel (user_id, path, body, created_on, last_modified_on)
		VALUES (?, ?, ?, datetime(), datetime())`,
		user, zettel.Path, zettel.Body)
	if err != nil {
		return fmt.Errorf("sqlite: insert zettel %q: %w", zettel.Path, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: insert zettel %q: %w", zettel.Path, err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET last_visited_zettel = ? WHERE user_id = ?`, id, user); err != nil {
		return fmt.Errorf("sqlite: set last visited: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit: %w", err)
	}
	zettel.ID = storage.ZettelID(id)
	return nil
}

func (db *DB) SetLastVisitedNote(ctx context.Context, user storage.UserID, id storage.ZettelID) error {
	var value any
	if id != 0 {
		value = int64(id)
	}
	if _, err := db.conn.ExecContext(ctx,
		`UPDATE users SET last_visited_zettel = ? WHERE user_id = ?`, value, user); err != nil {
		return fmt.Errorf("sqlite: set last visited: %w", err)
	}
	return nil
}

func (db *DB) UpdateSystemConfig(ctx context.Context, cfg storage.SystemConfig) error {
	rows, err := storage.ConfigRows(cfg)
	if err != nil {
		return err
	}
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin: %w", err)
	}
	defer tx.Rollback()
	for key, value := range rows {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO config (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value); err != nil {
			return fmt.Errorf("sqlite: update config %q: %w", key, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit: %w", err)
	}
	return nil
}

func (db *DB) LoadSystemConfig(ctx context.Context) (storage.SystemConfig, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT key, value FROM config`)
	if err != nil {
		return storage.SystemConfig{}, fmt.Errorf("sqlite: load config: %w", err)
	}
	defer rows.Close()
	values := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return storage.SystemConfig{}, fmt.Errorf("sqlite: load config: %w", err)
		}
		values[key] = value
	}
	if err := rows.Err(); err != nil {
		return storage.SystemConfig{}, fmt.Errorf("sqlite: load config: %w", err)
	}
	return storage.ParseConfigRows(values)
}
