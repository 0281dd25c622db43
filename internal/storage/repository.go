// Package storage implements the store ports on SQLite.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/Tung1601-IT/quan-ly-thu-chi-7-14-30/internal/core"
	"github.com/Tung1601-IT/quan-ly-thu-chi-7-14-30/internal/store"

	_ "modernc.org/sqlite"
)

// Repository implements store.SessionStore and store.AuthStore over a
// single SQLite database.
type Repository struct {
	db *sql.DB
}

// errUnreadableRow marks stored state that cannot be decoded. Load maps
// it to "no session" so a corrupt row never surfaces a half-session.
var errUnreadableRow = errors.New("unreadable row")

func NewRepository(dbPath string) (*Repository, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite handles one writer at a time; a single pooled connection
	// avoids SQLITE_BUSY under the request/response access pattern.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Load reads the stored session for a user key. A missing row loads as
// (nil, nil); a row that cannot be decoded is treated as "no session"
// rather than surfaced as a core error.
func (r *Repository) Load(ctx context.Context, userKey string) (*core.Session, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT duration_days, start_date, total_budget, seq FROM sessions WHERE user_key = ?`,
		userKey)

	var (
		duration  sql.NullInt64
		startDate sql.NullString
		budget    sql.NullInt64
		seq       int64
	)
	if err := row.Scan(&duration, &startDate, &budget, &seq); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("load session: %w", err)
	}

	sess := &core.Session{Seq: seq}
	if duration.Valid {
		start, err := time.Parse("2006-01-02", startDate.String)
		if err != nil {
			slog.WarnContext(ctx, "Unreadable session row, treating as no session",
				"user_key", userKey, "error", err)
			return nil, nil
		}
		sess.Config = &core.ChallengeConfig{
			DurationDays: int(duration.Int64),
			StartDate:    core.DateOf(start),
			TotalBudget:  budget.Int64,
		}

		jars, err := r.loadJars(ctx, userKey)
		if err != nil {
			return nil, err
		}
		sess.Config.Jars = jars
	}

	txs, err := r.loadTransactions(ctx, userKey)
	if errors.Is(err, errUnreadableRow) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	sess.Transactions = txs

	return sess, nil
}

func (r *Repository) loadJars(ctx context.Context, userKey string) ([]core.Jar, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT name, jar_limit FROM jars WHERE user_key = ? ORDER BY position`,
		userKey)
	if err != nil {
		return nil, fmt.Errorf("load jars: %w", err)
	}
	defer rows.Close()

	var jars []core.Jar
	for rows.Next() {
		var j core.Jar
		if err := rows.Scan(&j.Name, &j.Limit); err != nil {
			return nil, fmt.Errorf("scan jar: %w", err)
		}
		jars = append(jars, j)
	}
	return jars, rows.Err()
}

func (r *Repository) loadTransactions(ctx context.Context, userKey string) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, kind, amount, label, tx_date, notes, seed
		 FROM transactions WHERE user_key = ? ORDER BY position`,
		userKey)
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		var (
			tx   core.Transaction
			date string
			seed int
		)
		if err := rows.Scan(&tx.ID, (*string)(&tx.Kind), &tx.Amount, &tx.Label, &date, &tx.Notes, &seed); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t, err := time.Parse("2006-01-02", date)
		if err != nil {
			slog.WarnContext(ctx, "Unreadable transaction date, treating as no session",
				"user_key", userKey, "transaction_id", tx.ID, "error", err)
			return nil, errUnreadableRow
		}
		tx.Date = core.DateOf(t)
		tx.Seed = seed != 0
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

// Save replaces the stored session in a single database transaction so the
// persistence collaborator stays atomic from the core's point of view.
func (r *Repository) Save(ctx context.Context, userKey string, sess *core.Session) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	if err := deleteSessionRows(ctx, tx, userKey); err != nil {
		return err
	}

	var (
		duration  sql.NullInt64
		startDate sql.NullString
		budget    sql.NullInt64
	)
	if sess.Config != nil {
		duration = sql.NullInt64{Int64: int64(sess.Config.DurationDays), Valid: true}
		startDate = sql.NullString{String: sess.Config.StartDate.String(), Valid: true}
		budget = sql.NullInt64{Int64: sess.Config.TotalBudget, Valid: true}
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO sessions (user_key, duration_days, start_date, total_budget, seq, updated_at)
		 VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)`,
		userKey, duration, startDate, budget, sess.Seq); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	if sess.Config != nil {
		for i, j := range sess.Config.Jars {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO jars (user_key, name, jar_limit, position) VALUES (?, ?, ?, ?)`,
				userKey, j.Name, j.Limit, i); err != nil {
				return fmt.Errorf("save jar %q: %w", j.Name, err)
			}
		}
	}

	for i, t := range sess.Transactions {
		seed := 0
		if t.Seed {
			seed = 1
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO transactions (user_key, id, kind, amount, label, tx_date, notes, seed, position)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			userKey, t.ID, string(t.Kind), t.Amount, t.Label, t.Date.String(), t.Notes, seed, i); err != nil {
			return fmt.Errorf("save transaction %s: %w", t.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, userKey string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete: %w", err)
	}
	defer tx.Rollback()

	if err := deleteSessionRows(ctx, tx, userKey); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete: %w", err)
	}
	return nil
}

func deleteSessionRows(ctx context.Context, tx *sql.Tx, userKey string) error {
	// Explicit deletes; foreign-key cascades are off by default in SQLite.
	for _, q := range []string{
		`DELETE FROM transactions WHERE user_key = ?`,
		`DELETE FROM jars WHERE user_key = ?`,
		`DELETE FROM sessions WHERE user_key = ?`,
	} {
		if _, err := tx.ExecContext(ctx, q, userKey); err != nil {
			return fmt.Errorf("clear session rows: %w", err)
		}
	}
	return nil
}

// CreateUser registers credentials for a new user key.
func (r *Repository) CreateUser(ctx context.Context, email, passwordHash string) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (email, password_hash) VALUES (?, ?) ON CONFLICT(email) DO NOTHING`,
		email, passwordHash)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	if n == 0 {
		return store.ErrUserExists
	}
	return nil
}

func (r *Repository) Credentials(ctx context.Context, email string) (string, error) {
	var hash string
	err := r.db.QueryRowContext(ctx,
		`SELECT password_hash FROM users WHERE email = ?`, email).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", store.ErrUserNotFound
	}
	if err != nil {
		return "", fmt.Errorf("read credentials: %w", err)
	}
	return hash, nil
}

func (r *Repository) CreateToken(ctx context.Context, token, userKey string, expiresAt time.Time) error {
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO auth_sessions (token, user_key, expires_at) VALUES (?, ?, ?)`,
		token, userKey, expiresAt.UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("create token: %w", err)
	}
	return nil
}

func (r *Repository) ResolveToken(ctx context.Context, token string) (string, error) {
	var (
		userKey   string
		expiresAt string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT user_key, expires_at FROM auth_sessions WHERE token = ?`, token).
		Scan(&userKey, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return "", store.ErrTokenInvalid
	}
	if err != nil {
		return "", fmt.Errorf("resolve token: %w", err)
	}
	exp, err := time.Parse(time.RFC3339, expiresAt)
	if err != nil || time.Now().After(exp) {
		return "", store.ErrTokenInvalid
	}
	return userKey, nil
}

func (r *Repository) DeleteToken(ctx context.Context, token string) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM auth_sessions WHERE token = ?`, token); err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	return nil
}

// CleanExpiredTokens drops login tokens past their expiry. Called
// opportunistically from the server's housekeeping loop.
func (r *Repository) CleanExpiredTokens(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM auth_sessions WHERE expires_at <= ?`, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("clean expired tokens: %w", err)
	}
	return res.RowsAffected()
}
