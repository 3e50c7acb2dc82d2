// Package sqlite provides a SQLite-backed implementation of the secret store
// port, used for local development in place of Secret Manager.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hash/crc32"
	"strconv"

	_ "github.com/mattn/go-sqlite3" // Import the driver anonymously

	"github.com/ewilliams-labs/spotifind/internal/core/ports"
)

// ErrNotFound is returned when no matching secret version exists.
var ErrNotFound = errors.New("sqlite: secret version not found")

const latestVersion = "latest"

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

var _ ports.SecretStore = (*Adapter)(nil)

// Adapter implements the secret store port for SQLite
type Adapter struct {
	db *sql.DB
}

// NewAdapter creates a connection and runs the schema migration
func NewAdapter(storagePath string) (*Adapter, error) {
	db, err := sql.Open("sqlite3", storagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}
	// One connection: SQLite serializes writers, and ":memory:" is per connection.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping sqlite db: %w", err)
	}

	adapter := &Adapter{db: db}
	if err := adapter.migrate(); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return adapter, nil
}

// Close ensures the DB connection is closed gracefully
func (a *Adapter) Close() error {
	return a.db.Close()
}

// Ping reports whether the database is reachable.
func (a *Adapter) Ping(ctx context.Context) error {
	return a.db.PingContext(ctx)
}

// AccessSecretVersion returns the stored payload and its checksum. Version
// "latest" resolves to the highest numbered version.
func (a *Adapter) AccessSecretVersion(ctx context.Context, name ports.SecretVersionName) (ports.SecretPayload, error) {
	query := `
		SELECT data, data_crc32c FROM secret_versions
		WHERE project = ? AND secret = ? AND version = ?
	`
	args := []any{name.Project, name.Secret}
	if name.Version == latestVersion {
		query = `
			SELECT data, data_crc32c FROM secret_versions
			WHERE project = ? AND secret = ?
			ORDER BY version DESC
			LIMIT 1
		`
	} else {
		version, err := strconv.ParseInt(name.Version, 10, 64)
		if err != nil {
			return ports.SecretPayload{}, fmt.Errorf("invalid secret version %q: %w", name.Version, ErrNotFound)
		}
		args = append(args, version)
	}

	var payload ports.SecretPayload
	var checksum int64
	if err := a.db.QueryRowContext(ctx, query, args...).Scan(&payload.Data, &checksum); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ports.SecretPayload{}, fmt.Errorf("%s: %w", name, ErrNotFound)
		}
		return ports.SecretPayload{}, fmt.Errorf("failed to load secret version: %w", err)
	}
	payload.DataCRC32C = uint32(checksum)

	return payload, nil
}

// AddSecretVersion stores data as the next version of the secret and
// returns that version. The checksum is computed here.
func (a *Adapter) AddSecretVersion(ctx context.Context, project, secret string, data []byte) (string, error) {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var next int64
	if err := tx.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(version), 0) + 1 FROM secret_versions
		WHERE project = ? AND secret = ?
	`, project, secret).Scan(&next); err != nil {
		return "", fmt.Errorf("failed to allocate secret version: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO secret_versions (project, secret, version, data, data_crc32c)
		VALUES (?, ?, ?, ?, ?)
	`, project, secret, next, data, int64(crc32.Checksum(data, castagnoli))); err != nil {
		return "", fmt.Errorf("failed to save secret version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("transaction commit failed: %w", err)
	}

	return strconv.FormatInt(next, 10), nil
}

func (a *Adapter) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS secret_versions (
		project TEXT NOT NULL,
		secret TEXT NOT NULL,
		version INTEGER NOT NULL,
		data BLOB NOT NULL,
		data_crc32c INTEGER NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (project, secret, version)
	);
	`
	_, err := a.db.Exec(query)
	return err
}
