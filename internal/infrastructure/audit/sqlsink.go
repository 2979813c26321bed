package audit

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/claimflow/claimflow-go/internal/domain/claims"
	"github.com/claimflow/claimflow-go/internal/domain/security"
)

//go:embed migrations
var migrationFS embed.FS

// Supported SQL drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// SQLSink writes audit entries to SQLite or PostgreSQL.
type SQLSink struct {
	mu     sync.RWMutex
	db     *sql.DB
	driver string
	dsn    string
	closed bool
}

// OpenSQLSink opens a SQL sink. For SQLite the dsn is a file path.
func OpenSQLSink(driver, dsn string) (*SQLSink, error) {
	switch driver {
	case DriverSQLite:
		if dsn == "" {
			dsn = ".data/audit.db"
		}
		if dir := filepath.Dir(dsn); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create directory: %w", err)
			}
		}
	case DriverPostgres:
		if dsn == "" {
			return nil, errors.New("postgres audit sink requires a dsn")
		}
	default:
		return nil, fmt.Errorf("unsupported audit sql driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	}

	return &SQLSink{db: db, driver: driver, dsn: dsn}, nil
}

// Name returns the sink name.
func (s *SQLSink) Name() string { return s.driver }

// Migrate applies all pending schema migrations. It runs on its own
// connection because the migrator closes the database it is given.
func (s *SQLSink) Migrate() error {
	db, err := sql.Open(s.driver, s.dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	var driver database.Driver
	switch s.driver {
	case DriverSQLite:
		driver, err = sqlite.WithInstance(db, &sqlite.Config{})
	case DriverPostgres:
		driver, err = postgres.WithInstance(db, &postgres.Config{})
	}
	if err != nil {
		db.Close()
		return fmt.Errorf("failed to init migration driver: %w", err)
	}

	src, err := iofs.New(migrationFS, "migrations/"+s.driver)
	if err != nil {
		db.Close()
		return fmt.Errorf("failed to load migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, s.driver, driver)
	if err != nil {
		db.Close()
		return fmt.Errorf("failed to init migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}

// Write stores an entry. Writing the same entry twice is a no-op.
func (s *SQLSink) Write(ctx context.Context, entry claims.AuditEntry) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return ErrSinkClosed
	}

	var override any = entry.Override
	if s.driver == DriverSQLite {
		override = boolToInt(entry.Override)
	}

	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO audit_entries (id, sequence, claim_id, kind, actor_id, actor_name, actor_role,
			occurred_at, detail, claim_version, override, from_status, to_status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING
	`),
		entry.ID,
		entry.Sequence,
		entry.ClaimID,
		string(entry.Kind),
		entry.ActorID,
		entry.ActorName,
		string(entry.ActorRole),
		entry.Timestamp.UTC().Format(time.RFC3339Nano),
		entry.Detail,
		entry.ClaimVersion,
		override,
		string(entry.FromStatus),
		string(entry.ToStatus),
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit entry %s: %w", entry.ID, err)
	}
	return nil
}

// List returns stored entries, newest first. An empty claimID lists every
// claim; limit <= 0 means no limit.
func (s *SQLSink) List(ctx context.Context, claimID string, limit int) ([]claims.AuditEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrSinkClosed
	}

	query := `
		SELECT id, sequence, claim_id, kind, actor_id, actor_name, actor_role,
			occurred_at, detail, claim_version, override, from_status, to_status
		FROM audit_entries`
	args := []any{}
	if claimID != "" {
		query += ` WHERE claim_id = ?`
		args = append(args, claimID)
	}
	query += ` ORDER BY sequence DESC`
	if limit > 0 {
		query += ` LIMIT ` + strconv.Itoa(limit)
	}

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit entries: %w", err)
	}
	defer rows.Close()

	result := make([]claims.AuditEntry, 0)
	for rows.Next() {
		var (
			e                    claims.AuditEntry
			kind, role, from, to string
			occurredAt           string
			override             bool
		)
		if err := rows.Scan(&e.ID, &e.Sequence, &e.ClaimID, &kind, &e.ActorID, &e.ActorName, &role,
			&occurredAt, &e.Detail, &e.ClaimVersion, &override, &from, &to); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		ts, err := time.Parse(time.RFC3339Nano, occurredAt)
		if err != nil {
			return nil, fmt.Errorf("audit entry %s has bad timestamp: %w", e.ID, err)
		}
		e.Kind = claims.EntryKind(kind)
		e.ActorRole = security.Role(role)
		e.Timestamp = ts
		e.Override = override
		e.FromStatus = claims.Status(from)
		e.ToStatus = claims.Status(to)
		result = append(result, e)
	}
	return result, rows.Err()
}

// Close closes the database.
func (s *SQLSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// rebind rewrites ? placeholders as $n for PostgreSQL.
func (s *SQLSink) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
