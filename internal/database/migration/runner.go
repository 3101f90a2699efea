// Package migration applies versioned SQL files to Postgres. Applied files
// are recorded with a checksum and must not change afterwards.
package migration

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// lockKey serializes runners across processes sharing one database.
const lockKey int64 = 0x6a6f6270696c6f74

var (
	ErrChecksumMismatch = errors.New("applied migration was modified")
	ErrNilDB            = errors.New("nil db")
)

// Runner reads migrations from FS, or from Dir on disk when set.
type Runner struct {
	FS     fs.FS
	Dir    string
	Logger *zap.Logger
}

type Migration struct {
	Version  int64
	Name     string
	Filename string
	SQL      string
	Checksum string
}

type Status struct {
	Version   int64
	Name      string
	Applied   bool
	AppliedAt *time.Time
}

type record struct {
	checksum  string
	appliedAt time.Time
}

var filenameRe = regexp.MustCompile(`^V(\d+)__([A-Za-z0-9_.-]+)\.sql$`)

// Run applies pending migrations in version order, each in its own
// transaction, and returns how many it applied.
func (r Runner) Run(ctx context.Context, db *sql.DB) (int, error) {
	if db == nil {
		return 0, ErrNilDB
	}
	log := r.logger()

	migs, err := r.Load()
	if err != nil {
		return 0, err
	}
	if len(migs) == 0 {
		log.Warn("no migrations found", zap.String("dir", r.Dir))
		return 0, nil
	}

	// The advisory lock is session scoped: lock and unlock share one connection.
	conn, err := db.Conn(ctx)
	if err != nil {
		return 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, `SELECT pg_advisory_lock($1)`, lockKey); err != nil {
		return 0, fmt.Errorf("acquire migration lock: %w", err)
	}
	defer func() {
		_, _ = conn.ExecContext(context.Background(), `SELECT pg_advisory_unlock($1)`, lockKey)
	}()

	applied, err := readApplied(ctx, conn)
	if err != nil {
		return 0, err
	}
	todo, err := pending(migs, applied)
	if err != nil {
		return 0, err
	}

	for _, m := range todo {
		start := time.Now()
		if err := apply(ctx, conn, m); err != nil {
			return 0, err
		}
		log.Info("migration applied",
			zap.Int64("version", m.Version),
			zap.String("name", m.Name),
			zap.Duration("took", time.Since(start)),
		)
	}
	if len(todo) == 0 {
		log.Debug("schema up to date", zap.Int64("version", migs[len(migs)-1].Version))
	}
	return len(todo), nil
}

// Status lists every known migration with whether it has been applied.
func (r Runner) Status(ctx context.Context, db *sql.DB) ([]Status, error) {
	if db == nil {
		return nil, ErrNilDB
	}
	migs, err := r.Load()
	if err != nil {
		return nil, err
	}

	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Close()

	applied, err := readApplied(ctx, conn)
	if err != nil {
		return nil, err
	}

	out := make([]Status, 0, len(migs))
	for _, m := range migs {
		st := Status{Version: m.Version, Name: m.Name}
		if rec, ok := applied[m.Version]; ok {
			at := rec.appliedAt
			st.Applied, st.AppliedAt = true, &at
		}
		out = append(out, st)
	}
	return out, nil
}

// Load reads and validates the migration set without touching the database.
func (r Runner) Load() ([]Migration, error) {
	src := r.FS
	if strings.TrimSpace(r.Dir) != "" {
		src = os.DirFS(r.Dir)
	}
	if src == nil {
		return nil, errors.New("no migration source configured")
	}
	return load(src)
}

// pending returns migrations not yet applied, failing when an applied one
// has a different checksum.
func pending(migs []Migration, applied map[int64]record) ([]Migration, error) {
	out := make([]Migration, 0, len(migs))
	for _, m := range migs {
		rec, ok := applied[m.Version]
		if !ok {
			out = append(out, m)
			continue
		}
		if rec.checksum != m.Checksum {
			return nil, fmt.Errorf("%w: V%d %s", ErrChecksumMismatch, m.Version, m.Name)
		}
	}
	return out, nil
}

func (r Runner) logger() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger
}

func load(src fs.FS) ([]Migration, error) {
	entries, err := fs.ReadDir(src, ".")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	migs := make([]Migration, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		version, name, ok := parseFilename(e.Name())
		if !ok {
			continue
		}

		b, err := fs.ReadFile(src, e.Name())
		if err != nil {
			return nil, err
		}
		body := strings.TrimSpace(string(b))
		if body == "" {
			return nil, fmt.Errorf("empty migration file: %s", e.Name())
		}

		sum := sha256.Sum256([]byte(body))
		migs = append(migs, Migration{
			Version:  version,
			Name:     name,
			Filename: e.Name(),
			SQL:      body,
			Checksum: hex.EncodeToString(sum[:]),
		})
	}

	sort.Slice(migs, func(i, j int) bool { return migs[i].Version < migs[j].Version })
	for i := 1; i < len(migs); i++ {
		if migs[i].Version == migs[i-1].Version {
			return nil, fmt.Errorf("duplicate migration version %d: %s and %s", migs[i].Version, migs[i-1].Filename, migs[i].Filename)
		}
	}
	return migs, nil
}

func parseFilename(name string) (int64, string, bool) {
	m := filenameRe.FindStringSubmatch(name)
	if m == nil {
		return 0, "", false
	}
	v, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil || v <= 0 {
		return 0, "", false
	}
	return v, m[2], true
}

func readApplied(ctx context.Context, conn *sql.Conn) (map[int64]record, error) {
	if _, err := conn.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS schema_migrations (
	version BIGINT PRIMARY KEY,
	name TEXT NOT NULL,
	checksum TEXT NOT NULL,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`); err != nil {
		return nil, fmt.Errorf("ensure schema_migrations: %w", err)
	}

	rows, err := conn.QueryContext(ctx, `SELECT version, checksum, applied_at FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("read schema_migrations: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]record)
	for rows.Next() {
		var (
			v   int64
			rec record
		)
		if err := rows.Scan(&v, &rec.checksum, &rec.appliedAt); err != nil {
			return nil, err
		}
		out[v] = rec
	}
	return out, rows.Err()
}

func apply(ctx context.Context, conn *sql.Conn, m Migration) error {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
		return fmt.Errorf("apply V%d %s: %w", m.Version, m.Filename, err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO schema_migrations (version, name, checksum) VALUES ($1, $2, $3)`,
		m.Version, m.Name, m.Checksum,
	); err != nil {
		return fmt.Errorf("record V%d: %w", m.Version, err)
	}
	return tx.Commit()
}
