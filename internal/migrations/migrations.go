package migrations

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

//go:embed sql
var embedded embed.FS

type migration struct {
	Name string
	Path string
}

// Apply runs every embedded migration for the database's dialect that has not
// been recorded in schema_migrations yet. It returns the names it applied.
func Apply(ctx context.Context, db *sqlx.DB, logger *zap.Logger) ([]string, error) {
	dir, err := dialectDir(db.DriverName())
	if err != nil {
		return nil, err
	}
	return apply(ctx, db, embedded, dir, logger)
}

func dialectDir(driver string) (string, error) {
	switch driver {
	case "pgx", "postgres":
		return "sql/postgres", nil
	case "sqlite3":
		return "sql/sqlite", nil
	}
	return "", fmt.Errorf("no migrations for driver %q", driver)
}

func apply(ctx context.Context, db *sqlx.DB, fsys fs.FS, dir string, logger *zap.Logger) ([]string, error) {
	if err := ensureTable(ctx, db); err != nil {
		return nil, err
	}
	migs, err := listMigrations(fsys, dir)
	if err != nil {
		return nil, err
	}
	applied, err := appliedMigrations(ctx, db)
	if err != nil {
		return nil, err
	}
	var done []string
	for _, mig := range migs {
		version := parseVersion(mig.Name)
		if applied.names[mig.Name] || (version != "" && applied.versions[version]) {
			continue
		}
		if err := applyMigration(ctx, db, fsys, mig); err != nil {
			return done, err
		}
		logger.Info("migration applied", zap.String("name", mig.Name))
		done = append(done, mig.Name)
	}
	return done, nil
}

func ensureTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS schema_migrations (
  version TEXT NULL,
  name TEXT NOT NULL UNIQUE,
  applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`)
	return err
}

func listMigrations(fsys fs.FS, dir string) ([]migration, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, err
	}
	migs := make([]migration, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".sql") {
			continue
		}
		migs = append(migs, migration{
			Name: name,
			Path: path.Join(dir, name),
		})
	}
	sort.Slice(migs, func(i, j int) bool {
		iVersion, iOk := parseVersionNumber(migs[i].Name)
		jVersion, jOk := parseVersionNumber(migs[j].Name)
		switch {
		case iOk && jOk && iVersion != jVersion:
			return iVersion < jVersion
		case iOk != jOk:
			return iOk
		default:
			return migs[i].Name < migs[j].Name
		}
	})
	return migs, nil
}

type appliedSet struct {
	names    map[string]bool
	versions map[string]bool
}

func appliedMigrations(ctx context.Context, db *sqlx.DB) (appliedSet, error) {
	rows := []struct {
		Version *string `db:"version"`
		Name    string  `db:"name"`
	}{}
	if err := db.SelectContext(ctx, &rows, `SELECT version, name FROM schema_migrations`); err != nil {
		return appliedSet{}, err
	}
	set := appliedSet{names: map[string]bool{}, versions: map[string]bool{}}
	for _, row := range rows {
		set.names[row.Name] = true
		if row.Version != nil {
			set.versions[*row.Version] = true
		}
	}
	return set, nil
}

// applyMigration runs the script and records it in one transaction.
func applyMigration(ctx context.Context, db *sqlx.DB, fsys fs.FS, mig migration) error {
	content, err := fs.ReadFile(fsys, mig.Path)
	if err != nil {
		return err
	}
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, string(content)); err != nil {
		return fmt.Errorf("apply %s: %w", mig.Name, err)
	}
	_, err = tx.ExecContext(ctx, tx.Rebind(`INSERT INTO schema_migrations (version, name) VALUES (?, ?)`),
		nullIfEmpty(parseVersion(mig.Name)), mig.Name)
	if err != nil {
		return fmt.Errorf("record %s: %w", mig.Name, err)
	}
	return tx.Commit()
}

func parseVersion(name string) string {
	if !strings.HasPrefix(name, "V") {
		return ""
	}
	parts := strings.SplitN(name[1:], "__", 2)
	if len(parts) < 2 {
		return ""
	}
	return strings.TrimSpace(parts[0])
}

func parseVersionNumber(name string) (int, bool) {
	raw := parseVersion(name)
	if raw == "" {
		return 0, false
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return value, true
}

func nullIfEmpty(value string) interface{} {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}
