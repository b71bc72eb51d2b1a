package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mesh-intelligence/pouch/pkg/types"
)

// column is one row of PRAGMA table_info.
type column struct {
	name         string
	notNull      bool
	defaultValue sql.NullString
}

// copyPlan pairs destination columns in the new table with the source
// expressions selected from the old one.
type copyPlan struct {
	dst     []string
	src     []string
	dropped []string
}

// schemaManager brings a database file to the expected layout.
type schemaManager struct {
	db       *sql.DB
	version  int
	mappings []types.ColumnMapping
	logger   zerolog.Logger
}

// ensure creates the schema on a fresh file and migrates when the recorded
// version differs from the expected one. It returns the version in effect.
func (m *schemaManager) ensure() (int, error) {
	current, err := userVersion(m.db)
	if err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}

	tx, err := m.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	source, err := findSourceTable(tx)
	if err != nil {
		return 0, fmt.Errorf("inspecting tables: %w", err)
	}

	switch {
	case current == m.version && strings.EqualFold(source, tableNote):
		return current, nil

	case source == "":
		if err := createSchema(tx); err != nil {
			return 0, fmt.Errorf("creating schema: %w", err)
		}
		m.logger.Info().Int("version", m.version).Msg("created schema")

	default:
		if err := m.migrate(tx, source, current); err != nil {
			return 0, fmt.Errorf("%w: version %d to %d: %v", types.ErrMigration, current, m.version, err)
		}
	}

	if err := setUserVersion(tx, m.version); err != nil {
		return 0, fmt.Errorf("writing schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		if current != m.version {
			return 0, fmt.Errorf("%w: committing: %v", types.ErrMigration, err)
		}
		return 0, fmt.Errorf("committing schema: %w", err)
	}
	return m.version, nil
}

// migrate moves the rows of source into a freshly created note table,
// keeping the columns both layouts share plus the mapped renames. Anything
// else is dropped. The caller commits or rolls back tx.
func (m *schemaManager) migrate(tx *sql.Tx, source string, from int) error {
	if _, err := tx.Exec("DROP INDEX IF EXISTS " + quoteIdent(idxNoteTimestampName)); err != nil {
		return fmt.Errorf("dropping index: %w", err)
	}

	if strings.EqualFold(source, tableTemp) {
		// A copy left by an interrupted migration holds every row; any note
		// table next to it is partial.
		if _, err := tx.Exec("DROP TABLE IF EXISTS " + quoteIdent(tableNote)); err != nil {
			return fmt.Errorf("dropping partial table: %w", err)
		}
	} else {
		if _, err := tx.Exec(fmt.Sprintf("ALTER TABLE %s RENAME TO %s", quoteIdent(source), quoteIdent(tableTemp))); err != nil {
			return fmt.Errorf("renaming %s: %w", source, err)
		}
	}

	oldCols, err := tableColumns(tx, tableTemp)
	if err != nil {
		return fmt.Errorf("reading old columns: %w", err)
	}
	if err := createSchema(tx); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	newCols, err := tableColumns(tx, tableNote)
	if err != nil {
		return fmt.Errorf("reading new columns: %w", err)
	}

	plan := planCopy(oldCols, newCols, m.mappings)
	if len(plan.dst) > 0 {
		stmt := fmt.Sprintf("INSERT INTO %s (%s) SELECT %s FROM %s",
			quoteIdent(tableNote),
			strings.Join(plan.dst, ", "),
			strings.Join(plan.src, ", "),
			quoteIdent(tableTemp),
		)
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("copying rows: %w", err)
		}
	}

	if _, err := tx.Exec("DROP TABLE " + quoteIdent(tableTemp)); err != nil {
		return fmt.Errorf("dropping %s: %w", tableTemp, err)
	}

	m.logger.Info().
		Str("source", source).
		Int("from", from).
		Int("to", m.version).
		Strs("copied", plan.dst).
		Strs("dropped", plan.dropped).
		Msg("migrated schema")
	return nil
}

// planCopy matches old columns to new ones. Names compare case-insensitively,
// as SQLite identifiers do. A mapping applies only when its old column exists,
// its new column exists, and the new column is not already filled by a
// common column.
func planCopy(oldCols, newCols []column, mappings []types.ColumnMapping) copyPlan {
	var plan copyPlan
	used := make(map[string]bool)
	filled := make(map[string]bool)

	add := func(dst column, src string) {
		expr := quoteIdent(src)
		if dst.notNull && dst.defaultValue.Valid {
			expr = fmt.Sprintf("COALESCE(%s, %s)", expr, dst.defaultValue.String)
		}
		plan.dst = append(plan.dst, quoteIdent(dst.name))
		plan.src = append(plan.src, expr)
		filled[strings.ToLower(dst.name)] = true
		used[strings.ToLower(src)] = true
	}

	for _, nc := range newCols {
		if oc, ok := findColumn(oldCols, nc.name); ok {
			add(nc, oc.name)
		}
	}
	for _, mp := range mappings {
		oc, ok := findColumn(oldCols, mp.Old)
		if !ok {
			continue
		}
		nc, ok := findColumn(newCols, mp.New)
		if !ok || filled[strings.ToLower(nc.name)] {
			continue
		}
		add(nc, oc.name)
	}

	for _, oc := range oldCols {
		if !used[strings.ToLower(oc.name)] {
			plan.dropped = append(plan.dropped, oc.name)
		}
	}
	return plan
}

func findColumn(cols []column, name string) (column, bool) {
	for _, c := range cols {
		if strings.EqualFold(c.name, name) {
			return c, true
		}
	}
	return column{}, false
}

// createSchema creates the note table and its index.
func createSchema(tx *sql.Tx) error {
	for _, ddl := range schemaDDL {
		if _, err := tx.Exec(ddl); err != nil {
			return err
		}
	}
	return nil
}

// findSourceTable returns the table migration should read from: a leftover
// note_temp, then note, then a legacy name. Empty means a fresh file.
func findSourceTable(tx *sql.Tx) (string, error) {
	candidates := append([]string{tableTemp, tableNote}, legacyTables...)
	for _, name := range candidates {
		var actual string
		err := tx.QueryRow(
			"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ? COLLATE NOCASE",
			name,
		).Scan(&actual)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return "", err
		}
		return actual, nil
	}
	return "", nil
}

// tableColumns reads the column list of a table.
func tableColumns(tx *sql.Tx, table string) ([]column, error) {
	rows, err := tx.Query(fmt.Sprintf("PRAGMA table_info(%s)", quoteIdent(table)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []column
	for rows.Next() {
		var (
			cid          int
			name, typ    string
			notNull      int
			defaultValue sql.NullString
			pk           int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &defaultValue, &pk); err != nil {
			return nil, err
		}
		cols = append(cols, column{name: name, notNull: notNull == 1, defaultValue: defaultValue})
	}
	return cols, rows.Err()
}

func userVersion(db *sql.DB) (int, error) {
	var v int
	err := db.QueryRow("PRAGMA user_version").Scan(&v)
	return v, err
}

func setUserVersion(tx *sql.Tx, v int) error {
	_, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", v))
	return err
}
