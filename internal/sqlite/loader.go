package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mesh-intelligence/restroom/pkg/types"
)

// Import loads dir/<table>.jsonl files in dependency order inside one
// transaction. Malformed lines, rows with unparseable timestamps and rows
// that violate a constraint are skipped; rows whose key already exists are
// left untouched. Unknown fields are ignored. Missing files are treated as
// empty.
func (b *Backend) Import(ctx context.Context, dir string) error {
	loaded := make(map[string]int, len(jsonlTables))
	err := b.write(ctx, func(tx *sql.Tx) error {
		for _, t := range jsonlTables {
			records, err := readJSONL(filepath.Join(dir, t.file()))
			if err != nil {
				return fmt.Errorf("%w: import %s: %v", types.ErrStorageFailure, t.file(), err)
			}
			if len(records) == 0 {
				continue
			}
			n, err := insertRecords(ctx, tx, t, records)
			if err != nil {
				return err
			}
			loaded[t.table] = n
		}
		return nil
	})
	if err != nil {
		return err
	}
	b.log.Info().Str("dir", dir).Interface("rows", loaded).Msg("store imported")
	return nil
}

// insertRecords inserts parsed records into t.table and returns how many
// rows were added. Only the mapped columns are extracted.
func insertRecords(ctx context.Context, tx *sql.Tx, t tableFile, records []json.RawMessage) (int, error) {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(t.columns)), ", ")
	insertSQL := fmt.Sprintf(
		"INSERT OR IGNORE INTO %s (%s) VALUES (%s)",
		t.table, strings.Join(t.columns, ", "), placeholders,
	)

	stmt, err := tx.PrepareContext(ctx, insertSQL)
	if err != nil {
		return 0, storageErr("prepare import "+t.table, err)
	}
	defer stmt.Close()

	added := 0
	for _, rec := range records {
		var obj map[string]any
		if err := json.Unmarshal(rec, &obj); err != nil {
			continue
		}
		if !normalizeTimes(obj, t.timeColumns) {
			continue
		}

		args := make([]any, len(t.columns))
		for i, col := range t.columns {
			args[i] = obj[col]
		}

		res, err := stmt.ExecContext(ctx, args...)
		if err != nil {
			// NOT NULL, CHECK and foreign key violations skip the row.
			continue
		}
		if n, err := res.RowsAffected(); err == nil && n > 0 {
			added++
		}
	}
	return added, nil
}

// normalizeTimes rewrites the named timestamp fields into the stored
// layout. It reports false when a field is missing or unparseable.
func normalizeTimes(obj map[string]any, columns []string) bool {
	for _, col := range columns {
		s, ok := obj[col].(string)
		if !ok {
			return false
		}
		ts, err := parseTime(s)
		if err != nil {
			return false
		}
		obj[col] = formatTime(ts)
	}
	return true
}
