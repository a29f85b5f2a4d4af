package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mesh-intelligence/restroom/pkg/types"
)

// Export writes every table to dir/<table>.jsonl in insertion order. The
// snapshot is taken in one read transaction; each file is replaced
// atomically.
func (b *Backend) Export(ctx context.Context, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: create export dir: %v", types.ErrStorageFailure, err)
	}

	snapshot := make(map[string][]json.RawMessage, len(jsonlTables))
	err := b.read(ctx, func(tx *sql.Tx) error {
		for _, t := range jsonlTables {
			records, err := exportTable(ctx, tx, t)
			if err != nil {
				return err
			}
			snapshot[t.table] = records
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, t := range jsonlTables {
		if err := writeJSONL(filepath.Join(dir, t.file()), snapshot[t.table]); err != nil {
			return fmt.Errorf("%w: export %s: %v", types.ErrStorageFailure, t.table, err)
		}
	}
	b.log.Info().Str("dir", dir).Msg("store exported")
	return nil
}

func exportTable(ctx context.Context, tx *sql.Tx, t tableFile) ([]json.RawMessage, error) {
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY seq", strings.Join(t.columns, ", "), t.table)
	rows, err := tx.QueryContext(ctx, query)
	if err != nil {
		return nil, storageErr("export "+t.table, err)
	}
	defer rows.Close()

	var records []json.RawMessage
	for rows.Next() {
		values := make([]any, len(t.columns))
		ptrs := make([]any, len(t.columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, storageErr("export scan "+t.table, err)
		}
		obj := make(map[string]any, len(t.columns))
		for i, col := range t.columns {
			if raw, ok := values[i].([]byte); ok {
				obj[col] = string(raw)
				continue
			}
			obj[col] = values[i]
		}
		rec, err := json.Marshal(obj)
		if err != nil {
			return nil, fmt.Errorf("%w: encode %s row: %v", types.ErrStorageFailure, t.table, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("export rows "+t.table, err)
	}
	return records, nil
}
