package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/misterclayt0n/podium/internal/utils"
)

// syncTables lists the tables a dump carries, parents before children.
var syncTables = []string{
	"exercises",
	"training_sessions",
	"training_session_exercises",
	"exercise_sets",
	"body_weights",
	"achievement_definitions",
	"achievement_instances",
	"user_goals",
	"workout_schedules",
	"notifications",
}

// ExportTOML writes every table to a single TOML file, one array of rows per table.
func (s *Storage) ExportTOML(ctx context.Context, outputPath string) error {
	dbDump := make(map[string][]map[string]any)

	for _, table := range syncTables {
		rows, err := dumpTable(ctx, s.DB, table)
		if err != nil {
			return err
		}
		if rows == nil {
			// Written as an empty array so an import still clears the table.
			rows = []map[string]any{}
		}
		dbDump[table] = rows
	}

	var sb strings.Builder
	if err := toml.NewEncoder(&sb).Encode(dbDump); err != nil {
		return fmt.Errorf("encoding TOML: %w", err)
	}

	outputPath, err := filepath.Abs(outputPath)
	if err != nil {
		return err
	}
	if err := os.WriteFile(outputPath, []byte(sb.String()), 0644); err != nil {
		return fmt.Errorf("writing export file: %w", err)
	}
	return nil
}

func dumpTable(ctx context.Context, q querier, table string) ([]map[string]any, error) {
	rows, err := q.QueryContext(ctx, fmt.Sprintf("SELECT * FROM %s;", table))
	if err != nil {
		return nil, fmt.Errorf("querying table %s: %w", table, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("getting columns for table %s: %w", table, err)
	}

	var tableData []map[string]any
	for rows.Next() {
		values := make([]any, len(cols))
		valuePtrs := make([]any, len(cols))
		for i := range values {
			valuePtrs[i] = &values[i]
		}
		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, fmt.Errorf("scanning row in table %s: %w", table, err)
		}

		// TOML has no null, so NULL columns are left out of the row.
		rowMap := make(map[string]any)
		for i, col := range cols {
			switch v := values[i].(type) {
			case nil:
			case []byte:
				rowMap[col] = string(v)
			default:
				rowMap[col] = v
			}
		}
		tableData = append(tableData, rowMap)
	}
	return tableData, rows.Err()
}

// GetDBExportPath returns ~/.config/podium/db_dump.toml.
func GetDBExportPath() (string, error) {
	dir, err := utils.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "db_dump.toml"), nil
}

// ImportTOML replaces the content of every table present in the dump at filePath.
func (s *Storage) ImportTOML(ctx context.Context, filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("Reading file %s: %w", filePath, err)
	}

	var dbDump map[string][]map[string]any
	if _, err := toml.Decode(string(data), &dbDump); err != nil {
		return fmt.Errorf("Decoding TOML: %w", err)
	}

	known := make(map[string]bool, len(syncTables))
	for _, t := range syncTables {
		known[t] = true
	}
	for table := range dbDump {
		if !known[table] {
			return fmt.Errorf("unknown table %q in dump", table)
		}
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		// Children are cleared before their parents, then refilled after them.
		for i := len(syncTables) - 1; i >= 0; i-- {
			table := syncTables[i]
			if _, ok := dbDump[table]; !ok {
				continue
			}
			if _, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s;", table)); err != nil {
				return fmt.Errorf("Clearing table %s: %w", table, err)
			}
		}
		for _, table := range syncTables {
			rows, ok := dbDump[table]
			if !ok {
				continue
			}
			for _, row := range rows {
				if err := insertRow(ctx, tx, table, row); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func insertRow(ctx context.Context, q querier, table string, row map[string]any) error {
	columns := make([]string, 0, len(row))
	for col := range row {
		columns = append(columns, col)
	}
	// Map order is random.
	sort.Strings(columns)

	placeholders := make([]string, len(columns))
	values := make([]any, len(columns))
	for i, col := range columns {
		placeholders[i] = "?"
		values[i] = row[col]
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s);", table, strings.Join(columns, ", "), strings.Join(placeholders, ", "))
	if _, err := q.ExecContext(ctx, query, values...); err != nil {
		return fmt.Errorf("Inserting into table %s: %w", table, err)
	}
	return nil
}
