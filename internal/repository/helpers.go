package repository

import (
	"encoding/json"
	"errors"
	"fmt"

	"jobpilot/internal/database"
	"jobpilot/internal/database/postgres"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record already exists")

	// ErrUnsupportedSchemaVersion is returned when a stored JSON blob was
	// written by a newer build than this one.
	ErrUnsupportedSchemaVersion = errors.New("unsupported schema version")
)

func isNoRows(err error) bool {
	return errors.Is(err, database.ErrNoRows)
}

// classify turns driver errors into repository sentinels.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if isNoRows(err) {
		return ErrNotFound
	}
	if postgres.IsUniqueViolation(err) {
		return fmt.Errorf("%w: %v", ErrConflict, err)
	}
	return err
}

func checkSchemaVersion(table string, got, max int) error {
	if got > max {
		return fmt.Errorf("%w: %s version=%d supported=%d", ErrUnsupportedSchemaVersion, table, got, max)
	}
	return nil
}

func toJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal json: %w", err)
	}
	return string(b), nil
}

func nullableJSON(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}

func fromJSON(raw []byte, out any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("unmarshal json: %w", err)
	}
	return nil
}

func stringsOrEmpty(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
