package depgraph

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/vmihailenco/msgpack/v5"
)

// tableSchemaVersion: увеличивать при изменении формата tablePayload.
const tableSchemaVersion uint16 = 1

// ErrSchema is returned when a saved table was written by another format
// version. Callers treat it like a missing table.
var ErrSchema = errors.New("dependency table schema mismatch")

type tablePayload struct {
	Schema  uint16
	Session string // id of the session that wrote the table, informational
	Units   []string
	Deps    [][]string
}

// SaveTable writes t to path atomically (temp file + rename).
func SaveTable(path, session string, t Table) error {
	payload := tablePayload{Schema: tableSchemaVersion, Session: session}
	payload.Units = make([]string, 0, len(t))
	for unit := range t {
		payload.Units = append(payload.Units, unit)
	}
	slices.Sort(payload.Units)
	payload.Deps = make([][]string, len(payload.Units))
	for i, unit := range payload.Units {
		deps := slices.Clone(t[unit])
		slices.Sort(deps)
		payload.Deps[i] = deps
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".deps-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer os.Remove(tmp) //nolint:errcheck // после rename файла уже нет

	if err := msgpack.NewEncoder(f).Encode(&payload); err != nil {
		f.Close() //nolint:errcheck
		return fmt.Errorf("encode dependency table: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	// атомарная замена
	return os.Rename(tmp, path)
}

// LoadTable reads a table written by SaveTable. A missing file yields
// (nil, "", nil).
func LoadTable(path string) (Table, string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, "", nil
		}
		return nil, "", err
	}
	defer f.Close() //nolint:errcheck

	var payload tablePayload
	if err := msgpack.NewDecoder(f).Decode(&payload); err != nil {
		return nil, "", fmt.Errorf("decode dependency table %s: %w", path, err)
	}
	if payload.Schema != tableSchemaVersion {
		return nil, "", fmt.Errorf("%w: %s has schema %d, want %d", ErrSchema, path, payload.Schema, tableSchemaVersion)
	}
	if len(payload.Deps) != len(payload.Units) {
		return nil, "", fmt.Errorf("decode dependency table %s: %d units, %d dependency lists", path, len(payload.Units), len(payload.Deps))
	}

	t := make(Table, len(payload.Units))
	for i, unit := range payload.Units {
		t[unit] = payload.Deps[i]
	}
	return t, payload.Session, nil
}
