// Package trace implements an optional snappy/zstd event-and-frame
// recorder that an engine.Core can attach to while running. Event records
// (engine.Events: Connected, Rollback, SyncEvent, ...) are line-delimited
// JSON compressed with snappy; per-tick world snapshots are length-prefixed
// binary compressed with zstd.
package trace

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// HeaderSchemaVersion tracks the schema version for recorded trace bundles.
const HeaderSchemaVersion = 1

// Header is the metadata persisted alongside a trace bundle.
type Header struct {
	SchemaVersion int    `json:"schema_version"`
	ProtocolHash  uint64 `json:"protocol_hash"`
	FilePointer   string `json:"file_pointer"`
}

// Validate ensures the header carries enough information for tooling to
// locate the trace artifact.
func (h Header) Validate() error {
	if h.SchemaVersion <= 0 {
		return fmt.Errorf("schema_version must be positive")
	}
	if strings.TrimSpace(h.FilePointer) == "" {
		return fmt.Errorf("file_pointer must not be empty")
	}
	return nil
}

// WriteHeader persists header to path as indented JSON.
func WriteHeader(path string, header Header) error {
	if err := header.Validate(); err != nil {
		return err
	}
	payload, err := json.MarshalIndent(header, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, append(payload, '\n'), 0o644)
}

// ReadHeader loads and validates a trace header from disk.
func ReadHeader(path string) (Header, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Header{}, err
	}
	var header Header
	if err := json.Unmarshal(data, &header); err != nil {
		return Header{}, err
	}
	if err := header.Validate(); err != nil {
		return Header{}, err
	}
	return header, nil
}
