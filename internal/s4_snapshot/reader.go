package s4_snapshot

import (
	"bytes"
	"fmt"
	"os"

	"github.com/gocarina/gocsv"

	"github.com/wonny/tse-screener/internal/contracts"
)

// ReadFile decodes a snapshot CSV written by Writer
func ReadFile(path string) ([]contracts.SnapshotRow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return Decode(data)
}

// Decode parses snapshot CSV bytes, with or without a BOM
func Decode(data []byte) ([]contracts.SnapshotRow, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	var rows []contracts.SnapshotRow
	if len(bytes.TrimSpace(data)) == 0 {
		return rows, nil
	}
	if err := gocsv.UnmarshalBytes(data, &rows); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return rows, nil
}
