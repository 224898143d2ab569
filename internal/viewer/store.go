package viewer

import (
	"github.com/wonny/tse-screener/internal/contracts"
	"github.com/wonny/tse-screener/internal/s4_snapshot"
	"github.com/wonny/tse-screener/pkg/logger"
)

// Snapshot is one loaded snapshot file
type Snapshot struct {
	File s4_snapshot.FileInfo
	Rows []contracts.SnapshotRow
}

// Store reads snapshot files from the output directory
type Store struct {
	dir    string
	prefix string
	logger *logger.Logger
}

// NewStore creates a snapshot store over dir
func NewStore(dir, prefix string, log *logger.Logger) *Store {
	return &Store{dir: dir, prefix: prefix, logger: log.Module("viewer")}
}

// Files lists the available snapshots, newest first
func (s *Store) Files() ([]s4_snapshot.FileInfo, error) {
	return s4_snapshot.List(s.dir, s.prefix)
}

// Find resolves a date label ("" or "latest" for the newest)
func (s *Store) Find(dateLabel string) (s4_snapshot.FileInfo, error) {
	return s4_snapshot.Find(s.dir, s.prefix, dateLabel)
}

// Open loads the snapshot for a date label
func (s *Store) Open(dateLabel string) (*Snapshot, error) {
	info, err := s.Find(dateLabel)
	if err != nil {
		return nil, err
	}
	return s.Load(info)
}

// Load reads a snapshot whose file is already resolved
func (s *Store) Load(info s4_snapshot.FileInfo) (*Snapshot, error) {
	rows, err := s4_snapshot.ReadFile(info.Path)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"file": info.Name,
		"rows": len(rows),
	}).Debug("Snapshot loaded")

	return &Snapshot{File: info, Rows: rows}, nil
}
