package s4_snapshot

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/wonny/tse-screener/internal/contracts"
	"github.com/wonny/tse-screener/pkg/config"
	"github.com/wonny/tse-screener/pkg/logger"
)

// DateLayout is the date label embedded in snapshot file names
const DateLayout = "2006-01-02"

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriterConfig holds output settings
type WriterConfig struct {
	Dir          string
	Prefix       string
	Location     *time.Location // run dates are labelled in this zone
	WriteParquet bool
}

// WriterConfigFrom extracts the writer settings from config
func WriterConfigFrom(cfg *config.Config) WriterConfig {
	return WriterConfig{
		Dir:          cfg.Pipeline.OutputDir,
		Prefix:       cfg.Pipeline.OutputPrefix,
		Location:     cfg.Location(),
		WriteParquet: cfg.Pipeline.WriteParquet,
	}
}

// Writer persists one CSV snapshot per run date
// ⭐ SSOT: S4 스냅샷 파일 저장은 여기서만
type Writer struct {
	cfg    WriterConfig
	logger *logger.Logger
}

// NewWriter creates a new Snapshot Writer
func NewWriter(cfg WriterConfig, log *logger.Logger) *Writer {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "tse_daily"
	}
	return &Writer{
		cfg:    cfg,
		logger: log.Module("s4_snapshot"),
	}
}

// DateLabel formats runDate in the exchange time zone
func (w *Writer) DateLabel(runDate time.Time) string {
	return runDate.In(w.cfg.Location).Format(DateLayout)
}

// Path returns the CSV path of runDate
func (w *Writer) Path(runDate time.Time) string {
	return filepath.Join(w.cfg.Dir, FileName(w.cfg.Prefix, w.DateLabel(runDate), ".csv"))
}

// FileName builds "<prefix>_<date><ext>"
func FileName(prefix, dateLabel, ext string) string {
	return fmt.Sprintf("%s_%s%s", prefix, dateLabel, ext)
}

// Write encodes rows as UTF-8 CSV with a BOM and a header row.
// The file is written next to its final path and renamed into place, so a
// reader never sees a partial file and the last writer of the day wins.
func (w *Writer) Write(rows []contracts.SnapshotRow, runDate time.Time) (string, error) {
	if err := os.MkdirAll(w.cfg.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	path := w.Path(runDate)
	err := atomicWrite(path, func(f *os.File) error {
		if _, err := f.Write(utf8BOM); err != nil {
			return err
		}
		return gocsv.Marshal(&rows, f)
	})
	if err != nil {
		return "", fmt.Errorf("write snapshot %s: %w", path, err)
	}

	w.logger.WithFields(map[string]interface{}{
		"path": path,
		"rows": len(rows),
	}).Info("Snapshot written")

	if w.cfg.WriteParquet {
		pqPath := filepath.Join(w.cfg.Dir, FileName(w.cfg.Prefix, w.DateLabel(runDate), ".parquet"))
		if err := writeParquet(pqPath, rows); err != nil {
			// The CSV is the contract; the mirror is best effort
			w.logger.WithError(err).WithField("path", pqPath).Warn("Parquet mirror failed")
		}
	}

	return path, nil
}

// atomicWrite writes via a temp file in the same directory then renames it
func atomicWrite(path string, fill func(f *os.File) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if err := fill(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
