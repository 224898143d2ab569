package s4_snapshot

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// FileInfo describes one snapshot file on disk
type FileInfo struct {
	Path      string    `json:"-"`
	Name      string    `json:"name"`
	DateLabel string    `json:"date"`
	ModTime   time.Time `json:"mod_time"`
	Size      int64     `json:"size"`
}

// List returns the snapshot CSV files in dir, newest date first.
// Files whose date label does not parse are ignored.
func List(dir, prefix string) ([]FileInfo, error) {
	pattern := filepath.Join(dir, prefix+"_*.csv")
	paths, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", pattern, err)
	}

	files := make([]FileInfo, 0, len(paths))
	for _, p := range paths {
		name := filepath.Base(p)
		label := strings.TrimSuffix(strings.TrimPrefix(name, prefix+"_"), ".csv")
		if _, err := time.Parse(DateLayout, label); err != nil {
			continue
		}
		st, err := os.Stat(p)
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Path:      p,
			Name:      name,
			DateLabel: label,
			ModTime:   st.ModTime(),
			Size:      st.Size(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].DateLabel > files[j].DateLabel
	})
	return files, nil
}

// Find returns the file for dateLabel. "" and "latest" select the newest file.
func Find(dir, prefix, dateLabel string) (FileInfo, error) {
	files, err := List(dir, prefix)
	if err != nil {
		return FileInfo{}, err
	}
	if len(files) == 0 {
		return FileInfo{}, fmt.Errorf("%w in %s", ErrNoSnapshots, dir)
	}
	if dateLabel == "" || dateLabel == "latest" {
		return files[0], nil
	}
	for _, f := range files {
		if f.DateLabel == dateLabel {
			return f, nil
		}
	}
	return FileInfo{}, fmt.Errorf("%w: %s", ErrSnapshotNotFound, dateLabel)
}
