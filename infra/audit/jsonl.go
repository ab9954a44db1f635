// Package audit provides a file-based AuditStore writing one JSON document
// per line with size-based rotation.
package audit

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/kilianp07/crewplan/core/model"
)

// JSONLStore appends audit entries to a rotating JSONL file.
type JSONLStore struct {
	logger *lumberjack.Logger
	path   string
}

// Rotation bounds the files kept by a JSONLStore.
type Rotation struct {
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// NewJSONLStore creates a store writing to path.
func NewJSONLStore(path string, rot Rotation) (*JSONLStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	lj := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    rot.MaxSizeMB,
		MaxBackups: rot.MaxBackups,
		MaxAge:     rot.MaxAgeDays,
		Compress:   rot.Compress,
	}
	return &JSONLStore{logger: lj, path: path}, nil
}

// Append writes the entry and rotates the file if needed.
func (s *JSONLStore) Append(_ context.Context, e model.AuditLogEntry) error {
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	_, err = s.logger.Write(append(b, '\n'))
	return err
}

// Query filters the entries of the current and rotated files. Empty filter
// fields match everything. Entries are returned oldest first.
func (s *JSONLStore) Query(_ context.Context, tenantID, entityID string) ([]model.AuditLogEntry, error) {
	files, err := s.files()
	if err != nil {
		return nil, err
	}
	res := []model.AuditLogEntry{}
	for _, f := range files {
		file, err := os.Open(f)
		if err != nil {
			continue
		}
		scanner := bufio.NewScanner(file)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			var e model.AuditLogEntry
			if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
				continue
			}
			if tenantID != "" && e.TenantID != tenantID {
				continue
			}
			if entityID != "" && e.EntityID != entityID {
				continue
			}
			res = append(res, e)
		}
		_ = file.Close()
	}
	sort.SliceStable(res, func(i, j int) bool { return res[i].CreatedAt.Before(res[j].CreatedAt) })
	return res, nil
}

// files lists rotated backups followed by the active file.
func (s *JSONLStore) files() ([]string, error) {
	ext := filepath.Ext(s.path)
	prefix := strings.TrimSuffix(s.path, ext)
	backups, err := filepath.Glob(prefix + "-*" + ext)
	if err != nil {
		return nil, err
	}
	sort.Strings(backups)
	if _, err := os.Stat(s.path); err == nil {
		backups = append(backups, s.path)
	}
	return backups, nil
}

// Close closes the underlying writer.
func (s *JSONLStore) Close() error {
	return s.logger.Close()
}
