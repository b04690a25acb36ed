// Package session persists the most recent analysis so a restart can resume
// the dashboard without re-running the backend pipeline.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Codewiz19/legallens/internal/report"
)

const (
	cacheEnvVar = "LEGALLENS_CACHE_DIR"
	cacheSubdir = "legallens"
	cacheFile   = "session.json"
)

// Snapshot is the single persisted analysis slot. Summary and Assessment are
// stored post-normalization, so a resumed session never re-decodes backend
// payloads.
type Snapshot struct {
	DocumentID  string                  `json:"documentId"`
	DisplayName string                  `json:"displayName"`
	SavedAt     time.Time               `json:"savedAt"`
	Summary     *report.DocumentSummary `json:"summary,omitempty"`
	Assessment  *report.RiskAssessment  `json:"assessment,omitempty"`
}

// Store reads and writes snapshots under a single directory.
type Store struct {
	dir string
}

// NewStore resolves the cache directory: LEGALLENS_CACHE_DIR when set,
// otherwise the platform user cache dir.
func NewStore() (*Store, error) {
	dir := os.Getenv(cacheEnvVar)
	if dir == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			base = filepath.Join(os.TempDir(), "legallens-cache")
		}
		dir = filepath.Join(base, cacheSubdir)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Store{dir: dir}, nil
}

func (s *Store) path() string {
	return filepath.Join(s.dir, cacheFile)
}

// Load returns the saved snapshot, or (nil, nil) when none exists.
func (s *Store) Load() (*Snapshot, error) {
	data, err := os.ReadFile(s.path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("session cache is corrupt: %w", err)
	}
	return &snapshot, nil
}

// Save overwrites the slot. Each new analysis replaces the previous one.
func (s *Store) Save(snapshot Snapshot) error {
	if snapshot.SavedAt.IsZero() {
		snapshot.SavedAt = time.Now()
	}
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path(), data, 0o644)
}

// Clear removes the saved snapshot. Missing files are not an error.
func (s *Store) Clear() error {
	if err := os.Remove(s.path()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// exportEnvelope is the downloadable report shape.
type exportEnvelope struct {
	Document   exportDocument          `json:"document"`
	Summary    *report.DocumentSummary `json:"summary"`
	Assessment *report.RiskAssessment  `json:"assessment"`
}

type exportDocument struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"displayName"`
	AnalyzedAt  time.Time `json:"analyzedAt"`
}

// Export writes the full analysis report for snapshot to path as indented
// JSON. Normalized structures are serialized verbatim; nothing is recomputed
// at export time.
func Export(snapshot Snapshot, path string) error {
	if snapshot.Summary == nil && snapshot.Assessment == nil {
		return fmt.Errorf("nothing to export: no analysis in the session")
	}
	envelope := exportEnvelope{
		Document: exportDocument{
			ID:          snapshot.DocumentID,
			DisplayName: snapshot.DisplayName,
			AnalyzedAt:  snapshot.SavedAt,
		},
		Summary:    snapshot.Summary,
		Assessment: snapshot.Assessment,
	}
	data, err := json.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}
