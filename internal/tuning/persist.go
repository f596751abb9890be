package tuning

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/manojb/expensecast/internal/models"
)

const schemaVersion = 1

// Artifact is the persisted tuning result. It is written once per successful
// search and reloaded on later runs to skip re-tuning.
type Artifact struct {
	SchemaVersion   int                    `json:"schema_version"`
	GeneratedAt     time.Time              `json:"generated_at"`
	SelectionMetric string                 `json:"selection_metric"`
	CVMetric        string                 `json:"cv_metric"`
	Models          map[string]ModelResult `json:"models"`
}

// ModelResult is one model's winning configuration and its cross-validated
// error.
type ModelResult struct {
	Params   models.Params `json:"params"`
	CVMetric float64       `json:"cv_metric"`
}

// SaveArtifact writes the artifact as a single atomic operation: the JSON is
// written to a temp file in the target directory and renamed into place, so
// a crash never leaves a partially written artifact behind.
func SaveArtifact(path string, artifact *Artifact) error {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create artifact directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal tuning artifact: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tuning-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp artifact file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write tuning artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close tuning artifact: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to move tuning artifact into place: %w", err)
	}
	return nil
}

// LoadArtifact reads a previously persisted artifact. A schema mismatch is
// an error so stale artifacts force a fresh search rather than silently
// feeding old parameter shapes into the models.
func LoadArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var artifact Artifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("failed to parse tuning artifact: %w", err)
	}
	if artifact.SchemaVersion != schemaVersion {
		return nil, fmt.Errorf("tuning artifact schema version %d, expected %d",
			artifact.SchemaVersion, schemaVersion)
	}
	return &artifact, nil
}
