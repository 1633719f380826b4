package out

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"microlearn/internal/modules/learning/domain"
	learningout "microlearn/internal/modules/learning/port/out"
	apperrors "microlearn/internal/platform/errors"
)

type snapshotFile struct {
	SchemaVersion   int               `yaml:"schema_version"`
	SavedAt         time.Time         `yaml:"saved_at"`
	CurrentModuleID string            `yaml:"current_module_id,omitempty"`
	Modules         []moduleStateYAML `yaml:"modules"`
	Records         []recordYAML      `yaml:"records"`
}

type moduleStateYAML struct {
	ID        string `yaml:"id"`
	Progress  int    `yaml:"progress"`
	Completed bool   `yaml:"completed"`
}

type recordYAML struct {
	ModuleID    string     `yaml:"module_id"`
	Progress    int        `yaml:"progress"`
	CompletedAt *time.Time `yaml:"completed_at,omitempty"`
	TimeSpent   int        `yaml:"time_spent"`
	QuizScores  []int      `yaml:"quiz_scores"`
	UpdatedAt   time.Time  `yaml:"updated_at"`
}

// VaultSnapshotStore keeps the store snapshot as a YAML file in the data dir.
type VaultSnapshotStore struct {
	path string
}

func NewVaultSnapshotStore(path string) learningout.SnapshotStore {
	return &VaultSnapshotStore{path: path}
}

func (s *VaultSnapshotStore) Load(_ context.Context) (domain.Snapshot, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.Snapshot{}, apperrors.ErrNotFound
		}
		return domain.Snapshot{}, fmt.Errorf("read snapshot: %w", err)
	}
	var file snapshotFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return domain.Snapshot{}, fmt.Errorf("decode snapshot %s: %w", s.path, err)
	}
	if file.SchemaVersion > domain.SnapshotSchemaVersion {
		return domain.Snapshot{}, fmt.Errorf("snapshot %s: unsupported schema version %d", s.path, file.SchemaVersion)
	}
	snapshot := domain.Snapshot{
		CurrentModuleID: file.CurrentModuleID,
		SavedAt:         file.SavedAt,
		Modules:         make([]domain.ModuleState, 0, len(file.Modules)),
		Records:         make([]domain.ProgressRecord, 0, len(file.Records)),
	}
	for _, m := range file.Modules {
		snapshot.Modules = append(snapshot.Modules, domain.ModuleState{ModuleID: m.ID, Progress: m.Progress, Completed: m.Completed})
	}
	for _, r := range file.Records {
		snapshot.Records = append(snapshot.Records, domain.ProgressRecord{
			ModuleID:    r.ModuleID,
			Progress:    r.Progress,
			CompletedAt: r.CompletedAt,
			TimeSpent:   r.TimeSpent,
			QuizScores:  r.QuizScores,
			UpdatedAt:   r.UpdatedAt,
		})
	}
	return snapshot, nil
}

func (s *VaultSnapshotStore) Save(_ context.Context, snapshot domain.Snapshot) error {
	file := snapshotFile{
		SchemaVersion:   domain.SnapshotSchemaVersion,
		SavedAt:         snapshot.SavedAt,
		CurrentModuleID: snapshot.CurrentModuleID,
		Modules:         make([]moduleStateYAML, 0, len(snapshot.Modules)),
		Records:         make([]recordYAML, 0, len(snapshot.Records)),
	}
	for _, m := range snapshot.Modules {
		file.Modules = append(file.Modules, moduleStateYAML{ID: m.ModuleID, Progress: m.Progress, Completed: m.Completed})
	}
	for _, r := range snapshot.Records {
		scores := r.QuizScores
		if scores == nil {
			scores = []int{}
		}
		file.Records = append(file.Records, recordYAML{
			ModuleID:    r.ModuleID,
			Progress:    r.Progress,
			CompletedAt: r.CompletedAt,
			TimeSpent:   r.TimeSpent,
			QuizScores:  scores,
			UpdatedAt:   r.UpdatedAt,
		})
	}
	raw, err := yaml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}
