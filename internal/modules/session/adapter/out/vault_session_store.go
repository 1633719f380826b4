package out

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"microlearn/internal/modules/session/domain"
	sessionout "microlearn/internal/modules/session/port/out"
	"microlearn/internal/platform/markdown"
	"microlearn/internal/platform/slug"
)

// VaultSessionStore writes one markdown note per finished session under
// sessions/YYYY/MM/DD in the data dir.
type VaultSessionStore struct {
	dataDir string
}

func NewVaultSessionStore(dataDir string) sessionout.SessionStore {
	return &VaultSessionStore{dataDir: dataDir}
}

func (s *VaultSessionStore) Save(_ context.Context, session domain.Session) (string, error) {
	date := session.StartedAt
	dir := filepath.Join(s.dataDir, "sessions", date.Format("2006"), date.Format("01"), date.Format("02"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create session dir: %w", err)
	}
	name := fmt.Sprintf("%s-%s-%s.md", date.Format("150405"), slug.Make(session.ModuleTitle), shortID(session.ID))
	path := filepath.Join(dir, name)

	body := fmt.Sprintf("# %s\n\n- Module: %s (%s)\n- Duration: %d minutes\n- Progress: %d%% -> %d%%\n\n## Goal\n\n%s\n\n## Outcome\n\n%s\n",
		session.ModuleTitle, session.ModuleTitle, session.ModuleID, session.DurationMin, session.ProgressBefore, session.ProgressAfter, session.Goal, session.Outcome)
	rendered, err := markdown.Render(session.Meta(), body)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(rendered), 0o644); err != nil {
		return "", fmt.Errorf("write session note: %w", err)
	}
	return path, nil
}

func (s *VaultSessionStore) List(_ context.Context, moduleID string) ([]domain.Session, error) {
	root := filepath.Join(s.dataDir, "sessions")
	var sessions []domain.Session
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && path == root {
				return fs.SkipDir
			}
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".md") {
			return nil
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read session note: %w", err)
		}
		var meta domain.NoteMeta
		if _, err := markdown.Split(string(raw), &meta); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if meta.ID == "" || (moduleID != "" && meta.ModuleID != moduleID) {
			return nil
		}
		session, err := domain.FromMeta(meta)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		sessions = append(sessions, session)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].StartedAt.After(sessions[j].StartedAt)
	})
	return sessions, nil
}

// shortID keeps note names unique for sessions that share a start second and title.
func shortID(id string) string {
	id = strings.ReplaceAll(strings.TrimSpace(id), "-", "")
	if len(id) > 8 {
		id = id[:8]
	}
	if id == "" {
		return "session"
	}
	return slug.Make(id)
}

// DiscardSessionStore drops session notes; used when nothing may touch the disk.
type DiscardSessionStore struct{}

func NewDiscardSessionStore() sessionout.SessionStore {
	return DiscardSessionStore{}
}

func (DiscardSessionStore) Save(context.Context, domain.Session) (string, error) {
	return "", nil
}

func (DiscardSessionStore) List(context.Context, string) ([]domain.Session, error) {
	return nil, nil
}
