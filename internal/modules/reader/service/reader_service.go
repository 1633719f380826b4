package service

import (
	"context"
	"fmt"

	"microlearn/internal/modules/reader/domain"
	readerout "microlearn/internal/modules/reader/port/out"
	apperrors "microlearn/internal/platform/errors"
)

type ReaderService struct {
	progress         readerout.ProgressPort
	resolver         readerout.ModuleResolver
	externalLauncher readerout.ExternalLauncher
}

type Opened struct {
	Module   domain.ModuleRef
	Item     domain.Item
	Content  string
	Launched bool
}

type Advanced struct {
	Progress  int
	Completed bool
	Finished  bool
}

func NewReaderService(
	progress readerout.ProgressPort,
	resolver readerout.ModuleResolver,
	externalLauncher readerout.ExternalLauncher,
) *ReaderService {
	return &ReaderService{
		progress:         progress,
		resolver:         resolver,
		externalLauncher: externalLauncher,
	}
}

func (s *ReaderService) Open(ctx context.Context, moduleID string, index int, launchExternal bool) (Opened, error) {
	module, item, err := s.resolveItem(ctx, moduleID, index)
	if err != nil {
		return Opened{}, err
	}
	if s.progress != nil {
		if err := s.progress.MarkCurrent(ctx, module.ID); err != nil {
			return Opened{}, err
		}
	}
	launched := false
	if launchExternal && item.URL != "" && s.externalLauncher != nil {
		if err := s.externalLauncher.Open(ctx, item.URL); err != nil {
			return Opened{}, err
		}
		launched = true
	}
	return Opened{Module: module, Item: item, Content: item.Markdown(), Launched: launched}, nil
}

// Advance records that item index was finished. Progress only moves forward;
// finishing the last item completes the module.
func (s *ReaderService) Advance(ctx context.Context, moduleID string, index int) (Advanced, error) {
	if s.progress == nil {
		return Advanced{}, fmt.Errorf("progress port is not configured")
	}
	module, _, err := s.resolveItem(ctx, moduleID, index)
	if err != nil {
		return Advanced{}, err
	}
	if module.IsLast(index) {
		if err := s.progress.Complete(ctx, module.ID); err != nil {
			return Advanced{}, err
		}
		return Advanced{Progress: 100, Completed: true, Finished: true}, nil
	}
	target := domain.ProgressAfter(index, len(module.Items))
	if target <= module.Progress {
		return Advanced{Progress: module.Progress, Completed: module.Completed}, nil
	}
	if err := s.progress.Update(ctx, module.ID, target); err != nil {
		return Advanced{}, err
	}
	return Advanced{Progress: target}, nil
}

func (s *ReaderService) resolveItem(ctx context.Context, moduleID string, index int) (domain.ModuleRef, domain.Item, error) {
	if s.resolver == nil {
		return domain.ModuleRef{}, domain.Item{}, fmt.Errorf("module resolver is not configured")
	}
	module, err := s.resolver.Resolve(ctx, moduleID)
	if err != nil {
		return domain.ModuleRef{}, domain.Item{}, err
	}
	if len(module.Items) == 0 {
		return domain.ModuleRef{}, domain.Item{}, fmt.Errorf("%w: module %s has no content", apperrors.ErrInvalidInput, module.ID)
	}
	if index < 0 || index >= len(module.Items) {
		return domain.ModuleRef{}, domain.Item{}, fmt.Errorf("%w: item %d out of range 0..%d", apperrors.ErrInvalidInput, index, len(module.Items)-1)
	}
	return module, module.Items[index], nil
}
