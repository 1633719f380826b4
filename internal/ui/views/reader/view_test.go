package reader_test

import (
	"context"
	"errors"
	"testing"

	readerdto "microlearn/internal/modules/reader/dto"
	readerview "microlearn/internal/ui/views/reader"
)

type fakeReader struct {
	items    []readerdto.OpenResult
	advanced []int
}

func (f *fakeReader) Open(_ context.Context, _ string, index int) (readerdto.OpenResult, error) {
	if index < 0 || index >= len(f.items) {
		return readerdto.OpenResult{}, errors.New("out of range")
	}
	return f.items[index], nil
}

func (f *fakeReader) Launch(ctx context.Context, moduleID string, index int) (readerdto.OpenResult, error) {
	out, err := f.Open(ctx, moduleID, index)
	out.ExternalLaunched = true
	return out, err
}

func (f *fakeReader) Advance(_ context.Context, moduleID string, index int) (readerdto.AdvanceResult, error) {
	f.advanced = append(f.advanced, index)
	return readerdto.AdvanceResult{ModuleID: moduleID, Progress: 50, NextIndex: index + 1}, nil
}

func items() []readerdto.OpenResult {
	return []readerdto.OpenResult{
		{ModuleID: "1", Title: "Introduction to CBT", Index: 0, Total: 2, ItemType: "text", Content: "Thoughts shape feelings."},
		{ModuleID: "1", Title: "Introduction to CBT", Index: 1, Total: 2, ItemType: "video", Content: "Watch the demo.", ExternalTarget: "https://example.org/cbt"},
	}
}

func TestCopyCurrentPrefersLink(t *testing.T) {
	t.Parallel()
	var copied []string
	m := readerview.New(&fakeReader{items: items()}).WithClipboard(func(s string) error {
		copied = append(copied, s)
		return nil
	})
	if cmd := m.CopyCurrent(); cmd != nil {
		t.Fatalf("expected no copy command before a module is open")
	}

	m, _ = m.Update(readerview.OpenedMsg{Result: items()[0]})
	msg := m.CopyCurrent()().(readerview.CopiedMsg)
	if msg.Err != nil || msg.Link {
		t.Fatalf("unexpected copy result for text item: %+v", msg)
	}

	m, _ = m.Update(readerview.OpenedMsg{Result: items()[1]})
	msg = m.CopyCurrent()().(readerview.CopiedMsg)
	if msg.Err != nil || !msg.Link {
		t.Fatalf("unexpected copy result for video item: %+v", msg)
	}
	if len(copied) != 2 || copied[0] != "Thoughts shape feelings." || copied[1] != "https://example.org/cbt" {
		t.Fatalf("unexpected clipboard writes: %q", copied)
	}
}

func TestNavigationAndAdvance(t *testing.T) {
	t.Parallel()
	port := &fakeReader{items: items()}
	m := readerview.New(port)
	if m.NextItem() != nil || m.AdvanceCurrent() != nil || m.LaunchCurrent() != nil {
		t.Fatalf("expected idle reader to ignore navigation")
	}

	m, _ = m.Update(readerview.OpenedMsg{Result: items()[0]})
	if m.ModuleID() != "1" || m.PrevItem() != nil {
		t.Fatalf("unexpected reader state after open")
	}
	if m.LaunchCurrent() != nil {
		t.Fatalf("text item has no link to launch")
	}
	opened := m.NextItem()().(readerview.OpenedMsg)
	if opened.Err != nil || opened.Result.Index != 1 {
		t.Fatalf("unexpected next item: %+v", opened)
	}

	advanced := m.AdvanceCurrent()().(readerview.AdvancedMsg)
	if advanced.Err != nil || advanced.Result.Progress != 50 || len(port.advanced) != 1 || port.advanced[0] != 0 {
		t.Fatalf("unexpected advance: %+v calls=%v", advanced, port.advanced)
	}
}
