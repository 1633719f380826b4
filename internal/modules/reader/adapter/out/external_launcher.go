package out

import (
	"context"
	"fmt"
	"net/url"
	"os/exec"
	"runtime"

	readerout "microlearn/internal/modules/reader/port/out"
	apperrors "microlearn/internal/platform/errors"
)

// OSExternalLauncher hands http(s) links from video and interactive items to the desktop opener.
type OSExternalLauncher struct{}

func NewOSExternalLauncher() readerout.ExternalLauncher {
	return &OSExternalLauncher{}
}

func (l *OSExternalLauncher) Open(ctx context.Context, target string) error {
	parsed, err := url.Parse(target)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return fmt.Errorf("%w: not a web link: %q", apperrors.ErrInvalidInput, target)
	}
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.CommandContext(ctx, "open", target)
	case "linux", "freebsd", "openbsd":
		cmd = exec.CommandContext(ctx, "xdg-open", target)
	case "windows":
		cmd = exec.CommandContext(ctx, "rundll32", "url.dll,FileProtocolHandler", target)
	default:
		return fmt.Errorf("external open is not supported on %s", runtime.GOOS)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("open external target: %w", err)
	}
	return nil
}
