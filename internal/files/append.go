package files

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// OpenAppend opens path for appending, creating it with mode 0600 when it
// does not exist. A symlink (or Windows reparse point) at path is refused so
// a log cannot be redirected onto another file.
func OpenAppend(path string) (*os.File, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("path is empty")
	}

	info, err := os.Lstat(path)
	switch {
	case err == nil:
		if info.Mode()&os.ModeSymlink != 0 {
			return nil, fmt.Errorf("refusing to write to symlink path: %s", path)
		}
		if !info.Mode().IsRegular() {
			return nil, fmt.Errorf("refusing to write to non-regular file: %s", path)
		}
		if reparse, err := isReparsePoint(path); err != nil {
			return nil, fmt.Errorf("failed to check reparse point: %w", err)
		} else if reparse {
			return nil, fmt.Errorf("refusing to write to symlink path: %s (reparse point)", path)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to access path: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return f, nil
}
