// Package fsops implements the action-tier filesystem tools. Calls reach
// it only after explicit user approval.
package fsops

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

type Files struct{}

func New() *Files {
	return &Files{}
}

func (f *Files) ReadFile(_ context.Context, path string) (string, error) {
	expanded, err := expandHome(path)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(expanded)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("file not found: %s", path)
		}
		if errors.Is(err, fs.ErrPermission) {
			return "", fmt.Errorf("permission denied: %s", path)
		}
		return "", fmt.Errorf("stat file: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("path is not a file: %s", path)
	}

	data, err := os.ReadFile(expanded)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return "", fmt.Errorf("permission denied: %s", path)
		}
		return "", fmt.Errorf("read file: %w", err)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("cannot read file (binary or encoding issue): %s", path)
	}
	return string(data), nil
}

func (f *Files) WriteFile(_ context.Context, path, content string) (string, error) {
	expanded, err := expandHome(path)
	if err != nil {
		return "", err
	}

	if info, statErr := os.Stat(expanded); statErr == nil && info.IsDir() {
		return "", fmt.Errorf("path is a directory, not a file: %s", path)
	}

	if dir := filepath.Dir(expanded); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create parent directories: %w", err)
		}
	}

	if err := os.WriteFile(expanded, []byte(content), 0o644); err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return "", fmt.Errorf("permission denied: %s", path)
		}
		return "", fmt.Errorf("write file: %w", err)
	}
	return fmt.Sprintf("Successfully wrote %d characters to %s", len(content), path), nil
}

func expandHome(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
	}
	return path, nil
}
