package fsops

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReadFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("remember this"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	content, err := New().ReadFile(context.Background(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if content != "remember this" {
		t.Fatalf("unexpected content: %q", content)
	}
}

func TestReadFileMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.txt")

	_, err := New().ReadFile(context.Background(), path)
	if err == nil || !strings.Contains(err.Error(), "file not found") {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestReadFileRejectsDirectory(t *testing.T) {
	dir := t.TempDir()

	_, err := New().ReadFile(context.Background(), dir)
	if err == nil || !strings.Contains(err.Error(), "not a file") {
		t.Fatalf("expected directory rejection, got %v", err)
	}
}

func TestReadFileRejectsBinary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blob.bin")
	if err := os.WriteFile(path, []byte{0xff, 0xfe, 0x00, 0x80}, 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	_, err := New().ReadFile(context.Background(), path)
	if err == nil || !strings.Contains(err.Error(), "binary or encoding issue") {
		t.Fatalf("expected binary rejection, got %v", err)
	}
}

func TestWriteFileCreatesParents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deep", "nested", "out.md")

	msg, err := New().WriteFile(context.Background(), path, "# Notes")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(msg, "Successfully wrote 7 characters") {
		t.Fatalf("unexpected confirmation: %q", msg)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "# Notes" {
		t.Fatalf("unexpected file content: %q", data)
	}
}

func TestWriteFileRejectsDirectoryTarget(t *testing.T) {
	dir := t.TempDir()

	_, err := New().WriteFile(context.Background(), dir, "oops")
	if err == nil || !strings.Contains(err.Error(), "directory, not a file") {
		t.Fatalf("expected directory rejection, got %v", err)
	}
}
