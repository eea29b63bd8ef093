package tempscope

import (
	"errors"
	"os"
	"testing"
)

func TestWithTempFile_RemovesOnSuccess(t *testing.T) {
	var captured string
	err := WithTempFile("scope_test_*.bin", func(path string) error {
		captured = path
		if _, statErr := os.Stat(path); statErr != nil {
			t.Fatalf("temp file missing during callback: %v", statErr)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, statErr := os.Stat(captured); !os.IsNotExist(statErr) {
		t.Fatalf("expected temp file removed, stat err = %v", statErr)
	}
}

func TestWithTempFile_RemovesOnError(t *testing.T) {
	var captured string
	sentinel := errors.New("boom")
	err := WithTempFile("scope_test_*.bin", func(path string) error {
		captured = path
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel error, got %v", err)
	}
	if _, statErr := os.Stat(captured); !os.IsNotExist(statErr) {
		t.Fatalf("expected temp file removed after error, stat err = %v", statErr)
	}
}

func TestWithTempDir_RemovesOnSuccess(t *testing.T) {
	var captured string
	err := WithTempDir("scope_dir_*", func(dir string) error {
		captured = dir
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, statErr := os.Stat(captured); !os.IsNotExist(statErr) {
		t.Fatalf("expected temp dir removed, stat err = %v", statErr)
	}
}
