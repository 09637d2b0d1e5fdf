package slogutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseSize(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
	}{
		{"", 0},
		{"invalid", 0},
		{"100", 100},
		{"100B", 100},
		{"100b", 100},
		{"1KB", 1024},
		{"1kb", 1024},
		{"10KB", 10240},
		{"1MB", 1024 * 1024},
		{" 10MB ", 10 * 1024 * 1024},
		{"1GB", 1024 * 1024 * 1024},
		{"1.5MB", int64(1.5 * 1024 * 1024)},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := ParseSize(tt.input)
			if result != tt.expected {
				t.Errorf("ParseSize(%q) = %d, want %d", tt.input, result, tt.expected)
			}
		})
	}
}

func TestRotatingFile_Write(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "ssiserve.log")

	rf, err := OpenRotatingFile(path, 100, 2)
	if err != nil {
		t.Fatalf("OpenRotatingFile failed: %v", err)
	}
	defer rf.Close()

	for i := 0; i < 5; i++ {
		if _, err := rf.Write([]byte("hello world\n")); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("Log file should exist")
	}
}

func TestRotatingFile_Rotation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ssiserve.log")

	rf, err := OpenRotatingFile(path, 50, 2)
	if err != nil {
		t.Fatalf("OpenRotatingFile failed: %v", err)
	}

	line := []byte(strings.Repeat("a", 29) + "\n")
	for i := 0; i < 5; i++ {
		if _, err := rf.Write(line); err != nil {
			t.Fatalf("Write %d failed: %v", i, err)
		}
	}
	if err := rf.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("Main log file should exist")
	}
	if _, err := os.Stat(path + ".1"); os.IsNotExist(err) {
		t.Error("Backup .1 should exist")
	}
	if _, err := os.Stat(path + ".3"); !os.IsNotExist(err) {
		t.Error("Backup .3 should not exist with maxBackups=2")
	}
}

func TestRotatingFile_CloseTwice(t *testing.T) {
	rf, err := OpenRotatingFile(filepath.Join(t.TempDir(), "x.log"), 0, 0)
	if err != nil {
		t.Fatalf("OpenRotatingFile failed: %v", err)
	}
	if err := rf.Close(); err != nil {
		t.Fatalf("first Close failed: %v", err)
	}
	if err := rf.Close(); err != nil {
		t.Errorf("second Close = %v, want nil", err)
	}
}

func TestOpenLogFile_NoRotation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.log")

	rf, err := OpenLogFile(path, "", 3)
	if err != nil {
		t.Fatalf("OpenLogFile failed: %v", err)
	}
	defer rf.Close()

	for i := 0; i < 100; i++ {
		if _, err := rf.Write([]byte("0123456789\n")); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}
	if _, err := os.Stat(path + ".1"); !os.IsNotExist(err) {
		t.Error("no backup should exist when rotation is disabled")
	}
}
