package core

import (
	"os"
	"path/filepath"
	"testing"
)

func TestAddress(t *testing.T) {
	tests := []struct {
		host string
		port int
		want string
	}{
		{"127.0.0.1", 8080, "127.0.0.1:8080"},
		{"", 8080, ":8080"},
		{"::1", 80, "[::1]:80"},
	}

	for _, tt := range tests {
		if got := Address(tt.host, tt.port); got != tt.want {
			t.Errorf("Address(%q, %d) = %q, want %q", tt.host, tt.port, got, tt.want)
		}
	}
}

func TestSplitAddress(t *testing.T) {
	tests := []struct {
		address  string
		wantHost string
		wantPort string
	}{
		{"localhost:8080", "localhost", "8080"},
		{"localhost", "localhost", ""},
		{"[::1]:80", "::1", "80"},
	}

	for _, tt := range tests {
		host, port := SplitAddress(tt.address)
		if host != tt.wantHost || port != tt.wantPort {
			t.Errorf("SplitAddress(%q) = %q, %q, want %q, %q", tt.address, host, port, tt.wantHost, tt.wantPort)
		}
	}
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "file")

	if ok, err := FileExists(path); ok || err != nil {
		t.Errorf("FileExists() = %v, %v, want false, nil", ok, err)
	}

	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if ok, err := FileExists(path); !ok || err != nil {
		t.Errorf("FileExists() = %v, %v, want true, nil", ok, err)
	}
}
