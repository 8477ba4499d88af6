package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestGetenv(t *testing.T) {
	// Test with empty environment variable
	os.Unsetenv("TEST_GETENV")
	result := getenv("TEST_GETENV", "default")
	if result != "default" {
		t.Errorf("Expected default value 'default', got '%s'", result)
	}

	// Test with set environment variable
	os.Setenv("TEST_GETENV", "test-value")
	result = getenv("TEST_GETENV", "default")
	if result != "test-value" {
		t.Errorf("Expected 'test-value', got '%s'", result)
	}

	// Clean up
	os.Unsetenv("TEST_GETENV")
}

func TestGetenvInt(t *testing.T) {
	// Test with empty environment variable
	os.Unsetenv("TEST_GETENV_INT")
	result := getenvInt("TEST_GETENV_INT", 42)
	if result != 42 {
		t.Errorf("Expected default value 42, got %d", result)
	}

	// Test with valid integer
	os.Setenv("TEST_GETENV_INT", "100")
	result = getenvInt("TEST_GETENV_INT", 42)
	if result != 100 {
		t.Errorf("Expected 100, got %d", result)
	}

	// Test with invalid integer
	os.Setenv("TEST_GETENV_INT", "not-an-int")
	result = getenvInt("TEST_GETENV_INT", 42)
	if result != 42 {
		t.Errorf("Expected default value 42, got %d", result)
	}

	// Clean up
	os.Unsetenv("TEST_GETENV_INT")
}

func TestGetenvBool(t *testing.T) {
	// Test with empty environment variable
	os.Unsetenv("TEST_GETENV_BOOL")
	result := getenvBool("TEST_GETENV_BOOL", true)
	if result != true {
		t.Errorf("Expected default value true, got %v", result)
	}

	// Test with valid boolean (true)
	os.Setenv("TEST_GETENV_BOOL", "true")
	result = getenvBool("TEST_GETENV_BOOL", false)
	if result != true {
		t.Errorf("Expected true, got %v", result)
	}

	// Test with valid boolean (false)
	os.Setenv("TEST_GETENV_BOOL", "false")
	result = getenvBool("TEST_GETENV_BOOL", true)
	if result != false {
		t.Errorf("Expected false, got %v", result)
	}

	// Test with invalid boolean
	os.Setenv("TEST_GETENV_BOOL", "not-a-bool")
	result = getenvBool("TEST_GETENV_BOOL", true)
	if result != true {
		t.Errorf("Expected default value true, got %v", result)
	}

	// Clean up
	os.Unsetenv("TEST_GETENV_BOOL")
}

func TestLoad(t *testing.T) {
	t.Chdir(t.TempDir())

	t.Setenv("COURSESYNC_CONCURRENCY", "3")
	t.Setenv("COURSESYNC_SNAPSHOT_CSV", "out/courses.csv")
	t.Setenv("SFTP_HOST", "sftp.test")
	t.Setenv("SFTP_PORT", "2222")
	t.Setenv("SFTP_INSECURE_IGNORE_HOSTKEY", "true")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Concurrency != 3 {
		t.Errorf("Expected Concurrency to be 3, got %d", cfg.Concurrency)
	}
	if cfg.SnapshotCSV != "out/courses.csv" {
		t.Errorf("Expected SnapshotCSV to be 'out/courses.csv', got '%s'", cfg.SnapshotCSV)
	}
	if cfg.SFTPHost != "sftp.test" || cfg.SFTPPort != 2222 {
		t.Errorf("Expected SFTP sftp.test:2222, got %s:%d", cfg.SFTPHost, cfg.SFTPPort)
	}
	if !cfg.SFTPInsecure {
		t.Error("Expected SFTPInsecure to be true")
	}

	// untouched defaults
	if cfg.PageSize != 9 || cfg.MaxEmptyPages != 2 {
		t.Errorf("Expected default paging 9/2, got %d/%d", cfg.PageSize, cfg.MaxEmptyPages)
	}
	if cfg.PageDelay() != 200*time.Millisecond {
		t.Errorf("Expected default page delay 200ms, got %v", cfg.PageDelay())
	}
	if cfg.SFTPRemoteDir != "/" {
		t.Errorf("Expected default SFTPRemoteDir to be '/', got '%s'", cfg.SFTPRemoteDir)
	}
}

func TestLoadFileLayers(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	writeFile(t, filepath.Join(dir, "coursesync.json5"), `{
		// comments and trailing commas are fine
		concurrency: 8,
		change_log: "logs/COURSE_LOG.md",
		max_pages: 40,
	}`)
	writeFile(t, filepath.Join(dir, "coursesync.local.json5"), `{max_pages: 10}`)
	writeFile(t, filepath.Join(dir, ".env"), "SFTP_USER=from-dotenv\nCOURSESYNC_CONCURRENCY=6\n")

	t.Setenv("COURSESYNC_CONCURRENCY", "2")
	t.Cleanup(func() { os.Unsetenv("SFTP_USER") })

	cfg, err := Load("coursesync.json5")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.ChangeLog != "logs/COURSE_LOG.md" {
		t.Errorf("Expected ChangeLog from file, got '%s'", cfg.ChangeLog)
	}
	if cfg.MaxPages != 10 {
		t.Errorf("Expected local override MaxPages 10, got %d", cfg.MaxPages)
	}
	if cfg.SFTPUser != "from-dotenv" {
		t.Errorf("Expected SFTPUser from .env, got '%s'", cfg.SFTPUser)
	}
	// already-set environment wins over both .env and the file
	if cfg.Concurrency != 2 {
		t.Errorf("Expected Concurrency 2 from the environment, got %d", cfg.Concurrency)
	}
	// not named in any layer
	if cfg.SnapshotCSV != "mftplus_courses.csv" {
		t.Errorf("Expected default SnapshotCSV, got '%s'", cfg.SnapshotCSV)
	}
}

func TestLoadBadFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeFile(t, filepath.Join(dir, "broken.json5"), `{concurrency: `)

	if _, err := Load("broken.json5"); err == nil {
		t.Error("Expected an error for a malformed config file")
	}
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.json5"))
	if !os.IsNotExist(err) {
		t.Errorf("Expected os.ErrNotExist, got %v", err)
	}
}

func TestLocalName(t *testing.T) {
	got := localName(filepath.Join("conf", "coursesync.json5"))
	want := filepath.Join("conf", "coursesync.local.json5")
	if got != want {
		t.Errorf("Expected %s, got %s", want, got)
	}
}

func TestSlogLevel(t *testing.T) {
	testCases := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"chatty", slog.LevelInfo},
	}
	for _, tc := range testCases {
		if got := (Config{LogLevel: tc.input}).SlogLevel(); got != tc.expected {
			t.Errorf("SlogLevel(%q) = %v, want %v", tc.input, got, tc.expected)
		}
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
