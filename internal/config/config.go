package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/joho/godotenv"
	"github.com/titanous/json5"
)

// DefaultFile is read when no --config flag is given. It is optional.
const DefaultFile = "coursesync.json5"

type Config struct {
	LogLevel string `json:"log_level"`

	// Catalog API
	APIURL        string `json:"api_url"`
	SiteBase      string `json:"site_base"`
	UserAgent     string `json:"user_agent"`
	PageSize      int    `json:"page_size"`
	Concurrency   int    `json:"concurrency"`
	MaxEmptyPages int    `json:"max_empty_pages"`
	MaxPages      int    `json:"max_pages"`
	PageDelayMS   int    `json:"page_delay_ms"`
	TimeoutSec    int    `json:"timeout_sec"`

	// Files
	SnapshotCSV  string `json:"snapshot_csv"`
	SnapshotJSON string `json:"snapshot_json"`
	ChangeLog    string `json:"change_log"`
	DetailsJSON  string `json:"details_json"`
	FieldsDir    string `json:"fields_dir"`
	FinalCSV     string `json:"final_csv"`
	FinalSQLite  string `json:"final_sqlite"`
	IntentCSV    string `json:"intent_csv"`
	RefDataDir   string `json:"refdata_dir"`

	// Detail scraper
	ScrapeWorkers int `json:"scrape_workers"`
	ScrapeDelayMS int `json:"scrape_delay_ms"`

	// SFTP
	SFTPHost       string `json:"sftp_host"`
	SFTPPort       int    `json:"sftp_port"`
	SFTPUser       string `json:"sftp_user"`
	SFTPPass       string `json:"sftp_pass"`
	SFTPRemoteDir  string `json:"sftp_remote_dir"`
	SFTPKnownHosts string `json:"sftp_known_hosts"`
	SFTPInsecure   bool   `json:"sftp_insecure_ignore_host_key"`
}

func Defaults() Config {
	return Config{
		LogLevel: "info",

		APIURL:        "https://mftplus.com/ajax/default/calendar",
		SiteBase:      "https://mftplus.com",
		UserAgent:     "Mozilla/5.0",
		PageSize:      9,
		Concurrency:   5,
		MaxEmptyPages: 2,
		PageDelayMS:   200,
		TimeoutSec:    30,

		SnapshotCSV:  "mftplus_courses.csv",
		SnapshotJSON: "mftplus_courses.json",
		ChangeLog:    "COURSE_LOG.md",
		DetailsJSON:  "courses_full_data.json",
		FieldsDir:    "course_fields",
		FinalCSV:     "mftplus_courses_final.csv",
		FinalSQLite:  "mftplus_courses_final.db",
		IntentCSV:    "courses_norm_intent.csv",
		RefDataDir:   "data",

		ScrapeWorkers: 1,
		ScrapeDelayMS: 1000,

		SFTPPort:      22,
		SFTPRemoteDir: "/",
	}
}

// Load builds the configuration from, in increasing priority:
// defaults, the JSON5 file at path (plus its .local sibling), .env, and the environment.
// An empty path means DefaultFile; a missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Defaults()

	if path == "" {
		path = DefaultFile
	}
	file, err := ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := mergo.Merge(&cfg, file, mergo.WithOverride); err != nil {
		return cfg, fmt.Errorf("config: merge %s: %w", path, err)
	}

	// .env never overrides variables that are already set
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return cfg, fmt.Errorf("config: load .env: %w", err)
	}

	applyEnv(&cfg)
	return cfg, nil
}

// ReadFile reads name and merges <name>.local.<ext> over it.
// Returns os.ErrNotExist when neither file exists.
func ReadFile(name string) (Config, error) {
	var out Config
	found := false

	data, err := os.ReadFile(name)
	if err != nil && !os.IsNotExist(err) {
		return out, err
	}
	if len(data) > 0 {
		if err := json5.Unmarshal(data, &out); err != nil {
			return out, err
		}
		found = true
	}

	local := localName(name)
	data, err = os.ReadFile(local)
	if err != nil && !os.IsNotExist(err) {
		return out, err
	}
	if len(data) > 0 {
		var override Config
		if err := json5.Unmarshal(data, &override); err != nil {
			return out, err
		}
		if err := mergo.Merge(&out, override, mergo.WithOverride); err != nil {
			return out, err
		}
		slog.Info("merging config with local overrides", "local", local)
		found = true
	}

	if !found {
		return out, os.ErrNotExist
	}
	return out, nil
}

func localName(name string) string {
	dir, base := filepath.Dir(name), filepath.Base(name)
	ext := filepath.Ext(base)
	return filepath.Join(dir, strings.TrimSuffix(base, ext)+".local"+ext)
}

func applyEnv(c *Config) {
	c.LogLevel = getenv("COURSESYNC_LOG_LEVEL", c.LogLevel)

	c.APIURL = getenv("COURSESYNC_API_URL", c.APIURL)
	c.SiteBase = getenv("COURSESYNC_SITE_BASE", c.SiteBase)
	c.UserAgent = getenv("COURSESYNC_USER_AGENT", c.UserAgent)
	c.PageSize = getenvInt("COURSESYNC_PAGE_SIZE", c.PageSize)
	c.Concurrency = getenvInt("COURSESYNC_CONCURRENCY", c.Concurrency)
	c.MaxEmptyPages = getenvInt("COURSESYNC_MAX_EMPTY_PAGES", c.MaxEmptyPages)
	c.MaxPages = getenvInt("COURSESYNC_MAX_PAGES", c.MaxPages)
	c.PageDelayMS = getenvInt("COURSESYNC_PAGE_DELAY_MS", c.PageDelayMS)
	c.TimeoutSec = getenvInt("COURSESYNC_TIMEOUT_SEC", c.TimeoutSec)

	c.SnapshotCSV = getenv("COURSESYNC_SNAPSHOT_CSV", c.SnapshotCSV)
	c.SnapshotJSON = getenv("COURSESYNC_SNAPSHOT_JSON", c.SnapshotJSON)
	c.ChangeLog = getenv("COURSESYNC_CHANGE_LOG", c.ChangeLog)
	c.DetailsJSON = getenv("COURSESYNC_DETAILS_JSON", c.DetailsJSON)
	c.FieldsDir = getenv("COURSESYNC_FIELDS_DIR", c.FieldsDir)
	c.FinalCSV = getenv("COURSESYNC_FINAL_CSV", c.FinalCSV)
	c.FinalSQLite = getenv("COURSESYNC_FINAL_SQLITE", c.FinalSQLite)
	c.IntentCSV = getenv("COURSESYNC_INTENT_CSV", c.IntentCSV)
	c.RefDataDir = getenv("COURSESYNC_REFDATA_DIR", c.RefDataDir)

	c.ScrapeWorkers = getenvInt("COURSESYNC_SCRAPE_WORKERS", c.ScrapeWorkers)
	c.ScrapeDelayMS = getenvInt("COURSESYNC_SCRAPE_DELAY_MS", c.ScrapeDelayMS)

	c.SFTPHost = getenv("SFTP_HOST", c.SFTPHost)
	c.SFTPPort = getenvInt("SFTP_PORT", c.SFTPPort)
	c.SFTPUser = getenv("SFTP_USER", c.SFTPUser)
	c.SFTPPass = getenv("SFTP_PASS", c.SFTPPass)
	c.SFTPRemoteDir = getenv("SFTP_REMOTE_DIR", c.SFTPRemoteDir)
	c.SFTPKnownHosts = getenv("SFTP_KNOWN_HOSTS", c.SFTPKnownHosts)
	c.SFTPInsecure = getenvBool("SFTP_INSECURE_IGNORE_HOSTKEY", c.SFTPInsecure)
}

func (c Config) PageDelay() time.Duration   { return time.Duration(c.PageDelayMS) * time.Millisecond }
func (c Config) ScrapeDelay() time.Duration { return time.Duration(c.ScrapeDelayMS) * time.Millisecond }
func (c Config) Timeout() time.Duration     { return time.Duration(c.TimeoutSec) * time.Second }

// SlogLevel maps LogLevel to a slog level; unknown values are info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func getenv(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func getenvInt(k string, def int) int {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getenvBool(k string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
