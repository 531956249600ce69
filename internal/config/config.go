package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/yosuke-furukawa/json5/encoding/json5"
)

const (
	DirName         = "prepsite"
	ConfigFileName  = "config.json"
	SessionFileName = "session.txt"
	CacheFileName   = "cache.db"
	DotEnvFileName  = ".env"
)

// Config contains defaults for site generation and the API client.
type Config struct {
	BaseURL           string `json:"base_url"`
	OutputDir         string `json:"output_dir"`
	DataPath          string `json:"data_path"`
	TripleCompanies   int    `json:"triple_companies"`
	TripleRoles       int    `json:"triple_roles"`
	TripleSkills      int    `json:"triple_skills"`
	RelatedLimit      int    `json:"related_limit"`
	IndexLimit        int    `json:"index_limit"`
	ChangeFreq        string `json:"change_freq"`
	APIBaseURL        string `json:"api_base_url"`
	APITimeoutSeconds int    `json:"api_timeout_seconds"`
	Proxy             string `json:"proxy"`
	CachePath         string `json:"cache_path"`
	SessionTTLHours   int    `json:"session_ttl_hours"`
}

func DefaultConfig() Config {
	return Config{
		BaseURL:           envString("PREPSITE_BASE_URL", "https://interviewsense.org"),
		OutputDir:         envString("PREPSITE_OUTPUT_DIR", "public"),
		DataPath:          envString("PREPSITE_DATA", ""),
		TripleCompanies:   envInt("PREPSITE_TRIPLE_COMPANIES", 10),
		TripleRoles:       envInt("PREPSITE_TRIPLE_ROLES", 5),
		TripleSkills:      envInt("PREPSITE_TRIPLE_SKILLS", 5),
		RelatedLimit:      envInt("PREPSITE_RELATED_LIMIT", 6),
		IndexLimit:        envInt("PREPSITE_INDEX_LIMIT", 12),
		ChangeFreq:        envString("PREPSITE_CHANGE_FREQ", "weekly"),
		APIBaseURL:        envString("PREPSITE_API_URL", "https://interviewsense.org"),
		APITimeoutSeconds: envInt("PREPSITE_API_TIMEOUT", 15),
		Proxy:             envString("PREPSITE_PROXY", ""),
		CachePath:         envString("PREPSITE_CACHE", ""),
		SessionTTLHours:   envInt("PREPSITE_SESSION_TTL_HOURS", 24),
	}
}

// APITimeout is the per-call API timeout.
func (c Config) APITimeout() time.Duration {
	if c.APITimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.APITimeoutSeconds) * time.Second
}

// SessionTTL is how long session-scoped cache entries live.
func (c Config) SessionTTL() time.Duration {
	if c.SessionTTLHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.SessionTTLHours) * time.Hour
}

func ConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, DirName), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName), nil
}

func SessionPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, SessionFileName), nil
}

// ResolveCachePath returns the local cache file, defaulting to the user cache dir.
func (c Config) ResolveCachePath() (string, error) {
	if path := strings.TrimSpace(c.CachePath); path != "" {
		return path, nil
	}
	base, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, DirName, CacheFileName), nil
}

// LoadDotEnv loads variables from the given files, or .env in the working
// directory, without overriding the environment. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{DotEnvFileName}
	}
	for _, path := range paths {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return err
		}
	}
	return nil
}

func Load() (Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), err
	}
	return LoadFrom(path)
}

// LoadFrom reads the JSON5 config at path over the defaults. A missing or
// empty file yields the defaults.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}

	if len(strings.TrimSpace(string(data))) == 0 {
		return cfg, nil
	}

	if err := json5.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Init writes default config.json and session.txt if they don't already exist.
func Init() ([]string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return nil, err
	}
	return InitDir(dir)
}

func InitDir(dir string) ([]string, error) {
	var created []string

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return created, err
	}

	configPath := filepath.Join(dir, ConfigFileName)
	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		if err := writeConfig(configPath, DefaultConfig()); err != nil {
			return created, err
		}
		created = append(created, configPath)
	}

	sessionPath := filepath.Join(dir, SessionFileName)
	if _, err := os.Stat(sessionPath); errors.Is(err, os.ErrNotExist) {
		body := "# Paste the session cookie header value (name=value) on the next line.\n"
		if err := os.WriteFile(sessionPath, []byte(body), 0o600); err != nil {
			return created, err
		}
		created = append(created, sessionPath)
	}

	return created, nil
}

func writeConfig(path string, cfg Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// LoadSessionCookie returns the flag value, then PREPSITE_SESSION_COOKIE,
// then the first non-comment line of session.txt.
func LoadSessionCookie(flagValue string) (string, error) {
	path, err := SessionPath()
	if err != nil {
		return "", err
	}
	return loadSessionCookie(flagValue, path)
}

func loadSessionCookie(flagValue string, path string) (string, error) {
	if value := strings.TrimSpace(flagValue); value != "" {
		return value, nil
	}

	if env := strings.TrimSpace(os.Getenv("PREPSITE_SESSION_COOKIE")); env != "" {
		return env, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", err
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		return line, nil
	}
	return "", nil
}

func envString(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func envInt(key string, fallback int) int {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}
