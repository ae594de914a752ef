package shared

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds application settings. It lives in the same YAML document as
// the rule configuration; rule sections are ignored here.
type Config struct {
	Engine struct {
		Command     string            `yaml:"command"`      // "yard"
		Subcommand  string            `yaml:"subcommand"`   // "list"
		QueryFlag   string            `yaml:"query_flag"`   // "--query"
		DBFlag      string            `yaml:"db_flag"`      // "-b"
		DBDir       string            `yaml:"db_dir"`       // "" = temp per file set
		Prepare     string            `yaml:"prepare"`      // "doc" (builds the db)
		Parallelism int               `yaml:"parallelism"`  // 0 = GOMAXPROCS
		ExtraEnv    map[string]string `yaml:"extra_env"`
		Extensions  []string          `yaml:"extensions"`   // [".rb"]
	} `yaml:"engine"`

	Database struct {
		Driver string `yaml:"driver"` // "sqlite" (default) | "pgx"
		DSN    string `yaml:"dsn"`    // "./doclint.db"
	} `yaml:"database"`

	Reporting struct {
		OutDir  string   `yaml:"out_dir"` // "./reports"
		Formats []string `yaml:"formats"` // ["json","text"]
	} `yaml:"reporting"`

	Logging struct {
		Format string `yaml:"format"` // "json"|"console"
		Level  string `yaml:"level"`  // "info"|"debug"|"warn"|"error"
	} `yaml:"logging"`

	API struct {
		Addr      string `yaml:"addr"`       // ":8080"
		TokenHash string `yaml:"token_hash"` // bcrypt; empty disables auth
	} `yaml:"api"`

	Artifact struct {
		Endpoint  string `yaml:"endpoint"`
		Region    string `yaml:"region"`
		AccessKey string `yaml:"access_key"`
		SecretKey string `yaml:"secret_key"`
		Bucket    string `yaml:"bucket"`
		Prefix    string `yaml:"prefix"`
		UseSSL    bool   `yaml:"use_ssl"`
	} `yaml:"artifact"`

	RulePacks []string `yaml:"rule_packs"`
}

func DefaultConfig() Config {
	var c Config
	c.Engine.Command = "yard"
	c.Engine.Subcommand = "list"
	c.Engine.QueryFlag = "--query"
	c.Engine.DBFlag = "-b"
	c.Engine.Prepare = "doc"
	c.Engine.Extensions = []string{".rb"}
	c.Database.Driver = "sqlite"
	c.Database.DSN = "./doclint.db"
	c.Reporting.OutDir = "./reports"
	c.Reporting.Formats = []string{"json", "text"}
	c.Logging.Format = "console"
	c.Logging.Level = "info"
	c.API.Addr = ":8080"
	c.Artifact.Region = "us-east-1"
	c.Artifact.Prefix = "doclint"
	return c
}

// LoadConfig reads settings from path over the defaults, then applies
// DOCLINT_* environment overrides. A missing file is not an error.
func LoadConfig(path string) (Config, error) {
	c := DefaultConfig()
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(b, &c); err != nil {
				return c, fmt.Errorf("parse %s: %w", path, err)
			}
		case !os.IsNotExist(err):
			return c, fmt.Errorf("read %s: %w", path, err)
		}
	}
	applyEnv(&c)
	return c, nil
}

func applyEnv(c *Config) {
	if v := os.Getenv("DOCLINT_DB_DRIVER"); v != "" {
		c.Database.Driver = v
	}
	if v := os.Getenv("DOCLINT_DB_DSN"); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv("DOCLINT_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv("DOCLINT_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("DOCLINT_OUT_DIR"); v != "" {
		c.Reporting.OutDir = v
	}
	if v := os.Getenv("DOCLINT_ENGINE"); v != "" {
		c.Engine.Command = v
	}
	if v := os.Getenv("DOCLINT_PARALLELISM"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.Engine.Parallelism = n
		}
	}
	if v := os.Getenv("DOCLINT_API_TOKEN_HASH"); v != "" {
		c.API.TokenHash = v
	}
	if v := os.Getenv("DOCLINT_S3_ACCESS_KEY"); v != "" {
		c.Artifact.AccessKey = v
	}
	if v := os.Getenv("DOCLINT_S3_SECRET_KEY"); v != "" {
		c.Artifact.SecretKey = v
	}
	if v := os.Getenv("DOCLINT_RULE_PACKS"); v != "" {
		c.RulePacks = strings.Split(v, string(os.PathListSeparator))
	}
}
