package shared

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_DefaultsWhenMissing(t *testing.T) {
	c, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yml"))
	require.NoError(t, err)
	assert.Equal(t, "sqlite", c.Database.Driver)
	assert.Equal(t, "yard", c.Engine.Command)
	assert.Equal(t, []string{".rb"}, c.Engine.Extensions)
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	p := filepath.Join(t.TempDir(), "doclint.yml")
	doc := `
engine:
  command: bundle-yard
  parallelism: 3
database:
  dsn: ./x.db
AllValidators:
  Severity: error
Tags/Order:
  Enabled: false
`
	require.NoError(t, os.WriteFile(p, []byte(doc), 0o644))
	t.Setenv("DOCLINT_DB_DSN", "/tmp/override.db")
	t.Setenv("DOCLINT_LOG_LEVEL", "debug")

	c, err := LoadConfig(p)
	require.NoError(t, err)
	assert.Equal(t, "bundle-yard", c.Engine.Command)
	assert.Equal(t, 3, c.Engine.Parallelism)
	assert.Equal(t, "/tmp/override.db", c.Database.DSN)
	assert.Equal(t, "debug", c.Logging.Level)
	assert.Equal(t, "list", c.Engine.Subcommand, "unset keys keep defaults")
}

func TestLoadConfig_BadYAML(t *testing.T) {
	p := filepath.Join(t.TempDir(), "bad.yml")
	require.NoError(t, os.WriteFile(p, []byte("engine: [unclosed"), 0o644))
	_, err := LoadConfig(p)
	assert.Error(t, err)
}

func TestInitLogger(t *testing.T) {
	l, err := InitLogger("text", "debug")
	require.NoError(t, err)
	require.NotNil(t, l)
	assert.NotNil(t, OrNop(nil))
}
