package configs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeYAML(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestLoadOverlaysBaseEnvAndVars(t *testing.T) {
	dir := t.TempDir()
	writeYAML(t, dir, "base.yaml", `
app:
  name: domrealce-api
  env: dev
  http_addr: ":8080"
store:
  driver: memory
security:
  ttl: 12h
`)
	writeYAML(t, dir, "prod.yaml", `
app:
  env: prod
security:
  admin_token: tok-prod
`)
	t.Setenv("DOMREALCE_STORE__DRIVER", "mysql")
	t.Setenv("DOMREALCE_STORE__DSN", "user:pass@tcp(db:3306)/domrealce?parseTime=true")
	t.Setenv("DOMREALCE_GATEWAY__MBWAY_KEY", "MBW-XYZ")

	cfg, err := Load(dir, "prod")
	require.NoError(t, err)

	assert.Equal(t, "domrealce-api", cfg.App.Name)
	assert.Equal(t, "prod", cfg.App.Env)
	assert.False(t, cfg.IsDev())
	// env vars win over both yaml layers
	assert.Equal(t, "mysql", cfg.Store.Driver)
	assert.Equal(t, "MBW-XYZ", cfg.Gateway.MBWayKey)
	assert.Equal(t, "tok-prod", cfg.Security.AdminToken)
	assert.Equal(t, 12*time.Hour, cfg.Security.TTL)
}

func TestLoadMissingEnvFileIsOptional(t *testing.T) {
	dir := t.TempDir()
	writeYAML(t, dir, "base.yaml", `
app:
  http_addr: ":8080"
store:
  driver: memory
`)
	cfg, err := Load(dir, "dev")
	require.NoError(t, err)
	assert.Equal(t, "dev", cfg.App.Env, "env name fills in when no file sets it")
}

func TestValidate(t *testing.T) {
	var cfg Config
	cfg.App.HTTPAddr = ":8080"
	cfg.App.Env = "dev"
	cfg.Store.Driver = "memory"
	require.NoError(t, cfg.Validate())

	cfg.Store.Driver = "mysql"
	assert.Error(t, cfg.Validate(), "mysql without dsn")
	cfg.Store.DSN = "user:pass@tcp(db:3306)/domrealce"
	require.NoError(t, cfg.Validate())

	cfg.Store.Driver = "postgres"
	assert.Error(t, cfg.Validate())
	cfg.Store.Driver = "memory"

	cfg.App.Env = "prod"
	assert.Error(t, cfg.Validate(), "prod needs an admin credential")
	cfg.Security.AdminPassword = "segredo"
	require.NoError(t, cfg.Validate())

	cfg.App.HTTPAddr = ""
	assert.Error(t, cfg.Validate())
}
