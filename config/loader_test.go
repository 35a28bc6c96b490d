package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoaderLayering(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	project := t.TempDir()
	workDir := filepath.Join(project, "src", "features")
	require.NoError(t, os.MkdirAll(workDir, 0755))

	writeFile(t, filepath.Join(home, UserConfigDir, UserConfigFile), "workers: 2\nseverities:\n  naming: warning\n")
	writeFile(t, filepath.Join(project, ProjectConfigFile), "workers: 6\n")

	cfg, err := NewLoader(nil).WithWorkDir(workDir).Load("")
	require.NoError(t, err)

	assert.Equal(t, 6, cfg.Workers, "project config overrides user config")
	assert.Equal(t, "warning", cfg.Severities["naming"], "user config survives where project is silent")
	assert.Equal(t, project, cfg.ProjectRoot, "project root is the project config's directory")
}

func TestLoaderExplicitPath(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	explicit := filepath.Join(dir, "custom.yaml")
	writeFile(t, explicit, "workers: 3\n")

	cfg, err := NewLoader(nil).WithWorkDir(t.TempDir()).Load(explicit)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Workers)
	assert.NotEmpty(t, cfg.ProjectRoot)
}

func TestLoaderExplicitPathMissing(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	_, err := NewLoader(nil).WithWorkDir(t.TempDir()).Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoaderInvalidProjectConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	project := t.TempDir()
	writeFile(t, filepath.Join(project, ProjectConfigFile), "severities:\n  naming: loud\n")

	_, err := NewLoader(nil).WithWorkDir(project).Load("")
	assert.Error(t, err)
}
