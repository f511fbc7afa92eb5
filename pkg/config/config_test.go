package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kataras/design-tagger/pkg/codegen"
	"github.com/kataras/design-tagger/pkg/export"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultPath)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadMissingFileReturnsDefault(t *testing.T) {
	t.Setenv(TokenEnv, "")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverridesDefaults(t *testing.T) {
	t.Setenv(TokenEnv, "secret")

	path := writeConfig(t, `
plugin:
  name: Acme Export
layout:
  alignmentThreshold: 8
order: visual
css:
  dedup: selector
output:
  dir: build
  markdown: REPORT.md
images:
  download: true
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Acme Export", cfg.Plugin.Name)
	assert.Equal(t, "1.0.0", cfg.Plugin.Version, "unset fields keep their default")
	assert.Equal(t, 8.0, cfg.Layout.Alignment)
	assert.Equal(t, 50.0, cfg.Layout.Spacing)
	assert.Equal(t, export.OrderVisual, cfg.Order)
	assert.Equal(t, codegen.DedupSelector, cfg.CSS.Dedup)
	assert.Equal(t, "build", cfg.Output.Dir)
	assert.Equal(t, "index.html", cfg.Output.HTML)
	assert.True(t, cfg.Images.Download)
	assert.Equal(t, 5, cfg.Images.Concurrency)
	assert.Equal(t, "secret", cfg.Token)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad yaml", "order: [visual"},
		{"unknown order", "order: random"},
		{"unknown dedup", "css:\n  dedup: fuzzy"},
		{"negative threshold", "layout:\n  spacingThreshold: -1"},
		{"negative concurrency", "images:\n  concurrency: -2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestOutputPath(t *testing.T) {
	cfg := Default()
	cfg.Output.Dir = "out"

	assert.Equal(t, filepath.Join("out", "index.html"), cfg.OutputPath("index.html"))
	assert.Equal(t, "", cfg.OutputPath(""))

	abs := filepath.Join(t.TempDir(), "x.css")
	assert.Equal(t, abs, cfg.OutputPath(abs))
}

func TestSaveLoad(t *testing.T) {
	t.Setenv(TokenEnv, "")

	cfg := Default()
	cfg.Order = export.OrderVisual
	cfg.Token = "never written"

	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, cfg.Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "never written")

	loaded, err := Load(path)
	require.NoError(t, err)
	cfg.Token = ""
	assert.Equal(t, cfg, loaded)
}
