package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sobolyok/risk-project/pkg/regress"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	tmpfile, err := os.CreateTemp(t.TempDir(), "config-*.yaml")
	require.NoError(t, err)
	_, err = tmpfile.WriteString(content)
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())
	return tmpfile.Name()
}

func TestDefaults(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "../data/AMZN.csv", cfg.Data.CSVPath)
	assert.Equal(t, 50, cfg.Features.P)
	assert.Equal(t, 50, cfg.Features.Q)
	assert.Equal(t, 10, cfg.Features.MAWindow)
	assert.Equal(t, 0.02, cfg.Target.Percent)
	assert.Equal(t, regress.DefaultModels(), cfg.Models)

	start, boundary, end, err := cfg.Split.Dates()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2019, 10, 1, 0, 0, 0, 0, time.UTC), boundary)
	assert.Equal(t, time.Date(2019, 11, 1, 0, 0, 0, 0, time.UTC), end)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
data:
  csv_path: "data/BTC.csv"
  symbol: "BTC"
features:
  p: 5
  q: 3
  ma_window: 4
target:
  percent: 0.05
split:
  start: "2020-01-01"
  boundary: "2020-06-01"
  end: ""
models:
  - name: "FastRidge"
    kind: "Ridge"
    params:
      alpha: 10
      fit_intercept: true
  - kind: "Lasso"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "BTC", cfg.Data.Symbol)
	assert.Equal(t, 5, cfg.FeatureConfig().P)
	assert.Equal(t, 0.05, cfg.Target.Percent)
	require.Len(t, cfg.Models, 2)
	assert.Equal(t, "FastRidge", cfg.Models[0].DisplayName())
	assert.Equal(t, "Lasso", cfg.Models[1].DisplayName())

	m, err := regress.New(cfg.Models[0])
	require.NoError(t, err)
	assert.Equal(t, 10.0, m.(*regress.Ridge).Alpha)

	_, _, end, err := cfg.Split.Dates()
	require.NoError(t, err)
	assert.True(t, end.IsZero())
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("DAYFALL_TARGET_PERCENT", "0.1")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 0.1, cfg.Target.Percent)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"bad order", func(c *Config) { c.Features.P, c.Features.Q = 0, 0 }},
		{"bad percent", func(c *Config) { c.Target.Percent = 1.5 }},
		{"bad date", func(c *Config) { c.Split.Start = "2019/01/01" }},
		{"boundary before start", func(c *Config) { c.Split.Boundary = "2018-01-01" }},
		{"end before boundary", func(c *Config) { c.Split.End = "2019-09-01" }},
		{"missing boundary", func(c *Config) { c.Split.Boundary = "" }},
		{"unknown model", func(c *Config) { c.Models = []regress.ModelSpec{{Kind: "Prophet"}} }},
		{"chart size", func(c *Config) { c.Chart.Width = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
