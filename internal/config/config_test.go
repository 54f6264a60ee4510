package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "data", c.DataDir)
	assert.Equal(t, []string{"agriculture.csv", "climate.csv"}, c.Sources)
	assert.Equal(t, 2016, c.StartYear)
	assert.Equal(t, 2022, c.EndYear)
	assert.Equal(t, "ko", c.Locale)
	assert.Equal(t, 3, c.TrendWindow)
	assert.Equal(t, 2, c.MinResidualDF)

	aopt := c.AnalysisOptions()
	assert.Equal(t, "rice_production", aopt.Target)
	assert.Len(t, aopt.Predictors, 5)
	assert.Equal(t, filepath.Join("data"), c.DatasetOptions().Dir)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", "config.yaml")
	c, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, c.Set("locale", "english"))
	require.NoError(t, c.Set("predictors", "avg_temperature, precipitation"))
	require.NoError(t, c.Set("knn_k", "2"))
	require.NoError(t, Save(c, path))

	again, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "en", again.Locale)
	assert.Equal(t, []string{"avg_temperature", "precipitation"}, again.Predictors)
	assert.Equal(t, 2, again.KNNK)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("AGRIDASH_DATA_DIR", "/srv/agri")
	t.Setenv("AGRIDASH_END_YEAR", "2021")
	c, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "/srv/agri", c.DataDir)
	assert.Equal(t, 2021, c.EndYear)
}

func TestSetRejectsBadValues(t *testing.T) {
	c := &Global{}
	assert.Error(t, c.Set("knn_k", "0"))
	assert.Error(t, c.Set("ridge_alpha", "-1"))
	assert.Error(t, c.Set("locale", "fr"))
	assert.Error(t, c.Set("nope", "1"))
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("start_year: 2023\nend_year: 2016\n"), 0o644))
	_, err := Load(path)
	assert.ErrorContains(t, err, "start_year")

	require.NoError(t, os.WriteFile(path, []byte("locale: [\n"), 0o644))
	_, err = Load(path)
	assert.ErrorContains(t, err, "read config")
}
