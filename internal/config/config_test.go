package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadParsesWindowsInOrder(t *testing.T) {
	cfg, err := Load([]string{
		"--network-source", "net.gpkg",
		"--events", "events.xml",
		"--windows", "100-200,300-400",
	})
	require.NoError(t, err)
	require.Len(t, cfg.Windows, 2)
	assert.Equal(t, 100, cfg.Windows[0].Start)
	assert.Equal(t, 200, cfg.Windows[0].End)
	assert.Equal(t, 300, cfg.Windows[1].Start)
	assert.Equal(t, 400, cfg.Windows[1].End)
	assert.Equal(t, "net.gpkg_cache.duckdb", cfg.NetworkCache, "cache path defaults to a sibling of network-source")
	assert.Equal(t, "columnar", cfg.TrajectoryFormat)
}

func TestLoadRequiresNetworkSource(t *testing.T) {
	_, err := Load([]string{"--events", "events.xml", "--windows", "100-200"})
	assert.ErrorIs(t, err, ErrConfigInvalid)
}

func TestLoadRejectsMalformedWindow(t *testing.T) {
	_, err := Load([]string{
		"--network-source", "net.gpkg",
		"--events", "events.xml",
		"--windows", "not-a-window",
	})
	var target error
	assert.True(t, errors.As(err, &target) || errors.Is(err, ErrConfigInvalid))
}

func TestLoadRejectsNonPositiveChunkSize(t *testing.T) {
	_, err := Load([]string{
		"--network-source", "net.gpkg",
		"--events", "events.xml",
		"--windows", "100-200",
		"--chunk-size", "0",
	})
	assert.ErrorIs(t, err, ErrConfigInvalid)
}

func TestLoadRejectsUnknownTrajectoryFormat(t *testing.T) {
	_, err := Load([]string{
		"--network-source", "net.gpkg",
		"--events", "events.xml",
		"--windows", "100-200",
		"--trajectory-format", "csv",
	})
	assert.ErrorIs(t, err, ErrConfigInvalid)
}
