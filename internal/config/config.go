// Package config parses the pipeline's CLI flags and environment variable
// fallbacks into a validated Config, grounded on
// flow-ingest/cmd/server/main.go's loadConfig shape.
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/NoahBjongHoKim/trafficsim/internal/filter"
)

// ErrConfigInvalid is returned from Load for a malformed window string, a
// non-positive chunk size, or an unknown --trajectory-format.
var ErrConfigInvalid = errors.New("config: invalid")

// Config holds every flag/env-configurable setting for one pipeline run.
type Config struct {
	NetworkSource string
	NetworkCache  string
	SourceSRID    string

	Events  string
	Windows []filter.SnapshotWindow

	ChunkSize     int
	Workers       int
	QueueCapacity int

	Intermediate string

	TrajectoryOut    string
	TrajectoryFormat string

	HeatmapOut      string
	HeatmapInterval int

	MetricsAddr string
	LogLevel    string
	LogFormat   string
}

func getenv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) (int, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q: %s", ErrConfigInvalid, key, v, err)
	}
	return i, nil
}

// Load parses args (typically os.Args[1:]) against the flag/env surface
// described in SPEC_FULL.md §6 and returns a validated Config.
func Load(args []string) (Config, error) {
	fs := flag.NewFlagSet("trafficsim-pipeline", flag.ContinueOnError)

	defaultWorkers, err := getenvInt("TRAFFICSIM_WORKERS", runtime.NumCPU())
	if err != nil {
		return Config{}, err
	}
	defaultChunkSize, err := getenvInt("TRAFFICSIM_CHUNK_SIZE", 50000)
	if err != nil {
		return Config{}, err
	}
	defaultQueueCapacity, err := getenvInt("TRAFFICSIM_QUEUE_CAPACITY", 4*defaultWorkers)
	if err != nil {
		return Config{}, err
	}
	defaultHeatmapInterval, err := getenvInt("TRAFFICSIM_HEATMAP_INTERVAL", 300)
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	var windowsCSV string

	fs.StringVar(&cfg.NetworkSource, "network-source", getenv("TRAFFICSIM_NETWORK_SOURCE", ""), "path to the authoritative GIS network (env: TRAFFICSIM_NETWORK_SOURCE)")
	fs.StringVar(&cfg.NetworkCache, "network-cache", getenv("TRAFFICSIM_NETWORK_CACHE", ""), "cache side-file path, defaults to a sibling of network-source (env: TRAFFICSIM_NETWORK_CACHE)")
	fs.StringVar(&cfg.SourceSRID, "source-srid", getenv("TRAFFICSIM_SOURCE_SRID", ""), "reprojection source SRID, empty if already WGS84 (env: TRAFFICSIM_SOURCE_SRID)")
	fs.StringVar(&cfg.Events, "events", getenv("TRAFFICSIM_EVENTS", ""), "path to the XML event log (env: TRAFFICSIM_EVENTS)")
	fs.StringVar(&windowsCSV, "windows", getenv("TRAFFICSIM_WINDOWS", ""), "comma-separated start-end pairs, e.g. 100-200,300-400 (env: TRAFFICSIM_WINDOWS)")
	fs.IntVar(&cfg.ChunkSize, "chunk-size", defaultChunkSize, "EventFilter reader chunk size (env: TRAFFICSIM_CHUNK_SIZE)")
	fs.IntVar(&cfg.Workers, "workers", defaultWorkers, "worker pool size, shared across stages (env: TRAFFICSIM_WORKERS)")
	fs.IntVar(&cfg.QueueCapacity, "queue-capacity", defaultQueueCapacity, "bounded channel capacity (env: TRAFFICSIM_QUEUE_CAPACITY)")
	fs.StringVar(&cfg.Intermediate, "intermediate", getenv("TRAFFICSIM_INTERMEDIATE", ""), "path to the stage-1 output, defaults to a temp file (env: TRAFFICSIM_INTERMEDIATE)")
	fs.StringVar(&cfg.TrajectoryOut, "trajectory-out", getenv("TRAFFICSIM_TRAJECTORY_OUT", ""), "trajectory output path, empty skips stage 2 (env: TRAFFICSIM_TRAJECTORY_OUT)")
	fs.StringVar(&cfg.TrajectoryFormat, "trajectory-format", getenv("TRAFFICSIM_TRAJECTORY_FORMAT", "columnar"), "columnar or geojson (env: TRAFFICSIM_TRAJECTORY_FORMAT)")
	fs.StringVar(&cfg.HeatmapOut, "heatmap-out", getenv("TRAFFICSIM_HEATMAP_OUT", ""), "heatmap output path, empty skips stage 3 (env: TRAFFICSIM_HEATMAP_OUT)")
	fs.IntVar(&cfg.HeatmapInterval, "heatmap-interval", defaultHeatmapInterval, "sampler interval S, seconds (env: TRAFFICSIM_HEATMAP_INTERVAL)")
	fs.StringVar(&cfg.MetricsAddr, "metrics-addr", getenv("TRAFFICSIM_METRICS_ADDR", ":9464"), "prometheus /metrics listen address (env: TRAFFICSIM_METRICS_ADDR)")
	fs.StringVar(&cfg.LogLevel, "log-level", getenv("TRAFFICSIM_LOG_LEVEL", "info"), "debug, info, warn, or error (env: TRAFFICSIM_LOG_LEVEL)")
	fs.StringVar(&cfg.LogFormat, "log-format", getenv("TRAFFICSIM_LOG_FORMAT", "tint"), "tint or json (env: TRAFFICSIM_LOG_FORMAT)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if cfg.NetworkSource == "" {
		return Config{}, fmt.Errorf("%w: --network-source is required", ErrConfigInvalid)
	}
	if cfg.NetworkCache == "" {
		cfg.NetworkCache = cfg.NetworkSource + "_cache.duckdb"
	}
	if cfg.Events == "" {
		return Config{}, fmt.Errorf("%w: --events is required", ErrConfigInvalid)
	}
	if windowsCSV == "" {
		return Config{}, fmt.Errorf("%w: --windows is required", ErrConfigInvalid)
	}
	windows, err := parseWindows(windowsCSV)
	if err != nil {
		return Config{}, err
	}
	cfg.Windows = windows

	if cfg.ChunkSize <= 0 {
		return Config{}, fmt.Errorf("%w: --chunk-size must be positive, got %d", ErrConfigInvalid, cfg.ChunkSize)
	}
	if cfg.TrajectoryFormat != "columnar" && cfg.TrajectoryFormat != "geojson" {
		return Config{}, fmt.Errorf("%w: --trajectory-format must be columnar or geojson, got %q", ErrConfigInvalid, cfg.TrajectoryFormat)
	}

	return cfg, nil
}

// parseWindows parses "start-end,start-end,..." into SnapshotWindows,
// preserving configured order (spec.md §4.3's "first window wins" rule
// depends on it).
func parseWindows(csv string) ([]filter.SnapshotWindow, error) {
	parts := strings.Split(csv, ",")
	windows := make([]filter.SnapshotWindow, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		bounds := strings.SplitN(p, "-", 2)
		if len(bounds) != 2 {
			return nil, fmt.Errorf("%w: malformed window %q, expected start-end", ErrConfigInvalid, p)
		}
		start, err := strconv.Atoi(strings.TrimSpace(bounds[0]))
		if err != nil {
			return nil, fmt.Errorf("%w: malformed window start %q: %s", ErrConfigInvalid, p, err)
		}
		end, err := strconv.Atoi(strings.TrimSpace(bounds[1]))
		if err != nil {
			return nil, fmt.Errorf("%w: malformed window end %q: %s", ErrConfigInvalid, p, err)
		}
		if end < start {
			return nil, fmt.Errorf("%w: window end before start: %q", ErrConfigInvalid, p)
		}
		windows = append(windows, filter.SnapshotWindow{Start: start, End: end})
	}
	if len(windows) == 0 {
		return nil, fmt.Errorf("%w: --windows produced no windows", ErrConfigInvalid)
	}
	return windows, nil
}
