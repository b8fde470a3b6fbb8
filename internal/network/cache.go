package network

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"

	"github.com/NoahBjongHoKim/trafficsim/internal/columnar"
)

// ColumnNames maps the canonical link fields to the attribute names carried
// by the authoritative GIS source. The defaults match the column names the
// reference network extracts use; override them with WithColumnNames when
// pointing NetworkCache at a source with a different schema.
type ColumnNames struct {
	LinkID    string
	FromNode  string
	ToNode    string
	Length    string
	FreeSpeed string
	Geometry  string
}

func defaultColumnNames() ColumnNames {
	return ColumnNames{
		LinkID:    "link_id",
		FromNode:  "from_node",
		ToNode:    "to_node",
		Length:    "length",
		FreeSpeed: "freespeed",
		Geometry:  "geom",
	}
}

// CacheOption configures a NetworkCache.
type CacheOption func(*cacheConfig)

type cacheConfig struct {
	log     *slog.Logger
	metrics *Metrics
	columns ColumnNames
	srid    string // non-empty reprojects the source geometry via ST_Transform before reading
}

func WithCacheLogger(log *slog.Logger) CacheOption {
	return func(c *cacheConfig) { c.log = log }
}

func WithCacheMetrics(m *Metrics) CacheOption {
	return func(c *cacheConfig) { c.metrics = m }
}

func WithColumnNames(columns ColumnNames) CacheOption {
	return func(c *cacheConfig) { c.columns = columns }
}

// WithSourceSRID declares the authoritative source's coordinate reference
// system (e.g. "EPSG:2039"), so loadFromSource reprojects to WGS84 before
// the geometry reaches the rest of the pipeline. Leave unset when the
// source is already in WGS84.
func WithSourceSRID(srid string) CacheOption {
	return func(c *cacheConfig) { c.srid = srid }
}

// NetworkCache loads the road network from an authoritative GIS source
// (anything DuckDB's spatial extension can open via ST_Read: shapefile,
// GeoPackage, GeoJSON) and memoizes the hydrated rows in a columnar side
// file keyed by the source's mtime, so repeated pipeline runs against an
// unchanged network skip the (comparatively expensive) GIS read entirely.
type NetworkCache struct {
	sourcePath string
	cachePath  string
	cfg        cacheConfig
}

// NewNetworkCache builds a cache for the network rooted at sourcePath, with
// its hydrated side file at cachePath.
func NewNetworkCache(sourcePath, cachePath string, opts ...CacheOption) *NetworkCache {
	cfg := cacheConfig{columns: defaultColumnNames()}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.log == nil {
		cfg.log = slog.Default()
	}
	if cfg.metrics == nil {
		cfg.metrics = NewMetrics(nil)
	}
	return &NetworkCache{sourcePath: sourcePath, cachePath: cachePath, cfg: cfg}
}

// Load returns the raw (not yet index-hydrated) links for the network,
// preferring a valid cache file over a re-read of the authoritative source.
// A cache file is valid when it exists and is no older than the source; a
// valid cache file that cannot be decoded yields ErrCacheCorrupt.
func (c *NetworkCache) Load(ctx context.Context) ([]Link, error) {
	srcInfo, srcErr := os.Stat(c.sourcePath)
	sourceExists := srcErr == nil

	if cacheInfo, cacheErr := os.Stat(c.cachePath); cacheErr == nil {
		if !sourceExists || !cacheInfo.ModTime().Before(srcInfo.ModTime()) {
			links, err := c.loadFromCache(ctx)
			if err != nil {
				return nil, err
			}
			c.cfg.metrics.CacheHits.Inc()
			return links, nil
		}
	}

	if !sourceExists {
		return nil, fmt.Errorf("%w: %s", ErrSourceMissing, c.sourcePath)
	}

	c.cfg.metrics.CacheMisses.Inc()
	start := time.Now()
	links, err := c.loadFromSource(ctx)
	c.cfg.metrics.SourceLoadDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	writeStart := time.Now()
	if err := c.writeCache(ctx, links); err != nil {
		c.cfg.log.Warn("network: failed to write network cache", "cache_path", c.cachePath, "error", err)
	}
	c.cfg.metrics.CacheWriteDuration.Observe(time.Since(writeStart).Seconds())

	return links, nil
}

func (c *NetworkCache) loadFromSource(ctx context.Context) ([]Link, error) {
	db, err := columnar.OpenMemory(c.cfg.log)
	if err != nil {
		return nil, fmt.Errorf("network: open duckdb for source read: %w", err)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, "INSTALL spatial; LOAD spatial;"); err != nil {
		return nil, fmt.Errorf("network: load spatial extension: %w", err)
	}

	geomExpr := col(c.cfg.columns.Geometry)
	if c.cfg.srid != "" {
		geomExpr = fmt.Sprintf("ST_Transform(%s, '%s', 'EPSG:4326')", geomExpr, c.cfg.srid)
	}

	query := fmt.Sprintf(
		"SELECT %s, %s, %s, %s, %s, ST_AsWKB(%s) AS geom_wkb FROM ST_Read(?)",
		col(c.cfg.columns.LinkID), col(c.cfg.columns.FromNode), col(c.cfg.columns.ToNode),
		col(c.cfg.columns.Length), col(c.cfg.columns.FreeSpeed), geomExpr,
	)

	rows, err := db.QueryContext(ctx, query, c.sourcePath)
	if err != nil {
		return nil, fmt.Errorf("network: read source %s: %w", c.sourcePath, err)
	}
	defer rows.Close()

	return scanLinkRows(rows, c.cfg.log)
}

func (c *NetworkCache) loadFromCache(ctx context.Context) ([]Link, error) {
	db, err := columnar.Open(c.cfg.log, c.cachePath)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrCacheCorrupt, c.cachePath, err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, "SELECT link_id, from_node, to_node, length, freespeed, geom_wkb FROM links")
	if err != nil {
		return nil, fmt.Errorf("%w: query %s: %v", ErrCacheCorrupt, c.cachePath, err)
	}
	defer rows.Close()

	links, err := scanLinkRows(rows, c.cfg.log)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCacheCorrupt, err)
	}
	return links, nil
}

func (c *NetworkCache) writeCache(ctx context.Context, links []Link) error {
	tmpPath := c.cachePath + ".tmp"
	_ = os.Remove(tmpPath)

	db, err := columnar.Open(c.cfg.log, tmpPath)
	if err != nil {
		return fmt.Errorf("network: open cache staging file: %w", err)
	}

	createAndPopulate := func() error {
		if _, err := db.ExecContext(ctx, `
			CREATE TABLE links (
				link_id VARCHAR,
				from_node VARCHAR,
				to_node VARCHAR,
				length DOUBLE,
				freespeed DOUBLE,
				geom_wkb BLOB
			)`); err != nil {
			return fmt.Errorf("create links table: %w", err)
		}

		tx, err := db.Conn().BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		stmt, err := tx.PrepareContext(ctx,
			"INSERT INTO links (link_id, from_node, to_node, length, freespeed, geom_wkb) VALUES (?, ?, ?, ?, ?, ?)")
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("prepare insert: %w", err)
		}
		for _, l := range links {
			wkbBytes, err := wkb.Marshal(l.Geometry.AsOrbGeometry())
			if err != nil {
				tx.Rollback()
				stmt.Close()
				return fmt.Errorf("marshal geometry for link %s: %w", l.ID, err)
			}
			if _, err := stmt.ExecContext(ctx, l.ID, l.FromNode, l.ToNode, l.Length, l.FreeSpeed, wkbBytes); err != nil {
				tx.Rollback()
				stmt.Close()
				return fmt.Errorf("insert link %s: %w", l.ID, err)
			}
		}
		stmt.Close()
		return tx.Commit()
	}

	err = createAndPopulate()
	closeErr := db.Close()
	if err != nil {
		os.Remove(tmpPath)
		return err
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("network: close cache staging file: %w", closeErr)
	}

	return os.Rename(tmpPath, c.cachePath)
}

func scanLinkRows(rows *sql.Rows, log *slog.Logger) ([]Link, error) {
	var links []Link
	for rows.Next() {
		var (
			id, from, to      string
			length, freespeed float64
			geomBytes         []byte
		)
		if err := rows.Scan(&id, &from, &to, &length, &freespeed, &geomBytes); err != nil {
			return nil, fmt.Errorf("scan link row: %w", err)
		}

		geom, err := wkb.Unmarshal(geomBytes)
		if err != nil {
			log.Warn("network: link geometry failed to decode, skipping", "link_id", id, "error", err)
			continue
		}

		var geometry LinkGeometry
		switch g := geom.(type) {
		case orb.LineString:
			geometry = NewSingleGeometry(g)
		case orb.MultiLineString:
			geometry = NewMultiGeometry(g)
		default:
			log.Warn("network: link geometry has unsupported type, skipping",
				"link_id", id, "error", ErrGeometryUnsupported)
			continue
		}

		links = append(links, Link{
			ID:        id,
			FromNode:  from,
			ToNode:    to,
			Length:    length,
			FreeSpeed: freespeed,
			Geometry:  geometry,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate link rows: %w", err)
	}
	return links, nil
}

// col quotes a column name as a DuckDB identifier, guarding against the
// configured name colliding with a reserved word.
func col(name string) string {
	return `"` + name + `"`
}
