package trajectory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/NoahBjongHoKim/trafficsim/internal/columnar"
)

// Sink accepts batches of Points and persists them in some output format.
// A Sink is written to by exactly one goroutine (Exporter's single writer
// stage, per spec's "outputs are appended to the sinks") and is not
// required to be safe for concurrent use.
type Sink interface {
	WritePoints(ctx context.Context, points []Point) error
	Close() error
}

// ColumnarSink writes points to a DuckDB table with the schema named in
// spec.md §6: x, y, timestamp, angle, person_id, interval_id.
type ColumnarSink struct {
	db *columnar.DB
}

func NewColumnarSink(db *columnar.DB) (*ColumnarSink, error) {
	ctx := context.Background()
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS trajectory_points (
			x           DOUBLE,
			y           DOUBLE,
			timestamp   VARCHAR,
			angle       INTEGER,
			person_id   VARCHAR,
			interval_id INTEGER
		)`); err != nil {
		return nil, fmt.Errorf("trajectory: create trajectory_points table: %w", err)
	}
	return &ColumnarSink{db: db}, nil
}

func (s *ColumnarSink) WritePoints(ctx context.Context, points []Point) error {
	if len(points) == 0 {
		return nil
	}
	tx, err := s.db.Conn().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("trajectory: begin write tx: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO trajectory_points (x, y, timestamp, angle, person_id, interval_id) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("trajectory: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range points {
		if _, err := stmt.ExecContext(ctx, p.X, p.Y, p.Timestamp, p.Bearing, p.Person, p.IntervalID); err != nil {
			tx.Rollback()
			return fmt.Errorf("trajectory: insert point: %w", err)
		}
	}
	return tx.Commit()
}

func (s *ColumnarSink) Close() error {
	return nil // the underlying *columnar.DB is owned and closed by the caller
}

// GeoJSONSink streams a single GeoJSON FeatureCollection, one Point
// feature per trajectory point, matching the reference animation
// pipeline's feature/property shape. It writes the opening and closing
// brackets itself so that Close still leaves the output structurally
// parseable if the run aborts partway through.
type GeoJSONSink struct {
	w           io.Writer
	wroteHeader bool
	wroteAny    bool
	closed      bool
}

func NewGeoJSONSink(w io.Writer) *GeoJSONSink {
	return &GeoJSONSink{w: w}
}

type geoJSONFeature struct {
	Type       string            `json:"type"`
	Geometry   geoJSONPoint      `json:"geometry"`
	Properties geoJSONProperties `json:"properties"`
}

type geoJSONPoint struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

type geoJSONProperties struct {
	Timestamp  string `json:"timestamp"`
	Angle      int    `json:"angle"`
	PersonID   string `json:"person_id"`
	IntervalID int    `json:"interval_id"`
}

func (s *GeoJSONSink) WritePoints(ctx context.Context, points []Point) error {
	if !s.wroteHeader {
		if _, err := io.WriteString(s.w, `{"type":"FeatureCollection","features":[`); err != nil {
			return fmt.Errorf("trajectory: write geojson header: %w", err)
		}
		s.wroteHeader = true
	}

	enc := json.NewEncoder(nopTrailingNewline{s.w})
	for _, p := range points {
		if err := ctx.Err(); err != nil {
			return err
		}
		if s.wroteAny {
			if _, err := io.WriteString(s.w, ","); err != nil {
				return fmt.Errorf("trajectory: write geojson separator: %w", err)
			}
		}
		feature := geoJSONFeature{
			Type:     "Feature",
			Geometry: geoJSONPoint{Type: "Point", Coordinates: []float64{p.X, p.Y}},
			Properties: geoJSONProperties{
				Timestamp:  p.Timestamp,
				Angle:      p.Bearing,
				PersonID:   p.Person,
				IntervalID: p.IntervalID,
			},
		}
		if err := enc.Encode(feature); err != nil {
			return fmt.Errorf("trajectory: encode geojson feature: %w", err)
		}
		s.wroteAny = true
	}
	return nil
}

func (s *GeoJSONSink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if !s.wroteHeader {
		if _, err := io.WriteString(s.w, `{"type":"FeatureCollection","features":[`); err != nil {
			return err
		}
	}
	_, err := io.WriteString(s.w, "]}")
	return err
}

// nopTrailingNewline strips the trailing newline json.Encoder.Encode
// always appends, so features stay comma-joined on one logical array
// rather than newline-delimited.
type nopTrailingNewline struct {
	w io.Writer
}

func (n nopTrailingNewline) Write(p []byte) (int, error) {
	trimmed := p
	if len(trimmed) > 0 && trimmed[len(trimmed)-1] == '\n' {
		trimmed = trimmed[:len(trimmed)-1]
	}
	written, err := n.w.Write(trimmed)
	if err != nil {
		return written, err
	}
	return len(p), nil
}
