package filter

import (
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"strconv"
)

// Reader streams <event> elements from a MATSim-style event log and groups
// them into chunks of approximately chunkSize entries, using
// encoding/xml's token-based Decoder rather than building a DOM, so peak
// memory stays bounded regardless of source size.
//
// A chunk only ever contains complete (EnterLink, LeaveLink) pairs: an
// EnterLink is held back (never appended to a chunk) until its matching
// LeaveLink is seen, at which point both are appended together,
// immediately adjacent. This is what guarantees a worker processing one
// chunk in isolation never needs state from another chunk.
type Reader struct {
	dec       *xml.Decoder
	chunkSize int
	log       *slog.Logger
	metrics   *Metrics

	pending map[pairKey]rawEvent
	done    bool
}

func NewReader(r io.Reader, chunkSize int, log *slog.Logger, metrics *Metrics) *Reader {
	if log == nil {
		log = slog.Default()
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	if chunkSize <= 0 {
		chunkSize = 50000
	}
	return &Reader{
		dec:       xml.NewDecoder(r),
		chunkSize: chunkSize,
		log:       log,
		metrics:   metrics,
		pending:   make(map[pairKey]rawEvent),
	}
}

// NextChunk returns the next chunk of paired events, or io.EOF once the
// source is exhausted and no more pairs remain to emit. Any EnterLink
// still pending at end of stream is counted as an unpaired enter and
// dropped, per spec: not an error in snapshot mode.
func (r *Reader) NextChunk() ([]rawEvent, error) {
	if r.done {
		return nil, io.EOF
	}

	var chunk []rawEvent
	for len(chunk) < r.chunkSize {
		tok, err := r.dec.Token()
		if err == io.EOF {
			r.done = true
			if len(r.pending) > 0 {
				r.log.Debug("filter: unpaired EnterLink events at end of stream", "count", len(r.pending))
				for range r.pending {
					r.metrics.UnpairedEnters.Inc()
				}
				r.pending = nil
			}
			if len(chunk) > 0 {
				return chunk, nil
			}
			return nil, io.EOF
		}
		if err != nil {
			return nil, fmt.Errorf("filter: decode event token: %w", err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "event" {
			continue
		}

		ev, ok := decodeEvent(start)
		r.metrics.RecordsRead.Inc()
		if !ok {
			r.metrics.RecordsMalformed.Inc()
			continue
		}

		switch ev.Type {
		case eventTypeEnterLink:
			r.pending[ev.key()] = ev
		case eventTypeLeaveLink:
			if enter, found := r.pending[ev.key()]; found {
				delete(r.pending, ev.key())
				chunk = append(chunk, enter, ev)
			}
			// A LeaveLink with no pending EnterLink is simply ignored;
			// it cannot be paired and is not itself an error.
		default:
			// Event types other than EnterLink/LeaveLink are out of scope.
		}
	}

	r.metrics.ChunksRead.Inc()
	return chunk, nil
}

func decodeEvent(start xml.StartElement) (rawEvent, bool) {
	var ev rawEvent
	var timeStr string
	haveTime := false

	for _, attr := range start.Attr {
		switch attr.Name.Local {
		case "type":
			ev.Type = attr.Value
		case "person":
			ev.Person = attr.Value
		case "link":
			ev.Link = attr.Value
		case "time":
			timeStr = attr.Value
			haveTime = true
		}
	}

	if ev.Type == "" || ev.Person == "" || ev.Link == "" || !haveTime {
		return rawEvent{}, false
	}

	t, err := strconv.Atoi(timeStr)
	if err != nil {
		return rawEvent{}, false
	}
	ev.Time = t
	return ev, true
}
