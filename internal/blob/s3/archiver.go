package s3blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spotdeck/spotdeck/internal/domain"
)

// fetchLogArchiveLimit caps how many recent log rows one archive run exports.
const fetchLogArchiveLimit = 1000

// Archiver exports daily snapshots of the ticker table and the fetch log to
// object storage as JSONL, one file per day. Snapshots are read-only; the
// primary store is never modified.
type Archiver struct {
	writer  domain.BlobWriter
	tickers domain.TickerStore
	logs    domain.FetchLogStore
}

// NewArchiver creates an Archiver reading from the given stores.
func NewArchiver(writer domain.BlobWriter, tickers domain.TickerStore, logs domain.FetchLogStore) *Archiver {
	return &Archiver{
		writer:  writer,
		tickers: tickers,
		logs:    logs,
	}
}

// ArchiveTickers uploads every stored snapshot to
// archive/tickers/YYYY-MM-DD.jsonl and returns the record count.
func (a *Archiver) ArchiveTickers(ctx context.Context, day time.Time) (int, error) {
	snapshots, err := a.tickers.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("s3blob: archive tickers query: %w", err)
	}
	if len(snapshots) == 0 {
		return 0, nil
	}

	buf, err := marshalJSONL(snapshots)
	if err != nil {
		return 0, fmt.Errorf("s3blob: archive tickers marshal: %w", err)
	}

	path := archivePath("tickers", day)
	if err := a.writer.Put(ctx, path, bytes.NewReader(buf), "application/x-ndjson"); err != nil {
		return 0, fmt.Errorf("s3blob: archive tickers upload: %w", err)
	}
	return len(snapshots), nil
}

// ArchiveFetchLogs uploads the most recent poll outcomes to
// archive/fetch_logs/YYYY-MM-DD.jsonl and returns the record count.
func (a *Archiver) ArchiveFetchLogs(ctx context.Context, day time.Time) (int, error) {
	logs, err := a.logs.ListRecent(ctx, fetchLogArchiveLimit)
	if err != nil {
		return 0, fmt.Errorf("s3blob: archive fetch logs query: %w", err)
	}
	if len(logs) == 0 {
		return 0, nil
	}

	buf, err := marshalJSONL(logs)
	if err != nil {
		return 0, fmt.Errorf("s3blob: archive fetch logs marshal: %w", err)
	}

	path := archivePath("fetch_logs", day)
	if err := a.writer.Put(ctx, path, bytes.NewReader(buf), "application/x-ndjson"); err != nil {
		return 0, fmt.Errorf("s3blob: archive fetch logs upload: %w", err)
	}
	return len(logs), nil
}

// archivePath builds the object key for an archive file, partitioned by day:
//
//	archive/tickers/2025-01-15.jsonl
//	archive/fetch_logs/2025-01-15.jsonl
func archivePath(kind string, day time.Time) string {
	return fmt.Sprintf("archive/%s/%s.jsonl", kind, day.Format("2006-01-02"))
}

// marshalJSONL serialises a slice of values as newline-delimited JSON.
func marshalJSONL[T any](records []T) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	for i, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return nil, fmt.Errorf("jsonl encode record %d: %w", i, err)
		}
	}
	return buf.Bytes(), nil
}
