// Package journal exports the offline action queue, synced entries
// included, as JSON lines. The export is an audit trail of every sale the
// terminal took while offline.
package journal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/dmitrijs2005/gophpos/internal/client/client"
	"github.com/dmitrijs2005/gophpos/internal/client/models"
	"github.com/dmitrijs2005/gophpos/internal/logging"
)

const ContentType = "application/x-ndjson"

// Source lists queue entries.
type Source interface {
	List(ctx context.Context) ([]models.PendingAction, error)
}

// TargetProvider hands out presigned upload URLs.
type TargetProvider interface {
	JournalUploadTarget(ctx context.Context) (client.UploadTarget, error)
}

// Uploader puts a payload at a presigned URL.
type Uploader interface {
	PutPresigned(ctx context.Context, url, contentType string, data []byte) error
}

// Result describes an uploaded journal.
type Result struct {
	Key     string
	Entries int
	Bytes   int
}

type Exporter struct {
	src      Source
	targets  TargetProvider
	uploader Uploader
	log      logging.Logger
}

func NewExporter(src Source, targets TargetProvider, up Uploader, log logging.Logger) *Exporter {
	if log == nil {
		log = logging.NewNop()
	}
	return &Exporter{src: src, targets: targets, uploader: up, log: log}
}

// Write encodes every queue entry to w, one JSON object per line, in
// creation order. It returns the number of entries written.
func (e *Exporter) Write(ctx context.Context, w io.Writer) (int, error) {
	entries, err := e.src.List(ctx)
	if err != nil {
		return 0, err
	}
	enc := json.NewEncoder(w)
	for i, a := range entries {
		if err := enc.Encode(a); err != nil {
			return i, fmt.Errorf("failed to encode entry %d: %w", a.ID, err)
		}
	}
	return len(entries), nil
}

// Upload writes the journal and uploads it through a freshly presigned
// URL. Nothing is uploaded when the queue is empty.
func (e *Exporter) Upload(ctx context.Context) (Result, error) {
	var buf bytes.Buffer
	n, err := e.Write(ctx, &buf)
	if err != nil {
		return Result{}, err
	}
	if n == 0 {
		return Result{}, nil
	}

	target, err := e.targets.JournalUploadTarget(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("failed to get upload target: %w", err)
	}
	if err := e.uploader.PutPresigned(ctx, target.URL, ContentType, buf.Bytes()); err != nil {
		return Result{}, fmt.Errorf("failed to upload journal: %w", err)
	}

	e.log.Info(ctx, "journal uploaded", "key", target.Key, "entries", n, "bytes", buf.Len())
	return Result{Key: target.Key, Entries: n, Bytes: buf.Len()}, nil
}
