package drive

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Watcher polls a Drive folder and re-ingests files whose modified time
// changed since the last pass. One watcher serves one tenant folder.
type Watcher struct {
	ingest   *SpreadsheetIngest
	tenant   string
	folderID string
	interval time.Duration

	seen map[string]string // file ID -> modified time
}

func NewWatcher(ingest *SpreadsheetIngest, tenant, folderID string, interval time.Duration) *Watcher {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Watcher{
		ingest:   ingest,
		tenant:   tenant,
		folderID: folderID,
		interval: interval,
		seen:     make(map[string]string),
	}
}

// Run polls until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.poll(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.poll(ctx)
		}
	}
}

func (w *Watcher) poll(ctx context.Context) {
	files, err := w.ingest.driveService.ListFiles(w.folderID)
	if err != nil {
		log.Error().Err(err).Str("tenant", w.tenant).Msg("drive poll failed")
		return
	}

	for _, f := range files {
		ext := strings.ToLower(filepath.Ext(f.Name))
		if ext != ".csv" && ext != ".xlsx" {
			continue
		}
		if w.seen[f.ID] == f.ModifiedTime {
			continue
		}

		if err := w.ingest.IngestFile(ctx, w.tenant, f.ID, f.Name); err != nil {
			log.Error().Err(err).Str("tenant", w.tenant).Str("file", f.Name).Msg("failed to ingest changed file")
			continue
		}
		w.seen[f.ID] = f.ModifiedTime
		log.Info().Str("tenant", w.tenant).Str("file", f.Name).Msg("ingested changed drive file")
	}
}
