package drive

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/vendalytics/backend-go/internal/cache"
	"github.com/vendalytics/backend-go/internal/domain"
	"github.com/vendalytics/backend-go/internal/ingest"
	"github.com/vendalytics/backend-go/internal/service"
)

const watcherCSV = "data,cliente,valor\n10/06/2024,silva,100\n"

// stubSource serves a fixed listing and the same CSV body for every file.
type stubSource struct {
	files []*File
}

func (s *stubSource) ListFiles(folderID string) ([]*File, error) {
	return s.files, nil
}

func (s *stubSource) DownloadFile(fileID string, w io.Writer) error {
	_, err := io.WriteString(w, watcherCSV)
	return err
}

type stubSaleRepo struct {
	replaced int
}

func (r *stubSaleRepo) ListSales(ctx context.Context, f domain.ReportFilter) ([]domain.SaleRecord, error) {
	return nil, nil
}

func (r *stubSaleRepo) ListAllSales(ctx context.Context, f domain.ReportFilter) ([]domain.SaleRecord, error) {
	return nil, nil
}

func (r *stubSaleRepo) ReplaceSales(ctx context.Context, tenant string, rows []domain.SaleRecord) error {
	r.replaced++
	return nil
}

func (r *stubSaleRepo) DatasetVersion(ctx context.Context, tenant string) (string, error) {
	return "v1", nil
}

func newTestIngest(src *stubSource, repo *stubSaleRepo) *SpreadsheetIngest {
	svc := service.NewIngestService(ingest.NewNormalizer(ingest.DefaultColumnMap()), repo, cache.NewNoopSummaryCache())
	return NewSpreadsheetIngest(src, svc)
}

func TestWatcherSkipsUnchangedFiles(t *testing.T) {
	src := &stubSource{files: []*File{
		{ID: "f1", Name: "vendas.csv", ModifiedTime: "2024-06-10T10:00:00Z"},
	}}
	repo := &stubSaleRepo{}
	w := NewWatcher(newTestIngest(src, repo), "acme", "folder-1", time.Minute)

	w.poll(t.Context())
	w.poll(t.Context())

	if repo.replaced != 1 {
		t.Fatalf("unchanged file ingested %d times, want 1", repo.replaced)
	}
}

func TestWatcherReingestsOnModifiedTimeChange(t *testing.T) {
	src := &stubSource{files: []*File{
		{ID: "f1", Name: "vendas.csv", ModifiedTime: "2024-06-10T10:00:00Z"},
	}}
	repo := &stubSaleRepo{}
	w := NewWatcher(newTestIngest(src, repo), "acme", "folder-1", time.Minute)

	w.poll(t.Context())
	src.files[0].ModifiedTime = "2024-06-11T08:00:00Z"
	w.poll(t.Context())

	if repo.replaced != 2 {
		t.Fatalf("changed file ingested %d times, want 2", repo.replaced)
	}
}

func TestWatcherIgnoresUnsupportedExtensions(t *testing.T) {
	src := &stubSource{files: []*File{
		{ID: "f1", Name: "notas.pdf", ModifiedTime: "2024-06-10T10:00:00Z"},
	}}
	repo := &stubSaleRepo{}
	w := NewWatcher(newTestIngest(src, repo), "acme", "folder-1", time.Minute)

	w.poll(t.Context())

	if repo.replaced != 0 {
		t.Fatalf("unsupported file ingested %d times, want 0", repo.replaced)
	}
}

func TestIngestFolderCountsSupportedFiles(t *testing.T) {
	src := &stubSource{files: []*File{
		{ID: "f1", Name: "vendas.csv"},
		{ID: "f2", Name: "notas.pdf"},
	}}
	repo := &stubSaleRepo{}
	si := newTestIngest(src, repo)

	n, err := si.IngestFolder(t.Context(), "acme", "folder-1")
	if err != nil {
		t.Fatalf("IngestFolder: %v", err)
	}
	if n != 1 || repo.replaced != 1 {
		t.Fatalf("ingested %d files (%d replaces), want 1 and 1", n, repo.replaced)
	}
}
