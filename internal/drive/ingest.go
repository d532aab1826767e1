package drive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/vendalytics/backend-go/internal/service"
)

// fileSource is the slice of the Drive client the ingest path depends on.
type fileSource interface {
	ListFiles(folderID string) ([]*File, error)
	DownloadFile(fileID string, w io.Writer) error
}

// SpreadsheetIngest downloads a tenant's spreadsheet from Drive and replaces
// that tenant's dataset. CSV files stream straight through; XLSX files are
// converted first-sheet-to-CSV before normalization.
type SpreadsheetIngest struct {
	driveService  fileSource
	ingestService *service.IngestService
}

func NewSpreadsheetIngest(driveService fileSource, ingestService *service.IngestService) *SpreadsheetIngest {
	return &SpreadsheetIngest{
		driveService:  driveService,
		ingestService: ingestService,
	}
}

// IngestFile pulls one Drive file and ingests it for the tenant. The file
// name decides the format.
func (s *SpreadsheetIngest) IngestFile(ctx context.Context, tenant, fileID, fileName string) error {
	if tenant == "" {
		return fmt.Errorf("tenant is required")
	}

	ext := strings.ToLower(filepath.Ext(fileName))
	switch ext {
	case ".csv", "":
		return s.ingestCSVStream(ctx, tenant, fileID)
	case ".xlsx":
		return s.ingestXLSX(ctx, tenant, fileID)
	default:
		return fmt.Errorf("unsupported file extension %s", ext)
	}
}

// IngestFolder processes every supported file in a tenant's Drive folder.
// Files that fail are logged and skipped so one broken export does not block
// the rest.
func (s *SpreadsheetIngest) IngestFolder(ctx context.Context, tenant, folderID string) (int, error) {
	files, err := s.driveService.ListFiles(folderID)
	if err != nil {
		return 0, fmt.Errorf("failed to list folder: %w", err)
	}

	ingested := 0
	for _, f := range files {
		select {
		case <-ctx.Done():
			return ingested, ctx.Err()
		default:
		}

		ext := strings.ToLower(filepath.Ext(f.Name))
		if ext != ".csv" && ext != ".xlsx" {
			continue
		}

		if err := s.IngestFile(ctx, tenant, f.ID, f.Name); err != nil {
			log.Error().Err(err).Str("tenant", tenant).Str("file", f.Name).Msg("failed to ingest drive file")
			continue
		}
		ingested++
	}
	return ingested, nil
}

func (s *SpreadsheetIngest) ingestCSVStream(ctx context.Context, tenant, fileID string) error {
	pr, pw := io.Pipe()
	go func() {
		err := s.driveService.DownloadFile(fileID, pw)
		pw.CloseWithError(err)
	}()

	if _, err := s.ingestService.IngestCSV(ctx, tenant, pr); err != nil {
		return fmt.Errorf("failed to ingest csv: %w", err)
	}
	return nil
}

func (s *SpreadsheetIngest) ingestXLSX(ctx context.Context, tenant, fileID string) error {
	// excelize needs random access, so buffer the workbook in memory.
	var workbook bytes.Buffer
	if err := s.driveService.DownloadFile(fileID, &workbook); err != nil {
		return fmt.Errorf("failed to download xlsx: %w", err)
	}

	var converted bytes.Buffer
	if err := convertXLSXToCSV(&workbook, &converted); err != nil {
		return fmt.Errorf("failed to convert xlsx: %w", err)
	}

	if _, err := s.ingestService.IngestCSV(ctx, tenant, &converted); err != nil {
		return fmt.Errorf("failed to ingest converted xlsx: %w", err)
	}
	return nil
}
