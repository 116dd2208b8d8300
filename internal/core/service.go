package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/sidoarjo/callcenter/internal/config"
	"github.com/sidoarjo/callcenter/internal/logging"
)

// Service provides the core business logic for imports, reports and search.
type Service struct {
	pool   Pool
	writer *Writer

	importTimeout time.Duration
	previewRows   int
	searchLimit   int

	statusPolicy StatusPolicy
}

// NewService creates a new Service instance.
func NewService(pool Pool, cfg *config.Config) (*Service, error) {
	if cfg == nil {
		return nil, errors.New("nil config")
	}
	return &Service{
		pool:          pool,
		writer:        NewWriter(pool),
		importTimeout: cfg.Import.Timeout,
		previewRows:   cfg.Import.PreviewRows,
		searchLimit:   cfg.Search.MaxResults,
		statusPolicy:  WindowedStatusPolicy,
	}, nil
}

// SetStatusPolicy replaces the policy search uses for displayed status.
// A nil policy shows the stored status.
func (s *Service) SetStatusPolicy(p StatusPolicy) {
	if p == nil {
		p = StoredStatusPolicy
	}
	s.statusPolicy = p
}

// Schemas returns every importable schema.
func (s *Service) Schemas() []Schema {
	return All()
}

// Import reads a CSV upload, normalizes it for the schema and writes it.
func (s *Service) Import(ctx context.Context, schemaKey, fileName string, r io.Reader) (*ImportResult, error) {
	schema, err := Lookup(schemaKey)
	if err != nil {
		return nil, err
	}

	if s.importTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.importTimeout)
		defer cancel()
	}

	result := &ImportResult{
		ImportID: uuid.New().String(),
		Schema:   schema.Key,
		FileName: fileName,
	}
	logger := logging.WithFields(ctx,
		"import_id", result.ImportID,
		"table", schema.Key,
		"file", fileName,
		"user", UserFromContext(ctx),
		"ip", IPAddressFromContext(ctx),
	)
	start := time.Now()

	ds, err := ReadDataset(r)
	if err != nil {
		logger.Warn("import rejected", "error", err)
		return nil, err
	}

	rows, err := Normalize(schema, ds)
	if err != nil {
		logger.Warn("import rejected", "error", err)
		return nil, err
	}
	result.Rows = len(rows)

	written, err := s.writer.Write(ctx, schema, rows)
	if err != nil {
		logger.Error("import failed", "rows", len(rows), "error", err)
		return nil, err
	}

	result.Inserted = written.Inserted
	result.Duplicates = written.Duplicates
	result.Duration = time.Since(start)

	logger.Info("import completed",
		"rows", result.Rows,
		"inserted", result.Inserted,
		"duplicates", result.Duplicates,
		"duration_ms", result.Duration.Milliseconds(),
	)

	return result, nil
}

// Preview normalizes an upload and returns its first rows without writing.
func (s *Service) Preview(ctx context.Context, schemaKey string, r io.Reader) (*PreviewResult, error) {
	schema, err := Lookup(schemaKey)
	if err != nil {
		return nil, err
	}

	ds, err := ReadDataset(r)
	if err != nil {
		return nil, err
	}
	rows, err := Normalize(schema, ds)
	if err != nil {
		return nil, err
	}

	limit := s.previewRows
	if limit <= 0 || limit > len(rows) {
		limit = len(rows)
	}

	preview := &PreviewResult{
		Schema:    schema.Key,
		Columns:   schema.ColumnNames(),
		Rows:      make([][]string, limit),
		TotalRows: len(rows),
	}
	for i := 0; i < limit; i++ {
		preview.Rows[i] = formatRow(rows[i])
	}

	return preview, nil
}

// formatRow renders normalized values for display.
func formatRow(row Row) []string {
	out := make([]string, len(row))
	for i, v := range row {
		out[i] = formatCell(v)
	}
	return out
}

// formatCell renders a database or normalized value as text.
// Absent values render empty so an export round-trips to absent.
func formatCell(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case time.Time:
		if val.IsZero() {
			return ""
		}
		return formatTimestamp(val)
	case []byte:
		return string(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
