package services

import (
	"encoding/json"
	"strings"
)

type ExportStore interface {
	GetJob(id string) (*Job, error)
}

type ExportParams struct {
	JobID  string
	Format string
}

type ExportResult struct {
	Filename    string
	ContentType string
	Data        []byte
}

type ExportService struct {
	store ExportStore
}

func NewExportService(store ExportStore) *ExportService {
	return &ExportService{store: store}
}

// Export renders a finished analysis. Format is persons, items, full (the
// default) or json.
func (s *ExportService) Export(tenantID string, params ExportParams) (*ExportResult, error) {
	if params.JobID == "" {
		return nil, NewInvalidError("analysis id required")
	}
	format := strings.ToLower(strings.TrimSpace(params.Format))
	if format == "" {
		format = "full"
	}
	j, err := s.store.GetJob(params.JobID)
	if err != nil {
		return nil, err
	}
	if j == nil {
		return nil, NewNotFoundError("analysis not found")
	}
	if j.TenantID != tenantID {
		return nil, NewForbiddenError("forbidden")
	}
	sum, err := SummarizeJob(j)
	if err != nil {
		return nil, err
	}
	if sum.Empty {
		return nil, NewInvalidError("nothing to export: empty result")
	}
	return RenderExport(sum, format, j.ID)
}

// RenderExport encodes a summary; base names the file.
func RenderExport(sum *AnalysisSummary, format, base string) (*ExportResult, error) {
	const csvType = "text/csv; charset=utf-8"
	switch format {
	case "persons":
		b, err := ExportMeasuresCSV(sum.Persons)
		if err != nil {
			return nil, err
		}
		return &ExportResult{Filename: base + "_persons.csv", ContentType: csvType, Data: b}, nil
	case "items":
		b, err := ExportMeasuresCSV(sum.Items)
		if err != nil {
			return nil, err
		}
		return &ExportResult{Filename: base + "_items.csv", ContentType: csvType, Data: b}, nil
	case "full":
		b, err := ExportFullCSV(sum)
		if err != nil {
			return nil, err
		}
		return &ExportResult{Filename: base + "_full.csv", ContentType: csvType, Data: b}, nil
	case "json":
		b, err := json.MarshalIndent(sum, "", "  ")
		if err != nil {
			return nil, err
		}
		return &ExportResult{Filename: base + ".json", ContentType: "application/json", Data: b}, nil
	default:
		return nil, NewInvalidError("unsupported format")
	}
}
