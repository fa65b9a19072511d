package service

import (
	"bytes"
	"context"
	"fmt"

	"via-fatto-painel/internal/domain"
	"via-fatto-painel/internal/repository"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const domainSheet = "Domains"

// DomainExportHeader is the header row of the domain export.
var DomainExportHeader = []string{
	"Hostname",
	"Type",
	"Primary",
	"Verified",
	"Verified At",
}

var domainColumnWidths = []float64{40, 12, 10, 10, 22}

// DomainExportService renders a tenant's domains as an XLSX workbook.
type DomainExportService struct {
	domains repository.DomainsRepository
	logger  *zap.Logger
}

func NewDomainExportService(domains repository.DomainsRepository, logger *zap.Logger) *DomainExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DomainExportService{domains: domains, logger: logger}
}

// ExportDomains lists tenantID's domains and returns the workbook bytes.
func (s *DomainExportService) ExportDomains(ctx context.Context, tenantID string) ([]byte, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("tenant id is required")
	}
	items, err := s.domains.ListDomains(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list domains: %w", err)
	}
	s.logger.Debug("exporting domains", zap.String("tenant_id", tenantID), zap.Int("count", len(items)))
	return GenerateDomainExport(items)
}

// GenerateDomainExport builds the workbook; an empty list yields only the header.
func GenerateDomainExport(items []*domain.Domain) ([]byte, error) {
	f := excelize.NewFile()
	// WriteTo needs the file open, so Close happens at the end

	index, err := f.NewSheet(domainSheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for col, header := range DomainExportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(domainSheet, cell, header); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(domainSheet, cell, cell, headerStyle); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set header style: %w", err)
		}
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to convert column number: %w", err)
		}
		if err := f.SetColWidth(domainSheet, name, name, domainColumnWidths[col]); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for i, d := range items {
		if d == nil {
			continue
		}
		row := i + 2
		values := []any{
			d.Hostname,
			string(d.Type),
			yesNo(d.IsPrimary),
			yesNo(d.Verified),
			"",
		}
		if d.VerifiedAt != nil {
			values[4] = d.VerifiedAt.UTC().Format("2006-01-02 15:04:05")
		}
		for col, v := range values {
			if v == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to convert coordinates: %w", err)
			}
			if err := f.SetCellValue(domainSheet, cell, v); err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to set cell value at row %d, col %d: %w", row, col+1, err)
			}
		}
	}

	if err := f.SetPanes(domainSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to freeze panes: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write to buffer: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close file: %w", err)
	}
	return buf.Bytes(), nil
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
