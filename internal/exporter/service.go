package exporter

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/propleads/intake/internal/domain"
	"github.com/propleads/intake/internal/repository"
)

// Format selects the export serialization.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ErrUnsupportedFormat is returned for formats other than csv/xlsx.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// sheetName is the single worksheet written to XLSX exports.
const sheetName = "Buyers"

// columns fixes the export column order for both formats.
var columns = []string{
	"fullName", "email", "phone", "city", "propertyType", "bhk", "purpose",
	"budgetMin", "budgetMax", "timeline", "source", "notes", "tags", "status",
	"updatedAt",
}

// Service serializes filtered buyer lists. Exports are read-only; nothing in
// here mutates records.
type Service struct {
	buyers repository.BuyerRepository
}

// NewService wires the exporter to the buyer store.
func NewService(buyers repository.BuyerRepository) *Service {
	return &Service{buyers: buyers}
}

// ParseFormat maps the query parameter onto a Format. Empty defaults to CSV.
func ParseFormat(raw string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "csv":
		return FormatCSV, nil
	case "xlsx":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, raw)
	}
}

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv"
}

// FileName returns the suggested download name for the format.
func (f Format) FileName() string {
	return "buyers." + string(f)
}

// Export streams every buyer matching the filter, in list order, to w.
func (s *Service) Export(ctx context.Context, filter domain.BuyerFilter, format Format, w io.Writer) error {
	buyers, err := s.buyers.ListAll(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to load buyers for export: %w", err)
	}

	switch format {
	case FormatCSV:
		return writeCSV(w, buyers)
	case FormatXLSX:
		return writeXLSX(w, buyers)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

func writeCSV(w io.Writer, buyers []domain.Buyer) error {
	csvWriter := csv.NewWriter(w)
	if err := csvWriter.Write(columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, buyer := range buyers {
		if err := csvWriter.Write(rowValues(buyer)); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}

func writeXLSX(w io.Writer, buyers []domain.Buyer) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to drop default sheet: %w", err)
	}

	for col, header := range columns {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("failed to resolve header cell: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return fmt.Errorf("failed to write header cell: %w", err)
		}
	}

	for rowIdx, buyer := range buyers {
		for col, value := range rowValues(buyer) {
			cell, err := excelize.CoordinatesToCellName(col+1, rowIdx+2)
			if err != nil {
				return fmt.Errorf("failed to resolve cell: %w", err)
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return fmt.Errorf("failed to write cell: %w", err)
			}
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// rowValues serializes one buyer in column order. Budgets stay empty when
// unset, tags are comma-joined, timestamps are RFC 3339 UTC.
func rowValues(b domain.Buyer) []string {
	return []string{
		b.FullName,
		b.Email,
		b.Phone,
		string(b.City),
		string(b.PropertyType),
		string(b.BHK),
		string(b.Purpose),
		formatBudget(b.BudgetMin),
		formatBudget(b.BudgetMax),
		string(b.Timeline),
		string(b.Source),
		b.Notes,
		strings.Join(b.Tags, ","),
		string(b.Status),
		b.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func formatBudget(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}
