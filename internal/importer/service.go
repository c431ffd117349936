package importer

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/propleads/intake/internal/domain"
	"github.com/propleads/intake/internal/repository"
	"github.com/propleads/intake/pkg/validator"
)

var (
	// ErrUnsupportedFormat is returned when an uploaded file is not supported.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	byteOrderMark = []byte{0xEF, 0xBB, 0xBF}
)

// columnNames maps accepted header labels (lowercased) onto canonical field
// names. Unknown columns are ignored.
var columnNames = map[string]string{
	"fullname":     "fullName",
	"email":        "email",
	"phone":        "phone",
	"city":         "city",
	"propertytype": "propertyType",
	"bhk":          "bhk",
	"purpose":      "purpose",
	"budgetmin":    "budgetMin",
	"budgetmax":    "budgetMax",
	"timeline":     "timeline",
	"source":       "source",
	"notes":        "notes",
	"tags":         "tags",
	"status":       "status",
}

// Service ingests buyer rows from uploaded CSV/XLSX files. The whole file is
// validated before anything is written: one bad row rejects the upload.
type Service struct {
	buyers    repository.BuyerRepository
	validator *validator.BuyerValidator
	maxRows   int
}

// NewService creates a new import service. maxRows caps the data rows
// accepted per upload.
func NewService(buyers repository.BuyerRepository, v *validator.BuyerValidator, maxRows int) *Service {
	return &Service{buyers: buyers, validator: v, maxRows: maxRows}
}

// Request describes the import input.
type Request struct {
	FileName   string
	ActingUser string
	Data       io.Reader
}

// RowError is one rejected row. Row is the 1-based position in the file
// including the header, so the first data row is 2.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// Result summarizes one import attempt. Inserted is zero whenever Errors is
// non-empty.
type Result struct {
	TotalRows int        `json:"totalRows"`
	Inserted  int        `json:"inserted"`
	Errors    []RowError `json:"errors,omitempty"`
}

type tableData struct {
	headers    []string
	rows       [][]string
	rowNumbers []int // 1-based file position of each data row
}

// Import parses the upload, validates every row, and inserts all of them in
// one transaction when the file is clean. Structural problems (bad format,
// too many rows) surface as errors; row-level violations come back in the
// result.
func (s *Service) Import(ctx context.Context, req Request) (Result, error) {
	result := Result{}

	if req.ActingUser == "" {
		return result, errors.New("acting user is required")
	}
	if req.Data == nil {
		return result, errors.New("data reader is required")
	}

	payload, err := io.ReadAll(req.Data)
	if err != nil {
		return result, fmt.Errorf("failed to read upload: %w", err)
	}
	if len(payload) == 0 {
		return result, errors.New("file is empty")
	}

	table, err := parseTable(req.FileName, payload)
	if err != nil {
		return result, err
	}
	if len(table.headers) == 0 {
		return result, errors.New("no header row detected")
	}
	if len(table.rows) > s.maxRows {
		return result, fmt.Errorf("file has %d data rows, maximum is %d", len(table.rows), s.maxRows)
	}

	result.TotalRows = len(table.rows)

	candidates := make([]domain.Buyer, 0, len(table.rows))
	for rowIdx, row := range table.rows {
		rowNumber := table.rowNumbers[rowIdx]

		input, rowErr := rowToInput(table.headers, row)
		if rowErr != "" {
			result.Errors = append(result.Errors, RowError{Row: rowNumber, Message: rowErr})
			continue
		}

		candidate, fieldErrs := s.validator.ValidateNew(input)
		if len(fieldErrs) > 0 {
			messages := make([]string, len(fieldErrs))
			for i, fe := range fieldErrs {
				messages[i] = fmt.Sprintf("%s: %s", fe.Field, fe.Message)
			}
			result.Errors = append(result.Errors, RowError{Row: rowNumber, Message: strings.Join(messages, "; ")})
			continue
		}

		candidates = append(candidates, domain.NewBuyer(req.ActingUser, candidate))
	}

	if len(result.Errors) > 0 {
		return result, nil
	}
	if len(candidates) == 0 {
		return result, nil
	}

	inserted, err := s.buyers.CreateBatch(ctx, candidates)
	if err != nil {
		return result, fmt.Errorf("failed to insert buyers: %w", err)
	}
	result.Inserted = inserted
	return result, nil
}

// rowToInput maps one data row onto a candidate payload. Returns a message
// when a cell cannot be interpreted at all (non-numeric budgets).
func rowToInput(headers []string, row []string) (validator.BuyerInput, string) {
	input := validator.BuyerInput{}

	for colIdx, header := range headers {
		if colIdx >= len(row) || header == "" {
			continue
		}
		raw := strings.TrimSpace(row[colIdx])
		if raw == "" {
			continue
		}

		switch header {
		case "fullName":
			input.FullName = raw
		case "email":
			input.Email = raw
		case "phone":
			input.Phone = raw
		case "city":
			input.City = raw
		case "propertyType":
			input.PropertyType = raw
		case "bhk":
			input.BHK = raw
		case "purpose":
			input.Purpose = raw
		case "budgetMin":
			v, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return input, fmt.Sprintf("budgetMin: %q is not a whole number", raw)
			}
			input.BudgetMin = &v
		case "budgetMax":
			v, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return input, fmt.Sprintf("budgetMax: %q is not a whole number", raw)
			}
			input.BudgetMax = &v
		case "timeline":
			input.Timeline = raw
		case "source":
			input.Source = raw
		case "notes":
			input.Notes = raw
		case "tags":
			input.Tags = splitTags(raw)
		case "status":
			input.Status = raw
		}
	}

	return input, ""
}

func splitTags(raw string) []string {
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

func parseTable(fileName string, payload []byte) (tableData, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	switch ext {
	case ".csv":
		return parseCSV(payload)
	case ".xlsx":
		return parseExcel(payload)
	default:
		return tableData{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

func parseCSV(payload []byte) (tableData, error) {
	reader := bufio.NewReader(bytes.NewReader(payload))
	if prefix, err := reader.Peek(len(byteOrderMark)); err == nil && bytes.Equal(prefix, byteOrderMark) {
		_, _ = reader.Discard(len(byteOrderMark))
	}

	csvReader := csv.NewReader(reader)
	csvReader.TrimLeadingSpace = true
	csvReader.FieldsPerRecord = -1

	// The csv reader silently skips blank lines, so take each record's real
	// line number from FieldPos instead of counting records.
	var records [][]string
	var lines []int
	for {
		record, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return tableData{}, fmt.Errorf("failed to read csv: %w", err)
		}
		line, _ := csvReader.FieldPos(0)
		records = append(records, record)
		lines = append(lines, line)
	}

	return normalizeTable(records, lines)
}

func parseExcel(payload []byte) (tableData, error) {
	f, err := excelize.OpenReader(bytes.NewReader(payload))
	if err != nil {
		return tableData{}, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return tableData{}, errors.New("excel file has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return tableData{}, fmt.Errorf("failed to read rows from xlsx: %w", err)
	}

	return normalizeTable(rows, nil)
}

// normalizeTable detects the header row and collects the data rows together
// with their 1-based file positions. lines carries per-record positions for
// formats whose parser drops blank lines; nil means position = record index.
func normalizeTable(records [][]string, lines []int) (tableData, error) {
	if len(records) == 0 {
		return tableData{}, errors.New("no rows found in file")
	}

	var headerRow []string
	var dataRows [][]string
	var rowNumbers []int

	// Blank rows are skipped but positions keep counting, so reported row
	// numbers match the file even with blank lines between data rows.
	for idx, row := range records {
		if len(cleanRow(row)) == 0 {
			continue
		}
		if headerRow == nil {
			headerRow = row
			continue
		}
		pos := idx + 1
		if lines != nil {
			pos = lines[idx]
		}
		dataRows = append(dataRows, row)
		rowNumbers = append(rowNumbers, pos)
	}

	if headerRow == nil {
		return tableData{}, errors.New("header row could not be detected")
	}

	headers := make([]string, len(headerRow))
	for i, value := range headerRow {
		key := strings.ToLower(strings.TrimSpace(value))
		headers[i] = columnNames[key] // unknown headers stay ""
	}

	return tableData{
		headers:    headers,
		rows:       dataRows,
		rowNumbers: rowNumbers,
	}, nil
}

func cleanRow(row []string) []string {
	var cleaned []string
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			cleaned = append(cleaned, cell)
		}
	}
	return cleaned
}
