package exporter

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/propleads/intake/internal/domain"
	"github.com/propleads/intake/internal/repository"
)

func sampleBuyers() []domain.Buyer {
	min := int64(5000000)
	max := int64(7000000)
	return []domain.Buyer{
		{
			ID:           uuid.New(),
			FullName:     "Asha Verma",
			Phone:        "9876543210",
			City:         domain.CityMohali,
			PropertyType: domain.PropertyTypeApartment,
			BHK:          domain.BHKTwo,
			Purpose:      domain.PurposeBuy,
			BudgetMin:    &min,
			BudgetMax:    &max,
			Timeline:     domain.TimelineZeroToThreeMonths,
			Source:       domain.SourceWebsite,
			Tags:         []string{"vip", "urgent"},
			Status:       domain.StatusNew,
			OwnerID:      "user-1",
			UpdatedAt:    time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC),
		},
		{
			ID:           uuid.New(),
			FullName:     "Rohan Gill",
			Email:        "rohan@example.com",
			Phone:        "9876543211",
			City:         domain.CityChandigarh,
			PropertyType: domain.PropertyTypePlot,
			Purpose:      domain.PurposeBuy,
			Timeline:     domain.TimelineExploring,
			Source:       domain.SourceReferral,
			Tags:         []string{},
			Status:       domain.StatusQualified,
			OwnerID:      "user-1",
			UpdatedAt:    time.Date(2025, 3, 13, 17, 0, 0, 0, time.UTC),
		},
	}
}

func TestExportCSVColumnsAndValues(t *testing.T) {
	repo := &stubBuyerRepo{all: sampleBuyers()}
	service := NewService(repo)

	var buf bytes.Buffer
	if err := service.Export(context.Background(), domain.BuyerFilter{}, FormatCSV, &buf); err != nil {
		t.Fatalf("export returned error: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d records", len(records))
	}

	header := strings.Join(records[0], ",")
	want := "fullName,email,phone,city,propertyType,bhk,purpose,budgetMin,budgetMax,timeline,source,notes,tags,status,updatedAt"
	if header != want {
		t.Fatalf("unexpected header order:\n got %s\nwant %s", header, want)
	}

	first := records[1]
	if first[0] != "Asha Verma" || first[7] != "5000000" || first[8] != "7000000" {
		t.Fatalf("unexpected first row: %+v", first)
	}
	if first[12] != "vip,urgent" {
		t.Fatalf("expected comma-joined tags, got %q", first[12])
	}
	if first[14] != "2025-03-14T09:30:00Z" {
		t.Fatalf("expected RFC3339 timestamp, got %q", first[14])
	}

	second := records[2]
	if second[5] != "" || second[7] != "" {
		t.Fatalf("expected empty bhk and budget cells, got %+v", second)
	}
}

func TestExportXLSXRoundTrip(t *testing.T) {
	repo := &stubBuyerRepo{all: sampleBuyers()}
	service := NewService(repo)

	var buf bytes.Buffer
	if err := service.Export(context.Background(), domain.BuyerFilter{}, FormatXLSX, &buf); err != nil {
		t.Fatalf("export returned error: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("failed to open workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 1 || sheets[0] != "Buyers" {
		t.Fatalf("expected single Buyers sheet, got %v", sheets)
	}

	rows, err := f.GetRows("Buyers")
	if err != nil {
		t.Fatalf("failed to read rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "fullName" || rows[0][14] != "updatedAt" {
		t.Fatalf("unexpected header row: %v", rows[0])
	}
	if rows[1][0] != "Asha Verma" {
		t.Fatalf("unexpected first data row: %v", rows[1])
	}
}

func TestExportPassesFilterThrough(t *testing.T) {
	repo := &stubBuyerRepo{all: sampleBuyers()}
	service := NewService(repo)

	filter := domain.BuyerFilter{Status: domain.StatusQualified, Search: "rohan"}
	var buf bytes.Buffer
	if err := service.Export(context.Background(), filter, FormatCSV, &buf); err != nil {
		t.Fatalf("export returned error: %v", err)
	}

	if repo.lastFilter.Status != domain.StatusQualified || repo.lastFilter.Search != "rohan" {
		t.Fatalf("filter not passed through: %+v", repo.lastFilter)
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat(""); err != nil || f != FormatCSV {
		t.Fatalf("expected empty to default to csv, got %v %v", f, err)
	}
	if f, err := ParseFormat("XLSX"); err != nil || f != FormatXLSX {
		t.Fatalf("expected case-insensitive xlsx, got %v %v", f, err)
	}
	if _, err := ParseFormat("pdf"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

type stubBuyerRepo struct {
	all        []domain.Buyer
	lastFilter domain.BuyerFilter
}

func (s *stubBuyerRepo) ListAll(ctx context.Context, filter domain.BuyerFilter) ([]domain.Buyer, error) {
	s.lastFilter = filter
	return s.all, nil
}

func (s *stubBuyerRepo) Create(ctx context.Context, buyer domain.Buyer, entry domain.BuyerHistory) (domain.Buyer, error) {
	return domain.Buyer{}, errors.New("not implemented")
}

func (s *stubBuyerRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Buyer, error) {
	return domain.Buyer{}, errors.New("not implemented")
}

func (s *stubBuyerRepo) List(ctx context.Context, filter domain.BuyerFilter) ([]domain.Buyer, int, error) {
	return nil, 0, errors.New("not implemented")
}

func (s *stubBuyerRepo) UpdateGuarded(ctx context.Context, buyer domain.Buyer, expectedUpdatedAt time.Time, entry *domain.BuyerHistory) (domain.Buyer, error) {
	return domain.Buyer{}, errors.New("not implemented")
}

func (s *stubBuyerRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return errors.New("not implemented")
}

func (s *stubBuyerRepo) CreateBatch(ctx context.Context, buyers []domain.Buyer) (int, error) {
	return 0, errors.New("not implemented")
}

var _ repository.BuyerRepository = (*stubBuyerRepo)(nil)
