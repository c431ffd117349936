package importer

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/propleads/intake/internal/domain"
	"github.com/propleads/intake/internal/repository"
	"github.com/propleads/intake/pkg/validator"
)

const importHeader = "fullName,email,phone,city,propertyType,bhk,purpose,budgetMin,budgetMax,timeline,source,notes,tags,status"

func validRow(name, phone string) string {
	return name + ",," + phone + ",Mohali,Apartment,2,Buy,5000000,7000000,0-3m,Website,,\"vip, urgent\",New"
}

func newTestService(repo *stubBuyerRepo, maxRows int) *Service {
	return NewService(repo, validator.New(), maxRows)
}

func TestImportInsertsAllRows(t *testing.T) {
	repo := &stubBuyerRepo{}
	service := newTestService(repo, 200)

	data := strings.Join([]string{
		importHeader,
		validRow("Asha Verma", "9876543210"),
		validRow("Rohan Gill", "9876543211"),
	}, "\n")

	result, err := service.Import(context.Background(), Request{
		FileName:   "buyers.csv",
		ActingUser: "user-1",
		Data:       strings.NewReader(data),
	})
	if err != nil {
		t.Fatalf("import returned error: %v", err)
	}

	if result.TotalRows != 2 || result.Inserted != 2 || len(result.Errors) != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(repo.created) != 2 {
		t.Fatalf("expected 2 buyers inserted, got %d", len(repo.created))
	}

	first := repo.created[0]
	if first.OwnerID != "user-1" {
		t.Fatalf("expected imported rows owned by acting user, got %q", first.OwnerID)
	}
	if first.Status != domain.StatusNew {
		t.Fatalf("expected status New, got %s", first.Status)
	}
	if len(first.Tags) != 2 || first.Tags[0] != "vip" || first.Tags[1] != "urgent" {
		t.Fatalf("expected split tags, got %+v", first.Tags)
	}
}

func TestImportStripsByteOrderMark(t *testing.T) {
	repo := &stubBuyerRepo{}
	service := newTestService(repo, 200)

	data := "\xEF\xBB\xBF" + importHeader + "\n" + validRow("Asha Verma", "9876543210")

	result, err := service.Import(context.Background(), Request{
		FileName:   "buyers.csv",
		ActingUser: "user-1",
		Data:       strings.NewReader(data),
	})
	if err != nil {
		t.Fatalf("import returned error: %v", err)
	}
	if result.Inserted != 1 {
		t.Fatalf("expected 1 row inserted, got %+v", result)
	}
}

func TestImportRejectsWholeFileOnOneBadRow(t *testing.T) {
	repo := &stubBuyerRepo{}
	service := newTestService(repo, 200)

	rows := []string{importHeader}
	for i := 0; i < 5; i++ {
		rows = append(rows, validRow("Lead Number", "987654321"+string(rune('0'+i))))
	}
	// Row 7: phone too short.
	rows = append(rows, validRow("Bad Phone", "12345"))

	result, err := service.Import(context.Background(), Request{
		FileName:   "buyers.csv",
		ActingUser: "user-1",
		Data:       strings.NewReader(strings.Join(rows, "\n")),
	})
	if err != nil {
		t.Fatalf("import returned error: %v", err)
	}

	if result.Inserted != 0 {
		t.Fatalf("expected nothing inserted, got %d", result.Inserted)
	}
	if len(repo.created) != 0 {
		t.Fatalf("expected no rows persisted, got %d", len(repo.created))
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected 1 row error, got %+v", result.Errors)
	}
	if result.Errors[0].Row != 7 {
		t.Fatalf("expected error on row 7, got %d", result.Errors[0].Row)
	}
	if !strings.Contains(result.Errors[0].Message, "phone") {
		t.Fatalf("expected phone violation, got %q", result.Errors[0].Message)
	}
}

func TestImportRowNumbersCountBlankLines(t *testing.T) {
	repo := &stubBuyerRepo{}
	service := newTestService(repo, 200)

	// Line 3 is empty and line 4 holds only separators; the bad row sits on
	// line 5 of the file and must be reported as row 5.
	data := strings.Join([]string{
		importHeader,
		validRow("Asha Verma", "9876543210"),
		"",
		",,,,,,,,,,,,,",
		validRow("Bad Phone", "12345"),
	}, "\n")

	result, err := service.Import(context.Background(), Request{
		FileName:   "buyers.csv",
		ActingUser: "user-1",
		Data:       strings.NewReader(data),
	})
	if err != nil {
		t.Fatalf("import returned error: %v", err)
	}

	if result.TotalRows != 2 {
		t.Fatalf("expected 2 data rows, got %d", result.TotalRows)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected 1 row error, got %+v", result.Errors)
	}
	if result.Errors[0].Row != 5 {
		t.Fatalf("expected error on row 5, got %d", result.Errors[0].Row)
	}
	if len(repo.created) != 0 {
		t.Fatalf("expected no rows persisted, got %d", len(repo.created))
	}
}

func TestImportEnforcesRowCap(t *testing.T) {
	repo := &stubBuyerRepo{}
	service := newTestService(repo, 2)

	rows := []string{importHeader}
	for i := 0; i < 3; i++ {
		rows = append(rows, validRow("Lead Number", "987654321"+string(rune('0'+i))))
	}

	_, err := service.Import(context.Background(), Request{
		FileName:   "buyers.csv",
		ActingUser: "user-1",
		Data:       strings.NewReader(strings.Join(rows, "\n")),
	})
	if err == nil || !strings.Contains(err.Error(), "maximum") {
		t.Fatalf("expected row cap error, got %v", err)
	}
}

func TestImportRejectsUnsupportedFormat(t *testing.T) {
	repo := &stubBuyerRepo{}
	service := newTestService(repo, 200)

	_, err := service.Import(context.Background(), Request{
		FileName:   "buyers.pdf",
		ActingUser: "user-1",
		Data:       strings.NewReader("whatever"),
	})
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestImportNonNumericBudgetReported(t *testing.T) {
	repo := &stubBuyerRepo{}
	service := newTestService(repo, 200)

	data := importHeader + "\n" +
		"Asha Verma,,9876543210,Mohali,Apartment,2,Buy,lots,7000000,0-3m,Website,,,New"

	result, err := service.Import(context.Background(), Request{
		FileName:   "buyers.csv",
		ActingUser: "user-1",
		Data:       strings.NewReader(data),
	})
	if err != nil {
		t.Fatalf("import returned error: %v", err)
	}
	if len(result.Errors) != 1 || result.Errors[0].Row != 2 {
		t.Fatalf("expected error on row 2, got %+v", result.Errors)
	}
	if !strings.Contains(result.Errors[0].Message, "budgetMin") {
		t.Fatalf("expected budgetMin violation, got %q", result.Errors[0].Message)
	}
}

type stubBuyerRepo struct {
	created []domain.Buyer
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

func (s *stubBuyerRepo) ListAll(ctx context.Context, filter domain.BuyerFilter) ([]domain.Buyer, error) {
	return nil, errors.New("not implemented")
}

func (s *stubBuyerRepo) UpdateGuarded(ctx context.Context, buyer domain.Buyer, expectedUpdatedAt time.Time, entry *domain.BuyerHistory) (domain.Buyer, error) {
	return domain.Buyer{}, errors.New("not implemented")
}

func (s *stubBuyerRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return errors.New("not implemented")
}

func (s *stubBuyerRepo) CreateBatch(ctx context.Context, buyers []domain.Buyer) (int, error) {
	s.created = append(s.created, buyers...)
	return len(buyers), nil
}

var _ repository.BuyerRepository = (*stubBuyerRepo)(nil)
