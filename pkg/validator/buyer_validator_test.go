package validator

import (
	"strings"
	"testing"

	"github.com/propleads/intake/internal/domain"
)

func validInput() BuyerInput {
	return BuyerInput{
		FullName:     "Asha Verma",
		Phone:        "9876543210",
		City:         "Mohali",
		PropertyType: "Apartment",
		BHK:          "2",
		Purpose:      "Buy",
		Timeline:     "0-3m",
		Source:       "Website",
	}
}

func TestValidateNewNormalizesValidInput(t *testing.T) {
	v := New()

	in := validInput()
	in.FullName = "  Asha Verma  "
	in.Timeline = "ZERO_TO_3M"
	in.Source = "WalkIn"

	buyer, errs := v.ValidateNew(in)
	if len(errs) != 0 {
		t.Fatalf("expected no errors, got %+v", errs)
	}
	if buyer.FullName != "Asha Verma" {
		t.Fatalf("expected trimmed name, got %q", buyer.FullName)
	}
	if buyer.Timeline != domain.TimelineZeroToThreeMonths {
		t.Fatalf("expected normalized timeline, got %s", buyer.Timeline)
	}
	if buyer.Source != domain.SourceWalkIn {
		t.Fatalf("expected normalized source, got %s", buyer.Source)
	}
	if buyer.BHK != domain.BHKTwo {
		t.Fatalf("expected bhk 2, got %s", buyer.BHK)
	}
}

func TestValidateNewCollectsEveryViolation(t *testing.T) {
	v := New()

	min := int64(9000000)
	max := int64(5000000)
	in := BuyerInput{
		FullName:     "A",
		Email:        "not-an-email",
		Phone:        "12ab",
		City:         "Atlantis",
		PropertyType: "Castle",
		Purpose:      "Borrow",
		BudgetMin:    &min,
		BudgetMax:    &max,
		Timeline:     "0-3m",
		Source:       "Website",
		Notes:        strings.Repeat("x", 1001),
	}

	_, errs := v.ValidateNew(in)
	fields := map[string]bool{}
	for _, e := range errs {
		fields[e.Field] = true
	}
	for _, want := range []string{"fullName", "email", "phone", "city", "propertyType", "purpose", "budgetMax", "notes"} {
		if !fields[want] {
			t.Fatalf("expected violation on %s, got %+v", want, errs)
		}
	}
}

func TestValidateNewBHKRule(t *testing.T) {
	v := New()

	// Residential without bhk fails.
	in := validInput()
	in.PropertyType = "Villa"
	in.BHK = ""
	if _, errs := v.ValidateNew(in); len(errs) != 1 || errs[0].Field != "bhk" {
		t.Fatalf("expected bhk violation, got %+v", errs)
	}

	// Non-residential normalizes bhk away.
	in = validInput()
	in.PropertyType = "Plot"
	in.BHK = "3"
	buyer, errs := v.ValidateNew(in)
	if len(errs) != 0 {
		t.Fatalf("expected no errors, got %+v", errs)
	}
	if buyer.BHK != "" {
		t.Fatalf("expected bhk normalized away for Plot, got %q", buyer.BHK)
	}
}

func TestValidateNewBudgetCrossField(t *testing.T) {
	v := New()

	min := int64(5000000)
	max := int64(4000000)
	in := validInput()
	in.BudgetMin = &min
	in.BudgetMax = &max

	_, errs := v.ValidateNew(in)
	if len(errs) != 1 || errs[0].Field != "budgetMax" {
		t.Fatalf("expected budgetMax violation, got %+v", errs)
	}

	// Equal budgets are fine.
	max = min
	in.BudgetMax = &max
	if _, errs := v.ValidateNew(in); len(errs) != 0 {
		t.Fatalf("expected equal budgets to pass, got %+v", errs)
	}
}

func TestValidateNewPhonePattern(t *testing.T) {
	v := New()

	for _, phone := range []string{"123456789", "1234567890123456", "98-7654-3210"} {
		in := validInput()
		in.Phone = phone
		if _, errs := v.ValidateNew(in); len(errs) != 1 || errs[0].Field != "phone" {
			t.Fatalf("expected phone violation for %q, got %+v", phone, errs)
		}
	}

	in := validInput()
	in.Phone = "123456789012345"
	if _, errs := v.ValidateNew(in); len(errs) != 0 {
		t.Fatalf("expected 15-digit phone to pass, got %+v", errs)
	}
}

func TestValidateRecordPreservesIdentity(t *testing.T) {
	v := New()

	buyer, errs := v.ValidateNew(validInput())
	if len(errs) != 0 {
		t.Fatalf("setup failed: %+v", errs)
	}
	stamped := domain.NewBuyer("user-1", buyer)
	stamped.Status = domain.StatusContacted

	checked, errs := v.ValidateRecord(stamped)
	if len(errs) != 0 {
		t.Fatalf("expected no errors, got %+v", errs)
	}
	if checked.ID != stamped.ID || checked.OwnerID != "user-1" {
		t.Fatalf("identity not preserved: %+v", checked)
	}
	if checked.Status != domain.StatusContacted {
		t.Fatalf("status not preserved: %s", checked.Status)
	}
}

func TestParsePatchEnumErrors(t *testing.T) {
	v := New()

	bad := "Atlantis"
	_, errs := v.ParsePatch(PatchInput{City: &bad})
	if len(errs) != 1 || errs[0].Field != "city" {
		t.Fatalf("expected city violation, got %+v", errs)
	}

	empty := ""
	patch, errs := v.ParsePatch(PatchInput{BHK: &empty})
	if len(errs) != 0 {
		t.Fatalf("expected empty bhk accepted as clear, got %+v", errs)
	}
	if patch.BHK == nil || *patch.BHK != "" {
		t.Fatalf("expected explicit bhk clear, got %+v", patch.BHK)
	}
}
