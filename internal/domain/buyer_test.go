package domain

import (
	"testing"
)

func TestParseTimelineAcceptsLegacySpellings(t *testing.T) {
	cases := map[string]Timeline{
		"0-3m":         TimelineZeroToThreeMonths,
		"ZERO_TO_3M":   TimelineZeroToThreeMonths,
		"3-6m":         TimelineThreeToSixMonths,
		"THREE_TO_6M":  TimelineThreeToSixMonths,
		">6m":          TimelineMoreThanSixMonths,
		"MORE_THAN_6M": TimelineMoreThanSixMonths,
		"Exploring":    TimelineExploring,
	}
	for raw, want := range cases {
		got, err := ParseTimeline(raw)
		if err != nil {
			t.Fatalf("ParseTimeline(%q) returned error: %v", raw, err)
		}
		if got != want {
			t.Fatalf("ParseTimeline(%q) = %s, want %s", raw, got, want)
		}
	}

	if _, err := ParseTimeline("someday"); err == nil {
		t.Fatalf("expected error for unknown timeline")
	}
}

func TestParseBHKAcceptsSpelledOutValues(t *testing.T) {
	for raw, want := range map[string]BHK{"1": BHKOne, "One": BHKOne, "Four": BHKFour, "Studio": BHKStudio} {
		got, err := ParseBHK(raw)
		if err != nil {
			t.Fatalf("ParseBHK(%q) returned error: %v", raw, err)
		}
		if got != want {
			t.Fatalf("ParseBHK(%q) = %s, want %s", raw, got, want)
		}
	}
}

func TestParseSourceWalkInAlias(t *testing.T) {
	for _, raw := range []string{"Walk-in", "WalkIn"} {
		got, err := ParseSource(raw)
		if err != nil || got != SourceWalkIn {
			t.Fatalf("ParseSource(%q) = %s, %v", raw, got, err)
		}
	}
}

func TestRequiresBHK(t *testing.T) {
	if !PropertyTypeApartment.RequiresBHK() || !PropertyTypeVilla.RequiresBHK() {
		t.Fatalf("expected residential types to require bhk")
	}
	for _, pt := range []PropertyType{PropertyTypePlot, PropertyTypeOffice, PropertyTypeRetail} {
		if pt.RequiresBHK() {
			t.Fatalf("did not expect %s to require bhk", pt)
		}
	}
}

func TestNewBuyerDefaults(t *testing.T) {
	b := NewBuyer("user-1", Buyer{FullName: "Asha Verma", Phone: "9876543210"})
	if b.ID.String() == "00000000-0000-0000-0000-000000000000" {
		t.Fatalf("expected assigned id")
	}
	if b.OwnerID != "user-1" {
		t.Fatalf("expected owner user-1, got %q", b.OwnerID)
	}
	if b.Status != StatusNew {
		t.Fatalf("expected default status New, got %s", b.Status)
	}
	if b.Tags == nil {
		t.Fatalf("expected empty tags slice")
	}
	if b.CreatedAt.IsZero() || !b.CreatedAt.Equal(b.UpdatedAt) {
		t.Fatalf("expected matching creation timestamps")
	}

	explicit := NewBuyer("user-1", Buyer{FullName: "Asha", Status: StatusQualified})
	if explicit.Status != StatusQualified {
		t.Fatalf("expected explicit status preserved, got %s", explicit.Status)
	}
}
