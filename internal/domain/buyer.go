package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// City is the canonical set of cities a lead can be interested in.
type City string

const (
	CityChandigarh City = "Chandigarh"
	CityMohali     City = "Mohali"
	CityZirakpur   City = "Zirakpur"
	CityPanchkula  City = "Panchkula"
	CityOther      City = "Other"
)

// PropertyType classifies the property the lead is looking for.
type PropertyType string

const (
	PropertyTypeApartment PropertyType = "Apartment"
	PropertyTypeVilla     PropertyType = "Villa"
	PropertyTypePlot      PropertyType = "Plot"
	PropertyTypeOffice    PropertyType = "Office"
	PropertyTypeRetail    PropertyType = "Retail"
)

// BHK is the bedroom count classifier for residential property types.
type BHK string

const (
	BHKOne    BHK = "1"
	BHKTwo    BHK = "2"
	BHKThree  BHK = "3"
	BHKFour   BHK = "4"
	BHKStudio BHK = "Studio"
)

// Purpose records whether the lead wants to buy or rent.
type Purpose string

const (
	PurposeBuy  Purpose = "Buy"
	PurposeRent Purpose = "Rent"
)

// Timeline is the lead's expected purchase horizon.
type Timeline string

const (
	TimelineZeroToThreeMonths  Timeline = "0-3m"
	TimelineThreeToSixMonths   Timeline = "3-6m"
	TimelineMoreThanSixMonths  Timeline = ">6m"
	TimelineExploring          Timeline = "Exploring"
)

// Source records how the lead reached us.
type Source string

const (
	SourceWebsite  Source = "Website"
	SourceReferral Source = "Referral"
	SourceWalkIn   Source = "Walk-in"
	SourceCall     Source = "Call"
	SourceOther    Source = "Other"
)

// Status is the lead's lifecycle stage.
type Status string

const (
	StatusNew         Status = "New"
	StatusQualified   Status = "Qualified"
	StatusContacted   Status = "Contacted"
	StatusVisited     Status = "Visited"
	StatusNegotiation Status = "Negotiation"
	StatusConverted   Status = "Converted"
	StatusDropped     Status = "Dropped"
)

var (
	cities = map[string]City{
		"Chandigarh": CityChandigarh,
		"Mohali":     CityMohali,
		"Zirakpur":   CityZirakpur,
		"Panchkula":  CityPanchkula,
		"Other":      CityOther,
	}

	propertyTypes = map[string]PropertyType{
		"Apartment": PropertyTypeApartment,
		"Villa":     PropertyTypeVilla,
		"Plot":      PropertyTypePlot,
		"Office":    PropertyTypeOffice,
		"Retail":    PropertyTypeRetail,
	}

	// Legacy data spells BHK values out; accept both forms.
	bhks = map[string]BHK{
		"1":      BHKOne,
		"2":      BHKTwo,
		"3":      BHKThree,
		"4":      BHKFour,
		"Studio": BHKStudio,
		"One":    BHKOne,
		"Two":    BHKTwo,
		"Three":  BHKThree,
		"Four":   BHKFour,
	}

	purposes = map[string]Purpose{
		"Buy":  PurposeBuy,
		"Rent": PurposeRent,
	}

	// Timeline aliases cover the screaming-snake spellings older exports used.
	timelines = map[string]Timeline{
		"0-3m":         TimelineZeroToThreeMonths,
		"3-6m":         TimelineThreeToSixMonths,
		">6m":          TimelineMoreThanSixMonths,
		"Exploring":    TimelineExploring,
		"ZERO_TO_3M":   TimelineZeroToThreeMonths,
		"THREE_TO_6M":  TimelineThreeToSixMonths,
		"MORE_THAN_6M": TimelineMoreThanSixMonths,
	}

	sources = map[string]Source{
		"Website":  SourceWebsite,
		"Referral": SourceReferral,
		"Walk-in":  SourceWalkIn,
		"WalkIn":   SourceWalkIn,
		"Call":     SourceCall,
		"Other":    SourceOther,
	}

	statuses = map[string]Status{
		"New":         StatusNew,
		"Qualified":   StatusQualified,
		"Contacted":   StatusContacted,
		"Visited":     StatusVisited,
		"Negotiation": StatusNegotiation,
		"Converted":   StatusConverted,
		"Dropped":     StatusDropped,
	}
)

// ParseCity maps a raw value onto the canonical city set.
func ParseCity(raw string) (City, error) {
	if v, ok := cities[raw]; ok {
		return v, nil
	}
	return "", fmt.Errorf("invalid city: %q", raw)
}

// ParsePropertyType maps a raw value onto the canonical property type set.
func ParsePropertyType(raw string) (PropertyType, error) {
	if v, ok := propertyTypes[raw]; ok {
		return v, nil
	}
	return "", fmt.Errorf("invalid propertyType: %q", raw)
}

// ParseBHK maps a raw value onto the canonical BHK set.
func ParseBHK(raw string) (BHK, error) {
	if v, ok := bhks[raw]; ok {
		return v, nil
	}
	return "", fmt.Errorf("invalid bhk: %q", raw)
}

// ParsePurpose maps a raw value onto the canonical purpose set.
func ParsePurpose(raw string) (Purpose, error) {
	if v, ok := purposes[raw]; ok {
		return v, nil
	}
	return "", fmt.Errorf("invalid purpose: %q", raw)
}

// ParseTimeline maps a raw value onto the canonical timeline set.
func ParseTimeline(raw string) (Timeline, error) {
	if v, ok := timelines[raw]; ok {
		return v, nil
	}
	return "", fmt.Errorf("invalid timeline: %q", raw)
}

// ParseSource maps a raw value onto the canonical source set.
func ParseSource(raw string) (Source, error) {
	if v, ok := sources[raw]; ok {
		return v, nil
	}
	return "", fmt.Errorf("invalid source: %q", raw)
}

// ParseStatus maps a raw value onto the canonical status set.
func ParseStatus(raw string) (Status, error) {
	if v, ok := statuses[raw]; ok {
		return v, nil
	}
	return "", fmt.Errorf("invalid status: %q", raw)
}

// RequiresBHK reports whether the property type makes the BHK field mandatory.
func (p PropertyType) RequiresBHK() bool {
	return p == PropertyTypeApartment || p == PropertyTypeVilla
}

// Buyer is a prospective property buyer tracked through the sales pipeline.
type Buyer struct {
	ID           uuid.UUID    `json:"id"`
	FullName     string       `json:"fullName"`
	Email        string       `json:"email,omitempty"`
	Phone        string       `json:"phone"`
	City         City         `json:"city"`
	PropertyType PropertyType `json:"propertyType"`
	BHK          BHK          `json:"bhk,omitempty"`
	Purpose      Purpose      `json:"purpose"`
	BudgetMin    *int64       `json:"budgetMin,omitempty"`
	BudgetMax    *int64       `json:"budgetMax,omitempty"`
	Timeline     Timeline     `json:"timeline"`
	Source       Source       `json:"source"`
	Notes        string       `json:"notes,omitempty"`
	Tags         []string     `json:"tags"`
	Status       Status       `json:"status"`
	OwnerID      string       `json:"ownerId"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

// NewBuyer stamps a validated candidate record with identity, ownership and
// server-assigned timestamps.
func NewBuyer(ownerID string, b Buyer) Buyer {
	now := time.Now()
	b.ID = uuid.New()
	b.OwnerID = ownerID
	if b.Status == "" {
		b.Status = StatusNew
	}
	if b.Tags == nil {
		b.Tags = []string{}
	}
	b.CreatedAt = now
	b.UpdatedAt = now
	return b
}

// User is an operator of the admin tool. The service trusts the identity
// layer to hand it a valid user id and performs no authentication itself.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}
