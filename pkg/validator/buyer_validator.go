package validator

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	gpvalidator "github.com/go-playground/validator/v10"

	"github.com/propleads/intake/internal/domain"
)

var phonePattern = regexp.MustCompile(`^\d{10,15}$`)

// BuyerInput is a candidate buyer payload as it arrives from forms or import
// rows: untyped strings plus optional budgets. Validation is pure and does no
// I/O; all rule violations are collected and returned together.
type BuyerInput struct {
	FullName     string   `json:"fullName" validate:"required,min=2,max=80"`
	Email        string   `json:"email" validate:"omitempty,email"`
	Phone        string   `json:"phone" validate:"required,phonedigits"`
	City         string   `json:"city" validate:"required"`
	PropertyType string   `json:"propertyType" validate:"required"`
	BHK          string   `json:"bhk"`
	Purpose      string   `json:"purpose" validate:"required"`
	BudgetMin    *int64   `json:"budgetMin" validate:"omitempty,gt=0"`
	BudgetMax    *int64   `json:"budgetMax" validate:"omitempty,gt=0"`
	Timeline     string   `json:"timeline" validate:"required"`
	Source       string   `json:"source" validate:"required"`
	Notes        string   `json:"notes" validate:"max=1000"`
	Tags         []string `json:"tags"`
	Status       string   `json:"status"`
}

// PatchInput carries the raw fields present in an update payload. Nil means
// the field was absent and must be left untouched.
type PatchInput struct {
	FullName     *string  `json:"fullName"`
	Email        *string  `json:"email"`
	Phone        *string  `json:"phone"`
	City         *string  `json:"city"`
	PropertyType *string  `json:"propertyType"`
	BHK          *string  `json:"bhk"`
	Purpose      *string  `json:"purpose"`
	BudgetMin    *int64   `json:"budgetMin"`
	BudgetMax    *int64   `json:"budgetMax"`
	Timeline     *string  `json:"timeline"`
	Source       *string  `json:"source"`
	Notes        *string  `json:"notes"`
	Tags         []string `json:"tags"`
	Status       *string  `json:"status"`
}

// BuyerValidator validates candidate buyer payloads against the canonical
// enumerations and cross-field rules.
type BuyerValidator struct {
	validate *gpvalidator.Validate
}

// New builds a validator with the syntactic rule set registered.
func New() *BuyerValidator {
	v := gpvalidator.New(gpvalidator.WithRequiredStructEnabled())

	_ = v.RegisterValidation("phonedigits", func(fl gpvalidator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})

	// Report errors under the wire names, not Go field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &BuyerValidator{validate: v}
}

// ValidateNew normalizes a full candidate payload into a typed buyer record,
// or returns every field-level violation found. The returned record carries
// no identity, ownership or timestamps; callers stamp those.
func (v *BuyerValidator) ValidateNew(in BuyerInput) (domain.Buyer, []domain.FieldError) {
	var errs []domain.FieldError

	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)

	if err := v.validate.Struct(in); err != nil {
		if invalid, ok := err.(gpvalidator.ValidationErrors); ok {
			for _, fe := range invalid {
				errs = append(errs, domain.FieldError{Field: fe.Field(), Message: messageFor(fe)})
			}
		} else {
			errs = append(errs, domain.FieldError{Field: "payload", Message: err.Error()})
		}
	}

	buyer := domain.Buyer{
		FullName: in.FullName,
		Email:    in.Email,
		Phone:    in.Phone,
		Notes:    in.Notes,
	}
	if in.Tags != nil {
		buyer.Tags = append([]string(nil), in.Tags...)
	}

	if in.City != "" {
		if city, err := domain.ParseCity(in.City); err != nil {
			errs = append(errs, domain.FieldError{Field: "city", Message: err.Error()})
		} else {
			buyer.City = city
		}
	}
	if in.PropertyType != "" {
		if pt, err := domain.ParsePropertyType(in.PropertyType); err != nil {
			errs = append(errs, domain.FieldError{Field: "propertyType", Message: err.Error()})
		} else {
			buyer.PropertyType = pt
		}
	}
	if in.Purpose != "" {
		if purpose, err := domain.ParsePurpose(in.Purpose); err != nil {
			errs = append(errs, domain.FieldError{Field: "purpose", Message: err.Error()})
		} else {
			buyer.Purpose = purpose
		}
	}
	if in.Timeline != "" {
		if timeline, err := domain.ParseTimeline(in.Timeline); err != nil {
			errs = append(errs, domain.FieldError{Field: "timeline", Message: err.Error()})
		} else {
			buyer.Timeline = timeline
		}
	}
	if in.Source != "" {
		if source, err := domain.ParseSource(in.Source); err != nil {
			errs = append(errs, domain.FieldError{Field: "source", Message: err.Error()})
		} else {
			buyer.Source = source
		}
	}
	if in.Status != "" {
		if status, err := domain.ParseStatus(in.Status); err != nil {
			errs = append(errs, domain.FieldError{Field: "status", Message: err.Error()})
		} else {
			buyer.Status = status
		}
	}

	// BHK is mandatory for residential property types and normalized away for
	// everything else.
	if buyer.PropertyType.RequiresBHK() {
		if strings.TrimSpace(in.BHK) == "" {
			errs = append(errs, domain.FieldError{
				Field:   "bhk",
				Message: fmt.Sprintf("bhk is required for propertyType %s", buyer.PropertyType),
			})
		} else if bhk, err := domain.ParseBHK(in.BHK); err != nil {
			errs = append(errs, domain.FieldError{Field: "bhk", Message: err.Error()})
		} else {
			buyer.BHK = bhk
		}
	}

	buyer.BudgetMin = in.BudgetMin
	buyer.BudgetMax = in.BudgetMax
	if in.BudgetMin != nil && in.BudgetMax != nil && *in.BudgetMax < *in.BudgetMin {
		errs = append(errs, domain.FieldError{
			Field:   "budgetMax",
			Message: "budgetMax must be greater than or equal to budgetMin",
		})
	}

	if len(errs) > 0 {
		return domain.Buyer{}, errs
	}
	return buyer, nil
}

// ValidateRecord re-checks a merged, typed record against the full rule set
// and returns the normalized record. Identity, ownership and timestamps are
// preserved as-is.
func (v *BuyerValidator) ValidateRecord(b domain.Buyer) (domain.Buyer, []domain.FieldError) {
	in := BuyerInput{
		FullName:     b.FullName,
		Email:        b.Email,
		Phone:        b.Phone,
		City:         string(b.City),
		PropertyType: string(b.PropertyType),
		BHK:          string(b.BHK),
		Purpose:      string(b.Purpose),
		BudgetMin:    b.BudgetMin,
		BudgetMax:    b.BudgetMax,
		Timeline:     string(b.Timeline),
		Source:       string(b.Source),
		Notes:        b.Notes,
		Tags:         b.Tags,
		Status:       string(b.Status),
	}

	normalized, errs := v.ValidateNew(in)
	if len(errs) > 0 {
		return domain.Buyer{}, errs
	}

	normalized.ID = b.ID
	normalized.OwnerID = b.OwnerID
	normalized.Status = b.Status
	normalized.CreatedAt = b.CreatedAt
	normalized.UpdatedAt = b.UpdatedAt
	return normalized, nil
}

// ParsePatch maps raw patch fields onto canonical types, collecting
// enumeration errors. Syntactic and cross-field rules run later against the
// merged record.
func (v *BuyerValidator) ParsePatch(in PatchInput) (domain.BuyerPatch, []domain.FieldError) {
	var errs []domain.FieldError
	patch := domain.BuyerPatch{
		FullName:  in.FullName,
		Email:     in.Email,
		Phone:     in.Phone,
		BudgetMin: in.BudgetMin,
		BudgetMax: in.BudgetMax,
		Notes:     in.Notes,
		Tags:      in.Tags,
	}

	if in.City != nil {
		if city, err := domain.ParseCity(*in.City); err != nil {
			errs = append(errs, domain.FieldError{Field: "city", Message: err.Error()})
		} else {
			patch.City = &city
		}
	}
	if in.PropertyType != nil {
		if pt, err := domain.ParsePropertyType(*in.PropertyType); err != nil {
			errs = append(errs, domain.FieldError{Field: "propertyType", Message: err.Error()})
		} else {
			patch.PropertyType = &pt
		}
	}
	if in.BHK != nil {
		if *in.BHK == "" {
			empty := domain.BHK("")
			patch.BHK = &empty
		} else if bhk, err := domain.ParseBHK(*in.BHK); err != nil {
			errs = append(errs, domain.FieldError{Field: "bhk", Message: err.Error()})
		} else {
			patch.BHK = &bhk
		}
	}
	if in.Purpose != nil {
		if purpose, err := domain.ParsePurpose(*in.Purpose); err != nil {
			errs = append(errs, domain.FieldError{Field: "purpose", Message: err.Error()})
		} else {
			patch.Purpose = &purpose
		}
	}
	if in.Timeline != nil {
		if timeline, err := domain.ParseTimeline(*in.Timeline); err != nil {
			errs = append(errs, domain.FieldError{Field: "timeline", Message: err.Error()})
		} else {
			patch.Timeline = &timeline
		}
	}
	if in.Source != nil {
		if source, err := domain.ParseSource(*in.Source); err != nil {
			errs = append(errs, domain.FieldError{Field: "source", Message: err.Error()})
		} else {
			patch.Source = &source
		}
	}
	if in.Status != nil {
		if status, err := domain.ParseStatus(*in.Status); err != nil {
			errs = append(errs, domain.FieldError{Field: "status", Message: err.Error()})
		} else {
			patch.Status = &status
		}
	}

	if len(errs) > 0 {
		return domain.BuyerPatch{}, errs
	}
	return patch, nil
}

func messageFor(fe gpvalidator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "email":
		return "must be a valid email address"
	case "phonedigits":
		return "phone must be 10-15 digits"
	case "gt":
		return fmt.Sprintf("%s must be a positive number", fe.Field())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
