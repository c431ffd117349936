package domain

import "sort"

// BuyerPatch carries the fields present in an update payload. Nil fields are
// left untouched; only present fields participate in the diff.
type BuyerPatch struct {
	FullName     *string
	Email        *string
	Phone        *string
	City         *City
	PropertyType *PropertyType
	BHK          *BHK
	Purpose      *Purpose
	BudgetMin    *int64
	BudgetMax    *int64
	Timeline     *Timeline
	Source       *Source
	Notes        *string
	Tags         []string
	Status       *Status
}

// Apply merges the patch onto the existing record and returns the merged
// record together with the typed diff of fields whose values actually
// changed. An untouched record yields an empty diff.
func (p BuyerPatch) Apply(existing Buyer) (Buyer, Diff) {
	merged := existing
	diff := Diff{}

	if p.FullName != nil && *p.FullName != existing.FullName {
		diff["fullName"] = FieldChange{Old: existing.FullName, New: *p.FullName}
		merged.FullName = *p.FullName
	}
	if p.Email != nil && *p.Email != existing.Email {
		diff["email"] = FieldChange{Old: existing.Email, New: *p.Email}
		merged.Email = *p.Email
	}
	if p.Phone != nil && *p.Phone != existing.Phone {
		diff["phone"] = FieldChange{Old: existing.Phone, New: *p.Phone}
		merged.Phone = *p.Phone
	}
	if p.City != nil && *p.City != existing.City {
		diff["city"] = FieldChange{Old: existing.City, New: *p.City}
		merged.City = *p.City
	}
	if p.PropertyType != nil && *p.PropertyType != existing.PropertyType {
		diff["propertyType"] = FieldChange{Old: existing.PropertyType, New: *p.PropertyType}
		merged.PropertyType = *p.PropertyType
	}
	if p.BHK != nil && *p.BHK != existing.BHK {
		diff["bhk"] = FieldChange{Old: existing.BHK, New: *p.BHK}
		merged.BHK = *p.BHK
	}
	if p.Purpose != nil && *p.Purpose != existing.Purpose {
		diff["purpose"] = FieldChange{Old: existing.Purpose, New: *p.Purpose}
		merged.Purpose = *p.Purpose
	}
	if p.BudgetMin != nil && !int64PtrEqual(p.BudgetMin, existing.BudgetMin) {
		diff["budgetMin"] = FieldChange{Old: existing.BudgetMin, New: *p.BudgetMin}
		merged.BudgetMin = p.BudgetMin
	}
	if p.BudgetMax != nil && !int64PtrEqual(p.BudgetMax, existing.BudgetMax) {
		diff["budgetMax"] = FieldChange{Old: existing.BudgetMax, New: *p.BudgetMax}
		merged.BudgetMax = p.BudgetMax
	}
	if p.Timeline != nil && *p.Timeline != existing.Timeline {
		diff["timeline"] = FieldChange{Old: existing.Timeline, New: *p.Timeline}
		merged.Timeline = *p.Timeline
	}
	if p.Source != nil && *p.Source != existing.Source {
		diff["source"] = FieldChange{Old: existing.Source, New: *p.Source}
		merged.Source = *p.Source
	}
	if p.Notes != nil && *p.Notes != existing.Notes {
		diff["notes"] = FieldChange{Old: existing.Notes, New: *p.Notes}
		merged.Notes = *p.Notes
	}
	if p.Tags != nil && !tagSetsEqual(p.Tags, existing.Tags) {
		diff["tags"] = FieldChange{Old: existing.Tags, New: p.Tags}
		merged.Tags = p.Tags
	}
	if p.Status != nil && *p.Status != existing.Status {
		diff["status"] = FieldChange{Old: existing.Status, New: *p.Status}
		merged.Status = *p.Status
	}

	return merged, diff
}

// DiffBuyers compares two records field by field and returns the typed diff
// of every value that differs. Unlike BuyerPatch.Apply this sees changes the
// payload never named, such as bhk being cleared when the property type
// stops being residential, so the audit entry matches what was persisted.
func DiffBuyers(existing, updated Buyer) Diff {
	diff := Diff{}

	if existing.FullName != updated.FullName {
		diff["fullName"] = FieldChange{Old: existing.FullName, New: updated.FullName}
	}
	if existing.Email != updated.Email {
		diff["email"] = FieldChange{Old: existing.Email, New: updated.Email}
	}
	if existing.Phone != updated.Phone {
		diff["phone"] = FieldChange{Old: existing.Phone, New: updated.Phone}
	}
	if existing.City != updated.City {
		diff["city"] = FieldChange{Old: existing.City, New: updated.City}
	}
	if existing.PropertyType != updated.PropertyType {
		diff["propertyType"] = FieldChange{Old: existing.PropertyType, New: updated.PropertyType}
	}
	if existing.BHK != updated.BHK {
		diff["bhk"] = FieldChange{Old: existing.BHK, New: updated.BHK}
	}
	if existing.Purpose != updated.Purpose {
		diff["purpose"] = FieldChange{Old: existing.Purpose, New: updated.Purpose}
	}
	if !int64PtrEqual(existing.BudgetMin, updated.BudgetMin) {
		diff["budgetMin"] = FieldChange{Old: existing.BudgetMin, New: updated.BudgetMin}
	}
	if !int64PtrEqual(existing.BudgetMax, updated.BudgetMax) {
		diff["budgetMax"] = FieldChange{Old: existing.BudgetMax, New: updated.BudgetMax}
	}
	if existing.Timeline != updated.Timeline {
		diff["timeline"] = FieldChange{Old: existing.Timeline, New: updated.Timeline}
	}
	if existing.Source != updated.Source {
		diff["source"] = FieldChange{Old: existing.Source, New: updated.Source}
	}
	if existing.Notes != updated.Notes {
		diff["notes"] = FieldChange{Old: existing.Notes, New: updated.Notes}
	}
	if !tagSetsEqual(existing.Tags, updated.Tags) {
		diff["tags"] = FieldChange{Old: existing.Tags, New: updated.Tags}
	}
	if existing.Status != updated.Status {
		diff["status"] = FieldChange{Old: existing.Status, New: updated.Status}
	}

	return diff
}

func int64PtrEqual(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// tagSetsEqual compares tags as sets; ordering carries no meaning.
func tagSetsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]string(nil), a...)
	bs := append([]string(nil), b...)
	sort.Strings(as)
	sort.Strings(bs)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}
