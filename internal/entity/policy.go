package entity

import "strings"

type DuplicatePolicy string

const (
	// DuplicatesSkip keeps one row per email; a repeat only gets the confirmation again.
	DuplicatesSkip  DuplicatePolicy = "skip"
	DuplicatesAllow DuplicatePolicy = "allow"
)

type ConfirmationFormat string

const (
	ConfirmationHTML ConfirmationFormat = "html"
	ConfirmationText ConfirmationFormat = "text"
)

// Policy bundles the column layout and the duplicate and confirmation behaviour of a deployment.
type Policy struct {
	Schema       Schema
	Duplicates   DuplicatePolicy
	Confirmation ConfirmationFormat
}

// VariantA: 11 columns, duplicate emails are not re-added, HTML confirmation.
func VariantA() Policy {
	return Policy{Schema: ExtendedSchema(), Duplicates: DuplicatesSkip, Confirmation: ConfirmationHTML}
}

// VariantB: 9 columns, every submission is appended, plain-text confirmation.
func VariantB() Policy {
	return Policy{Schema: CompactSchema(), Duplicates: DuplicatesAllow, Confirmation: ConfirmationText}
}

func PolicyForVariant(variant string) Policy {
	if strings.EqualFold(strings.TrimSpace(variant), "B") {
		return VariantB()
	}
	return VariantA()
}

func (p Policy) SkipsDuplicates() bool {
	return p.Duplicates == DuplicatesSkip
}
