// Package taxonomy defines the fixed document taxonomy of the family vault:
// display categories, the document types belonging to each, and helpers for
// resolving a type back to its category.
package taxonomy

import "strings"

// FallbackCategory is returned for document types that are not part of the
// taxonomy. Unknown types are silently bucketed here rather than rejected.
const FallbackCategory = "Legal & Others"

// categories is ordered: the CLI renders pickers in this order.
var categories = []string{
	"Identity Proofs",
	"Business Documents",
	"Financial Documents",
	"Property Documents",
	"Legal & Others",
}

var documentTypes = map[string][]string{
	"Identity Proofs": {
		"PAN Card",
		"Aadhaar Card",
		"Voter ID",
		"Driving License",
		"Passport",
		"Birth Certificate",
	},
	"Business Documents": {
		"GST Certificate",
		"Udyam Registration",
		"Shop Act License",
		"Incorporation Certificate",
		"Partnership Deed",
		"MOA/AOA",
		"Current Account Details",
	},
	"Financial Documents": {
		"ITR Acknowledgement",
		"Balance Sheet",
		"Profit & Loss Statement",
		"Bank Statement",
		"Tax Audit Report",
		"Form 16/16A",
	},
	"Property Documents": {
		"Rent Agreement",
		"Sale Deed",
		"Property Tax Receipt",
		"Electricity Bill",
		"Index II",
	},
	"Legal & Others": {
		"Affidavit",
		"Power of Attorney",
		"Insurance Policy",
		"Vehicle RC",
		"Other",
	},
}

// Categories returns the category names in display order.
func Categories() []string {
	out := make([]string, len(categories))
	copy(out, categories)
	return out
}

// Types returns the document types belonging to category, in display order.
// An unknown category yields an empty slice.
func Types(category string) []string {
	types := documentTypes[category]
	out := make([]string, len(types))
	copy(out, types)
	return out
}

// CategoryOf resolves a document type to its owning category. Types outside
// the taxonomy resolve to FallbackCategory; this never fails.
func CategoryOf(typeName string) string {
	for _, category := range categories {
		for _, t := range documentTypes[category] {
			if t == typeName {
				return category
			}
		}
	}
	return FallbackCategory
}

// IsKnownType reports whether typeName is part of the taxonomy.
func IsKnownType(typeName string) bool {
	for _, types := range documentTypes {
		for _, t := range types {
			if t == typeName {
				return true
			}
		}
	}
	return false
}

// GuessCategory derives a coarse category from a file name, in the manner of
// the manifest sync tool. It is intentionally cruder than the full taxonomy:
// the manifest is built from a bare file listing where no declared type is
// available, so only filename substrings can be used.
func GuessCategory(fileName string) string {
	name := strings.ToLower(fileName)

	switch {
	case containsAny(name, "id", "card", "passport", "aadhar", "aadhaar"):
		return "Identity"
	case containsAny(name, "tax", "invoice", "bill"):
		return "Finance"
	case containsAny(name, "medical", "report"):
		return "Health"
	case containsAny(name, "education", "result", "certificate"):
		return "Education"
	default:
		return "Other"
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
