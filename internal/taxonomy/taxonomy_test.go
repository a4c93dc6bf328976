package taxonomy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryOf_KnownTypes(t *testing.T) {
	tests := []struct {
		typeName string
		want     string
	}{
		{"PAN Card", "Identity Proofs"},
		{"Aadhaar Card", "Identity Proofs"},
		{"GST Certificate", "Business Documents"},
		{"Bank Statement", "Financial Documents"},
		{"Sale Deed", "Property Documents"},
		{"Vehicle RC", "Legal & Others"},
		{"Other", "Legal & Others"},
	}

	for _, tt := range tests {
		t.Run(tt.typeName, func(t *testing.T) {
			assert.Equal(t, tt.want, CategoryOf(tt.typeName))
		})
	}
}

func TestCategoryOf_UnknownTypeFallsBack(t *testing.T) {
	assert.Equal(t, FallbackCategory, CategoryOf("nonexistent-type"))
	assert.Equal(t, FallbackCategory, CategoryOf(""))
	// Lookup is exact, not case-insensitive.
	assert.Equal(t, FallbackCategory, CategoryOf("pan card"))
}

func TestCategories_OrderAndCoverage(t *testing.T) {
	got := Categories()
	require.Equal(t, []string{
		"Identity Proofs",
		"Business Documents",
		"Financial Documents",
		"Property Documents",
		"Legal & Others",
	}, got)

	for _, c := range got {
		assert.NotEmpty(t, Types(c), "category %q has no types", c)
	}
}

func TestTypes_ReturnsCopy(t *testing.T) {
	a := Types("Identity Proofs")
	require.NotEmpty(t, a)
	a[0] = "mutated"
	assert.Equal(t, "PAN Card", Types("Identity Proofs")[0])
}

func TestIsKnownType(t *testing.T) {
	assert.True(t, IsKnownType("Passport"))
	assert.False(t, IsKnownType("Passport Photo"))
}

func TestGuessCategory(t *testing.T) {
	tests := []struct {
		fileName string
		want     string
	}{
		{"Aadhar_scan.pdf", "Identity"},
		{"passport-2024.jpg", "Identity"},
		{"electricity_bill_march.pdf", "Finance"},
		{"tax_return.pdf", "Finance"},
		{"medical_summary.pdf", "Health"},
		{"degree_certificate.pdf", "Education"},
		{"notes.txt", "Other"},
	}

	for _, tt := range tests {
		t.Run(tt.fileName, func(t *testing.T) {
			assert.Equal(t, tt.want, GuessCategory(tt.fileName))
		})
	}
}
