/*
eligibility.go - Booking eligibility resolver

PURPOSE:
  Determines which resorts a contract may book, from its home resort and
  purchase type.

RULES (in priority order):
  1. Direct purchase: every resort.
  2. Resale at a restricted resort (built after ~2019): home resort only.
  3. Resale at an original-14 resort: the full original-14 set.

Resort classification is static data supplied by a ResortCatalog (the
resorts package in production). No date dependency.
*/
package engine

// ResortCatalog supplies static resort classification data.
type ResortCatalog interface {
	// AllSlugs returns every known resort slug.
	AllSlugs() []string

	// OriginalSlugs returns the "original 14" legacy resort slugs whose
	// resale points remain interchangeable.
	OriginalSlugs() []string

	// RestrictedSlugs returns resorts whose resale points can only book the
	// home resort.
	RestrictedSlugs() []string
}

// EligibleResorts returns the resort slugs a contract may book at.
func EligibleResorts(catalog ResortCatalog, homeResort string, purchase PurchaseType) []string {
	if purchase == PurchaseDirect {
		return catalog.AllSlugs()
	}

	for _, slug := range catalog.RestrictedSlugs() {
		if slug == homeResort {
			return []string{homeResort}
		}
	}
	return catalog.OriginalSlugs()
}

// ResortEligible reports whether a single resort is bookable by a contract.
func ResortEligible(catalog ResortCatalog, homeResort string, purchase PurchaseType, resort string) bool {
	for _, slug := range EligibleResorts(catalog, homeResort, purchase) {
		if slug == resort {
			return true
		}
	}
	return false
}
