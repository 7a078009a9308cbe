/*
Package resorts holds the static DVC resort metadata table.

PURPOSE:
  Slugs, display names, view categories, and the two classification sets
  the eligibility rules depend on: the "original 14" legacy resorts whose
  resale points remain interchangeable, and the resale-restricted resorts
  (built after ~2019) whose resale points can only book the home resort.

The Catalog type implements engine.ResortCatalog / engine.ResortDirectory.
*/
package resorts

// Resort is one DVC resort's metadata.
type Resort struct {
	Slug           string   `json:"slug"`
	Name           string   `json:"name"`
	ViewCategories []string `json:"view_categories"`
}

// all lists every DVC resort. The first 14 entries are the original 14;
// the tail is the resale-restricted set.
var all = []Resort{
	{Slug: "old_key_west", Name: "Old Key West", ViewCategories: []string{"standard"}},
	{Slug: "boardwalk", Name: "BoardWalk Villas", ViewCategories: []string{"standard", "boardwalk"}},
	{Slug: "beach_club", Name: "Beach Club Villas", ViewCategories: []string{"standard"}},
	{Slug: "boulder_ridge", Name: "Boulder Ridge Villas", ViewCategories: []string{"standard"}},
	{Slug: "copper_creek", Name: "Copper Creek Villas & Cabins", ViewCategories: []string{"standard"}},
	{Slug: "saratoga_springs", Name: "Saratoga Springs Resort & Spa", ViewCategories: []string{"standard", "preferred"}},
	{Slug: "animal_kingdom", Name: "Animal Kingdom Villas", ViewCategories: []string{"standard", "savanna", "value", "club"}},
	{Slug: "bay_lake_tower", Name: "Bay Lake Tower", ViewCategories: []string{"standard", "lake", "theme_park"}},
	{Slug: "grand_floridian", Name: "Villas at the Grand Floridian", ViewCategories: []string{"standard", "lake", "theme_park"}},
	{Slug: "polynesian", Name: "Polynesian Villas & Bungalows", ViewCategories: []string{"standard", "lake"}},
	{Slug: "grand_californian", Name: "Villas at the Grand Californian", ViewCategories: []string{"standard"}},
	{Slug: "aulani", Name: "Aulani, a Disney Vacation Club Resort", ViewCategories: []string{"standard", "island_gardens", "poolside_gardens", "ocean"}},
	{Slug: "vero_beach", Name: "Vero Beach Resort", ViewCategories: []string{"standard", "ocean"}},
	{Slug: "hilton_head", Name: "Hilton Head Island Resort", ViewCategories: []string{"standard"}},
	{Slug: "riviera", Name: "Riviera Resort", ViewCategories: []string{"standard", "preferred"}},
	{Slug: "disneyland_hotel", Name: "Villas at Disneyland Hotel", ViewCategories: []string{"standard", "preferred"}},
	{Slug: "cabins_fort_wilderness", Name: "Cabins at Fort Wilderness Lodge", ViewCategories: []string{"standard"}},
}

const originalCount = 14

// Catalog exposes the static resort table. The zero value is ready to use.
type Catalog struct{}

// Resorts returns every resort's metadata.
func (Catalog) Resorts() []Resort {
	out := make([]Resort, len(all))
	copy(out, all)
	return out
}

// BySlug returns a resort by slug.
func (Catalog) BySlug(slug string) (Resort, bool) {
	for _, r := range all {
		if r.Slug == slug {
			return r, true
		}
	}
	return Resort{}, false
}

// AllSlugs returns every known resort slug.
func (Catalog) AllSlugs() []string {
	slugs := make([]string, len(all))
	for i, r := range all {
		slugs[i] = r.Slug
	}
	return slugs
}

// OriginalSlugs returns the original 14 legacy resort slugs.
func (Catalog) OriginalSlugs() []string {
	slugs := make([]string, originalCount)
	for i, r := range all[:originalCount] {
		slugs[i] = r.Slug
	}
	return slugs
}

// RestrictedSlugs returns the resale-restricted resort slugs.
func (Catalog) RestrictedSlugs() []string {
	slugs := make([]string, 0, len(all)-originalCount)
	for _, r := range all[originalCount:] {
		slugs = append(slugs, r.Slug)
	}
	return slugs
}

// ResortName returns the display name for a slug, or the slug when unknown.
func (c Catalog) ResortName(slug string) string {
	if r, ok := c.BySlug(slug); ok {
		return r.Name
	}
	return slug
}
