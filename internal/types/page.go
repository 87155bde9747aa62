package types

// PageType classifies what kind of product page a URL points to.
type PageType string

const (
	PageMain     PageType = "main"
	PageSpecs    PageType = "specs"
	PageGallery  PageType = "gallery"
	PageFeatures PageType = "features"
	PageInsights PageType = "insights"
	PageStories  PageType = "stories"
	PageOther    PageType = "other"
)

// Identity is the preliminary entity identity extracted from a page,
// used to group pages describing the same product.
type Identity struct {
	Manufacturer string
	Model        string
	Year         int    // 0 = unknown
	Variant      string // "" = none
}

// Key returns the grouping key for this identity.
func (id Identity) Key() EntityKey {
	return EntityKey{
		Manufacturer: id.Manufacturer,
		Model:        id.Model,
		Year:         id.Year,
		Variant:      id.Variant,
	}
}

// EntityKey identifies one logical product: (manufacturer, model, year, variant).
// Comparable, usable as a map key.
type EntityKey struct {
	Manufacturer string
	Model        string
	Year         int
	Variant      string
}

// PageRecord is the Classifier's output for one URL. Identity is nil
// when no model could be resolved; such pages are never grouped.
type PageRecord struct {
	URL      string
	PageType PageType
	Identity *Identity
}

// Link is an anchor found on a page: resolved absolute URL plus its text.
type Link struct {
	URL  string
	Text string
}
