package domain

// Vendor is a registered merchant that can be solicited for offers.
// Endpoint is the vendor-side HTTP URL that receives solicitation payloads.
type Vendor struct {
	ID         string
	Name       string
	Location   *Location
	Endpoint   string
	Active     bool
	Categories []string
}

// ServesCategory reports whether the vendor serves the given category.
// Vendors without an explicit category list serve everything.
func (v *Vendor) ServesCategory(category string) bool {
	if category == "" || len(v.Categories) == 0 {
		return true
	}
	for _, c := range v.Categories {
		if c == category {
			return true
		}
	}
	return false
}
