package models

// Catalog is the nested asset -> system -> description lookup table that
// drives the report form dropdowns. A report item is only valid if its
// system belongs to its asset and its description belongs to that system.
type Catalog map[string]map[string][]string

// HasAsset reports whether the asset exists in the catalog.
func (c Catalog) HasAsset(asset string) bool {
	_, ok := c[asset]
	return ok
}

// Validate checks that the (asset, system, description) triple is mutually
// consistent with the catalog.
func (c Catalog) Validate(asset, system, description string) bool {
	systems, ok := c[asset]
	if !ok {
		return false
	}
	descriptions, ok := systems[system]
	if !ok {
		return false
	}
	for _, d := range descriptions {
		if d == description {
			return true
		}
	}
	return false
}

// Assets returns the asset names in the catalog.
func (c Catalog) Assets() []string {
	assets := make([]string, 0, len(c))
	for asset := range c {
		assets = append(assets, asset)
	}
	return assets
}
