package services

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"injaaz-backend/models"
	"injaaz-backend/utils/logger"

	"github.com/tidwall/gjson"
)

//go:embed dropdown_data.json
var dropdownData []byte

// CatalogService serves the asset/system/description lookup table and
// validates report items against it.
type CatalogService struct {
	catalog models.Catalog
	logger  logger.Logger
}

func NewCatalogService(log logger.Logger) (*CatalogService, error) {
	if !gjson.ValidBytes(dropdownData) {
		return nil, fmt.Errorf("embedded dropdown data is not valid JSON")
	}

	var catalog models.Catalog
	if err := json.Unmarshal(dropdownData, &catalog); err != nil {
		return nil, fmt.Errorf("failed to unmarshal dropdown data: %w", err)
	}

	if len(catalog) == 0 {
		return nil, fmt.Errorf("dropdown data contains no assets")
	}

	log.Infof("Catalog loaded: %d assets", len(catalog))
	return &CatalogService{catalog: catalog, logger: log}, nil
}

func (s *CatalogService) Catalog() models.Catalog {
	return s.catalog
}

// ValidateItem checks an item's selections for mutual consistency with the
// catalog: the system must belong to the asset and the description to the
// system.
func (s *CatalogService) ValidateItem(item *models.ReportItem) error {
	if !s.catalog.HasAsset(item.Asset) {
		return fmt.Errorf("unknown asset %q", item.Asset)
	}
	if !s.catalog.Validate(item.Asset, item.System, item.Description) {
		return fmt.Errorf("selection %q / %q / %q is not a valid catalog combination",
			item.Asset, item.System, item.Description)
	}
	return nil
}
