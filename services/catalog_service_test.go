package services

import (
	"testing"

	"injaaz-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// CatalogServiceTestSuite defines a test suite for CatalogService
type CatalogServiceTestSuite struct {
	suite.Suite
	logger  *MockServiceLogger
	service *CatalogService
}

func (suite *CatalogServiceTestSuite) SetupTest() {
	suite.logger = new(MockServiceLogger)
	suite.logger.On("Infof", mock.Anything, mock.Anything).Maybe()

	service, err := NewCatalogService(suite.logger)
	suite.Require().NoError(err)
	suite.service = service
}

func TestCatalogServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CatalogServiceTestSuite))
}

// TestEmbeddedCatalogLoads verifies the embedded dropdown data parses and
// contains the expected top-level assets
func (suite *CatalogServiceTestSuite) TestEmbeddedCatalogLoads() {
	catalog := suite.service.Catalog()
	assert.NotEmpty(suite.T(), catalog)

	assert.True(suite.T(), catalog.HasAsset("HVAC"))
	assert.True(suite.T(), catalog.HasAsset("Electrical"))
	assert.True(suite.T(), catalog.HasAsset("Plumbing"))
	assert.False(suite.T(), catalog.HasAsset("Nonexistent Asset"))

	assert.Contains(suite.T(), catalog.Assets(), "HVAC")
}

// TestValidateItemAcceptsConsistentSelection tests a valid triple
func (suite *CatalogServiceTestSuite) TestValidateItemAcceptsConsistentSelection() {
	item := &models.ReportItem{
		Asset:       "HVAC",
		System:      "Chilled Water System",
		Description: "Chiller not reaching setpoint",
	}
	assert.NoError(suite.T(), suite.service.ValidateItem(item))
}

// TestValidateItemRejectsUnknownAsset tests an unknown asset
func (suite *CatalogServiceTestSuite) TestValidateItemRejectsUnknownAsset() {
	item := &models.ReportItem{
		Asset:       "Submarine",
		System:      "Chilled Water System",
		Description: "Chiller not reaching setpoint",
	}
	err := suite.service.ValidateItem(item)
	assert.Error(suite.T(), err)
	assert.Contains(suite.T(), err.Error(), "unknown asset")
}

// TestValidateItemRejectsMismatchedSystem tests a system that belongs to a
// different asset
func (suite *CatalogServiceTestSuite) TestValidateItemRejectsMismatchedSystem() {
	item := &models.ReportItem{
		Asset:       "Electrical",
		System:      "Chilled Water System",
		Description: "Chiller not reaching setpoint",
	}
	err := suite.service.ValidateItem(item)
	assert.Error(suite.T(), err)
	assert.Contains(suite.T(), err.Error(), "not a valid catalog combination")
}

// TestValidateItemRejectsMismatchedDescription tests a description that does
// not belong to the selected system
func (suite *CatalogServiceTestSuite) TestValidateItemRejectsMismatchedDescription() {
	item := &models.ReportItem{
		Asset:       "HVAC",
		System:      "Chilled Water System",
		Description: "Breaker tripping",
	}
	assert.Error(suite.T(), suite.service.ValidateItem(item))
}

// TestCatalogValidateDirect exercises the model-level lookup
func (suite *CatalogServiceTestSuite) TestCatalogValidateDirect() {
	catalog := suite.service.Catalog()

	assert.True(suite.T(), catalog.Validate("Plumbing", "Drainage", "Blockage"))
	assert.False(suite.T(), catalog.Validate("Plumbing", "Drainage", "Chiller not reaching setpoint"))
	assert.False(suite.T(), catalog.Validate("Plumbing", "Lighting", "Blockage"))
	assert.False(suite.T(), catalog.Validate("", "", ""))
}
