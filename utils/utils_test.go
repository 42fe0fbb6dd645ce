package utils

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

// UtilsTestSuite defines a test suite for utils functions
type UtilsTestSuite struct {
	suite.Suite
	originalEnv map[string]string
}

func (suite *UtilsTestSuite) SetupTest() {
	suite.originalEnv = make(map[string]string)
	envVars := []string{
		"APP_NAME", "APP_VERSION", "APP_ENV", "APP_HOST", "APP_PORT", "APP_BASE_URL",
		"AWS_REGION", "AWS_ACCESS_KEY_ID", "AWS_SECRET_ACCESS_KEY",
		"DYNAMODB_ENDPOINT", "DYNAMODB_TABLE_PREFIX",
		"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB",
		"CLOUDINARY_CLOUD_NAME", "CLOUDINARY_UPLOAD_PRESET",
		"GENERATED_DIR", "WORKER_ENABLED",
		"LOG_LEVEL", "LOG_FORMAT",
		"CORS_ORIGINS", "BASEPATH",
	}

	for _, envVar := range envVars {
		suite.originalEnv[envVar] = os.Getenv(envVar)
		os.Unsetenv(envVar)
	}
}

func (suite *UtilsTestSuite) TearDownTest() {
	for envVar, value := range suite.originalEnv {
		if value != "" {
			os.Setenv(envVar, value)
		} else {
			os.Unsetenv(envVar)
		}
	}
}

func TestUtilsTestSuite(t *testing.T) {
	suite.Run(t, new(UtilsTestSuite))
}

// TestGetConfig tests the default configuration values
func (suite *UtilsTestSuite) TestGetConfig() {
	config, err := GetConfig()
	assert.NoError(suite.T(), err)
	assert.NotNil(suite.T(), config)

	assert.Equal(suite.T(), "Injaaz Backend", config.AppName)
	assert.Equal(suite.T(), "1.0.0", config.AppVersion)
	assert.Equal(suite.T(), "development", config.AppEnv)
	assert.Equal(suite.T(), "0.0.0.0", config.AppHost)
	assert.Equal(suite.T(), "8081", config.AppPort)
	assert.Equal(suite.T(), "localhost:6379", config.RedisAddr)
	assert.Equal(suite.T(), "./generated", config.GeneratedDir)
	assert.True(suite.T(), config.WorkerEnabled)
	assert.Equal(suite.T(), "/api/v1", config.BasePath)
	assert.Equal(suite.T(), []string{"visits"}, config.Tables)
}

// TestGetConfigWithEnvironmentVariables tests env var overrides
func (suite *UtilsTestSuite) TestGetConfigWithEnvironmentVariables() {
	os.Setenv("APP_NAME", "Test App")
	os.Setenv("APP_ENV", "testing")
	os.Setenv("REDIS_ADDR", "redis:6380")
	os.Setenv("CLOUDINARY_CLOUD_NAME", "test-cloud")

	config, err := GetConfig()
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Test App", config.AppName)
	assert.Equal(suite.T(), "testing", config.AppEnv)
	assert.Equal(suite.T(), "redis:6380", config.RedisAddr)
	assert.Equal(suite.T(), "test-cloud", config.CloudinaryCloudName)
}

// TestGetConfigProductionRequiresCloudinary tests production validation
func (suite *UtilsTestSuite) TestGetConfigProductionRequiresCloudinary() {
	os.Setenv("APP_ENV", "production")

	_, err := GetConfig()
	assert.Error(suite.T(), err)
	assert.Contains(suite.T(), err.Error(), "CLOUDINARY_CLOUD_NAME")
}

// TestGenerateUUID tests UUID generation
func (suite *UtilsTestSuite) TestGenerateUUID() {
	id := GenerateUUID()
	parsed, err := uuid.Parse(id)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), id, parsed.String())
	assert.NotEqual(suite.T(), id, GenerateUUID())
}

// TestPrintPrettyJSON tests pretty JSON output
func (suite *UtilsTestSuite) TestPrintPrettyJSON() {
	out := PrintPrettyJSON(map[string]string{"key": "value"})

	var decoded map[string]string
	assert.NoError(suite.T(), json.Unmarshal([]byte(out), &decoded))
	assert.Equal(suite.T(), "value", decoded["key"])
}
