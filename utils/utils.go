package utils

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"injaaz-backend/models"

	"github.com/google/uuid"
	"github.com/spf13/viper"
)

// GetConfig reads the configuration from environment variables or config files
func GetConfig() (*models.Config, error) {
	config, err := Load()
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}
	return config, nil
}

// Load initializes and returns the application configuration using Viper
func Load() (*models.Config, error) {
	v := viper.New()

	// Set configuration file details
	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../")
	v.AddConfigPath("../../")

	// Set default values
	setDefaults(v)

	// Enable environment variable support
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Try to read config file
	if err := v.ReadInConfig(); err != nil {
		// Config file not found, continue with defaults and env vars
		fmt.Printf("Config file not found (%v), using defaults and environment variables\n", err)
	} else {
		fmt.Printf("Using config file: %s\n", v.ConfigFileUsed())
	}

	// Handle nested JSON structure from config.json
	if v.IsSet("app") {
		flattenNestedConfig(v)
	}

	var config models.Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Application defaults
	v.SetDefault("app_name", "Injaaz Backend")
	v.SetDefault("app_version", "1.0.0")
	v.SetDefault("app_env", "development")
	v.SetDefault("app_host", "0.0.0.0")
	v.SetDefault("app_port", "8081")
	v.SetDefault("app_base_url", "http://127.0.0.1:8081")

	// AWS defaults
	v.SetDefault("aws_region", "us-east-1")
	v.SetDefault("aws_access_key_id", "")
	v.SetDefault("aws_secret_access_key", "")
	v.SetDefault("dynamodb_endpoint", "")
	v.SetDefault("dynamodb_table_prefix", "dev")

	// Redis defaults
	v.SetDefault("redis_addr", "localhost:6379")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)

	// Cloudinary defaults
	v.SetDefault("cloudinary_cloud_name", "")
	v.SetDefault("cloudinary_upload_preset", "")

	// Report generation defaults
	v.SetDefault("generated_dir", "./generated")
	v.SetDefault("worker_enabled", true)
	v.SetDefault("render_timeout", 5*time.Minute)
	v.SetDefault("generated_file_ttl", 24*time.Hour)
	v.SetDefault("cleanup_schedule", "0 0 * * * *")

	// Logging defaults
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")

	// CORS defaults
	v.SetDefault("cors_origins", []string{"*"})

	// Base Path default
	v.SetDefault("basePath", "/api/v1")

	// Tables to create
	v.SetDefault("tables", []string{"visits"})
}

// validate checks if all required configuration is provided
func validate(c *models.Config) error {
	if c.AppEnv == "production" && c.CloudinaryCloudName == "" {
		return fmt.Errorf("CLOUDINARY_CLOUD_NAME must be set in production environment")
	}

	if c.AppEnv == "production" && c.CloudinaryUploadPreset == "" {
		return fmt.Errorf("CLOUDINARY_UPLOAD_PRESET must be set in production environment")
	}

	// In production, we should have AWS credentials set
	if c.AppEnv == "production" && c.AWSAccessKeyID == "" {
		fmt.Println("No AWS credentials provided, assuming IAM role is used")
	}

	return nil
}

// flattenNestedConfig flattens the nested JSON structure to flat keys for easier mapping
func flattenNestedConfig(v *viper.Viper) {
	// App section
	if v.IsSet("app.name") {
		v.Set("app_name", v.GetString("app.name"))
	}
	if v.IsSet("app.version") {
		v.Set("app_version", v.GetString("app.version"))
	}
	if v.IsSet("app.env") {
		v.Set("app_env", v.GetString("app.env"))
	}
	if v.IsSet("app.host") {
		v.Set("app_host", v.GetString("app.host"))
	}
	if v.IsSet("app.port") {
		v.Set("app_port", v.GetString("app.port"))
	}
	if v.IsSet("app.base_url") {
		v.Set("app_base_url", v.GetString("app.base_url"))
	}

	// AWS section
	if v.IsSet("aws.region") {
		v.Set("aws_region", v.GetString("aws.region"))
	}
	if v.IsSet("aws.access_key_id") {
		v.Set("aws_access_key_id", v.GetString("aws.access_key_id"))
	}
	if v.IsSet("aws.secret_access_key") {
		v.Set("aws_secret_access_key", v.GetString("aws.secret_access_key"))
	}
	if v.IsSet("aws.dynamodb_endpoint") {
		v.Set("dynamodb_endpoint", v.GetString("aws.dynamodb_endpoint"))
	}
	if v.IsSet("aws.dynamodb_table_prefix") {
		v.Set("dynamodb_table_prefix", v.GetString("aws.dynamodb_table_prefix"))
	}

	// Redis section
	if v.IsSet("redis.addr") {
		v.Set("redis_addr", v.GetString("redis.addr"))
	}
	if v.IsSet("redis.password") {
		v.Set("redis_password", v.GetString("redis.password"))
	}
	if v.IsSet("redis.db") {
		v.Set("redis_db", v.GetInt("redis.db"))
	}

	// Cloudinary section
	if v.IsSet("cloudinary.cloud_name") {
		v.Set("cloudinary_cloud_name", v.GetString("cloudinary.cloud_name"))
	}
	if v.IsSet("cloudinary.upload_preset") {
		v.Set("cloudinary_upload_preset", v.GetString("cloudinary.upload_preset"))
	}

	// Reports section
	if v.IsSet("reports.generated_dir") {
		v.Set("generated_dir", v.GetString("reports.generated_dir"))
	}
	if v.IsSet("reports.worker_enabled") {
		v.Set("worker_enabled", v.GetBool("reports.worker_enabled"))
	}
	if v.IsSet("reports.render_timeout") {
		v.Set("render_timeout", v.GetString("reports.render_timeout"))
	}
	if v.IsSet("reports.generated_file_ttl") {
		v.Set("generated_file_ttl", v.GetString("reports.generated_file_ttl"))
	}
	if v.IsSet("reports.cleanup_schedule") {
		v.Set("cleanup_schedule", v.GetString("reports.cleanup_schedule"))
	}

	// Logging section
	if v.IsSet("logging.level") {
		v.Set("log_level", v.GetString("logging.level"))
	}
	if v.IsSet("logging.format") {
		v.Set("log_format", v.GetString("logging.format"))
	}

	// CORS section
	if v.IsSet("cors.origins") {
		v.Set("cors_origins", v.GetStringSlice("cors.origins"))
	}

	// Base Path
	if v.IsSet("basePath") {
		v.Set("basePath", v.GetString("basePath"))
	}
}

// PrintPrettyJSON takes any struct or map and prints it as pretty JSON
func PrintPrettyJSON(data interface{}) string {
	prettyJSON, err := json.MarshalIndent(data, "", "    ") // 4 spaces indent
	if err != nil {
		fmt.Println("Failed to generate JSON:", err)
		return ""
	}
	return string(prettyJSON)
}

// GenerateUUID returns a new UUID string
func GenerateUUID() string {
	return uuid.New().String()
}
