package models

import "time"

// Config holds all configuration for the application
type Config struct {
	// Application
	AppName    string `mapstructure:"app_name"`
	AppVersion string `mapstructure:"app_version"`
	AppEnv     string `mapstructure:"app_env"`
	AppHost    string `mapstructure:"app_host"`
	AppPort    string `mapstructure:"app_port"`

	// Public base URL used when building download links for generated files
	AppBaseURL string `mapstructure:"app_base_url"`

	// AWS
	AWSRegion           string `mapstructure:"aws_region"`
	AWSAccessKeyID      string `mapstructure:"aws_access_key_id"`
	AWSSecretAccessKey  string `mapstructure:"aws_secret_access_key"`
	DynamoDBEndpoint    string `mapstructure:"dynamodb_endpoint"`
	DynamoDBTablePrefix string `mapstructure:"dynamodb_table_prefix"`

	// Redis (job status + render queue)
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`

	// Cloudinary (direct browser-to-storage photo uploads)
	CloudinaryCloudName    string `mapstructure:"cloudinary_cloud_name"`
	CloudinaryUploadPreset string `mapstructure:"cloudinary_upload_preset"`

	// Report generation
	GeneratedDir     string        `mapstructure:"generated_dir"`
	WorkerEnabled    bool          `mapstructure:"worker_enabled"`
	RenderTimeout    time.Duration `mapstructure:"render_timeout"`
	GeneratedFileTTL time.Duration `mapstructure:"generated_file_ttl"`
	CleanupSchedule  string        `mapstructure:"cleanup_schedule"`

	// Logging
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	// CORS
	CORSOrigins []string `mapstructure:"cors_origins"`

	// Base Path
	BasePath string `mapstructure:"basePath"`

	Tables []string `mapstructure:"tables"`
}
