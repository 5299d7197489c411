// fieldbook/config/config.go
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// --- Sub-structs, mirroring the YAML layout ---

type ServerConfig struct {
	Port     string `mapstructure:"port" validate:"required,numeric"`
	LogLevel string `mapstructure:"logLevel"`
}

type MongoConfig struct {
	URI               string        `mapstructure:"uri" validate:"required"`
	DBName            string        `mapstructure:"dbName" validate:"required"`
	Collection        string        `mapstructure:"collection" validate:"required"`
	ConnectTimeout    time.Duration `mapstructure:"connectTimeout" validate:"gte=0"`
	ReconnectCooldown time.Duration `mapstructure:"reconnectCooldown" validate:"gte=0"`
}

type S3Config struct {
	Bucket           string `mapstructure:"bucket"`
	Region           string `mapstructure:"region" validate:"required_with=Bucket"`
	AccessKeyID      string `mapstructure:"accessKeyID"`
	SecretAccessKey  string `mapstructure:"secretAccessKey"`
	CloudFrontDomain string `mapstructure:"cloudFrontDomain"`
	ExportPrefix     string `mapstructure:"exportPrefix"`
}

// Enabled reports whether export uploads are configured.
func (c S3Config) Enabled() bool {
	return c.Bucket != ""
}

// --- Main Config struct ---

type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Mongo  MongoConfig  `mapstructure:"mongo"`
	S3     S3Config     `mapstructure:"s3"`
}

const (
	DefaultMongoURI   = "mongodb://localhost:27017/"
	DefaultDBName     = "football_field_management"
	DefaultCollection = "fields"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// LoadConfig reads config.yaml from path (optional) and overrides it with
// environment variables. A .env file in the working directory is loaded first.
func LoadConfig(path string) (config Config, err error) {
	// Missing .env is fine, the process environment is used as is.
	_ = godotenv.Load()

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	setDefaults(v)

	// Same variable names as the desktop app used, so existing .env files keep working.
	_ = v.BindEnv("mongo.uri", "MONGO_URI")
	_ = v.BindEnv("mongo.dbName", "DB_NAME")
	_ = v.BindEnv("mongo.collection", "COLLECTION_NAME")
	_ = v.BindEnv("mongo.connectTimeout", "MONGO_CONNECT_TIMEOUT")
	_ = v.BindEnv("mongo.reconnectCooldown", "MONGO_RECONNECT_COOLDOWN")
	_ = v.BindEnv("server.port", "SERVER_PORT")
	_ = v.BindEnv("server.logLevel", "LOG_LEVEL")
	_ = v.BindEnv("s3.bucket", "S3_BUCKET")
	_ = v.BindEnv("s3.region", "S3_REGION")
	_ = v.BindEnv("s3.accessKeyID", "S3_ACCESS_KEY_ID")
	_ = v.BindEnv("s3.secretAccessKey", "S3_SECRET_ACCESS_KEY")
	_ = v.BindEnv("s3.cloudFrontDomain", "S3_CLOUDFRONT_DOMAIN")
	_ = v.BindEnv("s3.exportPrefix", "S3_EXPORT_PREFIX")

	// Without a config file only defaults and environment variables apply.
	if err = v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return config, fmt.Errorf("read config: %w", err)
		}
		err = nil
	}

	if err = v.Unmarshal(&config); err != nil {
		return config, fmt.Errorf("decode config: %w", err)
	}

	if err = config.Validate(); err != nil {
		return config, err
	}
	return config, nil
}

// Validate checks the struct tags of the loaded configuration.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.logLevel", "info")
	v.SetDefault("mongo.uri", DefaultMongoURI)
	v.SetDefault("mongo.dbName", DefaultDBName)
	v.SetDefault("mongo.collection", DefaultCollection)
	v.SetDefault("mongo.connectTimeout", 10*time.Second)
	v.SetDefault("mongo.reconnectCooldown", 2*time.Second)
	v.SetDefault("s3.exportPrefix", "exports")
}
