// config/config.go
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// --- Sub-structs mirroring the YAML layout ---

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allowOrigins"`
}

type MongoConfig struct {
	URI     string        `mapstructure:"uri"`
	DBName  string        `mapstructure:"dbName"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// StoreConfig selects the document store backend: "mongo" or "memory".
type StoreConfig struct {
	Driver string `mapstructure:"driver"`
}

type JWTConfig struct {
	Secret     string `mapstructure:"secret"`
	Expiration string `mapstructure:"expiration"`
}

// TTL parses Expiration as a Go duration such as "30m".
func (c JWTConfig) TTL() (time.Duration, error) {
	d, err := time.ParseDuration(c.Expiration)
	if err != nil {
		return 0, fmt.Errorf("jwt.expiration: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("jwt.expiration must be positive, got %s", d)
	}
	return d, nil
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type DatasetConfig struct {
	Dir         string `mapstructure:"dir"`
	SeedOnStart bool   `mapstructure:"seedOnStart"`
}

type S3Config struct {
	Bucket          string `mapstructure:"bucket"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"accessKeyID"`
	SecretAccessKey string `mapstructure:"secretAccessKey"`
	Prefix          string `mapstructure:"prefix"`
	Endpoint        string `mapstructure:"endpoint"`
}

type WebSocketConfig struct {
	PongWait time.Duration `mapstructure:"pongWait"`
}

// --- Root config ---

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Mongo     MongoConfig     `mapstructure:"mongo"`
	Store     StoreConfig     `mapstructure:"store"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Log       LogConfig       `mapstructure:"log"`
	Dataset   DatasetConfig   `mapstructure:"dataset"`
	S3        S3Config        `mapstructure:"s3"`
	WebSocket WebSocketConfig `mapstructure:"websocket"`
}

// LoadConfig reads config.yaml from path and overlays environment variables.
// A missing file is not an error; env and defaults are used instead.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetDefault("server.port", "8000")
	v.SetDefault("server.mode", "release")
	v.SetDefault("cors.allowOrigins", []string{"*"})
	v.SetDefault("mongo.dbName", "ChemnitzFacilities")
	v.SetDefault("mongo.timeout", "10s")
	v.SetDefault("store.driver", "mongo")
	v.SetDefault("jwt.expiration", "30m")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("websocket.pongWait", "60s")

	// "mongo.uri" in YAML maps to MONGO_URI, and so on.
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	bindings := map[string]string{
		"server.port":         "SERVER_PORT",
		"server.mode":         "SERVER_MODE",
		"cors.allowOrigins":   "CORS_ALLOW_ORIGINS",
		"mongo.uri":           "MONGO_URI",
		"mongo.dbName":        "MONGO_DBNAME",
		"mongo.timeout":       "MONGO_TIMEOUT",
		"store.driver":        "STORE_DRIVER",
		"jwt.secret":          "JWT_SECRET",
		"jwt.expiration":      "JWT_EXPIRATION",
		"log.level":           "LOG_LEVEL",
		"log.format":          "LOG_FORMAT",
		"dataset.dir":         "DATASET_DIR",
		"dataset.seedOnStart": "DATASET_SEED_ON_START",
		"s3.bucket":           "S3_BUCKET",
		"s3.region":           "S3_REGION",
		"s3.accessKeyID":      "S3_ACCESS_KEY_ID",
		"s3.secretAccessKey":  "S3_SECRET_ACCESS_KEY",
		"s3.prefix":           "S3_PREFIX",
		"s3.endpoint":         "S3_ENDPOINT",
		"websocket.pongWait":  "WEBSOCKET_PONG_WAIT",
	}
	for key, env := range bindings {
		if err = v.BindEnv(key, env); err != nil {
			return
		}
	}

	if err = v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return
		}
		err = nil
	}

	if err = v.Unmarshal(&config); err != nil {
		return
	}

	err = config.Validate()
	return
}

// Validate rejects configurations the server cannot start with.
func (c Config) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("jwt.secret is required")
	}
	if _, err := c.JWT.TTL(); err != nil {
		return err
	}
	if c.WebSocket.PongWait <= 0 {
		return fmt.Errorf("websocket.pongWait must be positive, got %s", c.WebSocket.PongWait)
	}
	switch c.Store.Driver {
	case "mongo":
		if c.Mongo.URI == "" {
			return errors.New("mongo.uri is required when store.driver is mongo")
		}
	case "memory":
	default:
		return fmt.Errorf("store.driver must be mongo or memory, got %q", c.Store.Driver)
	}
	return nil
}
