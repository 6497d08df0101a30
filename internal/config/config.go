package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Store     StoreConfig
	Region    RegionConfig
	Tracking  TrackingConfig
	Dataset   DatasetConfig
	Analytics AnalyticsConfig
	Log       LogConfig
	Worker    WorkerConfig
}

type ServerConfig struct {
	Host        string
	Port        int
	Env         string
	CORSOrigins string // comma separated
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxConns        int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// StoreConfig selects where dynamic engine state is persisted.
type StoreConfig struct {
	Backend    string // memory | sqlite | redis | postgres
	SQLitePath string
	KeyPrefix  string
}

// RegionConfig describes the safe zone and the radii (meters) measured from its center.
type RegionConfig struct {
	BottomLeftLat        float64
	BottomLeftLon        float64
	TopRightLat          float64
	TopRightLon          float64
	CenterLat            float64
	CenterLon            float64
	BackgroundRadius     float64
	RecommendationRadius float64
	AlmostThereRadius    float64
	VisitRadius          float64
}

type TrackingConfig struct {
	ForegroundInterval time.Duration
	BackgroundInterval time.Duration
	PermissionTimeout  time.Duration
}

type DatasetConfig struct {
	// Path to a JSON bundle; empty means the embedded one.
	Path string
}

type AnalyticsConfig struct {
	Enabled        bool
	BaseURL        string
	Token          string
	RequestTimeout time.Duration
	BatchSize      int
	BatchInterval  time.Duration
	QueueSize      int
	UserID         string
}

type LogConfig struct {
	Level string
}

type WorkerConfig struct {
	Enabled           bool
	ConsumerGroup     string
	StreamReadTimeout time.Duration
	ShutdownTimeout   time.Duration
}

func Load() (*Config, error) {
	viper.AutomaticEnv()

	if _, err := os.Stat(".env"); err == nil {
		viper.SetConfigFile(".env")
		if err := viper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to stat config: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: viper.GetString("API_HOST"),
			Port: viper.GetInt("API_PORT"),
			Env:  viper.GetString("API_ENV"),

			CORSOrigins: viper.GetString("API_CORS_ORIGINS"),
		},
		Database: DatabaseConfig{
			Host:            viper.GetString("DB_HOST"),
			Port:            viper.GetInt("DB_PORT"),
			User:            viper.GetString("DB_USER"),
			Password:        viper.GetString("DB_PASSWORD"),
			DBName:          viper.GetString("DB_NAME"),
			SSLMode:         viper.GetString("DB_SSLMODE"),
			MaxConns:        viper.GetInt("DB_MAX_CONNS"),
			MaxIdleConns:    viper.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: time.Duration(viper.GetInt("DB_CONN_MAX_LIFETIME")) * time.Second,
			ConnMaxIdleTime: time.Duration(viper.GetInt("DB_CONN_MAX_IDLE_TIME")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetInt("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Store: StoreConfig{
			Backend:    strings.ToLower(viper.GetString("STORE_BACKEND")),
			SQLitePath: viper.GetString("STORE_SQLITE_PATH"),
			KeyPrefix:  viper.GetString("STORE_KEY_PREFIX"),
		},
		Region: RegionConfig{
			BottomLeftLat:        viper.GetFloat64("REGION_BOTTOM_LEFT_LAT"),
			BottomLeftLon:        viper.GetFloat64("REGION_BOTTOM_LEFT_LON"),
			TopRightLat:          viper.GetFloat64("REGION_TOP_RIGHT_LAT"),
			TopRightLon:          viper.GetFloat64("REGION_TOP_RIGHT_LON"),
			CenterLat:            viper.GetFloat64("REGION_CENTER_LAT"),
			CenterLon:            viper.GetFloat64("REGION_CENTER_LON"),
			BackgroundRadius:     viper.GetFloat64("REGION_BACKGROUND_RADIUS"),
			RecommendationRadius: viper.GetFloat64("REGION_RECOMMENDATION_RADIUS"),
			AlmostThereRadius:    viper.GetFloat64("REGION_ALMOST_THERE_RADIUS"),
			VisitRadius:          viper.GetFloat64("REGION_VISIT_RADIUS"),
		},
		Tracking: TrackingConfig{
			ForegroundInterval: time.Duration(viper.GetInt("TRACKING_FOREGROUND_INTERVAL_MS")) * time.Millisecond,
			BackgroundInterval: time.Duration(viper.GetInt("TRACKING_BACKGROUND_INTERVAL_MS")) * time.Millisecond,
			PermissionTimeout:  time.Duration(viper.GetInt("TRACKING_PERMISSION_TIMEOUT")) * time.Second,
		},
		Dataset: DatasetConfig{
			Path: viper.GetString("DATASET_PATH"),
		},
		Analytics: AnalyticsConfig{
			Enabled:        viper.GetBool("ANALYTICS_ENABLED"),
			BaseURL:        viper.GetString("ANALYTICS_BASE_URL"),
			Token:          viper.GetString("ANALYTICS_TOKEN"),
			RequestTimeout: time.Duration(viper.GetInt("ANALYTICS_REQUEST_TIMEOUT")) * time.Second,
			BatchSize:      viper.GetInt("ANALYTICS_BATCH_SIZE"),
			BatchInterval:  time.Duration(viper.GetInt("ANALYTICS_BATCH_INTERVAL_MS")) * time.Millisecond,
			QueueSize:      viper.GetInt("ANALYTICS_QUEUE_SIZE"),
			UserID:         viper.GetString("ANALYTICS_USER_ID"),
		},
		Log: LogConfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
		Worker: WorkerConfig{
			Enabled:           viper.GetBool("WORKER_ENABLED"),
			ConsumerGroup:     viper.GetString("WORKER_CONSUMER_GROUP"),
			StreamReadTimeout: time.Duration(viper.GetInt("WORKER_STREAM_READ_TIMEOUT")) * time.Millisecond,
			ShutdownTimeout:   time.Duration(viper.GetInt("WORKER_SHUTDOWN_TIMEOUT")) * time.Second,
		},
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults fills every zero value with the built-in default.
func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.Env == "" {
		c.Server.Env = "development"
	}
	if c.Server.CORSOrigins == "" {
		c.Server.CORSOrigins = "http://localhost:3000,http://localhost:5173"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}

	if c.Store.Backend == "" {
		c.Store.Backend = "sqlite"
	}
	if c.Store.SQLitePath == "" {
		c.Store.SQLitePath = "landmark-guide.db"
	}
	if c.Store.KeyPrefix == "" {
		c.Store.KeyPrefix = "guide"
	}

	// Poly Canyon, San Luis Obispo
	r := &c.Region
	if r.BottomLeftLat == 0 && r.BottomLeftLon == 0 && r.TopRightLat == 0 && r.TopRightLon == 0 {
		r.BottomLeftLat, r.BottomLeftLon = 35.30757, -120.65470
		r.TopRightLat, r.TopRightLon = 35.31681, -120.64750
	}
	if r.CenterLat == 0 && r.CenterLon == 0 {
		r.CenterLat = (r.BottomLeftLat + r.TopRightLat) / 2
		r.CenterLon = (r.BottomLeftLon + r.TopRightLon) / 2
	}
	if r.BackgroundRadius == 0 {
		r.BackgroundRadius = 2000
	}
	if r.RecommendationRadius == 0 {
		r.RecommendationRadius = 50000
	}
	if r.AlmostThereRadius == 0 {
		r.AlmostThereRadius = 600
	}
	if r.VisitRadius == 0 {
		r.VisitRadius = 25
	}

	if c.Tracking.ForegroundInterval == 0 {
		c.Tracking.ForegroundInterval = time.Second
	}
	if c.Tracking.BackgroundInterval == 0 {
		c.Tracking.BackgroundInterval = 30 * time.Second
	}
	if c.Tracking.PermissionTimeout == 0 {
		c.Tracking.PermissionTimeout = 2 * time.Minute
	}

	if c.Analytics.RequestTimeout == 0 {
		c.Analytics.RequestTimeout = 10 * time.Second
	}
	if c.Analytics.BatchSize == 0 {
		c.Analytics.BatchSize = 20
	}
	if c.Analytics.BatchInterval == 0 {
		c.Analytics.BatchInterval = 5000 * time.Millisecond
	}
	if c.Analytics.QueueSize == 0 {
		c.Analytics.QueueSize = 256
	}

	if c.Worker.ConsumerGroup == "" {
		c.Worker.ConsumerGroup = "landmark-fix-workers"
	}
	if c.Worker.StreamReadTimeout == 0 {
		c.Worker.StreamReadTimeout = 5000 * time.Millisecond
	}
	if c.Worker.ShutdownTimeout == 0 {
		c.Worker.ShutdownTimeout = 30 * time.Second
	}
}

// Validate rejects configurations the engine cannot run with.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case "memory", "sqlite", "redis", "postgres":
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}

	if c.Region.BackgroundRadius < 0 || c.Region.VisitRadius < 0 {
		return fmt.Errorf("region radii must be non-negative")
	}

	if c.Tracking.ForegroundInterval <= 0 || c.Tracking.BackgroundInterval <= 0 || c.Tracking.PermissionTimeout <= 0 {
		return fmt.Errorf("tracking intervals must be positive")
	}

	if c.Analytics.BatchInterval <= 0 || c.Analytics.RequestTimeout <= 0 {
		return fmt.Errorf("analytics intervals must be positive")
	}
	if c.Analytics.BatchSize <= 0 || c.Analytics.QueueSize <= 0 {
		return fmt.Errorf("analytics batch and queue sizes must be positive")
	}

	if c.Analytics.Enabled && c.Analytics.BaseURL == "" {
		return fmt.Errorf("ANALYTICS_BASE_URL is required when analytics is enabled")
	}

	return nil
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
		c.Database.SSLMode,
	)
}

func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}
