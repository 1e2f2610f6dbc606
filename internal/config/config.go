package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	S3        S3Config        `mapstructure:"s3"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	MFA       MFAConfig       `mapstructure:"mfa"`
	Payment   PaymentConfig   `mapstructure:"payment"`
	Notifier  NotifierConfig  `mapstructure:"notifier"`
	GenAI     GenAIConfig     `mapstructure:"genai"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	LogMode   string          `mapstructure:"log_mode"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

type DatabaseConfig struct {
	URI  string `mapstructure:"uri"`
	Name string `mapstructure:"name"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	BucketName      string `mapstructure:"bucket_name"`
	UseSSL          bool   `mapstructure:"use_ssl"`
}

// JWTConfig defines JWT specific configuration
type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Expiration time.Duration `mapstructure:"expiration"`
}

// MFAConfig defines the challenge contract: code length is fixed at six
// digits; TTL and trust duration are tunable.
type MFAConfig struct {
	ChallengeTTL time.Duration `mapstructure:"challenge_ttl"`
	DeviceTrust  time.Duration `mapstructure:"device_trust"`
}

type PaymentConfig struct {
	Mode string `mapstructure:"mode"` // "sandbox" or a gateway name
}

type NotifierConfig struct {
	ResendAPIKey string `mapstructure:"resend_api_key"`
	FromAddress  string `mapstructure:"from_address"`
}

type GenAIConfig struct {
	Endpoint string        `mapstructure:"endpoint"`
	APIKey   string        `mapstructure:"api_key"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// SchedulerConfig drives the stall-reminder job.
type SchedulerConfig struct {
	CronSpec   string        `mapstructure:"cron_spec"`
	StallAfter time.Duration `mapstructure:"stall_after"`
	Enabled    bool          `mapstructure:"enabled"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Environment variables override the file, e.g. server.address ->
	// SERVER_ADDRESS, jwt.expiration -> JWT_EXPIRATION.
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	viper.SetDefault("server.address", ":8080")
	viper.SetDefault("database.uri", "mongodb://localhost:27017")
	viper.SetDefault("database.name", "peakform")
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("s3.use_ssl", true)
	viper.SetDefault("jwt.expiration", "1h")
	viper.SetDefault("mfa.challenge_ttl", "5m")
	viper.SetDefault("mfa.device_trust", "720h")
	viper.SetDefault("payment.mode", "sandbox")
	viper.SetDefault("genai.timeout", "30s")
	viper.SetDefault("scheduler.cron_spec", "@hourly")
	viper.SetDefault("scheduler.stall_after", "72h")
	viper.SetDefault("scheduler.enabled", true)
	viper.SetDefault("log_mode", "dev")

	err = viper.ReadInConfig()
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		// Config file not found; rely on defaults and env vars.
		err = nil
	} else if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	if err != nil {
		return
	}

	return config, nil
}
