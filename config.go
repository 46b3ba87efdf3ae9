package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Config defines the structure of the configuration file.
type Config struct {
	GitCommit          string        `yaml:"git_commit" envconfig:"BCA_GIT_COMMIT"`
	GitTag             string        `yaml:"git_tag" envconfig:"BCA_GIT_TAG"`
	BuildTime          string        `yaml:"build_time" envconfig:"BCA_BUILD_TIME"`
	IsProduction       bool          `yaml:"is_production" envconfig:"BCA_IS_PRODUCTION"`
	LogLevel           zapcore.Level `yaml:"log_level" envconfig:"BCA_LOG_LEVEL"`
	LogFile            string        `yaml:"log_file" envconfig:"BCA_LOG_FILE"`
	OpsEndpointsEnable bool          `yaml:"ops_endpoints_enable" envconfig:"BCA_OPS_ENDPOINTS_ENABLE"`
	ProfilerEnable     bool          `yaml:"profiler_enable" envconfig:"BCA_PROFILER_ENABLE"`
	Server             ServerConfig  `yaml:"server"`
	Redis              RedisConfig   `yaml:"redis"`
	BoltDB             BoltDBConfig  `yaml:"boltdb"`
	Auth               AuthConfig    `yaml:"auth"`
	Media              MediaConfig   `yaml:"media"`
}

type ServerConfig struct {
	Host            string        `yaml:"host" envconfig:"BCA_SERVER_HOST"`
	Port            string        `yaml:"port" envconfig:"BCA_SERVER_PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"BCA_SERVER_READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"BCA_SERVER_WRITE_TIMEOUT"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"BCA_SERVER_REQUEST_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"BCA_SERVER_SHUTDOWN_TIMEOUT"`
}

type RedisConfig struct {
	Host          string        `yaml:"host" envconfig:"BCA_REDIS_HOST"`
	Port          string        `yaml:"port" envconfig:"BCA_REDIS_PORT"`
	DialTimeout   time.Duration `yaml:"dial_timeout" envconfig:"BCA_REDIS_DIAL_TIMEOUT"`
	ReadTimeout   time.Duration `yaml:"read_timeout" envconfig:"BCA_REDIS_READ_TIMEOUT"`
	WriteTimeout  time.Duration `yaml:"write_timeout" envconfig:"BCA_REDIS_WRITE_TIMEOUT"`
	PoolSize      int           `yaml:"pool_size" envconfig:"BCA_REDIS_POOL_SIZE"`
	PoolTimeout   time.Duration `yaml:"pool_timeout" envconfig:"BCA_REDIS_POOL_TIMEOUT"`
	Username      string        `yaml:"username" envconfig:"BCA_REDIS_USERNAME"`
	Password      string        `yaml:"password" envconfig:"BCA_REDIS_PASSWORD"`
	DatabaseIndex int           `yaml:"db_index" envconfig:"BCA_REDIS_DATABASE_INDEX"`
}

type BoltDBConfig struct {
	FilePath   string        `yaml:"filepath" envconfig:"BCA_BOLTDB_FILE_PATH"`
	Timeout    time.Duration `yaml:"timeout" envconfig:"BCA_BOLTDB_TIMEOUT"`
	BucketName string        `yaml:"bucket_name" envconfig:"BCA_BOLTDB_BUCKET_NAME"`
}

// AuthConfig drives sessions and role assignment. Usernames listed in
// admin_users receive the Admin role at registration time.
type AuthConfig struct {
	CookieName string        `yaml:"cookie_name" envconfig:"BCA_AUTH_COOKIE_NAME"`
	SessionTTL time.Duration `yaml:"session_ttl" envconfig:"BCA_AUTH_SESSION_TTL"`
	AdminUsers []string      `yaml:"admin_users" envconfig:"BCA_AUTH_ADMIN_USERS"`
}

// MediaConfig locates the folder receiving uploaded cover images.
type MediaConfig struct {
	Root string `yaml:"root" envconfig:"BCA_MEDIA_ROOT"`
}

// LoadConfigFile provides an instance of config structure for the all application.
func LoadConfigFile(configFile string) (*Config, error) {
	file, err := os.Open(configFile)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	cfg := &Config{}
	yd := yaml.NewDecoder(file)
	err = yd.Decode(cfg)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfigEnvs reads the environments variables and provides an instance of the App config.
func LoadConfigEnvs(prefix string, config *Config) error {
	return envconfig.Process(prefix, config)
}

// InitConfig setup defaults values for non provided parameters
// and configures build tags values to be used if provided.
func InitConfig(config *Config, gitCommit, gitTag, buildTime string) error {
	if len(gitCommit) != 0 {
		config.GitCommit = gitCommit
	}

	if len(gitTag) != 0 {
		config.GitTag = gitTag
	}

	if len(buildTime) != 0 {
		config.BuildTime = buildTime
	}

	if len(config.Server.Host) == 0 || len(config.Server.Port) == 0 {
		return errors.New("make sure to set valid server address and port in configuration file")
	}

	if len(config.Redis.Host) == 0 || len(config.Redis.Port) == 0 {
		return errors.New("make sure to set valid redis address and port in configuration file")
	}

	if config.Server.RequestTimeout <= 0 {
		config.Server.RequestTimeout = 60 * time.Second
	}

	if len(config.Auth.CookieName) == 0 {
		config.Auth.CookieName = "bca_session"
	}

	if config.Auth.SessionTTL <= 0 {
		config.Auth.SessionTTL = 24 * time.Hour
	}

	if len(config.Media.Root) == 0 {
		config.Media.Root = "media"
	}

	return nil
}

// LoadAndInitConfigs loads in order the configs from various predefined sources
// then build the App configuration data.
func LoadAndInitConfigs(gitCommit, gitTag, buildTime string) (*Config, error) {
	// Setup the yaml configuration from file.
	config, err := LoadConfigFile("./config.yml")
	if err != nil {
		return config, fmt.Errorf("failed to load configurations from file: %s", err)
	}

	// Set the environment configuration when a dotenv file is present.
	err = godotenv.Load("./config.env")
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return config, fmt.Errorf("failed to set environment configurations: %s", err)
	}

	// Use environment variables with prefix `BCA`.
	err = LoadConfigEnvs("BCA", config)
	if err != nil {
		return config, fmt.Errorf("failed to load configurations from environment: %s", err)
	}

	err = InitConfig(config, gitCommit, gitTag, buildTime)
	if err != nil {
		return config, fmt.Errorf("failed to initialize configurations: %s", err)
	}
	return config, nil
}
