package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configs/config.yaml, merges configs/config.<APP_ENVIRONMENT>.yaml
// on top, expands ${VAR} placeholders and applies the legacy env overrides.
func Load() (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // optional

	return finish(v)
}

// LoadFromFile reads a single yaml file. Used by the tools and tests.
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return finish(v)
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	overrideEmptyConfig(&cfg)
	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func loadEnvFile() {
	possiblePaths := []string{".env", "../.env", "../../.env"}
	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			if expanded := os.ExpandEnv(strVal); expanded != strVal {
				v.Set(key, expanded)
			}
		}
	}
}

// overrideEmptyConfig keeps the environment variable names the bot was
// originally deployed with working.
func overrideEmptyConfig(cfg *Config) {
	setIfEmpty(&cfg.APIs.CLU.APIKey, "COGNITIVE_SERVICES_KEY")
	setIfEmpty(&cfg.APIs.CLU.ProjectName, "PROJECT_NAME")
	setIfEmpty(&cfg.APIs.CLU.DeploymentName, "DEPLOYMENT_NAME")
	setIfEmpty(&cfg.APIs.CLU.Endpoint, "CLU_ENDPOINT")

	setIfEmpty(&cfg.Database.Postgres.Host, "DB_SERVER")
	setIfEmpty(&cfg.Database.Postgres.Database, "DB_DATABASE")
	setIfEmpty(&cfg.Database.Postgres.User, "DB_USERNAME")
	setIfEmpty(&cfg.Database.Postgres.Password, "DB_PASSWORD")
	if !cfg.Database.Postgres.Debug && strings.EqualFold(os.Getenv("DEBUG_DB"), "true") {
		cfg.Database.Postgres.Debug = true
	}

	setIfEmpty(&cfg.Database.Redis.Address, "REDIS_ADDRESS")
	setIfEmpty(&cfg.Notifications.SNS.TopicARN, "ORDER_EVENTS_TOPIC_ARN")
}

func setIfEmpty(dst *string, envKey string) {
	if *dst != "" {
		return
	}
	if val := os.Getenv(envKey); val != "" {
		*dst = val
	}
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "order-chatbot"
	}

	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8080"
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = 15000
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 10000
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 20000
	}

	if cfg.Database.Postgres.Port == 0 {
		cfg.Database.Postgres.Port = 5432
	}
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 25
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}

	if cfg.Session.Backend == "" {
		cfg.Session.Backend = SessionBackendMemory
	}
	if cfg.Session.TTL == 0 {
		cfg.Session.TTL = 1800
	}
	if cfg.Session.KeyPrefix == "" {
		cfg.Session.KeyPrefix = "chat:session:"
	}

	if cfg.FAQ.Backend == "" {
		cfg.FAQ.Backend = FAQBackendPostgres
	}
	if cfg.FAQ.Index == "" {
		cfg.FAQ.Index = "faq"
	}

	if cfg.APIs.CLU.APIVersion == "" {
		cfg.APIs.CLU.APIVersion = "2024-11-15-preview"
	}
	if cfg.APIs.CLU.ProjectName == "" {
		cfg.APIs.CLU.ProjectName = "chatbot-final"
	}
	if cfg.APIs.CLU.DeploymentName == "" {
		cfg.APIs.CLU.DeploymentName = "ChatbotEcomerce"
	}
	if cfg.APIs.CLU.Language == "" {
		cfg.APIs.CLU.Language = "es"
	}
	if cfg.APIs.CLU.Timeout == 0 {
		cfg.APIs.CLU.Timeout = 10000
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

func validateConfig(cfg *Config) error {
	if cfg.Database.Postgres.Host == "" {
		return fmt.Errorf("database.postgres.host is required")
	}
	if cfg.Database.Postgres.Database == "" {
		return fmt.Errorf("database.postgres.database is required")
	}
	if cfg.Database.Postgres.User == "" {
		return fmt.Errorf("database.postgres.user is required")
	}
	if cfg.APIs.CLU.Endpoint == "" {
		return fmt.Errorf("apis.clu.endpoint is required")
	}

	switch cfg.Session.Backend {
	case SessionBackendMemory:
	case SessionBackendRedis:
		if cfg.Database.Redis.Address == "" {
			return fmt.Errorf("database.redis.address is required for the redis session backend")
		}
	default:
		return fmt.Errorf("unknown session.backend %q", cfg.Session.Backend)
	}

	switch cfg.FAQ.Backend {
	case FAQBackendPostgres:
	case FAQBackendElasticsearch:
		if len(cfg.Database.Elasticsearch.GetAddresses()) == 0 {
			return fmt.Errorf("database.elasticsearch.addresses or url is required for the elasticsearch faq backend")
		}
	default:
		return fmt.Errorf("unknown faq.backend %q", cfg.FAQ.Backend)
	}

	if cfg.Notifications.SNS.Enabled && cfg.Notifications.SNS.TopicARN == "" {
		return fmt.Errorf("notifications.sns.topic_arn is required when sns is enabled")
	}
	return nil
}

func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
