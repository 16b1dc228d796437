package config

import (
	"fmt"
	"math/big"
	"time"

	"github.com/spf13/viper"
)

// Config represents the indexer application configuration
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Ethereum    EthereumConfig    `mapstructure:"ethereum"`
	Indexer     IndexerConfig     `mapstructure:"indexer"`
	Competition CompetitionConfig `mapstructure:"competition"`
	Monitoring  MonitoringConfig  `mapstructure:"monitoring"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

// ServerConfig contains HTTP server settings for health and metrics endpoints
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// DatabaseConfig contains database connection settings
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"ssl_mode"`
}

// EthereumConfig contains chain client settings
type EthereumConfig struct {
	RPCURL              string        `mapstructure:"rpc_url"`
	ChainID             int64         `mapstructure:"chain_id"`
	PrivateKey          string        `mapstructure:"private_key"`
	GasLimit            uint64        `mapstructure:"gas_limit"`
	MaxGasPrice         string        `mapstructure:"max_gas_price"`
	RequestTimeout      time.Duration `mapstructure:"request_timeout"`
	ReceiptPollInterval time.Duration `mapstructure:"receipt_poll_interval"`
	ReceiptTimeout      time.Duration `mapstructure:"receipt_timeout"`
}

// SourceConfig identifies one tracked token-factory deployment
type SourceConfig struct {
	Address    string `mapstructure:"address"`
	StartBlock uint64 `mapstructure:"start_block"`
}

// IndexerConfig contains sweep loop settings
type IndexerConfig struct {
	Sources          []SourceConfig `mapstructure:"sources"`
	WindowBlocks     uint64         `mapstructure:"window_blocks"`
	SubrangeBlocks   uint64         `mapstructure:"subrange_blocks"`
	FetchConcurrency int            `mapstructure:"fetch_concurrency"`
	IdleInterval     time.Duration  `mapstructure:"idle_interval"`
	RetryInterval    time.Duration  `mapstructure:"retry_interval"`
	MetadataTimeout  time.Duration  `mapstructure:"metadata_timeout"`
	TokenDecimals    int            `mapstructure:"token_decimals"`
}

// CompetitionConfig contains competition scheduler settings
type CompetitionConfig struct {
	Enabled             bool          `mapstructure:"enabled"`
	Source              string        `mapstructure:"source"`
	CheckInterval       time.Duration `mapstructure:"check_interval"`
	IntervalDays        int           `mapstructure:"interval_days"`
	CollateralThreshold string        `mapstructure:"collateral_threshold"`
	BoundaryJitter      time.Duration `mapstructure:"boundary_jitter"`
	MaxRetries          int           `mapstructure:"max_retries"`
	RetryDelay          time.Duration `mapstructure:"retry_delay"`
}

// MonitoringConfig contains monitoring and metrics settings
type MonitoringConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)

	// Database defaults
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.ssl_mode", "disable")
	viper.SetDefault("database.database", "launchpad")

	// Ethereum defaults
	viper.SetDefault("ethereum.gas_limit", 500000)
	viper.SetDefault("ethereum.request_timeout", "30s")
	viper.SetDefault("ethereum.receipt_poll_interval", "3s")
	viper.SetDefault("ethereum.receipt_timeout", "3m")

	// Indexer defaults
	viper.SetDefault("indexer.window_blocks", 1000)
	viper.SetDefault("indexer.subrange_blocks", 100)
	viper.SetDefault("indexer.fetch_concurrency", 8)
	viper.SetDefault("indexer.idle_interval", "5s")
	viper.SetDefault("indexer.retry_interval", "30s")
	viper.SetDefault("indexer.metadata_timeout", "10s")
	viper.SetDefault("indexer.token_decimals", 18)

	// Competition defaults
	viper.SetDefault("competition.enabled", false)
	viper.SetDefault("competition.check_interval", "1m")
	viper.SetDefault("competition.interval_days", 1)
	viper.SetDefault("competition.boundary_jitter", "30m")
	viper.SetDefault("competition.max_retries", 3)
	viper.SetDefault("competition.retry_delay", "15s")

	// Monitoring defaults
	viper.SetDefault("monitoring.enabled", true)

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.output_path", "stdout")
}

func validate(config *Config) error {
	if config.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if config.Ethereum.RPCURL == "" {
		return fmt.Errorf("ethereum.rpc_url is required")
	}
	if len(config.Indexer.Sources) == 0 {
		return fmt.Errorf("indexer.sources is required")
	}
	for i, src := range config.Indexer.Sources {
		if src.Address == "" {
			return fmt.Errorf("indexer.sources[%d].address is required", i)
		}
		if src.StartBlock == 0 {
			return fmt.Errorf("indexer.sources[%d].start_block is required", i)
		}
	}
	if config.Indexer.WindowBlocks == 0 || config.Indexer.SubrangeBlocks == 0 {
		return fmt.Errorf("indexer.window_blocks and indexer.subrange_blocks must be positive")
	}
	if config.Competition.Enabled {
		if config.Competition.Source == "" {
			return fmt.Errorf("competition.source is required when competition.enabled")
		}
		if config.Ethereum.PrivateKey == "" {
			return fmt.Errorf("ethereum.private_key is required when competition.enabled")
		}
		if _, ok := new(big.Int).SetString(config.Competition.CollateralThreshold, 10); !ok {
			return fmt.Errorf("competition.collateral_threshold must be a base-10 integer")
		}
	}
	return nil
}

// Threshold returns the parsed collateral threshold. Validation guarantees it
// parses whenever the scheduler is enabled.
func (c *CompetitionConfig) Threshold() *big.Int {
	v, _ := new(big.Int).SetString(c.CollateralThreshold, 10)
	return v
}

// GetConnectionString returns a PostgreSQL connection string
func (c *DatabaseConfig) GetConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}
