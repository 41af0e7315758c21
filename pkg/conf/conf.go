// conf defines configuration file parsing for the water quality daemon
package conf

import (
	"errors"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type ConfigurationError struct {
	msg string
}

func (m *ConfigurationError) Error() string {
	return m.msg
}

type LogLevel string

const (
	ERROR   LogLevel = "error"
	WARNING LogLevel = "warning"
	INFO    LogLevel = "info"
	DEBUG   LogLevel = "debug"
)

const (
	DEFAULT_LISTEN_ADDRESS   = "127.0.0.1:5000"
	DEFAULT_CLEANED_CSV_PATH = "data/cleaned_output.csv"
	DEFAULT_Z_THRESHOLD      = 3.0
	DEFAULT_IQR_MULTIPLIER   = 1.5
	DEFAULT_LIMIT            = 100
	DEFAULT_MAX_LIMIT        = 1000
	DEFAULT_SHUTDOWN_TIMEOUT = 5
)

// Environment variables that take precedence over the configuration file
const (
	CSV_PATH_ENV       = "WQ_CSV_PATH"
	LISTEN_ADDRESS_ENV = "WQ_LISTEN_ADDRESS"
	LOG_LEVEL_ENV      = "WQ_LOG_LEVEL"
)

// DaemonConfiguration is the configuration of the ingest pipeline and the
// HTTP API serving the cleaned readings
type DaemonConfiguration struct {
	// CsvPath is the raw sensor CSV to ingest
	CsvPath string `yaml:"csvPath" validate:"required"`
	// CleanedCsvPath is where the cleaned dataset is written after the filtering pass
	CleanedCsvPath string `yaml:"cleanedCsvPath" validate:"required"`
	// WriteCleanedCsv whether or not to write the cleaned CSV artifact
	WriteCleanedCsv *bool `yaml:"writeCleanedCsv" validate:"required"`
	// SeedFromCleaned load the cleaned CSV instead of the raw CSV when it already exists
	SeedFromCleaned bool `yaml:"seedFromCleaned"`
	// ListenAddress is the host:port the API binds to
	ListenAddress string `yaml:"listenAddress" validate:"required,hostname_port"`
	// LogLevel verbosity of the logger
	LogLevel LogLevel `yaml:"logLevel" validate:"required,eq=error|eq=warning|eq=info|eq=debug"`
	// ZThreshold absolute z-score above which a value is an outlier
	ZThreshold float64 `yaml:"zThreshold" validate:"gt=0"`
	// IQRMultiplier fence multiplier used by the IQR method
	IQRMultiplier float64 `yaml:"iqrMultiplier" validate:"gt=0"`
	// CleanColumns numeric columns the cleaning pass applies the z-score filter to
	CleanColumns []string `yaml:"cleanColumns" validate:"required,min=1,dive,oneof=latitude longitude temperature_c salinity_ppt odo_mg_l"`
	// DefaultLimit page size used when a request does not specify one
	DefaultLimit int `yaml:"defaultLimit" validate:"gte=1,ltefield=MaxLimit"`
	// MaxLimit upper bound of the page size
	MaxLimit int `yaml:"maxLimit" validate:"gte=1"`
	// ShutdownTimeout number of seconds to wait for in-flight requests on shutdown
	ShutdownTimeout int `yaml:"shutdownTimeout" validate:"gte=1"`
}

// DefaultConfiguration returns a configuration for the given csv file with
// every other value set to its default
func DefaultConfiguration(csvPath string) *DaemonConfiguration {
	conf := &DaemonConfiguration{CsvPath: csvPath}
	applyDefaults(conf)
	return conf
}

func applyDefaults(c *DaemonConfiguration) {
	if c.CleanedCsvPath == "" {
		c.CleanedCsvPath = DEFAULT_CLEANED_CSV_PATH
	}

	if c.WriteCleanedCsv == nil {
		writeCleaned := true
		c.WriteCleanedCsv = &writeCleaned
	}

	if c.ListenAddress == "" {
		c.ListenAddress = DEFAULT_LISTEN_ADDRESS
	}

	if c.LogLevel == "" {
		c.LogLevel = INFO
	}

	if c.ZThreshold == 0 {
		c.ZThreshold = DEFAULT_Z_THRESHOLD
	}

	if c.IQRMultiplier == 0 {
		c.IQRMultiplier = DEFAULT_IQR_MULTIPLIER
	}

	if c.CleanColumns == nil {
		c.CleanColumns = []string{"latitude", "longitude", "temperature_c", "salinity_ppt", "odo_mg_l"}
	}

	if c.MaxLimit == 0 {
		c.MaxLimit = DEFAULT_MAX_LIMIT
	}

	if c.DefaultLimit == 0 {
		c.DefaultLimit = DEFAULT_LIMIT
	}

	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = DEFAULT_SHUTDOWN_TIMEOUT
	}
}

func applyEnvironment(c *DaemonConfiguration) {
	if csvPath, ok := os.LookupEnv(CSV_PATH_ENV); ok && csvPath != "" {
		c.CsvPath = csvPath
	}

	if address, ok := os.LookupEnv(LISTEN_ADDRESS_ENV); ok && address != "" {
		c.ListenAddress = address
	}

	if level, ok := os.LookupEnv(LOG_LEVEL_ENV); ok && level != "" {
		c.LogLevel = LogLevel(level)
	}
}

// ValidateDaemonConfiguration: validates the daemon configuration that is used.
func ValidateDaemonConfiguration(c *DaemonConfiguration) error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	err := validate.Struct(c)

	if err != nil {
		return &ConfigurationError{msg: err.Error()}
	}

	return nil
}

// LoadEnvFile loads variables from the given .env files into the process
// environment. Missing files are not an error.
func LoadEnvFile(filenames ...string) error {
	for _, filename := range filenames {
		err := godotenv.Load(filename)

		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}

	return nil
}

// ParseDaemonConfiguration parses the configuration file, applies defaults and
// environment overrides, and validates the result
func ParseDaemonConfiguration(filePath string) (*DaemonConfiguration, error) {
	var conf DaemonConfiguration

	yamlBytes, err := os.ReadFile(filePath)

	if err != nil {
		return nil, err
	}

	err = yaml.Unmarshal(yamlBytes, &conf)

	if err != nil {
		return nil, err
	}

	applyDefaults(&conf)
	applyEnvironment(&conf)

	return &conf, ValidateDaemonConfiguration(&conf)
}
