package server

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/iwvelando/premium-forecast/internal/config"
	"github.com/iwvelando/premium-forecast/pkg/constants"
	"github.com/spf13/viper"
)

// Config holds the resolved settings of the serve command.
type Config struct {
	Address       string
	MaxUploadSize int64 // bytes
	Shutdown      time.Duration
	Logging       config.LoggingConfig
}

// serverFile mirrors the keys of the server config file. Sizes stay strings
// until ParseSize resolves them.
type serverFile struct {
	Address         string
	MaxUploadSize   string
	ShutdownTimeout time.Duration
	Logging         config.LoggingConfig
}

// LoadConfig reads the server config at path. An empty path or a missing file
// yields the defaults. Keys can be overridden from the environment, e.g.
// PREMIUM_SERVER_ADDRESS.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yml")
	v.SetEnvPrefix(constants.EnvPrefix + "_SERVER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetDefault("address", constants.DefaultServerAddress)
	v.SetDefault("maxUploadSize", "")
	v.SetDefault("shutdownTimeout", constants.DefaultShutdownTimeout)
	v.SetDefault("logging.level", "")
	v.SetDefault("logging.format", "")
	v.SetDefault("logging.outputFile", "")

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read server config: %w", err)
		default:
			if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
				return nil, fmt.Errorf("failed to parse server config: %w", err)
			}
		}
	}

	var file serverFile
	if err := v.Unmarshal(&file); err != nil {
		return nil, fmt.Errorf("failed to decode server config: %w", err)
	}

	size, err := ParseSize(file.MaxUploadSize)
	if err != nil {
		return nil, err
	}
	cfg := &Config{
		Address:       file.Address,
		MaxUploadSize: size,
		Shutdown:      file.ShutdownTimeout,
		Logging:       file.Logging,
	}
	if cfg.Address == "" {
		cfg.Address = constants.DefaultServerAddress
	}
	if cfg.MaxUploadSize <= 0 {
		cfg.MaxUploadSize = constants.DefaultMaxUploadSizeBytes
	}
	if cfg.Shutdown <= 0 {
		cfg.Shutdown = constants.DefaultShutdownTimeout
	}
	return cfg, nil
}

// Longer suffixes first so "MB" is not read as "M" followed by "B".
var sizeUnits = []struct {
	suffix string
	factor int64
}{
	{"KB", 1 << 10},
	{"MB", 1 << 20},
	{"GB", 1 << 30},
	{"K", 1 << 10},
	{"M", 1 << 20},
	{"G", 1 << 30},
	{"B", 1},
}

// ParseSize converts a byte count with an optional binary unit suffix, such as
// "256K" or "10MB", into bytes. An empty value yields the default upload size.
func ParseSize(value string) (int64, error) {
	s := strings.ToUpper(strings.TrimSpace(value))
	if s == "" {
		return constants.DefaultMaxUploadSizeBytes, nil
	}

	factor := int64(1)
	for _, unit := range sizeUnits {
		if strings.HasSuffix(s, unit.suffix) {
			s = strings.TrimSpace(strings.TrimSuffix(s, unit.suffix))
			factor = unit.factor
			break
		}
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid size %q", value)
	}
	if n > math.MaxInt64/factor {
		return 0, fmt.Errorf("size %q overflows", value)
	}
	return n * factor, nil
}
