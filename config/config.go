// Package config reads the engine's environment-driven configuration
// surface: every runtime tunable the replication, prediction, and
// timesync layers need to agree on across peers.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultTickDuration is the fixed-update step length.
	DefaultTickDuration = 50 * time.Millisecond
	// DefaultSendInterval is the minimum wall-clock time between
	// replication flushes of a group.
	DefaultSendInterval = 50 * time.Millisecond
	// DefaultServerSendInterval seeds interpolation delay sizing before a
	// peer's own declared interval is known.
	DefaultServerSendInterval = 50 * time.Millisecond
	// DefaultInputDelayTicks is how far ahead of the current tick inputs
	// are produced.
	DefaultInputDelayTicks = 2
	// DefaultMaxRollbackTicks caps prediction rollback depth.
	DefaultMaxRollbackTicks = 32
	// DefaultInterpolationDelayTicks adds extra delay to the render timeline.
	DefaultInterpolationDelayTicks = 2
	// DefaultBandwidthCapBytesPerSecond is the per-peer send quota; zero disables it.
	DefaultBandwidthCapBytesPerSecond = 0
	// DefaultPingInterval controls RTT measurement cadence.
	DefaultPingInterval = 1 * time.Second
	// DefaultMaxTimeScaleDeviation bounds the nudge speed-up/slow-down.
	DefaultMaxTimeScaleDeviation = 0.05
	// DefaultHardResyncThresholdTicks is when to snap rather than nudge.
	DefaultHardResyncThresholdTicks = 30
	// DefaultMutateStabilityK is the number of consecutive watermark
	// advances required before inferring an unchanged confirmed value.
	DefaultMutateStabilityK = 3

	// DefaultLogLevel controls engine log verbosity.
	DefaultLogLevel = "info"
	// DefaultLogPath is where structured logs are written; empty means stderr.
	DefaultLogPath = ""
)

// Config captures every runtime tunable from configuration
// surface table.
type Config struct {
	TickDuration             time.Duration
	SendInterval             time.Duration
	ServerSendInterval       time.Duration
	InputDelayTicks          int
	MaxRollbackTicks         int
	InterpolationDelayTicks  int
	BandwidthCapBytesPerSec  int64
	PingInterval             time.Duration
	MaxTimeScaleDeviation    float64
	HardResyncThresholdTicks int32
	MutateStabilityK         int

	Logging LoggingConfig
}

// LoggingConfig captures structured logging options.
type LoggingConfig struct {
	Level string
	Path  string
}

// Load reads the engine configuration from environment variables,
// applying defaults and collecting descriptive errors for invalid
// overrides rather than failing on the first one.
func Load() (*Config, error) {
	cfg := &Config{
		TickDuration:             DefaultTickDuration,
		SendInterval:             DefaultSendInterval,
		ServerSendInterval:       DefaultServerSendInterval,
		InputDelayTicks:          DefaultInputDelayTicks,
		MaxRollbackTicks:         DefaultMaxRollbackTicks,
		InterpolationDelayTicks:  DefaultInterpolationDelayTicks,
		BandwidthCapBytesPerSec:  DefaultBandwidthCapBytesPerSecond,
		PingInterval:             DefaultPingInterval,
		MaxTimeScaleDeviation:    DefaultMaxTimeScaleDeviation,
		HardResyncThresholdTicks: DefaultHardResyncThresholdTicks,
		MutateStabilityK:         DefaultMutateStabilityK,
		Logging: LoggingConfig{
			Level: getString("REPLICORE_LOG_LEVEL", DefaultLogLevel),
			Path:  getString("REPLICORE_LOG_PATH", DefaultLogPath),
		},
	}

	var problems []string

	setDuration(&problems, "REPLICORE_TICK_DURATION", &cfg.TickDuration)
	setDuration(&problems, "REPLICORE_SEND_INTERVAL", &cfg.SendInterval)
	setDuration(&problems, "REPLICORE_SERVER_SEND_INTERVAL", &cfg.ServerSendInterval)
	setDuration(&problems, "REPLICORE_PING_INTERVAL", &cfg.PingInterval)

	setInt(&problems, "REPLICORE_INPUT_DELAY_TICKS", &cfg.InputDelayTicks)
	setInt(&problems, "REPLICORE_MAX_ROLLBACK_TICKS", &cfg.MaxRollbackTicks)
	setInt(&problems, "REPLICORE_INTERPOLATION_DELAY_TICKS", &cfg.InterpolationDelayTicks)
	setInt(&problems, "REPLICORE_MUTATE_STABILITY_K", &cfg.MutateStabilityK)

	if raw := strings.TrimSpace(os.Getenv("REPLICORE_BANDWIDTH_CAP_BYTES_PER_S")); raw != "" {
		value, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || value < 0 {
			problems = append(problems, fmt.Sprintf("REPLICORE_BANDWIDTH_CAP_BYTES_PER_S must be a non-negative integer, got %q", raw))
		} else {
			cfg.BandwidthCapBytesPerSec = value
		}
	}

	if raw := strings.TrimSpace(os.Getenv("REPLICORE_MAX_TIME_SCALE_DEVIATION")); raw != "" {
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil || value <= 0 || value >= 1 {
			problems = append(problems, fmt.Sprintf("REPLICORE_MAX_TIME_SCALE_DEVIATION must be in (0,1), got %q", raw))
		} else {
			cfg.MaxTimeScaleDeviation = value
		}
	}

	if raw := strings.TrimSpace(os.Getenv("REPLICORE_HARD_RESYNC_THRESHOLD_TICKS")); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil || value <= 0 {
			problems = append(problems, fmt.Sprintf("REPLICORE_HARD_RESYNC_THRESHOLD_TICKS must be a positive integer, got %q", raw))
		} else {
			cfg.HardResyncThresholdTicks = int32(value)
		}
	}

	if len(problems) > 0 {
		return nil, fmt.Errorf(strings.Join(problems, "; "))
	}
	return cfg, nil
}

func setDuration(problems *[]string, key string, dst *time.Duration) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return
	}
	value, err := time.ParseDuration(raw)
	if err != nil || value <= 0 {
		*problems = append(*problems, fmt.Sprintf("%s must be a positive duration, got %q", key, raw))
		return
	}
	*dst = value
}

func setInt(problems *[]string, key string, dst *int) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		*problems = append(*problems, fmt.Sprintf("%s must be a non-negative integer, got %q", key, raw))
		return
	}
	*dst = value
}

func getString(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}
