package ledger

import (
	"log/slog"
	"time"
)

const (
	// DefaultImageName is the image used when no override is configured.
	DefaultImageName = "hyperledger/besu-all-in-one"

	// DefaultImageTag is the tag used when no override is configured.
	DefaultImageTag = "latest"

	// DefaultPollInterval is the fixed delay between health checks.
	DefaultPollInterval = time.Second
)

// Config is the immutable construction-time configuration of a Ledger.
type Config struct {
	ImageName string `validate:"required"`
	ImageTag  string `validate:"required,min=1"`

	// Env is the ordered KEY=VALUE sequence handed to the container
	// process. Duplicate keys are left to the runtime to resolve.
	Env []string

	// EmitLogs forwards container output to the local logger.
	EmitLogs bool

	// PollInterval is the delay between health checks.
	PollInterval time.Duration `validate:"gt=0"`

	// StartTimeout bounds the health wait. Zero keeps the historical
	// behavior of polling until the caller gives up.
	StartTimeout time.Duration

	// NetworkName selects the network used for IP lookups. Empty picks
	// the first network the runtime enumerates.
	NetworkName string

	Logger *slog.Logger
}

// Option mutates the Config during construction.
type Option func(*Config)

// WithImageName overrides the default image repository.
func WithImageName(name string) Option {
	return func(c *Config) {
		c.ImageName = name
	}
}

// WithImageTag overrides the default image tag. The tag must be non-empty;
// New rejects blank tags so an accidental empty version pin fails fast.
func WithImageTag(tag string) Option {
	return func(c *Config) {
		c.ImageTag = tag
	}
}

// WithEnv replaces the container environment sequence.
func WithEnv(env []string) Option {
	return func(c *Config) {
		c.Env = env
	}
}

// WithEmitLogs enables or disables forwarding of container output.
func WithEmitLogs(emit bool) Option {
	return func(c *Config) {
		c.EmitLogs = emit
	}
}

// WithPollInterval overrides the delay between health checks.
func WithPollInterval(interval time.Duration) Option {
	return func(c *Config) {
		c.PollInterval = interval
	}
}

// WithStartTimeout bounds how long Start waits for a healthy container.
func WithStartTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.StartTimeout = timeout
	}
}

// WithNetworkName selects which container network IP lookups resolve on.
func WithNetworkName(name string) Option {
	return func(c *Config) {
		c.NetworkName = name
	}
}

// WithLogger replaces the default slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

func defaultConfig() Config {
	return Config{
		ImageName: DefaultImageName,
		ImageTag:  DefaultImageTag,
		// A single empty entry, not an empty slice: the runtime treats the
		// two differently and existing images expect the former.
		Env:          []string{""},
		EmitLogs:     true,
		PollInterval: DefaultPollInterval,
		Logger:       slog.Default(),
	}
}
