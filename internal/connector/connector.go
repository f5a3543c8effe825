// Package connector holds the plugin-connector stub for the test ledger.
// It stores validated connection parameters; the protocol itself is not
// implemented here.
package connector

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	lkerrors "ledgerkit/internal/errors"
	"ledgerkit/internal/ledger"
)

const (
	// DefaultRPCHTTPPort is the JSON-RPC HTTP port exposed by the ledger image.
	DefaultRPCHTTPPort = 8545

	// DefaultRPCWSPort is the JSON-RPC WebSocket port exposed by the ledger image.
	DefaultRPCWSPort = 8546
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Config bundles everything the connector needs to reach a ledger node.
type Config struct {
	InstanceID      string `validate:"required"`
	RPCHTTPEndpoint string `validate:"required,url"`
	RPCWSEndpoint   string `validate:"required,url"`
}

// Connector is a configuration-only stub. It will eventually speak the
// ledger's RPC protocol; today it only records where that node lives.
type Connector struct {
	cfg Config
}

// New validates the configuration and returns a connector around it.
func New(cfg Config) (*Connector, error) {
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %s", lkerrors.ErrConfigInvalid, err)
	}
	return &Connector{cfg: cfg}, nil
}

// FromLedger derives a connector configuration from a ready ledger handle,
// resolving the node's address through the runtime. Ports outside 1-65535
// fall back to the defaults.
func FromLedger(ctx context.Context, l *ledger.Ledger, httpPort, wsPort int) (*Connector, error) {
	if httpPort <= 0 || httpPort > 65535 {
		httpPort = DefaultRPCHTTPPort
	}
	if wsPort <= 0 || wsPort > 65535 {
		wsPort = DefaultRPCWSPort
	}

	ipAddress, err := l.ContainerIPAddress(ctx)
	if err != nil {
		return nil, err
	}

	return New(Config{
		InstanceID:      uuid.New().String(),
		RPCHTTPEndpoint: fmt.Sprintf("http://%s:%d", ipAddress, httpPort),
		RPCWSEndpoint:   fmt.Sprintf("ws://%s:%d", ipAddress, wsPort),
	})
}

// Config returns a copy of the stored configuration.
func (c *Connector) Config() Config {
	return c.cfg
}
