package manifest

// Manifest is the root object that holds the entire configuration for a
// ledgerkit run. It's populated by parsing the user's ledgerkit.yaml file.
type Manifest struct {
	APIVersion string   `yaml:"apiVersion" validate:"required"`
	Kind       string   `yaml:"kind" validate:"required,eq=TestLedger"`
	Metadata   Metadata `yaml:"metadata" validate:"required"`
	Spec       Spec     `yaml:"spec" validate:"required"`
}

// Metadata contains run-level metadata.
type Metadata struct {
	Name        string            `yaml:"name" validate:"required"`
	Description string            `yaml:"description"`
	Labels      map[string]string `yaml:"labels,omitempty"`
}

// Spec contains the detailed specifications for the test ledger and its
// connector.
type Spec struct {
	Ledger    LedgerSpec    `yaml:"ledger" validate:"required"`
	Connector ConnectorSpec `yaml:"connector"`
}

// LedgerSpec configures the containerized ledger node. Empty image or tag
// fall back to the built-in defaults.
type LedgerSpec struct {
	Image        string   `yaml:"image"`
	Tag          string   `yaml:"tag"`
	Env          []string `yaml:"env,omitempty"`
	EmitLogs     *bool    `yaml:"emitLogs,omitempty"`
	LogLevel     string   `yaml:"logLevel" validate:"omitempty,oneof=debug info warn error"`
	StartTimeout string   `yaml:"startTimeout"`
	NetworkName  string   `yaml:"networkName"`
}

// ConnectorSpec configures the plugin connector stub that will later talk
// to the ledger's RPC endpoints.
type ConnectorSpec struct {
	RPCHTTPPort int `yaml:"rpcHttpPort" validate:"omitempty,min=1,max=65535"`
	RPCWSPort   int `yaml:"rpcWsPort" validate:"omitempty,min=1,max=65535"`
}
