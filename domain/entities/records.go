package entities

// WalletRecord is one record in the agent wallet's non-secret store.
type WalletRecord struct {
	// Tags are searchable record annotations. Keys prefixed with "~" are
	// stored unencrypted and usable in search queries.
	Tags map[string]string `json:"tags,omitempty"`

	// Type groups records into namespaces.
	Type string `json:"type" validate:"required"`

	// ID identifies the record within its type.
	ID string `json:"id" validate:"required"`

	// Value is the record body.
	Value string `json:"value"`
}

// SearchPage is one page of wallet search results, as returned by the native
// search-next call.
type SearchPage struct {
	Records []WalletRecord `json:"records"`
}

// ProvisionConfig configures agent provisioning against an agency.
type ProvisionConfig struct {
	// AgencyURL is the agency endpoint the agent enrolls with.
	AgencyURL string `json:"agency_url" validate:"required,url"`

	// AgencyDID is the agency's public DID.
	AgencyDID string `json:"agency_did" validate:"required"`

	// AgencyVerkey is the agency's verification key.
	AgencyVerkey string `json:"agency_verkey" validate:"required"`

	// WalletName names the local wallet created during provisioning.
	WalletName string `json:"wallet_name" validate:"required"`

	// WalletKey encrypts the local wallet.
	WalletKey string `json:"wallet_key" validate:"required"`

	// AgentSeed optionally seeds the agent's keypair, for deterministic
	// provisioning in test environments.
	AgentSeed string `json:"agent_seed,omitempty"`
}

// AgentConfig is the provisioned agent configuration returned by the agency.
type AgentConfig struct {
	AgencyEndpoint string `json:"agency_endpoint"`
	AgencyDID      string `json:"agency_did"`
	AgencyVerkey   string `json:"agency_verkey"`
	SDKToAgencyDID string `json:"sdk_to_agency_did"`
	InstitutionDID string `json:"institution_did"`
	RemoteToSDKDID string `json:"remote_to_sdk_did"`
	WalletName     string `json:"wallet_name"`
}

// ConnectOptions tunes how a connection invitation is delivered.
type ConnectOptions struct {
	// ConnectionType selects the transport, e.g. "QR" or "SMS".
	ConnectionType string `json:"connection_type,omitempty"`

	// PhoneNumber receives the invitation for SMS connections.
	PhoneNumber string `json:"phone,omitempty"`

	// UseUnverifiedKeys permits connecting before key exchange completes.
	UseUnverifiedKeys bool `json:"use_public_did,omitempty"`
}
