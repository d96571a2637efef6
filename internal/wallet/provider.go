package wallet

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/mr-tron/base58"
)

// Provider is the external wallet-provider collaborator: it turns key
// material into a live signing wallet and reports the resulting address. All
// signing and broadcast logic lives behind this interface.
type Provider interface {
	CreateAddress(ctx context.Context, material []byte, idempotencyToken, network string) (string, error)
}

// StaticProvider derives addresses locally from ed25519 seed material:
// base58-encoded public key, matching the chain node's own format. Used for
// development and simulation in place of the hosted provider.
type StaticProvider struct{}

// CreateAddress derives the address for the supplied seed.
func (StaticProvider) CreateAddress(_ context.Context, material []byte, _, _ string) (string, error) {
	if len(material) != ed25519.SeedSize {
		return "", fmt.Errorf("%w: seed must be %d bytes, got %d", ErrProvisioningFailed, ed25519.SeedSize, len(material))
	}
	priv := ed25519.NewKeyFromSeed(material)
	pub := priv.Public().(ed25519.PublicKey)
	return base58.Encode(pub), nil
}

const idempotencyTokenHeader = "Idempotency-Key"

// HTTPProvider calls a hosted wallet provider over JSON/HTTP.
type HTTPProvider struct {
	url    string
	client *http.Client
}

// NewHTTPProvider builds a provider client for the given endpoint.
func NewHTTPProvider(url string, timeout time.Duration) *HTTPProvider {
	return &HTTPProvider{url: url, client: &http.Client{Timeout: timeout}}
}

type createAddressRequest struct {
	Material string `json:"material,omitempty"`
	Network  string `json:"network"`
}

type createAddressResponse struct {
	Address string `json:"address"`
}

// CreateAddress submits the material and idempotency token to the provider
// and returns the resulting address. Material travels hex-encoded; an empty
// material field lets the provider generate its own.
func (p *HTTPProvider) CreateAddress(ctx context.Context, material []byte, idempotencyToken, network string) (string, error) {
	payload, err := json.Marshal(createAddressRequest{Material: hex.EncodeToString(material), Network: network})
	if err != nil {
		return "", fmt.Errorf("%w: encode request: %v", ErrProvisioningFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%w: build request: %v", ErrProvisioningFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(idempotencyTokenHeader, idempotencyToken)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrProvisioningFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("%w: provider returned status %d", ErrProvisioningFailed, resp.StatusCode)
	}

	var decoded createAddressResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrProvisioningFailed, err)
	}
	if decoded.Address == "" {
		return "", fmt.Errorf("%w: provider returned an empty address", ErrProvisioningFailed)
	}
	return decoded.Address, nil
}
