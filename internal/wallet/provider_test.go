package wallet

import (
	"context"
	"crypto/ed25519"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestStaticProviderDerivesStableAddress(t *testing.T) {
	seed := make([]byte, ed25519.SeedSize)
	for i := range seed {
		seed[i] = byte(i)
	}

	provider := StaticProvider{}
	ctx := context.Background()

	first, err := provider.CreateAddress(ctx, seed, "token", "mainnet")
	if err != nil {
		t.Fatalf("create address: %v", err)
	}
	second, err := provider.CreateAddress(ctx, seed, "token", "mainnet")
	if err != nil {
		t.Fatalf("create address again: %v", err)
	}
	if first != second {
		t.Fatal("same seed must derive the same address")
	}
	if first == "" {
		t.Fatal("expected a non-empty address")
	}
}

func TestStaticProviderRejectsBadSeedLength(t *testing.T) {
	if _, err := (StaticProvider{}).CreateAddress(context.Background(), []byte("short"), "t", "mainnet"); !errors.Is(err, ErrProvisioningFailed) {
		t.Fatalf("expected ErrProvisioningFailed, got %v", err)
	}
}

func TestHTTPProviderSendsIdempotencyToken(t *testing.T) {
	var gotToken string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("Idempotency-Key")
		var req map[string]string
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"address": "remote-addr-1"})
	}))
	defer ts.Close()

	provider := NewHTTPProvider(ts.URL, time.Second)
	address, err := provider.CreateAddress(context.Background(), []byte("material"), "token-123456789012345678901234567890", "testnet")
	if err != nil {
		t.Fatalf("create address: %v", err)
	}
	if address != "remote-addr-1" {
		t.Fatalf("expected remote-addr-1, got %s", address)
	}
	if gotToken != "token-123456789012345678901234567890" {
		t.Fatalf("expected idempotency token to be forwarded, got %q", gotToken)
	}
}

func TestHTTPProviderMapsFailures(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	provider := NewHTTPProvider(ts.URL, time.Second)
	if _, err := provider.CreateAddress(context.Background(), nil, "t", "mainnet"); !errors.Is(err, ErrProvisioningFailed) {
		t.Fatalf("expected ErrProvisioningFailed, got %v", err)
	}

	empty := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"address": ""})
	}))
	defer empty.Close()

	provider = NewHTTPProvider(empty.URL, time.Second)
	if _, err := provider.CreateAddress(context.Background(), nil, "t", "mainnet"); !errors.Is(err, ErrProvisioningFailed) {
		t.Fatalf("expected ErrProvisioningFailed for empty address, got %v", err)
	}
}
