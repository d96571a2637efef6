package wallet

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func setupHandlerApp(t *testing.T) (*fiber.App, *serviceFixture) {
	t.Helper()
	f := newServiceFixture(t, nil)
	app := fiber.New()
	h := NewHandler(f.svc)
	app.Post("/wallets", h.GetOrCreate)
	app.Get("/wallets/:externalId", h.Presence)
	app.Post("/wallets/:externalId/import", h.Import)
	return app, f
}

func postJSON(t *testing.T, app *fiber.App, path, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPost, path, strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	decoded := map[string]any{}
	_ = json.Unmarshal(payload, &decoded)
	return resp.StatusCode, decoded
}

func TestHandlerNoWalletMapsTo404(t *testing.T) {
	app, _ := setupHandlerApp(t)

	status, _ := postJSON(t, app, "/wallets", `{"external_id":"U1"}`)
	if status != fiber.StatusNotFound {
		t.Fatalf("expected 404 for missing wallet, got %d", status)
	}
}

func TestHandlerCreateAndPresence(t *testing.T) {
	app, _ := setupHandlerApp(t)

	status, body := postJSON(t, app, "/wallets", `{"external_id":"U1","force_new":true}`)
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	address, _ := body["address"].(string)
	if address == "" {
		t.Fatal("expected an address in the response")
	}
	if _, leaked := body["material"]; leaked {
		t.Fatal("key material must never appear in HTTP responses")
	}

	req := httptest.NewRequest(fiber.MethodGet, "/wallets/U1", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("presence: %v", err)
	}
	defer resp.Body.Close()
	var presence struct {
		HasWallet bool `json:"has_wallet"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&presence); err != nil {
		t.Fatalf("decode presence: %v", err)
	}
	if !presence.HasWallet {
		t.Fatal("expected has_wallet true")
	}
}

func TestHandlerImport(t *testing.T) {
	app, f := setupHandlerApp(t)

	material := []byte("imported seed material 32 bytes!")
	body := fmt.Sprintf(`{"address":"A2","material":"%s"}`, hex.EncodeToString(material))
	status, resp := postJSON(t, app, "/wallets/U2/import", body)
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if resp["address"] != "A2" {
		t.Fatalf("expected imported address A2, got %v", resp["address"])
	}
	if n := f.provider.calls; n != 0 {
		t.Fatalf("import must not call the provider, got %d calls", n)
	}
}

func TestHandlerImportRejectsBadMaterial(t *testing.T) {
	app, _ := setupHandlerApp(t)

	status, _ := postJSON(t, app, "/wallets/U2/import", `{"address":"A2","material":"zz-not-hex"}`)
	if status != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for invalid material, got %d", status)
	}
}
