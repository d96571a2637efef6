package wallet

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/chatpay/walletvault/internal/crypto"
	"github.com/chatpay/walletvault/internal/logging"
)

func testStore(t *testing.T) (*Store, Repository) {
	t.Helper()
	cipher, err := crypto.NewCipher(bytes.Repeat([]byte{0x11}, crypto.KeySize))
	if err != nil {
		t.Fatalf("new cipher: %v", err)
	}
	repo := NewMemoryRepository()
	return NewStore(repo, cipher, logging.Discard()), repo
}

func TestStoreWriteReadRoundTrip(t *testing.T) {
	store, _ := testStore(t)
	ctx := context.Background()

	material := []byte("ed25519 seed bytes, 32 of them!!")
	written, err := store.Write(ctx, "u1", "addr1", material)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if written.Address != "addr1" {
		t.Fatalf("expected addr1, got %s", written.Address)
	}

	entry, err := store.Read(ctx, "u1")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(entry.Material, material) {
		t.Fatal("decrypted material does not match what was written")
	}
}

func TestStoreReadMissReportsNotFound(t *testing.T) {
	store, _ := testStore(t)

	if _, err := store.Read(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStoreWriteReplacesExistingRow(t *testing.T) {
	store, _ := testStore(t)
	ctx := context.Background()

	if _, err := store.Write(ctx, "u1", "old-addr", []byte("old material")); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if _, err := store.Write(ctx, "u1", "new-addr", []byte("new material")); err != nil {
		t.Fatalf("second write: %v", err)
	}

	entry, err := store.Read(ctx, "u1")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if entry.Address != "new-addr" || string(entry.Material) != "new material" {
		t.Fatalf("expected full replacement, got address=%s material=%q", entry.Address, entry.Material)
	}
}

func TestStoreReadCorruptedBlob(t *testing.T) {
	store, repo := testStore(t)
	ctx := context.Background()

	if _, err := repo.Upsert(ctx, Credential{UserID: "u1", Address: "addr1", EncryptedBlob: "not:a:blob"}); err != nil {
		t.Fatalf("seed corrupted row: %v", err)
	}

	if _, err := store.Read(ctx, "u1"); !errors.Is(err, ErrCorruptedCredential) {
		t.Fatalf("expected ErrCorruptedCredential, got %v", err)
	}

	// Corruption is not absence: the row still guards on-chain funds.
	exists, err := store.Exists(ctx, "u1")
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if !exists {
		t.Fatal("corrupted credential must still count as present")
	}
}
