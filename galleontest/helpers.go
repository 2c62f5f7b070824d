package galleontest

import (
	"crypto/rand"
	"testing"

	"github.com/galleon-dao/galleon"
	"github.com/galleon-dao/galleon/crypto"
	"github.com/galleon-dao/galleon/store"
)

// DB is the store interface tests operate on. store.MemStore satisfies it.
type DB = galleon.CacheableKVStore

// NewDB returns a fresh in-memory store.
func NewDB() DB {
	return store.MemStore()
}

// RandomAddress returns a random identity address. It is exceedingly
// unlikely that two calls return the same value.
func RandomAddress(t testing.TB) galleon.Address {
	t.Helper()
	addr := make(galleon.Address, galleon.AddressLength)
	if _, err := rand.Read(addr); err != nil {
		t.Fatalf("cannot read random bytes: %s", err)
	}
	return addr
}

// NewKey returns a freshly generated signing key.
func NewKey(t testing.TB) *crypto.PrivateKey {
	t.Helper()
	key, err := crypto.GenPrivateKey()
	if err != nil {
		t.Fatalf("cannot generate key: %s", err)
	}
	return key
}
