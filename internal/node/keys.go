package node

import (
	"fmt"

	"github.com/LeJamon/goPriceOracle/internal/config"
	"github.com/LeJamon/goPriceOracle/internal/crypto"
	"github.com/LeJamon/goPriceOracle/internal/keystore"
	"github.com/LeJamon/goPriceOracle/internal/offchain/fetcher"
)

// LoadKeys derives the configured identities. With none configured and
// Generate set, one ephemeral identity of KeyType is created.
func LoadKeys(cfg config.KeysConfig) (*keystore.Store, error) {
	store := keystore.NewStore()
	for i, k := range cfg.Identities {
		kt, err := crypto.ParseKeyType(k.Type)
		if err != nil {
			return nil, fmt.Errorf("identity %d: %w", i, err)
		}
		id, err := keystore.FromSeedHex(kt, k.Seed)
		if err != nil {
			return nil, fmt.Errorf("identity %d: %w", i, err)
		}
		store.Add(id)
	}
	if store.Len() == 0 && cfg.Generate {
		kt, err := crypto.ParseKeyType(cfg.KeyType)
		if err != nil {
			return nil, err
		}
		id, err := keystore.Generate(kt)
		if err != nil {
			return nil, fmt.Errorf("generate identity: %w", err)
		}
		store.Add(id)
	}
	return store, nil
}

// FetcherConfig maps the [feed] section onto the fetcher.
func FetcherConfig(cfg config.FeedConfig) fetcher.Config {
	return fetcher.Config{
		URL:          cfg.URL,
		Symbol:       cfg.Symbol,
		Timeout:      cfg.Timeout,
		MaxBodyBytes: cfg.MaxBodyBytes,
	}
}
