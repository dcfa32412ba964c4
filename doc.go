// The aclstore-package decides whether the holder of a public key may read
// a document kept by a secret-storage service. The authoritative policy
// lives in a permission contract registered on-chain; this package resolves
// that contract lazily, caches the binding and translates checks into
// read-only contract calls.
//
// The main entrypoint is the [Storage] interface:
//
//	allowed, err := storage.Check(ctx, public, document)
//
// A 'false' result is a regular denial, not an error. Errors cover the
// registry being unconfigured, transport failures and malformed contract
// output only.
//
// [OnchainStorage] is the production implementation. It needs a
// [LedgerClient] for chain access, typically the eth-package client:
//
//	client, err := eth.Dial(ctx, "http://localhost:8545", registryAddr)
//	storage := aclstore.NewOnchainStorage(client)
//	allowed, err := storage.Check(ctx, public, document)
//
// [MemoryStorage] is a deterministic default-allow implementation with an
// explicit denial list. It defines the decision semantics every backend
// must match and stands in for the chain during tests of dependents:
//
//	storage := aclstore.NewMemoryStorage()
//	_ = storage.Deny(ctx, public, document)
//	allowed, _ := storage.Check(ctx, public, document) // false
//
// Persistent denial-list backends live in storage/pebble and
// storage/postgres; all backends are validated against the shared
// testsuite-package.
package aclstore
