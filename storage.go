package aclstore

import (
	"context"
	"errors"

	"github.com/gofrs/uuid/v5"
)

var (
	// ErrNotConfigured is returned by checks while the registry has no
	// permission contract registered under [CheckerContractName].
	ErrNotConfigured = errors.New("ACL checker contract is not configured")

	ErrNotFound = errors.New("not found")
)

// Storage decides whether the holder of a public key may access a document.
// Implementations are safe for concurrent use.
type Storage interface {
	// Check returns true iff the holder of public may access document.
	// A false result is a denial, not an error.
	Check(ctx context.Context, public Public, document DocumentAddress) (bool, error)
}

// Denier is implemented by storage backends that keep an explicit local
// denial list: every pair is allowed unless denied. [MemoryStorage] is the
// reference implementation; persistent variants live in storage/pebble and
// storage/postgres.
type Denier interface {
	Storage

	// Deny forbids the holder of public access to document. Denying an
	// already-denied pair is a no-op that keeps the original record.
	Deny(ctx context.Context, public Public, document DocumentAddress) error
	// Read returns the id of the denial record for the pair, or
	// [ErrNotFound] if the pair is not denied.
	Read(ctx context.Context, public Public, document DocumentAddress) (uuid.UUID, error)

	Close() error
}
