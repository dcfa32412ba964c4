package aclstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// CheckerContractName is the symbolic name the permission contract is
// registered under in the on-chain name registry.
const CheckerContractName = "secretstore_acl_checker"

// LedgerClient is the read-only view of the chain required by
// [OnchainStorage]. The eth-package provides a JSON-RPC implementation.
type LedgerClient interface {
	// RegistryAddress resolves a symbolic contract name against the latest
	// state. ok is false if the name is not registered.
	RegistryAddress(ctx context.Context, name string) (addr common.Address, ok bool)
	// CallContract executes a read-only call against the contract at addr
	// at the latest block and returns the raw ABI-encoded output.
	CallContract(ctx context.Context, addr common.Address, data []byte) ([]byte, error)
}

// CallFunc executes a read-only call against the resolved checker contract.
type CallFunc func(ctx context.Context, data []byte) ([]byte, error)

type binding struct {
	address common.Address
	call    CallFunc
}

// OnchainStorage checks permissions against the contract registered as
// [CheckerContractName]. The contract address is resolved lazily on the
// first check and the binding is kept for the lifetime of the instance;
// it is never re-resolved, even if the registry entry changes later.
// While resolution keeps failing every check attempts it again.
type OnchainStorage struct {
	client LedgerClient

	mu       sync.Mutex
	contract *binding
}

func NewOnchainStorage(client LedgerClient) *OnchainStorage {
	return &OnchainStorage{client: client}
}

// Check returns true iff the holder of public may access document.
func (s *OnchainStorage) Check(ctx context.Context, public Public, document DocumentAddress) (bool, error) {
	// The lock is held across the remote call as well: checks are fully
	// serialized, but the binding is resolved at most once and a
	// half-constructed binding is never observable.
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.contract == nil {
		addr, ok := s.client.RegistryAddress(ctx, CheckerContractName)
		if !ok {
			return false, ErrNotConfigured
		}
		client := s.client
		s.contract = &binding{
			address: addr,
			call: func(ctx context.Context, data []byte) ([]byte, error) {
				return client.CallContract(ctx, addr, data)
			},
		}
	}

	user := PublicToAddress(public)
	output, err := s.contract.call(ctx, encodeCheckPermissions(user, document))
	if err != nil {
		return false, fmt.Errorf("checkPermissions call failed: %w", err)
	}
	allowed, err := decodeCheckPermissions(output)
	if err != nil {
		return false, fmt.Errorf("checkPermissions returned malformed output: %w", err)
	}
	return allowed, nil
}
