package aclstore

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

// fakeLedger counts resolutions and calls so tests can verify the binding
// is resolved at most once.
type fakeLedger struct {
	mu       sync.Mutex
	resolved common.Address
	ok       bool
	output   []byte
	err      error

	resolves int
	calls    int
	lastName string
	lastAddr common.Address
	lastData []byte
}

func (f *fakeLedger) RegistryAddress(ctx context.Context, name string) (common.Address, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resolves++
	f.lastName = name
	return f.resolved, f.ok
}

func (f *fakeLedger) CallContract(ctx context.Context, addr common.Address, data []byte) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastAddr = addr
	f.lastData = data
	return f.output, f.err
}

func boolWord(allowed bool) []byte {
	out := make([]byte, 32)
	if allowed {
		out[31] = 1
	}
	return out
}

var checkerAddr = common.HexToAddress("0x0000000000000000000000000000000000adc0de")

func TestOnchainStorageNotConfigured(t *testing.T) {
	ctx := context.Background()
	ledger := &fakeLedger{}
	storage := NewOnchainStorage(ledger)

	// Every check while unresolved reports the same error and retries
	// resolution on the next call.
	for i := 0; i < 3; i++ {
		_, err := storage.Check(ctx, Public{}, DocumentAddress{})
		require.ErrorIs(t, err, ErrNotConfigured)
	}
	require.Equal(t, 3, ledger.resolves)
	require.Equal(t, 0, ledger.calls)
	require.Equal(t, CheckerContractName, ledger.lastName)
}

func TestOnchainStorageResolvesOnce(t *testing.T) {
	ctx := context.Background()
	ledger := &fakeLedger{resolved: checkerAddr, ok: true, output: boolWord(true)}
	storage := NewOnchainStorage(ledger)

	for i := 0; i < 3; i++ {
		allowed, err := storage.Check(ctx, Public{}, DocumentAddress{})
		require.NoError(t, err)
		require.True(t, allowed)
	}
	require.Equal(t, 1, ledger.resolves)
	require.Equal(t, 3, ledger.calls)
}

func TestOnchainStorageRecoversAfterResolution(t *testing.T) {
	ctx := context.Background()
	ledger := &fakeLedger{}
	storage := NewOnchainStorage(ledger)

	_, err := storage.Check(ctx, Public{}, DocumentAddress{})
	require.ErrorIs(t, err, ErrNotConfigured)

	// Once the registry entry appears the very next check goes through.
	ledger.resolved, ledger.ok = checkerAddr, true
	ledger.output = boolWord(false)

	allowed, err := storage.Check(ctx, Public{}, DocumentAddress{})
	require.NoError(t, err)
	require.False(t, allowed)
	require.Equal(t, 2, ledger.resolves)
}

func TestOnchainStorageCallData(t *testing.T) {
	ctx := context.Background()
	ledger := &fakeLedger{resolved: checkerAddr, ok: true, output: boolWord(true)}
	storage := NewOnchainStorage(ledger)

	public := Public{}
	for i := range public {
		public[i] = byte(i + 1)
	}
	document := DocumentAddress{0xde, 0xad, 0xbe, 0xef}

	_, err := storage.Check(ctx, public, document)
	require.NoError(t, err)
	require.Equal(t, checkerAddr, ledger.lastAddr)
	require.Equal(t, encodeCheckPermissions(PublicToAddress(public), document), ledger.lastData)
}

func TestOnchainStorageCallFailure(t *testing.T) {
	ctx := context.Background()
	ledger := &fakeLedger{resolved: checkerAddr, ok: true, err: errors.New("connection refused")}
	storage := NewOnchainStorage(ledger)

	_, err := storage.Check(ctx, Public{}, DocumentAddress{})
	require.ErrorContains(t, err, "checkPermissions call failed")
	require.ErrorContains(t, err, "connection refused")

	// Transport failures do not drop the resolved binding.
	ledger.err = nil
	ledger.output = boolWord(true)
	allowed, err := storage.Check(ctx, Public{}, DocumentAddress{})
	require.NoError(t, err)
	require.True(t, allowed)
	require.Equal(t, 1, ledger.resolves)
}

func TestOnchainStorageMalformedOutput(t *testing.T) {
	ctx := context.Background()
	ledger := &fakeLedger{resolved: checkerAddr, ok: true, output: []byte{0x01}}
	storage := NewOnchainStorage(ledger)

	_, err := storage.Check(ctx, Public{}, DocumentAddress{})
	require.ErrorContains(t, err, "malformed output")
}

func TestOnchainStorageConcurrentChecks(t *testing.T) {
	ctx := context.Background()
	ledger := &fakeLedger{resolved: checkerAddr, ok: true, output: boolWord(true)}
	storage := NewOnchainStorage(ledger)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			allowed, err := storage.Check(ctx, Public{}, DocumentAddress{})
			require.NoError(t, err)
			require.True(t, allowed)
		}()
	}
	wg.Wait()
	require.Equal(t, 1, ledger.resolves)
	require.Equal(t, 16, ledger.calls)
}
