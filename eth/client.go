// The eth-package provides read-only chain access over JSON-RPC. Client
// implements aclstore.LedgerClient: it resolves symbolic contract names
// through a Parity-style name registry and executes eth_call against the
// latest block.
package eth

import (
	"context"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
)

type Client struct {
	rpc      *ethclient.Client
	registry common.Address
}

// Dial connects to the JSON-RPC endpoint at rawurl. registry is the address
// of the name registry contract used by RegistryAddress.
func Dial(ctx context.Context, rawurl string, registry common.Address) (*Client, error) {
	rpc, err := ethclient.DialContext(ctx, rawurl)
	if err != nil {
		return nil, err
	}
	return NewClient(rpc, registry), nil
}

func NewClient(rpc *ethclient.Client, registry common.Address) *Client {
	return &Client{rpc, registry}
}

func (c *Client) Close() {
	c.rpc.Close()
}

// RegistryAddress looks up name in the registry at the latest block.
// RPC failures and empty records both report as unresolved; the caller
// retries on its next check anyway.
func (c *Client) RegistryAddress(ctx context.Context, name string) (common.Address, bool) {
	output, err := c.rpc.CallContract(ctx, ethereum.CallMsg{To: &c.registry, Data: encodeGetAddress(name)}, nil)
	if err != nil || len(output) != 32 {
		return common.Address{}, false
	}
	addr := common.BytesToAddress(output[12:])
	if addr == (common.Address{}) {
		return common.Address{}, false
	}
	return addr, true
}

// CallContract executes a read-only call at the latest block.
func (c *Client) CallContract(ctx context.Context, addr common.Address, data []byte) ([]byte, error) {
	return c.rpc.CallContract(ctx, ethereum.CallMsg{To: &addr, Data: data}, nil)
}

var getAddressSelector = crypto.Keccak256([]byte("getAddress(bytes32,string)"))[:4]

// encodeGetAddress builds the registry lookup getAddress(sha3(name), "A"),
// record kind "A" being the address entry of a name.
func encodeGetAddress(name string) []byte {
	data := make([]byte, 0, 4+4*32)
	data = append(data, getAddressSelector...)
	data = append(data, crypto.Keccak256([]byte(name))...)
	var word [32]byte
	word[31] = 0x40 // offset of the string argument
	data = append(data, word[:]...)
	word[31] = 0x01 // len("A")
	data = append(data, word[:]...)
	word = [32]byte{}
	word[0] = 'A'
	data = append(data, word[:]...)
	return data
}
