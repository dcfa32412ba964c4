package aclstore

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Fixed codec for the single function exposed by the checker contract:
//
//	checkPermissions(address user, bytes32 document) constant returns (bool)
//
// The wire shape has to match the deployed contract bit-for-bit, so the
// encoding is spelled out here instead of going through a generic ABI
// interpreter.

var checkPermissionsSelector = crypto.Keccak256([]byte("checkPermissions(address,bytes32)"))[:4]

func encodeCheckPermissions(user common.Address, document DocumentAddress) []byte {
	data := make([]byte, 0, 4+2*32)
	data = append(data, checkPermissionsSelector...)
	var word [32]byte
	copy(word[12:], user.Bytes())
	data = append(data, word[:]...)
	data = append(data, document[:]...)
	return data
}

// decodeCheckPermissions expects exactly one boolean return value. Anything
// else is an error, never a default.
func decodeCheckPermissions(output []byte) (bool, error) {
	if len(output) != 32 {
		return false, fmt.Errorf("invalid return arity: expected a single value, got %d bytes", len(output))
	}
	for _, b := range output[:31] {
		if b != 0 {
			return false, fmt.Errorf("invalid type returned: %x is not a bool", output)
		}
	}
	switch output[31] {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, fmt.Errorf("invalid type returned: %x is not a bool", output)
	}
}
