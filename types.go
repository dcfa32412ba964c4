package aclstore

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Public is the public key of a requestor: an uncompressed secp256k1 point
// without the 0x04 prefix.
type Public [64]byte

// DocumentAddress identifies a protected document, typically the hash of
// its contents.
type DocumentAddress [32]byte

// PublicToAddress derives the account address presented to the permission
// contract: the last 20 bytes of the Keccak-256 hash of the public key.
func PublicToAddress(public Public) common.Address {
	return common.BytesToAddress(crypto.Keccak256(public[:])[12:])
}

// PublicFromHex parses a hex-encoded public key. A 65-byte encoding with
// the 0x04 uncompressed-point prefix is accepted as well.
func PublicFromHex(s string) (Public, error) {
	public := Public{}
	b, err := fromHex(s)
	if err != nil {
		return public, err
	}
	if len(b) == len(public)+1 && b[0] == 0x04 {
		b = b[1:]
	}
	if len(b) != len(public) {
		return public, fmt.Errorf("invalid public key length: %d", len(b))
	}
	copy(public[:], b)
	return public, nil
}

// DocumentAddressFromHex parses a hex-encoded document address.
func DocumentAddressFromHex(s string) (DocumentAddress, error) {
	document := DocumentAddress{}
	b, err := fromHex(s)
	if err != nil {
		return document, err
	}
	if len(b) != len(document) {
		return document, fmt.Errorf("invalid document address length: %d", len(b))
	}
	copy(document[:], b)
	return document, nil
}

func (p Public) String() string {
	return "0x" + hex.EncodeToString(p[:])
}

func (d DocumentAddress) String() string {
	return "0x" + hex.EncodeToString(d[:])
}

func fromHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(s, "0x")
	return hex.DecodeString(s)
}
