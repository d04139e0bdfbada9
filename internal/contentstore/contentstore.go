// Package contentstore provides content-addressed storage for rendered
// credential documents. Addresses are CIDv1 (raw codec, sha2-256) so any
// holder of a document can recompute its address and detect tampering.
package contentstore

import (
	"context"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// Store persists opaque blobs and returns their content address.
type Store interface {
	// Put stores data and returns its address. The name is advisory
	// metadata for backends that keep one.
	Put(ctx context.Context, data []byte, name string) (Address, error)
}

// AddressOf computes the content address of data without storing it.
func AddressOf(data []byte) (Address, error) {
	sum, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return "", err
	}
	return Address(cid.NewCidV1(cid.Raw, sum).String()), nil
}
