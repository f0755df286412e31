package chain

import "crypto/sha3"

// Transaction is an opaque payload to the persistence core; the core
// only ever needs its content address.
type Transaction struct {
	Payload []byte
}

// Hash returns the transaction's 32-byte content address.
func (t Transaction) Hash() [32]byte {
	return sha3.Sum256(t.Payload)
}

// Signature is the producer's opaque signature over a header hash.
type Signature []byte

func (s Signature) Bytes() []byte { return []byte(s) }
