package codec

import "math/big"

// BigToBytes encodes a non-negative math/big.Int as its minimal big-endian
// byte representation (empty slice for zero), the portable wire form for
// arbitrary-precision fields (spec §9: implementations should not rely on
// any particular big-integer library's native encoding).
func BigToBytes(v *big.Int) []byte {
	if v == nil || v.Sign() == 0 {
		return []byte{}
	}
	return v.Bytes()
}

// BigFromBytes decodes a big-endian byte string back into a math/big.Int.
func BigFromBytes(b []byte) *big.Int {
	return new(big.Int).SetBytes(b)
}
