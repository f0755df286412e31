// Package blockerrs defines the typed error surface of the block
// persistence core (spec §7). Callers distinguish "not found" from
// fatal backend/codec failures with errors.As/errors.Is instead of
// string matching.
package blockerrs

import (
	"errors"
	"fmt"
)

// ErrInvalidInputLengths is returned by parallel-slice APIs (e.g.
// Overlay.InsertOrder) whose slices don't line up.
var ErrInvalidInputLengths = errors.New("blockerrs: mismatched input lengths")

// BlockNotFoundError is returned by a strict block lookup on a missing
// header hash.
type BlockNotFoundError struct {
	Hash [32]byte
}

func (e *BlockNotFoundError) Error() string {
	return fmt.Sprintf("blockerrs: block not found: %x", e.Hash)
}

// BlockNumberNotFoundError is returned by a strict order lookup (or
// GetFirst/GetLast on an empty order tree) on a missing height.
type BlockNumberNotFoundError struct {
	Height uint64
}

func (e *BlockNumberNotFoundError) Error() string {
	return fmt.Sprintf("blockerrs: block number not found: %d", e.Height)
}

// BlockDifficultyNotFoundError is returned by a strict difficulty
// lookup on a missing height.
type BlockDifficultyNotFoundError struct {
	Height uint64
}

func (e *BlockDifficultyNotFoundError) Error() string {
	return fmt.Sprintf("blockerrs: block difficulty not found: %d", e.Height)
}

// NewBlockNotFound constructs a BlockNotFoundError.
func NewBlockNotFound(hash [32]byte) error { return &BlockNotFoundError{Hash: hash} }

// NewBlockNumberNotFound constructs a BlockNumberNotFoundError.
func NewBlockNumberNotFound(height uint64) error { return &BlockNumberNotFoundError{Height: height} }

// NewBlockDifficultyNotFound constructs a BlockDifficultyNotFoundError.
func NewBlockDifficultyNotFound(height uint64) error {
	return &BlockDifficultyNotFoundError{Height: height}
}

// Io wraps a backend (KV) failure. The core never retries or inspects
// these; they are surfaced verbatim as fatal to the current operation.
func Io(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("blockerrs: io: %s: %w", op, err)
}

// Deserialize wraps a codec failure on corrupt or truncated bytes.
func Deserialize(what string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("blockerrs: deserialize: %s: %w", what, err)
}
