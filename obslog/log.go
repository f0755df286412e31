// Package obslog wires structured logging into the persistence core.
// The teacher has no logging calls anywhere; this package is grounded on
// other_examples/7a5608f1_omarofo-iotex-core__blockchain-genesis-genesis.go.go,
// which wires go.uber.org/zap into exactly this kind of chain-bootstrap
// code path.
package obslog

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a *zap.SugaredLogger at the given level ("debug", "info",
// "warn", "error"). blockstore.Open and overlay.New accept the result
// (or nil, which they treat as a no-op logger) so the core has no
// mandatory logging dependency.
func New(level string) (*zap.SugaredLogger, error) {
	var zl zapcore.Level
	if err := zl.Set(level); err != nil {
		return nil, fmt.Errorf("obslog: invalid level %q: %w", level, err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zl)
	cfg.EncoderConfig.TimeKey = "ts"
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("obslog: build logger: %w", err)
	}
	return logger.Sugar(), nil
}

// Noop returns a logger that discards everything, used when the caller
// passes no logger into blockstore.Open/overlay.New.
func Noop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
