// Package trust provides prior-trust (trust on first use) bookkeeping for
// package signing entities.
//
// The ledger records the first signing entity observed for each package and
// flags later releases whose entity differs. It implements the core
// signing.TrustLedger interface and is safe for concurrent reconciliation
// from independent validation calls.
package trust

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/packsure/signing"
)

// ErrSigningEntityMismatch is returned in strict mode when a package's
// signing entity differs from the one recorded on first use.
var ErrSigningEntityMismatch = errors.New("trust: signing entity changed since first use")

// Mode controls how a mismatch against the recorded entity is handled.
type Mode string

const (
	// ModeStrict reports a mismatch as an error.
	ModeStrict Mode = "strict"

	// ModeWarn logs a mismatch and acknowledges the reconciliation anyway.
	ModeWarn Mode = "warn"
)

// MemoryLedger is an in-memory TOFU ledger keyed by registry and package.
// Versions share one record: the first entity observed for a package is
// authoritative for all of its releases.
type MemoryLedger struct {
	mode   Mode
	logger *slog.Logger

	mu      sync.RWMutex
	entries map[string]signing.SigningEntity
}

// Option configures a MemoryLedger.
type Option func(*MemoryLedger)

// WithMode sets the mismatch handling mode. Defaults to ModeStrict.
func WithMode(mode Mode) Option {
	return func(l *MemoryLedger) {
		l.mode = mode
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *MemoryLedger) {
		l.logger = logger
	}
}

// NewMemoryLedger creates an empty ledger.
func NewMemoryLedger(opts ...Option) *MemoryLedger {
	l := &MemoryLedger{
		mode:    ModeStrict,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		entries: make(map[string]signing.SigningEntity),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Reconcile implements signing.TrustLedger.
//
// A nil entity records nothing: unsigned or policy-allowed releases are
// observed but do not establish trust. The first non-nil entity for a package
// is recorded as authoritative; later matches acknowledge silently and later
// mismatches are handled per the configured mode.
func (l *MemoryLedger) Reconcile(_ context.Context, registry string, pkg signing.Package, version string, entity *signing.SigningEntity) error {
	if entity == nil {
		l.logger.Debug("observed release without signing entity",
			slog.String("registry", registry),
			slog.String("package", pkg.String()),
			slog.String("version", version))
		return nil
	}

	key := ledgerKey(registry, pkg)

	l.mu.Lock()
	defer l.mu.Unlock()

	prior, ok := l.entries[key]
	if !ok {
		l.entries[key] = *entity
		l.logger.Debug("recorded signing entity on first use",
			slog.String("registry", registry),
			slog.String("package", pkg.String()),
			slog.String("entity", entity.String()))
		return nil
	}

	if prior == *entity {
		return nil
	}

	if l.mode == ModeWarn {
		l.logger.Warn("signing entity changed since first use",
			slog.String("registry", registry),
			slog.String("package", pkg.String()),
			slog.String("version", version),
			slog.String("recorded", prior.String()),
			slog.String("observed", entity.String()))
		return nil
	}
	return fmt.Errorf("%w: %s from %s was signed by %s, now %s",
		ErrSigningEntityMismatch, pkg, registry, prior, entity)
}

// SigningEntity returns the entity recorded for a package, if any.
func (l *MemoryLedger) SigningEntity(registry string, pkg signing.Package) (signing.SigningEntity, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	entity, ok := l.entries[ledgerKey(registry, pkg)]
	return entity, ok
}

func ledgerKey(registry string, pkg signing.Package) string {
	return registry + "|" + pkg.String()
}

// Ensure MemoryLedger implements signing.TrustLedger.
var _ signing.TrustLedger = (*MemoryLedger)(nil)
