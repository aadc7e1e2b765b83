package trust

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/packsure/signing"
)

var (
	testRegistry = "https://registry.example.com"
	testPackage  = signing.Package{Scope: "mona", Name: "linked-list"}
	appleseed    = signing.SigningEntity{CommonName: "J. Appleseed", Organization: "Example Corp"}
	impostor     = signing.SigningEntity{CommonName: "M. Impostor", Organization: "Other Corp"}
)

func TestMemoryLedgerFirstUse(t *testing.T) {
	ledger := NewMemoryLedger()
	ctx := context.Background()

	err := ledger.Reconcile(ctx, testRegistry, testPackage, "1.0.0", &appleseed)
	require.NoError(t, err)

	recorded, ok := ledger.SigningEntity(testRegistry, testPackage)
	require.True(t, ok)
	assert.Equal(t, appleseed, recorded)
}

func TestMemoryLedgerMatchingEntity(t *testing.T) {
	ledger := NewMemoryLedger()
	ctx := context.Background()

	require.NoError(t, ledger.Reconcile(ctx, testRegistry, testPackage, "1.0.0", &appleseed))
	assert.NoError(t, ledger.Reconcile(ctx, testRegistry, testPackage, "1.1.0", &appleseed))
}

func TestMemoryLedgerMismatchStrict(t *testing.T) {
	ledger := NewMemoryLedger(WithMode(ModeStrict))
	ctx := context.Background()

	require.NoError(t, ledger.Reconcile(ctx, testRegistry, testPackage, "1.0.0", &appleseed))

	err := ledger.Reconcile(ctx, testRegistry, testPackage, "2.0.0", &impostor)
	require.ErrorIs(t, err, ErrSigningEntityMismatch)
	assert.Contains(t, err.Error(), "J. Appleseed")
	assert.Contains(t, err.Error(), "M. Impostor")

	// The first-use record is kept, not overwritten by the mismatch.
	recorded, ok := ledger.SigningEntity(testRegistry, testPackage)
	require.True(t, ok)
	assert.Equal(t, appleseed, recorded)
}

func TestMemoryLedgerMismatchWarn(t *testing.T) {
	ledger := NewMemoryLedger(WithMode(ModeWarn), WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	ctx := context.Background()

	require.NoError(t, ledger.Reconcile(ctx, testRegistry, testPackage, "1.0.0", &appleseed))
	assert.NoError(t, ledger.Reconcile(ctx, testRegistry, testPackage, "2.0.0", &impostor))
}

func TestMemoryLedgerNilEntityRecordsNothing(t *testing.T) {
	ledger := NewMemoryLedger()
	ctx := context.Background()

	require.NoError(t, ledger.Reconcile(ctx, testRegistry, testPackage, "1.0.0", nil))

	_, ok := ledger.SigningEntity(testRegistry, testPackage)
	assert.False(t, ok)

	// A later signed release still establishes first use.
	require.NoError(t, ledger.Reconcile(ctx, testRegistry, testPackage, "1.1.0", &appleseed))
	recorded, ok := ledger.SigningEntity(testRegistry, testPackage)
	require.True(t, ok)
	assert.Equal(t, appleseed, recorded)
}

func TestMemoryLedgerSeparatePackages(t *testing.T) {
	ledger := NewMemoryLedger()
	ctx := context.Background()

	other := signing.Package{Scope: "mona", Name: "other"}
	require.NoError(t, ledger.Reconcile(ctx, testRegistry, testPackage, "1.0.0", &appleseed))
	require.NoError(t, ledger.Reconcile(ctx, testRegistry, other, "1.0.0", &impostor))

	recorded, ok := ledger.SigningEntity(testRegistry, other)
	require.True(t, ok)
	assert.Equal(t, impostor, recorded)
}

func TestMemoryLedgerConcurrentReconcile(t *testing.T) {
	ledger := NewMemoryLedger(WithMode(ModeWarn), WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			pkg := signing.Package{Scope: "mona", Name: fmt.Sprintf("pkg-%d", i%4)}
			_ = ledger.Reconcile(ctx, testRegistry, pkg, "1.0.0", &appleseed)
		}()
	}
	wg.Wait()

	recorded, ok := ledger.SigningEntity(testRegistry, signing.Package{Scope: "mona", Name: "pkg-0"})
	require.True(t, ok)
	assert.Equal(t, appleseed, recorded)
}
