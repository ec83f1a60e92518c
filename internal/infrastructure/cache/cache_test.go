package cache

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ChemSAR/internal/domain/molecule"
	"github.com/turtacn/ChemSAR/pkg/types/chem"
)

func testFingerprint(t *testing.T, smiles string) *molecule.Fingerprint {
	t.Helper()
	g, err := molecule.ParseSMILES(smiles)
	require.NoError(t, err)
	fp, err := molecule.MorganFingerprint(g, molecule.DefaultMorganRadius, molecule.DefaultFingerprintBits)
	require.NoError(t, err)
	return fp
}

func TestMemoryCache_GetSet(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	fp := testFingerprint(t, "CCO")

	_, ok, err := c.Get(ctx, "key-1", chem.FPMorgan)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "key-1", fp))

	got, ok, err := c.Get(ctx, "key-1", chem.FPMorgan)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, fp.Bits, got.Bits)
	assert.Equal(t, 1, c.Len())

	// Different fingerprint type is a separate entry.
	_, ok, err = c.Get(ctx, "key-1", chem.FPMACCS)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryCache_Concurrent(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	fp := testFingerprint(t, "CCO")

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = c.Set(ctx, "shared", fp)
			_, _, _ = c.Get(ctx, "shared", chem.FPMorgan)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, c.Len())
}

func TestMemoryCache_ImplementsInterface(t *testing.T) {
	var _ FingerprintCache = NewMemoryCache()
	var _ FingerprintCache = (*RedisCache)(nil)
}
