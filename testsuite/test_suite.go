// The testsuite-package holds the black-box contract every denial-list
// backend has to satisfy: all (public, document) pairs are allowed until
// explicitly denied, and a denial affects no other pair.
package testsuite

import (
	"context"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slices"

	"github.com/vheiberg/aclstore"
)

type TestConfig struct {
	Storage aclstore.Denier
}

func RunTestAll(t *testing.T, configs map[string]TestConfig) {
	for name, config := range configs {
		t.Run(name, func(t *testing.T) {
			RunTest(t, config.Storage)
		})
	}
}

// RunTest uses fresh random pairs, so it is safe to run repeatedly against
// a persistent backend.
func RunTest(t *testing.T, storage aclstore.Denier) {
	ctx := context.Background()
	p1, p2 := NewPublic(t), NewPublic(t)
	d1, d2 := NewDocument(t), NewDocument(t)

	t.Run("default_allow", func(t *testing.T) {
		allowed, err := storage.Check(ctx, p1, d1)
		require.NoError(t, err)
		require.True(t, allowed)

		_, err = storage.Read(ctx, p1, d1)
		require.ErrorIs(t, err, aclstore.ErrNotFound)
	})

	t.Run("denial_affects_single_pair", func(t *testing.T) {
		require.NoError(t, storage.Deny(ctx, p1, d1))

		id, err := storage.Read(ctx, p1, d1)
		require.NoError(t, err)
		require.False(t, id.IsNil())

		results := []bool{}
		for _, pair := range []struct {
			public   aclstore.Public
			document aclstore.DocumentAddress
		}{
			{p1, d1},
			{p1, d2},
			{p2, d1},
			{p2, d2},
		} {
			allowed, err := storage.Check(ctx, pair.public, pair.document)
			require.NoError(t, err)
			results = append(results, allowed)
		}
		expected := []bool{false, true, true, true}
		if !slices.Equal(results, expected) {
			t.Fatalf("Expected results %v, but got %v instead", expected, results)
		}
	})

	t.Run("deny_is_idempotent", func(t *testing.T) {
		first, err := storage.Read(ctx, p1, d1)
		require.NoError(t, err)

		require.NoError(t, storage.Deny(ctx, p1, d1))

		second, err := storage.Read(ctx, p1, d1)
		require.NoError(t, err)
		require.Equal(t, first, second)

		allowed, err := storage.Check(ctx, p1, d1)
		require.NoError(t, err)
		require.False(t, allowed)
	})
}

func RunBenchmarkAll(b *testing.B, storages map[string]aclstore.Denier) {
	for name, storage := range storages {
		b.Run(name, func(b *testing.B) {
			RunBenchmark(b, storage)
		})
	}
}

func RunBenchmark(b *testing.B, storage aclstore.Denier) {
	ctx := context.Background()
	public := NewPublic(b)
	allowedDoc, deniedDoc := NewDocument(b), NewDocument(b)
	require.NoError(b, storage.Deny(ctx, public, deniedDoc))

	b.Run("allowed", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, err := storage.Check(ctx, public, allowedDoc)
			require.NoError(b, err)
		}
	})
	b.Run("denied", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, err := storage.Check(ctx, public, deniedDoc)
			require.NoError(b, err)
		}
	})
}

func NewPublic(t testing.TB) aclstore.Public {
	public := aclstore.Public{}
	_, err := rand.Read(public[:])
	require.NoError(t, err)
	return public
}

func NewDocument(t testing.TB) aclstore.DocumentAddress {
	document := aclstore.DocumentAddress{}
	_, err := rand.Read(document[:])
	require.NoError(t, err)
	return document
}
