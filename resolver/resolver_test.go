package resolver_test

import (
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	pikax "github.com/Akashic-y/Pikax"
	"github.com/Akashic-y/Pikax/resolver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/exp/rand"
)

func TestResolvePartition(t *testing.T) {
	defer goleak.VerifyNone(t)

	// a batch where every third id fails, shuffled so completion order has
	// nothing to do with id value
	ids := make([]pikax.ArtworkID, 100)
	for i := range ids {
		ids[i] = pikax.ArtworkID(i + 1)
	}
	rnd := rand.New(rand.NewSource(42))
	rnd.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })

	res := resolver.Resolve(ids, func(id pikax.ArtworkID) (pikax.ArtworkID, error) {
		if id%3 == 0 {
			return 0, errors.New("construct failed")
		}
		return id, nil
	}, resolver.Options{Concurrency: 8})

	require.Equal(t, len(ids), len(res.Successes)+len(res.Failures))

	seen := make(map[pikax.ArtworkID]int)
	for _, id := range res.Successes {
		assert.NotZero(t, id%3)
		seen[id]++
	}
	for _, id := range res.Failures {
		assert.Zero(t, id%3)
		seen[id]++
	}

	for _, id := range ids {
		assert.Equal(t, 1, seen[id], "id %s not seen exactly once", id)
	}
}

func TestResolveProgressMonotonic(t *testing.T) {
	defer goleak.VerifyNone(t)

	ids := make([]pikax.ArtworkID, 50)
	for i := range ids {
		ids[i] = pikax.ArtworkID(i)
	}

	var calls []int
	res := resolver.Resolve(ids, func(id pikax.ArtworkID) (pikax.ArtworkID, error) {
		return id, nil
	}, resolver.Options{
		Concurrency: 4,
		OnProgress: func(done, total int) {
			assert.Equal(t, len(ids), total)
			calls = append(calls, done)
		},
	})

	require.Len(t, res.Successes, len(ids))
	require.Len(t, calls, len(ids))
	for i, done := range calls {
		assert.Equal(t, i+1, done)
	}
}

func TestResolveSingleFailure(t *testing.T) {
	defer goleak.VerifyNone(t)

	res := resolver.Resolve([]pikax.ArtworkID{1, 2, 3}, func(id pikax.ArtworkID) (string, error) {
		if id == 2 {
			return "", errors.New("nope")
		}
		return fmt.Sprintf("artwork-%s", id), nil
	}, resolver.Options{Concurrency: 3})

	assert.Len(t, res.Successes, 2)
	assert.ElementsMatch(t, []string{"artwork-1", "artwork-3"}, res.Successes)
	assert.Equal(t, []pikax.ArtworkID{2}, res.Failures)
}

func TestResolveEmptyBatch(t *testing.T) {
	defer goleak.VerifyNone(t)

	var progressCalls int
	res := resolver.Resolve(nil, func(id pikax.ArtworkID) (int, error) {
		t.Fatal("constructor called for empty batch")
		return 0, nil
	}, resolver.Options{
		OnProgress: func(done, total int) { progressCalls++ },
	})

	assert.Empty(t, res.Successes)
	assert.Empty(t, res.Failures)
	assert.Zero(t, progressCalls)
}

func TestResolveDuplicateIDs(t *testing.T) {
	defer goleak.VerifyNone(t)

	// duplicates are work items, each occurrence is processed
	var constructed atomic.Int32
	var progress int
	res := resolver.Resolve([]pikax.ArtworkID{7, 7, 7}, func(id pikax.ArtworkID) (pikax.ArtworkID, error) {
		constructed.Add(1)
		return id, nil
	}, resolver.Options{
		Concurrency: 2,
		OnProgress:  func(done, total int) { progress = done },
	})

	assert.Len(t, res.Successes, 3)
	assert.EqualValues(t, 3, constructed.Load())
	assert.Equal(t, 3, progress)
}

func TestResolveDefaultConcurrency(t *testing.T) {
	defer goleak.VerifyNone(t)

	res := resolver.Resolve([]pikax.ArtworkID{1, 2, 3, 4}, func(id pikax.ArtworkID) (pikax.ArtworkID, error) {
		return id, nil
	}, resolver.Options{})

	assert.Len(t, res.Successes, 4)
	assert.Empty(t, res.Failures)
}
