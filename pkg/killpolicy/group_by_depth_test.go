package killpolicy

import (
	"testing"

	"oomguard/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drainOrder(t *testing.T, policy WorkerKillingPolicy, workers []*model.Worker, expected []*model.Worker) {
	t.Helper()
	for _, want := range expected {
		victim := policy.SelectWorkerToKill(workers, &fakeSnapshotReader{})
		require.NotNil(t, victim)
		assert.Equal(t, want.ID, victim.ID)
		workers = removeWorker(workers, victim)
	}
	assert.Empty(t, workers)
}

func TestGroupByDepthEmptyWorkerPoolSelectsNoWorker(t *testing.T) {
	policy := NewGroupByDepthPolicy()

	victim := policy.SelectWorkerToKill(nil, &fakeSnapshotReader{})
	assert.Nil(t, victim)

	victim = policy.SelectWorkerToKill([]*model.Worker{}, &fakeSnapshotReader{})
	assert.Nil(t, victim)
}

func TestDepthGroupingTwoNestedLevels(t *testing.T) {
	workers := []*model.Worker{
		newTaskWorker(0, 1),
		newTaskWorker(0, 1),
		newTaskWorker(0, 2),
		newTaskWorker(0, 2),
	}

	// Both groups have two members, so the depth tie-break targets depth 2
	// first; each kill rebalances the group sizes.
	expected := []*model.Worker{
		workers[3],
		workers[1],
		workers[2],
		workers[0],
	}
	drainOrder(t, NewGroupByDepthPolicy(), workers, expected)
}

func TestDepthGroupingOnlyOneAtHighestDepth(t *testing.T) {
	workers := []*model.Worker{
		newTaskWorker(0, 1),
		newTaskWorker(0, 1),
		newTaskWorker(0, 2),
	}

	// Depth 1 is the larger group and is shrunk first.
	expected := []*model.Worker{
		workers[1],
		workers[2],
		workers[0],
	}
	drainOrder(t, NewGroupByDepthPolicy(), workers, expected)
}

func TestDepthGroupingOnlyOneAtAllDepths(t *testing.T) {
	workers := []*model.Worker{
		newTaskWorker(0, 1),
		newTaskWorker(0, 2),
		newTaskWorker(0, 3),
		newTaskWorker(0, 4),
	}

	// All group sizes tie, so the kill order is exactly depth-descending.
	expected := []*model.Worker{
		workers[3],
		workers[2],
		workers[1],
		workers[0],
	}
	drainOrder(t, NewGroupByDepthPolicy(), workers, expected)
}

func TestLargestGroupTargetedBeforeDeeperSmallerGroup(t *testing.T) {
	workers := []*model.Worker{
		newTaskWorker(0, 2),
		newTaskWorker(0, 2),
		newTaskWorker(0, 1),
		newTaskWorker(0, 1),
		newTaskWorker(0, 1),
	}

	// Depth 1 outnumbers depth 2 and is shrunk first despite being
	// shallower; ties then alternate toward the deeper group.
	expected := []*model.Worker{
		workers[4],
		workers[1],
		workers[3],
		workers[0],
		workers[2],
	}
	drainOrder(t, NewGroupByDepthPolicy(), workers, expected)
}

func TestLIFOWithinTargetGroup(t *testing.T) {
	first := newTaskWorker(0, 1)
	second := newTaskWorker(0, 1)
	third := newTaskWorker(0, 1)
	deep := newTaskWorker(0, 5)
	workers := []*model.Worker{first, second, third, deep}

	victim := NewGroupByDepthPolicy().SelectWorkerToKill(workers, &fakeSnapshotReader{})
	require.NotNil(t, victim)
	assert.Equal(t, third.ID, victim.ID, "newest worker of the largest depth group goes first")
}

func TestGroupByDepthIgnoresRetriability(t *testing.T) {
	nonRetriable := newTaskWorker(0, 3)
	retriable := newTaskWorker(5, 3)
	shallow := newTaskWorker(5, 1)
	workers := []*model.Worker{nonRetriable, retriable, shallow}

	// Depth 3 is the largest group; its newest member is chosen even
	// though it is retriable and a non-retriable sibling exists.
	victim := NewGroupByDepthPolicy().SelectWorkerToKill(workers, &fakeSnapshotReader{})
	require.NotNil(t, victim)
	assert.Equal(t, retriable.ID, victim.ID)
}
