package killpolicy

import (
	"sort"

	"oomguard/internal/model"
	"oomguard/pkg/interfaces"
	"oomguard/pkg/logger"
)

// RetriableLIFOPolicy minimizes permanently lost work: workers running
// retriable tasks are exhausted before any non-retriable worker is chosen,
// and within each group the most recently assigned worker goes first.
type RetriableLIFOPolicy struct{}

// NewRetriableLIFOPolicy creates the prefer-retriable LIFO policy.
func NewRetriableLIFOPolicy() *RetriableLIFOPolicy {
	return &RetriableLIFOPolicy{}
}

// SelectWorkerToKill returns the retriable worker with the newest task
// assignment, falling back to the newest non-retriable worker when no
// retriable work remains. Returns nil for an empty worker set.
func (p *RetriableLIFOPolicy) SelectWorkerToKill(workers []*model.Worker, monitor interfaces.SnapshotReader) *model.Worker {
	if len(workers) == 0 {
		logger.Debug("worker list is empty, nothing can be killed")
		return nil
	}

	ranked := make([]*model.Worker, len(workers))
	copy(ranked, workers)

	// Retriable before non-retriable, then newest assignment first.
	sort.Slice(ranked, func(i, j int) bool {
		left, right := ranked[i], ranked[j]
		if left.Task.Retriable() != right.Task.Retriable() {
			return left.Task.Retriable()
		}
		return left.AssignedSeq > right.AssignedSeq
	})

	logCandidates(PolicyRetriableLIFO, ranked, monitor)
	return ranked[0]
}
