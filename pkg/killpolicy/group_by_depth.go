package killpolicy

import (
	"sort"

	"oomguard/internal/model"
	"oomguard/pkg/interfaces"
	"oomguard/pkg/logger"
)

// GroupByDepthPolicy sheds load across task nesting levels instead of
// draining one caller's deepest descendants: the target group is the depth
// with the most live workers, count ties break toward the greatest depth
// (deeper work is cheaper to re-derive), and within the target group the
// most recently assigned worker goes first. Groups are recomputed from
// scratch on every call since the caller removes the victim between kills.
type GroupByDepthPolicy struct{}

// NewGroupByDepthPolicy creates the group-by-depth policy.
func NewGroupByDepthPolicy() *GroupByDepthPolicy {
	return &GroupByDepthPolicy{}
}

// SelectWorkerToKill returns the newest worker of the largest depth group.
// Returns nil for an empty worker set.
func (p *GroupByDepthPolicy) SelectWorkerToKill(workers []*model.Worker, monitor interfaces.SnapshotReader) *model.Worker {
	if len(workers) == 0 {
		logger.Debug("worker list is empty, nothing can be killed")
		return nil
	}

	groups := make(map[int][]*model.Worker)
	for _, w := range workers {
		groups[w.Task.Depth] = append(groups[w.Task.Depth], w)
	}

	targetDepth, targetSize := 0, 0
	for depth, group := range groups {
		if len(group) > targetSize || (len(group) == targetSize && depth > targetDepth) {
			targetDepth, targetSize = depth, len(group)
		}
	}

	ranked := make([]*model.Worker, len(groups[targetDepth]))
	copy(ranked, groups[targetDepth])
	sort.Slice(ranked, func(i, j int) bool {
		return ranked[i].AssignedSeq > ranked[j].AssignedSeq
	})

	logCandidates(PolicyGroupByDepth, ranked, monitor)
	return ranked[0]
}
