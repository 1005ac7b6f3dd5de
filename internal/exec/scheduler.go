package exec

import (
	"context"
	"log"
	"sync"
)

// Scheduler executes a DAG level by level, fanning the nodes of each
// level out to concurrent goroutines. Within a level no node depends on
// any other, so ordering across the level is unconstrained; the barrier
// between levels preserves every dependency edge. The sequential
// Executor remains the deterministic default; this scheduler is for
// hosts whose actions are dominated by I/O waits.
type Scheduler struct {
	*Executor
	// MaxConcurrent bounds how many actions of one level run at once.
	// Zero or negative means no bound beyond the level size.
	MaxConcurrent int
}

// NewScheduler returns a Scheduler with the same defaults as NewExecutor.
func NewScheduler() *Scheduler {
	return &Scheduler{Executor: NewExecutor()}
}

// Execute runs dag against execCtx, one dependency level at a time.
// Declared resource reads/writes are advisory: colliding nodes within a
// level are logged, not serialized (hosts that need hard exclusion model
// the conflict as a dependency instead).
func (s *Scheduler) Execute(ctx context.Context, dag *ExecutionDAG, execCtx *ExecutionContext) (*ExecutionContext, error) {
	for _, level := range dag.Levels() {
		if len(level) == 0 {
			continue
		}
		if err := ctx.Err(); err != nil {
			return execCtx, &Cancelled{StepID: level[0].StepID}
		}
		warnResourceConflicts(level)

		limit := s.MaxConcurrent
		if limit <= 0 {
			limit = len(level)
		}
		sem := make(chan struct{}, limit)
		errs := make([]error, len(level))

		var wg sync.WaitGroup
		for i, node := range level {
			wg.Add(1)
			go func(i int, node *Node) {
				defer wg.Done()
				sem <- struct{}{}
				defer func() { <-sem }()
				errs[i] = s.runNode(ctx, node, execCtx)
			}(i, node)
		}
		wg.Wait()

		for i, err := range errs {
			if err != nil {
				node := level[i]
				return execCtx, &PlanExecutionFailed{
					StepID:     node.StepID,
					ActionName: node.Action.Metadata.ActionName,
					ArgSummary: node.Action.ArgSummary,
					Cause:      err,
				}
			}
		}
	}
	return execCtx, nil
}

// warnResourceConflicts logs write/write and read/write collisions on
// declared resources among nodes that are about to run concurrently.
func warnResourceConflicts(level []*Node) {
	writers := map[string][]string{}
	readers := map[string][]string{}
	for _, n := range level {
		for _, r := range n.Action.Metadata.ResourceWrites {
			writers[r] = append(writers[r], n.StepID)
		}
		for _, r := range n.Action.Metadata.ResourceReads {
			readers[r] = append(readers[r], n.StepID)
		}
	}
	for resource, w := range writers {
		if len(w) > 1 {
			log.Printf("exec: steps %v declare concurrent writes to resource %q", w, resource)
			continue
		}
		if r := readers[resource]; len(r) > 0 && !(len(r) == 1 && r[0] == w[0]) {
			log.Printf("exec: steps %v read resource %q while step %q writes it", r, resource, w[0])
		}
	}
}
