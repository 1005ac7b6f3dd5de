package exec

import "fmt"

// DependencyEdge records why one step must run before another. Reason is
// either "explicit" (an authored dependsOn) or "context:<key>" (derived
// from producesContext/requiresContext flow).
type DependencyEdge struct {
	TargetStepID string
	Reasons      []string
}

// Node is one scheduled step: its metadata, the edges it depends on, and
// its 1-based position in the deterministic execution order.
type Node struct {
	StepID          string
	Action          *ExecutableAction
	DependencyEdges []DependencyEdge
	OrderIndex      int
}

// ExecutionDAG is the ordered schedule produced by BuildDAG: Nodes in
// execution order, plus a stepId index for O(1) lookup.
type ExecutionDAG struct {
	Nodes []*Node
	byID  map[string]*Node

	// EstimatedDurationMS and CriticalPath are supplemental reporting
	// fields, never consulted for scheduling order.
	EstimatedDurationMS int64
	CriticalPath        []string
}

// ByStepID returns the node for stepId, or ok=false.
func (d *ExecutionDAG) ByStepID(stepID string) (*Node, bool) {
	n, ok := d.byID[stepID]
	return n, ok
}

// DuplicateStepId is raised when two actions in the input share a stepId.
type DuplicateStepId struct{ StepID string }

func (e *DuplicateStepId) Error() string { return fmt.Sprintf("exec: duplicate step id %q", e.StepID) }

// InvalidStepId is raised when an action's stepId is empty.
type InvalidStepId struct{ Index int }

func (e *InvalidStepId) Error() string {
	return fmt.Sprintf("exec: action at index %d has an empty step id", e.Index)
}

// UnknownDependency is raised when a dependsOn target does not exist.
type UnknownDependency struct {
	StepID string
	Target string
}

func (e *UnknownDependency) Error() string {
	return fmt.Sprintf("exec: step %q depends on unknown step %q", e.StepID, e.Target)
}

// SelfDependency is raised when a step depends on itself.
type SelfDependency struct{ StepID string }

func (e *SelfDependency) Error() string {
	return fmt.Sprintf("exec: step %q cannot depend on itself", e.StepID)
}

// ContextContradiction is raised when an explicit dependsOn edge
// contradicts context flow: the target requires a context key that the
// depending step itself produces.
type ContextContradiction struct {
	StepID string
	Target string
	Key    string
}

func (e *ContextContradiction) Error() string {
	return fmt.Sprintf("exec: explicit dependency %q -> %q contradicts context flow on key %q", e.StepID, e.Target, e.Key)
}

// CycleDetected is raised when the topological sort cannot order every
// node; Remaining lists the steps left over once no zero-in-degree node
// remains.
type CycleDetected struct{ Remaining []string }

func (e *CycleDetected) Error() string {
	return fmt.Sprintf("exec: cycle detected among steps %v", e.Remaining)
}

// BuildDAG derives an execution DAG from actions using their metadata's
// dependsOn edges and requiresContext/producesContext flow, then orders
// it with the default Kahn-topological-sort strategy.
func BuildDAG(actions []*ExecutableAction) (*ExecutionDAG, error) {
	byID := make(map[string]*ExecutableAction, len(actions))
	insertionOrder := make([]string, 0, len(actions))

	for i, a := range actions {
		if a.Metadata.StepID == "" {
			return nil, &InvalidStepId{Index: i}
		}
		if _, exists := byID[a.Metadata.StepID]; exists {
			return nil, &DuplicateStepId{StepID: a.Metadata.StepID}
		}
		byID[a.Metadata.StepID] = a
		insertionOrder = append(insertionOrder, a.Metadata.StepID)
	}

	producers := map[string][]string{} // contextKey -> producing stepIds, in insertion order
	for _, id := range insertionOrder {
		for _, key := range byID[id].Metadata.ProducesContext {
			producers[key] = append(producers[key], id)
		}
	}

	edges := map[string][]DependencyEdge{} // stepId -> edges it depends on

	for _, id := range insertionOrder {
		a := byID[id]
		reasonsByTarget := map[string][]string{}
		targetOrder := []string{}

		addReason := func(target, reason string) {
			if _, seen := reasonsByTarget[target]; !seen {
				targetOrder = append(targetOrder, target)
			}
			reasonsByTarget[target] = append(reasonsByTarget[target], reason)
		}

		for _, dep := range a.Metadata.DependsOn {
			if dep == id {
				return nil, &SelfDependency{StepID: id}
			}
			target, ok := byID[dep]
			if !ok {
				return nil, &UnknownDependency{StepID: id, Target: dep}
			}
			for _, k := range target.Metadata.RequiresContext {
				if contains(a.Metadata.ProducesContext, k) {
					return nil, &ContextContradiction{StepID: id, Target: dep, Key: k}
				}
			}
			addReason(dep, "explicit")
		}

		for _, key := range a.Metadata.RequiresContext {
			for _, producer := range producers[key] {
				if producer == id {
					continue
				}
				addReason(producer, "context:"+key)
			}
		}

		for _, target := range targetOrder {
			edges[id] = append(edges[id], DependencyEdge{TargetStepID: target, Reasons: reasonsByTarget[target]})
		}
	}

	ordered, err := kahnTopoSort(insertionOrder, edges)
	if err != nil {
		return nil, err
	}

	dag := &ExecutionDAG{byID: map[string]*Node{}}
	for i, id := range ordered {
		n := &Node{
			StepID:          id,
			Action:          byID[id],
			DependencyEdges: edges[id],
			OrderIndex:      i + 1,
		}
		dag.Nodes = append(dag.Nodes, n)
		dag.byID[id] = n
	}

	populateSupplementalEstimates(dag)
	return dag, nil
}

// kahnTopoSort orders stepIds so that every dependency precedes its
// dependents, breaking ties by insertionOrder so that a given plan
// always yields the same schedule.
func kahnTopoSort(insertionOrder []string, edges map[string][]DependencyEdge) ([]string, error) {
	// dependents[x] = steps that depend on x (reverse of edges, which map
	// a step to what it depends on).
	dependents := map[string][]string{}
	inDegree := map[string]int{}
	for _, id := range insertionOrder {
		inDegree[id] = len(edges[id])
	}
	for id, deps := range edges {
		for _, e := range deps {
			dependents[e.TargetStepID] = append(dependents[e.TargetStepID], id)
		}
	}

	queue := make([]string, 0, len(insertionOrder))
	for _, id := range insertionOrder {
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}

	var ordered []string
	inQueuePos := map[string]int{}
	for i, id := range insertionOrder {
		inQueuePos[id] = i
	}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		ordered = append(ordered, id)

		// Successors in stable insertion order.
		succs := append([]string(nil), dependents[id]...)
		sortByInsertionOrder(succs, inQueuePos)
		for _, s := range succs {
			inDegree[s]--
			if inDegree[s] == 0 {
				queue = append(queue, s)
				sortByInsertionOrder(queue, inQueuePos)
			}
		}
	}

	if len(ordered) < len(insertionOrder) {
		seen := map[string]bool{}
		for _, id := range ordered {
			seen[id] = true
		}
		var remaining []string
		for _, id := range insertionOrder {
			if !seen[id] {
				remaining = append(remaining, id)
			}
		}
		return nil, &CycleDetected{Remaining: remaining}
	}

	return ordered, nil
}

func sortByInsertionOrder(ids []string, pos map[string]int) {
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && pos[ids[j-1]] > pos[ids[j]]; j-- {
			ids[j-1], ids[j] = ids[j], ids[j-1]
		}
	}
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
