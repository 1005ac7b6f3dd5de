package exec

// Levels groups nodes into dependency levels: level 0 contains every node
// with no unmet dependency, level 1 contains nodes whose dependencies are
// all in level 0 or earlier, and so on. A parallel executor may run an
// entire level concurrently; the sequential default executor ignores
// this and just walks Nodes in OrderIndex order.
func (d *ExecutionDAG) Levels() [][]*Node {
	level := make(map[string]int, len(d.Nodes))
	var assign func(id string) int
	assigning := map[string]bool{}

	assign = func(id string) int {
		if lv, done := level[id]; done {
			return lv
		}
		if assigning[id] {
			// A cycle would have already been rejected by BuildDAG; this
			// guards against infinite recursion if called on a malformed
			// DAG built by hand in a test.
			return 0
		}
		assigning[id] = true

		n, ok := d.byID[id]
		if !ok || len(n.DependencyEdges) == 0 {
			level[id] = 0
			assigning[id] = false
			return 0
		}
		max := -1
		for _, e := range n.DependencyEdges {
			lv := assign(e.TargetStepID)
			if lv > max {
				max = lv
			}
		}
		level[id] = max + 1
		assigning[id] = false
		return level[id]
	}

	maxLevel := 0
	for _, n := range d.Nodes {
		lv := assign(n.StepID)
		if lv > maxLevel {
			maxLevel = lv
		}
	}

	levels := make([][]*Node, maxLevel+1)
	for _, n := range d.Nodes {
		lv := level[n.StepID]
		levels[lv] = append(levels[lv], n)
	}
	return levels
}

// populateSupplementalEstimates fills EstimatedDurationMS and CriticalPath
// via a longest-path walk weighted by each node's Cost, a best-effort
// reporting aid that never influences OrderIndex.
func populateSupplementalEstimates(d *ExecutionDAG) {
	best := map[string]int64{}
	bestPrev := map[string]string{}

	var longest func(id string) int64
	visiting := map[string]bool{}
	longest = func(id string) int64 {
		if v, ok := best[id]; ok {
			return v
		}
		if visiting[id] {
			return 0
		}
		visiting[id] = true
		defer func() { visiting[id] = false }()

		n, ok := d.byID[id]
		if !ok {
			return 0
		}
		cost := int64(n.Action.Metadata.Cost)
		if cost <= 0 {
			cost = 1
		}
		var max int64
		var maxPrev string
		for _, e := range n.DependencyEdges {
			v := longest(e.TargetStepID)
			if v > max {
				max = v
				maxPrev = e.TargetStepID
			}
		}
		total := max + cost
		best[id] = total
		if maxPrev != "" {
			bestPrev[id] = maxPrev
		}
		return total
	}

	var endStep string
	var maxTotal int64
	for _, n := range d.Nodes {
		total := longest(n.StepID)
		if total >= maxTotal {
			maxTotal = total
			endStep = n.StepID
		}
	}

	d.EstimatedDurationMS = maxTotal
	var path []string
	for step := endStep; step != ""; step = bestPrev[step] {
		path = append([]string{step}, path...)
	}
	d.CriticalPath = path
}
