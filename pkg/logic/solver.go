package logic

// Plain DPLL over integer literals: positive literal v asserts variable v,
// negative asserts its complement. Feature-model formulas are small
// (tens of variables), so unit propagation plus chronological branching
// is all the machinery needed.

const (
	unassigned int8 = iota
	assignedTrue
	assignedFalse
)

// solve searches for a satisfying assignment of the clauses over
// variables 1..numVars. Returns the assignment and whether one exists.
func solve(numVars int, clauses [][]int) ([]int8, bool) {
	assign := make([]int8, numVars+1)
	if dpll(clauses, assign) {
		return assign, true
	}
	return nil, false
}

func dpll(clauses [][]int, assign []int8) bool {
	// Unit propagation to fixpoint.
	for {
		unit := 0
		for _, clause := range clauses {
			satisfied := false
			unassignedLit := 0
			unassignedCount := 0
			for _, lit := range clause {
				switch value(assign, lit) {
				case assignedTrue:
					satisfied = true
				case unassigned:
					unassignedCount++
					unassignedLit = lit
				}
				if satisfied {
					break
				}
			}
			if satisfied {
				continue
			}
			if unassignedCount == 0 {
				return false // conflict
			}
			if unassignedCount == 1 {
				unit = unassignedLit
				break
			}
		}
		if unit == 0 {
			break
		}
		set(assign, unit)
	}

	// Pick the first unassigned variable appearing in an unsatisfied clause.
	branch := 0
	for _, clause := range clauses {
		satisfied := false
		for _, lit := range clause {
			if value(assign, lit) == assignedTrue {
				satisfied = true
				break
			}
		}
		if satisfied {
			continue
		}
		for _, lit := range clause {
			if value(assign, lit) == unassigned {
				branch = abs(lit)
				break
			}
		}
		if branch != 0 {
			break
		}
	}
	if branch == 0 {
		return true // every clause satisfied
	}

	saved := make([]int8, len(assign))
	copy(saved, assign)

	set(assign, branch)
	if dpll(clauses, assign) {
		return true
	}
	copy(assign, saved)

	set(assign, -branch)
	if dpll(clauses, assign) {
		return true
	}
	copy(assign, saved)
	return false
}

// value evaluates a literal under the current assignment.
func value(assign []int8, lit int) int8 {
	v := assign[abs(lit)]
	if v == unassigned {
		return unassigned
	}
	if (v == assignedTrue) == (lit > 0) {
		return assignedTrue
	}
	return assignedFalse
}

// set records the assignment that makes lit true.
func set(assign []int8, lit int) {
	if lit > 0 {
		assign[lit] = assignedTrue
	} else {
		assign[-lit] = assignedFalse
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
