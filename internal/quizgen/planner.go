package quizgen

import "fmt"

// CountRequest holds the caller's per-type question counts. A nil pointer
// means "auto": the planner fills that type when distributing whatever the
// explicit counts leave uncovered. A negative value is treated the same as
// nil so that clients still sending the legacy -1 sentinel keep working.
type CountRequest struct {
	SingleCorrect   *int
	MultipleCorrect *int
	YesNo           *int
}

func (r CountRequest) value(t QuestionType) *int {
	switch t {
	case SingleCorrect:
		return r.SingleCorrect
	case MultipleCorrect:
		return r.MultipleCorrect
	default:
		return r.YesNo
	}
}

// ExplicitSum returns the sum of all explicitly requested counts.
func (r CountRequest) ExplicitSum() int {
	sum := 0
	for _, t := range TypeOrder {
		if v := r.value(t); v != nil && *v >= 0 {
			sum += *v
		}
	}
	return sum
}

// Plan is a concrete per-type allocation. A plan produced by BuildPlan always
// sums to the requested total with no negative values.
type Plan map[QuestionType]int

// BuildPlan resolves a count request against a total:
//
//  1. Types with a concrete non-negative value are explicit; the rest are auto.
//  2. If the explicit counts exceed the total, the request is rejected.
//  3. If nothing is explicit, all three types are auto.
//  4. The remaining budget is split evenly across the auto types; the
//     remainder goes to the earliest types in TypeOrder, one extra each.
//  5. A shortfall with no auto types left is added to the first explicit type
//     in TypeOrder; with no explicit types either the request is rejected.
//
// No partial plan is ever returned on error.
func BuildPlan(total int, req CountRequest) (Plan, error) {
	if total <= 0 {
		return nil, newError(KindUnfulfillable, "total questions must be positive, got %d", total)
	}

	explicit := make(map[QuestionType]int)
	var autoTypes []QuestionType
	for _, t := range TypeOrder {
		if v := req.value(t); v != nil && *v >= 0 {
			explicit[t] = *v
		} else {
			autoTypes = append(autoTypes, t)
		}
	}

	sumExplicit := 0
	for _, v := range explicit {
		sumExplicit += v
	}
	if sumExplicit > total {
		return nil, newError(KindExceedsTotal,
			"sum of specified question types (%d) exceeds total questions (%d)", sumExplicit, total)
	}

	// With no explicit counts at all, every type participates in
	// auto-distribution regardless of how the request was shaped.
	if len(explicit) == 0 {
		autoTypes = append(autoTypes[:0], TypeOrder...)
	}

	plan := make(Plan, len(TypeOrder))
	for t, v := range explicit {
		plan[t] = v
	}

	remaining := total - sumExplicit
	switch {
	case remaining > 0 && len(autoTypes) > 0:
		base := remaining / len(autoTypes)
		remainder := remaining % len(autoTypes)
		for i, t := range autoTypes {
			n := base
			if i < remainder {
				n++
			}
			plan[t] = n
		}
	case remaining > 0:
		// Every type was pinned explicitly but the counts fall short of the
		// total. The shortfall goes to the first explicit type.
		assigned := false
		for _, t := range TypeOrder {
			if _, ok := explicit[t]; ok {
				plan[t] += remaining
				assigned = true
				break
			}
		}
		if !assigned {
			return nil, newError(KindUnfulfillable,
				"cannot fulfill %d total questions with the given constraints", total)
		}
	}

	// Auto types that received nothing resolve to zero.
	for _, t := range TypeOrder {
		if _, ok := plan[t]; !ok {
			plan[t] = 0
		}
	}

	return plan, nil
}

// Total returns the number of questions the plan allocates.
func (p Plan) Total() int {
	sum := 0
	for _, v := range p {
		sum += v
	}
	return sum
}

var typeLabels = map[QuestionType]string{
	SingleCorrect:   "Single-Correct Multiple-Choice",
	MultipleCorrect: "Multiple-Correct Multiple-Choice",
	YesNo:           "Yes/No",
}

// Instructions renders one prompt line per type with a non-zero allocation,
// in fixed type order.
func (p Plan) Instructions() []string {
	var lines []string
	for _, t := range TypeOrder {
		if p[t] > 0 {
			lines = append(lines, fmt.Sprintf("- Exactly %d %s questions.", p[t], typeLabels[t]))
		}
	}
	return lines
}
