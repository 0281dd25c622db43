package core

// JarInput is one row of the setup form: a jar name and the raw text the
// user typed for its limit.
type JarInput struct {
	Name   string
	Amount string
}

// AllocationInput carries the raw setup form fields. Amounts are free-form
// text and go through ParseAmount.
type AllocationInput struct {
	TotalBudget string
	Jars        []JarInput
}

// ValidateAllocation decides whether a proposed jar allocation is
// admissible against the proposed total budget. Conditions are evaluated in
// a fixed order and the first failure wins:
//
//  1. unparseable or non-positive total budget
//  2. a jar field with no digits at all (an explicit "0" is a valid limit)
//  3. a duplicate jar name
//  4. allocations summing over the budget
//  5. allocations not summing exactly to the budget
//
// On success the returned config is finalized: jar limits and the total
// budget are frozen for the life of the challenge.
func ValidateAllocation(durationDays int, startDate Date, in AllocationInput) (ChallengeConfig, error) {
	total := ParseAmount(in.TotalBudget)
	if total <= 0 {
		return ChallengeConfig{}, ErrInvalidBudget
	}

	for _, j := range in.Jars {
		if !HasDigits(j.Amount) {
			return ChallengeConfig{}, ErrMissingAllocation
		}
	}

	seen := make(map[string]struct{}, len(in.Jars))
	jars := make([]Jar, 0, len(in.Jars))
	var allocated int64
	for _, j := range in.Jars {
		if _, dup := seen[j.Name]; dup {
			return ChallengeConfig{}, ErrDuplicateJar
		}
		seen[j.Name] = struct{}{}
		limit := ParseAmount(j.Amount)
		jars = append(jars, Jar{Name: j.Name, Limit: limit})
		allocated += limit
	}

	if allocated > total {
		return ChallengeConfig{}, ErrAllocationExceedsBudget
	}
	if allocated != total {
		return ChallengeConfig{}, ErrAllocationMismatch
	}

	return ChallengeConfig{
		DurationDays: durationDays,
		StartDate:    startDate,
		TotalBudget:  total,
		Jars:         jars,
	}, nil
}
