package filter

import "github.com/zulandar/qadesk/internal/models"

// Owner is the system and module a record belongs to. Either may be empty.
type Owner struct {
	System string
	Module string
}

// Resolver finds the owner of records that do not carry one directly.
type Resolver struct {
	byFunction    map[string]models.FunctionSubmission
	byRequirement map[string]models.Requirement
}

// NewResolver indexes submissions by function ID and requirements by ID.
// When two submissions share a function ID the first one wins.
func NewResolver(subs []models.FunctionSubmission, reqs []models.Requirement) *Resolver {
	r := &Resolver{
		byFunction:    make(map[string]models.FunctionSubmission, len(subs)),
		byRequirement: make(map[string]models.Requirement, len(reqs)),
	}
	for _, s := range subs {
		if _, ok := r.byFunction[s.FunctionID]; !ok {
			r.byFunction[s.FunctionID] = s
		}
	}
	for _, q := range reqs {
		r.byRequirement[q.ID] = q
	}
	return r
}

// Owner resolves rec's system and module.
//
// Test cases go through the submission with the same function ID, then a
// requirement whose ID equals the function ID. Plans go through their first
// linked requirement.
func (r *Resolver) Owner(rec Record) Owner {
	switch v := rec.(type) {
	case SubmissionRecord:
		return Owner{System: v.SystemName, Module: v.ModuleName}
	case ReportRecord:
		return Owner{System: v.SystemName, Module: v.ModuleName}
	case RequirementRecord:
		return Owner{System: v.System, Module: v.Module}
	case TestCaseRecord:
		if s, ok := r.byFunction[v.FunctionID]; ok {
			return Owner{System: s.SystemName, Module: s.ModuleName}
		}
		return r.requirementOwner(v.FunctionID)
	case PlanRecord:
		if len(v.Requirements) == 0 {
			return Owner{}
		}
		return r.requirementOwner(v.Requirements[0])
	}
	return Owner{}
}

func (r *Resolver) requirementOwner(id string) Owner {
	if q, ok := r.byRequirement[id]; ok {
		return Owner{System: q.System, Module: q.Module}
	}
	return Owner{}
}
