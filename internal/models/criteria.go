package models

import (
	"encoding/json"
	"fmt"
)

// CriterionKind is the closed vocabulary of badge criteria keys. Criteria are
// stored as a flat JSON map per badge; only keys in this vocabulary are ever
// evaluated, anything else is dropped at parse time so unknown criteria can
// never be treated as satisfied.
type CriterionKind string

// Recognized criterion kinds.
const (
	CriterionModulesCompleted         CriterionKind = "modulesCompleted"
	CriterionBudgetsCreated           CriterionKind = "budgetsCreated"
	CriterionLoginStreak              CriterionKind = "loginStreak"
	CriterionPerfectQuizzes           CriterionKind = "perfectQuizzes"
	CriterionGoalsCompleted           CriterionKind = "goalsCompleted"
	CriterionModulesInOneDay          CriterionKind = "modulesInOneDay"
	CriterionInvestingModules         CriterionKind = "investingModulesCompleted"
	CriterionAllModulesCompleted      CriterionKind = "allModulesCompleted"
	CriterionConsecutiveSavingsMonths CriterionKind = "consecutiveSavingsMonths"
)

// recognizedKinds indexes the closed vocabulary for parse-time filtering.
var recognizedKinds = map[CriterionKind]struct{}{
	CriterionModulesCompleted:         {},
	CriterionBudgetsCreated:           {},
	CriterionLoginStreak:              {},
	CriterionPerfectQuizzes:           {},
	CriterionGoalsCompleted:           {},
	CriterionModulesInOneDay:          {},
	CriterionInvestingModules:         {},
	CriterionAllModulesCompleted:      {},
	CriterionConsecutiveSavingsMonths: {},
}

// Criteria is a badge's parsed eligibility thresholds, keyed by recognized
// kind only. The boolean allModulesCompleted key parses to threshold 1.
type Criteria map[CriterionKind]float64

// ParseCriteria decodes a badge's raw criteria map, keeping recognized keys
// and silently dropping the rest. A badge whose raw map yields an empty
// Criteria is excluded from automatic awarding entirely.
func ParseCriteria(raw json.RawMessage) (Criteria, error) {
	if len(raw) == 0 {
		return Criteria{}, nil
	}

	var flat map[string]interface{}
	if err := json.Unmarshal(raw, &flat); err != nil {
		return nil, fmt.Errorf("failed to parse badge criteria: %w", err)
	}

	criteria := make(Criteria, len(flat))
	for key, value := range flat {
		kind := CriterionKind(key)
		if _, ok := recognizedKinds[kind]; !ok {
			continue
		}

		switch v := value.(type) {
		case bool:
			if kind != CriterionAllModulesCompleted {
				return nil, fmt.Errorf("criterion %q requires a numeric threshold", key)
			}
			if !v {
				return nil, fmt.Errorf("criterion %q must be true when present", key)
			}
			criteria[kind] = 1
		case float64: // JSON numbers decode as float64
			criteria[kind] = v
		default:
			return nil, fmt.Errorf("criterion %q has unsupported threshold type %T", key, value)
		}
	}

	return criteria, nil
}
