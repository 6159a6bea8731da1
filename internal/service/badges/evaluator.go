package badges

import (
	"github.com/smartcents/gamification-engine/internal/models"
	"github.com/smartcents/gamification-engine/internal/service/stats"
)

// selectCandidates returns the active badges the user newly qualifies for.
// A badge is skipped when the user already holds its award record or its
// name appears in the legacy earned-name list (records written before award
// rows existed carry only the name). Stateless and idempotent.
func (s *Service) selectCandidates(
	snapshot *stats.Snapshot,
	catalog []models.Badge,
	earnedIDs map[uint]struct{},
	user *models.User,
) []models.Badge {
	var candidates []models.Badge

	for i := range catalog {
		badge := catalog[i]

		if _, earned := earnedIDs[badge.ID]; earned {
			continue
		}
		if user.HasBadgeName(badge.Name) {
			continue
		}

		criteria, err := models.ParseCriteria(badge.Criteria)
		if err != nil {
			s.log.Error().
				Err(err).
				Str("badge", badge.Name).
				Msg("Failed to parse badge criteria")
			continue
		}
		if len(criteria) == 0 {
			// No recognized criteria: never auto-awarded.
			s.log.Debug().
				Str("badge", badge.Name).
				Msg("Badge has no recognized criteria, skipping")
			continue
		}

		if criteriaSatisfied(snapshot, criteria) {
			candidates = append(candidates, badge)
		}
	}

	return candidates
}

// criteriaSatisfied reports whether every recognized criterion meets its
// threshold. All present criteria combine with AND.
func criteriaSatisfied(snapshot *stats.Snapshot, criteria models.Criteria) bool {
	for kind, threshold := range criteria {
		value, ok := snapshotValue(snapshot, kind)
		if !ok || value < threshold {
			return false
		}
	}
	return true
}

// snapshotValue dispatches a criterion kind to its snapshot metric. The
// switch is exhaustive over the recognized vocabulary; anything else reports
// false so unrecognized criteria stay fail-closed even if they slip past
// parsing.
func snapshotValue(snapshot *stats.Snapshot, kind models.CriterionKind) (float64, bool) {
	switch kind {
	case models.CriterionModulesCompleted:
		return float64(snapshot.ModulesCompleted), true
	case models.CriterionBudgetsCreated:
		return float64(snapshot.BudgetsCreated), true
	case models.CriterionLoginStreak:
		return float64(snapshot.LoginStreak), true
	case models.CriterionPerfectQuizzes:
		return float64(snapshot.PerfectQuizzes), true
	case models.CriterionGoalsCompleted:
		return float64(snapshot.GoalsCompleted), true
	case models.CriterionModulesInOneDay:
		return float64(snapshot.ModulesCompletedToday), true
	case models.CriterionInvestingModules:
		return float64(snapshot.InvestingModulesCompleted), true
	case models.CriterionAllModulesCompleted:
		if snapshot.AllModulesCompleted {
			return 1, true
		}
		return 0, true
	case models.CriterionConsecutiveSavingsMonths:
		return float64(snapshot.ConsecutiveSavingsMonths), true
	default:
		return 0, false
	}
}
