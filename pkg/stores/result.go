package stores

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/steelpath/steelpath/pkg/solver"
)

// SaveResult persists the full outcome of a scenario run: the decision log,
// the material constraint audit, and the final investment cycle schedules.
// The run row must already exist.
func SaveResult(ctx context.Context, store Store, result *solver.Result) error {
	decisions := make([]Decision, len(result.Decisions))
	for i, d := range result.Decisions {
		decisions[i] = Decision{
			RunID:      result.RunID,
			Year:       d.Year,
			Plant:      d.Plant,
			StartTech:  string(d.StartTech),
			ChosenTech: string(d.ChosenTech),
			SwitchType: string(d.SwitchType),
			Rationale:  d.Rationale,
		}
	}
	if err := store.SaveDecisions(ctx, result.RunID, decisions); err != nil {
		return fmt.Errorf("failed to save decisions: %w", err)
	}

	audit := make([]MaterialAudit, len(result.MaterialAudit))
	for i, e := range result.MaterialAudit {
		failed := make([]string, len(e.FailedResources))
		for j, r := range e.FailedResources {
			failed[j] = string(r)
		}
		audit[i] = MaterialAudit{
			RunID:           result.RunID,
			Plant:           e.Plant,
			Year:            e.Year,
			StartTech:       string(e.StartTech),
			CandidateTech:   string(e.CandidateTech),
			Result:          string(e.Result),
			FailedResources: strings.Join(failed, ","),
		}
	}
	if err := store.SaveMaterialAudit(ctx, result.RunID, audit); err != nil {
		return fmt.Errorf("failed to save material audit: %w", err)
	}

	plants := make([]string, 0, len(result.Schedules))
	for plant := range result.Schedules {
		plants = append(plants, plant)
	}
	sort.Strings(plants)

	schedules := make([]CycleSchedule, 0, len(plants))
	for _, plant := range plants {
		years, err := json.Marshal(result.Schedules[plant])
		if err != nil {
			return fmt.Errorf("failed to encode schedule for %s: %w", plant, err)
		}
		schedules = append(schedules, CycleSchedule{
			RunID: result.RunID,
			Plant: plant,
			Years: string(years),
		})
	}
	if err := store.SaveCycleSchedules(ctx, result.RunID, schedules); err != nil {
		return fmt.Errorf("failed to save cycle schedules: %w", err)
	}

	return nil
}
