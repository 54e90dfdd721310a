package terraform

import (
	"encoding/json"
	"fmt"
	"slices"
)

// PlanSummary is the minimal reading of a `terraform show -json` rendering:
// just enough to report what a plan would do and to detect drift. The full
// plan schema is owned by the tool and not modeled here.
type PlanSummary struct {
	Create  int
	Update  int
	Delete  int
	Replace int
}

// Total returns the number of resources the plan touches.
func (s PlanSummary) Total() int {
	return s.Create + s.Update + s.Delete + s.Replace
}

// HasChanges reports whether the plan does anything at all.
func (s PlanSummary) HasChanges() bool { return s.Total() > 0 }

// String renders the summary the way operators expect to read it.
func (s PlanSummary) String() string {
	return fmt.Sprintf("%d to create, %d to update, %d to replace, %d to destroy",
		s.Create, s.Update, s.Replace, s.Delete)
}

type planDocument struct {
	ResourceChanges []struct {
		Change struct {
			Actions []string `json:"actions"`
		} `json:"change"`
	} `json:"resource_changes"`
}

// ParsePlanSummary counts resource change actions in a plan JSON document.
func ParsePlanSummary(data []byte) (PlanSummary, error) {
	var doc planDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return PlanSummary{}, fmt.Errorf("parsing plan json: %w", err)
	}

	var s PlanSummary
	for _, rc := range doc.ResourceChanges {
		actions := rc.Change.Actions
		switch {
		case len(actions) == 2 && actions[0] == "delete" && actions[1] == "create",
			len(actions) == 2 && actions[0] == "create" && actions[1] == "delete":
			s.Replace++
		case slices.Contains(actions, "create"):
			s.Create++
		case slices.Contains(actions, "update"):
			s.Update++
		case slices.Contains(actions, "delete"):
			s.Delete++
		}
	}
	return s, nil
}
