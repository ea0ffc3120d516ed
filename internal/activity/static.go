package activity

import (
	"context"
	"encoding/json"
	"os"
	"sort"
	"strings"
)

// StaticHistory serves a fixed activity list, e.g. an export loaded from disk.
type StaticHistory []Activity

func (h StaticHistory) ActivityHistory(_ context.Context, _ string, q HistoryQuery) ([]Activity, error) {
	sports := q.SportTypes
	if len(sports) == 0 {
		sports = RunningSports
	}

	var out []Activity
	for _, a := range h {
		if !q.StartDate.IsZero() && a.StartDate.Before(q.StartDate) {
			continue
		}
		if !containsFold(sports, a.SportType) {
			continue
		}
		out = append(out, a)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartDate.After(out[j].StartDate) })
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	if len(out) == 0 {
		return nil, ErrNoHistory
	}
	return out, nil
}

// LoadFile reads a JSON array of activities.
func LoadFile(path string) (StaticHistory, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var activities []Activity
	if err := json.Unmarshal(raw, &activities); err != nil {
		return nil, err
	}
	return StaticHistory(activities), nil
}

func containsFold(list []string, value string) bool {
	for _, item := range list {
		if strings.EqualFold(item, value) {
			return true
		}
	}
	return false
}
