package activity

import (
	"context"
	"errors"
	"time"
)

// RunningSports are the sport types the planner learns from.
var RunningSports = []string{"Run", "TrailRun"}

type Activity struct {
	ID                  int64     `json:"id"`
	SportType           string    `json:"sportType"`
	StartDate           time.Time `json:"startDate"`
	DistanceM           float64   `json:"distanceM"`
	MovingTimeSec       float64   `json:"movingTimeSec"`
	TotalElevationGainM float64   `json:"totalElevationGainM"`
	AverageHeartRate    float64   `json:"averageHeartRate"`
	RelativeEffortScore *float64  `json:"relativeEffortScore,omitempty"`
}

type HistoryQuery struct {
	StartDate  time.Time
	SportTypes []string
	Limit      int
}

// HistoryProvider is the only thing the planner needs from the activity store.
type HistoryProvider interface {
	ActivityHistory(ctx context.Context, userID string, q HistoryQuery) ([]Activity, error)
}

// ErrNoHistory is returned when the store has nothing for the athlete. It is
// the only provider error the planner degrades on.
var ErrNoHistory = errors.New("no activity history")
