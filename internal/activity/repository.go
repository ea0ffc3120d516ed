package activity

import (
	"context"
	"errors"
	"time"

	"backend-raceplanner/internal/db"
	"backend-raceplanner/internal/shared/apperr"
)

var errNoDatabase = errors.New("activity store not connected")

// Repository reads synced activities from Postgres.
type Repository struct {
	db db.Querier
}

func NewRepository(db db.Querier) *Repository {
	return &Repository{db: db}
}

func (r *Repository) ActivityHistory(ctx context.Context, userID string, q HistoryQuery) ([]Activity, error) {
	if r.db == nil {
		return nil, apperr.Upstream(errNoDatabase, "activity history unavailable")
	}
	sports := q.SportTypes
	if len(sports) == 0 {
		sports = RunningSports
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 1000
	}

	rows, err := r.db.Query(ctx, `
		SELECT activity_id, sport_type, start_date, COALESCE(distance_m,0), COALESCE(moving_time_sec,0)::float8,
		       COALESCE(total_elevation_gain_m,0), COALESCE(average_heartrate,0), COALESCE(relative_effort_score,-1)
		FROM activities
		WHERE user_id=$1 AND start_date >= $2 AND sport_type = ANY($3)
		ORDER BY start_date DESC
		LIMIT $4
	`, userID, q.StartDate, sports, limit)
	if err != nil {
		return nil, apperr.Upstream(err, "activity history unavailable")
	}
	defer rows.Close()

	var activities []Activity
	for rows.Next() {
		var a Activity
		var effort float64
		if err := rows.Scan(&a.ID, &a.SportType, &a.StartDate, &a.DistanceM, &a.MovingTimeSec, &a.TotalElevationGainM, &a.AverageHeartRate, &effort); err != nil {
			return nil, apperr.Upstream(err, "activity history unavailable")
		}
		if effort >= 0 {
			a.RelativeEffortScore = &effort
		}
		activities = append(activities, a)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Upstream(err, "activity history unavailable")
	}
	if len(activities) == 0 {
		return nil, ErrNoHistory
	}
	return activities, nil
}

// UsersSyncedSince lists athletes whose activities changed after since.
func (r *Repository) UsersSyncedSince(ctx context.Context, since time.Time) ([]string, error) {
	if r.db == nil {
		return nil, errNoDatabase
	}
	rows, err := r.db.Query(ctx, `
		SELECT DISTINCT user_id
		FROM activities
		WHERE synced_at > $1
	`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		users = append(users, id)
	}
	return users, rows.Err()
}
