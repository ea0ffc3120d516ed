package db

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	StateDisabled = "disabled"
	StateUp       = "up"
	StateDown     = "down"
)

// Pinger is satisfied by *pgxpool.Pool and pgxmock pools.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Status struct {
	Postgres string `json:"postgres"`
	Redis    string `json:"redis"`
}

// Healthy is false only when a configured store does not answer.
func (s Status) Healthy() bool {
	return s.Postgres != StateDown && s.Redis != StateDown
}

var probeTimeout = 2 * time.Second

// Probe pings both stores. A nil store reports StateDisabled.
func Probe(ctx context.Context, pg Pinger, rdb *redis.Client) Status {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	status := Status{Postgres: StateDisabled, Redis: StateDisabled}
	if pg != nil {
		status.Postgres = stateOf(pg.Ping(ctx))
	}
	if rdb != nil {
		status.Redis = stateOf(rdb.Ping(ctx).Err())
	}
	return status
}

func stateOf(err error) string {
	if err != nil {
		return StateDown
	}
	return StateUp
}
