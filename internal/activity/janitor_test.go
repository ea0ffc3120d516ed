package activity

import (
	"context"
	"testing"
	"time"
)

type fakeSyncSource struct {
	users []string
	since []time.Time
	err   error
}

func (f *fakeSyncSource) UsersSyncedSince(_ context.Context, since time.Time) ([]string, error) {
	f.since = append(f.since, since)
	return f.users, f.err
}

type fakeInvalidator struct {
	invalidated []string
}

func (f *fakeInvalidator) Invalidate(_ context.Context, userID string) (int, error) {
	f.invalidated = append(f.invalidated, userID)
	return 1, nil
}

func TestJanitorSweep(t *testing.T) {
	source := &fakeSyncSource{users: []string{"user-1", "user-2"}}
	cache := &fakeInvalidator{}
	j := NewJanitor(source, cache, nil)

	first := time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC)
	j.now = func() time.Time { return first }

	removed, err := j.Sweep(context.Background())
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if removed != 2 || len(cache.invalidated) != 2 {
		t.Fatalf("expected both users invalidated, got %v", cache.invalidated)
	}

	j.now = func() time.Time { return first.Add(15 * time.Minute) }
	if _, err := j.Sweep(context.Background()); err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if !source.since[1].Equal(first) {
		t.Fatalf("expected second sweep to start from the first sweep time, got %v", source.since[1])
	}
}

func TestJanitorSweepSourceError(t *testing.T) {
	source := &fakeSyncSource{err: errActivity}
	j := NewJanitor(source, &fakeInvalidator{}, nil)
	before := j.lastSweep

	if _, err := j.Sweep(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
	if !j.lastSweep.Equal(before) {
		t.Fatalf("failed sweep must not advance the watermark")
	}
}

func TestJanitorScheduleStops(t *testing.T) {
	j := NewJanitor(&fakeSyncSource{}, &fakeInvalidator{}, nil)
	stop, err := j.Schedule(context.Background(), 1)
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	stop()
	stop()

	stop, err = j.Schedule(context.Background(), 0)
	if err != nil || stop == nil {
		t.Fatalf("a zero interval must fall back to the default, got %v", err)
	}
	stop()
}
