package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"backend-raceplanner/internal/plan"
	"backend-raceplanner/internal/shared/apperr"
)

func TestRunDistance(t *testing.T) {
	var out bytes.Buffer
	if err := run(context.Background(), []string{"-distance", "21.1", "-gain", "300"}, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	var p plan.Plan
	if err := json.Unmarshal(out.Bytes(), &p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.Summary.DistanceKm != 21.1 || p.Athlete.Level != "beginner" || p.Athlete.BaselinePaceMinPerKm != 6.5 {
		t.Fatalf("unexpected plan %+v", p.Summary)
	}
}

func TestRunGPXWithHistory(t *testing.T) {
	dir := t.TempDir()
	gpxPath := filepath.Join(dir, "course.gpx")
	gpx := `<?xml version="1.0" encoding="UTF-8"?>
<gpx version="1.1" creator="test" xmlns="http://www.topografix.com/GPX/1/1"><trk><trkseg>
<trkpt lat="45.0000000" lon="6.0"><ele>100</ele></trkpt>
<trkpt lat="45.0089932" lon="6.0"><ele>150</ele></trkpt>
</trkseg></trk></gpx>`
	if err := os.WriteFile(gpxPath, []byte(gpx), 0o600); err != nil {
		t.Fatalf("write gpx: %v", err)
	}

	var out bytes.Buffer
	args := []string{"-mode", "gpx", "-gpx", gpxPath, "-locale", "fr", "-weight", "58", "-pretty"}
	if err := run(context.Background(), args, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	var p plan.Plan
	if err := json.Unmarshal(out.Bytes(), &p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.Source != "gpx" || p.Summary.ElevationGainM != 50 {
		t.Fatalf("unexpected plan %+v", p.Summary)
	}
	if d := p.Summary.DistanceKm; d < 0.98 || d > 1.02 {
		t.Fatalf("expected about 1 km, got %v", d)
	}
	if p.Athlete.EstimatedWeightKg != 58 {
		t.Fatalf("expected weight override")
	}
	if !strings.Contains(out.String(), "\n  ") {
		t.Fatalf("expected indented output")
	}
}

func TestRunHistoryFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	if err := os.WriteFile(path, []byte(`[]`), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	var out bytes.Buffer
	if err := run(context.Background(), []string{"-distance", "10", "-history", path}, &out); err != nil {
		t.Fatalf("empty history must fall back to defaults: %v", err)
	}

	if err := run(context.Background(), []string{"-distance", "10", "-history", filepath.Join(t.TempDir(), "missing.json")}, &out); err == nil {
		t.Fatalf("expected error for a missing history file")
	}
}

func TestRunInvalidInput(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), []string{"-distance", "0"}, &out)
	if apperr.KindOf(err) != apperr.KindInvalidInput {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if err := run(context.Background(), []string{"-mode", "gpx"}, &out); err == nil {
		t.Fatalf("expected error without -gpx")
	}
	if err := run(context.Background(), []string{"-mode", "swim"}, &out); apperr.KindOf(err) != apperr.KindInvalidInput {
		t.Fatalf("expected invalid mode, got %v", err)
	}
	if err := run(context.Background(), []string{"-unknown"}, &out); err == nil {
		t.Fatalf("expected flag error")
	}
}

func TestRunEnvPrefix(t *testing.T) {
	t.Setenv("PLANCTL_DISTANCE", "5")
	var out bytes.Buffer
	if err := run(context.Background(), nil, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	var p plan.Plan
	_ = json.Unmarshal(out.Bytes(), &p)
	if p.Summary.DistanceKm != 5 {
		t.Fatalf("expected distance from env, got %v", p.Summary.DistanceKm)
	}
}

func TestPrintToken(t *testing.T) {
	var out bytes.Buffer
	if err := run(context.Background(), []string{"-print-token"}, &out); err == nil {
		t.Fatalf("expected error without secret")
	}
	if err := run(context.Background(), []string{"-print-token", "-jwt-secret", "s", "-user", "u1"}, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	if strings.Count(strings.TrimSpace(out.String()), ".") != 2 {
		t.Fatalf("expected a JWT, got %q", out.String())
	}
}
