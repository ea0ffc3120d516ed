// Command planctl builds a race plan offline from a GPX file or a distance,
// optionally personalized with an exported activity history.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/peterbourgon/ff"

	"backend-raceplanner/internal/activity"
	"backend-raceplanner/internal/auth"
	"backend-raceplanner/internal/plan"
	"backend-raceplanner/internal/shared/logging"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		logging.New("planctl", "info").Error("planctl failed", "error", err)
		os.Exit(1)
	}
}

type cliFlags struct {
	mode        *string
	gpxPath     *string
	distanceKm  *float64
	gainM       *float64
	historyPath *string
	userID      *string
	locale      *string
	weightKg    *float64
	temperature *float64
	humidity    *float64
	lookback    *int
	pretty      *bool
	logLevel    *string
	jwtSecret   *string
	printToken  *bool
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("planctl", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	f := cliFlags{
		mode:        fs.String("mode", "distance", `"gpx" or "distance"`),
		gpxPath:     fs.String("gpx", "", "path to a GPX file (mode=gpx)"),
		distanceKm:  fs.Float64("distance", 0, "race distance in km (mode=distance)"),
		gainM:       fs.Float64("gain", 0, "elevation gain in m (mode=distance)"),
		historyPath: fs.String("history", "", "JSON array of activities"),
		userID:      fs.String("user", "local", "athlete id"),
		locale:      fs.String("locale", "en", `"en" or "fr"`),
		weightKg:    fs.Float64("weight", math.NaN(), "body weight in kg"),
		temperature: fs.Float64("temperature", math.NaN(), "race temperature in C"),
		humidity:    fs.Float64("humidity", math.NaN(), "race humidity in %"),
		lookback:    fs.Int("lookback-days", 120, "history window in days"),
		pretty:      fs.Bool("pretty", false, "indent the JSON output"),
		logLevel:    fs.String("log-level", "warn", "debug|info|warn|error"),
		jwtSecret:   fs.String("jwt-secret", "", "secret used by -print-token"),
		printToken:  fs.Bool("print-token", false, "print an API token for -user and exit"),
	}
	if err := ff.Parse(fs, args, ff.WithEnvVarPrefix("PLANCTL")); err != nil {
		return err
	}

	if *f.printToken {
		if *f.jwtSecret == "" {
			return errors.New("-print-token needs -jwt-secret")
		}
		token, err := auth.SignToken(*f.jwtSecret, *f.userID, 24*time.Hour)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(stdout, token)
		return err
	}

	req, err := requestFromFlags(f)
	if err != nil {
		return err
	}
	opts, err := plan.NewOptions(req)
	if err != nil {
		return err
	}

	var history activity.HistoryProvider
	if *f.historyPath != "" {
		static, err := activity.LoadFile(*f.historyPath)
		if err != nil {
			return err
		}
		history = static
	}

	svc := plan.NewService(history, plan.Settings{LookbackDays: *f.lookback}, logging.New("planctl", *f.logLevel))
	p, err := svc.BuildPlan(ctx, *f.userID, opts)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(stdout)
	if *f.pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(p)
}

func requestFromFlags(f cliFlags) (plan.Request, error) {
	req := plan.Request{
		Mode:         *f.mode,
		Locale:       *f.locale,
		WeightKg:     optional(*f.weightKg),
		TemperatureC: optional(*f.temperature),
		HumidityPct:  optional(*f.humidity),
	}
	switch req.Mode {
	case string(plan.ModeGPX):
		if *f.gpxPath == "" {
			return req, errors.New("-gpx is required with -mode=gpx")
		}
		payload, err := os.ReadFile(*f.gpxPath)
		if err != nil {
			return req, err
		}
		req.GPX = string(payload)
	default:
		req.DistanceKm = f.distanceKm
		req.ElevationGainM = f.gainM
	}
	return req, nil
}

// optional maps the NaN "unset" default to nil.
func optional(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}
