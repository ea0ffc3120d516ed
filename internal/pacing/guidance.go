package pacing

import (
	"backend-raceplanner/internal/athlete"
	"backend-raceplanner/internal/segment"
	"backend-raceplanner/internal/shared/i18n"
	"backend-raceplanner/internal/shared/num"
)

const (
	slowZoneGradePct = 4.5
	pushZoneGradePct = 1.2
	maxZones         = 4
)

type Zone struct {
	StartKm float64 `json:"startKm"`
	EndKm   float64 `json:"endKm"`
	Reason  string  `json:"reason"`
}

type TerrainPaces struct {
	ClimbPaceLabel    string `json:"climbPaceLabel"`
	FlatPaceLabel     string `json:"flatPaceLabel"`
	DownhillPaceLabel string `json:"downhillPaceLabel"`
}

type Guidance struct {
	ConservativeUntilKm float64      `json:"conservativeUntilKm"`
	PushFromKm          float64      `json:"pushFromKm"`
	PaceByTerrain       TerrainPaces `json:"paceByTerrain"`
	KeySlowZones        []Zone       `json:"keySlowZones"`
	KeyPushZones        []Zone       `json:"keyPushZones"`
	Notes               []string     `json:"notes"`
}

var guidanceClimbFactor = map[athlete.Level]float64{
	athlete.Advanced:     1.18,
	athlete.Intermediate: 1.23,
	athlete.Beginner:     1.28,
}

// BuildGuidance summarizes where to hold back and where to push.
func BuildGuidance(segments []segment.Segment, b athlete.Baseline, raceDistanceKm float64, locale i18n.Locale) Guidance {
	pushRatio := 0.82
	if b.Level == athlete.Advanced {
		pushRatio = 0.72
	}
	g := Guidance{
		ConservativeUntilKm: num.Round2(raceDistanceKm * conservativeStartRatio),
		PushFromKm:          num.Round2(raceDistanceKm * pushRatio),
		PaceByTerrain:       terrainPaces(b),
		KeySlowZones:        []Zone{},
		KeyPushZones:        []Zone{},
		Notes: []string{
			i18n.T(locale, i18n.NoteStart),
			i18n.T(locale, i18n.NoteFueling),
			i18n.T(locale, i18n.NoteClimbs),
		},
	}

	for _, s := range segments {
		zone := Zone{StartKm: num.Round2(s.StartKm), EndKm: num.Round2(s.EndKm)}
		if s.AverageGradePercent >= slowZoneGradePct && len(g.KeySlowZones) < maxZones {
			zone.Reason = i18n.T(locale, i18n.SlowZoneReason)
			g.KeySlowZones = append(g.KeySlowZones, zone)
		}
		if s.AverageGradePercent <= pushZoneGradePct && s.EndKm >= g.PushFromKm && len(g.KeyPushZones) < maxZones {
			zone.Reason = i18n.T(locale, i18n.PushZoneReason)
			g.KeyPushZones = append(g.KeyPushZones, zone)
		}
	}
	return g
}

func terrainPaces(b athlete.Baseline) TerrainPaces {
	flat := num.Clamp(b.BaselinePaceMinPerKm, minBaselinePace, maxBaselinePace) * lookup(levelFactor, b.Level, 1)
	return TerrainPaces{
		ClimbPaceLabel:    FormatPace(flat * lookup(guidanceClimbFactor, b.Level, 1.28)),
		FlatPaceLabel:     FormatPace(flat),
		DownhillPaceLabel: FormatPace(flat * lookup(terrainFactor[segment.Downhill], b.Level, 0.96)),
	}
}
