// Package i18n holds the human-readable strings of a plan. Numeric fields are
// never localized.
package i18n

import (
	"fmt"

	"golang.org/x/text/language"
)

type Locale string

const (
	EN Locale = "en"
	FR Locale = "fr"
)

var supported = []Locale{EN, FR}

var matcher = language.NewMatcher([]language.Tag{language.English, language.French})

// Normalize resolves a language tag or a full Accept-Language value (with
// q-weights) to a supported locale. Anything unmatched is EN.
func Normalize(raw string) Locale {
	tags, _, err := language.ParseAcceptLanguage(raw)
	if err != nil || len(tags) == 0 {
		return EN
	}
	_, index, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return EN
	}
	return supported[index]
}

const (
	SlowZoneReason    = "slow_zone_reason"
	PushZoneReason    = "push_zone_reason"
	NoteStart         = "note_start_controlled"
	NoteFueling       = "note_keep_fueling"
	NoteClimbs        = "note_manage_climbs"
	AidPeriodic       = "aid_periodic"
	AidTopClimb       = "aid_top_climb"
	AidTerrainHigh    = "aid_terrain_high"
	StrategyStart     = "strategy_start"
	StrategyClimb     = "strategy_climb"
	StrategyPush      = "strategy_push"
	StrategySteady    = "strategy_steady"
	FeedType          = "feed_type"
	HydrationGuide    = "hydration_guideline"
	NutritionGuide    = "nutrition_guideline"
	HydrationStopText = "hydration_stop"
)

var dictionaries = map[Locale]map[string]string{
	EN: {
		SlowZoneReason:    "Steep climb: protect heart rate and shorten stride.",
		PushZoneReason:    "Runnable section: progressive acceleration possible.",
		NoteStart:         "Start controlled for the first 12% to preserve glycogen.",
		NoteFueling:       "Keep fueling before you feel empty.",
		NoteClimbs:        "Use climbs to manage effort, not to chase pace.",
		AidPeriodic:       "Periodic refill point",
		AidTopClimb:       "Top of climb transition",
		AidTerrainHigh:    "Natural terrain high point",
		StrategyStart:     "Controlled start, keep breathing easy.",
		StrategyClimb:     "Climb management: shorten stride and cap effort.",
		StrategyPush:      "Progressive push if fueling is on track.",
		StrategySteady:    "Steady execution and regular fueling.",
		FeedType:          "gel/drink mix",
		HydrationGuide:    "%d ml/h adjusted by effort",
		NutritionGuide:    "%d g carbs/h",
		HydrationStopText: "%d ml",
	},
	FR: {
		SlowZoneReason:    "Montee raide: protege la frequence cardiaque et raccourcis la foulee.",
		PushZoneReason:    "Section roulante: acceleration progressive possible.",
		NoteStart:         "Depart controle sur les 12% initiaux pour preserver le glycogene.",
		NoteFueling:       "Hydrate-toi et mange avant d'avoir un coup de mou.",
		NoteClimbs:        "Utilise les montees pour gerer l'effort, pas pour chasser l'allure.",
		AidPeriodic:       "Ravito periodique",
		AidTopClimb:       "Transition en haut de montee",
		AidTerrainHigh:    "Point haut naturel du terrain",
		StrategyStart:     "Depart controle, respiration facile.",
		StrategyClimb:     "Gestion de montee: raccourcis la foulee et plafonne l'effort.",
		StrategyPush:      "Acceleration progressive si l'hydratation/nutrition est bien tenue.",
		StrategySteady:    "Execution reguliere et ravitaillement constant.",
		FeedType:          "gel/boisson glucidique",
		HydrationGuide:    "%d ml/h ajuste selon l'effort",
		NutritionGuide:    "%d g glucides/h",
		HydrationStopText: "%d ml",
	},
}

// T returns the string for key, or the key itself when unknown.
func T(locale Locale, key string) string {
	dict, ok := dictionaries[locale]
	if !ok {
		dict = dictionaries[EN]
	}
	if value, ok := dict[key]; ok {
		return value
	}
	return key
}

// Tf formats the string for key with args.
func Tf(locale Locale, key string, args ...any) string {
	return fmt.Sprintf(T(locale, key), args...)
}
