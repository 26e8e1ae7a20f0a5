// Package score maps compatibility scores and fondness levels to the
// qualitative labels shown to users.
package score

// Band is the qualitative compatibility band of a score.
type Band string

const (
	BandIncomplete           Band = "Incomplete"
	BandHighlyCompatible     Band = "Highly Compatible"
	BandCompatible           Band = "Compatible"
	BandModeratelyCompatible Band = "Moderately Compatible"
	BandNotCompatible        Band = "Not Compatible"
)

// Classification pairs a band with its display weight. Weight orders bands
// for emphasis: 3 is the strongest positive, 0 neutral, -1 negative.
type Classification struct {
	Band   Band `json:"band" yaml:"band"`
	Weight int  `json:"weight" yaml:"weight"`
}

// Classify maps an optional score in [0,100] to its band. Lower bounds are
// inclusive. A missing score and a score of exactly 0 are both Incomplete.
func Classify(s *float64) Classification {
	switch {
	case s == nil || *s == 0:
		return Classification{Band: BandIncomplete, Weight: 0}
	case *s >= 85:
		return Classification{Band: BandHighlyCompatible, Weight: 3}
	case *s >= 70:
		return Classification{Band: BandCompatible, Weight: 2}
	case *s >= 50:
		return Classification{Band: BandModeratelyCompatible, Weight: 1}
	default:
		return Classification{Band: BandNotCompatible, Weight: -1}
	}
}

// Tone is the display tone of a single fondness level.
type Tone string

const (
	ToneWarm     Tone = "warm"
	TonePositive Tone = "positive"
	ToneCautious Tone = "cautious"
	ToneCold     Tone = "cold"
)

// FondnessTone buckets a 0-100 fondness level.
func FondnessTone(level int) Tone {
	switch {
	case level >= 80:
		return ToneWarm
	case level >= 60:
		return TonePositive
	case level >= 40:
		return ToneCautious
	default:
		return ToneCold
	}
}
