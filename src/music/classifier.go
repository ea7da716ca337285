package music

// Lean is the mood a genre pulls towards.
type Lean int

const (
	LeanNone Lean = iota
	LeanChill
	LeanEnergetic
)

// Band is a partition of the energy scale.
type Band int

const (
	BandLow Band = iota
	BandMid
	BandHigh
)

const (
	lowBandMax  = 3
	highBandMin = 7
)

var genreLeans = map[string]Lean{
	"ambient":       LeanChill,
	"lofi":          LeanChill,
	"sleep":         LeanChill,
	"chillout":      LeanChill,
	"classical":     LeanChill,
	"jazz":          LeanChill,
	"acoustic":      LeanChill,
	"downtempo":     LeanChill,
	"rock":          LeanEnergetic,
	"punk":          LeanEnergetic,
	"party":         LeanEnergetic,
	"edm":           LeanEnergetic,
	"metal":         LeanEnergetic,
	"dance":         LeanEnergetic,
	"techno":        LeanEnergetic,
	"house":         LeanEnergetic,
	"drum and bass": LeanEnergetic,
	"hip-hop":       LeanEnergetic,
	"pop":           LeanNone,
	"indie":         LeanNone,
	"folk":          LeanNone,
	"r&b":           LeanNone,
	"country":       LeanNone,
	"reggae":        LeanNone,
	"blues":         LeanNone,
	"soundtrack":    LeanNone,
}

var genreAliases = map[string]string{
	"lo-fi":       "lofi",
	"lo fi":       "lofi",
	"chill":       "chillout",
	"chill-out":   "chillout",
	"hip hop":     "hip-hop",
	"hiphop":      "hip-hop",
	"rap":         "hip-hop",
	"dnb":         "drum and bass",
	"drum & bass": "drum and bass",
	"drum n bass": "drum and bass",
	"drum'n'bass": "drum and bass",
	"rnb":         "r&b",
	"r and b":     "r&b",
	"electronic":  "edm",
	"ost":         "soundtrack",
}

// GenreLean returns the lean of a normalized genre. Unknown genres have none.
func GenreLean(genre string) Lean {
	return genreLeans[genre]
}

// KnownGenre reports whether genre belongs to the known set.
func KnownGenre(genre string) bool {
	_, ok := genreLeans[genre]
	return ok
}

// EnergyBand places energy in a band: low is 0..3, mid 4..6, high 7..10.
func EnergyBand(energy int) Band {
	switch {
	case energy <= lowBandMax:
		return BandLow
	case energy >= highBandMin:
		return BandHigh
	}
	return BandMid
}

// Classify assigns a mood from a normalized genre and energy. A genre lean
// wins only when the energy band agrees with it; everything else is Mixed.
func Classify(genre string, energy int) Mood {
	band := EnergyBand(energy)
	switch GenreLean(genre) {
	case LeanChill:
		if band == BandLow {
			return MoodChill
		}
	case LeanEnergetic:
		if band == BandHigh {
			return MoodEnergetic
		}
	}
	return MoodMixed
}
