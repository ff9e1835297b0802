package metric

// Band is a human-readable interpretation of a ΔE value.
type Band int

const (
	BandImperceptible Band = iota // ΔE < 1
	BandExcellent                 // ΔE < 3
	BandGood                      // ΔE < 6
	BandNoticeable                // ΔE < 12
	BandSignificant               // ΔE >= 12
)

// Interpret classifies a ΔE using the fixed thresholds 1, 3, 6 and 12.
func Interpret(deltaE float64) Band {
	switch {
	case deltaE < 1:
		return BandImperceptible
	case deltaE < 3:
		return BandExcellent
	case deltaE < 6:
		return BandGood
	case deltaE < 12:
		return BandNoticeable
	default:
		return BandSignificant
	}
}

func (b Band) String() string {
	switch b {
	case BandImperceptible:
		return "imperceptible"
	case BandExcellent:
		return "excellent"
	case BandGood:
		return "good"
	case BandNoticeable:
		return "noticeable"
	default:
		return "significant"
	}
}

// Description returns a sentence suitable for showing next to a match.
func (b Band) Description() string {
	switch b {
	case BandImperceptible:
		return "Imperceptible difference to the human eye"
	case BandExcellent:
		return "Very similar - excellent match"
	case BandGood:
		return "Similar - good match"
	case BandNoticeable:
		return "Perceptible difference, but still similar"
	default:
		return "Significant difference"
	}
}

// MarshalText encodes the band by name so JSON output stays readable.
func (b Band) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}
