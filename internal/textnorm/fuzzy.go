package textnorm

// DefaultConfidenceFloor is the minimum Dice score accepted as a fuzzy
// match. Anything below it must be treated as ambiguous by the caller.
const DefaultConfidenceFloor = 0.55

// DiceCoefficient scores string similarity on character bigrams in [0, 1].
// Inputs are expected to be normalized already.
func DiceCoefficient(a, b string) float64 {
	if a == b {
		return 1
	}
	ba := bigrams(a)
	bb := bigrams(b)
	if len(ba) == 0 || len(bb) == 0 {
		return 0
	}

	counts := make(map[string]int, len(ba))
	for _, g := range ba {
		counts[g]++
	}
	matches := 0
	for _, g := range bb {
		if counts[g] > 0 {
			counts[g]--
			matches++
		}
	}
	return 2 * float64(matches) / float64(len(ba)+len(bb))
}

// BestMatch returns the candidate with the highest Dice score against the
// query, along with the score. ok is false when no candidate reaches the
// confidence floor; the caller must then ask a clarifying question rather
// than guess.
func BestMatch(query string, candidates []string, floor float64) (best string, score float64, ok bool) {
	if floor <= 0 {
		floor = DefaultConfidenceFloor
	}
	for _, c := range candidates {
		if s := DiceCoefficient(query, c); s > score {
			best, score = c, s
		}
	}
	return best, score, score >= floor
}

func bigrams(s string) []string {
	r := []rune(s)
	if len(r) < 2 {
		return nil
	}
	grams := make([]string, 0, len(r)-1)
	for i := 0; i < len(r)-1; i++ {
		// Whitespace-spanning bigrams carry no signal across word boundaries.
		if r[i] == ' ' || r[i+1] == ' ' {
			continue
		}
		grams = append(grams, string(r[i:i+2]))
	}
	return grams
}
