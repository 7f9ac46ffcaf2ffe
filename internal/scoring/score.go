package scoring

// Score is an optional component or indicator score on the 1-10 scale.
// The zero value is "missing". Missing is a first-class state here: a score
// that could not be computed upstream must stay missing so that coverage
// accounting stays honest, instead of being silently filled with a midpoint.
type Score struct {
	Value float64
	Valid bool
}

// ValidScore returns a present score with the given value.
func ValidScore(v float64) Score {
	return Score{Value: v, Valid: true}
}

// Or returns the score value, or def when the score is missing.
func (s Score) Or(def float64) float64 {
	if !s.Valid {
		return def
	}
	return s.Value
}

// Ptr returns the value as a pointer, nil when missing. Used at the JSON
// output boundary so missing scores serialize as null.
func (s Score) Ptr() *float64 {
	if !s.Valid {
		return nil
	}
	v := s.Value
	return &v
}

// Components holds the four component scores for one symbol.
type Components struct {
	Technical   Score
	Fundamental Score
	News        Score
	Legal       Score
}

// Coverage describes which components are present.
type Coverage struct {
	Count int
	Code  string
}

// Coverage reports how many of the four components are present and a short
// code built from the letters T, F, N, L for the present ones.
func (c Components) Coverage() Coverage {
	var cov Coverage
	code := make([]byte, 0, 4)
	for _, p := range []struct {
		letter byte
		score  Score
	}{
		{'T', c.Technical},
		{'F', c.Fundamental},
		{'N', c.News},
		{'L', c.Legal},
	} {
		if p.score.Valid {
			cov.Count++
			code = append(code, p.letter)
		}
	}
	cov.Code = string(code)
	return cov
}
