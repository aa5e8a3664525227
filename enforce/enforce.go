package enforce

import (
	"fmt"
	"math"

	"github.com/rs/zerolog/log"
)

// ENFORCE helper to halt program on error
func ENFORCE(query interface{}, args ...interface{}) {
	switch t := query.(type) {
	case bool:
		if !t {
			log.Error().Msg("ENFORCE: " + fmt.Sprint(args...))
			panic(fmt.Sprint(args...))
		}
	case error:
		if t != nil {
			log.Error().Err(t).Msg("ENFORCE: " + fmt.Sprint(args...))
			panic(t)
		}
	case string:
		log.Error().Msg("ENFORCE: " + t + " " + fmt.Sprint(args...))
		panic(t)
	case nil:
		// Allow nil to pass since we sometimes do enforce.ENFORCE(err) to ensure there is no error
	default:
		log.Error().Msg("ENFORCE: incorrect usage of enforce with type: " + fmt.Sprintf("%T", t))
		panic(t)
	}
}

// Distribution halts if v has a negative or non-finite entry, or does not sum to 1 within tol.
func Distribution(v []float64, tol float64, args ...interface{}) {
	sum := 0.0
	for i := range v {
		ENFORCE(v[i] >= 0 && !math.IsInf(v[i], 0) && !math.IsNaN(v[i]), "entry ", i, " is ", v[i], " ", fmt.Sprint(args...))
		sum += v[i]
	}
	ENFORCE(math.Abs(sum-1) <= tol, "sums to ", sum, " ", fmt.Sprint(args...))
}

// Symmetric halts if the row-major q×q matrix m is not symmetric within tol.
func Symmetric(m []float64, q int, tol float64, args ...interface{}) {
	ENFORCE(len(m) == q*q, "matrix has ", len(m), " entries, expected ", q*q)
	for a := 0; a < q; a++ {
		for b := a + 1; b < q; b++ {
			ENFORCE(math.Abs(m[a*q+b]-m[b*q+a]) <= tol, "asymmetric at ", a, ",", b, " ", fmt.Sprint(args...))
		}
	}
}
