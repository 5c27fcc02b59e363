package crypto

import (
	"crypto/rand"
	"math/big"
)

// RandIntn returns a uniform random value in [0, n). It panics if got a
// non-positive parameter.
func RandIntn(n int) int {
	r, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic(err)
	}

	return int(r.Int64())
}

// RandRange returns a uniform random value in [a, b). It panics if got a
// non-positive parameter or a>=b.
func RandRange(a, b int) int {
	return RandIntn(b-a) + a
}

// SampleWithoutReplacement picks k distinct indexes of [0, n) uniformly, in
// draw order. k is capped at n.
func SampleWithoutReplacement(n, k int) []int {
	if k > n {
		k = n
	}

	if k <= 0 {
		return []int{}
	}

	pool := make([]int, n)
	for i := range pool {
		pool[i] = i
	}

	// Partial Fisher-Yates: the first k slots end up holding the sample.
	for i := 0; i < k; i++ {
		j := RandRange(i, n)
		pool[i], pool[j] = pool[j], pool[i]
	}

	return pool[:k]
}
