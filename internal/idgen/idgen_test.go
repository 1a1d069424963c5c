package idgen

import (
	"regexp"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewWalletID(t *testing.T) {
	g := New()
	for i := 0; i < 1000; i++ {
		id := g.NewWalletID()
		assert.GreaterOrEqual(t, id, int64(1_000_000_000), "wallet id must have 10 digits")
		assert.Less(t, id, int64(10_000_000_000), "wallet id must have 10 digits")
	}
}

func TestNewTransactionID(t *testing.T) {
	g := New()
	pattern := regexp.MustCompile(`^TXN\d{15}$`)
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := g.NewTransactionID()
		assert.Regexp(t, pattern, id)
		seen[id] = true
	}
	// 1000 draws from a 9*10^14 space colliding would indicate a broken RNG.
	assert.Len(t, seen, 1000)
}

// One Generator is shared by every concurrent money movement and
// registration, so drawing from it in parallel must be safe. Run with -race.
func TestGeneratorConcurrentUse(t *testing.T) {
	g := New()
	const goroutines, draws = 8, 200

	ids := make(chan string, goroutines*draws)
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < draws; j++ {
				ids <- g.NewTransactionID()
			}
		}()
	}
	wg.Wait()
	close(ids)

	pattern := regexp.MustCompile(`^TXN\d{15}$`)
	for id := range ids {
		assert.Regexp(t, pattern, id)
	}
}
