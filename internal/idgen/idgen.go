// Package idgen produces the external identifiers used by the wallet system:
// 10-digit numeric wallet ids and TXN-prefixed 15-digit transaction ids.
// Generation is purely random; uniqueness is the job of the corresponding
// database constraints, with callers regenerating on conflict.
package idgen

import (
	"fmt"
	"math/rand"
)

const (
	walletIDDigits      = 10
	transactionIDDigits = 15

	// TransactionIDPrefix is the caller-visible prefix of every ledger id.
	TransactionIDPrefix = "TXN"
)

// Generator draws random identifiers. It is safe for concurrent use: draws
// come from the package-level math/rand source, which is goroutine-safe
// and seeded by the runtime.
type Generator struct{}

// New returns a Generator.
func New() *Generator {
	return &Generator{}
}

// randomDigits returns a uniformly random integer with exactly n digits
// (no leading zero).
func (g *Generator) randomDigits(n int) int64 {
	min := int64(1)
	for i := 1; i < n; i++ {
		min *= 10
	}
	return min + rand.Int63n(min*9)
}

// NewWalletID returns a candidate 10-digit wallet identifier.
func (g *Generator) NewWalletID() int64 {
	return g.randomDigits(walletIDDigits)
}

// NewTransactionID returns a candidate transaction identifier of the form
// TXN followed by 15 digits.
func (g *Generator) NewTransactionID() string {
	return fmt.Sprintf("%s%d", TransactionIDPrefix, g.randomDigits(transactionIDDigits))
}
