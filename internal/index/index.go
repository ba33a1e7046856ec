// Package index provides the ordered account index: a map keyed by
// account number plus a sorted key slice for ascending traversal.
// Traversal order is the canonical order for display and persistence,
// independent of insertion order.
package index

import (
	"iter"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/tinoosan/bankcore/internal/bank"
)

// Index maps account number to account. Keys are unique; inserting a
// duplicate number leaves the index unchanged. Not safe for concurrent
// use; the owning service serializes access.
type Index struct {
	byNumber map[int]*bank.Account
	numbers  []int
}

// New constructs an empty index.
func New() *Index {
	return &Index{byNumber: make(map[int]*bank.Account)}
}

// Insert adds a new account for number unless one already exists.
// It returns the stored account (existing or new) and whether a new
// account was inserted. Validation of number and balance happens in the
// service before the index is reached.
func (ix *Index) Insert(number int, holder string, initial decimal.Decimal) (*bank.Account, bool) {
	if acc, ok := ix.byNumber[number]; ok {
		return acc, false
	}
	acc := &bank.Account{
		Number:  number,
		Holder:  holder,
		Balance: initial,
		History: bank.NewHistory(),
	}
	ix.byNumber[number] = acc
	ix.insertKey(number)
	return acc, true
}

// Lookup returns the account for number, if present.
func (ix *Index) Lookup(number int) (*bank.Account, bool) {
	acc, ok := ix.byNumber[number]
	return acc, ok
}

// Ascend iterates accounts in ascending number order. The sequence is
// finite and restartable.
func (ix *Index) Ascend() iter.Seq[*bank.Account] {
	return func(yield func(*bank.Account) bool) {
		for _, n := range ix.numbers {
			if !yield(ix.byNumber[n]) {
				return
			}
		}
	}
}

// Len returns the number of accounts held.
func (ix *Index) Len() int { return len(ix.numbers) }

// Teardown releases every account and its history. The index is empty
// afterwards and remains usable.
func (ix *Index) Teardown() {
	ix.byNumber = make(map[int]*bank.Account)
	ix.numbers = nil
}

// insertKey keeps numbers sorted ascending via binary-search insert.
func (ix *Index) insertKey(number int) {
	i := sort.SearchInts(ix.numbers, number)
	if i == len(ix.numbers) {
		ix.numbers = append(ix.numbers, number)
		return
	}
	ix.numbers = append(ix.numbers, 0)
	copy(ix.numbers[i+1:], ix.numbers[i:])
	ix.numbers[i] = number
}
