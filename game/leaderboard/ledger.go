package leaderboard

import (
	"errors"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

const (
	// MaxEntries is the number of results kept on the board.
	MaxEntries = 5

	// MaxNameLength is the longest player name, in characters.
	MaxNameLength = 15
)

var (
	ErrEmptyName      = errors.New("name is required")
	ErrNegativeResult = errors.New("elapsed seconds and moves must not be negative")
)

// Entry is one finished game on the board.
type Entry struct {
	Name           string `json:"name"`
	ElapsedSeconds int    `json:"elapsedSeconds"`
	Moves          int    `json:"moves"`
}

// Ledger is the ranked list of best results, fastest first.
type Ledger []Entry

// NormalizeName trims surrounding whitespace, composes the name to NFC and
// truncates it to MaxNameLength characters.
func NormalizeName(name string) string {
	name = strings.TrimSpace(norm.NFC.String(name))
	if utf8.RuneCountInString(name) <= MaxNameLength {
		return name
	}
	runes := []rune(name)
	return strings.TrimSpace(string(runes[:MaxNameLength]))
}

// NewEntry builds a validated entry from raw player input.
func NewEntry(name string, elapsedSeconds, moves int) (Entry, error) {
	name = NormalizeName(name)
	if name == "" {
		return Entry{}, ErrEmptyName
	}
	if elapsedSeconds < 0 || moves < 0 {
		return Entry{}, ErrNegativeResult
	}
	return Entry{Name: name, ElapsedSeconds: elapsedSeconds, Moves: moves}, nil
}

// Valid reports whether the entry could have been produced by NewEntry.
func (e Entry) Valid() bool {
	return e.Name != "" && NormalizeName(e.Name) == e.Name && e.ElapsedSeconds >= 0 && e.Moves >= 0
}

// Less orders entries by elapsed time, then by moves.
func Less(a, b Entry) bool {
	if a.ElapsedSeconds != b.ElapsedSeconds {
		return a.ElapsedSeconds < b.ElapsedSeconds
	}
	return a.Moves < b.Moves
}

// Record returns a new ledger containing e, ranked and cut to MaxEntries.
// The receiver is left untouched.
func (l Ledger) Record(e Entry) Ledger {
	next := make(Ledger, 0, len(l)+1)
	next = append(next, l...)
	next = append(next, e)
	return next.normalize()
}

// Clone returns a copy that shares no memory with l.
func (l Ledger) Clone() Ledger {
	out := make(Ledger, len(l))
	copy(out, l)
	return out
}

// Sorted reports whether l satisfies the board ordering and size bound.
func (l Ledger) Sorted() bool {
	if len(l) > MaxEntries {
		return false
	}
	return sort.SliceIsSorted(l, func(i, j int) bool { return Less(l[i], l[j]) })
}

// normalize sorts in place (stable, so earlier results win ties) and truncates.
func (l Ledger) normalize() Ledger {
	sort.SliceStable(l, func(i, j int) bool { return Less(l[i], l[j]) })
	if len(l) > MaxEntries {
		l = l[:MaxEntries]
	}
	return l
}
