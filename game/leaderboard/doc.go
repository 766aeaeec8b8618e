// Package leaderboard keeps the ranked list of best finished games.
//
// A Ledger holds at most MaxEntries results ordered by elapsed seconds and
// then by moves. Record never mutates its receiver; it returns the next
// board. Book wraps a Ledger for concurrent use and mirrors it into a Store.
//
// Usage:
//
//	book := leaderboard.Open(ctx, leaderboard.NewKVStore(kv, ""))
//
//	entry, err := leaderboard.NewEntry("Ana", 42, 10)
//	if err != nil {
//		return err
//	}
//	board := book.Record(ctx, entry)
//
// Persistence:
//
// The board is stored as a JSON array of {"name","elapsedSeconds","moves"}
// records under one key. Read failures at startup and write failures after
// a record are logged and otherwise ignored.
package leaderboard
