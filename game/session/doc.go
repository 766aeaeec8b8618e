// Package session runs memory match games and manages their lifecycle.
//
// The session package implements:
//   - One event loop per game, owning its engine
//   - The one-second countdown and the delayed hiding of wrong pairs
//   - Push of masked snapshots and signals to a Notifier
//   - Hand-off of finished games to a Recorder
//   - Session lookup, expiry and cleanup
//
// Core Types:
//
// Manager creates, finds and removes sessions. Session serializes player
// commands and clock events through a single inbox channel. Clock events
// carry the generation of the game that scheduled them, so a tick or a
// resolution that arrives after a reset or a new start is dropped.
//
// Scheduler abstracts the wall clock. ClockScheduler is used in production;
// tests substitute a scheduler whose timers fire on demand.
//
// Usage:
//
//	manager := session.NewManager(session.Options{
//		Notifier: hub,
//		Recorder: book,
//	})
//
//	sess, err := manager.Create("", config)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	t, err := sess.Start(ctx)
//	t, err = sess.Flip(ctx, 4)
//
// Cleanup:
//
// Delete and CleanupExpiredSessions close the session, which stops its loop
// and cancels its timers.
package session
