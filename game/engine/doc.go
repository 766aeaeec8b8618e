// Package engine provides the core game logic for the memory match game.
//
// The engine package implements the game mechanics including:
//   - Deck generation with a uniform shuffle
//   - The flip and pair-check state machine
//   - Countdown, win and loss detection
//   - Configuration loading and validation
//
// Core Types:
//
// Reduce is a pure function from (GameState, Input) to a Transition holding
// the next state, the signals for the presentation layer and the effects
// (timers, mismatch resolution, result recording) the host has to carry
// out. GameEngine wraps Reduce with the current state and a random source.
//
// Usage:
//
//	gameEngine, err := engine.NewEngine(engine.DefaultGameConfig(), nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	t, err := gameEngine.Start()
//	t = gameEngine.FlipCard(3)
//	t = gameEngine.FlipCard(7)
//	if t.HasSignal(engine.SignalWrongPair) {
//		// schedule ResolveMismatch after config.MismatchDelay()
//	}
//
// Game Rules:
//
// A board of rows x cols face-down cards hides pairs of images. Two cards
// are revealed per move; a pair stays up, a wrong pair is hidden again
// after a short delay. The game is won when every pair is found and lost
// when the countdown reaches zero. Generation changes on every start and
// reset so late clock events for an old game are ignored.
package engine
