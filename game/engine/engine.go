package engine

import (
	"fmt"
	"math/rand/v2"
)

// Engine provides the main interface for game operations
type Engine interface {
	// Commands
	Start() (Transition, error)
	FlipCard(index int) Transition
	SubmitName(name string) Transition
	Reset() Transition

	// Clock events
	Tick(generation uint64) Transition
	ResolveMismatch(generation uint64, cardIDs [2]int) Transition

	// Game state
	GetState() *GameState
	GetPhase() Phase
	GetMoves() int
	GetTimeRemaining() int

	// Configuration
	GetConfig() *GameConfig
}

// GameEngine implements the Engine interface. It is not safe for concurrent
// use; a session serializes access to it.
type GameEngine struct {
	state  *GameState
	config *GameConfig
	rng    *rand.Rand
}

// NewEngine creates a new game engine with the provided configuration. A
// nil rng gets a randomly seeded source.
func NewEngine(config *GameConfig, rng *rand.Rand) (*GameEngine, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	return &GameEngine{
		config: config,
		rng:    rng,
		state:  NewGameState(config),
	}, nil
}

// NewEngineWithDefaults creates a new game engine with the default configuration
func NewEngineWithDefaults() *GameEngine {
	engine, err := NewEngine(DefaultGameConfig(), nil)
	if err != nil {
		panic(fmt.Sprintf("default game config is invalid: %v", err))
	}
	return engine
}

func (e *GameEngine) apply(in Input) Transition {
	t := Reduce(e.config, e.state, in)
	e.state = t.State
	t.State = t.State.Clone()
	return t
}

// Start deals a fresh deck and starts the clock. Outside the start, won and
// lost phases it does nothing.
func (e *GameEngine) Start() (Transition, error) {
	if !e.state.Phase.CanStart() {
		return Transition{State: e.GetState()}, nil
	}
	deck, err := NewDeck(e.config, e.rng)
	if err != nil {
		return Transition{State: e.GetState()}, err
	}
	return e.apply(Start{Deck: deck}), nil
}

// FlipCard turns the card at index face up
func (e *GameEngine) FlipCard(index int) Transition {
	return e.apply(Flip{Index: index})
}

// SubmitName records the finished game under name
func (e *GameEngine) SubmitName(name string) Transition {
	return e.apply(SubmitName{Name: name})
}

// Reset abandons the current game and returns to the start phase
func (e *GameEngine) Reset() Transition {
	return e.apply(Reset{})
}

// Tick advances the countdown by one second
func (e *GameEngine) Tick(generation uint64) Transition {
	return e.apply(Tick{Generation: generation})
}

// ResolveMismatch hides the wrong pair cardIDs
func (e *GameEngine) ResolveMismatch(generation uint64, cardIDs [2]int) Transition {
	return e.apply(ResolveMismatch{Generation: generation, CardIDs: cardIDs})
}

// GetState returns a copy of the current game state
func (e *GameEngine) GetState() *GameState {
	return e.state.Clone()
}

// GetPhase returns the current phase
func (e *GameEngine) GetPhase() Phase {
	return e.state.Phase
}

// GetMoves returns the number of completed pair-checks
func (e *GameEngine) GetMoves() int {
	return e.state.Moves
}

// GetTimeRemaining returns the seconds left on the clock
func (e *GameEngine) GetTimeRemaining() int {
	return e.state.TimeRemaining
}

// GetGeneration returns the current session generation
func (e *GameEngine) GetGeneration() uint64 {
	return e.state.Generation
}

// GetConfig returns the current game configuration
func (e *GameEngine) GetConfig() *GameConfig {
	return e.config
}
