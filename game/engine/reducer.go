package engine

import (
	"time"

	"github.com/wricardo/memory-match-game/game/leaderboard"
)

// Input is a command from the player or an event from the clock
type Input interface {
	isInput()
}

// Start begins a new game with the given deck
type Start struct {
	Deck []Card
}

// Flip turns the card at Index face up
type Flip struct {
	Index int
}

// SubmitName records the finished game under Name
type SubmitName struct {
	Name string
}

// Reset abandons the current game
type Reset struct{}

// Tick is one second of the countdown for Generation
type Tick struct {
	Generation uint64
}

// ResolveMismatch hides a wrong pair once its delay has elapsed
type ResolveMismatch struct {
	Generation uint64
	CardIDs    [2]int
}

func (Start) isInput()           {}
func (Flip) isInput()            {}
func (SubmitName) isInput()      {}
func (Reset) isInput()           {}
func (Tick) isInput()            {}
func (ResolveMismatch) isInput() {}

// Reduce applies in to state and returns the next state together with the
// signals and effects it produced. state is never modified. An input that
// is not valid in the current state yields Applied=false and the same state.
func Reduce(config *GameConfig, state *GameState, in Input) Transition {
	if state == nil {
		state = NewGameState(config)
	}

	switch in := in.(type) {
	case Start:
		return reduceStart(config, state, in)
	case Flip:
		return reduceFlip(config, state, in)
	case SubmitName:
		return reduceSubmitName(state, in)
	case Reset:
		return reduceReset(config, state)
	case Tick:
		return reduceTick(state, in)
	case ResolveMismatch:
		return reduceResolve(state, in)
	}
	return ignored(state)
}

func ignored(state *GameState) Transition {
	return Transition{State: state}
}

func reduceStart(config *GameConfig, state *GameState, in Start) Transition {
	if !state.Phase.CanStart() || len(in.Deck) == 0 || len(in.Deck)%2 != 0 {
		return ignored(state)
	}

	duration := state.Duration
	if config != nil {
		duration = config.DurationSeconds
	}

	next := &GameState{
		Generation:    state.Generation + 1,
		Cards:         make([]Card, len(in.Deck)),
		Flipped:       []int{},
		Moves:         0,
		TimeRemaining: duration,
		Duration:      duration,
		Phase:         PhasePlaying,
	}
	for i, c := range in.Deck {
		next.Cards[i] = Card{ID: i, ImageID: c.ImageID, Image: c.Image}
	}

	return Transition{
		State:   next,
		Applied: true,
		Effects: []Effect{
			{Kind: EffectCancelResolve},
			{Kind: EffectStartTimer, Generation: next.Generation},
		},
	}
}

func reduceFlip(config *GameConfig, state *GameState, in Flip) Transition {
	if state.Phase != PhasePlaying || state.Resolving || len(state.Flipped) >= 2 {
		return ignored(state)
	}
	if in.Index < 0 || in.Index >= len(state.Cards) {
		return ignored(state)
	}
	if card := state.Cards[in.Index]; card.IsFlipped || card.IsMatched {
		return ignored(state)
	}

	next := state.Clone()
	next.Cards[in.Index].IsFlipped = true
	next.Flipped = append(next.Flipped, in.Index)

	t := Transition{State: next, Applied: true}
	if len(next.Flipped) == 2 {
		checkPair(config, &t)
	}
	return t
}

// checkPair counts the move first and only then looks for a win.
func checkPair(config *GameConfig, t *Transition) {
	s := t.State
	s.Moves++

	a, b := s.Flipped[0], s.Flipped[1]
	if s.Cards[a].ImageID != s.Cards[b].ImageID {
		s.Resolving = true
		delay := DefaultMismatchDelayMs * time.Millisecond
		if config != nil {
			delay = config.MismatchDelay()
		}
		t.Signals = append(t.Signals, SignalWrongPair)
		t.Effects = append(t.Effects, Effect{
			Kind:       EffectScheduleResolve,
			Generation: s.Generation,
			CardIDs:    [2]int{a, b},
			Delay:      delay,
		})
		return
	}

	s.Cards[a].IsMatched = true
	s.Cards[b].IsMatched = true
	s.Flipped = []int{}
	t.Signals = append(t.Signals, SignalCorrectPair)

	if s.AllMatched() {
		s.Phase = PhaseAwaitingName
		t.Signals = append(t.Signals, SignalWin, SignalCelebrate)
		t.Effects = append(t.Effects, Effect{Kind: EffectStopTimer, Generation: s.Generation})
	}
}

func reduceResolve(state *GameState, in ResolveMismatch) Transition {
	if in.Generation != state.Generation || state.Phase != PhasePlaying || !state.Resolving {
		return ignored(state)
	}
	if len(state.Flipped) != 2 || state.Flipped[0] != in.CardIDs[0] || state.Flipped[1] != in.CardIDs[1] {
		return ignored(state)
	}

	next := state.Clone()
	for _, id := range in.CardIDs {
		next.Cards[id].IsFlipped = false
	}
	next.Flipped = []int{}
	next.Resolving = false
	return Transition{State: next, Applied: true}
}

func reduceTick(state *GameState, in Tick) Transition {
	if in.Generation != state.Generation || state.Phase != PhasePlaying || state.TimeRemaining <= 0 {
		return ignored(state)
	}

	next := state.Clone()
	next.TimeRemaining--
	t := Transition{State: next, Applied: true}
	if next.TimeRemaining == 0 {
		next.Phase = PhaseLost
		t.Signals = []Signal{SignalLoss}
		t.Effects = []Effect{
			{Kind: EffectStopTimer, Generation: next.Generation},
			{Kind: EffectCancelResolve},
		}
	}
	return t
}

func reduceSubmitName(state *GameState, in SubmitName) Transition {
	if state.Phase != PhaseAwaitingName {
		return ignored(state)
	}
	entry, err := leaderboard.NewEntry(in.Name, state.ElapsedSeconds(), state.Moves)
	if err != nil {
		return ignored(state)
	}

	next := state.Clone()
	next.Phase = PhaseWon
	return Transition{
		State:   next,
		Applied: true,
		Effects: []Effect{{Kind: EffectRecordResult, Generation: next.Generation, Result: &entry}},
	}
}

func reduceReset(config *GameConfig, state *GameState) Transition {
	next := NewGameState(config)
	if config == nil {
		next.Duration = state.Duration
		next.TimeRemaining = state.Duration
	}
	next.Generation = state.Generation + 1
	return Transition{
		State:   next,
		Applied: true,
		Effects: []Effect{
			{Kind: EffectStopTimer},
			{Kind: EffectCancelResolve},
		},
	}
}
