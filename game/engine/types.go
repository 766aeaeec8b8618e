package engine

import (
	"time"

	"github.com/wricardo/memory-match-game/game/leaderboard"
)

// Phase is the lifecycle stage of a game session
type Phase string

const (
	PhaseStart        Phase = "start"
	PhasePlaying      Phase = "playing"
	PhaseAwaitingName Phase = "awaiting_name"
	PhaseWon          Phase = "won"
	PhaseLost         Phase = "lost"

	// Defaults and validation limits
	DefaultRows            = 5
	DefaultCols            = 4
	DefaultDurationSeconds = 180
	DefaultMismatchDelayMs = 1000
	MaxGridSide            = 10
	MaxDurationSeconds     = 3600
	MaxMismatchDelayMs     = 10000
	WebSocketBufferSize    = 256
)

// CanStart reports whether a new game may begin from p
func (p Phase) CanStart() bool {
	return p == PhaseStart || p == PhaseWon || p == PhaseLost
}

// Finished reports whether the game has ended one way or another
func (p Phase) Finished() bool {
	return p == PhaseAwaitingName || p == PhaseWon || p == PhaseLost
}

// Card is one tile on the board
type Card struct {
	ID        int    `json:"id"`
	ImageID   int    `json:"image_id"`
	Image     string `json:"image,omitempty"`
	IsFlipped bool   `json:"is_flipped"`
	IsMatched bool   `json:"is_matched"`
}

// GameState represents the complete state of one session
type GameState struct {
	// Generation changes on every start and reset. Scheduled ticks and
	// mismatch resolutions carry the generation they were created for.
	Generation    uint64 `json:"generation"`
	Cards         []Card `json:"cards"`
	Flipped       []int  `json:"flipped"` // face-up unmatched card ids, at most 2
	Moves         int    `json:"moves"`
	TimeRemaining int    `json:"time_remaining"`
	Duration      int    `json:"duration"`
	Phase         Phase  `json:"phase"`
	Resolving     bool   `json:"resolving"`
}

// NewGameState returns the idle state shown before the first game
func NewGameState(config *GameConfig) *GameState {
	duration := DefaultDurationSeconds
	if config != nil {
		duration = config.DurationSeconds
	}
	return &GameState{
		Cards:         []Card{},
		Flipped:       []int{},
		TimeRemaining: duration,
		Duration:      duration,
		Phase:         PhaseStart,
	}
}

// Clone returns a deep copy of the state
func (s *GameState) Clone() *GameState {
	if s == nil {
		return nil
	}
	c := *s
	c.Cards = make([]Card, len(s.Cards))
	copy(c.Cards, s.Cards)
	c.Flipped = make([]int, len(s.Flipped))
	copy(c.Flipped, s.Flipped)
	return &c
}

// Masked returns a copy in which face-down cards do not reveal their image
func (s *GameState) Masked() *GameState {
	c := s.Clone()
	if c == nil {
		return nil
	}
	for i := range c.Cards {
		if !c.Cards[i].IsFlipped && !c.Cards[i].IsMatched {
			c.Cards[i].ImageID = -1
			c.Cards[i].Image = ""
		}
	}
	return c
}

// MatchedPairs counts the pairs found so far
func (s *GameState) MatchedPairs() int {
	matched := 0
	for _, c := range s.Cards {
		if c.IsMatched {
			matched++
		}
	}
	return matched / 2
}

// AllMatched reports whether every card on a non-empty board is matched
func (s *GameState) AllMatched() bool {
	if len(s.Cards) == 0 {
		return false
	}
	for _, c := range s.Cards {
		if !c.IsMatched {
			return false
		}
	}
	return true
}

// ElapsedSeconds is the time spent in the current game
func (s *GameState) ElapsedSeconds() int {
	return s.Duration - s.TimeRemaining
}

// Signal is a notification for the presentation layer
type Signal string

const (
	SignalCorrectPair Signal = "correct_pair"
	SignalWrongPair   Signal = "wrong_pair"
	SignalWin         Signal = "win"
	SignalCelebrate   Signal = "celebrate"
	SignalLoss        Signal = "loss"
)

// EffectKind names a side effect the host must carry out after a transition
type EffectKind string

const (
	EffectStartTimer      EffectKind = "start_timer"
	EffectStopTimer       EffectKind = "stop_timer"
	EffectScheduleResolve EffectKind = "schedule_resolve"
	EffectCancelResolve   EffectKind = "cancel_resolve"
	EffectRecordResult    EffectKind = "record_result"
)

// Effect is a side effect requested by the reducer
type Effect struct {
	Kind       EffectKind         `json:"kind"`
	Generation uint64             `json:"generation,omitempty"`
	CardIDs    [2]int             `json:"card_ids,omitempty"`
	Delay      time.Duration      `json:"delay,omitempty"`
	Result     *leaderboard.Entry `json:"result,omitempty"`
}

// Transition is the outcome of applying one input to a state
type Transition struct {
	State   *GameState `json:"state"`
	Applied bool       `json:"applied"`
	Signals []Signal   `json:"signals,omitempty"`
	Effects []Effect   `json:"effects,omitempty"`
}

// HasSignal reports whether sig was emitted
func (t Transition) HasSignal(sig Signal) bool {
	for _, s := range t.Signals {
		if s == sig {
			return true
		}
	}
	return false
}

// Effect returns the first effect of the given kind
func (t Transition) Effect(kind EffectKind) (Effect, bool) {
	for _, e := range t.Effects {
		if e.Kind == kind {
			return e, true
		}
	}
	return Effect{}, false
}
