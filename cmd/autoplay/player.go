package main

import "github.com/wricardo/memory-match-game/game/engine"

// Player remembers every image it has seen and never forgets
type Player struct {
	seen map[int]string // card id -> image
}

func NewPlayer() *Player {
	return &Player{seen: make(map[int]string)}
}

// Observe records the images of all face-up cards in state
func (p *Player) Observe(state *engine.GameState) {
	for _, card := range state.Cards {
		if card.Image != "" {
			p.seen[card.ID] = card.Image
		}
	}
}

// Known is how many cards the player has seen
func (p *Player) Known() int {
	return len(p.seen)
}

// Next picks the card to flip, or -1 when no card can be flipped.
//
// With one card face up it flips the remembered partner if there is one,
// otherwise an unseen card. With none face up it completes a remembered
// pair first and explores otherwise.
func (p *Player) Next(state *engine.GameState) int {
	if state.Phase != engine.PhasePlaying || state.Resolving || len(state.Flipped) >= 2 {
		return -1
	}

	if len(state.Flipped) == 1 {
		first := state.Flipped[0]
		if partner := p.partner(state, first); partner >= 0 {
			return partner
		}
		return p.unseen(state, first)
	}

	for _, card := range state.Cards {
		if card.IsMatched {
			continue
		}
		if p.partner(state, card.ID) >= 0 {
			return card.ID
		}
	}
	return p.unseen(state, -1)
}

// partner finds an unmatched card with the same remembered image as id
func (p *Player) partner(state *engine.GameState, id int) int {
	image, ok := p.seen[id]
	if !ok {
		return -1
	}
	for _, card := range state.Cards {
		if card.ID == id || card.IsMatched {
			continue
		}
		if p.seen[card.ID] == image {
			return card.ID
		}
	}
	return -1
}

// unseen returns the first face-down card not yet seen, falling back to
// any face-down card.
func (p *Player) unseen(state *engine.GameState, exclude int) int {
	fallback := -1
	for _, card := range state.Cards {
		if card.ID == exclude || card.IsMatched || card.IsFlipped {
			continue
		}
		if _, ok := p.seen[card.ID]; !ok {
			return card.ID
		}
		if fallback < 0 {
			fallback = card.ID
		}
	}
	return fallback
}
