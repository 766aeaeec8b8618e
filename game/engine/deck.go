package engine

import (
	"fmt"
	"math/rand/v2"
)

// NewDeck deals rows x cols face-down cards. Each of the first PairsNeeded
// pool images appears on exactly two cards. Cards are shuffled with a
// Fisher-Yates shuffle and numbered by their final position, so a card's
// ID is also its index on the board. A nil rng uses the global source.
func NewDeck(config *GameConfig, rng *rand.Rand) ([]Card, error) {
	if config == nil || config.Cells() <= 0 || config.Cells()%2 != 0 {
		return nil, fmt.Errorf("%w: board must have a positive, even number of cells", ErrInvalidConfig)
	}
	pairs := config.PairsNeeded()
	if len(config.Images) < pairs {
		return nil, fmt.Errorf("%w: need %d images, have %d", ErrImagePoolTooSmall, pairs, len(config.Images))
	}

	cards := make([]Card, 0, pairs*2)
	for imageID := 0; imageID < pairs; imageID++ {
		card := Card{ImageID: imageID, Image: config.Images[imageID]}
		cards = append(cards, card, card)
	}

	shuffle := rand.Shuffle
	if rng != nil {
		shuffle = rng.Shuffle
	}
	shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})

	for i := range cards {
		cards[i].ID = i
	}
	return cards, nil
}
