package form

import (
	"encoding/json"
	"fmt"

	"github.com/mesh-intelligence/gamevault/pkg/types"
)

// FromGame returns the initial value bag for editing g.
func FromGame(g types.Game) (map[string]any, error) {
	b, err := json.Marshal(g)
	if err != nil {
		return nil, fmt.Errorf("encoding game: %w", err)
	}
	var bag map[string]any
	if err := json.Unmarshal(b, &bag); err != nil {
		return nil, fmt.Errorf("decoding game: %w", err)
	}
	return bag, nil
}

// ToGame decodes a submitted record into a game carrying id.
func ToGame(id string, record map[string]any) (types.Game, error) {
	b, err := json.Marshal(types.CleanDocument(record))
	if err != nil {
		return types.Game{}, fmt.Errorf("encoding record: %w", err)
	}
	var g types.Game
	if err := json.Unmarshal(b, &g); err != nil {
		return types.Game{}, fmt.Errorf("%w: %v", types.ErrInvalidData, err)
	}
	g.ID = id
	return g, nil
}
