package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// DateLayout is the wire format of calendar dates on a Game.
const DateLayout = "2006-01-02"

// Version values describing how a copy of a game is owned.
const (
	VersionBoxDisc      = "box_disc"
	VersionBoxCartridge = "box_cartridge"
	VersionBoxCode      = "box_code"
	VersionDigital      = "digital"
)

// Game is one catalogued entry in the collection. ID is empty until the game
// has been persisted; after that it never changes.
type Game struct {
	ID             string   `json:"id,omitempty"`
	Name           string   `json:"name" validate:"required"`
	Genre          string   `json:"genre,omitempty"`
	Platform       string   `json:"platform,omitempty"`
	CoverImage     string   `json:"coverImage,omitempty"`
	Version        string   `json:"version,omitempty" validate:"omitempty,oneof=box_disc box_cartridge box_code digital"`
	DigitalStore   string   `json:"digitalStore,omitempty"`
	PurchaseDate   string   `json:"purchaseDate,omitempty" validate:"omitempty,isodate"`
	PurchasePrice  *float64 `json:"purchasePrice,omitempty" validate:"omitempty,gte=0"`
	Description    string   `json:"description,omitempty"`
	Status         string   `json:"status,omitempty"`
	CompletionDate string   `json:"completionDate,omitempty" validate:"omitempty,isodate"`
	Comment        string   `json:"comment,omitempty"`
	Tags           TagList  `json:"tags,omitempty"`
	Rating         *float64 `json:"rating,omitempty" validate:"omitempty,gte=0,lte=10"`
	IsBorrowed     bool     `json:"isBorrowed,omitempty"`
	BorrowDate     string   `json:"borrowDate,omitempty" validate:"omitempty,isodate"`
	BorrowedTo     string   `json:"borrowedTo,omitempty"`

	CreatedAt time.Time `json:"createdAt,omitzero"`
	UpdatedAt time.Time `json:"updatedAt,omitzero"`
}

// Clone returns a deep copy of g.
func (g Game) Clone() Game {
	c := g
	if g.Tags != nil {
		c.Tags = append(TagList(nil), g.Tags...)
	}
	if g.Rating != nil {
		r := *g.Rating
		c.Rating = &r
	}
	if g.PurchasePrice != nil {
		p := *g.PurchasePrice
		c.PurchasePrice = &p
	}
	return c
}

// WithoutID returns a copy of g with the identity cleared. Persistence
// receives records in this shape on create and update.
func (g Game) WithoutID() Game {
	c := g.Clone()
	c.ID = ""
	return c
}

var gameValidate *validator.Validate

func init() {
	gameValidate = validator.New()
	_ = gameValidate.RegisterValidation("isodate", validateISODate)
}

func validateISODate(fl validator.FieldLevel) bool {
	_, err := time.Parse(DateLayout, fl.Field().String())
	return err == nil
}

// Validate checks the stored invariants of a game: a non-empty name, a rating
// between 0 and 10, a non-negative price and well-formed dates. It returns
// ErrInvalidName or ErrInvalidData wrapped with the offending field.
func (g Game) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return ErrInvalidName
	}
	err := gameValidate.Struct(g)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return fmt.Errorf("%w: field %s failed %s", ErrInvalidData, verrs[0].Field(), verrs[0].Tag())
	}
	return fmt.Errorf("%w: %v", ErrInvalidData, err)
}

// TagList is the list of tags on a game. Older documents stored tags as one
// comma-separated string; both shapes decode into a list.
type TagList []string

// UnmarshalJSON accepts either a JSON array of strings or a single
// comma-separated string.
func (t *TagList) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*t = nil
		return nil
	}
	var list []any
	if err := json.Unmarshal(data, &list); err == nil {
		out := make(TagList, 0, len(list))
		for _, v := range list {
			if v == nil {
				continue
			}
			out = append(out, fmt.Sprint(v))
		}
		*t = out
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("decoding tags: %w", err)
	}
	*t = SplitTags(s)
	return nil
}

// SplitTags splits a comma-separated tag string, trimming each tag and
// dropping empty ones.
func SplitTags(s string) TagList {
	parts := strings.Split(s, ",")
	out := make(TagList, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
