package form

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/mesh-intelligence/gamevault/internal/i18n"
	"github.com/mesh-intelligence/gamevault/pkg/schema"
	"github.com/mesh-intelligence/gamevault/pkg/types"
)

func polish(t *testing.T) Translator {
	t.Helper()
	b, err := i18n.Load()
	require.NoError(t, err)
	return b.Localizer(language.Polish)
}

func validGame() map[string]any {
	return map[string]any{"name": "Hades", "genre": "Roguelike", "platform": "PC"}
}

func TestNewAppliesTypeDefaults(t *testing.T) {
	f := New(schema.Games(), nil)

	assert.Equal(t, false, f.Value("isBorrowed"))
	assert.Equal(t, []string{}, f.Value("tags"))
	assert.Nil(t, f.Value("name"))
	assert.Nil(t, f.Value("rating"))
	assert.Nil(t, f.Value("purchaseDate"))
}

func TestNewConvertsInitialValues(t *testing.T) {
	f := New(schema.Games(), map[string]any{
		"name":         "Celeste",
		"tags":         "indie, platformer,",
		"purchaseDate": "2024-03-15",
		"rating":       8,
		"isBorrowed":   nil,
		"unrelated":    "ignored",
	})

	assert.Equal(t, []string{"indie", "platformer"}, f.Value("tags"))
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), f.Value("purchaseDate"))
	assert.Equal(t, 8.0, f.Value("rating"))
	assert.Equal(t, false, f.Value("isBorrowed"))
	_, ok := f.Values()["unrelated"]
	assert.False(t, ok)
}

func TestDateRoundTrip(t *testing.T) {
	f := New(schema.Games(), validGame())
	require.NoError(t, f.Set("purchaseDate", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)))

	rec, err := f.Submit()
	require.NoError(t, err)
	assert.Equal(t, "2024-03-15", rec["purchaseDate"])

	again := New(schema.Games(), rec)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), again.Value("purchaseDate"))
	assert.Equal(t, "2024-03-15", again.DateString("purchaseDate"))
}

func TestDateFromLocalTimeKeepsCalendarDay(t *testing.T) {
	warsaw := time.FixedZone("CET", 3600)
	f := New(schema.Games(), validGame())
	require.NoError(t, f.Set("completionDate", time.Date(2024, 3, 15, 0, 30, 0, 0, warsaw)))

	rec, err := f.Submit()
	require.NoError(t, err)
	assert.Equal(t, "2024-03-15", rec["completionDate"])
}

func TestSubmitInvalidFormMarksTouched(t *testing.T) {
	f := New(schema.Games(), map[string]any{"genre": "RPG", "platform": "PC"})
	assert.False(t, f.FieldInvalid("name"), "untouched fields do not report errors")

	rec, err := f.Submit()
	assert.Nil(t, rec)
	assert.True(t, errors.Is(err, ErrInvalid))
	assert.True(t, f.FieldInvalid("name"))
	for _, name := range f.Fields().Names() {
		assert.True(t, f.Touched(name), name)
	}
	assert.Equal(t, "To pole jest wymagane", f.ErrorMessage("name", polish(t)))
}

func TestSubmitPassesValuesThrough(t *testing.T) {
	f := New(schema.Games(), validGame())
	require.NoError(t, f.Set("tags", []string{"rpg", "co-op"}))
	require.NoError(t, f.Set("rating", 9.5))
	require.NoError(t, f.Set("isBorrowed", true))
	require.NoError(t, f.Set("borrowedTo", "Ola"))

	rec, err := f.Submit()
	require.NoError(t, err)
	assert.Equal(t, []string{"rpg", "co-op"}, rec["tags"])
	assert.Equal(t, 9.5, rec["rating"])
	assert.Equal(t, true, rec["isBorrowed"])
	assert.Equal(t, "Ola", rec["borrowedTo"])
	assert.Nil(t, rec["completionDate"])

	g, err := ToGame("id-1", rec)
	require.NoError(t, err)
	assert.Equal(t, "id-1", g.ID)
	assert.Equal(t, "Hades", g.Name)
	require.NotNil(t, g.Rating)
	assert.Equal(t, 9.5, *g.Rating)
	assert.Equal(t, types.TagList{"rpg", "co-op"}, g.Tags)
}

func TestErrorMessages(t *testing.T) {
	tr := polish(t)
	tests := []struct {
		name  string
		field string
		value any
		want  string
	}{
		{"required", "name", "", "To pole jest wymagane"},
		{"min length", "name", "X", "Minimalna długość to 2 znaków"},
		{"numeric min", "purchasePrice", -1.0, "Minimalna wartość to 0"},
		{"numeric max", "rating", 11.0, "Maksymalna wartość to 10"},
		{"valid", "rating", 10.0, ""},
		{"optional empty", "purchasePrice", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := New(schema.Games(), validGame())
			require.NoError(t, f.Set(tt.field, tt.value))
			assert.Equal(t, tt.want, f.ErrorMessage(tt.field, tr))
		})
	}
}

func TestErrorMessageRequiresTouch(t *testing.T) {
	f := New(schema.Games(), nil)
	f.Touch("name")
	assert.Equal(t, "To pole jest wymagane", f.ErrorMessage("name", polish(t)))
	assert.Equal(t, "", f.ErrorMessage("genre", polish(t)), "untouched")
}

func TestHiddenFieldsStillValidate(t *testing.T) {
	fields := schema.Schema{
		{Name: "name", Type: schema.TypeText},
		{Name: "flag", Type: schema.TypeCheckbox},
		{Name: "secret", Type: schema.TypeText, Rules: schema.Rules{Required: true},
			ShowWhen: &schema.ShowWhen{Field: "flag", Value: true}},
	}
	f := New(fields, map[string]any{"name": "x"})
	assert.False(t, f.Visible("secret"))
	assert.True(t, f.Invalid())
}

func TestVisibility(t *testing.T) {
	f := New(schema.Games(), validGame())
	assert.False(t, f.Visible("digitalStore"))
	assert.False(t, f.Visible("borrowDate"))
	assert.True(t, f.Visible("name"))

	require.NoError(t, f.Set("version", "digital"))
	assert.True(t, f.Visible("digitalStore"))
	require.NoError(t, f.Set("version", "box_disc"))
	assert.False(t, f.Visible("digitalStore"))

	require.NoError(t, f.SetInput("isBorrowed", []string{"on"}))
	assert.True(t, f.Visible("borrowDate"))
	assert.True(t, f.Visible("borrowedTo"))
}

func TestVisibilityWithMissingReference(t *testing.T) {
	fields := schema.Schema{
		{Name: "a", Type: schema.TypeText, ShowWhen: &schema.ShowWhen{Field: "ghost", Value: "x"}},
	}
	f := New(fields, nil)
	assert.False(t, f.Visible("a"))
	assert.False(t, f.Visible("unknown"))
}

func TestSetUnknownField(t *testing.T) {
	f := New(schema.Games(), nil)
	assert.True(t, errors.Is(f.Set("nope", 1), ErrUnknownField))
	assert.True(t, errors.Is(f.SetInput("nope", nil), ErrUnknownField))
}

func TestSetMarksDirtyAndTouched(t *testing.T) {
	f := New(schema.Games(), nil)
	assert.False(t, f.Dirty("name"))
	require.NoError(t, f.Set("name", "Hades"))
	assert.True(t, f.Dirty("name"))
	assert.True(t, f.Touched("name"))

	f.Touch("genre")
	assert.True(t, f.Touched("genre"))
	assert.False(t, f.Dirty("genre"))
}

func TestSetInput(t *testing.T) {
	tests := []struct {
		field string
		raw   []string
		want  any
	}{
		{"purchasePrice", []string{"59,99"}, 59.99},
		{"purchasePrice", []string{""}, nil},
		{"purchasePrice", []string{"abc"}, nil},
		{"rating", []string{"7"}, 7.0},
		{"purchaseDate", []string{"2023-12-01"}, time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC)},
		{"purchaseDate", []string{""}, nil},
		{"isBorrowed", nil, false},
		{"isBorrowed", []string{"false", "true"}, true},
		{"tags", []string{"rpg, co-op", "rpg", "RPG"}, []string{"rpg", "co-op", "RPG"}},
		{"name", []string{"Hades"}, "Hades"},
		{"genre", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			f := New(schema.Games(), nil)
			require.NoError(t, f.SetInput(tt.field, tt.raw))
			assert.Equal(t, tt.want, f.Value(tt.field))
		})
	}
}

func TestRatingDisplay(t *testing.T) {
	f := New(schema.Games(), nil)
	assert.Equal(t, "0/10", f.RatingDisplay("rating", 10))
	require.NoError(t, f.Set("rating", 7.5))
	assert.Equal(t, "7.5/10", f.RatingDisplay("rating", 10))
	require.NoError(t, f.Set("rating", 0.0))
	assert.Equal(t, "0/5", f.RatingDisplay("rating", 5))
}

func TestFromGame(t *testing.T) {
	r := 9.0
	bag, err := FromGame(types.Game{ID: "x", Name: "Hades", Rating: &r, Tags: types.TagList{"a"}, PurchaseDate: "2020-09-17"})
	require.NoError(t, err)

	f := New(schema.Games(), bag)
	assert.Equal(t, "Hades", f.Value("name"))
	assert.Equal(t, 9.0, f.Value("rating"))
	assert.Equal(t, []string{"a"}, f.Value("tags"))
	assert.Equal(t, "2020-09-17", f.DateString("purchaseDate"))
}
