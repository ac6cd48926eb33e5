package web

import (
	"errors"
	"html/template"
	"net/http"
	"slices"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mesh-intelligence/gamevault/internal/form"
	"github.com/mesh-intelligence/gamevault/internal/i18n"
	"github.com/mesh-intelligence/gamevault/internal/store"
	"github.com/mesh-intelligence/gamevault/pkg/schema"
	"github.com/mesh-intelligence/gamevault/pkg/types"
)

const (
	ratingMax  = 10
	ratingStep = 0.5
)

// ratingSteps lists the values offered by the rating select. A current
// value off the step grid is kept so that saving does not change it.
func ratingSteps(current any) []string {
	values := make([]float64, 0, int(ratingMax/ratingStep)+2)
	for i := 0; float64(i)*ratingStep <= ratingMax; i++ {
		values = append(values, float64(i)*ratingStep)
	}
	if v, ok := current.(float64); ok && !slices.Contains(values, v) {
		values = append(values, v)
		slices.Sort(values)
	}
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return out
}

type gameCard struct {
	ID         string
	Name       string
	Genre      string
	Platform   string
	Status     string
	Cover      template.URL
	HasCover   bool
	Rating     string
	Tags       []string
	IsBorrowed bool
	BorrowedTo string
}

type sortOption struct {
	Field    string
	Label    string
	Selected bool
}

type listPage struct {
	page
	Params    listParams
	Games     []gameCard
	Total     int
	Genres    []schema.Option
	Platforms []schema.Option
	Statuses  []schema.Option
	AllTags   []string
	Sorts     []sortOption
	Borrowed  string
}

// HasTag reports whether tag is part of the active filter.
func (p listPage) HasTag(tag string) bool {
	return slices.Contains(p.Params.Filter.Tags, tag)
}

// RatingFilter returns the minimum rating filter as text.
func (p listPage) RatingFilter() string {
	if p.Params.Filter.Rating == nil {
		return ""
	}
	return strconv.FormatFloat(*p.Params.Filter.Rating, 'f', -1, 64)
}

func (s *Server) card(g types.Game) gameCard {
	c := gameCard{
		ID:         g.ID,
		Name:       g.Name,
		Genre:      s.fields.LabelFor("genre", g.Genre),
		Platform:   s.fields.LabelFor("platform", g.Platform),
		Status:     s.fields.LabelFor("status", g.Status),
		Tags:       g.Tags,
		IsBorrowed: g.IsBorrowed,
		BorrowedTo: g.BorrowedTo,
	}
	if src, ok := form.ClassifyImage(g.CoverImage); ok {
		// ClassifyImage only passes http(s) URLs and image data URIs.
		c.Cover, c.HasCover = template.URL(src), true
	}
	if g.Rating != nil {
		c.Rating = strconv.FormatFloat(*g.Rating, 'f', -1, 64) + "/" + strconv.Itoa(ratingMax)
	}
	return c
}

// applyListParams copies the request's list state into the store.
func (s *Server) applyListParams(p listParams) {
	if s.store.Query() != p.Query {
		s.store.SetQuery(p.Query)
	}
	if !sameFilter(s.store.Filter(), p.Filter) {
		s.store.SetFilter(p.Filter)
	}
	if s.store.Sort() != p.Sort {
		s.store.SetSort(p.Sort)
	}
}

func sameFilter(a, b types.Filter) bool {
	eqPtr := func(x, y *float64) bool { return (x == nil && y == nil) || (x != nil && y != nil && *x == *y) }
	eqBool := func(x, y *bool) bool { return (x == nil && y == nil) || (x != nil && y != nil && *x == *y) }
	return a.Genre == b.Genre && a.Platform == b.Platform && a.Status == b.Status &&
		eqPtr(a.Rating, b.Rating) && eqBool(a.IsBorrowed, b.IsBorrowed) && slices.Equal(a.Tags, b.Tags)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	if _, err := s.store.EnsureLoaded(r.Context()); err != nil {
		s.logger.Error("loading games", "error", err)
		s.renderError(w, r, http.StatusInternalServerError, i18n.KeyGenericError)
		return
	}
	params := parseListParams(r.URL.Query())
	s.applyListParams(params)

	visible := store.Apply(s.store.Games(), params.Query, params.Filter, params.Sort)
	p := listPage{
		page:      s.newPage(r, "games.title"),
		Params:    params,
		Total:     len(visible),
		Genres:    s.fields.OptionsFor("genre"),
		Platforms: s.fields.OptionsFor("platform"),
		Statuses:  s.fields.OptionsFor("status"),
		AllTags:   s.store.AllTags(),
	}
	for _, g := range visible {
		p.Games = append(p.Games, s.card(g))
	}
	for _, f := range types.SortFields {
		p.Sorts = append(p.Sorts, sortOption{Field: f, Label: p.T("sort." + f), Selected: f == params.Sort.Field})
	}
	if b := params.Filter.IsBorrowed; b != nil {
		p.Borrowed = strconv.FormatBool(*b)
	}
	s.render(w, r, http.StatusOK, "list.html", p)
}

type fieldView struct {
	Name        string
	Type        string
	Label       string
	Placeholder string
	Required    bool
	Visible     bool
	Value       string
	Checked     bool
	Tags        []string
	Options     []schema.Option
	Error       string
	Image       template.URL
	HasImage    bool
	Rating      string
	RatingSteps []string
	Suggestions []string
	ShowField   string
	ShowValue   string
}

type formPage struct {
	page
	Action string
	GameID string
	Fields []fieldView
	Error  string
}

func (s *Server) formPage(r *http.Request, f *form.Form, id string) formPage {
	titleKey, action := "games.add", "/games/new"
	if id != "" {
		titleKey, action = "games.edit", "/games/"+id
	}
	p := formPage{page: s.newPage(r, titleKey), Action: action, GameID: id}
	for _, fd := range f.Fields() {
		v := fieldView{
			Name:        fd.Name,
			Type:        string(fd.Type),
			Label:       fd.Label,
			Placeholder: fd.Placeholder,
			Required:    f.Required(fd.Name),
			Visible:     f.Visible(fd.Name),
			Options:     s.fields.OptionsFor(fd.Name),
			Error:       f.ErrorMessage(fd.Name, p.loc),
		}
		if fd.ShowWhen != nil {
			v.ShowField = fd.ShowWhen.Field
			v.ShowValue = valueString(fd.ShowWhen.Value)
		}
		switch fd.Type {
		case schema.TypeCheckbox:
			v.Checked, _ = f.Value(fd.Name).(bool)
		case schema.TypeTags:
			v.Tags, _ = f.Value(fd.Name).([]string)
			v.Suggestions, _ = f.TagSuggestions(fd.Name, "", s.store.AllTags())
		case schema.TypeDate:
			v.Value = f.DateString(fd.Name)
		case schema.TypeRating:
			v.Value = valueString(f.Value(fd.Name))
			v.Rating = f.RatingDisplay(fd.Name, ratingMax)
			v.RatingSteps = ratingSteps(f.Value(fd.Name))
		case schema.TypeImage:
			v.Value = valueString(f.Value(fd.Name))
			if src, ok := f.ImageURL(fd.Name); ok {
				v.Image, v.HasImage = template.URL(src), true
			}
		default:
			v.Value = valueString(f.Value(fd.Name))
		}
		p.Fields = append(p.Fields, v)
	}
	return p
}

func valueString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}

func (s *Server) handleNewForm(w http.ResponseWriter, r *http.Request) {
	s.store.Select("")
	f := form.New(s.fields, nil)
	s.render(w, r, http.StatusOK, "form.html", s.formPage(r, f, ""))
}

// selectGame loads the list if needed and selects id. It writes the error
// response and returns nil when the game cannot be shown.
func (s *Server) selectGame(w http.ResponseWriter, r *http.Request, id string) *types.Game {
	if _, err := s.store.EnsureLoaded(r.Context()); err != nil {
		s.logger.Error("loading games", "error", err)
		s.renderError(w, r, http.StatusInternalServerError, i18n.KeyGenericError)
		return nil
	}
	s.store.Select(id)
	g := s.store.SelectedGame()
	if g == nil {
		s.renderError(w, r, http.StatusNotFound, i18n.KeyNotFound)
		return nil
	}
	return g
}

func (s *Server) handleEditForm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	g := s.selectGame(w, r, id)
	if g == nil {
		return
	}
	initial, err := form.FromGame(*g)
	if err != nil {
		s.logger.Error("preparing form", "id", id, "error", err)
		s.renderError(w, r, http.StatusInternalServerError, i18n.KeyGenericError)
		return
	}
	s.render(w, r, http.StatusOK, "form.html", s.formPage(r, form.New(s.fields, initial), id))
}

// handleSubmit saves the new-game form (no id) or the edit form of id.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var initial map[string]any
	if id != "" {
		g := s.selectGame(w, r, id)
		if g == nil {
			return
		}
		var err error
		if initial, err = form.FromGame(*g); err != nil {
			s.logger.Error("preparing form", "id", id, "error", err)
			s.renderError(w, r, http.StatusInternalServerError, i18n.KeyGenericError)
			return
		}
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	f := form.New(s.fields, initial)
	for _, fd := range s.fields {
		raw, present := r.PostForm[fd.Name]
		if !present && fd.Type != schema.TypeCheckbox && fd.Type != schema.TypeTags {
			continue
		}
		if err := f.SetInput(fd.Name, raw); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if fd.Type == schema.TypeTags {
			if err := commitTagInput(f, fd.Name, r.PostForm.Get(fd.Name+"_input")); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
		}
	}

	record, err := f.Submit()
	if errors.Is(err, form.ErrInvalid) {
		s.render(w, r, http.StatusUnprocessableEntity, "form.html", s.formPage(r, f, id))
		return
	}
	if err != nil {
		s.logger.Error("submitting form", "error", err)
		s.renderError(w, r, http.StatusInternalServerError, i18n.KeyGenericError)
		return
	}

	game, err := form.ToGame(id, record)
	if err == nil {
		_, err = s.store.Upsert(r.Context(), game)
	}
	switch {
	case err == nil:
		http.Redirect(w, r, "/games", http.StatusSeeOther)
	case errors.Is(err, types.ErrNotFound):
		s.renderError(w, r, http.StatusNotFound, i18n.KeyNotFound)
	case errors.Is(err, types.ErrInvalidData), errors.Is(err, types.ErrInvalidName):
		p := s.formPage(r, f, id)
		p.Error = p.T(i18n.KeyInvalid)
		s.render(w, r, http.StatusUnprocessableEntity, "form.html", p)
	default:
		s.logger.Error("saving game", "id", id, "error", err)
		p := s.formPage(r, f, id)
		p.Error = p.T(i18n.KeyGenericError)
		s.render(w, r, http.StatusInternalServerError, "form.html", p)
	}
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := s.store.Remove(r.Context(), id)
	switch {
	case err == nil:
		http.Redirect(w, r, "/games", http.StatusSeeOther)
	case errors.Is(err, types.ErrNotFound):
		s.renderError(w, r, http.StatusNotFound, i18n.KeyNotFound)
	default:
		s.logger.Error("deleting game", "id", id, "error", err)
		s.renderError(w, r, http.StatusInternalServerError, i18n.KeyGenericError)
	}
}

// commitTagInput commits the text left in a tag input when the form was
// submitted. Commas separate tags; submitting acts as Enter on the rest.
func commitTagInput(f *form.Form, name, text string) error {
	rest, err := f.TypeTagInput(name, text)
	if err != nil {
		return err
	}
	_, _, err = f.HandleTagKey(name, "Enter", rest)
	return err
}
