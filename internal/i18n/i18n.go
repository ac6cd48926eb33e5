// Package i18n loads the message catalogs of the user interface and resolves
// the locale of a request. Polish is the default locale.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
	"gopkg.in/yaml.v3"
)

// Message keys used outside templates.
const (
	KeyRequired           = "validation.required"
	KeyMinLength          = "validation.minlength"
	KeyMin                = "validation.min"
	KeyMax                = "validation.max"
	KeyInvalid            = "validation.invalid"
	KeyInvalidCredentials = "login.invalid_credentials"
	KeyLoginFailed        = "login.failed"
	KeyImageLoadError     = "image.load_error"
	KeyGenericError       = "error.generic"
	KeyNotFound           = "error.not_found"
)

// DefaultLocale is used when a request expresses no supported preference.
var DefaultLocale = language.Polish

//go:embed locales/*.yaml
var embeddedLocales embed.FS

type localeFile struct {
	Locale   string            `yaml:"locale"`
	Messages map[string]string `yaml:"messages"`
}

// Bundle holds the loaded catalogs.
type Bundle struct {
	catalog  *catalog.Builder
	tags     []language.Tag
	matcher  language.Matcher
	fallback language.Tag
	keys     map[language.Tag]map[string]bool
}

// Load reads the catalogs embedded in the binary.
func Load() (*Bundle, error) {
	return LoadFromFS(embeddedLocales)
}

// LoadFromFS reads every locales/*.yaml file in fsys. The default locale must
// be present.
func LoadFromFS(fsys fs.FS) (*Bundle, error) {
	paths, err := fs.Glob(fsys, "locales/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("glob locale files: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no locale files found")
	}
	sort.Strings(paths)

	b := &Bundle{
		catalog:  catalog.NewBuilder(catalog.Fallback(DefaultLocale)),
		fallback: DefaultLocale,
		keys:     map[language.Tag]map[string]bool{},
	}
	for _, path := range paths {
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return nil, fmt.Errorf("read locale %s: %w", path, err)
		}
		var file localeFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parse locale %s: %w", path, err)
		}
		tag, err := language.Parse(strings.TrimSpace(file.Locale))
		if err != nil {
			return nil, fmt.Errorf("locale %s: %w", path, err)
		}
		keys := map[string]bool{}
		for key, msg := range file.Messages {
			if err := b.catalog.SetString(tag, key, msg); err != nil {
				return nil, fmt.Errorf("locale %s key %s: %w", path, key, err)
			}
			keys[key] = true
		}
		b.keys[tag] = keys
		b.tags = append(b.tags, tag)
	}
	if _, ok := b.keys[DefaultLocale]; !ok {
		return nil, fmt.Errorf("default locale %s is not defined", DefaultLocale)
	}

	// The matcher prefers its first tag on no match.
	ordered := []language.Tag{DefaultLocale}
	for _, t := range b.tags {
		if t != DefaultLocale {
			ordered = append(ordered, t)
		}
	}
	b.tags = ordered
	b.matcher = language.NewMatcher(ordered)
	return b, nil
}

// Tags returns the supported locales, default first.
func (b *Bundle) Tags() []language.Tag {
	return append([]language.Tag(nil), b.tags...)
}

// Match resolves a list of preferences, such as a configured locale followed
// by an Accept-Language header, to a supported locale.
func (b *Bundle) Match(prefs ...string) language.Tag {
	for _, p := range prefs {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		tags, _, err := language.ParseAcceptLanguage(p)
		if err != nil || len(tags) == 0 {
			continue
		}
		_, idx, conf := b.matcher.Match(tags...)
		if conf != language.No {
			return b.tags[idx]
		}
	}
	return b.fallback
}

// Localizer returns a translator bound to tag.
func (b *Bundle) Localizer(tag language.Tag) *Localizer {
	_, idx, _ := b.matcher.Match(tag)
	resolved := b.tags[idx]
	return &Localizer{
		tag:     resolved,
		printer: message.NewPrinter(resolved, message.Catalog(b.catalog)),
	}
}

// MissingKeys returns, per locale, the keys defined by the default locale but
// absent from that locale.
func (b *Bundle) MissingKeys() map[string][]string {
	out := map[string][]string{}
	base := b.keys[DefaultLocale]
	for tag, keys := range b.keys {
		if tag == DefaultLocale {
			continue
		}
		for k := range base {
			if !keys[k] {
				out[tag.String()] = append(out[tag.String()], k)
			}
		}
		sort.Strings(out[tag.String()])
	}
	return out
}

// Localizer formats messages for one locale.
type Localizer struct {
	tag     language.Tag
	printer *message.Printer
}

// Tag returns the locale of l.
func (l *Localizer) Tag() language.Tag {
	return l.tag
}

// T formats the message stored under key with args.
func (l *Localizer) T(key string, args ...any) string {
	return l.printer.Sprintf(key, args...)
}
