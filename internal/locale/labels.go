package locale

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"tasklist/internal/task"
)

var supported = []language.Tag{language.English, language.Turkish}

var matcher = language.NewMatcher(supported)

var catalog = map[language.Tag]map[task.Priority]string{
	language.English: {
		task.PriorityLow:    "low",
		task.PriorityNormal: "normal",
		task.PriorityHigh:   "high",
	},
	language.Turkish: {
		task.PriorityLow:    "düşük",
		task.PriorityNormal: "normal",
		task.PriorityHigh:   "yüksek",
	},
}

// Labels resolves priority labels for one locale.
type Labels struct {
	tag   language.Tag
	names map[task.Priority]string
}

// New returns the catalog entry closest to locale. Unparseable or
// unsupported locales fall back to English.
func New(locale string) Labels {
	requested, err := language.Parse(strings.TrimSpace(locale))
	if err != nil {
		requested = language.English
	}
	_, index, _ := matcher.Match(requested)
	tag := supported[index]
	return Labels{tag: tag, names: catalog[tag]}
}

// Tag returns the matched catalog language.
func (l Labels) Tag() language.Tag {
	return l.tag
}

// Priority returns the title-cased label for p. Values outside the catalog
// are shown as stored.
func (l Labels) Priority(p task.Priority) string {
	name, ok := l.names[p]
	if !ok {
		return string(p)
	}
	return cases.Title(l.tag).String(name)
}

// ParsePriority accepts a canonical identifier or any catalogued label in
// any supported language.
func (l Labels) ParsePriority(raw string) (task.Priority, error) {
	if p, err := task.ParsePriority(raw); err == nil {
		return p, nil
	}
	folded := cases.Fold().String(strings.TrimSpace(raw))
	if p, ok := lookup(l.names, folded); ok {
		return p, nil
	}
	for _, tag := range supported {
		if p, ok := lookup(catalog[tag], folded); ok {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", task.ErrInvalidPriority, raw)
}

func lookup(names map[task.Priority]string, folded string) (task.Priority, bool) {
	fold := cases.Fold()
	for p, name := range names {
		if fold.String(name) == folded {
			return p, true
		}
	}
	return "", false
}
