// Package core holds the template helpers shared by every page.
package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"strconv"
	"strings"
	"time"
)

// Deps holds dependencies for constructing the core template func map.
type Deps struct {
	Template           **template.Template
	ContentTemplateFor func(string) string
	// StaticPrefix is prepended by the asset helper; defaults to /static/.
	StaticPrefix string
}

// Funcs returns a template.FuncMap containing helpers used across templates.
func Funcs(deps Deps) template.FuncMap {
	prefix := deps.StaticPrefix
	if prefix == "" {
		prefix = "/static/"
	}
	funcs := template.FuncMap{
		"sectionTmpl":  deps.ContentTemplateFor,
		"friendlyTime": FriendlyTime,
		"formatPrice":  FormatPrice,
		"asset":        func(name string) string { return prefix + strings.TrimPrefix(name, "/") },
		"dict":         dict,
		"toJSON": func(v any) (string, error) {
			b, err := json.Marshal(v)
			if err != nil {
				return "", err
			}
			return string(b), nil
		},
	}

	funcs["renderSection"] = func(page string, data any) (template.HTML, error) {
		if deps.Template == nil || *deps.Template == nil {
			return "", errors.New("template not initialized")
		}
		var buf bytes.Buffer
		if err := (*deps.Template).ExecuteTemplate(&buf, deps.ContentTemplateFor(page), data); err != nil {
			return "", err
		}
		// #nosec G203 - output of our own html/template execution; values were escaped there.
		return template.HTML(buf.String()), nil
	}
	return funcs
}

// dict builds a map from alternating keys and values so partials can take more
// than one argument.
func dict(pairs ...any) (map[string]any, error) {
	if len(pairs)%2 != 0 {
		return nil, errors.New("dict needs an even number of arguments")
	}
	m := make(map[string]any, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		k, ok := pairs[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict key %v is not a string", pairs[i])
		}
		m[k] = pairs[i+1]
	}
	return m, nil
}

// FriendlyTime formats t for display, or "" for the zero time.
func FriendlyTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format("Jan 2, 2006 3:04 PM")
}

// FormatPrice renders an amount in minor units, e.g. 1999 USD -> "$19.99".
func FormatPrice(cents int64, currency string) string {
	neg := cents < 0
	if neg {
		cents = -cents
	}
	amount := strconv.FormatInt(cents/100, 10) + "." + fmt.Sprintf("%02d", cents%100)
	var out string
	switch strings.ToUpper(currency) {
	case "", "USD":
		out = "$" + amount
	case "EUR":
		out = "€" + amount
	case "GBP":
		out = "£" + amount
	default:
		out = amount + " " + strings.ToUpper(currency)
	}
	if neg {
		return "-" + out
	}
	return out
}
