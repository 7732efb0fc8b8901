// Package registry maps AI capabilities to the remote models that serve them.
package registry

import (
	"strings"
)

// Capability names one AI-backed operation.
type Capability string

const (
	Summarization Capability = "summarization"
	Moderation    Capability = "moderation"
	Embeddings    Capability = "embeddings"
	Translation   Capability = "translation"
	Checkin       Capability = "checkin"
)

// Capabilities lists every capability in a stable order.
var Capabilities = []Capability{Summarization, Moderation, Embeddings, Translation, Checkin}

// Defaults are the model IDs used when no override is configured. Index 0 is
// the primary; later entries are tried in order.
var defaults = map[Capability][]string{
	Summarization: {"facebook/bart-large-cnn", "sshleifer/distilbart-cnn-12-6"},
	Moderation:    {"unitary/toxic-bert"},
	Embeddings:    {"sentence-transformers/all-MiniLM-L6-v2"},
	Translation:   {"facebook/nllb-200-distilled-600M"},
	Checkin:       {"google/flan-t5-large"},
}

// Registry is a read-only capability -> model lookup.
type Registry struct {
	models map[Capability][]string
}

// Option applies a configuration option to the Registry.
type Option func(*Registry)

// WithOverrides replaces candidate lists for the named capabilities. Unknown
// capability names and empty lists are ignored.
func WithOverrides(overrides map[string][]string) Option {
	return func(r *Registry) {
		for name, ids := range overrides {
			c := Capability(strings.ToLower(strings.TrimSpace(name)))
			if _, known := defaults[c]; !known {
				continue
			}
			clean := make([]string, 0, len(ids))
			for _, id := range ids {
				if id = strings.TrimSpace(id); id != "" {
					clean = append(clean, id)
				}
			}
			if len(clean) > 0 {
				r.models[c] = clean
			}
		}
	}
}

// New builds a registry seeded with the defaults.
func New(opts ...Option) *Registry {
	r := &Registry{models: make(map[Capability][]string, len(defaults))}
	for c, ids := range defaults {
		r.models[c] = append([]string(nil), ids...)
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Candidates returns the ordered model IDs for c. The slice is a copy.
func (r *Registry) Candidates(c Capability) []string {
	return append([]string(nil), r.models[c]...)
}

// Primary returns the first model for c, or "" when none is registered.
func (r *Registry) Primary(c Capability) string {
	if ids := r.models[c]; len(ids) > 0 {
		return ids[0]
	}
	return ""
}

// Snapshot returns every capability's candidates keyed by name.
func (r *Registry) Snapshot() map[string][]string {
	out := make(map[string][]string, len(r.models))
	for c := range r.models {
		out[string(c)] = r.Candidates(c)
	}
	return out
}

// SourceLanguage is the language all portal content is authored in.
const SourceLanguage = "en"

// SourceLocale is the translation model's code for SourceLanguage.
const SourceLocale = "eng_Latn"

var translationLocales = map[string]string{
	"zu":  "zul_Latn",
	"xh":  "xho_Latn",
	"ss":  "ssw_Latn",
	"af":  "afr_Latn",
	"st":  "sot_Latn",
	"tn":  "tsn_Latn",
	"nso": "nso_Latn",
	"sw":  "swh_Latn",
	"fr":  "fra_Latn",
	"pt":  "por_Latn",
}

// TranslationLocale maps a target language code to the translation model's
// locale code. Unsupported languages return false.
func TranslationLocale(lang string) (string, bool) {
	code, ok := translationLocales[strings.ToLower(strings.TrimSpace(lang))]
	return code, ok
}
