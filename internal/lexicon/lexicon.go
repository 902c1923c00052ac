// Package lexicon maps salon-dialect phrases to canonical catalog entities.
package lexicon

import (
	"strings"

	"github.com/rodrigiego-coder/beauty-manager/internal/textnorm"
)

// EntityType classifies what a lexicon entry resolves to.
type EntityType string

const (
	EntityService      EntityType = "service"
	EntityProduct      EntityType = "product"
	EntityProfessional EntityType = "professional"
)

// Entry maps trigger phrases to one canonical entity. Entries are static
// configuration: loaded at startup, read-only at runtime.
type Entry struct {
	ID                  string     `yaml:"id"`
	EntityType          EntityType `yaml:"entityType"`
	CanonicalName       string     `yaml:"canonicalName"`
	TriggerPhrases      []string   `yaml:"triggerPhrases"`
	Ambiguous           bool       `yaml:"ambiguous,omitempty"`
	MinConfidence       float64    `yaml:"minConfidence,omitempty"`
	RiskLevel           string     `yaml:"riskLevel,omitempty"`
	RepairTemplateKey   string     `yaml:"repairTemplateKey,omitempty"`
}

// Match is a resolved lexicon hit.
type Match struct {
	Entry   Entry
	Trigger string  // the trigger phrase that matched
	Score   float64 // 1.0 for substring hits, Dice score for fuzzy hits
}

// Resolver resolves normalized text against a fixed entry table.
type Resolver struct {
	entries []Entry
}

// NewResolver builds a resolver over the given entries. Trigger phrases
// are normalized once here so runtime matching is a plain substring test.
func NewResolver(entries []Entry) *Resolver {
	normalized := make([]Entry, len(entries))
	for i, e := range entries {
		triggers := make([]string, len(e.TriggerPhrases))
		for j, t := range e.TriggerPhrases {
			triggers[j] = textnorm.Normalize(t)
		}
		e.TriggerPhrases = triggers
		normalized[i] = e
	}
	return &Resolver{entries: normalized}
}

// Resolve finds the entry whose trigger phrase appears in the normalized
// message. When several entries match, the longest trigger wins; ties are
// broken by declaration order. ok is false when nothing matched.
func (r *Resolver) Resolve(normalized string) (Match, bool) {
	var best Match
	found := false
	for _, e := range r.entries {
		for _, trigger := range e.TriggerPhrases {
			if trigger == "" || !strings.Contains(normalized, trigger) {
				continue
			}
			if !found || len(trigger) > len(best.Trigger) {
				best = Match{Entry: e, Trigger: trigger, Score: 1.0}
				found = true
			}
		}
	}
	return best, found
}

// ResolveFuzzy scores free text against canonical names with the bigram
// Dice coefficient. Entries flagged ambiguous, or scores below the entry's
// confidence floor, are not assumed: ok comes back false and the caller
// asks a clarifying question instead.
func (r *Resolver) ResolveFuzzy(normalized string, entityType EntityType) (Match, bool) {
	var best Match
	for _, e := range r.entries {
		if e.EntityType != entityType {
			continue
		}
		score := textnorm.DiceCoefficient(normalized, textnorm.Normalize(e.CanonicalName))
		if score > best.Score {
			best = Match{Entry: e, Trigger: e.CanonicalName, Score: score}
		}
	}
	if best.Entry.ID == "" {
		return Match{}, false
	}
	floor := best.Entry.MinConfidence
	if floor <= 0 {
		floor = textnorm.DefaultConfidenceFloor
	}
	if best.Score < floor || best.Entry.Ambiguous {
		return best, false
	}
	return best, true
}

// Entries returns the resolver's entry table.
func (r *Resolver) Entries() []Entry {
	return r.entries
}
