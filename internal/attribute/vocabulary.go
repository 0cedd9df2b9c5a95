package attribute

import (
	"sort"
	"strings"
)

// Vocabulary maps checkmark keys to category labels. It is built once by the learning
// pass and only read afterwards.
type Vocabulary struct {
	order   []string
	entries map[string]string
}

// NewVocabulary builds a vocabulary from explicit entries
func NewVocabulary(entries map[string]string) Vocabulary {
	v := Vocabulary{entries: make(map[string]string, len(entries))}
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v.order = append(v.order, k)
		v.entries[k] = entries[k]
	}
	return v
}

// Learn classifies observed checkmark keys with LearnRules; keys matching no rule are left out
func Learn(observed []string) Vocabulary {
	v := Vocabulary{entries: make(map[string]string)}
	for _, key := range observed {
		if _, seen := v.entries[key]; seen {
			continue
		}
		if category, ok := Classify(LearnRules, key); ok {
			v.order = append(v.order, key)
			v.entries[key] = category
		}
	}
	return v
}

// Category returns the learned category of key
func (v Vocabulary) Category(key string) (string, bool) {
	c, ok := v.entries[key]
	return c, ok
}

// Len returns the number of learned keys
func (v Vocabulary) Len() int {
	return len(v.order)
}

// Keys returns learned keys in first-observed order
func (v Vocabulary) Keys() []string {
	return append([]string(nil), v.order...)
}

// Groups returns the learned keys per category, categories sorted
func (v Vocabulary) Groups() []Group {
	index := make(map[string]int)
	var groups []Group
	for _, key := range v.order {
		c := v.entries[key]
		i, ok := index[c]
		if !ok {
			i = len(groups)
			index[c] = i
			groups = append(groups, Group{Category: c})
		}
		groups[i].Keys = append(groups[i].Keys, key)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Category < groups[j].Category })
	return groups
}

// Group is one category and its learned keys
type Group struct {
	Category string
	Keys     []string
}

// ObservedKeys accumulates checkmark keys across documents in first-seen order
type ObservedKeys struct {
	keys []string
	seen map[string]struct{}
}

// Observe records every checkmark key of specs
func (o *ObservedKeys) Observe(specs *SpecMap) {
	if o.seen == nil {
		o.seen = make(map[string]struct{})
	}
	for _, key := range specs.CheckmarkKeys() {
		if _, ok := o.seen[key]; ok {
			continue
		}
		o.seen[key] = struct{}{}
		o.keys = append(o.keys, key)
	}
}

// Keys returns the observed keys
func (o *ObservedKeys) Keys() []string {
	return append([]string(nil), o.keys...)
}

// BaseMapping is the static fallback for checkmark keys
var BaseMapping = map[string]string{
	"국내산":   CategoryOrigin,
	"수입산":   CategoryOrigin,
	"국물조림용": CategoryUsage,
	"비빔무침용": CategoryUsage,
}

// KeyRenames collapses near-synonym header labels
var KeyRenames = map[string]string{
	"재료 종류": "재료",
	"반찬종류":  "종류",
}

// Resolver answers category and rename lookups during normalization
type Resolver struct {
	learned Vocabulary
	static  map[string]string
	renames map[string]string
}

// NewResolver layers the learned vocabulary over BaseMapping plus extra static entries.
// Learned categories always win over static ones for the same key.
func NewResolver(learned Vocabulary, extraStatic, extraRenames map[string]string) *Resolver {
	r := &Resolver{
		learned: learned,
		static:  make(map[string]string, len(BaseMapping)+len(extraStatic)),
		renames: make(map[string]string, len(KeyRenames)+len(extraRenames)),
	}
	for k, v := range BaseMapping {
		r.static[k] = v
	}
	for k, v := range extraStatic {
		r.static[k] = v
	}
	for k, v := range KeyRenames {
		r.renames[k] = v
	}
	for k, v := range extraRenames {
		r.renames[k] = v
	}
	return r
}

// Lookup consults the learned vocabulary, then the static mapping
func (r *Resolver) Lookup(key string) (string, bool) {
	if c, ok := r.learned.Category(key); ok {
		return c, true
	}
	c, ok := r.static[key]
	return c, ok
}

// Resolve is Lookup falling back to InlineRules
func (r *Resolver) Resolve(key string) (string, bool) {
	if c, ok := r.Lookup(key); ok {
		return c, true
	}
	return Classify(InlineRules, key)
}

// CanonicalKey applies the rename table and strips square brackets
func (r *Resolver) CanonicalKey(key string) string {
	if renamed, ok := r.renames[key]; ok {
		key = renamed
	}
	return strings.NewReplacer("[", "", "]", "").Replace(key)
}
