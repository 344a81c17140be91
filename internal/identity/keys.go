// Package identity derives the dedup keys a lead participates in.
package identity

import (
	"golang.org/x/text/cases"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// Key is one tagged dedup-matching criterion derived from a lead.
// Two leads are considered the same business if any one key collides.
type Key string

var fold = cases.Fold()

// Keys returns the set of dedup keys for a lead. Keys whose required
// fields are empty are suppressed rather than emitted half-formed:
// no biz key without an address, no phone key without a business name.
func Keys(l model.Lead) []Key {
	var keys []Key

	if l.InstagramHandle != "" {
		keys = append(keys, Key("ig:"+l.InstagramHandle))
	}
	if l.Email != "" {
		keys = append(keys, Key("email:"+fold.String(l.Email)))
	}
	if l.BusinessName != "" && l.Address != "" {
		keys = append(keys, Key("biz:"+fold.String(l.BusinessName)+"|"+fold.String(l.Address)))
	}
	if l.BusinessName != "" && l.Phone != "" {
		keys = append(keys, Key("phone:"+fold.String(l.BusinessName)+"|"+l.Phone))
	}

	return keys
}

// Set is a mutable collection of keys already seen.
type Set map[Key]struct{}

// NewSet builds a Set from the identity keys of existing leads,
// typically the store snapshot taken at the start of a batch.
func NewSet(existing []model.Lead) Set {
	s := make(Set)
	for _, l := range existing {
		s.Add(Keys(l))
	}
	return s
}

// Add inserts keys into the set.
func (s Set) Add(keys []Key) {
	for _, k := range keys {
		s[k] = struct{}{}
	}
}

// ContainsAny reports whether any of the given keys is already in the set.
func (s Set) ContainsAny(keys []Key) bool {
	for _, k := range keys {
		if _, ok := s[k]; ok {
			return true
		}
	}
	return false
}
