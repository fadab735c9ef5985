// Package namegen produces human-readable display names for queued
// players, in the adjective-color-animal form clients show in the UI.
package namegen

import (
	"math/rand"
	"strings"
)

var adjectives = []string{
	"brave", "calm", "clever", "eager", "fierce", "gentle", "grand",
	"happy", "keen", "lucky", "mighty", "noble", "proud", "quick",
	"quiet", "sly", "swift", "wise",
}

var colors = []string{
	"amber", "azure", "coral", "crimson", "golden", "indigo", "ivory",
	"jade", "olive", "scarlet", "silver", "teal", "violet",
}

var animals = []string{
	"badger", "bishop", "falcon", "fox", "heron", "knight", "lynx",
	"marmot", "otter", "owl", "panther", "raven", "stag", "wolf",
}

// Generate returns a new display name. Names are not unique; they are
// labels for humans, not identifiers.
func Generate() string {
	parts := []string{
		adjectives[rand.Intn(len(adjectives))],
		colors[rand.Intn(len(colors))],
		animals[rand.Intn(len(animals))],
	}

	return strings.Join(parts, "-")
}
