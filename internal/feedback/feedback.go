// Package feedback maps a completed rep's issue tags to a spoken
// coaching phrase. Selection is randomized behind an injectable source
// so tests can fix the draw, and the previous phrase is avoided when
// alternatives exist.
package feedback

import (
	"math/rand"
	"time"

	"github.com/claude/imperfectcoach/internal/exercise"
)

// phrasesByIssue is read-only package data; issue tags not listed here
// are ignored by selection.
var phrasesByIssue = map[string][]string{
	exercise.IssueAsymmetry: {
		"Pull evenly with both arms!",
		"Keep both sides working together.",
		"Balance the pull — one arm is doing extra work.",
	},
	exercise.IssuePartialBottomROM: {
		"Fully extend your arms at the bottom.",
		"All the way down — straighten those arms.",
		"Finish each rep with a full hang.",
	},
	exercise.IssueLowJump: {
		"Explode up — jump higher!",
		"Drive hard off the ground.",
		"Load your legs and really launch this time.",
	},
	exercise.IssueStiffLanding: {
		"Land softer — absorb with your knees!",
		"Bend your knees when you touch down.",
		"Think quiet feet on the landing.",
	},
	exercise.IssueAsymmetricLanding: {
		"Land with your weight even on both legs.",
		"Square up your landing.",
	},
}

// encouragement is the fallback when a rep carries no known issue.
var encouragement = []string{
	"Keep it up!",
	"Great rep!",
	"Strong work — stay with it.",
	"That's the form we want!",
	"Looking solid, keep going.",
}

// Selector picks coaching phrases for completed reps. Not safe for
// concurrent use; each session owns one.
type Selector struct {
	rng  *rand.Rand
	last string
}

// NewSelector returns a Selector drawing from rng. A nil rng gets a
// time-seeded source.
func NewSelector(rng *rand.Rand) *Selector {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Selector{rng: rng}
}

// ForRep picks one phrase for the rep: a random known issue tag first,
// then a random phrase from that tag's list, avoiding an immediate
// repeat of the previous phrase when the list allows it.
func (s *Selector) ForRep(rep *exercise.RepResult) string {
	var pools [][]string
	for _, tag := range rep.Issues {
		if list, ok := phrasesByIssue[tag]; ok {
			pools = append(pools, list)
		}
	}

	var list []string
	if len(pools) == 0 {
		list = encouragement
	} else {
		list = pools[s.rng.Intn(len(pools))]
	}

	phrase := list[s.rng.Intn(len(list))]
	if phrase == s.last && len(list) > 1 {
		// Shift to a neighbor instead of redrawing so a single extra
		// draw never loops.
		for i, p := range list {
			if p == phrase {
				phrase = list[(i+1)%len(list)]
				break
			}
		}
	}
	s.last = phrase
	return phrase
}

// Phrases returns the phrase list for an issue tag, or the
// encouragement pool for an empty tag. Exposed for membership checks.
func Phrases(tag string) []string {
	if tag == "" {
		return encouragement
	}
	return phrasesByIssue[tag]
}
