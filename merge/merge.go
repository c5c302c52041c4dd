// Package merge writes reconciled label values back into XLIFF documents.
//
// Merging is lenient: content that cannot be written (unparseable markup, a
// document without <body>) is reported through Options.OnError and skipped,
// and every other entry is still applied.
package merge

import (
	"strings"

	"github.com/minios-linux/xlfsync/xliff"
)

// Entry is one label value to write.
type Entry struct {
	ID     string
	Source string
	Target string
}

// Stats counts what a merge did.
type Stats struct {
	// Updated units that existed in the document.
	Updated int
	// Appended units that were missing.
	Appended int
	// Failed entries that were skipped.
	Failed int
}

// Add accumulates other into s.
func (s *Stats) Add(other Stats) {
	s.Updated += other.Updated
	s.Appended += other.Appended
	s.Failed += other.Failed
}

// Options controls diagnostics.
type Options struct {
	// OnError reports an entry that could not be written.
	OnError func(format string, args ...any)
}

func (o *Options) logError(format string, args ...any) {
	if o.OnError != nil {
		o.OnError(format, args...)
	}
}

// Apply writes entries into doc.
//   - A non-blank Target replaces the unit's <target> content and marks it
//     final, and a differing non-empty Source replaces <source> so the pair
//     stays consistent. A missing unit is appended with <source> and <target>.
//   - A blank Target only appends a missing unit, with an empty
//     <target state="new">. Existing units are left alone.
func Apply(doc *xliff.Document, entries []Entry, opts Options) Stats {
	var st Stats
	for _, e := range entries {
		if strings.TrimSpace(e.ID) == "" {
			continue
		}
		translated := strings.TrimSpace(e.Target) != ""

		u := doc.Find(e.ID)
		if u == nil {
			state := xliff.StateNew
			target := ""
			if translated {
				state = xliff.StateFinal
				target = e.Target
			}
			if _, err := doc.AppendUnit(e.ID, e.Source, target, state); err != nil {
				opts.logError("%s: cannot append unit: %v", e.ID, err)
				st.Failed++
				continue
			}
			st.Appended++
			continue
		}

		if !translated {
			continue
		}
		if cur, _ := u.Source(); e.Source != "" && cur != e.Source {
			if err := u.SetSource(e.Source); err != nil {
				opts.logError("%s: cannot write source: %v", e.ID, err)
				st.Failed++
				continue
			}
		}
		if err := u.SetTarget(e.Target, xliff.StateFinal); err != nil {
			opts.logError("%s: cannot write target: %v", e.ID, err)
			st.Failed++
			continue
		}
		st.Updated++
	}
	return st
}

// FixSource overwrites the <source> of every unit whose ID is in canonical,
// creating the element when missing. Units that already carry the canonical
// text are not counted.
func FixSource(doc *xliff.Document, canonical map[string]string, opts Options) Stats {
	var st Stats
	for _, u := range doc.Units() {
		want, ok := canonical[u.ID()]
		if !ok {
			continue
		}
		if cur, exists := u.Source(); exists && cur == want {
			continue
		}
		if err := u.SetSource(want); err != nil {
			opts.logError("%s: cannot write source: %v", u.ID(), err)
			st.Failed++
			continue
		}
		st.Updated++
	}
	return st
}
