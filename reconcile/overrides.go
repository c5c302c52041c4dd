package reconcile

import (
	"path/filepath"

	"github.com/minios-linux/xlfsync/overrides"
)

// ApplyOverrides reads <basename>-overrides*.xlsx in file-name order and
// sets each listed label's target, marking it overridden. Later files win.
// Unknown sheets and IDs, empty values and unreadable files are reported
// and skipped.
func ApplyOverrides(s *Session) {
	files, err := overrides.Discover(s.opts.Folder, s.opts.Basename)
	if err != nil {
		s.opts.logError("override discovery: %v", err)
		return
	}

	for _, path := range files {
		name := filepath.Base(path)
		sheets, err := overrides.ReadFile(path)
		if err != nil {
			s.opts.logError("%v", err)
			continue
		}
		s.opts.debug("reading overrides from %s", name)

		for _, sheet := range sheets {
			d := s.lookup(sheet.Name)
			if d == nil {
				s.opts.warn("%s: sheet %q is not a language of this run, skipped", name, sheet.Name)
				continue
			}
			for _, e := range sheet.Entries {
				l, ok := d.Labels[e.ID]
				if !ok {
					s.opts.warn("%s: %s: unknown id %s, skipped", name, d.Lang, e.ID)
					continue
				}
				target := overrides.Unwrap(e.Target)
				if blank(target) {
					s.opts.warn("%s: %s: %s has an empty override, empty overrides should be removed", name, d.Lang, e.ID)
					continue
				}
				if !l.HasOverride {
					s.Overrides[d.Lang]++
				}
				l.Target = target
				l.HasOverride = true
				d.Labels[e.ID] = l
			}
		}
	}

	for _, lang := range s.Langs() {
		if n := s.Overrides[lang]; n > 0 {
			s.opts.log("%s: %d overrides", lang, n)
		}
	}
}

// overridden returns the overridden labels of d, sorted by ID.
func overridden(d *Document) []Label {
	var out []Label
	for _, id := range sortedIDs(d.Labels) {
		if l := d.Labels[id]; l.HasOverride && !blank(l.Target) {
			out = append(out, l)
		}
	}
	return out
}
