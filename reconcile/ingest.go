package reconcile

import "maps"

// Ingest loads the labels of every document, then propagates every source
// label missing from a target language as an untranslated label.
// Units with a blank id or blank source are skipped; the first unit wins
// when an id repeats.
func Ingest(s *Session) {
	for _, lang := range s.Langs() {
		d := s.Documents[lang]
		skipped := 0
		for _, u := range d.Doc.Units() {
			id := u.ID()
			src, _ := u.Source()
			if blank(id) || blank(src) {
				skipped++
				continue
			}
			if _, dup := d.Labels[id]; dup {
				s.opts.debug("%s: duplicate unit %s ignored", lang, id)
				continue
			}
			tgt, _ := u.Target()
			d.Labels[id] = Label{ID: id, Source: src, Target: tgt}
		}
		if skipped > 0 {
			s.opts.debug("%s: skipped %d units without id or source", lang, skipped)
		}
		s.opts.debug("%s: %d labels", lang, len(d.Labels))
	}

	s.SourceLabels = maps.Clone(s.Documents[s.SourceLang].Labels)

	for _, lang := range s.Langs() {
		if lang == s.SourceLang {
			continue
		}
		d := s.Documents[lang]
		added := 0
		for _, id := range sortedIDs(s.SourceLabels) {
			if _, ok := d.Labels[id]; ok {
				continue
			}
			d.Labels[id] = Label{ID: id, Source: s.SourceLabels[id].Source}
			added++
		}
		if added > 0 {
			s.opts.debug("%s: %d labels added from %s", lang, added, s.SourceLang)
		}
	}
}
