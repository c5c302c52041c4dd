package reconcile

import "sort"

// DetectGaps builds each language's translation queue.
//
// The drift pass refreshes every label whose source differs from the
// canonical source and queues it. The missing/stale pass then queues every
// label without an override whose target is blank or equal to its source.
// The queue is sorted by ID keeping the first entry per ID.
func DetectGaps(s *Session) {
	for _, lang := range s.Langs() {
		d := s.Documents[lang]
		ids := sortedIDs(d.Labels)
		var q []Label
		drifted := 0

		for _, id := range ids {
			l := d.Labels[id]
			canon, ok := s.SourceLabels[id]
			if !ok || same(l.Source, canon.Source) {
				continue
			}
			l.Source = canon.Source
			d.Labels[id] = l
			q = append(q, Label{ID: id, Source: canon.Source})
			drifted++
		}

		for _, id := range ids {
			l := d.Labels[id]
			if l.HasOverride {
				continue
			}
			if blank(l.Target) || same(l.Target, l.Source) {
				q = append(q, Label{ID: id, Source: l.Source})
			}
		}

		s.Queue[lang] = dedupe(q)
		if drifted > 0 {
			s.opts.debug("%s: %d labels changed in %s", lang, drifted, s.SourceLang)
		}
		s.opts.debug("%s: %d labels queued", lang, len(s.Queue[lang]))
	}
}

// dedupe sorts by ID, keeping the first entry for each ID.
func dedupe(q []Label) []Label {
	sort.SliceStable(q, func(i, j int) bool { return q[i].ID < q[j].ID })
	out := q[:0]
	for i, l := range q {
		if i > 0 && l.ID == out[len(out)-1].ID {
			continue
		}
		out = append(out, l)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
