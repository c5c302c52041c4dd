package reconcile

import (
	"context"
	"errors"
	"fmt"

	"github.com/minios-linux/xlfsync/langmeta"
	"github.com/minios-linux/xlfsync/translate"
)

// Translate fills every queued label through tr and folds the result into
// the language's labels, except overridden ones. A failed label keeps its
// source text as the translation. ErrAuth stops the stage and is returned.
// A nil tr, or a source language without a provider code, makes the stage
// a no-op; a language the translator rejects is left untranslated.
func Translate(ctx context.Context, s *Session, tr Translator) error {
	if tr == nil {
		s.opts.log("no translation credential configured, machine translation skipped")
		return nil
	}
	if langmeta.ProviderCode(s.SourceLang) == "" {
		s.opts.warn("%s: source language not supported by the translation service, machine translation skipped", s.SourceLang)
		return nil
	}

	for _, lang := range s.Langs() {
		if err := ctx.Err(); err != nil {
			return err
		}
		q := s.Queue[lang]
		if len(q) == 0 {
			continue
		}
		if langmeta.ProviderCode(lang) == "" {
			s.opts.warn("%s: language not supported by the translation service, %d labels left untranslated", lang, len(q))
			continue
		}

		d := s.Documents[lang]
		failed := 0
	labels:
		for i := range q {
			if err := ctx.Err(); err != nil {
				return err
			}

			out, err := tr.Translate(ctx, q[i].Source, s.SourceLang, lang)
			if err != nil {
				if errors.Is(err, translate.ErrAuth) {
					return fmt.Errorf("translating %s: %w", lang, err)
				}
				if errors.Is(err, translate.ErrUnsupportedLanguage) {
					s.opts.warn("%s: %v, %d labels left untranslated", lang, err, len(q)-i)
					break labels
				}
				if ctx.Err() != nil {
					return ctx.Err()
				}
				s.opts.logError("%s: %s: %v", lang, q[i].ID, err)
				out = q[i].Source
				failed++
			}

			q[i].Target = out
			if l, ok := d.Labels[q[i].ID]; ok && !l.HasOverride {
				l.Target = out
				d.Labels[q[i].ID] = l
			}
			s.opts.progress(lang, i+1, len(q))
		}

		if failed > 0 {
			s.opts.warn("%s: %d of %d labels kept their source text", lang, failed, len(q))
		} else {
			s.opts.debug("%s: %d labels translated", lang, len(q))
		}
	}
	return nil
}
