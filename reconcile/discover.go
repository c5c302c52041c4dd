package reconcile

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/minios-linux/xlfsync/xliff"
)

// filePattern matches <basename>.<lang>.xlf and <basename>-<lang>.xliff.
func filePattern(basename string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)^` + regexp.QuoteMeta(basename) + `[.-](.*)[.]xl[a-z]*f$`)
}

// Discover creates a session with one Document per language file in the
// folder. The source language, and every configured language without a
// file, get an empty synthesized document. A file that cannot be parsed
// fails the run. Nothing is written.
func Discover(opts Options) (*Session, error) {
	s := newSession(opts)

	entries, err := os.ReadDir(opts.Folder)
	if err != nil {
		return nil, fmt.Errorf("reading source folder: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	re := filePattern(opts.Basename)
	for _, name := range names {
		m := re.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		lang := strings.TrimSpace(m[1])
		if lang == "" {
			opts.debug("%s: no language in file name, ignored", name)
			continue
		}
		if d := s.lookup(lang); d != nil {
			opts.warn("%s: language %s already loaded from %s, ignored", name, lang, filepath.Base(d.Path))
			continue
		}

		path := filepath.Join(opts.Folder, name)
		doc, err := xliff.ParseFile(path)
		if err != nil {
			return nil, err
		}
		s.Documents[lang] = &Document{
			Lang:    lang,
			Path:    path,
			Existed: true,
			Doc:     doc,
			Labels:  make(map[string]Label),
		}
		opts.debug("discovered %s (%s)", lang, name)
	}

	if d := s.lookup(opts.SourceLang); d != nil {
		s.SourceLang = d.Lang
	} else {
		s.synthesize(opts.SourceLang)
	}
	for _, lang := range opts.Languages {
		if s.lookup(lang) == nil {
			s.synthesize(strings.TrimSpace(lang))
		}
	}

	for lang := range s.Documents {
		s.Queue[lang] = nil
	}
	return s, nil
}

// synthesize adds an empty document for lang at <folder>/<basename>.<lang>.xlf.
func (s *Session) synthesize(lang string) {
	path := filepath.Join(s.opts.Folder, s.opts.Basename+"."+lang+".xlf")
	s.Documents[lang] = &Document{
		Lang:   lang,
		Path:   path,
		Doc:    xliff.New(lang),
		Labels: make(map[string]Label),
	}
	s.opts.log("no file for %s, starting %s", lang, filepath.Base(path))
}
