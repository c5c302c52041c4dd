// Package reconcile runs the XLIFF reconciliation pipeline: discover the
// per-language files, ingest their labels, layer spreadsheet overrides,
// detect missing and stale translations, fill them through a translator and
// write the merged result back after taking a backup.
//
// Stages run strictly in order on one Session:
//
//	Discover -> Ingest -> ApplyOverrides -> DetectGaps -> Translate -> ExportReport, Persist
//
// Labels are values: each stage writes explicit updates back into the maps by
// ID and no two stages share a mutable label.
package reconcile

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/minios-linux/xlfsync/xliff"
)

// Label is one translatable unit of a language.
type Label struct {
	ID     string
	Source string
	// Target is empty when untranslated.
	Target string
	// HasOverride marks a value taken from an override spreadsheet. Such
	// labels are never queued as missing or stale.
	HasOverride bool
}

// Document is one language's XLIFF file and its labels.
type Document struct {
	Lang string
	Path string
	// Existed reports whether Path was on disk when the run started.
	Existed bool
	Doc     *xliff.Document
	Labels  map[string]Label
}

// Translator translates label content between language tags.
type Translator interface {
	Translate(ctx context.Context, text, fromTag, toTag string) (string, error)
}

// ---------------------------------------------------------------------------
// Options
// ---------------------------------------------------------------------------

// Options controls one pipeline run.
type Options struct {
	// Folder holds the XLIFF and override files.
	Folder string
	// Basename is the base file name without extension, e.g. "messages".
	Basename string
	// SourceLang is the language whose source text is canonical.
	SourceLang string
	// Languages are target languages to create when no file exists.
	Languages []string
	// FixSource overwrites <source> in target documents with the canonical text.
	FixSource bool
	// Report writes the overrides report workbook before the documents.
	Report bool
	// DryRun stops Run after gap detection.
	DryRun bool
	// Now returns the run timestamp. Default: time.Now.
	Now func() time.Time

	// OnLog emits informational messages.
	OnLog func(format string, args ...any)
	// OnWarn emits skipped data defects.
	OnWarn func(format string, args ...any)
	// OnError emits failures of single labels, files or languages.
	OnError func(format string, args ...any)
	// OnDebug emits verbose detail.
	OnDebug func(format string, args ...any)
	// OnProgress is called after each translated label.
	OnProgress func(lang string, done, total int)
}

func (o *Options) log(format string, args ...any) {
	if o.OnLog != nil {
		o.OnLog(format, args...)
	}
}

func (o *Options) warn(format string, args ...any) {
	if o.OnWarn != nil {
		o.OnWarn(format, args...)
	} else {
		o.log(format, args...)
	}
}

func (o *Options) logError(format string, args ...any) {
	if o.OnError != nil {
		o.OnError(format, args...)
	} else {
		o.log(format, args...)
	}
}

func (o *Options) debug(format string, args ...any) {
	if o.OnDebug != nil {
		o.OnDebug(format, args...)
	}
}

func (o *Options) progress(lang string, done, total int) {
	if o.OnProgress != nil {
		o.OnProgress(lang, done, total)
	}
}

// ---------------------------------------------------------------------------
// Session
// ---------------------------------------------------------------------------

// Session is the state of one run.
type Session struct {
	// SourceLang is the source language tag as keyed in Documents.
	SourceLang string
	// SourceLabels are the canonical labels. Read-only after Ingest.
	SourceLabels map[string]Label
	Documents    map[string]*Document
	// Queue holds the labels needing translation per language, ascending
	// by ID without duplicates.
	Queue map[string][]Label
	// Overrides counts applied override values per language.
	Overrides map[string]int
	// Started is the run timestamp used in backup and report names.
	Started time.Time

	opts Options

	backupOnce sync.Once
	backupDir  string
	backupErr  error
}

func newSession(opts Options) *Session {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Session{
		SourceLang:   opts.SourceLang,
		SourceLabels: make(map[string]Label),
		Documents:    make(map[string]*Document),
		Queue:        make(map[string][]Label),
		Overrides:    make(map[string]int),
		Started:      opts.Now(),
		opts:         opts,
	}
}

// Langs returns the session's language tags, sorted.
func (s *Session) Langs() []string {
	langs := make([]string, 0, len(s.Documents))
	for lang := range s.Documents {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

// lookup returns the document for a tag, matched case-insensitively.
func (s *Session) lookup(tag string) *Document {
	if d, ok := s.Documents[tag]; ok {
		return d
	}
	for lang, d := range s.Documents {
		if strings.EqualFold(lang, strings.TrimSpace(tag)) {
			return d
		}
	}
	return nil
}

// LangSummary describes one language of a session.
type LangSummary struct {
	Lang      string
	Path      string
	Existed   bool
	Labels    int
	Overrides int
	Queued    int
}

// Summary returns per-language counts in Langs order.
func (s *Session) Summary() []LangSummary {
	out := make([]LangSummary, 0, len(s.Documents))
	for _, lang := range s.Langs() {
		d := s.Documents[lang]
		out = append(out, LangSummary{
			Lang:      lang,
			Path:      d.Path,
			Existed:   d.Existed,
			Labels:    len(d.Labels),
			Overrides: s.Overrides[lang],
			Queued:    len(s.Queue[lang]),
		})
	}
	return out
}

// same compares label text ignoring case and surrounding whitespace.
func same(a, b string) bool {
	return strings.ToLower(strings.TrimSpace(a)) == strings.ToLower(strings.TrimSpace(b))
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// sortedIDs returns the keys of labels in ascending order.
func sortedIDs(labels map[string]Label) []string {
	ids := make([]string, 0, len(labels))
	for id := range labels {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
