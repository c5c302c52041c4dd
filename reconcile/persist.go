package reconcile

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/minios-linux/xlfsync/merge"
	"github.com/minios-linux/xlfsync/overrides"
)

// BackupPrefix starts the name of the per-run backup folder.
const BackupPrefix = "BACKUP-"

// LangResult is the outcome of persisting one language.
type LangResult struct {
	Lang     string
	BackedUp bool
	Written  bool
	Stats    merge.Stats
	Err      error
}

// Result is the outcome of Persist.
type Result struct {
	// BackupDir is empty when nothing needed a backup.
	BackupDir string
	Languages []LangResult
}

// Failed returns the languages that were not written.
func (r Result) Failed() []string {
	var out []string
	for _, l := range r.Languages {
		if !l.Written {
			out = append(out, l.Lang)
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// Report
// ---------------------------------------------------------------------------

// ExportReport writes <basename>-overrides-<timestamp>.xlsx with one sheet
// per language listing its queue. It returns the report path, or "" when
// there is nothing to write.
func ExportReport(s *Session) (string, error) {
	langs := s.Langs()
	if len(langs) == 0 {
		return "", nil
	}

	sheets := make([]overrides.Sheet, 0, len(langs))
	for _, lang := range langs {
		sheet := overrides.Sheet{Name: lang}
		for _, l := range s.Queue[lang] {
			sheet.Entries = append(sheet.Entries, overrides.Entry{ID: l.ID, Source: l.Source, Target: l.Target})
		}
		sheets = append(sheets, sheet)
	}

	path := filepath.Join(s.opts.Folder, overrides.ReportName(s.opts.Basename, s.Started))
	if err := overrides.WriteReport(path, sheets); err != nil {
		return "", err
	}
	s.opts.log("report written to %s", filepath.Base(path))
	return path, nil
}

// ---------------------------------------------------------------------------
// Documents
// ---------------------------------------------------------------------------

// Persist writes every document back to its path. Existing files are first
// copied into the run's backup folder; a language whose backup fails is not
// written. Queue entries are merged first, then overrides, then canonical
// sources when FixSource is set.
func Persist(ctx context.Context, s *Session) (Result, error) {
	var res Result
	mopts := merge.Options{OnError: s.opts.logError}

	for _, lang := range s.Langs() {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		d := s.Documents[lang]
		lr := LangResult{Lang: lang}

		if d.Existed {
			dir, err := s.ensureBackupDir()
			if err == nil {
				res.BackupDir = dir
				err = copyFile(d.Path, filepath.Join(dir, filepath.Base(d.Path)))
			}
			if err != nil {
				lr.Err = fmt.Errorf("backing up %s: %w", filepath.Base(d.Path), err)
				s.opts.logError("%s: %v, file left unchanged", lang, lr.Err)
				res.Languages = append(res.Languages, lr)
				continue
			}
			lr.BackedUp = true
		}

		lr.Stats.Add(merge.Apply(d.Doc, entries(s.Queue[lang]), mopts))
		lr.Stats.Add(merge.Apply(d.Doc, entries(overridden(d)), mopts))

		if s.opts.FixSource && lang != s.SourceLang {
			canonical := make(map[string]string, len(s.SourceLabels))
			for id, l := range s.SourceLabels {
				canonical[id] = l.Source
			}
			lr.Stats.Add(merge.FixSource(d.Doc, canonical, mopts))
		}

		if err := d.Doc.WriteFile(d.Path); err != nil {
			lr.Err = err
			s.opts.logError("%s: %v", lang, err)
			res.Languages = append(res.Languages, lr)
			continue
		}
		lr.Written = true
		s.opts.debug("%s: %d updated, %d appended, %d failed", lang, lr.Stats.Updated, lr.Stats.Appended, lr.Stats.Failed)
		res.Languages = append(res.Languages, lr)
	}
	return res, nil
}

// ensureBackupDir creates <folder>/BACKUP-<timestamp> on first use.
func (s *Session) ensureBackupDir() (string, error) {
	s.backupOnce.Do(func() {
		dir := filepath.Join(s.opts.Folder, BackupPrefix+s.Started.Format(overrides.TimestampLayout))
		if err := os.MkdirAll(dir, 0755); err != nil {
			s.backupErr = fmt.Errorf("creating backup folder: %w", err)
			return
		}
		s.backupDir = dir
		s.opts.log("backups in %s", filepath.Base(dir))
	})
	return s.backupDir, s.backupErr
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func entries(labels []Label) []merge.Entry {
	out := make([]merge.Entry, len(labels))
	for i, l := range labels {
		out[i] = merge.Entry{ID: l.ID, Source: l.Source, Target: l.Target}
	}
	return out
}
