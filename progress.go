package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
)

// progress renders one bar per language while it is being translated.
type progress struct {
	out  io.Writer
	bars map[string]*progressbar.ProgressBar
}

func newProgress(out io.Writer) *progress {
	return &progress{out: out, bars: make(map[string]*progressbar.ProgressBar)}
}

func (p *progress) update(lang string, done, total int) {
	bar, ok := p.bars[lang]
	if !ok {
		bar = progressbar.NewOptions(total,
			progressbar.OptionSetWriter(p.out),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(40),
			progressbar.OptionSetDescription(fmt.Sprintf("[cyan]%-8s[reset]", lang)),
			progressbar.OptionOnCompletion(func() { fmt.Fprintln(p.out) }),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "[green]=[reset]",
				SaucerHead:    "[green]>[reset]",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}))
		p.bars[lang] = bar
	}
	if err := bar.Set(done); err != nil {
		logDebug("progress %s: %v", lang, err)
	}
	if done >= total {
		delete(p.bars, lang)
	}
}

// isTerminal reports whether f is a character device.
func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

// parseTimeout accepts a Go duration ("45s", "2m") or a number of seconds.
func parseTimeout(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("invalid timeout %q: must not be negative", s)
		}
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: %w", s, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid timeout %q: must not be negative", s)
	}
	return d, nil
}
