package translate

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/beevik/etree"
	"github.com/minios-linux/xlfsync/langmeta"
	"github.com/minios-linux/xlfsync/xliff"
)

// Translator maps language tags to provider codes and sends label content
// to a Provider, splitting content larger than MaxChars.
type Translator struct {
	provider Provider
}

// New returns a Translator over p.
func New(p Provider) *Translator {
	return &Translator{provider: p}
}

// Translate translates inner markup from one language tag to another.
// Identical tags, or tags sharing a provider code, return text unchanged.
func (t *Translator) Translate(ctx context.Context, text, fromTag, toTag string) (string, error) {
	if strings.EqualFold(strings.TrimSpace(fromTag), strings.TrimSpace(toTag)) {
		return text, nil
	}
	from := langmeta.ProviderCode(fromTag)
	if from == "" {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedLanguage, fromTag)
	}
	to := langmeta.ProviderCode(toTag)
	if to == "" {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedLanguage, toTag)
	}
	if from == to {
		return text, nil
	}

	out, err := t.translateMarkup(ctx, protect(text), from, to)
	if err != nil {
		return "", err
	}
	return unprotect(out), nil
}

// ---------------------------------------------------------------------------
// Placeholders
// ---------------------------------------------------------------------------

var (
	placeholderRe = regexp.MustCompile(`#(\d)#`)
	protectedRe   = regexp.MustCompile(`(?i)<span\s+class=["']?notranslate["']?\s*>\s*(#\d#)\s*</span>`)
)

// protect wraps #N# placeholders so the provider leaves them alone.
func protect(s string) string {
	return placeholderRe.ReplaceAllString(s, `<span class="notranslate">#$1#</span>`)
}

func unprotect(s string) string {
	return protectedRe.ReplaceAllString(s, "$1")
}

// ---------------------------------------------------------------------------
// Chunking
// ---------------------------------------------------------------------------

func (t *Translator) translateMarkup(ctx context.Context, s, from, to string) (string, error) {
	if utf8.RuneCountInString(s) <= MaxChars {
		return t.provider.Translate(ctx, s, from, to, HTML)
	}

	frag, err := xliff.Fragment(s)
	if err != nil {
		// Not well-formed: split the raw markup like text.
		var b strings.Builder
		for _, piece := range splitText(s) {
			out, err := t.provider.Translate(ctx, piece, from, to, HTML)
			if err != nil {
				return "", err
			}
			b.WriteString(out)
		}
		return b.String(), nil
	}
	return t.translateChildren(ctx, frag, from, to)
}

// translateChildren translates the children of e one by one and
// concatenates the results in order.
func (t *Translator) translateChildren(ctx context.Context, e *etree.Element, from, to string) (string, error) {
	var b strings.Builder
	for _, tok := range e.Child {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		switch tok := tok.(type) {
		case *etree.Element:
			outer := xliff.OuterXML(tok)
			if utf8.RuneCountInString(outer) <= MaxChars {
				out, err := t.provider.Translate(ctx, outer, from, to, HTML)
				if err != nil {
					return "", err
				}
				b.WriteString(out)
				continue
			}
			start, end := xliff.SplitTags(tok)
			inner, err := t.translateChildren(ctx, tok, from, to)
			if err != nil {
				return "", err
			}
			b.WriteString(start + inner + end)

		case *etree.CharData:
			if strings.TrimSpace(tok.Data) == "" {
				b.WriteString(tok.Data)
				continue
			}
			var out strings.Builder
			for _, piece := range splitText(tok.Data) {
				tr, err := t.provider.Translate(ctx, piece, from, to, Plain)
				if err != nil {
					return "", err
				}
				out.WriteString(tr)
			}
			if tok.IsCData() {
				b.WriteString("<![CDATA[" + out.String() + "]]>")
			} else {
				b.WriteString(escapeText(out.String()))
			}

		case *etree.Comment:
			b.WriteString("<!--" + tok.Data + "-->")

		case *etree.ProcInst:
			b.WriteString("<?" + tok.Target + " " + tok.Inst + "?>")
		}
	}
	return b.String(), nil
}

// splitText splits s into pieces of at most MaxChars characters, cutting
// after the first '.' past the midpoint. A piece with no such boundary is
// returned whole even when it exceeds the limit.
func splitText(s string) []string {
	if utf8.RuneCountInString(s) <= MaxChars {
		return []string{s}
	}
	mid := len(s) / 2
	idx := strings.IndexByte(s[mid:], '.')
	if idx < 0 {
		return []string{s}
	}
	cut := mid + idx + 1
	if cut >= len(s) {
		return []string{s}
	}
	return append(splitText(s[:cut]), splitText(s[cut:])...)
}

var textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func escapeText(s string) string {
	return textEscaper.Replace(s)
}
