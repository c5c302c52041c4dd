package translate

import (
	"context"
	"fmt"

	"github.com/bregydoc/gtranslate"
)

// googleCodes maps provider codes that the Google web endpoint spells
// differently.
var googleCodes = map[string]string{
	"zh-Hans": "zh-CN",
	"sr-Cyrl": "sr",
	"fil":     "tl",
}

// Google translates through the keyless Google Translate web endpoint.
// It needs no credential and ignores the content type.
type Google struct {
	opts Options
	call func(text string, params gtranslate.TranslationParams) (string, error)
}

// NewGoogle returns a Google provider.
func NewGoogle(opts Options) *Google {
	return &Google{opts: opts, call: gtranslate.TranslateWithParams}
}

// Translate sends one piece of content, retrying failures with backoff.
func (g *Google) Translate(ctx context.Context, text, from, to string, ct ContentType) (string, error) {
	params := gtranslate.TranslationParams{From: googleCode(from), To: googleCode(to)}

	maxRetries := g.opts.effectiveMaxRetries()
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		g.opts.log("google attempt %d: %s -> %s (%s)", attempt+1, params.From, params.To, ct)

		out, err := g.call(text, params)
		if err == nil {
			return out, nil
		}
		lastErr = err
		if attempt < maxRetries {
			if err := sleep(ctx, g.opts.backoff(attempt)); err != nil {
				return "", err
			}
		}
	}
	return "", fmt.Errorf("google translate failed after %d retries: %w", maxRetries, lastErr)
}

func googleCode(code string) string {
	if c, ok := googleCodes[code]; ok {
		return c
	}
	return code
}
