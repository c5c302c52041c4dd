package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Azure endpoints.
const (
	DefaultTokenURL      = "https://api.cognitive.microsoft.com/sts/v1.0/issueToken"
	DefaultTranslatorURL = "https://api.cognitive.microsofttranslator.com"
)

// AzureConfig configures the Azure Translator client.
type AzureConfig struct {
	// Key is the Cognitive Services subscription key.
	Key string
	// Region selects the regional token endpoint when TokenURL is empty.
	Region string
	// TokenURL overrides the token issuing endpoint.
	TokenURL string
	// Endpoint overrides the Translator base URL.
	Endpoint string
	Options  Options
}

// Azure translates through the Translator v3 REST API with a bearer token
// obtained from the subscription key.
type Azure struct {
	cfg    AzureConfig
	client *http.Client
	tokens *TokenCache
	rl     *rateLimitState
}

// NewAzure returns an Azure provider.
func NewAzure(cfg AzureConfig) *Azure {
	if cfg.TokenURL == "" {
		cfg.TokenURL = DefaultTokenURL
		if cfg.Region != "" {
			cfg.TokenURL = "https://" + cfg.Region + ".api.cognitive.microsoft.com/sts/v1.0/issueToken"
		}
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultTranslatorURL
	}
	a := &Azure{
		cfg:    cfg,
		client: makeHTTPClient(cfg.Options.effectiveTimeout()),
		rl:     &rateLimitState{},
	}
	a.tokens = NewTokenCache(a.issueToken, TokenTTL)
	return a
}

// Tokens returns the provider's token cache.
func (a *Azure) Tokens() *TokenCache {
	return a.tokens
}

// issueToken exchanges the subscription key for an access token.
func (a *Azure) issueToken(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", a.cfg.TokenURL, nil)
	if err != nil {
		return "", fmt.Errorf("creating token request: %w", err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", a.cfg.Key)

	a.cfg.Options.log("POST %s", a.cfg.TokenURL)
	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	switch resp.StatusCode {
	case http.StatusOK:
		return strings.TrimSpace(string(body)), nil
	case http.StatusForbidden:
		return "", fmt.Errorf("%w: for a free-tier account this means the quota has been exceeded", ErrAuth)
	default:
		return "", fmt.Errorf("%w: status %d, ensure the key is valid", ErrAuth, resp.StatusCode)
	}
}

type azureRequest struct {
	Text string `json:"Text"`
}

type azureResult struct {
	Translations []struct {
		Text string `json:"text"`
		To   string `json:"to"`
	} `json:"translations"`
}

// Translate sends one piece of content. 429 and 5xx responses are retried
// with backoff; a 429 pauses every caller of this provider. A 401 drops the
// cached token and retries with a fresh one; a 401 on the last attempt
// is ErrAuth.
func (a *Azure) Translate(ctx context.Context, text, from, to string, ct ContentType) (string, error) {
	body, err := json.Marshal([]azureRequest{{Text: text}})
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	q := url.Values{}
	q.Set("api-version", "3.0")
	q.Set("to", to)
	q.Set("from", from)
	q.Set("textType", string(ct))
	endpoint := strings.TrimRight(a.cfg.Endpoint, "/") + "/translate?" + q.Encode()

	maxRetries := a.cfg.Options.effectiveMaxRetries()
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := a.rl.waitIfPaused(ctx); err != nil {
			return "", err
		}
		if err := ctx.Err(); err != nil {
			return "", err
		}

		token, err := a.tokens.Token(ctx)
		if err != nil {
			return "", err
		}

		req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(body))
		if err != nil {
			return "", fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")

		a.cfg.Options.log("azure attempt %d: POST %s", attempt+1, endpoint)
		resp, err := a.client.Do(req)
		if err != nil {
			if attempt < maxRetries {
				if err := sleep(ctx, a.cfg.Options.backoff(attempt)); err != nil {
					return "", err
				}
				continue
			}
			return "", fmt.Errorf("translation request failed: %w", err)
		}
		respBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			return pickTranslation(respBody, to, text)

		case resp.StatusCode == http.StatusUnauthorized:
			a.tokens.Invalidate()
			if attempt < maxRetries {
				continue
			}
			return "", fmt.Errorf("%w: translator returned status 401", ErrAuth)

		case resp.StatusCode == http.StatusTooManyRequests:
			delay := retryAfter(resp, a.cfg.Options.backoff(attempt))
			a.cfg.Options.log("429 rate limited, waiting %v (attempt %d/%d)", delay, attempt+1, maxRetries)
			a.rl.pause(delay)
			if attempt < maxRetries {
				if err := sleep(ctx, delay); err != nil {
					return "", err
				}
				a.rl.unpause()
				continue
			}
			return "", fmt.Errorf("rate limited after %d retries: %s", maxRetries, truncate(string(respBody), 200))

		case resp.StatusCode >= 500 && attempt < maxRetries:
			if err := sleep(ctx, a.cfg.Options.backoff(attempt)); err != nil {
				return "", err
			}
			continue
		}

		return "", fmt.Errorf("translator returned status %d: %s", resp.StatusCode, truncate(string(respBody), 500))
	}

	return "", fmt.Errorf("exhausted all %d retries", maxRetries)
}

// pickTranslation returns the translation into code, or original when the
// response carries none for that language.
func pickTranslation(body []byte, code, original string) (string, error) {
	var results []azureResult
	if err := json.Unmarshal(body, &results); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	for _, r := range results {
		for _, t := range r.Translations {
			if strings.EqualFold(t.To, code) {
				return t.Text, nil
			}
		}
	}
	return original, nil
}
