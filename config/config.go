// Package config — run options and the optional .xlfsync.yaml / .xlfsync.toml
// configuration file.
//
// When a configuration file exists in the working directory its values
// replace the built-in defaults; command-line flags are applied on top by the
// caller. YAML takes precedence when both files exist.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Configuration file names, in lookup order.
const (
	YAMLFileName = ".xlfsync.yaml"
	TOMLFileName = ".xlfsync.toml"
)

// Translation providers.
const (
	// ProviderAzure is the Azure Cognitive Services Translator (subscription key).
	ProviderAzure = "azure"
	// ProviderGoogle is the keyless Google Translate web endpoint.
	ProviderGoogle = "google"
)

// Defaults.
const (
	DefaultFolder     = "."
	DefaultBaseFile   = "messages.xlf"
	DefaultSourceLang = "en-US"
	DefaultMaxRetries = 3
)

// ---------------------------------------------------------------------------
// File schema
// ---------------------------------------------------------------------------

// File is the on-disk configuration structure.
type File struct {
	// Folder holds the XLIFF and override files, relative to the config file.
	Folder string `yaml:"folder,omitempty" toml:"folder"`
	// BaseFile is the base file name, typically messages.xlf.
	BaseFile string `yaml:"base_file,omitempty" toml:"base_file"`
	// SourceLang is the language whose source text is canonical.
	SourceLang string `yaml:"source_lang,omitempty" toml:"source_lang"`
	// Languages are target languages to create when no file exists yet.
	Languages []string `yaml:"languages,omitempty" toml:"languages"`
	// Provider selects the translation service: azure or google.
	Provider string `yaml:"provider,omitempty" toml:"provider"`
	// Region is the Azure resource region used for token issuing.
	Region string `yaml:"region,omitempty" toml:"region"`
	// FixSource overwrites <source> in target files with the canonical text.
	FixSource bool `yaml:"fix_source,omitempty" toml:"fix_source"`
	// Report controls writing the overrides report spreadsheet (default true).
	Report *bool `yaml:"report,omitempty" toml:"report"`
	// Timeout is the per-request timeout, e.g. "30s".
	Timeout string `yaml:"timeout,omitempty" toml:"timeout"`
	// MaxRetries is the retry budget for rate-limited or failed requests.
	MaxRetries int `yaml:"max_retries,omitempty" toml:"max_retries"`
}

// ---------------------------------------------------------------------------
// Resolved options
// ---------------------------------------------------------------------------

// Options are the resolved settings for one run.
type Options struct {
	Folder     string
	BaseFile   string
	SourceLang string
	Languages  []string
	Provider   string
	Region     string
	APIKey     string
	FixSource  bool
	Report     bool
	DryRun     bool
	Verbose    bool
	Timeout    time.Duration
	MaxRetries int

	// Path is the configuration file the options were loaded from, if any.
	Path string
}

// Default returns the built-in defaults.
func Default() Options {
	return Options{
		Folder:     DefaultFolder,
		BaseFile:   DefaultBaseFile,
		SourceLang: DefaultSourceLang,
		Provider:   ProviderAzure,
		Report:     true,
		MaxRetries: DefaultMaxRetries,
	}
}

// Basename returns BaseFile without its extension ("messages.xlf" -> "messages").
func (o Options) Basename() string {
	base := filepath.Base(o.BaseFile)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Validate checks option values that cannot be defaulted.
func (o Options) Validate() error {
	if strings.TrimSpace(o.BaseFile) == "" || o.Basename() == "" {
		return fmt.Errorf("base file name is empty")
	}
	if strings.TrimSpace(o.SourceLang) == "" {
		return fmt.Errorf("source language is empty")
	}
	switch o.Provider {
	case ProviderAzure, ProviderGoogle:
	default:
		return fmt.Errorf("unknown provider %q (valid: %s, %s)", o.Provider, ProviderAzure, ProviderGoogle)
	}
	if o.MaxRetries < 0 {
		return fmt.Errorf("max retries must not be negative")
	}
	info, err := os.Stat(o.Folder)
	if err != nil {
		return fmt.Errorf("source folder: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("source folder %s is not a directory", o.Folder)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load returns the defaults overlaid with the configuration file found in dir.
// A missing file is not an error.
func Load(dir string) (Options, error) {
	opts := Default()

	f, path, err := readFile(dir)
	if err != nil {
		return opts, err
	}
	if f == nil {
		return opts, nil
	}
	opts.Path = path

	if f.Folder != "" {
		opts.Folder = f.Folder
		if !filepath.IsAbs(opts.Folder) {
			opts.Folder = filepath.Join(dir, opts.Folder)
		}
	}
	if f.BaseFile != "" {
		opts.BaseFile = f.BaseFile
	}
	if f.SourceLang != "" {
		opts.SourceLang = f.SourceLang
	}
	opts.Languages = f.Languages
	if f.Provider != "" {
		opts.Provider = strings.ToLower(f.Provider)
	}
	opts.Region = f.Region
	opts.FixSource = f.FixSource
	if f.Report != nil {
		opts.Report = *f.Report
	}
	if f.Timeout != "" {
		d, err := time.ParseDuration(f.Timeout)
		if err != nil {
			return opts, fmt.Errorf("%s: invalid timeout %q: %w", path, f.Timeout, err)
		}
		opts.Timeout = d
	}
	if f.MaxRetries != 0 {
		opts.MaxRetries = f.MaxRetries
	}

	for i, lang := range opts.Languages {
		if strings.TrimSpace(lang) == "" {
			return opts, fmt.Errorf("%s: languages[%d] is empty", path, i)
		}
	}

	return opts, nil
}

// readFile reads the YAML or TOML configuration in dir.
// Returns nil when neither exists.
func readFile(dir string) (*File, string, error) {
	path := filepath.Join(dir, YAMLFileName)
	data, err := os.ReadFile(path)
	if err == nil {
		var f File
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, path, fmt.Errorf("parsing %s: %w", path, err)
		}
		return &f, path, nil
	}
	if !os.IsNotExist(err) {
		return nil, path, fmt.Errorf("reading %s: %w", path, err)
	}

	path = filepath.Join(dir, TOMLFileName)
	data, err = os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", nil
		}
		return nil, path, fmt.Errorf("reading %s: %w", path, err)
	}
	var f File
	if _, err := toml.Decode(string(data), &f); err != nil {
		return nil, path, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &f, path, nil
}
