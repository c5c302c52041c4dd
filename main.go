// xlfsync — XLIFF localization sync: reconciles per-language XLIFF files
// with spreadsheet overrides and machine translation.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/minios-linux/xlfsync/config"
	"github.com/minios-linux/xlfsync/i18n"
	"github.com/minios-linux/xlfsync/langmeta"
	"github.com/minios-linux/xlfsync/reconcile"
	"github.com/minios-linux/xlfsync/settings"
	"github.com/minios-linux/xlfsync/translate"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// ---------------------------------------------------------------------------
// Logging
// ---------------------------------------------------------------------------

var (
	logOut  io.Writer = color.Error
	verbose bool

	infoTag    = color.New(color.FgBlue).SprintFunc()
	successTag = color.New(color.FgGreen).SprintFunc()
	warnTag    = color.New(color.FgYellow, color.Bold).SprintFunc()
	errorTag   = color.New(color.FgRed).SprintFunc()
	debugTag   = color.New(color.Faint).SprintFunc()
)

func logLine(tag, format string, args ...any) {
	fmt.Fprintln(logOut, tag, fmt.Sprintf(format, args...))
}

func logInfo(format string, args ...any) {
	logLine(infoTag("[INFO]"), format, args...)
}

func logSuccess(format string, args ...any) {
	logLine(successTag("[OK]"), format, args...)
}

func logWarning(format string, args ...any) {
	logLine(warnTag("[WARN]"), format, args...)
}

func logError(format string, args ...any) {
	logLine(errorTag("[ERROR]"), format, args...)
}

func logDebug(format string, args ...any) {
	if verbose {
		logLine(debugTag("[DEBUG]"), format, args...)
	}
}

// ---------------------------------------------------------------------------
// Commands
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "xlfsync",
		Short: i18n.T("Synchronize XLIFF translation files"),
		Long: i18n.T(`xlfsync keeps a set of per-language XLIFF files in step with the source
language file. It applies spreadsheet overrides, machine-translates missing
and stale labels, backs up the previous files and writes the merged result.`),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, i18n.T("Print debug output"))

	root.AddCommand(
		newSyncCmd(),
		newStatusCmd(),
		newAuthCmd(),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: i18n.T("Print version information"),
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "xlfsync %s (commit %s, built %s)\n", version, commit, date)
		},
	}
}

// runFlags are the flags shared by sync and status.
type runFlags struct {
	folder     string
	baseFile   string
	sourceLang string
	languages  []string
	region     string
	apiKey     string
	provider   string
	fixSource  bool
	noReport   bool
	dryRun     bool
	timeout    string
	maxRetries int
}

func addRunFlags(fs *pflag.FlagSet, f *runFlags) {
	fs.StringVarP(&f.folder, "folder", "f", config.DefaultFolder, i18n.T("Folder containing the XLIFF files"))
	fs.StringVarP(&f.baseFile, "base-file", "b", config.DefaultBaseFile, i18n.T("Base file name"))
	fs.StringVarP(&f.sourceLang, "source-language", "l", config.DefaultSourceLang, i18n.T("Source language tag"))
	fs.StringSliceVar(&f.languages, "languages", nil, i18n.T("Target languages to create when missing"))
	fs.StringVarP(&f.region, "translation-service", "s", "", i18n.T("Azure Translator region"))
	fs.StringVarP(&f.apiKey, "translation-key", "k", "", i18n.T("Azure Translator subscription key"))
	fs.StringVar(&f.provider, "provider", config.ProviderAzure, i18n.T("Translation provider (azure, google)"))
	fs.BoolVarP(&f.fixSource, "fix-source", "q", false, i18n.T("Overwrite source text in target files with the canonical text"))
	fs.BoolVar(&f.noReport, "no-report", false, i18n.T("Do not write the overrides report spreadsheet"))
	fs.BoolVar(&f.dryRun, "dry-run", false, i18n.T("Stop after gap detection and print queue sizes"))
	fs.StringVar(&f.timeout, "timeout", "", i18n.T("Per-request timeout (e.g. 30s)"))
	fs.IntVar(&f.maxRetries, "max-retries", config.DefaultMaxRetries, i18n.T("Retries for rate-limited or failed requests"))
	fs.SetNormalizeFunc(normalizeFlagName)
}

// normalizeFlagName accepts underscores and the long-form aliases
// used by the configuration file.
func normalizeFlagName(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	name = strings.ReplaceAll(name, "_", "-")
	switch name {
	case "api-key", "key":
		name = "translation-key"
	case "region":
		name = "translation-service"
	case "source-lang":
		name = "source-language"
	}
	return pflag.NormalizedName(name)
}

// resolveOptions overlays changed flags on the configuration file found in
// dir.
func resolveOptions(dir string, fs *pflag.FlagSet, f *runFlags) (config.Options, error) {
	opts, err := config.Load(dir)
	if err != nil {
		return opts, err
	}
	if opts.Path != "" {
		logDebug(i18n.T("Using configuration %s"), opts.Path)
	}

	if fs.Changed("folder") {
		opts.Folder = f.folder
	}
	if fs.Changed("base-file") {
		opts.BaseFile = f.baseFile
	}
	if fs.Changed("source-language") {
		opts.SourceLang = f.sourceLang
	}
	if fs.Changed("languages") {
		opts.Languages = f.languages
	}
	if fs.Changed("translation-service") {
		opts.Region = f.region
	}
	if fs.Changed("provider") {
		opts.Provider = strings.ToLower(f.provider)
	}
	if fs.Changed("fix-source") {
		opts.FixSource = f.fixSource
	}
	if fs.Changed("no-report") {
		opts.Report = !f.noReport
	}
	if fs.Changed("max-retries") {
		opts.MaxRetries = f.maxRetries
	}
	if fs.Changed("timeout") {
		d, err := parseTimeout(f.timeout)
		if err != nil {
			return opts, err
		}
		opts.Timeout = d
	}
	opts.DryRun = f.dryRun
	opts.Verbose = verbose

	if opts.Provider == config.ProviderAzure {
		opts.APIKey = settings.ResolveAPIKey(config.ProviderAzure, f.apiKey)
		if opts.Region == "" {
			opts.Region = settings.GetRegion(config.ProviderAzure)
		}
	}

	return opts, opts.Validate()
}

func reconcileOptions(opts config.Options) reconcile.Options {
	return reconcile.Options{
		Folder:     opts.Folder,
		Basename:   opts.Basename(),
		SourceLang: opts.SourceLang,
		Languages:  opts.Languages,
		FixSource:  opts.FixSource,
		Report:     opts.Report,
		DryRun:     opts.DryRun,
		OnLog:      logInfo,
		OnWarn:     logWarning,
		OnError:    logError,
		OnDebug:    logDebug,
	}
}

// newTranslator returns nil when the Azure provider has no key.
func newTranslator(opts config.Options) reconcile.Translator {
	topts := translate.Options{
		Timeout:    opts.Timeout,
		MaxRetries: opts.MaxRetries,
		OnLog:      logDebug,
		Verbose:    opts.Verbose,
	}
	switch opts.Provider {
	case config.ProviderGoogle:
		return translate.New(translate.NewGoogle(topts))
	default:
		if opts.APIKey == "" {
			return nil
		}
		return translate.New(translate.NewAzure(translate.AzureConfig{
			Key:     opts.APIKey,
			Region:  opts.Region,
			Options: topts,
		}))
	}
}

// ---------------------------------------------------------------------------
// sync
// ---------------------------------------------------------------------------

func newSyncCmd() *cobra.Command {
	var f runFlags
	cmd := &cobra.Command{
		Use:   "sync",
		Short: i18n.T("Reconcile, translate and write all language files"),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := resolveOptions(".", cmd.Flags(), &f)
			if err != nil {
				return err
			}
			return runSync(opts)
		},
	}
	addRunFlags(cmd.Flags(), &f)
	return cmd
}

func runSync(opts config.Options) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			fmt.Fprintln(logOut)
			logWarning(i18n.T("Interrupted, stopping before the next language..."))
			cancel()
		case <-ctx.Done():
		}
	}()

	ropts := reconcileOptions(opts)
	if isTerminal(os.Stderr) && !opts.DryRun {
		ropts.OnProgress = newProgress(os.Stderr).update
	}

	var tr reconcile.Translator
	if !opts.DryRun {
		tr = newTranslator(opts)
	}

	logInfo(i18n.T("Synchronizing %s in %s"), opts.BaseFile, opts.Folder)
	s, res, err := reconcile.Run(ctx, ropts, tr)
	if ctx.Err() != nil {
		reportResult(res)
		logWarning(i18n.T("Interrupted. Remaining languages were left unchanged."))
		return nil
	}
	if s != nil && opts.DryRun {
		printQueue(logOut, s)
		return nil
	}
	if s != nil {
		reportResult(res)
	}
	if err != nil {
		return err
	}
	if failed := res.Failed(); len(failed) > 0 {
		return fmt.Errorf(i18n.N("%d language was not written: %s", "%d languages were not written: %s", len(failed)), len(failed), strings.Join(failed, ", "))
	}
	logSuccess(i18n.T("Done"))
	return nil
}

func reportResult(res reconcile.Result) {
	if res.BackupDir != "" {
		logDebug(i18n.T("Backups written to %s"), res.BackupDir)
	}
	for _, l := range res.Languages {
		if !l.Written {
			continue
		}
		logSuccess(i18n.T("%s: %d updated, %d added"), l.Lang, l.Stats.Updated, l.Stats.Appended)
		if l.Stats.Failed > 0 {
			logWarning(i18n.T("%s: %d entries could not be merged"), l.Lang, l.Stats.Failed)
		}
	}
}

func printQueue(w io.Writer, s *reconcile.Session) {
	fmt.Fprintln(w, i18n.T("Labels queued for translation:"))
	for _, l := range s.Summary() {
		fmt.Fprintf(w, "  %-10s %d\n", l.Lang, l.Queued)
	}
}

// ---------------------------------------------------------------------------
// status
// ---------------------------------------------------------------------------

func newStatusCmd() *cobra.Command {
	var f runFlags
	cmd := &cobra.Command{
		Use:   "status",
		Short: i18n.T("Show labels, overrides and pending translations per language"),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := resolveOptions(".", cmd.Flags(), &f)
			if err != nil {
				return err
			}
			s, err := reconcile.Load(reconcileOptions(opts))
			if err != nil {
				return err
			}
			printStatus(cmd.OutOrStdout(), s)
			return nil
		},
	}
	addRunFlags(cmd.Flags(), &f)
	return cmd
}

func printStatus(w io.Writer, s *reconcile.Session) {
	fmt.Fprintf(w, "%-10s %-24s %-8s %-10s %-8s\n",
		i18n.T("Lang"), i18n.T("Name"), i18n.T("Labels"), i18n.T("Overrides"), i18n.T("Queued"))
	fmt.Fprintln(w, strings.Repeat("─", 64))

	for _, l := range s.Summary() {
		name := langmeta.NativeName(l.Lang)
		if !l.Existed {
			name += " " + i18n.T("(new)")
		}
		fmt.Fprintf(w, "%-10s %-24s %-8d %-10d %-8d\n", l.Lang, langCell(name, 24), l.Labels, l.Overrides, l.Queued)
	}

	fmt.Fprintln(w, strings.Repeat("─", 64))
	n := len(s.SourceLabels)
	fmt.Fprintf(w, i18n.N("Source language: %s, %d label", "Source language: %s, %d labels", n)+"\n", s.SourceLang, n)
}

// langCell truncates a display name to width runes.
func langCell(name string, width int) string {
	r := []rune(name)
	if len(r) <= width {
		return name
	}
	return string(r[:width-1]) + "…"
}

// ---------------------------------------------------------------------------
// main
// ---------------------------------------------------------------------------

func main() {
	i18n.Init("")
	if err := newRootCmd().Execute(); err != nil {
		logError("%v", err)
		if errors.Is(err, translate.ErrAuth) {
			logInfo(i18n.T("Check the key with: xlfsync auth status"))
		}
		os.Exit(1)
	}
}
