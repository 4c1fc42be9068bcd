// Package main provides the CLI entrypoint for keywrapped.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/keywrapped/keywrapped/internal/capture"
	"github.com/keywrapped/keywrapped/internal/config"
	"github.com/keywrapped/keywrapped/internal/docstore"
	"github.com/keywrapped/keywrapped/internal/health"
	"github.com/keywrapped/keywrapped/internal/insight"
	"github.com/keywrapped/keywrapped/internal/sample"
	"github.com/keywrapped/keywrapped/internal/stats"
	"github.com/keywrapped/keywrapped/internal/statsui"
	"github.com/keywrapped/keywrapped/internal/store"
	"github.com/keywrapped/keywrapped/internal/summary"
	"github.com/keywrapped/keywrapped/internal/trace"
	"github.com/keywrapped/keywrapped/internal/widget"
	"github.com/keywrapped/keywrapped/internal/wordcheck"
	"github.com/keywrapped/keywrapped/internal/wordfreq"
)

const (
	defaultMockSequence = "abc"
	defaultMockInterval = int64(120)
	defaultMockDuration = int64(60)
	defaultWordlistSize = 10000
	defaultSampleYear   = 2023
)

var (
	logSummaryPath string
	logEventsPath  string
	logNoEvents    bool

	mockSequence   string
	mockIntervalMs int64
	mockDurationMs int64
	mockSummary    string

	widgetMode     string
	widgetSummary  string
	widgetProgress string

	insightSummary string
	insightOut     string
	insightSample  bool
	insightFeed    bool
	insightDryRun  bool
	insightModel   string
	insightBaseURL string

	statsSummary string
	statsPlain   bool
	statsSince   string
	statsLast    int
	statsWindow  int

	resetSummary  string
	resetMode     string
	resetProgress string

	sampleOut  string
	sampleYear int

	wordlistLangs string
	wordlistSize  int
	wordlistForce bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "keywrapped",
		Short:         "Keystroke statistics logger and yearly wrapped dashboard",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.AddCommand(newLogCmd())
	rootCmd.AddCommand(newMockCmd())
	rootCmd.AddCommand(newWidgetCmd())
	rootCmd.AddCommand(newInsightCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newResetCmd())
	rootCmd.AddCommand(newSampleCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newWordlistCmd())
	return rootCmd
}

func newLogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Run the live logger over a key-transition stream on stdin",
		Args:  cobra.NoArgs,
		RunE:  runLogCmd,
	}
	cmd.Flags().StringVar(&logSummaryPath, "summary", config.DefaultSummaryPath(), "summary document path")
	cmd.Flags().StringVar(&logEventsPath, "events", config.DefaultEventLogPath(), "raw keystroke JSONL path")
	cmd.Flags().BoolVar(&logNoEvents, "no-events", false, "disable the raw keystroke log")
	return cmd
}

func runLogCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	healthPath := config.DefaultHealthPath()
	if err := health.Write(healthPath, health.StatusStarting, "Logger starting"); err != nil {
		logErrf("failed to write health: %v\n", err)
	}

	traceLog := trace.New(config.DefaultTracePath())

	var eventLog *summary.EventLog
	if !logNoEvents {
		eventLog, err = summary.OpenEventLog(logEventsPath)
		if err != nil {
			return fmt.Errorf("failed to open event log: %w", err)
		}
	}

	st, err := store.Open(config.DefaultSessionDBPath())
	if err != nil {
		return fmt.Errorf("failed to open session archive: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close session archive: %v\n", cerr)
		}
	}()

	accuracy := fileCfg.ResolveAccuracy()
	acc := summary.New(docstore.LoadSummary(logSummaryPath), summary.Options{
		SummaryPath:      logSummaryPath,
		PersistEachEvent: true,
		EventLog:         eventLog,
		Checker:          newChecker(accuracy),
		Accuracy:         accuracy,
		Speed:            fileCfg.ResolveSpeed(),
		Sessions:         st,
		Trace:            traceLog,
	})

	if err := health.Write(healthPath, health.StatusListening, "Logger listening"); err != nil {
		logErrf("failed to write health: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stream := &capture.Stream{Reader: cmd.InOrStdin(), Trace: traceLog}
	runErr := stream.Run(ctx, acc)
	if errors.Is(runErr, context.Canceled) {
		runErr = nil
	}

	if stopErr := acc.Stop(); stopErr != nil {
		logErrf("failed to finalize summary: %v\n", stopErr)
		if runErr == nil {
			runErr = stopErr
		}
	}

	if runErr != nil {
		if err := health.Write(healthPath, health.StatusError, runErr.Error()); err != nil {
			logErrf("failed to write health: %v\n", err)
		}
		return runErr
	}
	if err := health.Write(healthPath, health.StatusStopped, "Logger stopped"); err != nil {
		logErrf("failed to write health: %v\n", err)
	}
	return nil
}

func newMockCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mock",
		Short: "Inject a synthetic key sequence into the summary",
		Args:  cobra.NoArgs,
		RunE:  runMockCmd,
	}
	cmd.Flags().StringVarP(&mockSequence, "sequence", "s", defaultMockSequence, "keys to inject sequentially")
	cmd.Flags().Int64VarP(&mockIntervalMs, "interval", "i", defaultMockInterval, "interval between presses in milliseconds")
	cmd.Flags().Int64VarP(&mockDurationMs, "duration", "d", defaultMockDuration, "duration of each press in milliseconds")
	cmd.Flags().StringVar(&mockSummary, "summary", config.DefaultSummaryPath(), "summary document path")
	return cmd
}

func runMockCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if mockSequence == "" {
		return fmt.Errorf("--sequence must not be empty")
	}

	traceLog := trace.New(config.DefaultTracePath())
	accuracy := fileCfg.ResolveAccuracy()
	acc := summary.New(docstore.LoadSummary(mockSummary), summary.Options{
		SummaryPath: mockSummary,
		Checker:     newChecker(accuracy),
		Accuracy:    accuracy,
		Speed:       fileCfg.ResolveSpeed(),
		Trace:       traceLog,
	})

	script := capture.Script{
		Keys:       capture.ParseSequence(mockSequence),
		IntervalMs: mockIntervalMs,
		DurationMs: mockDurationMs,
	}
	delivered := script.Play(acc, time.Now())
	if err := acc.Stop(); err != nil {
		return fmt.Errorf("failed to finalize summary: %w", err)
	}

	traceLog.Appendf("Mock injected %d transitions ending on %q.", delivered, script.Keys[len(script.Keys)-1].Name)
	s := acc.Summary()
	fmt.Fprintf(cmd.OutOrStdout(), "Injected %d keys: %d events, %d words, accuracy %.1f\n",
		len(script.Keys), s.TotalEvents, s.Words, s.WordAccuracy.Score)
	return nil
}

func newWidgetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "widget",
		Short: "Refresh the widget progress snapshot from the summary",
		Args:  cobra.NoArgs,
		RunE:  runWidgetCmd,
	}
	cmd.Flags().StringVar(&widgetMode, "mode", string(widget.ModeReal), "display mode: real or sample")
	cmd.Flags().StringVar(&widgetSummary, "summary", "", "summary document path (default: per mode)")
	cmd.Flags().StringVar(&widgetProgress, "progress", config.DefaultProgressPath(), "progress snapshot path")
	return cmd
}

func runWidgetCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	mode, err := parseMode(widgetMode)
	if err != nil {
		return err
	}

	settings := fileCfg.ResolveWidget()
	applyStringConfig(cmd, "progress", &widgetProgress, fileCfg.Widget.ProgressPath)
	settings.ProgressPath = widgetProgress

	summaryPath := widgetSummary
	if summaryPath == "" {
		summaryPath = config.DefaultSummaryPath()
		if mode == widget.ModeSample {
			summaryPath = config.DefaultSampleSummaryPath()
		}
	}

	snapshot, err := widget.Refresh(summaryPath, widget.Options{Mode: mode, Settings: settings})
	if err != nil {
		return fmt.Errorf("failed to refresh widget: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Snapshot written: %d keys, speed %.0f/%.0f, handshake %.0f/%.0f\n",
		int64(snapshot.KeyProgress), snapshot.SpeedProgress, snapshot.SpeedTarget,
		snapshot.HandshakeProgress, snapshot.HandshakeTarget)
	return nil
}

func newInsightCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "insight",
		Short: "Generate the typing insight document",
		Args:  cobra.NoArgs,
		RunE:  runInsightCmd,
	}
	cmd.Flags().StringVar(&insightSummary, "summary", "", "summary document path (default: per mode)")
	cmd.Flags().StringVar(&insightOut, "out", config.DefaultInsightPath(), "insight document path")
	cmd.Flags().BoolVar(&insightSample, "sample", false, "use the sample summary and label output accordingly")
	cmd.Flags().BoolVar(&insightFeed, "feed", false, "run one menu-bar feed cycle instead of the full document")
	cmd.Flags().BoolVar(&insightDryRun, "dry-run", false, "skip the model call and use local fallbacks")
	cmd.Flags().StringVar(&insightModel, "model", config.DefaultInsightModel, "chat model name")
	cmd.Flags().StringVar(&insightBaseURL, "base-url", config.DefaultInsightBaseURL, "chat API base URL")
	return cmd
}

func runInsightCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	settings := fileCfg.ResolveInsight(os.Getenv("OPENAI_API_KEY"))
	applyStringConfig(cmd, "model", &insightModel, fileCfg.Insight.Model)
	applyStringConfig(cmd, "base-url", &insightBaseURL, fileCfg.Insight.BaseURL)
	settings.Model = insightModel
	settings.BaseURL = insightBaseURL

	traceLog := trace.New(config.DefaultTracePath())

	var client *insight.Client
	if settings.APIKey != "" && !insightDryRun {
		client = insight.NewClient(settings)
	}

	if insightFeed {
		mode := "real"
		if insightSample {
			mode = "sample"
		}
		wrote, err := insight.RunFeedCycle(cmd.Context(), insight.FeedOptions{
			ProgressPath: fileCfg.ResolveWidget().ProgressPath,
			FeedPath:     config.DefaultFeedPath(),
			StatePath:    config.DefaultFeedStatePath(),
			Mode:         mode,
			DryRun:       insightDryRun,
			Client:       client,
			Trace:        traceLog,
		})
		if err != nil {
			return fmt.Errorf("failed to run feed cycle: %w", err)
		}
		if !wrote {
			fmt.Fprintln(cmd.OutOrStdout(), "No progress snapshot yet; run keywrapped widget first.")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Feed updated.")
		return nil
	}

	summaryPath := insightSummary
	if summaryPath == "" {
		summaryPath = config.DefaultSummaryPath()
		if insightSample {
			summaryPath = config.DefaultSampleSummaryPath()
		}
	}

	doc, err := insight.Generate(cmd.Context(), docstore.LoadSummary(summaryPath), insight.Options{
		Settings:   settings,
		Client:     client,
		SampleMode: insightSample,
		OutputPath: insightOut,
		Trace:      traceLog,
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), doc.AnalysisText)
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show typing stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsSummary, "summary", config.DefaultSummaryPath(), "summary document path")
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print a plain report instead of the dashboard")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD) for sessions")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N sessions")
	cmd.Flags().IntVar(&statsWindow, "window", 5, "moving average window for curves")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	var sinceTime *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	opts := stats.ReportOptions{Since: sinceTime, Last: statsLast, Window: statsWindow}

	st, err := store.Open(config.DefaultSessionDBPath())
	if err != nil {
		return fmt.Errorf("failed to open session archive: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close session archive: %v\n", cerr)
		}
	}()

	if statsPlain {
		report, err := stats.BuildReport(cmd.Context(), statsSummary, st, opts)
		if err != nil {
			return err
		}
		if status := health.Load(config.DefaultHealthPath()); status.Status != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "Logger: %s (%s)\n\n", status.Status, status.Message)
		}
		return stats.RenderReport(cmd.OutOrStdout(), report, 0, false)
	}
	return statsui.Run(statsSummary, st, opts)
}

func newResetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset the summary and widget progress",
		Args:  cobra.NoArgs,
		RunE:  runResetCmd,
	}
	cmd.Flags().StringVar(&resetSummary, "summary", config.DefaultSummaryPath(), "summary document path")
	cmd.Flags().StringVar(&resetProgress, "progress", config.DefaultProgressPath(), "progress snapshot path")
	cmd.Flags().StringVar(&resetMode, "mode", string(widget.ModeReal), "mode label for the reset snapshot")
	return cmd
}

func runResetCmd(cmd *cobra.Command, _ []string) error {
	mode, err := parseMode(resetMode)
	if err != nil {
		return err
	}

	s := docstore.LoadSummary(resetSummary)
	s.Reset()
	if err := docstore.SaveSummary(resetSummary, s); err != nil {
		return fmt.Errorf("failed to reset summary: %w", err)
	}
	if err := widget.ResetProgress(resetProgress, mode, time.Now()); err != nil {
		return err
	}
	if err := health.Write(config.DefaultHealthPath(), health.StatusStopped, "Logger reset"); err != nil {
		logErrf("failed to write health: %v\n", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Reset %s\n", resetSummary)
	return nil
}

func newSampleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Generate the synthetic sample summary",
		Args:  cobra.NoArgs,
		RunE:  runSampleCmd,
	}
	cmd.Flags().StringVar(&sampleOut, "out", config.DefaultSampleSummaryPath(), "output path")
	cmd.Flags().IntVar(&sampleYear, "year", defaultSampleYear, "year the synthetic data covers")
	return cmd
}

func runSampleCmd(cmd *cobra.Command, _ []string) error {
	s := sample.New().Generate(sampleYear)
	if err := docstore.SaveSummary(sampleOut, s); err != nil {
		return fmt.Errorf("failed to write sample summary: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%s)\n", sampleOut, sample.Describe(s))
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newWordlistCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wordlist",
		Short: "Download frequency data and build lexicon files",
		Args:  cobra.NoArgs,
		RunE:  runWordlistCmd,
	}
	cmd.Flags().StringVar(&wordlistLangs, "lang", "en", "comma-separated language codes")
	cmd.Flags().IntVar(&wordlistSize, "size", defaultWordlistSize, "number of words per lexicon")
	cmd.Flags().BoolVar(&wordlistForce, "force", false, "overwrite existing lexicon files")
	return cmd
}

func runWordlistCmd(cmd *cobra.Command, _ []string) error {
	if wordlistSize <= 0 {
		return fmt.Errorf("--size must be greater than 0")
	}
	langs := splitLangs(wordlistLangs)
	if len(langs) == 0 {
		return fmt.Errorf("--lang must not be empty")
	}

	cacheDir := config.DefaultWordfreqCacheDir()
	logErrln("Fetching frequency data...")
	wheel, err := wordfreq.DownloadLatestWheel(cmd.Context(), cacheDir)
	if err != nil {
		return fmt.Errorf("failed to download frequency data: %w", err)
	}
	if wheel.Cached {
		logErrf("Using cached wheel %s\n", wheel.Filename)
	} else {
		logErrf("Downloaded wheel %s\n", wheel.Filename)
	}

	outDir := config.DefaultLexiconDir()
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create lexicon directory: %w", err)
	}
	for _, lang := range langs {
		outPath := config.DefaultLexiconPath(lang)
		if !wordlistForce {
			if _, err := os.Stat(outPath); err == nil {
				return fmt.Errorf("lexicon already exists: %s (use --force to overwrite)", outPath)
			} else if !os.IsNotExist(err) {
				return fmt.Errorf("failed to stat lexicon: %w", err)
			}
		}
		words, err := wordfreq.ExtractWordlist(wheel.Path, lang, "large", wordlistSize)
		if err != nil {
			return fmt.Errorf("failed to extract %s lexicon: %w", lang, err)
		}
		if err := writeWordList(outPath, words); err != nil {
			return fmt.Errorf("failed to write %s: %w", outPath, err)
		}
		logErrf("Wrote %s\n", outPath)
	}
	return nil
}

// newChecker builds the word checker from the accuracy settings, attaching
// the frequency oracle when a cached wheel exists and any user lexicon
// files found on disk. Both are optional.
func newChecker(accuracy config.AccuracySettings) *wordcheck.Checker {
	opts := wordcheck.Options{
		Threshold:  accuracy.Threshold,
		MinLength:  accuracy.MinWordLength,
		Languages:  accuracy.Languages,
		ExtraWords: accuracy.ExtraWords,
	}

	lexicons := map[string][]string{}
	for _, lang := range accuracy.Languages {
		words, err := wordcheck.LoadLexiconFile(config.DefaultLexiconPath(lang))
		if err != nil {
			continue
		}
		lexicons[lang] = words
	}
	if len(lexicons) > 0 {
		opts.Lexicons = lexicons
	}

	wheel, err := wordfreq.FindCachedWheel(config.DefaultWordfreqCacheDir())
	if err == nil && wheel.Path != "" {
		oracle, err := wordfreq.NewOracle(wheel.Path, accuracy.Languages, "large")
		if err == nil {
			opts.Oracle = oracle
		} else {
			logErrf("frequency oracle unavailable: %v\n", err)
		}
	}
	return wordcheck.New(opts)
}

func parseMode(raw string) (widget.Mode, error) {
	switch raw {
	case string(widget.ModeReal):
		return widget.ModeReal, nil
	case string(widget.ModeSample):
		return widget.ModeSample, nil
	}
	return "", fmt.Errorf("invalid --mode %q (use real or sample)", raw)
}

func splitLangs(raw string) []string {
	parts := strings.Split(raw, ",")
	langs := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(strings.ToLower(part))
		if part != "" {
			langs = append(langs, part)
		}
	}
	return langs
}

func writeWordList(path string, words []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create lexicon dir: %w", err)
	}
	tmpFile, err := os.CreateTemp(filepath.Dir(path), "lexicon-*.txt")
	if err != nil {
		return fmt.Errorf("failed to create temp lexicon: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	writer := bufio.NewWriter(tmpFile)
	for _, word := range words {
		if _, err := fmt.Fprintln(writer, word); err != nil {
			return fmt.Errorf("failed to write lexicon: %w", err)
		}
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush lexicon: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close lexicon: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to write lexicon: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# keywrapped configuration
# Uncomment a value to enable it. CLI flags override config values.

[word_accuracy]
# threshold = %.1f          # Minimum zipf frequency for a plausible word
# min-word-length = %d      # Words shorter than this are not scored
# correct-points = %.1f     # Points per plausible word
# incorrect-points = %.1f   # Points per implausible word
# target-score = %.1f       # Accuracy score ceiling
# extra-words = []          # Additional words treated as plausible
# languages = ["en"]        # Lexicon and oracle languages

[speed]
# baseline-interval-ms = %d   # Baseline keystroke interval
# interval-pct-threshold = %.0f  # Qualifying interval as a percent of baseline
# accuracy-pct-threshold = %.0f  # Session word accuracy needed for an award
# session-gap-ms = %d         # Gap that commits a session
# target-sessions = %d        # Yearly session target

[widget]
# key-target = %.0f           # Keystroke goal shown by the widget
# sample-total-ratio = %.2f   # Sample-mode keystroke rescale
# sample-avg-interval = %.0f  # Sample-mode interval override
# handshake-speed-gate = %.0f # Interval gate for handshake credit
# progress-path = ""          # Override the progress snapshot path

[insight]
# model = %q       # Chat model
# api-key = ""     # Falls back to OPENAI_API_KEY
# base-url = %q
# temperature = %.1f
# timeout-sec = %d
`,
		config.DefaultAccuracyThreshold,
		config.DefaultMinWordLength,
		config.DefaultCorrectPoints,
		config.DefaultIncorrectPoints,
		config.DefaultTargetScore,
		config.DefaultBaselineIntervalMs,
		config.DefaultIntervalPctThreshold,
		config.DefaultAccuracyPctThreshold,
		config.DefaultSessionGapMs,
		config.DefaultTargetSessions,
		config.DefaultKeyTarget,
		config.DefaultSampleTotalRatio,
		config.DefaultSampleAvgInterval,
		config.DefaultHandshakeSpeedGate,
		config.DefaultInsightModel,
		config.DefaultInsightBaseURL,
		config.DefaultInsightTemp,
		int(config.DefaultInsightTimeout/time.Second),
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
