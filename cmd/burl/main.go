package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jward/burl"
	"github.com/jward/burl/internal/watch"
)

var (
	flagFormat string
	flagDB     string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "burl",
	Short:         "Find tagged annotations in source comments",
	Long:          "Burl scans source files with tree-sitter, extracts comments, and reports annotations tagged with configured keywords (todo, fixme, note, ...), optionally restricted to lines changed in the git working tree.",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return validateFormat(flagFormat)
	},
	// No Run — prints help by default.
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagFormat, "format", "text", "output format: text|json")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "SQLite cache path (empty disables caching)")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(watchCmd)
}

var (
	flagTags      string
	flagDiffOnly  bool
	flagLanguages string
	flagSerial    bool
	flagFilter    string
)

var scanCmd = &cobra.Command{
	Use:   "scan [path]",
	Short: "Scan a file or directory for tagged annotations",
	Long:  "Parses supported source files with tree-sitter and reports every comment containing one of the configured tags. A directory is scanned recursively; unsupported files are skipped. A single file with an unsupported extension is an error.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runScan,
}

var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Watch a directory and rescan files as they change",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runWatch,
}

func init() {
	for _, cmd := range []*cobra.Command{scanCmd, watchCmd} {
		cmd.Flags().StringVar(&flagTags, "tags", strings.Join(burl.DefaultTags, ","), "comma-separated tag keywords to match (case-insensitive)")
		cmd.Flags().BoolVar(&flagDiffOnly, "diff-only", false, "restrict to lines added or modified in the git working tree")
		cmd.Flags().StringVar(&flagLanguages, "languages", "", "comma-separated language filter (e.g. go,python)")
		cmd.Flags().StringVar(&flagFilter, "filter", "", "Risor expression over file/line/tag/text; falsy drops the annotation")
	}
	scanCmd.Flags().BoolVar(&flagSerial, "serial", false, "disable the parallel scan worker pool")
}

// engineOptions translates flags into Engine options.
func engineOptions() []burl.Option {
	opts := []burl.Option{
		burl.WithTags(splitList(flagTags)...),
		burl.WithDiffOnly(flagDiffOnly),
		burl.WithParallel(!flagSerial),
	}
	if flagLanguages != "" {
		opts = append(opts, burl.WithLanguages(splitList(flagLanguages)...))
	}
	if flagDB != "" {
		opts = append(opts, burl.WithCache(flagDB))
	}
	if flagFilter != "" {
		opts = append(opts, burl.WithFilter(flagFilter))
	}
	return opts
}

func runScan(cmd *cobra.Command, args []string) error {
	start := time.Now()

	target, isDir, err := resolveTarget(args)
	if err != nil {
		return err
	}

	engine, err := burl.New(engineOptions()...)
	if err != nil {
		return err
	}
	defer engine.Close()

	ctx := context.Background()

	var annotations []burl.Annotation
	var scanErr error
	if isDir {
		annotations, scanErr = engine.ScanDirectory(ctx, target)
	} else {
		annotations, scanErr = engine.ScanFile(ctx, target)
	}

	// Partial results still print; per-file failures surface afterwards.
	if err := outputAnnotations(flagFormat, annotations); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Found %d annotation(s) in %s\n",
		len(annotations), time.Since(start).Round(time.Millisecond))

	return scanErr
}

func runWatch(cmd *cobra.Command, args []string) error {
	target, isDir, err := resolveTarget(args)
	if err != nil {
		return err
	}
	if !isDir {
		return fmt.Errorf("watch requires a directory: %s", target)
	}

	engine, err := burl.New(engineOptions()...)
	if err != nil {
		return err
	}
	defer engine.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initial full pass, then rescan individual files as they change.
	annotations, err := engine.ScanDirectory(ctx, target)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", err)
	}
	if err := outputAnnotations(flagFormat, annotations); err != nil {
		return err
	}

	watcher, err := watch.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Stop()

	err = watcher.Watch(target, func(path string) {
		anns, err := engine.ScanFile(ctx, path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: rescan %s: %s\n", path, err)
			return
		}
		if err := outputAnnotations(flagFormat, anns); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %s\n", err)
		}
	})
	if err != nil {
		return fmt.Errorf("watching %s: %w", target, err)
	}

	fmt.Fprintf(os.Stderr, "Watching %s (Ctrl-C to stop)\n", target)
	<-ctx.Done()
	return nil
}

// resolveTarget returns the absolute path of the file or directory to scan.
func resolveTarget(args []string) (path string, isDir bool, err error) {
	target := "."
	if len(args) > 0 {
		target = args[0]
	}
	abs, err := filepath.Abs(target)
	if err != nil {
		return "", false, fmt.Errorf("resolving path %q: %w", target, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", false, fmt.Errorf("path not found: %s", abs)
	}
	return abs, info.IsDir(), nil
}

// splitList splits a comma-separated flag value, trimming whitespace and
// dropping empty items.
func splitList(s string) []string {
	var items []string
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}
