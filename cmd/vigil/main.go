// cmd/vigil/main.go
package main

import (
	"crypto/sha256"
	"fmt"
	"hash"
	"os"

	"vigil/internal/checker"
	"vigil/internal/config"
	"vigil/internal/errors"
	"vigil/internal/logging"
	"vigil/internal/scan"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

const (
	exitClean   = 0
	exitChanges = 1
	exitFailure = 2
)

var (
	cfgPath      string
	baselinePath string
	historyPath  string
	compressFlag bool
	workersFlag  int

	changesFound bool
)

var rootCmd = &cobra.Command{
	Use:   "vigil",
	Short: "Vigil detects unauthorized or accidental file modification",
	Long: `Vigil records a baseline of content digests for every file under a
directory tree and, on demand, reports which files were modified, added
or removed since that baseline was taken.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config file (default vigil.json)")
	rootCmd.PersistentFlags().StringVarP(&baselinePath, "baseline", "b", "", "baseline file (default baseline.json)")
	rootCmd.PersistentFlags().StringVar(&historyPath, "history", "", "check-history database directory")
	rootCmd.PersistentFlags().IntVar(&workersFlag, "workers", 0, "digest workers (default: number of CPUs)")

	var createCmd = &cobra.Command{
		Use:   "create [root]",
		Short: "Scan a directory tree and record it as the new baseline",
		Long: `Scans every regular file under root, computes content digests and
writes the result as the baseline. Any previous baseline at the same
path is replaced wholesale.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, cfg, err := initChecker(args[0])
			if err != nil {
				return err
			}
			defer c.Close()

			snap, skipped, err := c.Create(args[0], resolveBaseline(cfg))
			if err != nil {
				return err
			}

			fmt.Printf("Baseline created for %s with %d files\n", args[0], len(snap))
			printSkipped(skipped)
			return nil
		},
	}
	createCmd.Flags().BoolVar(&compressFlag, "compress", false, "write the baseline zstd-compressed")

	var checkCmd = &cobra.Command{
		Use:   "check [root]",
		Short: "Compare a directory tree against the recorded baseline",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, cfg, err := initChecker(args[0])
			if err != nil {
				return err
			}
			defer c.Close()

			result, err := c.Check(args[0], resolveBaseline(cfg))
			if err != nil {
				if errors.KindOf(err) == errors.KindBaselineNotFound {
					return fmt.Errorf("%w\nrun \"vigil create %s\" to record a baseline first", err, args[0])
				}
				return err
			}

			printReport(result)
			if !result.Report.Clean() {
				changesFound = true
			}
			return nil
		},
		Args: cobra.ExactArgs(1),
	}

	var logCmd = &cobra.Command{
		Use:   "log",
		Short: "List past integrity checks",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := initChecker("")
			if err != nil {
				return err
			}
			defer c.Close()

			if c.History == nil {
				return fmt.Errorf("no history database configured (use --history or the config file)")
			}

			records, err := c.History.List()
			if err != nil {
				return fmt.Errorf("listing check history: %w", err)
			}

			if len(records) == 0 {
				fmt.Println("No checks recorded")
				return nil
			}

			for _, r := range records {
				status := color.GreenString("clean")
				if !r.Clean() {
					status = color.RedString("%d modified, %d added, %d removed",
						r.Modified, r.Added, r.Removed)
				}
				fmt.Printf("%s  %s  %s  %s\n",
					r.ID[:8],
					r.CheckedAt.Format("2006-01-02 15:04:05"),
					r.Root,
					status,
				)
			}
			return nil
		},
	}

	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(logCmd)
}

func initChecker(root string) (*checker.Checker, *config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	baseLogger, err := logging.NewLogger(cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("initializing logger: %w", err)
	}

	logger := baseLogger.Logger
	if root != "" {
		logger = baseLogger.WithRoot(root)
	}

	newHash, err := hashFor(cfg.Hash)
	if err != nil {
		return nil, nil, err
	}

	workers := cfg.Scan.Workers
	if workersFlag > 0 {
		workers = workersFlag
	}

	hist := cfg.History.Path
	if historyPath != "" {
		hist = historyPath
	}

	c, err := checker.New(checker.Options{
		Scan: scan.Options{
			NewHash:  newHash,
			Workers:  workers,
			Excludes: cfg.Scan.Excludes,
			Logger:   logger,
		},
		Compress:    compressFlag || cfg.Baseline.Compress,
		HistoryPath: hist,
		Logger:      logger,
	})
	if err != nil {
		return nil, nil, err
	}
	return c, cfg, nil
}

func resolveBaseline(cfg *config.Config) string {
	if baselinePath != "" {
		return baselinePath
	}
	return cfg.Baseline.Path
}

func hashFor(name string) (func() hash.Hash, error) {
	switch name {
	case "", "sha256":
		return sha256.New, nil
	default:
		return nil, fmt.Errorf("unsupported hash algorithm %q", name)
	}
}

func printReport(result *checker.Result) {
	report := result.Report

	if report.Clean() {
		fmt.Printf("All %d files match the baseline. No changes detected.\n", len(report.Unchanged))
		printSkipped(result.Skipped)
		return
	}

	// Use colors
	red := color.New(color.FgRed).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	fmt.Printf("\nChanges against baseline (%d files checked):\n\n", report.Total())

	if len(report.Modified) > 0 {
		fmt.Println("Modified files:")
		for _, p := range report.Modified {
			fmt.Printf("\t%s %s\n", yellow("M"), p)
		}
		fmt.Println()
	}

	if len(report.Added) > 0 {
		fmt.Println("New files (not in baseline):")
		for _, p := range report.Added {
			fmt.Printf("\t%s %s\n", green("+"), p)
		}
		fmt.Println()
	}

	if len(report.Removed) > 0 {
		fmt.Println("Missing files (in baseline but not found):")
		for _, p := range report.Removed {
			fmt.Printf("\t%s %s\n", red("-"), p)
		}
		fmt.Println()
	}

	printSkipped(result.Skipped)
}

func printSkipped(skipped []scan.SkippedEntry) {
	if len(skipped) == 0 {
		return
	}
	fmt.Println("Skipped entries:")
	for _, s := range skipped {
		fmt.Printf("\t? %s (%s)\n", s.Path, s.Reason)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitFailure)
	}
	if changesFound {
		os.Exit(exitChanges)
	}
	os.Exit(exitClean)
}
