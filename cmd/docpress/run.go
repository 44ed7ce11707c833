// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/docpress/internal/batch"
	"github.com/pdiddy/docpress/internal/engine"
	"github.com/pdiddy/docpress/internal/history"
	"github.com/pdiddy/docpress/pkg/types"
)

const lockFileName = ".docpress.lock"

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Convert every eligible document under the input root",
	Long: `Run discovers source documents under the input root (skipping a
top-level README), mirrors their relative paths into the output root
with the target extension, and converts each through the engine binary.

The exit status is zero only when every attempted conversion succeeded.
A README.<ext> directly under the input root is always skipped; the same
name in a subdirectory converts normally. Traversal order is
unspecified.`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().String("input", ".", "input root scanned for source documents")
	runCmd.Flags().String("output", "converted", "output root the input tree is mirrored into")
	runCmd.Flags().String("source-ext", ".md", "source file extension (case-sensitive)")
	runCmd.Flags().String("target-ext", ".pdf", "destination file extension")
	runCmd.Flags().StringSlice("exclude", nil, "glob patterns (relative paths) to skip")
	runCmd.Flags().Bool("skip-hidden", false, "prune dot-prefixed directories")
	runCmd.Flags().String("engine", "pandoc", "conversion engine binary")
	runCmd.Flags().StringSlice("engine-arg", nil, "extra argument passed to the engine (repeatable)")
	runCmd.Flags().Duration("timeout", 0, "per-document conversion timeout (0 = none)")
	runCmd.Flags().Int("workers", 1, "concurrent engine invocations")
	runCmd.Flags().Bool("skip-existing", false, "skip documents whose destination already exists")
	runCmd.Flags().Bool("dry-run", false, "plan the batch without converting")
	runCmd.Flags().String("report", "", "write the run report as YAML to this path")
	runCmd.Flags().String("history", "", "record the run in this SQLite history database")

	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg := runConfig(cmd)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// One run per output tree: a second invocation against the same
	// output root fails fast instead of interleaving conversions. A dry
	// run touches nothing, so it skips the lock.
	if !cfg.Run.DryRun {
		if err := os.MkdirAll(cfg.Run.OutputRoot, 0o755); err != nil {
			return fmt.Errorf("creating output root: %w", err)
		}
		lock := flock.New(filepath.Join(cfg.Run.OutputRoot, lockFileName))
		locked, err := lock.TryLock()
		if err != nil {
			return fmt.Errorf("locking output root: %w", err)
		}
		if !locked {
			return fmt.Errorf("output root %s is in use by another docpress run", cfg.Run.OutputRoot)
		}
		defer lock.Unlock()
	}

	eng := engine.NewCLI(
		engine.WithBinary(cfg.Engine.Binary),
		engine.WithArgs(cfg.Engine.Args...),
		engine.WithTimeout(cfg.Engine.Timeout),
	)

	runner := batch.New(eng, cfg.Discovery, cfg.Run, os.Stdout)
	report, err := runner.Run(ctx)
	if err != nil {
		return err
	}

	if reportPath, _ := cmd.Flags().GetString("report"); reportPath != "" {
		if err := batch.WriteReport(report, reportPath); err != nil {
			return err
		}
	}

	if cfg.History.Path != "" {
		store, err := history.NewStore(cfg.History.Path)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.Record(ctx, report); err != nil {
			return err
		}
	}

	if report.HasFailures() {
		return fmt.Errorf("%d of %d conversion(s) failed", report.Failed, report.Total)
	}
	return nil
}

// runConfig assembles the effective configuration: flag when set on the
// command line, otherwise config-file/env value, otherwise flag default.
func runConfig(cmd *cobra.Command) types.Config {
	return types.Config{
		Discovery: types.DiscoveryConfig{
			InputRoot:  stringSetting(cmd, "input", "discovery.input_root"),
			SourceExt:  stringSetting(cmd, "source-ext", "discovery.source_ext"),
			Exclude:    sliceSetting(cmd, "exclude", "discovery.exclude"),
			SkipHidden: boolSetting(cmd, "skip-hidden", "discovery.skip_hidden"),
		},
		Engine: types.EngineConfig{
			Binary:  stringSetting(cmd, "engine", "engine.binary"),
			Args:    sliceSetting(cmd, "engine-arg", "engine.args"),
			Timeout: durationSetting(cmd, "timeout", "engine.timeout"),
		},
		Run: types.RunConfig{
			OutputRoot:   stringSetting(cmd, "output", "run.output_root"),
			TargetExt:    stringSetting(cmd, "target-ext", "run.target_ext"),
			Workers:      intSetting(cmd, "workers", "run.workers"),
			SkipExisting: boolSetting(cmd, "skip-existing", "run.skip_existing"),
			DryRun:       boolSetting(cmd, "dry-run", "run.dry_run"),
		},
		History: types.HistoryConfig{
			Path: stringSetting(cmd, "history", "history.path"),
		},
	}
}

func stringSetting(cmd *cobra.Command, flag, key string) string {
	if !cmd.Flags().Changed(flag) && viper.IsSet(key) {
		return viper.GetString(key)
	}
	v, _ := cmd.Flags().GetString(flag)
	return v
}

func sliceSetting(cmd *cobra.Command, flag, key string) []string {
	if !cmd.Flags().Changed(flag) && viper.IsSet(key) {
		return viper.GetStringSlice(key)
	}
	v, _ := cmd.Flags().GetStringSlice(flag)
	return v
}

func boolSetting(cmd *cobra.Command, flag, key string) bool {
	if !cmd.Flags().Changed(flag) && viper.IsSet(key) {
		return viper.GetBool(key)
	}
	v, _ := cmd.Flags().GetBool(flag)
	return v
}

func intSetting(cmd *cobra.Command, flag, key string) int {
	if !cmd.Flags().Changed(flag) && viper.IsSet(key) {
		return viper.GetInt(key)
	}
	v, _ := cmd.Flags().GetInt(flag)
	return v
}

func durationSetting(cmd *cobra.Command, flag, key string) time.Duration {
	if !cmd.Flags().Changed(flag) && viper.IsSet(key) {
		return viper.GetDuration(key)
	}
	v, _ := cmd.Flags().GetDuration(flag)
	return v
}
