package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/caseflow-app/client-aggregator/internal/common"
	"github.com/caseflow-app/client-aggregator/internal/repository"
	"github.com/caseflow-app/client-aggregator/internal/services/importer"
)

var configPath string

func main() {
	// Structured logger that outputs messages with variables but no time/level
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey || a.Key == slog.LevelKey {
				return slog.Attr{}
			}
			return a
		},
	}))
	slog.SetDefault(logger)

	rootCmd := &cobra.Command{
		Use:   "importctl",
		Short: "Bulk-import client document extraction results",
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file (env vars otherwise)")

	rootCmd.AddCommand(runCmd(logger))
	rootCmd.AddCommand(resumeCmd(logger))
	rootCmd.AddCommand(statusCmd(logger))
	rootCmd.AddCommand(listCmd(logger))
	rootCmd.AddCommand(exportCmd(logger))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*common.Config, error) {
	if configPath != "" {
		return common.LoadConfigFile(configPath)
	}
	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newService(ctx context.Context, logger *slog.Logger) (*importer.Service, *common.Config, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	store, closeStore, err := repository.OpenStore(ctx, cfg.Store, logger)
	if err != nil {
		return nil, nil, nil, err
	}
	return importer.NewService(store, logger), cfg, closeStore, nil
}

func runCmd(logger *slog.Logger) *cobra.Command {
	var workers int
	var includeHidden bool

	cmd := &cobra.Command{
		Use:   "run [root]",
		Short: "Import every extraction result under a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, cfg, closeStore, err := newService(ctx, logger)
			if err != nil {
				return err
			}
			defer closeStore()

			res, err := svc.Run(ctx, importer.RunRequest{
				RootPath:        args[0],
				Workers:         workers,
				SkipHidden:      !includeHidden,
				DefaultCurrency: cfg.Import.DefaultCurrency,
			})
			if err != nil {
				return err
			}
			printRun(res)
			return nil
		},
	}
	cmd.Flags().IntVar(&workers, "workers", 4, "concurrent ingest workers")
	cmd.Flags().BoolVar(&includeHidden, "include-hidden", false, "do not skip hidden files and directories")
	return cmd
}

func resumeCmd(logger *slog.Logger) *cobra.Command {
	var workers int

	cmd := &cobra.Command{
		Use:   "resume [session-id] [root]",
		Short: "Resume an interrupted import (already-processed files are skipped)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, cfg, closeStore, err := newService(ctx, logger)
			if err != nil {
				return err
			}
			defer closeStore()

			res, err := svc.Resume(ctx, args[0], importer.RunRequest{
				RootPath:        args[1],
				Workers:         workers,
				SkipHidden:      true,
				DefaultCurrency: cfg.Import.DefaultCurrency,
			})
			if err != nil {
				return err
			}
			printRun(res)
			return nil
		},
	}
	cmd.Flags().IntVar(&workers, "workers", 4, "concurrent ingest workers")
	return cmd
}

func statusCmd(logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "status [session-id]",
		Short: "Show the stored state of a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, _, closeStore, err := newService(ctx, logger)
			if err != nil {
				return err
			}
			defer closeStore()

			state, err := svc.SessionState(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("session  %s\nstatus   %s\ncreated  %s\nfiles    %d processed, %d errored\n",
				state.ID, state.Status, state.CreatedAt.Format("2006-01-02 15:04:05"), state.FilesProcessed, state.FilesErrored)
			for key, p := range state.Profiles {
				fmt.Printf("client   %-24s %d documents, %d salary entries, %d conflicts\n",
					key, p.Documents, len(p.Salaries), len(p.Conflicts))
			}
			return nil
		},
	}
}

func listCmd(logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, _, closeStore, err := newService(ctx, logger)
			if err != nil {
				return err
			}
			defer closeStore()

			ids, err := svc.ListSessions(ctx)
			if err != nil {
				return err
			}
			for _, id := range ids {
				fmt.Println(id)
			}
			return nil
		},
	}
}

func exportCmd(logger *slog.Logger) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export [session-id]",
		Short: "Write the XLSX audit report for a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, _, closeStore, err := newService(ctx, logger)
			if err != nil {
				return err
			}
			defer closeStore()

			b, err := svc.ExportReport(ctx, args[0])
			if err != nil {
				return err
			}
			if out == "" {
				out = args[0] + ".xlsx"
			}
			if err := os.WriteFile(out, b, 0o644); err != nil {
				return fmt.Errorf("write report: %w", err)
			}
			logger.Info("report written", "path", out, "bytes", len(b))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output path (default <session-id>.xlsx)")
	return cmd
}

func printRun(res *importer.RunResult) {
	fmt.Printf("session   %s\nscanned   %d\nmatched   %d\nsucceeded %d\nfailed    %d\nclients   %d\n",
		res.SessionID, res.Statistics.Scanned, res.Statistics.Matched,
		res.Statistics.Succeeded, res.Statistics.Failed, len(res.Profiles))
	for key, p := range res.Profiles {
		fmt.Printf("  %-24s %d documents, %d salary entries\n", key, p.Documents, len(p.Salaries))
	}
}
