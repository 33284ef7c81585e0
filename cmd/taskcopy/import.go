package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/openceo2025/iquavis-task-copy/internal/config"
	"github.com/openceo2025/iquavis-task-copy/pkg/tasksheet"
)

func newImportCommand() *cobra.Command {
	var filePath string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import edited workbook rows back as task updates",
		Long: `Import detects edited cells in a previously exported workbook, sends
each changed row to iQUAVIS as a partial update, recolors the changed
cells with the outcome, and saves the audited copy next to the input
with a "_result" suffix. The input file is never overwritten.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, filePath)
		},
	}
	cmd.Flags().StringVar(&filePath, "file", "", "workbook to import (.xlsx or .xlsm)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func runImport(cmd *cobra.Command, filePath string) error {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.Debug)
	if err != nil {
		return err
	}
	defer logger.Sync()

	client, err := loginClient(cmd, cfg, logger)
	if err != nil {
		return err
	}

	doc, err := tasksheet.OpenDocument(filePath)
	if err != nil {
		return err
	}
	defer doc.Close()

	opts := tasksheet.DefaultDetectOptions()
	rows, err := tasksheet.Detect(doc, opts)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(rows) == 0 {
		fmt.Fprintf(out, "No rows with edit marks were found in the %q sheet.\n", opts.SheetName)
		if !tasksheet.HasSheet(doc, opts.ShadowSheetName) {
			fmt.Fprintf(out, "If you expected updates to be detected automatically, add a %q sheet or highlight the cells to import.\n",
				opts.ShadowSheetName)
		}
		return nil
	}

	reconciler := tasksheet.Reconciler{
		Updater:     client,
		Logger:      logger,
		CallTimeout: cfg.Timeout,
	}
	report := reconciler.Process(cmd.Context(), rows)

	if err := tasksheet.ApplyOutcomeMarks(doc, opts.SheetName, report.Results, opts.Palette); err != nil {
		return err
	}
	savedPath, err := tasksheet.SaveResult(doc, filePath)
	if err != nil {
		return err
	}
	logger.Info("import finished",
		zap.Int("rows", len(report.Results)),
		zap.Int("succeeded", report.SuccessCount()),
		zap.String("path", savedPath))

	fmt.Fprintln(out)
	fmt.Fprint(out, report.Summary())
	fmt.Fprintf(out, "\nWorkbook saved to: %s\n", savedPath)
	return nil
}
