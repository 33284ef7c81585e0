package main

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/openceo2025/iquavis-task-copy/internal/config"
	"github.com/openceo2025/iquavis-task-copy/pkg/iquavis"
	"github.com/openceo2025/iquavis-task-copy/pkg/tasksheet"
)

func newExportCommand() *cobra.Command {
	var (
		projectName string
		include     []string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export project tasks to an Excel workbook",
		Long: `Export fetches tasks for each matching project and writes them to a
workbook with an editable "tasks" sheet, a "project" context sheet, and
a hidden "tasks_original" shadow sheet used to detect edits on import.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, projectName, include)
		},
	}
	cmd.Flags().StringVar(&projectName, "project", "", "project name filter (empty exports every project)")
	cmd.Flags().StringSliceVar(&include, "include", nil, "related resources to embed in task records")
	return cmd
}

func runExport(cmd *cobra.Command, projectName string, include []string) error {
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

	ctx := cmd.Context()
	projects, err := client.ListProjects(ctx, projectName)
	if err != nil {
		return err
	}
	if len(projects) == 0 {
		return errors.New("no projects found")
	}

	for _, project := range projects {
		projectID, name := iquavis.ProjectIdentity(project)
		if projectID == "" {
			logger.Warn("skipping project without id", zap.String("name", name))
			continue
		}
		tasks, err := client.ListTasks(ctx, projectID, iquavis.ListTasksOptions{Include: include})
		if err != nil {
			return err
		}
		records := make([]map[string]any, len(tasks))
		for i, task := range tasks {
			records[i] = task
		}
		path, err := tasksheet.WriteWorkbook(records, name, projectContextRows(project),
			cfg.OutputDir, tasksheet.DefaultExportOptions())
		if err != nil {
			return err
		}
		logger.Info("exported project",
			zap.String("project_id", projectID),
			zap.Int("tasks", len(tasks)),
			zap.String("path", path))
		fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%d tasks)\n", path, len(tasks))
	}
	return nil
}

// projectContextRows renders the project record as key/value rows for
// the context sheet, in stable key order.
func projectContextRows(project iquavis.Record) [][]any {
	flat := tasksheet.Flatten(project)
	keys := make([]string, 0, len(flat))
	for key := range flat {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	rows := make([][]any, 0, len(keys))
	for _, key := range keys {
		rows = append(rows, []any{key, flat[key]})
	}
	return rows
}
