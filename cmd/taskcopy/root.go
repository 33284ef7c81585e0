package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/openceo2025/iquavis-task-copy/internal/config"
	"github.com/openceo2025/iquavis-task-copy/pkg/iquavis"
)

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "taskcopy",
		Short:        "Copy iQUAVIS tasks to and from Excel workbooks",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().String("base-url", "", "iQUAVIS API base URL")
	cmd.PersistentFlags().Duration("timeout", 0, "HTTP call timeout")
	cmd.PersistentFlags().String("output-dir", "", "directory for exported workbooks")
	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	cmd.PersistentFlags().String("user", "", "iQUAVIS user id (prompted when empty)")
	cmd.PersistentFlags().String("password", "", "iQUAVIS password (prompted when empty)")

	cmd.AddCommand(newExportCommand(), newImportCommand())
	return cmd
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// loginClient builds a client from the run configuration and
// authenticates it, prompting for any credential not supplied by flag.
func loginClient(cmd *cobra.Command, cfg config.Config, logger *zap.Logger) (*iquavis.Client, error) {
	user, _ := cmd.Flags().GetString("user")
	password, _ := cmd.Flags().GetString("password")

	if user == "" || password == "" {
		fmt.Fprintln(cmd.OutOrStdout(), "iQUAVIS login")
	}
	// One shared reader: a fresh bufio.Reader per prompt could buffer
	// ahead and swallow the next line of piped input.
	reader := bufio.NewReader(cmd.InOrStdin())
	var err error
	if user == "" {
		user, err = promptLine(cmd, reader, "User ID: ")
		if err != nil {
			return nil, err
		}
	}
	if password == "" {
		password, err = promptPassword(cmd, reader)
		if err != nil {
			return nil, err
		}
	}

	client := iquavis.NewClient(iquavis.ClientOptions{
		BaseURL:  cfg.BaseURL,
		Timeout:  cfg.Timeout,
		PageSize: cfg.PageSize,
		Logger:   logger,
	})
	if err := client.Login(cmd.Context(), user, password); err != nil {
		return nil, err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Authenticated successfully.")
	return client, nil
}

func promptLine(cmd *cobra.Command, reader *bufio.Reader, prompt string) (string, error) {
	fmt.Fprint(cmd.OutOrStdout(), prompt)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func promptPassword(cmd *cobra.Command, reader *bufio.Reader) (string, error) {
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(cmd.OutOrStdout(), "Password: ")
		secret, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.OutOrStdout())
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(secret), nil
	}
	return promptLine(cmd, reader, "Password: ")
}
