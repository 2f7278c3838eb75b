// hrimportctl drives an employee import from the command line, against the
// same backend client and pipeline the server uses. Useful for trying a file
// before handing it to the HTTP surface.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"hrimport/internal/domain/imports"
	"hrimport/internal/hrapi"
)

var version = "dev"

func main() {
	root := &cobra.Command{
		Use:           "hrimportctl",
		Short:         "Bulk employee import tooling",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newVersionCmd(), newTemplateCmd(), newRunCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}

func newTemplateCmd() *cobra.Command {
	var mode string
	var out string

	cmd := &cobra.Command{
		Use:   "template",
		Short: "Write a starter CSV template for an import mode",
		RunE: func(cmd *cobra.Command, args []string) error {
			filename, contents, err := imports.Template(imports.Mode(mode))
			if err != nil {
				return err
			}
			if out == "" {
				out = filename
			}
			if err := os.WriteFile(out, contents, 0o644); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "wrote", out)
			return nil
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "new", `import mode: "new" or "existing"`)
	cmd.Flags().StringVar(&out, "out", "", "output path (defaults to the template's own filename)")
	return cmd
}

func newRunCmd() *cobra.Command {
	var (
		mode    string
		baseURL string
		token   string
		orgID   string
		timeout time.Duration
		confirm bool
	)

	cmd := &cobra.Command{
		Use:   "run <file>",
		Short: "Preview an import file and optionally submit it",
		Long: "Parses the given CSV or XLSX file, resolves it against the backend's " +
			"reference data and prints a preview. With --confirm the rows are submitted.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			importMode := imports.Mode(mode)
			if !importMode.Valid() {
				return fmt.Errorf("invalid mode %q", mode)
			}
			if baseURL == "" {
				baseURL = os.Getenv("HR_API_BASE_URL")
			}
			if token == "" {
				token = os.Getenv("HR_API_TOKEN")
			}
			if orgID == "" {
				orgID = os.Getenv("ORGANIZATION_ID")
			}
			if baseURL == "" {
				return fmt.Errorf("--base-url or HR_API_BASE_URL is required")
			}

			contents, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			backend := hrapi.New(baseURL, token, timeout)
			coordinator := imports.NewCoordinator(backend, orgID)
			if err := coordinator.Load(ctx, importMode, args[0], contents); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			rows := coordinator.Rows()
			fmt.Fprintf(out, "parsed %d rows from %s\n", len(rows), args[0])
			for _, warning := range coordinator.Warnings() {
				fmt.Fprintf(out, "warning: row %d (%s): %s\n", warning.RowNumber, warning.Field, warning.Message)
			}

			if !confirm {
				fmt.Fprintln(out, "preview only; pass --confirm to submit")
				return nil
			}

			outcome, err := coordinator.Confirm(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "submitted: %d succeeded, %d failed\n", outcome.SuccessCount, outcome.FailureCount)
			for _, message := range outcome.FailureMessages {
				fmt.Fprintln(out, "failure:", message)
			}
			if outcome.FailureCount > len(outcome.FailureMessages) {
				fmt.Fprintf(out, "and %d more failures\n", outcome.FailureCount-len(outcome.FailureMessages))
			}
			if outcome.FailureCount > 0 {
				os.Exit(2)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "new", `import mode: "new" or "existing"`)
	cmd.Flags().StringVar(&baseURL, "base-url", "", "HR backend base URL (defaults to HR_API_BASE_URL)")
	cmd.Flags().StringVar(&token, "token", "", "HR backend bearer token (defaults to HR_API_TOKEN)")
	cmd.Flags().StringVar(&orgID, "org", "", "organization id stamped on created employees (defaults to ORGANIZATION_ID)")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "per-request timeout")
	cmd.Flags().BoolVar(&confirm, "confirm", false, "submit after previewing")
	return cmd
}
