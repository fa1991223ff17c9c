package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"path"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/a2companion/internal/validator"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the catalog content tree",
	Long: `Checks every XML document under the catalog directory: well-formedness,
required attributes, numeric fields, identifier formats and uniqueness.
Stops at the first violation and exits non-zero.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		root, _ := cmd.Flags().GetString("root")
		if root == "" {
			root = filepath.Join(cfg.Content.Root, filepath.FromSlash(path.Dir(cfg.Content.IndexPath)))
		}
		opts := []validator.Option{validator.WithLogger(logger.Named("validator"))}

		watch, _ := cmd.Flags().GetBool("watch")
		if !watch {
			report, err := validator.Run(cmd.Context(), root, opts...)
			if err != nil {
				return fmt.Errorf("validation failed: %w", err)
			}
			printReport(report)
			return nil
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		logger.Info("watching catalog", zap.String("root", root))
		return validator.Watch(ctx, root, validator.DefaultDebounce, func(report *validator.Report, err error) {
			if err != nil {
				fmt.Fprintln(os.Stderr, "validation failed:", err)
				return
			}
			printReport(report)
		}, opts...)
	},
}

func printReport(r *validator.Report) {
	fmt.Printf("Catalog OK: %d files, %d events, %d tasks, %d tools\n",
		r.Files, r.Events, r.Tasks, r.Tools)
}

func init() {
	validateCmd.Flags().String("root", "", "Catalog directory (default: directory of the index under --content-root)")
	validateCmd.Flags().Bool("watch", false, "Re-validate whenever files change")
}
