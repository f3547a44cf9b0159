package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/continuous-intelligence/cIV/internal/cms"
	"github.com/continuous-intelligence/cIV/internal/seed"
)

var seedOpts seed.Options

var seedCmd = &cobra.Command{
	Use:   "seed <file.yaml>",
	Short: "Validate and write documents from a YAML file",
	Long: `Seed reads a YAML file with a top-level "documents" list, validates every
document against the content schema and writes them in one transaction using
the authenticated client. Documents without an _id are assigned one.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open seed file: %w", err)
		}
		defer func() { _ = f.Close() }()

		cfg := cmsConfig()
		if err := cfg.Validate(); err != nil {
			return err
		}
		clients := cms.NewClients(cfg)

		res, n, err := seed.Run(cmd.Context(), clients.Write, f, seedOpts)
		if err != nil {
			return err
		}
		if seedOpts.DryRun {
			slog.Info("Seed file is valid", slog.Int("documents", n))
			return nil
		}
		slog.Info("Seeded documents", slog.Int("documents", n), slog.String("transaction_id", res.TransactionID))
		return nil
	},
}

func init() {
	seedCmd.Flags().BoolVar(&seedOpts.DryRun, "dry-run", false, "validate only, write nothing")
	seedCmd.Flags().BoolVar(&seedOpts.KeepExisting, "keep-existing", false, "skip documents whose _id already exists")
	rootCmd.AddCommand(seedCmd)
}
