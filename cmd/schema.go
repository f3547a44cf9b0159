package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/continuous-intelligence/cIV/internal/schema"
)

var schemaCmd = &cobra.Command{
	Use:   "schema [type...]",
	Short: "Print the content schema as YAML",
	Long: `Print the document types editors can create, with their fields and
validation rules. With arguments, only the named types are printed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return schema.WriteYAML(os.Stdout, args...)
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}
