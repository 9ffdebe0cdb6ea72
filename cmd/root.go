package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "slimbox",
	Short: "slimbox 📦 - shrink inventory attachment images without breaking their database references",
	Long: `slimbox 📦 batch-converts the image attachments of an inventory
installation to WebP. Filenames never change, so the database's path
references stay valid; a metadata batch corrects the stored mime types
afterwards. A verified backup of every original is kept.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Load .env if present (ignore errors).
		_ = godotenv.Load()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})
}
