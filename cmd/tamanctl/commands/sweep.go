package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"taman-digital/internal/app"
)

// sweepCmd purges expired trash once
var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Purge trashed posts past their retention period",
	Long: `Permanently remove every post that has been in the trash for longer
than TRASH_RETENTION.

Examples:
  tamanctl sweep                 # Purge expired trash
  TRASH_RETENTION=168h tamanctl sweep`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app.App) error {
			purged, err := a.Content.SweepTrash(cmd.Context())
			if err != nil {
				return fmt.Errorf("sweep trash: %w", err)
			}
			if jsonOutput {
				return json.NewEncoder(os.Stdout).Encode(map[string]int{"purged": purged})
			}
			fmt.Printf("Purged %d expired post(s)\n", purged)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(sweepCmd)
}
