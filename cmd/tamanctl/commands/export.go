package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"taman-digital/internal/app"
	"taman-digital/internal/domain"
)

var (
	// Export flags
	outputPath string
	asUser     string
)

// exportCmd writes a post as Markdown
var exportCmd = &cobra.Command{
	Use:   "export <post-id>",
	Short: "Write a post as a Markdown document",
	Long: `Render a post as Markdown with its title, date, tags and body.

Without --as only published posts can be exported. With --as the post is
read as that author, so drafts and trashed posts are visible to their owner.

Examples:
  tamanctl export 1a2b3c             # Write to the suggested file name
  tamanctl export 1a2b3c -o -        # Write to stdout
  tamanctl export 1a2b3c --as sari   # Export one of sari's drafts`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app.App) error {
			var viewer *domain.Session
			if asUser != "" {
				viewer = &domain.Session{Username: asUser}
			}

			name, body, err := a.Content.Markdown(cmd.Context(), viewer, args[0])
			if err != nil {
				return fmt.Errorf("export post %s: %w", args[0], err)
			}

			switch outputPath {
			case "-":
				_, err = os.Stdout.Write(body)
				return err
			case "":
				outputPath = name
			}
			if err := os.WriteFile(outputPath, body, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", outputPath, err)
			}
			fmt.Fprintf(os.Stderr, "Wrote %s\n", outputPath)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file, - for stdout (default: derived from the title)")
	exportCmd.Flags().StringVar(&asUser, "as", "", "Read the post as this author")
}
