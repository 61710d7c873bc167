package main

import (
	"context"

	"notevault-be/internal/dto"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	importSource   string
	importPolicy   string
	importPrivate  bool
	importPassword string
)

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Merge a backup file into the store",
	Long: `Merge a backup into the store under one of five policies:

  clean   wipe the store, then load the backup verbatim
  revert  backup wins every conflict
  update  newer modification time wins
  add     insert everything under fresh ids
  test    walk the merge without writing anything`,
	Run: func(cmd *cobra.Command, args []string) {
		_, uowFactory, log := openStore()
		svc := newSyncService(uowFactory, log)

		count, err := svc.RunImport(context.Background(), &dto.ImportRequest{
			Source:         importSource,
			Policy:         importPolicy,
			IncludePrivate: importPrivate,
			Password:       importPassword,
		}, cliProgress)
		if err != nil {
			color.Red("Import failed: %v", err)
			fatal("import", err)
		}
		color.Green("Imported %d notes from %s (%s)", count, importSource, importPolicy)
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().StringVarP(&importSource, "in", "i", "", "Backup file to read")
	importCmd.Flags().StringVarP(&importPolicy, "policy", "p", "update", "Merge policy (clean, revert, update, add, test)")
	importCmd.Flags().BoolVar(&importPrivate, "private", false, "Include private notes")
	importCmd.Flags().StringVar(&importPassword, "password", "", "Password for private content")
	importCmd.MarkFlagRequired("in")
}

func cliProgress(stage string, done, total int) {
	if quiet || total == 0 {
		return
	}
	if done == total {
		color.Cyan("%s: %d/%d", stage, done, total)
	}
}
