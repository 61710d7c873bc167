package main

import (
	"context"

	"notevault-be/internal/dto"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	exportDest    string
	exportPrivate bool
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the store to a backup file",
	Run: func(cmd *cobra.Command, args []string) {
		_, uowFactory, log := openStore()
		svc := newSyncService(uowFactory, log)

		count, err := svc.RunExport(context.Background(), &dto.ExportRequest{
			Destination:    exportDest,
			IncludePrivate: exportPrivate,
		}, cliProgress)
		if err != nil {
			color.Red("Export failed: %v", err)
			fatal("export", err)
		}
		color.Green("Exported %d notes to %s", count, exportDest)
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportDest, "out", "o", "", "Backup file to write")
	exportCmd.Flags().BoolVar(&exportPrivate, "private", false, "Include private notes and the verification record")
	exportCmd.MarkFlagRequired("out")
}
