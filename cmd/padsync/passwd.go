package main

import (
	"context"

	"notevault-be/internal/dto"
	"notevault-be/internal/service"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	oldPassword string
	newPassword string
	clearFlag   bool
)

// passwdCmd represents the passwd command
var passwdCmd = &cobra.Command{
	Use:   "passwd",
	Short: "Set, change, or clear the store password",
	Long: `Set a password on an unprotected store, change an existing one, or
clear it with --clear. Private notes are re-encrypted in the same
transaction, so an interrupted run leaves the store untouched.`,
	Run: func(cmd *cobra.Command, args []string) {
		_, uowFactory, log := openStore()
		svc := service.NewPasswordService(uowFactory, nil, log)

		req := &dto.ChangePasswordRequest{}
		if oldPassword != "" {
			req.OldPassword = &oldPassword
		}
		if clearFlag {
			if req.OldPassword == nil {
				color.Red("Clearing requires --old")
				fatal("passwd", errRequiredFlag)
			}
		} else {
			if newPassword == "" {
				color.Red("Either --new or --clear is required")
				fatal("passwd", errRequiredFlag)
			}
			req.NewPassword = &newPassword
		}

		if err := svc.RunChangePassword(context.Background(), req, cliProgress); err != nil {
			color.Red("Password change failed: %v", err)
			fatal("passwd", err)
		}
		if clearFlag {
			color.Green("Password cleared, private notes decrypted")
		} else {
			color.Green("Password updated, private notes re-encrypted")
		}
	},
}

func init() {
	rootCmd.AddCommand(passwdCmd)
	passwdCmd.Flags().StringVar(&oldPassword, "old", "", "Current password")
	passwdCmd.Flags().StringVar(&newPassword, "new", "", "New password")
	passwdCmd.Flags().BoolVar(&clearFlag, "clear", false, "Remove the password and decrypt private notes")
}
