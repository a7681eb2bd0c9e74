package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/TheMichaelB/lockbox/internal/client"
	"github.com/TheMichaelB/lockbox/internal/passphrase"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a new vault",
	Long: `Init creates a new encrypted vault protected by a master
passphrase. There is no recovery path for a forgotten passphrase.`,
	RunE: runInit,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show vault presence and lock state",
	RunE:  runStatus,
}

var changePasswordCmd = &cobra.Command{
	Use:   "change-password",
	Short: "Rotate the master passphrase",
	Long: `Change-password re-encrypts the vault under a key derived from a
new passphrase with a fresh salt. Records are unchanged.`,
	RunE: runChangePassword,
}

func init() {
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(changePasswordCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	cli, err := newClient()
	if err != nil {
		return err
	}
	defer cli.Close()

	pass, err := promptNewPassphrase("Master passphrase: ")
	if err != nil {
		return err
	}

	if err := cli.Session.Create(pass); err != nil {
		return err
	}

	printSuccess("Vault created at %s", cfg.Vault.Path)
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	cli, err := newClient()
	if err != nil {
		return err
	}
	defer cli.Close()

	status := cli.Session.Status()
	if jsonOutput {
		return printJSON(status)
	}

	if !status.VaultExists {
		fmt.Printf("No vault at %s (run `lockbox init`)\n", cfg.Vault.Path)
		return nil
	}
	state := "locked"
	if status.Unlocked {
		state = "unlocked"
	}
	fmt.Printf("Vault: %s (%s)\n", cfg.Vault.Path, state)
	return nil
}

func runChangePassword(cmd *cobra.Command, args []string) error {
	return withUnlocked(func(cli *client.Client) error {
		current, err := promptPassword("Current passphrase: ")
		if err != nil {
			return err
		}
		newPass, err := promptNewPassphrase("New passphrase: ")
		if err != nil {
			return err
		}

		if err := cli.Session.ChangeMasterPassphrase(current, newPass); err != nil {
			return err
		}

		printSuccess("Master passphrase changed")
		return nil
	})
}

// promptNewPassphrase reads a passphrase twice and applies the policy
// before the expensive key derivation runs.
func promptNewPassphrase(prompt string) (string, error) {
	pass, err := promptPassword(prompt)
	if err != nil {
		return "", fmt.Errorf("read passphrase: %w", err)
	}
	confirm, err := promptPassword("Confirm: ")
	if err != nil {
		return "", fmt.Errorf("read confirmation: %w", err)
	}
	if err := passphrase.ValidateWithConfirmation(pass, confirm); err != nil {
		return "", err
	}
	return pass, nil
}
