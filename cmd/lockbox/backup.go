package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/TheMichaelB/lockbox/internal/client"
)

var exportCmd = &cobra.Command{
	Use:   "export [path]",
	Short: "Write an encrypted backup of the vault",
	Long: `Export writes a self-contained encrypted copy of the record set.
The backup unlocks with the current master passphrase.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

var importCmd = &cobra.Command{
	Use:   "import <path>",
	Short: "Replace the vault contents from an encrypted backup",
	Long: `Import decrypts the backup with its own passphrase and replaces
the active vault's records. A failed import leaves the vault
untouched.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	return withUnlocked(func(cli *client.Client) error {
		dest := defaultBackupPath()
		if len(args) == 1 {
			dest = args[0]
		}

		if err := cli.Backup.Export(dest); err != nil {
			return err
		}

		printSuccess("Exported vault to %s", dest)
		return nil
	})
}

func runImport(cmd *cobra.Command, args []string) error {
	return withUnlocked(func(cli *client.Client) error {
		backupPass, err := promptPassword("Backup passphrase: ")
		if err != nil {
			return fmt.Errorf("read backup passphrase: %w", err)
		}

		if err := cli.Backup.Import(args[0], backupPass); err != nil {
			return err
		}

		printSuccess("Imported records from %s", args[0])
		return nil
	})
}

func defaultBackupPath() string {
	name := fmt.Sprintf("lockbox-%s.dat", time.Now().Format("20060102-150405"))
	return filepath.Join(cfg.Vault.BackupDir, name)
}
