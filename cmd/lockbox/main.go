package main

import (
	"encoding/json"
	"fmt"
	"os"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/TheMichaelB/lockbox/internal/client"
	"github.com/TheMichaelB/lockbox/internal/config"
	"github.com/TheMichaelB/lockbox/internal/events"
)

var (
	cfgFile    string
	vaultPath  string
	jsonOutput bool

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "lockbox",
	Short: "Local encrypted secrets store",
	Long: `Lockbox keeps credential records in a single encrypted file,
unlockable only by your master passphrase. Nothing ever leaves
your machine.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.NewLoader(cfgFile).Load()
		if err != nil {
			return err
		}
		if vaultPath != "" {
			loaded.Vault.Path = vaultPath
		}
		cfg = loaded
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"Config file path")
	rootCmd.PersistentFlags().StringVar(&vaultPath, "vault", "",
		"Vault file path (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false,
		"Output results as JSON")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		printError("%v", err)
		os.Exit(1)
	}
}

// newClient builds a client from the loaded config.
func newClient() (*client.Client, error) {
	logger, err := events.NewLogger(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return client.New(cfg, logger), nil
}

// withUnlocked prompts for the master passphrase, unlocks the vault and
// runs fn, locking again before returning.
func withUnlocked(fn func(*client.Client) error) error {
	cli, err := newClient()
	if err != nil {
		return err
	}
	defer cli.Close()

	pass, err := promptPassword("Master passphrase: ")
	if err != nil {
		return fmt.Errorf("read passphrase: %w", err)
	}

	if err := cli.Session.Unlock(pass); err != nil {
		return err
	}

	return fn(cli)
}

func promptPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	pw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(pw), nil
}

func printSuccess(format string, args ...interface{}) {
	if jsonOutput {
		return
	}
	color.Green(format, args...)
}

func printError(format string, args ...interface{}) {
	color.Red("Error: "+format, args...)
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
