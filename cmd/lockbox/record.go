package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/TheMichaelB/lockbox/internal/client"
	"github.com/TheMichaelB/lockbox/internal/models"
	"github.com/TheMichaelB/lockbox/internal/services/session"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List records (secrets are never shown)",
	RunE:  runList,
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a credential record",
	Example: `  lockbox add --title "Mail" --username alice@example.com
  lockbox add --title "Bank" --url https://bank.example`,
	RunE: runAdd,
}

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Update fields of a record",
	Args:  cobra.ExactArgs(1),
	RunE:  runEdit,
}

var rmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a record",
	Args:  cobra.ExactArgs(1),
	RunE:  runRm,
}

var copyCmd = &cobra.Command{
	Use:   "copy <id>",
	Short: "Copy a record's secret to the clipboard",
	Long: `Copy places the secret on the system clipboard and clears it
after 15 seconds. The secret itself is never printed.`,
	Args: cobra.ExactArgs(1),
	RunE: runCopy,
}

var (
	addTitle    string
	addUsername string
	addURL      string
	addNotes    string

	editTitle    string
	editUsername string
	editURL      string
	editNotes    string
	editSecret   bool
)

func init() {
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(copyCmd)

	addCmd.Flags().StringVar(&addTitle, "title", "", "Record title (required)")
	addCmd.Flags().StringVar(&addUsername, "username", "", "Username or email")
	addCmd.Flags().StringVar(&addURL, "url", "", "Service URL")
	addCmd.Flags().StringVar(&addNotes, "notes", "", "Free-form notes")
	_ = addCmd.MarkFlagRequired("title")

	editCmd.Flags().StringVar(&editTitle, "title", "", "New title")
	editCmd.Flags().StringVar(&editUsername, "username", "", "New username")
	editCmd.Flags().StringVar(&editURL, "url", "", "New URL")
	editCmd.Flags().StringVar(&editNotes, "notes", "", "New notes")
	editCmd.Flags().BoolVar(&editSecret, "secret", false, "Prompt for a new secret")
}

func runList(cmd *cobra.Command, args []string) error {
	return withUnlocked(func(cli *client.Client) error {
		records, err := cli.Session.List()
		if err != nil {
			return err
		}

		if jsonOutput {
			return printJSON(records)
		}

		if len(records) == 0 {
			fmt.Println("No records")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTITLE\tUSERNAME\tURL\tUPDATED")
		for _, r := range records {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				r.ID, r.Title, r.Username, r.URL,
				r.UpdatedAt.Local().Format(time.DateTime))
		}
		return w.Flush()
	})
}

func runAdd(cmd *cobra.Command, args []string) error {
	return withUnlocked(func(cli *client.Client) error {
		secret, err := promptPassword("Secret: ")
		if err != nil {
			return fmt.Errorf("read secret: %w", err)
		}

		rec, err := cli.Session.Add(models.RecordInput{
			Title:    addTitle,
			Username: addUsername,
			Secret:   secret,
			URL:      addURL,
			Notes:    addNotes,
		})
		if err != nil {
			return err
		}

		if jsonOutput {
			return printJSON(rec)
		}
		printSuccess("Added %q (%s)", rec.Title, rec.ID)
		return nil
	})
}

func runEdit(cmd *cobra.Command, args []string) error {
	return withUnlocked(func(cli *client.Client) error {
		upd := models.RecordUpdate{}
		if cmd.Flags().Changed("title") {
			upd.Title = &editTitle
		}
		if cmd.Flags().Changed("username") {
			upd.Username = &editUsername
		}
		if cmd.Flags().Changed("url") {
			upd.URL = &editURL
		}
		if cmd.Flags().Changed("notes") {
			upd.Notes = &editNotes
		}
		if editSecret {
			secret, err := promptPassword("New secret: ")
			if err != nil {
				return fmt.Errorf("read secret: %w", err)
			}
			upd.Secret = &secret
		}

		rec, err := cli.Session.Update(args[0], upd)
		if err != nil {
			return err
		}

		if jsonOutput {
			return printJSON(rec)
		}
		printSuccess("Updated %q", rec.Title)
		return nil
	})
}

func runRm(cmd *cobra.Command, args []string) error {
	return withUnlocked(func(cli *client.Client) error {
		if err := cli.Session.Delete(args[0]); err != nil {
			return err
		}
		printSuccess("Deleted %s", args[0])
		return nil
	})
}

func runCopy(cmd *cobra.Command, args []string) error {
	return withUnlocked(func(cli *client.Client) error {
		if err := cli.Session.CopySecret(args[0]); err != nil {
			return err
		}

		printSuccess("Secret copied, clipboard clears in %s",
			session.ClipboardClearDelay)

		// Stay alive long enough for the scheduled clear to run.
		time.Sleep(session.ClipboardClearDelay + 500*time.Millisecond)
		return nil
	})
}
