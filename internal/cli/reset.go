package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Remove unissued data from the database",
	Long: `Remove unissued data from the database.

Issued invoices and recorded payments are permanent and are never removed.

Examples:
  studioledger reset drafts   # Delete all draft invoices
  studioledger reset all      # Delete drafts and clients with no issued invoices`,
}

var resetDraftsCmd = &cobra.Command{
	Use:   "drafts",
	Short: "Delete all draft invoices",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !confirmPrompt("This will delete ALL draft invoices for this studio. Continue?") {
			fmt.Println("Cancelled.")
			return nil
		}

		n, err := clearStudio(false)
		if err != nil {
			return err
		}

		fmt.Printf("Deleted %d draft invoice(s).\n", n.drafts)
		return nil
	},
}

var resetAllCmd = &cobra.Command{
	Use:   "all",
	Short: "Delete drafts and every client without issued invoices",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !confirmPrompt("This will delete ALL draft invoices and every client without issued invoices. Continue?") {
			fmt.Println("Cancelled.")
			return nil
		}

		n, err := clearStudio(true)
		if err != nil {
			return err
		}

		fmt.Printf("Deleted %d draft invoice(s) and %d client(s).\n", n.drafts, n.clients)
		return nil
	},
}

type clearedCounts struct {
	drafts  int64
	clients int64
}

// clearStudio deletes the studio's drafts, and optionally the clients left
// without invoices, in one transaction. Anything issued stays.
func clearStudio(clients bool) (clearedCounts, error) {
	var n clearedCounts
	tx, err := appInstance.DB.Begin()
	if err != nil {
		return n, fmt.Errorf("failed to begin reset: %w", err)
	}
	defer tx.Rollback()

	studio := appInstance.StudioID.String()
	res, err := tx.Exec(`DELETE FROM invoices WHERE studio_id = ? AND status = 'draft'`, studio)
	if err != nil {
		return n, fmt.Errorf("failed to clear drafts: %w", err)
	}
	if n.drafts, err = res.RowsAffected(); err != nil {
		return n, err
	}

	if clients {
		res, err := tx.Exec(`
			DELETE FROM clients
			WHERE studio_id = ? AND id NOT IN (SELECT client_id FROM invoices)`, studio)
		if err != nil {
			return n, fmt.Errorf("failed to clear clients: %w", err)
		}
		if n.clients, err = res.RowsAffected(); err != nil {
			return n, err
		}
	}

	return n, tx.Commit()
}

func confirmPrompt(message string) bool {
	fmt.Printf("%s [y/N] ", message)
	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	input = strings.TrimSpace(strings.ToLower(input))
	return input == "y" || input == "yes"
}

func init() {
	resetCmd.AddCommand(resetDraftsCmd)
	resetCmd.AddCommand(resetAllCmd)
}
