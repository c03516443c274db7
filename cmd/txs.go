package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"blend-swap/pkg/session"
	"blend-swap/pkg/txstore"
	"blend-swap/pkg/types"
)

var (
	watchTxs      bool
	pendingOnly   bool
	watchInterval time.Duration
)

var txsCmd = &cobra.Command{
	Use:     "txs",
	Aliases: []string{"status"},
	Short:   "Show approval and blend transactions sent from this machine",
	Long: `Refresh the status of pending transactions from their receipts and list every
tracked transaction.

Examples:
  blend-swap txs
  blend-swap txs --pending
  blend-swap txs --watch --interval 10s`,
	Args: cobra.NoArgs,
	Run:  runTxs,
}

func init() {
	rootCmd.AddCommand(txsCmd)

	txsCmd.Flags().BoolVarP(&watchTxs, "watch", "w", false, "Keep polling until every transaction is final")
	txsCmd.Flags().BoolVar(&pendingOnly, "pending", false, "Only show pending transactions")
	txsCmd.Flags().DurationVar(&watchInterval, "interval", 5*time.Second, "Polling interval (when watching)")
}

func runTxs(cmd *cobra.Command, args []string) {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	a := mustLoadApp(cmd, true)
	defer a.Close()

	if watchTxs {
		if jsonOutput {
			fmt.Println(`{"error": "watch mode not supported with JSON output"}`)
			os.Exit(1)
		}
		watchTransactions(cmd.Context(), a)
		return
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Checking receipts..."
		s.Start()
	}
	_, err := a.watcher.Check(cmd.Context())
	if !jsonOutput {
		s.Stop()
	}
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	txs := listTransactions(a)
	if jsonOutput {
		printJSON(txs)
		return
	}
	displayTransactions(txs)
}

func watchTransactions(ctx context.Context, a *app) {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("\nWatching %d pending transaction(s)\n", len(a.txs.Pending()))
	fmt.Printf("Checking every %s. Press Ctrl+C to stop.\n", watchInterval)

	ticker := time.NewTicker(watchInterval)
	defer ticker.Stop()

	for {
		finalized, err := a.watcher.Check(ctx)
		if err != nil && ctx.Err() == nil {
			color.Red("Error: %v", err)
		}
		if finalized > 0 {
			displayTransactions(listTransactions(a))
		}
		if len(a.txs.Pending()) == 0 {
			color.Green("\n✓ Every transaction is final.\n")
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func listTransactions(a *app) []types.TxView {
	list := a.txs.List()
	if pendingOnly {
		list = a.txs.Pending()
	}
	out := make([]types.TxView, len(list))
	for i, tx := range list {
		out[i] = session.TxView(tx)
	}
	return out
}

func displayTransactions(txs []types.TxView) {
	if len(txs) == 0 {
		fmt.Println("\nNo transactions found.")
		return
	}

	fmt.Println("\n" + strings.Repeat("=", 120))
	color.Green("                                                TRANSACTIONS")
	fmt.Println(strings.Repeat("=", 120) + "\n")

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CREATED\tKIND\tSTATUS\tBLOCK\tHASH\tSUMMARY")
	fmt.Fprintln(w, "-------\t----\t------\t-----\t----\t-------")
	for _, tx := range txs {
		block := "-"
		if tx.Block > 0 {
			block = fmt.Sprintf("%d", tx.Block)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			tx.Created.Format("2006-01-02 15:04:05"),
			tx.Kind,
			getTxStatusColor(tx.Status),
			block,
			truncateString(tx.Hash, 20),
			tx.Summary)
	}
	w.Flush()
	fmt.Println("\n" + strings.Repeat("=", 120) + "\n")
}

func getTxStatusColor(status string) string {
	switch txstore.Status(status) {
	case txstore.StatusConfirmed:
		return color.GreenString(status)
	case txstore.StatusPending:
		return color.YellowString(status)
	case txstore.StatusFailed:
		return color.RedString(status)
	default:
		return status
	}
}
