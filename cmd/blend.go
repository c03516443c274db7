package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"blend-swap/pkg/parser"
)

var noConfirm bool

var blendCmd = &cobra.Command{
	Use:   "blend [<amount> <token> [+ <amount> <token>...] to <token>]",
	Short: "Swap every input leg into the output token in one transaction",
	Long: `Send the current blend as a single transaction. With arguments, the session
is first replaced by the given command.

Every input with a route must be approved first (see 'blend-swap approve').
Inputs without a route are left out of the transaction.

Examples:
  # Blend the current session
  blend-swap blend

  # Replace the session and blend it
  blend-swap blend 100 DAI + 0.5 ETH to USDC

  # Skip the confirmation prompt
  blend-swap blend --yes`,
	Run: runBlend,
}

func init() {
	rootCmd.AddCommand(blendCmd)

	blendCmd.Flags().BoolVarP(&noConfirm, "yes", "y", false, "Skip confirmation prompt")
}

func runBlend(cmd *cobra.Command, args []string) {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	a := mustLoadApp(cmd, true)
	defer a.Close()
	if err := a.cfg.RequireSigner(); err != nil {
		printError(err)
		os.Exit(1)
	}

	if len(args) > 0 {
		req, err := parser.ParseBlendCommand(strings.Join(args, " "))
		if err != nil {
			printError(err)
			os.Exit(1)
		}
		actions, err := requestActions(cmd.Context(), a, req)
		if err != nil {
			printError(err)
			os.Exit(1)
		}
		if _, err := a.session.Reset(); err != nil {
			printError(err)
			os.Exit(1)
		}
		for _, action := range actions {
			if _, err := a.session.Dispatch(action); err != nil {
				printError(err)
				os.Exit(1)
			}
		}
	}

	view := fetchView(cmd, a, " Fetching quotes...")
	if !jsonOutput {
		displayView(view)
	}
	if view.InputError != "" {
		printError(errors.New(view.InputError))
		os.Exit(1)
	}
	if !view.Submittable {
		printError(errors.New("not every input is approved, run: blend-swap approve --all"))
		os.Exit(1)
	}

	// Ask for confirmation
	if !noConfirm && !jsonOutput {
		if !confirmBlend(view.MinimumOutput, view.OutputSymbol) {
			fmt.Println("\nBlend cancelled.")
			os.Exit(0)
		}
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Sending blend..."
		s.Start()
	}
	hash, err := a.session.Submit(cmd.Context())
	if !jsonOutput {
		s.Stop()
	}
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if jsonOutput {
		printJSON(map[string]interface{}{
			"hash":           hash.Hex(),
			"minimum_output": view.MinimumOutput,
			"output_token":   view.OutputSymbol,
			"status":         "submitted",
		})
		return
	}

	color.Green("\n✓ Blend sent successfully!")
	fmt.Printf("  Transaction: %s\n", color.CyanString(hash.Hex()))
	fmt.Println("\nYou can monitor the transaction using:")
	color.Cyan("  blend-swap txs --watch\n")
}

func confirmBlend(minimum, symbol string) bool {
	reader := bufio.NewReader(os.Stdin)
	fmt.Printf("\nBlend for at least %s %s? (y/N): ", minimum, symbol)

	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}
