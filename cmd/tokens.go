package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"blend-swap/pkg/currency"
)

var filterSymbol string

var tokensCmd = &cobra.Command{
	Use:     "list-tokens",
	Aliases: []string{"tokens", "ls"},
	Short:   "List the known tokens of the configured chain",
	Long: `List the tokens of the configured token list on the configured chain.

Any other ERC-20 can still be used by its address.

Examples:
  blend-swap list-tokens
  blend-swap list-tokens --symbol USD`,
	Run: runListTokens,
}

func init() {
	rootCmd.AddCommand(tokensCmd)

	tokensCmd.Flags().StringVar(&filterSymbol, "symbol", "", "Filter by token symbol")
}

func runListTokens(cmd *cobra.Command, args []string) {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	a := mustLoadApp(cmd, false)
	defer a.Close()

	// Apply filters
	var filtered []*currency.Currency
	for _, c := range a.registry.All() {
		if filterSymbol != "" && !strings.Contains(strings.ToUpper(c.Symbol), strings.ToUpper(filterSymbol)) {
			continue
		}
		filtered = append(filtered, c)
	}

	// Output
	if jsonOutput {
		printJSON(filtered)
		return
	}
	displayTokens(filtered, a.cfg.ChainID)
}

func displayTokens(tokens []*currency.Currency, chainID int64) {
	if len(tokens) == 0 {
		fmt.Println("\nNo tokens found matching the criteria.")
		return
	}

	fmt.Println("\n" + strings.Repeat("=", 90))
	color.Green("                            KNOWN TOKENS (chain %d)", chainID)
	fmt.Println(strings.Repeat("=", 90) + "\n")

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, token := range tokens {
		address := "native"
		if token.IsToken() {
			address = token.Address.Hex()
		}
		fmt.Fprintf(w, "  %s\t%2d decimals\t%s\t%s\n",
			color.YellowString(token.Symbol),
			token.Decimals,
			color.HiBlackString(address),
			token.Name)
	}
	w.Flush()

	fmt.Println("\n" + strings.Repeat("=", 90))
	fmt.Printf("\nTotal: %d tokens\n\n", len(tokens))
}
