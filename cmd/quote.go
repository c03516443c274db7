package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"blend-swap/pkg/types"
)

var quoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Quote every leg of the current blend",
	Long: `Look up the best route for every input leg, the guaranteed minimum output
of the whole blend and the approval state of each input.

Legs without a route are shown but do not count towards the output and do
not need an approval.

Examples:
  blend-swap quote
  blend-swap quote --json`,
	Args: cobra.NoArgs,
	Run:  runQuote,
}

func init() {
	rootCmd.AddCommand(quoteCmd)
}

func runQuote(cmd *cobra.Command, args []string) {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	a := mustLoadApp(cmd, true)
	defer a.Close()

	view := fetchView(cmd, a, " Fetching quotes...")
	if jsonOutput {
		printJSON(view)
		return
	}
	displayView(view)
}

// fetchView evaluates the session behind a spinner.
func fetchView(cmd *cobra.Command, a *app, suffix string) *types.BlendView {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = suffix
		s.Start()
	}
	view := a.session.View(cmd.Context())
	if !jsonOutput {
		s.Stop()
	}
	return view
}

func displayView(view *types.BlendView) {
	fmt.Println("\n" + strings.Repeat("=", 100))
	color.Green("                                      BLEND QUOTE")
	fmt.Println(strings.Repeat("=", 100) + "\n")

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "LEG\tINPUT\tROUTE\tQUOTE\tMIN OUT\tAPPROVAL")
	fmt.Fprintln(w, "---\t-----\t-----\t-----\t-------\t--------")
	for _, leg := range view.Legs {
		input := strings.TrimSpace(leg.TypedAmount + " " + leg.Symbol)
		if input == "" {
			input = "-"
		}
		route, quoted, minOut := "-", "-", "-"
		switch {
		case leg.Route != "":
			route, quoted, minOut = leg.Route, leg.Quote, leg.MinOut
		case leg.QuoteError != "":
			route = color.RedString("error")
		case leg.Symbol != "" && leg.TypedAmount != "":
			route = color.HiBlackString("no route")
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			leg.Index, input, route, quoted, minOut, getApprovalColor(leg.Approval))
	}
	w.Flush()

	fmt.Println()
	output := view.OutputSymbol
	if output == "" {
		output = "(none)"
	}
	minimum := view.MinimumOutput
	if minimum == "" {
		minimum = "-"
	}
	fmt.Printf("  Output:            %s\n", color.YellowString(output))
	fmt.Printf("  Minimum received:  %s\n", color.CyanString(minimum))
	fmt.Printf("  Slippage:          %s\n", view.Slippage)
	fmt.Printf("  Max hops:          %d\n", view.MaxHops)
	if view.Recipient != "" {
		fmt.Printf("  Recipient:         %s\n", view.Recipient)
	}
	if view.OutputBalance != "" {
		fmt.Printf("  Output balance:    %s\n", view.OutputBalance)
	}

	for _, leg := range view.Legs {
		if leg.QuoteError != "" {
			color.Red("\n  Leg %d: %s", leg.Index, leg.QuoteError)
		}
	}
	if view.InputError != "" {
		color.Yellow("\n  %s", view.InputError)
	}
	if view.Submittable {
		color.Green("\n  Ready to blend.")
	}
	fmt.Println("\n" + strings.Repeat("=", 100) + "\n")
}

func getApprovalColor(state string) string {
	switch state {
	case "APPROVED":
		return color.GreenString(state)
	case "PENDING":
		return color.YellowString(state)
	case "NOT_APPROVED":
		return color.RedString(state)
	default:
		return color.HiBlackString(state)
	}
}
