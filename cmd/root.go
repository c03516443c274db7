package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "blend-swap",
	Short: "A CLI for blending several tokens into one with a single swap",
	Long: `blend-swap builds a multi-input swap on a Uniswap V2 style router: pick any
number of input tokens and amounts, one output token, approve each input once,
and send a single blend transaction with a guaranteed minimum output.

The session (inputs, output, recipient) is kept between invocations.

Examples:
  blend-swap blend 100 DAI + 0.5 ETH + 20 UNI to USDC
  blend-swap legs add
  blend-swap legs token 1 UNI
  blend-swap legs amount 1 20
  blend-swap quote
  blend-swap approve 0
  blend-swap txs --watch
  blend-swap serve`,
	Version: "0.1.0",
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Add global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "Output in JSON format")
}

func printError(err error) {
	fmt.Printf("\nError: %v\n\n", err)
}

func printSuccess(message string) {
	fmt.Printf("\n%s\n\n", message)
}

func printJSON(v interface{}) {
	data, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(data))
}
