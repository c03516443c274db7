package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var approveAll bool

var approveCmd = &cobra.Command{
	Use:   "approve [index]",
	Short: "Approve the blend contract to spend an input token",
	Long: `Send an ERC-20 approval for one input leg, or for every leg that still needs
one with --all.

An unlimited allowance is requested first. Tokens that refuse unlimited
approvals get an allowance for the exact amount instead.

Examples:
  blend-swap approve 0
  blend-swap approve --all`,
	Args: cobra.MaximumNArgs(1),
	Run:  runApprove,
}

func init() {
	rootCmd.AddCommand(approveCmd)

	approveCmd.Flags().BoolVar(&approveAll, "all", false, "Approve every leg that is not approved yet")
}

func runApprove(cmd *cobra.Command, args []string) {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	if approveAll == (len(args) == 1) {
		printError(fmt.Errorf("pass either a leg index or --all"))
		os.Exit(1)
	}

	a := mustLoadApp(cmd, true)
	defer a.Close()
	if err := a.cfg.RequireSigner(); err != nil {
		printError(err)
		os.Exit(1)
	}

	var indexes []int
	if approveAll {
		for _, leg := range fetchView(cmd, a, " Checking allowances...").Legs {
			if leg.Approval == "NOT_APPROVED" {
				indexes = append(indexes, leg.Index)
			}
		}
		if len(indexes) == 0 {
			color.Green("\nEvery input is already approved or pending.\n")
			return
		}
	} else {
		i, err := parseIndex(args[0])
		if err != nil {
			printError(err)
			os.Exit(1)
		}
		indexes = []int{i}
	}

	type result struct {
		Index int    `json:"index"`
		Hash  string `json:"hash,omitempty"`
		Error string `json:"error,omitempty"`
	}
	var results []result
	failed := false

	for _, i := range indexes {
		s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
		if !jsonOutput {
			s.Suffix = " Sending approval..."
			s.Start()
		}
		hash, err := a.session.Approve(cmd.Context(), i)
		if !jsonOutput {
			s.Stop()
		}

		if err != nil {
			failed = true
			results = append(results, result{Index: i, Error: err.Error()})
			if !jsonOutput {
				color.Red("\n✗ Leg %d: %v", i, err)
			}
			continue
		}
		results = append(results, result{Index: i, Hash: hash.Hex()})
		if !jsonOutput {
			color.Green("\n✓ Leg %d approval sent", i)
			color.Cyan("  %s", hash.Hex())
		}
	}

	if jsonOutput {
		printJSON(results)
	} else {
		printSuccess("Track confirmations with: blend-swap txs --watch")
	}
	if failed {
		os.Exit(1)
	}
}
