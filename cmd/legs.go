package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"blend-swap/pkg/blend"
	"blend-swap/pkg/parser"
	"blend-swap/pkg/types"
)

var legsCmd = &cobra.Command{
	Use:   "legs",
	Short: "Edit the inputs, output and recipient of the current blend",
	Long: `Edit the blend session. Changes are saved after every command and can be
reverted one at a time with 'legs undo'.

Leg indexes start at 0. Removing a leg shifts the legs after it down by one.

Examples:
  blend-swap legs set "100 DAI + 0.5 ETH to USDC"
  blend-swap legs add
  blend-swap legs token 2 UNI
  blend-swap legs amount 2 20
  blend-swap legs remove 0
  blend-swap legs output WBTC
  blend-swap legs recipient 0x123...
  blend-swap legs recipient self
  blend-swap legs show`,
}

var legsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current session without quoting it",
	Args:  cobra.NoArgs,
	Run:   runLegsShow,
}

var legsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Append an empty input leg",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runLegsDispatch(cmd, func(context.Context, *app) ([]blend.Action, error) {
			return []blend.Action{blend.AddInput()}, nil
		})
	},
}

var legsRemoveCmd = &cobra.Command{
	Use:   "remove <index>",
	Short: "Remove an input leg",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runLegsDispatch(cmd, func(context.Context, *app) ([]blend.Action, error) {
			i, err := parseIndex(args[0])
			if err != nil {
				return nil, err
			}
			return []blend.Action{blend.RemoveInput(i)}, nil
		})
	},
}

var legsTokenCmd = &cobra.Command{
	Use:   "token <index> <token>",
	Short: "Select the token of an input leg",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		runLegsDispatch(cmd, func(ctx context.Context, a *app) ([]blend.Action, error) {
			i, err := parseIndex(args[0])
			if err != nil {
				return nil, err
			}
			id, err := a.resolveID(ctx, parser.NormalizeTokenSymbol(args[1]))
			if err != nil {
				return nil, err
			}
			return []blend.Action{blend.SelectInput(i, id)}, nil
		})
	},
}

var legsAmountCmd = &cobra.Command{
	Use:   "amount <index> <amount>",
	Short: "Type the amount of an input leg",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		runLegsDispatch(cmd, func(context.Context, *app) ([]blend.Action, error) {
			i, err := parseIndex(args[0])
			if err != nil {
				return nil, err
			}
			return []blend.Action{blend.TypeInput(i, args[1])}, nil
		})
	},
}

var legsOutputCmd = &cobra.Command{
	Use:   "output <token>",
	Short: "Select the output token",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runLegsDispatch(cmd, func(ctx context.Context, a *app) ([]blend.Action, error) {
			id, err := a.resolveID(ctx, parser.NormalizeTokenSymbol(args[0]))
			if err != nil {
				return nil, err
			}
			return []blend.Action{blend.SelectOutput(id)}, nil
		})
	},
}

var legsRecipientCmd = &cobra.Command{
	Use:   "recipient <address|self>",
	Short: "Send the output to another address, or back to yourself",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runLegsDispatch(cmd, func(context.Context, *app) ([]blend.Action, error) {
			if strings.EqualFold(args[0], "self") {
				return []blend.Action{blend.SetRecipient(nil)}, nil
			}
			recipient := args[0]
			return []blend.Action{blend.SetRecipient(&recipient)}, nil
		})
	},
}

var legsSetCmd = &cobra.Command{
	Use:   "set <amount> <token> [+ <amount> <token>...] to <token>",
	Short: "Replace the whole session with a blend command",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runLegsDispatch(cmd, func(ctx context.Context, a *app) ([]blend.Action, error) {
			req, err := parser.ParseBlendCommand(strings.Join(args, " "))
			if err != nil {
				return nil, err
			}
			actions, err := requestActions(ctx, a, req)
			if err != nil {
				return nil, err
			}
			if _, err := a.session.Reset(); err != nil {
				return nil, err
			}
			return actions, nil
		})
	},
}

var legsUndoCmd = &cobra.Command{
	Use:   "undo",
	Short: "Revert the last change",
	Args:  cobra.NoArgs,
	Run:   runLegsUndo,
}

var legsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Start over with a single empty leg",
	Args:  cobra.NoArgs,
	Run:   runLegsReset,
}

func init() {
	rootCmd.AddCommand(legsCmd)
	legsCmd.AddCommand(legsShowCmd, legsAddCmd, legsRemoveCmd, legsTokenCmd, legsAmountCmd,
		legsOutputCmd, legsRecipientCmd, legsSetCmd, legsUndoCmd, legsResetCmd)
}

// runLegsDispatch builds actions with build and applies them in order.
func runLegsDispatch(cmd *cobra.Command, build func(context.Context, *app) ([]blend.Action, error)) {
	a := mustLoadApp(cmd, false)
	defer a.Close()

	actions, err := build(cmd.Context(), a)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	var state blend.State
	for _, action := range actions {
		if state, err = a.session.Dispatch(action); err != nil {
			printError(err)
			os.Exit(1)
		}
	}
	displayState(cmd, a, state)
}

// requestActions turns a parsed blend command into the actions that build it
// from the initial state.
func requestActions(ctx context.Context, a *app, req *types.BlendRequest) ([]blend.Action, error) {
	var actions []blend.Action
	for i, leg := range req.Legs {
		id, err := a.resolveID(ctx, leg.Token)
		if err != nil {
			return nil, err
		}
		if i > 0 {
			actions = append(actions, blend.AddInput())
		}
		actions = append(actions, blend.SelectInput(i, id), blend.TypeInput(i, leg.Amount))
	}

	out, err := a.resolveID(ctx, req.Output)
	if err != nil {
		return nil, err
	}
	return append(actions, blend.SelectOutput(out)), nil
}

func runLegsShow(cmd *cobra.Command, args []string) {
	a := mustLoadApp(cmd, false)
	defer a.Close()
	displayState(cmd, a, a.session.State())
}

func runLegsUndo(cmd *cobra.Command, args []string) {
	a := mustLoadApp(cmd, false)
	defer a.Close()

	state, ok, err := a.session.Undo()
	if err != nil {
		printError(err)
		os.Exit(1)
	}
	if !ok {
		color.Yellow("\nNothing to undo.\n")
		return
	}
	displayState(cmd, a, state)
}

func runLegsReset(cmd *cobra.Command, args []string) {
	a := mustLoadApp(cmd, false)
	defer a.Close()

	state, err := a.session.Reset()
	if err != nil {
		printError(err)
		os.Exit(1)
	}
	displayState(cmd, a, state)
}

func parseIndex(s string) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid leg index %q", s)
	}
	return i, nil
}

func displayState(cmd *cobra.Command, a *app, state blend.State) {
	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		printJSON(state)
		return
	}

	fmt.Println("\n" + strings.Repeat("=", 70))
	color.Green("                        BLEND SESSION")
	fmt.Println(strings.Repeat("=", 70))

	for i, leg := range state.Legs {
		amount := state.TypedAmounts[i]
		if amount == "" {
			amount = color.HiBlackString("-")
		}
		fmt.Printf("\n  [%d] %-12s %s", i, tokenLabel(cmd.Context(), a, leg.TokenID), amount)
	}
	fmt.Printf("\n\n  Output:    %s\n", tokenLabel(cmd.Context(), a, state.OutputTokenID))

	recipient := "self"
	if state.Recipient != nil {
		recipient = *state.Recipient
	}
	fmt.Printf("  Recipient: %s\n", recipient)
	fmt.Println("\n" + strings.Repeat("=", 70) + "\n")
}

func tokenLabel(ctx context.Context, a *app, id string) string {
	if id == "" {
		return color.HiBlackString("(none)")
	}
	c, err := a.registry.Resolve(ctx, id)
	if err != nil {
		return truncateString(id, 12)
	}
	return color.YellowString(c.String())
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
