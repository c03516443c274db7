package parser

import (
	"fmt"
	"regexp"
	"strings"

	"blend-swap/pkg/types"
)

var (
	legPattern   = regexp.MustCompile(`^(\d+\.?\d*|\.\d+)\s+(0X[0-9A-F]{40}|[A-Z0-9]+)$`)
	blendPattern = regexp.MustCompile(`^(.+?)\s+(?:TO|INTO|FOR)\s+(0X[0-9A-F]{40}|[A-Z0-9]+)$`)
)

// ParseBlendCommand parses a natural language blend command
// Examples:
//   - "blend 1 DAI + 0.5 ETH to USDC"
//   - "100 USDC, 2 UNI into ETH"
func ParseBlendCommand(command string) (*types.BlendRequest, error) {
	// Normalize the command
	command = strings.TrimSpace(strings.ToUpper(command))

	// Remove the word "BLEND" if present at the beginning
	command = strings.TrimPrefix(command, "BLEND ")

	matches := blendPattern.FindStringSubmatch(command)
	if matches == nil {
		return nil, fmt.Errorf("invalid blend command format. Expected: 'blend <amount> <token> [+ <amount> <token>...] to <token>' (e.g., 'blend 1 DAI + 2 UNI to USDC')")
	}

	req := &types.BlendRequest{Output: NormalizeTokenSymbol(matches[2])}
	for _, part := range splitLegs(matches[1]) {
		leg, err := ParseLeg(part)
		if err != nil {
			return nil, err
		}
		req.Legs = append(req.Legs, *leg)
	}

	if err := ValidateBlendRequest(req); err != nil {
		return nil, err
	}
	return req, nil
}

// ParseLeg parses a single "<amount> <token>" leg
func ParseLeg(s string) (*types.LegRequest, error) {
	s = strings.Join(strings.Fields(strings.ToUpper(s)), " ")

	matches := legPattern.FindStringSubmatch(s)
	if matches == nil {
		return nil, fmt.Errorf("invalid leg %q. Expected: '<amount> <token>' (e.g., '1.5 DAI')", s)
	}

	return &types.LegRequest{
		Amount: matches[1],
		Token:  NormalizeTokenSymbol(matches[2]),
	}, nil
}

// ValidateBlendRequest validates that a blend request has all required fields
func ValidateBlendRequest(req *types.BlendRequest) error {
	if len(req.Legs) == 0 {
		return fmt.Errorf("at least one input is required")
	}
	for i, leg := range req.Legs {
		if leg.Amount == "" {
			return fmt.Errorf("input %d: amount is required", i)
		}
		if leg.Token == "" {
			return fmt.Errorf("input %d: token is required", i)
		}
		if leg.Token == req.Output {
			return fmt.Errorf("input %d: cannot blend %s into itself", i, leg.Token)
		}
	}
	if req.Output == "" {
		return fmt.Errorf("output token is required")
	}
	return nil
}

// NormalizeTokenSymbol normalizes token symbols to standard format
func NormalizeTokenSymbol(symbol string) string {
	// Convert to uppercase for consistency
	symbol = strings.TrimSpace(strings.ToUpper(symbol))

	// Addresses keep the conventional lowercase prefix
	if strings.HasPrefix(symbol, "0X") {
		return "0x" + symbol[2:]
	}

	// Handle common aliases
	aliases := map[string]string{
		"ETHER": "ETH",
	}

	if normalized, exists := aliases[symbol]; exists {
		return normalized
	}

	return symbol
}

func splitLegs(s string) []string {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == '+' || r == ','
	})
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(p), "AND ")); p != "" {
			out = append(out, p)
		}
	}
	return out
}
