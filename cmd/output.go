package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseID(arg, what string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q", what, arg)
	}
	return id, nil
}

func parsePercent(arg string) (int, error) {
	percent, err := strconv.Atoi(arg)
	if err != nil || percent < 0 || percent > 100 {
		return 0, fmt.Errorf("invalid percentage %q (expected 0-100)", arg)
	}
	return percent, nil
}
