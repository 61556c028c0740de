package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ewilliams-labs/tuniverse/internal/core/domain"
)

func newRollupCommand() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:     "rollup COUNTRY=N...",
		Short:   "Roll country counts up into region shares",
		Example: "  passportctl rollup US=2 KR=1 Unknown=1",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			counts, err := parseCounts(args)
			if err != nil {
				return err
			}
			regions := domain.Rollup(counts)

			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), regions)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderRegionTable(regions))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print region shares as JSON")
	return cmd
}

// parseCounts reads COUNTRY=N pairs in order. Repeated countries add up.
func parseCounts(args []string) (domain.CountryCounts, error) {
	var counts domain.CountryCounts
	for _, arg := range args {
		idx := strings.LastIndex(arg, "=")
		if idx <= 0 {
			return domain.CountryCounts{}, fmt.Errorf("invalid count %q: want COUNTRY=N", arg)
		}
		country := strings.TrimSpace(arg[:idx])
		n, err := strconv.Atoi(strings.TrimSpace(arg[idx+1:]))
		if err != nil || n < 0 || country == "" {
			return domain.CountryCounts{}, fmt.Errorf("invalid count %q: want COUNTRY=N with N >= 0", arg)
		}
		counts.Add(domain.CountryCode(country), n)
	}
	return counts, nil
}
