package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ewilliams-labs/tuniverse/internal/core/domain"
)

type normalizedLabel struct {
	Label  string             `json:"label"`
	Code   domain.CountryCode `json:"code"`
	Region domain.Region      `json:"region"`
}

func newNormalizeCommand() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "normalize <label>...",
		Short: "Map geographic labels to canonical country codes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			results := make([]normalizedLabel, 0, len(args))
			for _, label := range args {
				code := domain.Normalize(label)
				region, ok := domain.RegionOf(code)
				if !ok {
					region = domain.RegionUnknown
				}
				results = append(results, normalizedLabel{Label: label, Code: code, Region: region})
			}

			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), results)
			}
			rows := make([][]string, 0, len(results))
			for _, r := range results {
				rows = append(rows, []string{r.Label, string(r.Code), string(r.Region)})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Label", "Code", "Region"}, rows, nil))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print results as JSON")
	return cmd
}
