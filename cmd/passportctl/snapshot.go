package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ewilliams-labs/tuniverse/internal/adapters/musicbrainz"
	"github.com/ewilliams-labs/tuniverse/internal/core/domain"
	"github.com/ewilliams-labs/tuniverse/internal/core/ports"
	"github.com/ewilliams-labs/tuniverse/internal/core/services"
)

type snapshotOptions struct {
	limit          int
	useMusicBrainz bool
	mbURL          string
	userAgent      string
	timeout        time.Duration
	requestsPerSec float64
	jsonOutput     bool
}

func newSnapshotCommand() *cobra.Command {
	opts := snapshotOptions{}

	cmd := &cobra.Command{
		Use:   "snapshot [artist...]",
		Short: "Build a passport snapshot from artist names",
		Long:  "Build a passport snapshot from artist names given as arguments, or one per line on stdin when none are given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			names := args
			if len(names) == 0 {
				var err error
				names, err = readLines(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read artist names: %w", err)
				}
			}
			return runSnapshot(cmd, names, opts)
		},
	}

	cmd.Flags().IntVar(&opts.limit, "limit", 0, "Consider at most this many distinct artists (0 for all)")
	cmd.Flags().BoolVar(&opts.useMusicBrainz, "musicbrainz", false, "Look up artists missing from the seed table on MusicBrainz")
	cmd.Flags().StringVar(&opts.mbURL, "musicbrainz-url", musicbrainz.DefaultBaseURL, "MusicBrainz web service root")
	cmd.Flags().StringVar(&opts.userAgent, "user-agent", musicbrainz.DefaultUserAgent, "User-Agent sent to MusicBrainz")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 3*time.Second, "Per-artist lookup timeout")
	cmd.Flags().Float64Var(&opts.requestsPerSec, "requests-per-sec", 1, "MusicBrainz request rate")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Print the snapshot as JSON")

	return cmd
}

func runSnapshot(cmd *cobra.Command, names []string, opts snapshotOptions) error {
	var lookup ports.OriginLookup = services.NoLookup{}
	var builderOpts []services.BuilderOption
	if opts.useMusicBrainz {
		lookup = musicbrainz.NewClient(musicbrainz.Config{
			BaseURL:        opts.mbURL,
			UserAgent:      opts.userAgent,
			Timeout:        opts.timeout,
			RequestsPerSec: opts.requestsPerSec,
		})
		builderOpts = append(builderOpts, services.WithConcurrency(max(1, int(opts.requestsPerSec))))
	}
	resolver := services.NewOriginResolver(lookup, services.WithLookupTimeout(opts.timeout))
	builder := services.NewSnapshotBuilder(resolver, builderOpts...)

	snap := builder.Build(cmd.Context(), names, opts.limit, services.ForUser("cli"))

	out := cmd.OutOrStdout()
	if opts.jsonOutput {
		return writeJSON(out, snap)
	}

	rows := make([][]string, 0, snap.CountryCounts.Len())
	for _, entry := range snap.CountryCounts.Entries() {
		region, ok := domain.RegionOf(entry.Country)
		if !ok {
			region = domain.RegionUnknown
		}
		rows = append(rows, []string{
			string(entry.Country),
			string(region),
			strconv.Itoa(entry.Count),
			strings.Join(snap.ArtistsByCountry[entry.Country], ", "),
		})
	}
	fmt.Fprintln(out, renderTable([]string{"Country", "Region", "Artists", "Names"}, rows, []columnAlignment{alignLeft, alignLeft, alignRight, alignLeft}))
	fmt.Fprintln(out, renderRegionTable(snap.RegionPercentages))
	fmt.Fprintf(out, "Total artists: %d\n", snap.TotalArtists)
	return nil
}

func renderRegionTable(regions domain.RegionPercentages) string {
	rows := make([][]string, 0, regions.Len())
	for _, share := range regions.Entries() {
		rows = append(rows, []string{string(share.Region), formatPercent(share.Fraction)})
	}
	return renderTable([]string{"Region", "Share"}, rows, []columnAlignment{alignLeft, alignRight})
}

func formatPercent(fraction float64) string {
	return fmt.Sprintf("%.1f%%", fraction*100)
}

// readLines returns the non-blank lines of r.
func readLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, scanner.Err()
}
