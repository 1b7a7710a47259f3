package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/smartcity/crimedash/internal/dataset"
	"github.com/smartcity/crimedash/internal/domain"
	"github.com/smartcity/crimedash/internal/render"
	"github.com/smartcity/crimedash/internal/repository/postgres"
	"github.com/smartcity/crimedash/internal/service"
	"github.com/smartcity/crimedash/pkg/utils"
)

type options struct {
	dataPath string
	width    int
	height   int

	criteria domain.RawCriteria
	out      string
	asJSON   bool
}

func main() {
	log.SetFlags(log.Flags() | log.Lshortfile)

	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(stdout io.Writer) *cobra.Command {
	opts := &options{criteria: domain.DefaultRawCriteria(time.Now())}

	root := &cobra.Command{
		Use:           "crimedash",
		Long:          "Filter the LA crime incident dataset and render dashboard charts",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)

	flags := root.PersistentFlags()
	flags.StringVar(
		&opts.dataPath,
		"data",
		"Crime_Data_from_2020_to_Present.csv",
		"Incident CSV file",
	)

	root.AddCommand(newChartCmd(opts), newOptionsCmd(opts))
	return root
}

func newChartCmd(opts *options) *cobra.Command {
	kinds := make([]string, 0, len(domain.Charts()))
	for _, ci := range domain.Charts() {
		kinds = append(kinds, string(ci.Kind))
	}

	cmd := &cobra.Command{
		Use:       "chart <kind>",
		Short:     "Render one chart view",
		Long:      "Render one chart view. Kinds: " + strings.Join(kinds, ", "),
		Args:      cobra.ExactArgs(1),
		ValidArgs: kinds,
		RunE: func(cmd *cobra.Command, argv []string) error {
			return runChart(cmd, opts, argv[0])
		},
	}

	flags := cmd.Flags()
	c := &opts.criteria
	flags.StringVar(&c.Start, "start", c.Start, "Start date (inclusive)")
	flags.StringVar(&c.End, "end", c.End, "End date (inclusive)")
	flags.StringVar(&c.Area, "area", c.Area, "Area name or All")
	flags.StringVar(&c.CrimeType, "crime", c.CrimeType, "Crime type or All")
	flags.StringVar(&c.Outcome, "outcome", c.Outcome, "Case status or All")
	flags.IntVar(&c.MinAge, "min-age", c.MinAge, "Minimum victim age (0-100)")
	flags.IntVar(&c.MaxAge, "max-age", c.MaxAge, "Maximum victim age (0-100)")
	flags.StringVarP(&opts.out, "out", "o", "", "PNG output file (defaults to <kind>.png)")
	flags.BoolVar(&opts.asJSON, "json", false, "Print the derived view as JSON instead of rendering")
	flags.IntVar(&opts.width, "width", render.DefaultWidth, "Chart width in pixels")
	flags.IntVar(&opts.height, "height", render.DefaultHeight, "Chart height in pixels")

	return cmd
}

func newOptionsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "options",
		Short: "Print the filter selector values for the dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, argv []string) error {
			svc, err := openService(opts)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), svc.FilterOptions())
		},
	}
}

func runChart(cmd *cobra.Command, opts *options, name string) error {
	kind, ok := domain.ParseChartKind(name)
	if !ok {
		return fmt.Errorf("unknown chart kind %q", name)
	}

	svc, err := openService(opts)
	if err != nil {
		return err
	}
	defer svc.WaitBackground()

	raw := opts.criteria
	raw.MinAge = utils.Clamp(raw.MinAge, domain.MinVictimAge, domain.MaxVictimAge)
	raw.MaxAge = utils.Clamp(raw.MaxAge, domain.MinVictimAge, domain.MaxVictimAge)

	ctx := context.Background()
	if opts.asJSON {
		result, err := svc.Chart(ctx, kind, raw)
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), result)
	}

	img, result, err := svc.ChartImage(ctx, kind, raw)
	if err != nil {
		return err
	}

	out := opts.out
	if out == "" {
		out = string(kind) + ".png"
	}
	if err := os.WriteFile(out, img, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}

	if result.FilterFallback {
		log.Printf("Filter error (%s); chart shows the unfiltered dataset", result.FilterError)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d incidents -> %s\n", result.Title, result.Total, out)
	return nil
}

func openService(opts *options) (*service.DashboardService, error) {
	ds, _, err := dataset.Load(opts.dataPath)
	if err != nil {
		return nil, err
	}
	renderOpts := render.Options{Width: opts.width, Height: opts.height}
	return service.NewDashboardService(ds, postgres.NewMockRepository(), renderOpts), nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
