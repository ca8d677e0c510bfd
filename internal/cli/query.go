package cli

import (
	"fmt"
	"iter"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/idumahg/NearEarthObjects/internal/domain"
	"github.com/idumahg/NearEarthObjects/internal/export"
	"github.com/idumahg/NearEarthObjects/internal/filters"
)

const queryShortDescription = "Query close approaches and print or export the matches"
const queryLongDescription = `Command "query"

Selects close approaches matching every given criterion, in load order.

Without --outfile the matches are printed, at most --limit of them (10 unless
configured otherwise). With --outfile they are written as CSV, JSON or XLSX,
chosen by the file extension, and --limit applies only when given.
`

// dateLayout is the layout of the date flags.
const dateLayout = "2006-01-02"

func queryCommand(root *RootCommand) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query",
		Short: queryShortDescription,
		Long:  queryLongDescription,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			criteria, err := criteriaFromFlags(cmd.Flags())
			if err != nil {
				return err
			}
			outfile, _ := cmd.Flags().GetString("outfile")
			limit, err := resultLimit(cmd.Flags(), outfile, root.config.Output.Limit)
			if err != nil {
				return err
			}

			db, err := root.openDatabase(cmd.Context())
			if err != nil {
				return err
			}

			filterSet := filters.Create(criteria)
			root.logger.Debugw("running query", "filters", len(filterSet), "limit", limit)
			results := filters.Limit(db.Query(filterSet...), limit)

			if outfile == "" {
				return printResults(root, results)
			}
			writer := export.NewWriter(root.fs, export.WithIndent(strings.Repeat(" ", root.config.Output.Indent)))
			if err := writer.Write(results, outfile); err != nil {
				return err
			}
			root.logger.Infow("wrote results", "path", outfile)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringP("date", "d", "", "only approaches on this date (YYYY-MM-DD)")
	flags.StringP("start-date", "s", "", "only approaches on or after this date (YYYY-MM-DD)")
	flags.StringP("end-date", "e", "", "only approaches on or before this date (YYYY-MM-DD)")
	flags.Float64("min-distance", 0, "minimum approach distance in au")
	flags.Float64("max-distance", 0, "maximum approach distance in au")
	flags.Float64("min-velocity", 0, "minimum relative velocity in km/s")
	flags.Float64("max-velocity", 0, "maximum relative velocity in km/s")
	flags.Float64("min-diameter", 0, "minimum NEO diameter in km")
	flags.Float64("max-diameter", 0, "maximum NEO diameter in km")
	flags.Bool("hazardous", false, "only potentially hazardous NEOs")
	flags.Bool("not-hazardous", false, "only NEOs that are not potentially hazardous")
	flags.IntP("limit", "l", 0, "maximum number of results, 0 for no limit")
	flags.StringP("outfile", "o", "", "write results to a .csv, .json or .xlsx file")
	cmd.MarkFlagsMutuallyExclusive("hazardous", "not-hazardous")
	return cmd
}

func printResults(root *RootCommand, results iter.Seq[*domain.CloseApproach]) error {
	for approach := range results {
		if _, err := fmt.Fprintln(root.stdout, approach); err != nil {
			return err
		}
	}
	return nil
}

// resultLimit resolves the cap on results. An explicit --limit wins; printing
// falls back to the configured limit and exporting to no limit.
func resultLimit(flags *pflag.FlagSet, outfile string, configured int) (int, error) {
	if flags.Changed("limit") {
		limit, err := flags.GetInt("limit")
		if err != nil {
			return 0, err
		}
		if limit < 0 {
			return 0, fmt.Errorf("invalid --limit %d: must not be negative", limit)
		}
		return limit, nil
	}
	if outfile == "" {
		return configured, nil
	}
	return 0, nil
}

func criteriaFromFlags(flags *pflag.FlagSet) (domain.ApproachFilter, error) {
	var criteria domain.ApproachFilter
	var err error

	if criteria.Date, err = dateFlag(flags, "date"); err != nil {
		return criteria, err
	}
	if criteria.StartDate, err = dateFlag(flags, "start-date"); err != nil {
		return criteria, err
	}
	if criteria.EndDate, err = dateFlag(flags, "end-date"); err != nil {
		return criteria, err
	}
	if criteria.DistanceMin, err = floatFlag(flags, "min-distance"); err != nil {
		return criteria, err
	}
	if criteria.DistanceMax, err = floatFlag(flags, "max-distance"); err != nil {
		return criteria, err
	}
	if criteria.VelocityMin, err = floatFlag(flags, "min-velocity"); err != nil {
		return criteria, err
	}
	if criteria.VelocityMax, err = floatFlag(flags, "max-velocity"); err != nil {
		return criteria, err
	}
	if criteria.DiameterMin, err = floatFlag(flags, "min-diameter"); err != nil {
		return criteria, err
	}
	if criteria.DiameterMax, err = floatFlag(flags, "max-diameter"); err != nil {
		return criteria, err
	}

	// Both are presence flags; an explicit false applies no filter.
	if hazardous, _ := flags.GetBool("hazardous"); hazardous {
		criteria.Hazardous = &hazardous
	} else if notHazardous, _ := flags.GetBool("not-hazardous"); notHazardous {
		criteria.Hazardous = new(bool)
	}
	return criteria, nil
}

func dateFlag(flags *pflag.FlagSet, name string) (*time.Time, error) {
	if !flags.Changed(name) {
		return nil, nil
	}
	raw, err := flags.GetString(name)
	if err != nil {
		return nil, err
	}
	date, err := time.Parse(dateLayout, strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("invalid --%s %q: expected YYYY-MM-DD", name, raw)
	}
	return &date, nil
}

func floatFlag(flags *pflag.FlagSet, name string) (*float64, error) {
	if !flags.Changed(name) {
		return nil, nil
	}
	value, err := flags.GetFloat64(name)
	if err != nil {
		return nil, err
	}
	return &value, nil
}
