package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/idumahg/NearEarthObjects/internal/domain"
)

const inspectShortDescription = "Inspect a single NEO by primary designation or name"

// notFoundMessage is printed when inspect finds nothing.
const notFoundMessage = "No matching NEOs exist in the database."

func inspectCommand(root *RootCommand) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: inspectShortDescription,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pdes, _ := cmd.Flags().GetString("pdes")
			name, _ := cmd.Flags().GetString("name")
			verbose, _ := cmd.Flags().GetBool("verbose")

			db, err := root.openDatabase(cmd.Context())
			if err != nil {
				return err
			}

			var neo *domain.NearEarthObject
			if cmd.Flags().Changed("pdes") {
				neo, err = db.GetNEOByDesignation(cmd.Context(), pdes)
				if err != nil {
					return err
				}
			} else {
				neo = db.GetNEOByName(name)
			}
			if neo == nil {
				fmt.Fprintln(root.stderr, notFoundMessage)
				return nil
			}

			fmt.Fprintln(root.stdout, neo)
			if verbose {
				for _, approach := range neo.Approaches {
					fmt.Fprintf(root.stdout, "- %s\n", approach)
				}
			}
			return nil
		},
	}
	cmd.Flags().String("pdes", "", "primary designation of the NEO")
	cmd.Flags().String("name", "", "IAU name of the NEO")
	cmd.Flags().BoolP("verbose", "v", false, "also print the NEO's close approaches")
	cmd.MarkFlagsMutuallyExclusive("pdes", "name")
	cmd.MarkFlagsOneRequired("pdes", "name")
	return cmd
}
