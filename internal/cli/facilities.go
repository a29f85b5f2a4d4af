package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/restroom/internal/ingest"
	"github.com/mesh-intelligence/restroom/pkg/types"
)

// cliClient keys CLI ingests. Each invocation runs one fetch to completion.
const cliClient = "cli"

func newIngestCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest <places.json|->",
		Short: "Load discovered places as facilities",
		Long: `Ingest reads a JSON array of places and upserts each one as a facility.

Each element has latitude and longitude and optionally external_id, name,
address and rating. Places without external_id are keyed by name and
geohash. Already known places are left unchanged.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("open places: %w", err)
				}
				defer f.Close()
				r = f
			}
			places, err := ingest.DecodePlaces(r)
			if err != nil {
				return err
			}

			a, err := e.open()
			if err != nil {
				return err
			}
			defer a.Close()

			rep, err := a.Ingest.Ingest(cmd.Context(), cliClient, places)
			if err != nil {
				return err
			}
			return e.print(cmd, rep, func(w io.Writer) {
				fmt.Fprintf(w, "created %d, existing %d, skipped %d\n", rep.Created, rep.Existing, rep.Skipped)
			})
		},
	}
}

func newFacilitiesCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "facilities",
		Short: "List facilities in insertion order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := e.open()
			if err != nil {
				return err
			}
			defer a.Close()

			list, err := a.Store.Facilities(cmd.Context())
			if err != nil {
				return err
			}
			if list == nil {
				list = []*types.Facility{}
			}
			return e.print(cmd, list, func(w io.Writer) {
				for _, f := range list {
					fmt.Fprintf(w, "%s\t%s\t%.6f,%.6f\n", f.PlaceID, f.DisplayName(), f.Latitude, f.Longitude)
				}
			})
		},
	}
}

func newNearestCmd(e *env) *cobra.Command {
	var lat, lon float64
	cmd := &cobra.Command{
		Use:   "nearest --lat <deg> --lon <deg>",
		Short: "Show the nearest facility and its top code",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := e.open()
			if err != nil {
				return err
			}
			defer a.Close()

			res, ok, err := a.NearestWithTopCode(cmd.Context(), types.Coordinate{Latitude: lat, Longitude: lon})
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("no facilities")
			}
			return e.print(cmd, res, func(w io.Writer) {
				fmt.Fprintf(w, "%s (%s) %.0f m\n", res.Facility.DisplayName(), res.Facility.PlaceID, res.Meters)
				if res.TopCode != nil {
					fmt.Fprintf(w, "top code: %s (%+d)\n", res.TopCode.Code.Text, res.TopCode.NetScore)
				}
			})
		},
	}
	cmd.Flags().Float64Var(&lat, "lat", 0, "latitude in degrees")
	cmd.Flags().Float64Var(&lon, "lon", 0, "longitude in degrees")
	cmd.MarkFlagRequired("lat")
	cmd.MarkFlagRequired("lon")
	return cmd
}
