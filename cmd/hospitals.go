package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/abhisek/carescope/internal/directory"
)

var hospitalsCmd = &cobra.Command{
	Use:   "hospitals",
	Short: "List nearby hospitals by specialty",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		specialty, _ := cmd.Flags().GetString("specialty")
		jsonOutput, _ := cmd.Flags().GetBool("json")

		list, err := directory.Filter(specialty)
		if err != nil {
			return err
		}
		if jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(list)
		}

		if len(list) == 0 {
			fmt.Println("No hospitals found for this specialty.")
			return nil
		}

		name := color.New(color.Bold)
		stars := color.New(color.FgYellow)
		dim := color.New(color.FgHiBlack)
		for i, h := range list {
			if i > 0 {
				fmt.Println()
			}
			_, _ = name.Printf("%s", h.Name)
			_, _ = dim.Printf("  %.1f mi\n", h.DistanceMi)
			_, _ = stars.Printf("  %s", directory.Stars(h.Rating))
			fmt.Printf(" %.1f\n", h.Rating)
			fmt.Printf("  %s\n", h.Address)
			fmt.Printf("  %s\n", h.Phone)
			labels := make([]string, len(h.Specialties))
			for j, s := range h.Specialties {
				labels[j] = directory.Label(s)
			}
			_, _ = dim.Printf("  %s\n", strings.Join(labels, ", "))
		}
		return nil
	},
}

func init() {
	hospitalsCmd.Flags().StringP("specialty", "s", directory.All, "Filter by specialty: all, thyroid, lung or brain")
	hospitalsCmd.Flags().Bool("json", false, "Print the list as JSON")
}
