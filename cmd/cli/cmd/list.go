package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/picogrid/interceptor-simulations/pkg/simulation"
	"github.com/picogrid/interceptor-simulations/pkg/utils"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available simulations",
	Long:  `List all discovered simulations with their descriptions and whether this binary can run them`,
	RunE:  listSimulations,
}

func listSimulations(cmd *cobra.Command, args []string) error {
	// Discover available simulations
	simInfos, err := utils.DiscoverSimulations()
	if err != nil {
		return fmt.Errorf("failed to discover simulations: %w", err)
	}

	if len(simInfos) == 0 {
		fmt.Println("No simulations found")
		if names := simulation.DefaultRegistry.List(); len(names) > 0 {
			fmt.Printf("Registered without descriptors: %s\n", strings.Join(names, ", "))
		}
		return nil
	}

	// Create tabwriter for formatted output
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tVERSION\tCATEGORY\tPARAMS\tRUNNABLE\tDESCRIPTION")
	_, _ = fmt.Fprintln(w, "----\t-------\t--------\t------\t--------\t-----------")

	for _, info := range simInfos {
		runnable := "no"
		if simulation.DefaultRegistry.Has(info.Config.Name) {
			runnable = "yes"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
			info.Config.Name,
			info.Config.Version,
			info.Config.Category,
			len(info.Config.Parameters),
			runnable,
			info.Config.Description,
		)
	}

	return w.Flush()
}
