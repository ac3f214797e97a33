package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/selby-botany/gadm-names/internal/country"
)

var countriesCmd = &cobra.Command{
	Use:   "countries",
	Short: "List the country reference table",
	Long: `Prints the countries.csv reference table that features are joined against,
ordered by country name. Features whose GID_0 is not listed are skipped.`,
	Args: noArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		table, err := country.Load(cfg.Reference.File, cfg.Reference.Encoding)
		if err != nil {
			return eris.Wrap(err, "countries")
		}

		continent, _ := cmd.Flags().GetString("continent")
		printCountries(cmd.OutOrStdout(), table.Records(), continent)
		return nil
	},
}

func init() {
	countriesCmd.Flags().String("continent", "", "only list countries on this continent")
	rootCmd.AddCommand(countriesCmd)
}

// printCountries renders records as a table, keeping only those on continent
// when it is non-empty.
func printCountries(w io.Writer, records []country.Record, continent string) {
	out := tablewriter.NewWriter(w)
	out.SetHeader([]string{"ISO3", "Country", "Subregion", "Continent"})
	out.SetAutoWrapText(false)

	var n int
	for _, r := range records {
		if continent != "" && !strings.EqualFold(r.Continent, continent) {
			continue
		}
		out.Append([]string{r.ISO3, r.Country, r.Subregion, r.Continent})
		n++
	}
	out.SetFooter([]string{"", "", "", fmt.Sprintf("%d countries", n)})

	out.Render()
}
