package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/patchplan/pkg/catalog"
)

// catalogCommand creates the catalog command.
func (c *CLI) catalogCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List the prototypes of the active catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, _, err := c.loadCatalog()
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(cat)
			}
			printCatalog(os.Stdout, cat)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the catalog as JSON")
	return cmd
}

// printCatalog writes one table per prototype family.
func printCatalog(w io.Writer, cat *catalog.Catalog) {
	units := make([][]string, len(cat.Units))
	for i, u := range cat.Units {
		units[i] = []string{u.Name, fmt.Sprintf("%dx%d", u.Width, u.Height), ftoa(u.Radius), strconv.Itoa(u.ModuleSlots), yesNo(u.FluidInput)}
	}
	transporters := make([][]string, len(cat.Transporters))
	for i, t := range cat.Transporters {
		transporters[i] = []string{t.Name, dash(t.Underground), strconv.Itoa(t.MaxUnderground)}
	}
	relays := make([][]string, len(cat.Relays))
	for i, r := range cat.Relays {
		relays[i] = []string{r.Name, strconv.Itoa(r.Size), ftoa(r.SupplyDistance), ftoa(r.WireReach)}
	}
	boosters := make([][]string, len(cat.Boosters))
	for i, b := range cat.Boosters {
		boosters[i] = []string{b.Name, strconv.Itoa(b.Size), ftoa(b.SupplyDistance), strconv.Itoa(b.ModuleSlots)}
	}
	deposits := make([][]string, len(cat.Deposits))
	for i, d := range cat.Deposits {
		deposits[i] = []string{d.Name, dash(d.Glyph), yesNo(d.RequiresFluid)}
	}
	modules := make([]string, len(cat.Modules))
	for i, m := range cat.Modules {
		modules[i] = m.Name
	}

	fmt.Fprintln(w, catalogTable("Units", []string{"Name", "Size", "Radius", "Slots", "Fluid"}, units))
	fmt.Fprintln(w, catalogTable("Transporters", []string{"Name", "Underground", "Reach"}, transporters))
	fmt.Fprintln(w, catalogTable("Relays", []string{"Name", "Size", "Supply", "Wire"}, relays))
	fmt.Fprintln(w, catalogTable("Boosters", []string{"Name", "Size", "Supply", "Slots"}, boosters))
	fmt.Fprintln(w, catalogTable("Deposits", []string{"Name", "Glyph", "Fluid"}, deposits))
	fmt.Fprintln(w, StyleTitle.Render("Modules")+" "+StyleValue.Render(strings.Join(modules, ", ")))
	fmt.Fprintln(w, StyleTitle.Render("Qualities")+" "+StyleValue.Render(strings.Join(cat.Qualities, ", ")))
}

func catalogTable(title string, headers []string, rows [][]string) string {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle.Padding(0, 1)
			case col == 0:
				return lipgloss.NewStyle().Foreground(colorCyan).Padding(0, 1)
			}
			return lipgloss.NewStyle().Foreground(colorWhite).Padding(0, 1)
		})
	return StyleTitle.Render(title) + "\n" + t.Render()
}

func ftoa(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return iconSuccess
	}
	return ""
}
