package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	tripper "github.com/koscakluka/tripper/core"
	"github.com/koscakluka/tripper/core/maps"
	"github.com/spf13/cobra"
)

var (
	headingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

const planLongDesc string = `Generate an itinerary for a trip and list the places it mentions.

Either --destination or --details is required. Duration, budget and party
size are left out of the request unless they are above 1 day, 100 and
1 person.

Examples:
  tripper plan --destination Kyoto --days 4
  tripper plan --details "a quiet week by the sea" --budget 2000 --currency EUR --map trip.html`

type planCommander struct {
	constraints tripper.TripConstraints
	mapFile     string
	mapOptions  []maps.RenderOption
	raw         bool
}

func newPlanCmd(flags *rootFlags) *cobra.Command {
	cmder := &planCommander{}

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Generate a travel itinerary",
		Long:  planLongDesc,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer a.Close()
			cmder.mapOptions = a.MapOptions
			return cmder.run(cmd, a.Planner)
		},
	}

	c := &cmder.constraints
	cmd.Flags().StringVar(&c.Destination, "destination", "", "Where you are going")
	cmd.Flags().StringVar(&c.Details, "details", "", "Free-form description of the trip")
	cmd.Flags().StringVar(&c.Interests, "interests", "", "What you like to do")
	cmd.Flags().IntVar(&c.DurationDays, "days", 0, "Number of days")
	cmd.Flags().Float64Var(&c.Budget, "budget", 0, "Total budget")
	cmd.Flags().StringVar(&c.Currency, "currency", tripper.DefaultCurrency, "Budget currency (USD, EUR, GBP, JPY, INR, AUD)")
	cmd.Flags().StringVar(&c.TimePeriod, "period", "", "When you are travelling")
	cmd.Flags().IntVar(&c.PartySize, "people", 0, "Number of people")
	cmd.Flags().StringVarP(&c.ResponseLanguage, "language", "l", tripper.DefaultLanguage, "Language of the itinerary")
	cmd.Flags().StringVar(&cmder.mapFile, "map", "", "Write a map of the places to this HTML file")
	cmd.Flags().BoolVar(&cmder.raw, "raw", false, "Print the itinerary without markdown rendering")

	return cmd
}

func (c *planCommander) run(cmd *cobra.Command, planner *tripper.Planner) error {
	out := cmd.OutOrStdout()

	currency, ok := tripper.LookupCurrency(c.constraints.Currency)
	if !ok {
		return fmt.Errorf("unknown currency %q", c.constraints.Currency)
	}
	c.constraints.Currency = currency.Code
	c.constraints.Budget = currency.Clamp(c.constraints.Budget)

	plan, err := planner.Generate(cmd.Context(), c.constraints)
	if err != nil {
		fmt.Fprintln(out, errorStyle.Render("✗ "+tripper.ErrorMessage(err)))
		return err
	}

	itinerary := plan.Itinerary
	if !c.raw {
		itinerary = renderMarkdown(plan.Itinerary)
	}
	fmt.Fprintln(out, itinerary)

	fmt.Fprintln(out, headingStyle.Render("Places"))
	if len(plan.Places) == 0 {
		fmt.Fprintln(out, mutedStyle.Render("  none found"))
	}
	for _, place := range plan.Places {
		fmt.Fprintln(out, "  • "+place)
	}

	if c.mapFile == "" {
		return nil
	}
	return c.writeMap(cmd, planner, plan.Places, out)
}

func (c *planCommander) writeMap(cmd *cobra.Command, planner *tripper.Planner, places tripper.PlaceList, out io.Writer) error {
	model, ok := planner.BuildMap(cmd.Context(), places)
	if !ok {
		fmt.Fprintln(out, mutedStyle.Render("Not enough places could be located to draw a map."))
		return nil
	}

	f, err := os.Create(c.mapFile)
	if err != nil {
		return fmt.Errorf("creating map file: %w", err)
	}
	defer f.Close()

	if err := maps.Render(f, *model, c.mapOptions...); err != nil {
		return err
	}

	summary := fmt.Sprintf("Map of %s with %d places written to %s", model.Anchor.Name, len(model.Markers), c.mapFile)
	if model.Anchor.Timezone != "" {
		summary += fmt.Sprintf(" (%s)", model.Anchor.Timezone)
	}
	fmt.Fprintln(out, headingStyle.Render(summary))
	return nil
}

// renderMarkdown falls back to the plain text when rendering fails.
func renderMarkdown(content string) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return content
	}
	rendered, err := r.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(rendered, "\n")
}
