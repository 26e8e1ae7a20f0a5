package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"

	"github.com/user/twinsim/internal/score"
	"github.com/user/twinsim/internal/timeline"
	"github.com/user/twinsim/internal/types"
)

var (
	colorGreen  = lipgloss.Color("#10b981")
	colorBlue   = lipgloss.Color("#3b82f6")
	colorAmber  = lipgloss.Color("#f59e0b")
	colorRed    = lipgloss.Color("#ef4444")
	colorMuted  = lipgloss.Color("#6b7280")
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#8b5cf6"))
	mutedStyle  = lipgloss.NewStyle().Foreground(colorMuted)
)

func bandStyle(b score.Band) lipgloss.Style {
	switch b {
	case score.BandHighlyCompatible:
		return lipgloss.NewStyle().Bold(true).Foreground(colorGreen)
	case score.BandCompatible:
		return lipgloss.NewStyle().Foreground(colorBlue)
	case score.BandModeratelyCompatible:
		return lipgloss.NewStyle().Foreground(colorAmber)
	case score.BandNotCompatible:
		return lipgloss.NewStyle().Foreground(colorRed)
	default:
		return mutedStyle
	}
}

func toneStyle(t score.Tone) lipgloss.Style {
	switch t {
	case score.ToneWarm:
		return lipgloss.NewStyle().Foreground(colorGreen)
	case score.TonePositive:
		return lipgloss.NewStyle().Foreground(colorBlue)
	case score.ToneCautious:
		return lipgloss.NewStyle().Foreground(colorAmber)
	default:
		return lipgloss.NewStyle().Foreground(colorRed)
	}
}

func fondness(level int) string {
	return toneStyle(score.FondnessTone(level)).Render(fmt.Sprintf("%d", level))
}

// simulationView is the structured form of `sim show -o json|yaml`.
type simulationView struct {
	Simulation     types.Simulation      `json:"simulation" yaml:"simulation"`
	Classification score.Classification  `json:"classification" yaml:"classification"`
	Timeline       []types.FondnessPoint `json:"timeline" yaml:"timeline"`
}

func newSimulationView(sim types.Simulation) simulationView {
	return simulationView{
		Simulation:     sim,
		Classification: score.Classify(sim.CompatibilityScore),
		Timeline:       timeline.Build(sim),
	}
}

func writeStructured(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}

func renderSummary(w io.Writer, sim types.Simulation) {
	c := score.Classify(sim.CompatibilityScore)
	scoreText := "-"
	if sim.CompatibilityScore != nil {
		scoreText = fmt.Sprintf("%.0f", *sim.CompatibilityScore)
	}
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%s & %s", sim.Participant1, sim.Participant2)))
	fmt.Fprintf(w, "Simulation: %s\n", sim.ID)
	fmt.Fprintf(w, "Status:     %s\n", sim.Status)
	fmt.Fprintf(w, "Score:      %s (%s)\n", scoreText, bandStyle(c.Band).Render(string(c.Band)))
	if sim.Rating != "" {
		fmt.Fprintf(w, "Rating:     %s\n", sim.Rating)
	}
	if sim.Error != "" {
		fmt.Fprintf(w, "Error:      %s\n", sim.Error)
	}
}

// renderSimulation writes the full human-readable report: summary, every
// exchange with the running fondness of both participants, the daily close
// and the final assessments.
func renderSimulation(w io.Writer, sim types.Simulation) error {
	renderSummary(w, sim)

	points := timeline.Build(sim)
	if len(points) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("\nNo exchanges yet."))
		return nil
	}

	p := 0
	for di, day := range sim.Days {
		t := newTable("EVENT", "SENDER", "MESSAGE", strings.ToUpper(sim.Participant1), strings.ToUpper(sim.Participant2))
		for si, session := range day.Sessions {
			if session.Time != "" {
				t.Row("", mutedStyle.Render("texting, "+session.Time), "", "", "")
			}
			for ei, ex := range session.Exchanges {
				t.Row(exchangeRow(types.NewEventID(di, types.KindSession, si, ei), ex, points[p])...)
				p++
			}
		}
		for ai, activity := range day.Activities {
			t.Row("", mutedStyle.Render("activity: "+activity.Name), "", "", "")
			for ei, ex := range activity.Interactions {
				t.Row(exchangeRow(types.NewEventID(di, types.KindActivity, ai, ei), ex, points[p])...)
				p++
			}
		}
		fmt.Fprintln(w)
		fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("Day %d", day.Number)))
		fmt.Fprintln(w, t.String())
	}

	t := newTable("DAY", strings.ToUpper(sim.Participant1), strings.ToUpper(sim.Participant2))
	for _, pt := range timeline.DailyClose(points) {
		t.Row(fmt.Sprintf("%d", pt.Day), fondness(pt.Person1Fondness), fondness(pt.Person2Fondness))
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, headerStyle.Render("Fondness by day"))
	fmt.Fprintln(w, t.String())

	renderAssessments(w, sim)
	return nil
}

// newTable measures cells by display width, so coloured values line up.
func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(mutedStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Headers(headers...)
}

func exchangeRow(id types.EventID, ex types.Exchange, pt types.FondnessPoint) []string {
	return []string{string(id), ex.Sender, truncate(ex.Message, 60),
		fondness(pt.Person1Fondness), fondness(pt.Person2Fondness)}
}

func renderAssessments(w io.Writer, sim types.Simulation) {
	if len(sim.FinalAssessments) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, headerStyle.Render("Final assessments"))
		names := make([]string, 0, len(sim.FinalAssessments))
		for name := range sim.FinalAssessments {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			a := sim.FinalAssessments[name]
			level := "-"
			if a.FinalFondness != nil {
				level = fondness(*a.FinalFondness)
			}
			fmt.Fprintf(w, "%s (%s): %s\n", name, level, a.Statement)
		}
	}
	if len(sim.DateSuggestions) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, headerStyle.Render("Date suggestions"))
		for _, s := range sim.DateSuggestions {
			fmt.Fprintf(w, "  - %s\n", s)
		}
	}
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
