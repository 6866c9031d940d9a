package report

import (
	"fmt"
	"strconv"

	"netgame/game"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF00FF"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FFFF")).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().Padding(0, 1)

	lossStyle = cellStyle.Foreground(lipgloss.Color("#FF0000"))

	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func number(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Series renders the per-round payoffs with their totals.
func Series(s game.Series) string {
	t := newTable("Round", "Attacker profit", "Defender loss")

	totalProfit, totalLoss := 0.0, 0.0
	for i := range s.AttackerProfits {
		t.Row(strconv.Itoa(i+1), number(s.AttackerProfits[i]), number(s.DefenderLosses[i]))
		totalProfit += s.AttackerProfits[i]
		totalLoss += s.DefenderLosses[i]
	}
	t.Row("Total", number(totalProfit), number(totalLoss))

	return lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("Payoffs"), t.String())
}

// Rounds renders what each side did per round.
func Rounds(rounds []game.Round) string {
	t := newTable("Round", "Defense", "Targets", "Hits", "Profit", "Loss")

	for _, round := range rounds {
		hits := 0
		for _, strike := range round.Strikes {
			if strike.Succeeded {
				hits++
			}
		}
		defense := round.Allocation.String()
		if defense == "" {
			defense = "-"
		}
		t.Row(
			strconv.Itoa(round.Number),
			defense,
			game.JoinKeys(round.Targets),
			fmt.Sprintf("%d/%d", hits, len(round.Strikes)),
			number(round.AttackerProfit),
			number(round.DefenderLoss),
		)
	}

	return lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("Rounds"), t.String())
}

// Edges renders the network with the number of times each edge was attacked.
func Edges(topo *game.Topology, history map[game.EdgeKey]int) string {
	t := newTable("Edge", "Value", "Attack cost", "Defense cost", "Attacks")

	edges := topo.Edges()
	for _, e := range edges {
		t.Row(e.Key().String(), number(e.Value), number(e.AttackCost), number(e.DefenseCost), strconv.Itoa(history[e.Key()]))
	}
	// Highlight edges whose attack costs more than it yields
	t.StyleFunc(func(row, col int) lipgloss.Style {
		if row == table.HeaderRow {
			return headerStyle
		}
		if row >= 0 && row < len(edges) && edges[row].Value < edges[row].AttackCost {
			return lossStyle
		}
		return cellStyle
	})

	return lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("Network"), t.String())
}
