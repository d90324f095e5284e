// Package report renders optimization results for people: coloured console
// summaries with tables, and JSON report files.
package report

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/napolitain/solver-simco/internal/models"
	"github.com/napolitain/solver-simco/internal/objective"
	"github.com/napolitain/solver-simco/internal/search"
)

// Printer writes human readable reports
type Printer struct {
	w     io.Writer
	title *color.Color
	info  *color.Color
	good  *color.Color
	bad   *color.Color
}

// NewPrinter creates a printer writing to w
func NewPrinter(w io.Writer) *Printer {
	return &Printer{
		w:     w,
		title: color.New(color.FgCyan, color.Bold),
		info:  color.New(color.FgYellow),
		good:  color.New(color.FgGreen, color.Bold),
		bad:   color.New(color.FgRed, color.Bold),
	}
}

func (p *Printer) money(v float64) *color.Color {
	if v > 0 {
		return p.good
	}
	return p.bad
}

// Statistic prints one simulated configuration: settings, per-resource table and totals
func (p *Printer) Statistic(label string, stat *models.ProductionStatistic) error {
	cfg := stat.Configuration
	p.title.Fprintf(p.w, "\n%s\n", label)
	p.info.Fprintf(p.w, "Buildings: %d on %d places | admin overhead %.2f%% | speed %.2f | contracts %v\n",
		cfg.TotalBuildings(), cfg.UsedPlaces(), cfg.AdminOverhead(), cfg.Speed(), cfg.InputsFromContracts)
	if !stat.PriceTimestamp.IsZero() {
		p.info.Fprintf(p.w, "Prices from %s\n", stat.PriceTimestamp.Format("2006-01-02 15:04"))
	}
	fmt.Fprintln(p.w)

	table := tablewriter.NewTable(p.w,
		tablewriter.WithHeader([]string{"Resource", "Level", "Produced/h", "Consumed/h", "Bought/h", "Sold/h",
			"Cost", "Price", "Revenue/h", "Expense/h", "Profit/h", "Share"}),
	)
	for _, id := range stat.Order {
		st := stat.Resources[id]
		row := []string{
			string(id),
			strconv.Itoa(st.BuildingLevel),
			num(st.AmountProducedPerHour),
			num(st.AmountConsumedPerHour),
			num(st.AmountBoughtPerHour()),
			num(st.UnitsToSellPerHour()),
			num(st.AveragedSourcingCost),
			num(st.ExchangePrice),
			num(st.RevenuePerHour),
			num(st.ExpensePerHour),
			num(st.ProfitPerHour),
			fmt.Sprintf("%.1f%%", st.PercentageOfProfit),
		}
		if err := table.Append(row); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}

	total := stat.TotalProfitPerHour
	p.money(total).Fprintf(p.w, "\nProfit: %.2f/h | %.2f/day | %.2f/week | %.2f/month\n",
		total, stat.TotalProfitPerDay(), stat.TotalProfitPerWeek(), stat.TotalProfitPerMonth())
	fmt.Fprintf(p.w, "Revenue %.2f/h, expenses %.2f/h\n", stat.TotalRevenuePerHour, stat.TotalExpensePerHour)

	if h := stat.History; h != nil {
		fmt.Fprintf(p.w, "History over %d samples: avg %.2f/h, min %.2f/h, max %.2f/h\n",
			h.Samples(), h.AvgProfitPerHour, h.MinProfitPerHour, h.MaxProfitPerHour)
		p.info.Fprintf(p.w, "Loss in %d of %d samples (%.1f%%)\n",
			h.CountIterationsWithLoss, h.Samples(), h.LossPercentage)
	}
	return nil
}

// Restarts prints one row per restart that produced a result, best first
func (p *Printer) Restarts(runs []*search.Result, obj models.Objective) error {
	p.title.Fprintf(p.w, "\nRestarts (%s)\n\n", obj)

	ranked := make([]*search.Result, 0, len(runs))
	for _, r := range runs {
		if r.Best() != nil {
			ranked = append(ranked, r)
		}
	}
	sortRuns(ranked, obj)

	table := tablewriter.NewTable(p.w,
		tablewriter.WithHeader([]string{"#", "Seed", "Trials", "Accepted", "Failed", "Best trial", "Profit/h", "Avg/h", "Loss %", "Duration"}),
	)
	for i, r := range ranked {
		best := r.Best()
		avg, loss := "-", "-"
		if best.History != nil {
			avg = num(best.History.AvgProfitPerHour)
			loss = fmt.Sprintf("%.1f", best.History.LossPercentage)
		}
		row := []string{
			strconv.Itoa(i + 1),
			strconv.FormatInt(r.Seed, 10),
			strconv.Itoa(r.Trials),
			strconv.Itoa(len(r.Accepted)),
			strconv.Itoa(r.Failed),
			strconv.Itoa(best.Trial),
			num(best.TotalProfitPerHour),
			avg,
			loss,
			r.Duration.Round(time.Millisecond).String(),
		}
		if err := table.Append(row); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}
	if len(ranked) == 0 {
		p.bad.Fprintln(p.w, "No restart produced a result")
	}
	return nil
}

// Sweep prints a level sweep of a single resource
func (p *Printer) Sweep(id models.ResourceID, results []*models.ProductionStatistic, best *models.ProductionStatistic, obj models.Objective) error {
	p.title.Fprintf(p.w, "\nLevel sweep for %s (%s)\n\n", id, obj)
	table := tablewriter.NewTable(p.w,
		tablewriter.WithHeader([]string{"Level", "Profit/h", "Profit/day", "Score", "Best"}),
	)
	for _, stat := range results {
		mark := ""
		if stat == best {
			mark = "*"
		}
		row := []string{
			strconv.Itoa(stat.Configuration.BuildingsPerResource[id]),
			num(stat.TotalProfitPerHour),
			num(stat.TotalProfitPerDay()),
			num(objective.Score(stat, obj)),
			mark,
		}
		if err := table.Append(row); err != nil {
			return err
		}
	}
	return table.Render()
}

func sortRuns(runs []*search.Result, obj models.Objective) {
	slices.SortStableFunc(runs, func(a, b *search.Result) int {
		return objective.Compare(a.Best(), b.Best(), obj)
	})
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
