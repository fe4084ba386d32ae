package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/rs/zerolog"

	"github.com/ammlab/dexsim/internal/logger"
)

// Report renders simulation results as standalone HTML charts in a single
// output directory.
type Report struct {
	outDir string
	logger zerolog.Logger
}

// New creates a report writer targeting outDir. The directory is created on
// first render.
func New(outDir string) *Report {
	return &Report{
		outDir: outDir,
		logger: logger.GetForComponent("report"),
	}
}

// PriceSeries renders the reference price path.
func (r *Report) PriceSeries(refPrices []float64) error {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title: "Reference Price Series",
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Timestep"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Price"}),
	)
	line.SetXAxis(stepLabels(len(refPrices))).
		AddSeries("Reference Price", lineData(refPrices))

	return r.render(line, "reference_prices.html")
}

// PriceComparison renders the AMM price trace against the reference path.
func (r *Report) PriceComparison(ammPrices, refPrices []float64) error {
	n := len(refPrices)
	if len(ammPrices) > n {
		n = len(ammPrices)
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title: "AMM Price vs Reference Price",
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Timestep"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Price"}),
	)
	line.SetXAxis(stepLabels(n)).
		AddSeries("Reference Price", lineData(refPrices)).
		AddSeries("AMM Price", lineData(ammPrices))

	return r.render(line, "amm_vs_reference.html")
}

// RewardsBar renders the final cumulative reward per agent, sorted by agent
// name for a stable chart.
func (r *Report) RewardsBar(rewards map[string]float64) error {
	names := make([]string, 0, len(rewards))
	for name := range rewards {
		names = append(names, name)
	}
	sort.Strings(names)

	items := make([]opts.BarData, 0, len(names))
	for _, name := range names {
		items = append(items, opts.BarData{Value: rewards[name]})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title: "Final Agent Rewards",
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Agent"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Reward"}),
	)
	bar.SetXAxis(names).AddSeries("Reward", items)

	return r.render(bar, "rewards.html")
}

// render writes a single chart wrapped in a page to the output directory.
func (r *Report) render(chart components.Charter, filename string) error {
	if err := os.MkdirAll(r.outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create chart directory: %w", err)
	}

	path := filepath.Join(r.outDir, filename)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer f.Close()

	page := components.NewPage()
	page.AddCharts(chart)
	if err := page.Render(f); err != nil {
		return fmt.Errorf("failed to render chart %s: %w", filename, err)
	}

	r.logger.Info().Str("path", path).Msg("Chart rendered")
	return nil
}

func stepLabels(n int) []string {
	labels := make([]string, n)
	for i := range labels {
		labels[i] = fmt.Sprintf("%d", i)
	}
	return labels
}

func lineData(values []float64) []opts.LineData {
	items := make([]opts.LineData, 0, len(values))
	for _, v := range values {
		items = append(items, opts.LineData{Value: v})
	}
	return items
}
