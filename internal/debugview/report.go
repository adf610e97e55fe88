package debugview

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/banshee-data/ledgewalk/internal/locomotion"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// stateLevel maps motion states onto a small numeric axis for plotting.
var stateLevel = map[locomotion.MotionState]int{
	locomotion.OnGround:  0,
	locomotion.OnLanding: 1,
	locomotion.OnFall:    2,
}

// RenderReport writes an HTML page with the run's top-down path, height
// and state over time, and ledge counts per frame.
func RenderReport(w io.Writer, title string, samples []Sample) error {
	if len(samples) == 0 {
		return fmt.Errorf("no samples to report")
	}

	page := components.NewPage()
	page.PageTitle = title
	page.AddCharts(
		pathChart(title, samples),
		heightChart(samples),
		ledgeChart(samples),
	)
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}

// WriteReport renders the report to path, creating parent directories.
func WriteReport(path, title string, samples []Sample) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create report dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	if err := RenderReport(f, title, samples); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func pathChart(title string, samples []Sample) *charts.Scatter {
	ground := make([]opts.ScatterData, 0, len(samples))
	air := make([]opts.ScatterData, 0)
	for _, s := range samples {
		d := opts.ScatterData{Value: []interface{}{s.Position.X, s.Position.Z, s.Frame}}
		if s.State == locomotion.OnFall {
			air = append(air, d)
		} else {
			ground = append(ground, d)
		}
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "900px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: fmt.Sprintf("frames=%d", len(samples))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "X (m)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Z (m)", NameLocation: "middle", NameGap: 30}),
	)
	scatter.AddSeries("supported", ground, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 4}))
	scatter.AddSeries("falling", air, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 4}))
	return scatter
}

func heightChart(samples []Sample) *charts.Line {
	frames := make([]int, len(samples))
	heights := make([]opts.LineData, len(samples))
	states := make([]opts.LineData, len(samples))
	for i, s := range samples {
		frames[i] = s.Frame
		heights[i] = opts.LineData{Value: s.Position.Y}
		states[i] = opts.LineData{Value: stateLevel[s.State], Name: string(s.State)}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "900px", Height: "400px"}),
		charts.WithTitleOpts(opts.Title{Title: "Height and state", Subtitle: "state: 0 ground, 1 landing, 2 falling"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Frame"}),
	)
	line.SetXAxis(frames).
		AddSeries("y", heights).
		AddSeries("state", states, charts.WithLineChartOpts(opts.LineChart{Step: "end"}))
	return line
}

func ledgeChart(samples []Sample) *charts.Line {
	frames := make([]int, len(samples))
	upper := make([]opts.LineData, len(samples))
	lower := make([]opts.LineData, len(samples))
	for i, s := range samples {
		frames[i] = s.Frame
		upper[i] = opts.LineData{Value: s.Upper}
		lower[i] = opts.LineData{Value: s.Lower, Name: string(s.Decision)}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "900px", Height: "400px"}),
		charts.WithTitleOpts(opts.Title{Title: "Classified ledges"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Frame"}),
	)
	line.SetXAxis(frames).
		AddSeries("upper", upper, charts.WithLineChartOpts(opts.LineChart{Step: "end"})).
		AddSeries("lower", lower, charts.WithLineChartOpts(opts.LineChart{Step: "end"}))
	return line
}
