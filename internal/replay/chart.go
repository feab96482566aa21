package replay

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/claude/imperfectcoach/internal/exercise"
)

// RenderScoreChart writes an HTML line chart of per-rep form scores.
func RenderScoreChart(w io.Writer, kind exercise.Kind, reps []exercise.RepResult) error {
	x := make([]string, 0, len(reps))
	scores := make([]opts.LineData, 0, len(reps))
	for i, r := range reps {
		x = append(x, fmt.Sprintf("rep %d", i+1))
		scores = append(scores, opts.LineData{Value: r.Score})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Imperfect Coach Replay", Width: "900px", Height: "500px"}),
		charts.WithTitleOpts(opts.Title{Title: "Form scores", Subtitle: fmt.Sprintf("exercise=%s reps=%d", kind, len(reps))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Min: 0, Max: 100, Name: "score"}),
	)
	line.SetXAxis(x).
		AddSeries("score", scores,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		)

	if err := line.Render(w); err != nil {
		return fmt.Errorf("rendering chart: %w", err)
	}
	return nil
}
