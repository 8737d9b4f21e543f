package simulation

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/mbarros/simvest/internal/models"
)

// RenderChart renders a simulation's valuation history as a PNG time
// series and archives a copy under the storage file area.
func (s *Service) RenderChart(ctx context.Context, id string) ([]byte, error) {
	sim, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(sim.ValuationHistory) < 2 {
		return nil, models.NewFault(models.FaultInvalidInput, "simulation needs at least two valuation points to chart")
	}

	png, err := renderValuationChart(sim)
	if err != nil {
		return nil, fmt.Errorf("rendering chart for %s: %w", id, err)
	}
	if err := s.storage.WriteRaw("charts", sim.ID+".png", png); err != nil {
		s.logger.Warn().Err(err).Str("simulation_id", id).Msg("Failed to archive chart")
	}
	return png, nil
}

func renderValuationChart(sim *models.Simulation) ([]byte, error) {
	xs := make([]time.Time, 0, len(sim.ValuationHistory))
	ys := make([]float64, 0, len(sim.ValuationHistory))
	for _, point := range sim.ValuationHistory {
		xs = append(xs, point.Date)
		ys = append(ys, point.Value)
	}

	series := chart.TimeSeries{
		Name:    "Portfolio Value",
		XValues: xs,
		YValues: ys,
		Style: chart.Style{
			StrokeColor: drawing.ColorFromHex("2563eb"),
			StrokeWidth: 2.0,
			FillColor:   drawing.ColorFromHex("2563eb").WithAlpha(40),
		},
	}

	graph := chart.Chart{
		Title:  fmt.Sprintf("%s (%s)", sim.Name, sim.Portfolio.BaseCurrency),
		Width:  1024,
		Height: 512,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatterWithFormat("2006-01"),
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.0f", f)
				}
				return ""
			},
		},
		Series: []chart.Series{series},
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
