package output

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/torosent/variantbench/internal/metrics"
)

// PrintSummaryTable renders the endpoints side by side. All times are in ms.
func PrintSummaryTable(w io.Writer, stats ...metrics.EndpointStats) {
	if len(stats) == 0 {
		return
	}
	fmt.Fprintln(w, "\nSummary:")

	table := tablewriter.NewTable(w,
		tablewriter.WithHeader([]string{
			"Endpoint", "Success", "Rate",
			"Avg", "Median", "Min", "Max", "StdDev", "P95", "P99",
		}),
	)

	for _, s := range stats {
		row := []string{
			s.EndpointName,
			fmt.Sprintf("%d/%d", s.SuccessfulRequests, s.TotalRequests),
			fmt.Sprintf("%.1f%%", s.SuccessRate),
		}
		if s.SuccessfulRequests > 0 {
			row = append(row,
				fmt.Sprintf("%.2f", s.AvgLatencyMs),
				fmt.Sprintf("%.2f", s.MedianLatencyMs),
				fmt.Sprintf("%.2f", s.MinLatencyMs),
				fmt.Sprintf("%.2f", s.MaxLatencyMs),
				fmt.Sprintf("%.2f", s.StdDevMs),
				fmt.Sprintf("%.2f", s.P95LatencyMs),
				fmt.Sprintf("%.2f", s.P99LatencyMs),
			)
		} else {
			row = append(row, "-", "-", "-", "-", "-", "-", "-")
		}
		table.Append(row)
	}

	table.Render()
}
