package export

import (
	"fmt"
	"strings"

	"fieldbook/internal/models"
)

// NoDataReport is the report text for an empty field list.
const NoDataReport = "No data available for report"

// StatusCount is one row of the status distribution.
type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// Summary aggregates a list of fields.
type Summary struct {
	TotalFields        int           `json:"totalFields"`
	AveragePrice       float64       `json:"averagePricePerHour"`
	TotalCapacity      int           `json:"totalCapacity"`
	StatusDistribution []StatusCount `json:"statusDistribution"`
}

// Summarize computes the summary. Statuses keep the order they are first seen in.
func Summarize(fields []models.Field) Summary {
	s := Summary{TotalFields: len(fields)}
	if len(fields) == 0 {
		return s
	}

	index := map[string]int{}
	var totalPrice float64
	for _, f := range fields {
		totalPrice += f.PricePerHour
		s.TotalCapacity += f.Capacity

		status := string(f.Status)
		if status == "" {
			status = "Unknown"
		}
		i, ok := index[status]
		if !ok {
			i = len(s.StatusDistribution)
			index[status] = i
			s.StatusDistribution = append(s.StatusDistribution, StatusCount{Status: status})
		}
		s.StatusDistribution[i].Count++
	}
	s.AveragePrice = totalPrice / float64(len(fields))
	return s
}

func (s Summary) String() string {
	if s.TotalFields == 0 {
		return NoDataReport
	}

	var b strings.Builder
	b.WriteString("Football Fields Summary Report\n")
	b.WriteString("==============================\n")
	fmt.Fprintf(&b, "Total fields: %d\n", s.TotalFields)
	fmt.Fprintf(&b, "Average price per hour: $%.2f\n", s.AveragePrice)
	fmt.Fprintf(&b, "Total capacity: %d\n", s.TotalCapacity)
	b.WriteString("\nStatus Distribution:")
	for _, sc := range s.StatusDistribution {
		fmt.Fprintf(&b, "\n- %s: %d", sc.Status, sc.Count)
	}
	return b.String()
}

// SummaryReport renders the plain text summary of fields.
func SummaryReport(fields []models.Field) string {
	return Summarize(fields).String()
}
