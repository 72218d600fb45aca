// Package analysis computes yearly statistics over the ledger: per
// category monthly series, spending spikes that stand out from the
// category's usual level, and slow drifts up or down across the year.
package analysis

import (
	"fmt"
	"math"
	"sort"

	"github.com/Philou1985/SLC-APP-BUDGET/internal/core"
)

// Series holds one category's totals by month number (1..12), in euros.
// Magnitudes only, the caller picks the sign convention when building.
type Series map[int]float64

// SeriesByCategory sums one calendar year of transactions into per
// category monthly series. Expense series hold outflow magnitudes,
// income series hold inflows. Transfer legs never contribute.
func SeriesByCategory(transactions []core.Transaction, year int, kind core.CategoryType) map[string]Series {
	byCategory := make(map[string]Series)
	for _, tx := range transactions {
		if tx.Date.Year() != year || tx.IsTransfer() {
			continue
		}
		var value float64
		switch kind {
		case core.CategoryExpense:
			if !tx.Amount.IsNegative() {
				continue
			}
			value = tx.Amount.Abs().Euros()
		case core.CategoryIncome:
			if !tx.Amount.IsPositive() {
				continue
			}
			value = tx.Amount.Euros()
		default:
			continue
		}
		series, ok := byCategory[tx.Category]
		if !ok {
			series = make(Series)
			byCategory[tx.Category] = series
		}
		series[tx.Date.Month()] += value
	}
	return byCategory
}

// Anomaly is one month whose total stands out from the category's usual
// level.
type Anomaly struct {
	Category string
	Month    int
	Value    core.Money
	Mean     core.Money
	Kind     core.CategoryType
}

func (a Anomaly) String() string {
	label := "Spending spike"
	if a.Kind == core.CategoryIncome {
		label = "Income spike"
	}
	return fmt.Sprintf("%s for '%s' in month %02d: %s EUR (usual %s EUR)",
		label, a.Category, a.Month, a.Value, a.Mean)
}

// sensitivity sets the anomaly threshold at mean + 1.5 standard
// deviations.
const sensitivity = 1.5

// DetectAnomalies flags the months of each series that exceed the
// category's mean by more than 1.5 standard deviations. Categories with
// fewer than four active months, or with no spread at all, are skipped.
func DetectAnomalies(byCategory map[string]Series, kind core.CategoryType) []Anomaly {
	var anomalies []Anomaly
	for category, series := range byCategory {
		values := activeValues(series)
		if len(values) < 4 {
			continue
		}
		mean := meanOf(values)
		stdev := stdevOf(values, mean)
		if stdev == 0 {
			continue
		}
		threshold := mean + sensitivity*stdev

		for month, value := range series {
			if value > threshold {
				anomalies = append(anomalies, Anomaly{
					Category: category,
					Month:    month,
					Value:    toMoney(value),
					Mean:     toMoney(mean),
					Kind:     kind,
				})
			}
		}
	}
	sort.Slice(anomalies, func(i, j int) bool {
		if anomalies[i].Category != anomalies[j].Category {
			return anomalies[i].Category < anomalies[j].Category
		}
		return anomalies[i].Month < anomalies[j].Month
	})
	return anomalies
}

// Trend is a sustained drift in a category's monthly totals.
type Trend struct {
	Category     string
	MonthlySlope core.Money // change per month, signed
	Rising       bool
	MonthlyMean  core.Money
	ActiveMonths int
}

func (t Trend) String() string {
	direction := "falling"
	if t.Rising {
		direction = "rising"
	}
	return fmt.Sprintf("Trend for '%s': %s by about %s EUR/month", t.Category, direction, t.MonthlySlope.Abs())
}

// DetectTrends fits a least-squares line through each category's active
// months and reports the slope when the projected change over a year
// exceeds ten percent of the monthly mean. Six active months are the
// minimum for a fit to mean anything.
func DetectTrends(byCategory map[string]Series) []Trend {
	var trends []Trend
	for category, series := range byCategory {
		months := make([]int, 0, len(series))
		for month, value := range series {
			if value > 0 {
				months = append(months, month)
			}
		}
		if len(months) < 6 {
			continue
		}
		sort.Ints(months)

		n := float64(len(months))
		var sumX, sumY, sumXY, sumXSq float64
		for _, month := range months {
			x, y := float64(month), series[month]
			sumX += x
			sumY += y
			sumXY += x * y
			sumXSq += x * x
		}
		denom := n*sumXSq - sumX*sumX
		if denom == 0 {
			continue
		}
		slope := (n*sumXY - sumX*sumY) / denom

		annualChange := slope * 12
		mean := sumY / n
		significant := mean * 0.1
		if annualChange <= significant && annualChange >= -significant {
			continue
		}
		trends = append(trends, Trend{
			Category:     category,
			MonthlySlope: toMoney(slope),
			Rising:       annualChange > 0,
			MonthlyMean:  toMoney(mean),
			ActiveMonths: len(months),
		})
	}
	sort.Slice(trends, func(i, j int) bool { return trends[i].Category < trends[j].Category })
	return trends
}

func activeValues(series Series) []float64 {
	var values []float64
	for _, value := range series {
		if value > 0 {
			values = append(values, value)
		}
	}
	return values
}

func meanOf(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stdevOf is the sample standard deviation.
func stdevOf(values []float64, mean float64) float64 {
	if len(values) < 2 {
		return 0
	}
	var sum float64
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)-1))
}

func toMoney(euros float64) core.Money {
	return core.Money{Cents: int64(math.Round(euros * 100))}
}
