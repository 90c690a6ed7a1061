package pricing

import (
	"fmt"
	"math"
	"strings"

	"github.com/Ramsey-B/fern/pkg/models"
)

// BucketCount is the fixed number of equal-width price bands.
const BucketCount = 5

// Buckets divides [min, max] into BucketCount equal-width bands. Each band's
// upper bound is the next band's lower bound; the last band closes at max.
// With min == max every band collapses to the same zero-width point. No
// listings means no buckets.
func Buckets(bounds *models.PriceBounds) []models.PriceBucket {
	if bounds == nil || bounds.Count == 0 || bounds.Min == nil || bounds.Max == nil {
		return nil
	}

	min, max := *bounds.Min, *bounds.Max
	step := (max - min) / BucketCount

	buckets := make([]models.PriceBucket, 0, BucketCount)
	for i := 0; i < BucketCount; i++ {
		lo := min + float64(i)*step
		hi := min + float64(i+1)*step
		if i == BucketCount-1 {
			hi = max
		}
		buckets = append(buckets, models.PriceBucket{
			Min:   lo,
			Max:   hi,
			Label: fmt.Sprintf("%s - %s", FormatCurrency(lo), FormatCurrency(hi)),
		})
	}

	return buckets
}

// FormatCurrency renders a price as "$1,250,000": rounded to whole dollars
// with thousands separators.
func FormatCurrency(v float64) string {
	n := int64(math.Round(v))
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}

	digits := fmt.Sprintf("%d", n)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}

	return sign + "$" + b.String()
}
