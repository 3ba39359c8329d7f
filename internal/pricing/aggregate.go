package pricing

import (
	"sort"

	"github.com/guttosm/mandipulse/internal/domain/models"
)

// dateBucket accumulates modal prices for one normalized date.
// A bucket only exists once a record was added, so count >= 1.
type dateBucket struct {
	sum   float64
	count int
}

// GroupByDateAverage averages modal_price per arrival date and returns one
// point per distinct date, sorted ascending.
//
// Prices are parsed fail-open (see models.PriceRecord.ModalPrice): a missing or
// unparseable price adds 0 to the sum and still counts. Records with a date
// that cannot be normalized are skipped. Missing dates are not filled in.
func GroupByDateAverage(records []models.PriceRecord) []models.PricePoint {
	buckets := make(map[string]*dateBucket)
	for _, r := range records {
		iso, err := NormalizeDate(r.ArrivalDate())
		if err != nil {
			continue
		}
		b, ok := buckets[iso]
		if !ok {
			b = &dateBucket{}
			buckets[iso] = b
		}
		b.sum += r.ModalPrice()
		b.count++
	}

	points := make([]models.PricePoint, 0, len(buckets))
	for date, b := range buckets {
		points = append(points, models.PricePoint{Date: date, ModalAvg: b.sum / float64(b.count)})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date < points[j].Date })
	return points
}
