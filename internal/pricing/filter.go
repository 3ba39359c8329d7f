package pricing

import "github.com/guttosm/mandipulse/internal/domain/models"

// FilterByRange keeps the records whose normalized arrival date falls inside
// the inclusive window [from, to]. Either bound may be empty.
//
// With both bounds empty the input slice itself is returned. Otherwise the
// surviving records keep their input order. Records whose date cannot be
// normalized are dropped, since they cannot be placed in the window.
func FilterByRange(records []models.PriceRecord, from, to string) []models.PriceRecord {
	if from == "" && to == "" {
		return records
	}

	out := make([]models.PriceRecord, 0, len(records))
	for _, r := range records {
		iso, err := NormalizeDate(r.ArrivalDate())
		if err != nil {
			continue
		}
		if (from == "" || iso >= from) && (to == "" || iso <= to) {
			out = append(out, r)
		}
	}
	return out
}
