package traffic

import "fmt"

// BucketKind selects one of the two minute indexes.
type BucketKind int

const (
	// Departures indexes trips by start minute.
	Departures BucketKind = iota
	// Arrivals indexes trips by end minute.
	Arrivals
)

func (k BucketKind) String() string {
	switch k {
	case Departures:
		return "departures"
	case Arrivals:
		return "arrivals"
	default:
		return fmt.Sprintf("BucketKind(%d)", int(k))
	}
}

// MinuteBuckets is a fixed-length container of MinutesPerDay slots where slot
// i holds positions (into the owning index's trip list) of trips whose minute
// of day is i, in insertion order.
type MinuteBuckets struct {
	slots [MinutesPerDay][]int
}

func (b *MinuteBuckets) add(minute, trip int) {
	b.slots[minute] = append(b.slots[minute], trip)
}

// Slot returns the trip positions stored at minute. The slice must not be modified.
func (b *MinuteBuckets) Slot(minute int) []int {
	if minute < 0 || minute >= MinutesPerDay {
		return nil
	}
	return b.slots[minute]
}

// Count returns the number of entries across all slots.
func (b *MinuteBuckets) Count() int {
	n := 0
	for i := range b.slots {
		n += len(b.slots[i])
	}
	return n
}

// CountIn returns the number of entries in the slots covered by w.
func (b *MinuteBuckets) CountIn(w TimeWindow) int {
	n := 0
	for _, r := range w.Ranges() {
		for m := r[0]; m < r[1]; m++ {
			n += len(b.slots[m])
		}
	}
	return n
}

// MinuteBucketIndex holds an ingested trip set and its departure and arrival
// minute buckets. It is built once by Ingest and never modified afterwards, so
// any number of goroutines may query it concurrently.
type MinuteBucketIndex struct {
	trips      []TripRecord
	departures MinuteBuckets
	arrivals   MinuteBuckets
}

// Ingest builds the index. StartMinute and EndMinute are recomputed from the
// wall clock of StartedAt and EndedAt, so each trip lands in exactly one
// departures slot and one arrivals slot whatever the caller set them to.
func Ingest(trips []TripRecord) *MinuteBucketIndex {
	idx := &MinuteBucketIndex{
		trips: make([]TripRecord, len(trips)),
	}
	copy(idx.trips, trips)

	for i := range idx.trips {
		t := &idx.trips[i]
		t.StartMinute = MinuteOfDay(t.StartedAt)
		t.EndMinute = MinuteOfDay(t.EndedAt)
		idx.departures.add(t.StartMinute, i)
		idx.arrivals.add(t.EndMinute, i)
	}
	return idx
}

// Len returns the number of ingested trips.
func (idx *MinuteBucketIndex) Len() int {
	return len(idx.trips)
}

// Buckets returns the container for kind.
func (idx *MinuteBucketIndex) Buckets(kind BucketKind) *MinuteBuckets {
	if kind == Arrivals {
		return &idx.arrivals
	}
	return &idx.departures
}

// SelectWindow returns the trips of the chosen index that fall in w, bucket by
// bucket in the order given by TimeWindow.Ranges.
func (idx *MinuteBucketIndex) SelectWindow(kind BucketKind, w TimeWindow) []TripRecord {
	buckets := idx.Buckets(kind)
	out := make([]TripRecord, 0, buckets.CountIn(w))
	idx.each(buckets, w, func(t *TripRecord) {
		out = append(out, *t)
	})
	return out
}

func (idx *MinuteBucketIndex) each(buckets *MinuteBuckets, w TimeWindow, fn func(*TripRecord)) {
	for _, r := range w.Ranges() {
		for m := r[0]; m < r[1]; m++ {
			for _, pos := range buckets.slots[m] {
				fn(&idx.trips[pos])
			}
		}
	}
}
