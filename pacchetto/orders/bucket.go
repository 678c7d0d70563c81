package orders

import "slices"

// Bucket is a named group of statuses used for tabbed filtering.
type Bucket string

const (
	BucketAll        Bucket = "all"
	BucketNew        Bucket = "new"
	BucketProcessing Bucket = "processing"
	BucketInTransit  Bucket = "in_transit"
	BucketCancelled  Bucket = "cancelled"
	BucketCompleted  Bucket = "completed"
)

var bucketStatuses = map[Bucket][]Status{
	BucketNew:        {StatusNew},
	BucketProcessing: {StatusConfirmed, StatusPreparing},
	BucketInTransit:  {StatusReadyForPickup, StatusAssigned, StatusInTransit},
	BucketCancelled:  {StatusCancelled},
	BucketCompleted:  {StatusDelivered},
}

// Buckets returns the buckets in tab order.
func Buckets() []Bucket {
	return []Bucket{BucketAll, BucketNew, BucketProcessing, BucketInTransit, BucketCancelled, BucketCompleted}
}

func ParseBucket(raw string) (Bucket, bool) {
	b := Bucket(raw)
	if b == BucketAll {
		return b, true
	}
	_, ok := bucketStatuses[b]
	return b, ok
}

func (b Bucket) Contains(s Status) bool {
	if b == BucketAll {
		return true
	}
	return slices.Contains(bucketStatuses[b], s)
}

// BucketOf returns the single non-"all" bucket holding s.
func BucketOf(s Status) Bucket {
	for _, b := range Buckets()[1:] {
		if b.Contains(s) {
			return b
		}
	}
	return BucketAll
}

// Filter returns the orders of list that fall in b. list is not modified.
func Filter(list []Order, b Bucket) []Order {
	out := make([]Order, 0, len(list))
	for _, o := range list {
		if b.Contains(o.Status) {
			out = append(out, o)
		}
	}
	return out
}

// CountBuckets counts list per bucket. Every bucket is present in the result.
func CountBuckets(list []Order) map[Bucket]int {
	counts := make(map[Bucket]int, len(bucketStatuses)+1)
	for _, b := range Buckets() {
		counts[b] = 0
	}
	for _, o := range list {
		counts[BucketAll]++
		counts[BucketOf(o.Status)]++
	}
	return counts
}
