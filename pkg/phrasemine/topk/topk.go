// Package topk keeps the k highest similarity scores of a stream without
// sorting the full distribution.
package topk

import (
	"container/heap"
	"sort"
)

// DefaultK is the number of best vocabulary matches averaged per candidate.
const DefaultK = 10

// SimilarityFunc scores a pair of embeddings.
type SimilarityFunc func(a, b []float64) float64

// scoreHeap is a min-heap: the root is the weakest retained score.
type scoreHeap []float64

func (h scoreHeap) Len() int           { return len(h) }
func (h scoreHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h scoreHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *scoreHeap) Push(x any) {
	*h = append(*h, x.(float64))
}

func (h *scoreHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// Heap retains at most k scores, always the largest offered so far.
type Heap struct {
	k     int
	items scoreHeap
}

// NewHeap creates a bounded heap. k <= 0 uses DefaultK.
func NewHeap(k int) *Heap {
	if k <= 0 {
		k = DefaultK
	}
	return &Heap{k: k, items: make(scoreHeap, 0, k)}
}

// Offer considers a score and reports whether it was retained.
// Below capacity every score is pushed; at capacity a score replaces the
// current minimum only when it is strictly greater.
func (h *Heap) Offer(score float64) bool {
	if len(h.items) < h.k {
		heap.Push(&h.items, score)
		return true
	}
	if score > h.items[0] {
		h.items[0] = score
		heap.Fix(&h.items, 0)
		return true
	}
	return false
}

// Len returns the number of retained scores.
func (h *Heap) Len() int { return len(h.items) }

// Cap returns the configured k.
func (h *Heap) Cap() int { return h.k }

// Min returns the weakest retained score, or 0 when empty.
func (h *Heap) Min() float64 {
	if len(h.items) == 0 {
		return 0
	}
	return h.items[0]
}

// Mean returns the arithmetic mean of the retained scores, or 0 when empty.
func (h *Heap) Mean() float64 {
	if len(h.items) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range h.items {
		sum += s
	}
	return sum / float64(len(h.items))
}

// Values returns the retained scores, highest first.
func (h *Heap) Values() []float64 {
	out := make([]float64, len(h.items))
	copy(out, h.items)
	sort.Sort(sort.Reverse(sort.Float64Slice(out)))
	return out
}

// Reset empties the heap, keeping its capacity.
func (h *Heap) Reset() {
	h.items = h.items[:0]
}

// Aggregator averages the k best similarities between a query embedding
// and a fixed ordered set of reference embeddings.
type Aggregator struct {
	k   int
	sim SimilarityFunc
}

// NewAggregator creates an aggregator. k <= 0 uses DefaultK.
func NewAggregator(k int, sim SimilarityFunc) *Aggregator {
	if k <= 0 {
		k = DefaultK
	}
	return &Aggregator{k: k, sim: sim}
}

// K returns the number of scores averaged.
func (a *Aggregator) K() int { return a.k }

// Mean streams query against every reference and returns the mean of the k
// largest similarities. With fewer than k references the mean covers all of
// them. An empty reference set yields 0; callers are expected to reject an
// empty vocabulary before scoring.
func (a *Aggregator) Mean(query []float64, refs [][]float64) float64 {
	h := NewHeap(a.k)
	for _, ref := range refs {
		h.Offer(a.sim(query, ref))
	}
	return h.Mean()
}

// MeanTopK is the functional form of Aggregator.Mean.
func MeanTopK(query []float64, refs [][]float64, k int, sim SimilarityFunc) float64 {
	return NewAggregator(k, sim).Mean(query, refs)
}
