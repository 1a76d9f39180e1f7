// Package perceptron implements a multi-class averaged perceptron with lazy
// weight averaging.
//
// Each (tag, feature) weight remembers the update at which it last changed
// and the running integral of its value over time. Averaging then only has to
// flush the time since the last change, so no per-update history is stored.
package perceptron

import (
	"errors"
	"sort"
)

// Sentinel predictions.
const (
	// Unknown is predicted when none of the features has a weight row.
	Unknown = "UNKNOWN"
	// None is predicted by a model that has not processed any update.
	None = ""
)

// ErrNoUpdates is returned by Average on a model that was never updated.
var ErrNoUpdates = errors.New("perceptron: no updates to average")

type pair struct {
	tag     string
	feature string
}

// Model is the weight store. It is not safe for concurrent mutation.
type Model struct {
	weights map[string]map[string]float64 // feature -> tag -> weight
	stamps  map[pair]int                  // update count at last change
	totals  map[pair]float64              // integral of the weight up to its stamp
	updates int
}

// NewModel creates an empty model.
func NewModel() *Model {
	return &Model{
		weights: make(map[string]map[string]float64),
		stamps:  make(map[pair]int),
		totals:  make(map[pair]float64),
	}
}

// Updates returns the global update counter.
func (m *Model) Updates() int {
	return m.updates
}

// NumFeatures returns the number of feature rows.
func (m *Model) NumFeatures() int {
	return len(m.weights)
}

// Weight returns the current weight of tag for feature.
func (m *Model) Weight(feature, tag string) float64 {
	return m.weights[feature][tag]
}

// Total returns the accumulated total of the (tag, feature) weight.
func (m *Model) Total(tag, feature string) float64 {
	return m.totals[pair{tag, feature}]
}

// Stamp returns the update count at which the (tag, feature) weight last changed.
func (m *Model) Stamp(tag, feature string) int {
	return m.stamps[pair{tag, feature}]
}

// Tags returns every tag that has a weight, sorted.
func (m *Model) Tags() []string {
	seen := make(map[string]bool)
	for _, row := range m.weights {
		for tag := range row {
			seen[tag] = true
		}
	}
	tags := make([]string, 0, len(seen))
	for tag := range seen {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// Predict returns the highest scoring tag for the features and its score.
// Ties go to the lexicographically smallest tag. Features without a weight
// row contribute nothing.
func (m *Model) Predict(features Features) (string, float64) {
	scores := make(map[string]float64)
	for feat, value := range features {
		row, ok := m.weights[feat]
		if !ok || value == 0 {
			continue
		}
		for tag, weight := range row {
			scores[tag] += value * weight
		}
	}
	if len(scores) == 0 {
		return Unknown, 0
	}
	if m.updates == 0 {
		return None, 0
	}

	best := ""
	bestScore := 0.0
	first := true
	for tag, score := range scores {
		if first || score > bestScore || (score == bestScore && tag < best) {
			best, bestScore, first = tag, score, false
		}
	}
	return best, bestScore
}

// Update records one training example. The counter advances even when the
// guess was right; only wrong guesses move weights.
func (m *Model) Update(truth, guess string, features Features) {
	m.updates++
	if truth == guess {
		return
	}
	for feat := range features {
		m.touch(truth, feat, 1)
		m.touch(guess, feat, -1)
	}
}

// touch flushes the pending contribution of a weight into its total, stamps
// it with the current update count and then applies delta.
func (m *Model) touch(tag, feature string, delta float64) {
	row, ok := m.weights[feature]
	if !ok {
		row = make(map[string]float64)
		m.weights[feature] = row
	}
	key := pair{tag, feature}
	w := row[tag]
	m.totals[key] += float64(m.updates-m.stamps[key]) * w
	m.stamps[key] = m.updates
	row[tag] = w + delta
}

// Average replaces every weight with its average over all updates. Training
// cannot meaningfully continue afterwards.
func (m *Model) Average() error {
	if m.updates == 0 {
		return ErrNoUpdates
	}
	n := float64(m.updates)
	for feat, row := range m.weights {
		for tag := range row {
			m.touch(tag, feat, 0)
			row[tag] = m.totals[pair{tag, feat}] / n
		}
	}
	return nil
}
