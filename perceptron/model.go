package perceptron

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// PairSep separates tag and feature in a serialized pair key.
const PairSep = "::"

// PairKey renders the external key of a (tag, feature) weight.
func PairKey(tag, feature string) string {
	return tag + PairSep + feature
}

// SplitPairKey is the inverse of PairKey. Tags never contain the separator,
// feature names may.
func SplitPairKey(key string) (tag, feature string, err error) {
	tag, feature, ok := strings.Cut(key, PairSep)
	if !ok {
		return "", "", fmt.Errorf("invalid pair key %q", key)
	}
	return tag, feature, nil
}

// Stamp is the last update iteration of one (tag, feature) weight.
type Stamp struct {
	Pair      string `json:"pair"`
	Iteration int    `json:"iteration"`
}

// TagWeight is one cell of a feature row.
type TagWeight struct {
	Tag    string  `json:"tag"`
	Weight float64 `json:"weight"`
}

// FeatureWeights is one feature row of the weight table.
type FeatureWeights struct {
	Feature string      `json:"feature"`
	Weights []TagWeight `json:"weights"`
}

// PairTotal is the accumulated total of one (tag, feature) weight.
type PairTotal struct {
	Pair  string  `json:"pair"`
	Total float64 `json:"total"`
}

// Snapshot is the serializable state of a Model. All lists are sorted so
// that equal models produce equal bytes.
type Snapshot struct {
	UpdateCount int              `json:"update_count"`
	Stamps      []Stamp          `json:"stamps"`
	Weights     []FeatureWeights `json:"weights"`
	Totals      []PairTotal      `json:"totals"`
}

// Snapshot captures the model state.
func (m *Model) Snapshot() *Snapshot {
	s := &Snapshot{
		UpdateCount: m.updates,
		Stamps:      make([]Stamp, 0, len(m.stamps)),
		Weights:     make([]FeatureWeights, 0, len(m.weights)),
		Totals:      make([]PairTotal, 0, len(m.totals)),
	}
	for key, it := range m.stamps {
		s.Stamps = append(s.Stamps, Stamp{Pair: PairKey(key.tag, key.feature), Iteration: it})
	}
	sort.Slice(s.Stamps, func(i, j int) bool { return s.Stamps[i].Pair < s.Stamps[j].Pair })

	for feat, row := range m.weights {
		fw := FeatureWeights{Feature: feat, Weights: make([]TagWeight, 0, len(row))}
		for tag, w := range row {
			fw.Weights = append(fw.Weights, TagWeight{Tag: tag, Weight: w})
		}
		sort.Slice(fw.Weights, func(i, j int) bool { return fw.Weights[i].Tag < fw.Weights[j].Tag })
		s.Weights = append(s.Weights, fw)
	}
	sort.Slice(s.Weights, func(i, j int) bool { return s.Weights[i].Feature < s.Weights[j].Feature })

	for key, total := range m.totals {
		s.Totals = append(s.Totals, PairTotal{Pair: PairKey(key.tag, key.feature), Total: total})
	}
	sort.Slice(s.Totals, func(i, j int) bool { return s.Totals[i].Pair < s.Totals[j].Pair })
	return s
}

// FromSnapshot rebuilds a Model.
func FromSnapshot(s *Snapshot) (*Model, error) {
	m := NewModel()
	m.updates = s.UpdateCount
	for _, st := range s.Stamps {
		tag, feat, err := SplitPairKey(st.Pair)
		if err != nil {
			return nil, err
		}
		m.stamps[pair{tag, feat}] = st.Iteration
	}
	for _, fw := range s.Weights {
		row := make(map[string]float64, len(fw.Weights))
		for _, tw := range fw.Weights {
			row[tw.Tag] = tw.Weight
		}
		m.weights[fw.Feature] = row
	}
	for _, pt := range s.Totals {
		tag, feat, err := SplitPairKey(pt.Pair)
		if err != nil {
			return nil, err
		}
		m.totals[pair{tag, feat}] = pt.Total
	}
	return m, nil
}

// MarshalModel serializes the model to JSON bytes.
func MarshalModel(model *Model) ([]byte, error) {
	return json.Marshal(model.Snapshot())
}

// UnmarshalModel deserializes a model from JSON bytes.
func UnmarshalModel(data []byte) (*Model, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return FromSnapshot(&s)
}
