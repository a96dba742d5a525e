package feature

// Labels is the column order of a design matrix. Position i names the feature behind
// coefficient i of a fitted model. A nil Labels is empty.
type Labels struct {
	idx    map[string]int
	labels []Feature
}

func NewLabels(labels []Feature) *Labels {
	idx := make(map[string]int, len(labels))
	for i, l := range labels {
		idx[l.String()] = i
	}
	return &Labels{idx: idx, labels: labels}
}

func (f *Labels) Len() int {
	if f == nil {
		return 0
	}
	return len(f.labels)
}

// Labels returns a copy of the features in coefficient order
func (f *Labels) Labels() []Feature {
	if f == nil {
		return nil
	}
	return append([]Feature(nil), f.labels...)
}

// Index finds the coefficient position of a feature, e.g. to read the promo lift
func (f *Labels) Index(label Feature) (int, bool) {
	if f == nil {
		return -1, false
	}
	idx, exists := f.idx[label.String()]
	if !exists {
		return -1, false
	}
	return idx, true
}

// ByType returns the features of the given type in coefficient order
func (f *Labels) ByType(ft FeatureType) []Feature {
	var res []Feature
	for _, l := range f.Labels() {
		if l.Type() == ft {
			res = append(res, l)
		}
	}
	return res
}
