package feature

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// Regressor feature representing an externally supplied covariate such as a promotion flag
// or a holiday indicator. Binary regressors are used as is while continuous regressors are
// standardized before fitting.
type Regressor struct {
	Name   string `json:"name"`
	Binary bool   `json:"binary"`
}

// NewRegressor creates a new regressor instance given a name
func NewRegressor(name string, binary bool) *Regressor {
	return &Regressor{name, binary}
}

// String returns the string representation of the regressor feature
func (r Regressor) String() string {
	return fmt.Sprintf("reg_%s", r.Name)
}

// Get returns the value of an arbitrary label annd returns the value along with whether
// the label exists
func (r Regressor) Get(label string) (string, bool) {
	switch strings.ToLower(label) {
	case "name":
		return r.Name, true
	case "binary":
		return fmt.Sprintf("%t", r.Binary), true
	}
	return "", false
}

// Type returns the type of this feature
func (r Regressor) Type() FeatureType {
	return FeatureTypeRegressor
}

// Decode converts the feature into a map of label values
func (r Regressor) Decode() map[string]string {
	res := make(map[string]string)
	res["name"] = r.Name
	res["binary"] = fmt.Sprintf("%t", r.Binary)
	return res
}

// UnmarshalJSON is the custom unmarshalling to convert a map[string]string
// to a regressor feature
func (r *Regressor) UnmarshalJSON(data []byte) error {
	var labelStr struct {
		Name   string `json:"name"`
		Binary string `json:"binary"`
	}
	if err := json.Unmarshal(data, &labelStr); err != nil {
		return err
	}
	r.Name = labelStr.Name
	r.Binary = labelStr.Binary == "true"
	return nil
}

// IsBinary reports whether every value is either 0 or 1
func IsBinary(vals []float64) bool {
	for _, v := range vals {
		if v != 0 && v != 1 {
			return false
		}
	}
	return true
}
