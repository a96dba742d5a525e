package feature

type FeatureType int

const (
	FeatureTypeChangepoint FeatureType = iota
	FeatureTypeSeasonality
	FeatureTypeGrowth
	FeatureTypeRegressor
)

// String returns the component name the feature contributes to
func (f FeatureType) String() string {
	switch f {
	case FeatureTypeChangepoint, FeatureTypeGrowth:
		return "trend"
	case FeatureTypeSeasonality:
		return "seasonality"
	case FeatureTypeRegressor:
		return "regressors"
	}
	return "unknown"
}

type Feature interface {
	String() string
	Get(string) (string, bool)
	Type() FeatureType
	Decode() map[string]string
}
