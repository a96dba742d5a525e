package forecast

// Components is the additive decomposition of a prediction. Values are in the fitted
// target space, which is log1p(y) when the log transform is enabled.
type Components struct {
	Trend       []float64 `json:"trend"`
	Seasonality []float64 `json:"seasonality"`
	Regressors  []float64 `json:"regressors"`
}
