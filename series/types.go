package series

import (
	"time"
)

// PromoState tags a record, a model or a future scenario with the promotion flag it
// belongs to
type PromoState int

const (
	NonPromo PromoState = iota
	Promo
)

// PromoStates lists every state in the order future scenarios are emitted
var PromoStates = []PromoState{Promo, NonPromo}

func PromoStateOf(isPromo bool) PromoState {
	if isPromo {
		return Promo
	}
	return NonPromo
}

func (p PromoState) IsPromo() bool {
	return p == Promo
}

func (p PromoState) String() string {
	switch p {
	case Promo:
		return "promo"
	case NonPromo:
		return "non_promo"
	}
	return "unknown"
}

// Record is one observed day of an item
type Record struct {
	Date       time.Time          `json:"date"`
	Target     float64            `json:"target"`
	IsPromo    bool               `json:"is_promo"`
	Capacity   float64            `json:"capacity"`
	Regressors map[string]float64 `json:"regressors,omitempty"`
}

// CovariateRow is the input to a single prediction
type CovariateRow struct {
	Date       time.Time          `json:"date"`
	IsPromo    bool               `json:"is_promo"`
	Regressors map[string]float64 `json:"regressors,omitempty"`
}

// ForecastRow is a single predicted value along with the promotion context it was
// predicted under. IsFuture marks the rows past the cutoff date.
type ForecastRow struct {
	Date           time.Time `json:"date"`
	Predicted      float64   `json:"predicted"`
	IsPromoContext bool      `json:"is_promo_context"`
	IsFuture       bool      `json:"is_future"`
}

// ToDay truncates t to its calendar day at UTC midnight
func ToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
