package feature

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// FourierComp is the sine or cosine half of a Fourier pair
type FourierComp string

const (
	FourierCompSin FourierComp = "sin"
	FourierCompCos FourierComp = "cos"

	// SeasonalityWeekly names the day of week cycle, the only seasonality daily retail
	// demand is fit with
	SeasonalityWeekly = "weekly"
)

// Seasonality labels one Fourier term of a periodic cycle. Order k oscillates k times
// per period, so the weekly cycle of order 3 can resolve a weekend bump.
type Seasonality struct {
	Name        string      `json:"name"`
	FourierComp FourierComp `json:"fourier_component"`
	Order       int         `json:"order"`
}

func NewSeasonality(name string, fcomp FourierComp, order int) *Seasonality {
	return &Seasonality{name, fcomp, order}
}

// Weekly returns the sine and cosine labels of the given weekly order
func Weekly(order int) (*Seasonality, *Seasonality) {
	return NewSeasonality(SeasonalityWeekly, FourierCompSin, order),
		NewSeasonality(SeasonalityWeekly, FourierCompCos, order)
}

func (s Seasonality) String() string {
	return fmt.Sprintf("seas_%s_%02d_%s", s.Name, s.Order, s.FourierComp)
}

func (s Seasonality) Get(label string) (string, bool) {
	switch strings.ToLower(label) {
	case "name":
		return s.Name, true
	case "fourier_component":
		return string(s.FourierComp), true
	case "order":
		return strconv.Itoa(s.Order), true
	}
	return "", false
}

func (s Seasonality) Type() FeatureType {
	return FeatureTypeSeasonality
}

// Decode flattens the label for the model json, with the order as a string
func (s Seasonality) Decode() map[string]string {
	return map[string]string{
		"name":              s.Name,
		"fourier_component": string(s.FourierComp),
		"order":             strconv.Itoa(s.Order),
	}
}

func (s *Seasonality) UnmarshalJSON(data []byte) error {
	var decoded struct {
		Name        string      `json:"name"`
		FourierComp FourierComp `json:"fourier_component"`
		Order       string      `json:"order"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	order, err := strconv.Atoi(decoded.Order)
	if err != nil {
		return fmt.Errorf("seasonality order %q, %w", decoded.Order, err)
	}
	s.Name = decoded.Name
	s.FourierComp = decoded.FourierComp
	s.Order = order
	return nil
}
