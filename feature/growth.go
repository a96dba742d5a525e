package feature

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// GrowthLinear is the trend on the scaled day index. The intercept is held by the
// regression itself, so it has no growth label.
const GrowthLinear = "linear"

// Growth labels the base trend of a sales series before changepoints bend it
type Growth struct {
	Name string `json:"name"`
}

func NewGrowth(name string) *Growth {
	return &Growth{name}
}

// Linear is the only growth a promo forecast is fit with
func Linear() *Growth {
	return NewGrowth(GrowthLinear)
}

func (g Growth) String() string {
	return "growth_" + g.Name
}

func (g Growth) Get(label string) (string, bool) {
	if strings.ToLower(label) == "name" {
		return g.Name, true
	}
	return "", false
}

func (g Growth) Type() FeatureType {
	return FeatureTypeGrowth
}

func (g Growth) Decode() map[string]string {
	return map[string]string{"name": g.Name}
}

func (g *Growth) UnmarshalJSON(data []byte) error {
	var decoded struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return fmt.Errorf("growth label, %w", err)
	}
	g.Name = decoded.Name
	return nil
}
