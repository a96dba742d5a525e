package feature

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

type ChangepointComp string

// ChangepointCompSlope is a ramp that is zero before the changepoint. Level shifts are
// left to regressors such as the promo flag.
const ChangepointCompSlope ChangepointComp = "slope"

// Changepoint labels a trend break, e.g. a range change or a competitor opening
type Changepoint struct {
	Name            string          `json:"name"`
	ChangepointComp ChangepointComp `json:"changepoint_component"`
}

func NewChangepoint(name string, comp ChangepointComp) *Changepoint {
	return &Changepoint{name, comp}
}

// Slope labels the growth change after the named changepoint
func Slope(name string) *Changepoint {
	return NewChangepoint(name, ChangepointCompSlope)
}

func (c Changepoint) String() string {
	return fmt.Sprintf("chpnt_%s_%s", c.Name, c.ChangepointComp)
}

func (c Changepoint) Get(label string) (string, bool) {
	switch strings.ToLower(label) {
	case "name":
		return c.Name, true
	case "changepoint_component":
		return string(c.ChangepointComp), true
	}
	return "", false
}

func (c Changepoint) Type() FeatureType {
	return FeatureTypeChangepoint
}

func (c Changepoint) Decode() map[string]string {
	return map[string]string{
		"name":                  c.Name,
		"changepoint_component": string(c.ChangepointComp),
	}
}

func (c *Changepoint) UnmarshalJSON(data []byte) error {
	var decoded struct {
		Name            string          `json:"name"`
		ChangepointComp ChangepointComp `json:"changepoint_component"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return fmt.Errorf("changepoint label, %w", err)
	}
	c.Name = decoded.Name
	c.ChangepointComp = decoded.ChangepointComp
	return nil
}
