package atlas

import (
	"strings"

	appErrors "atlas-backend/pkg/errors"
)

// RouteType classifies the relationship a route expresses between two nodes.
type RouteType string

const (
	RouteOftenUsedWith       RouteType = "often-used-with"
	RoutePrerequisite        RouteType = "prerequisite"
	RouteDeeperExplanation   RouteType = "deeper-explanation"
	RouteAlternativeApproach RouteType = "alternative-approach"
	RouteRelated             RouteType = "related"
)

// IsValid reports whether the route type is one of the known kinds.
func (rt RouteType) IsValid() bool {
	switch rt {
	case RouteOftenUsedWith, RoutePrerequisite, RouteDeeperExplanation,
		RouteAlternativeApproach, RouteRelated:
		return true
	}
	return false
}

// Route is a directed, typed edge between two node ids (topic or landmark).
// Distance is a conceptual weight (lower is closer); UsageCount grows by one
// every time the route is traversed and never decreases.
type Route struct {
	ID          string    `json:"id" yaml:"id"`
	From        string    `json:"from" yaml:"from"`
	To          string    `json:"to" yaml:"to"`
	Type        RouteType `json:"type" yaml:"type"`
	Distance    float64   `json:"distance" yaml:"distance"`
	Confidence  float64   `json:"confidence" yaml:"confidence"`
	Description string    `json:"description" yaml:"description"`
	UsageCount  int64     `json:"usageCount" yaml:"usageCount"`
}

// NewRoute validates and normalizes a route at the construction boundary.
func NewRoute(r Route) (*Route, error) {
	r.ID = strings.TrimSpace(r.ID)
	if r.ID == "" {
		return nil, appErrors.NewValidation("route id is required")
	}
	if r.From == "" || r.To == "" {
		return nil, appErrors.NewValidation("route requires both from and to node ids")
	}
	if r.From == r.To {
		return nil, appErrors.NewValidation("route cannot connect a node to itself")
	}
	if r.Type == "" {
		r.Type = RouteRelated
	}
	if !r.Type.IsValid() {
		return nil, appErrors.NewValidation("unknown route type: " + string(r.Type))
	}
	if r.Distance <= 0 {
		return nil, appErrors.NewValidation("route distance must be positive")
	}
	r.Confidence = clamp01(r.Confidence)
	if r.UsageCount < 0 {
		r.UsageCount = 0
	}
	return &r, nil
}

// Clone returns a copy of the route.
func (r *Route) Clone() *Route {
	c := *r
	return &c
}
