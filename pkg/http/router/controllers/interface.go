package controllers

import (
	"github.com/openrlce/routelock/pkg/datastructure"
	"github.com/openrlce/routelock/pkg/simulation"
)

type EnforcementService interface {
	Status() simulation.StatusSnapshot
	Events() []string
	Route() *datastructure.Route
	Towers() []*datastructure.CellTower
	ToggleRogue(x, y float64) (*datastructure.CellTower, error)
	Regenerate() int
	Reselect() (*datastructure.CellTower, error)
	SetAutopilot(enabled bool)
	ApplyConfig(grace *int, hysteresis *float64, pollMS *int) simulation.StatusSnapshot
}
