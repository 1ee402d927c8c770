package datastructure

import (
	"github.com/golang/geo/r2"
	"github.com/openrlce/routelock/pkg"
)

// CellTower is one base station in the world. Identity is stable for the
// tower's lifetime; only the Rogue flag (plus the PLMN/ARFCN the operator
// rewrites alongside it) is mutated after creation. The whole tower set is
// replaced atomically on regeneration.
type CellTower struct {
	ID    int           `json:"id"`
	Pos   r2.Point      `json:"pos"`
	PLMN  string        `json:"plmn"`
	Tech  pkg.RadioTech `json:"tech"`
	ARFCN int           `json:"arfcn"`
	TAC   int           `json:"tac"`
	PCI   int           `json:"pci"`
	Rogue bool          `json:"rogue"`
}

func NewCellTower(id int, pos r2.Point, plmn string, tech pkg.RadioTech,
	arfcn, tac, pci int) *CellTower {
	return &CellTower{
		ID:    id,
		Pos:   pos,
		PLMN:  plmn,
		Tech:  tech,
		ARFCN: arfcn,
		TAC:   tac,
		PCI:   pci,
	}
}
