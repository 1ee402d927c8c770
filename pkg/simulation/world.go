package simulation

import (
	"sort"

	"github.com/golang/geo/r2"
	"github.com/openrlce/routelock/pkg"
	"github.com/openrlce/routelock/pkg/datastructure"
	"github.com/openrlce/routelock/pkg/geo"
	"github.com/openrlce/routelock/pkg/spatialindex"
	"go.uber.org/zap"
	"golang.org/x/exp/rand"
)

// World owns the mutable simulation topology: the route, the tower field and
// the spatial index over it. Every mutation bumps the version so consumers can
// tell a swapped world from the one they calibrated against. Mutations must
// happen on the control loop; World does no locking of its own.
type World struct {
	log *zap.Logger
	rng *rand.Rand

	route   *datastructure.Route
	towers  []*datastructure.CellTower
	index   *spatialindex.TowerIndex
	version uint64
}

func NewWorld(seed uint64, log *zap.Logger) *World {
	w := &World{
		log:   log,
		rng:   rand.New(rand.NewSource(seed)),
		route: DefaultRoute(),
		index: spatialindex.NewTowerIndex(),
	}
	w.towers = GenerateTowers(pkg.DEFAULT_TOWER_COUNT, w.rng)
	w.index.Build(w.towers, log)
	return w
}

// NewWorldFromSnapshot rebuilds a world from a file written by the world
// generator. The seed only feeds later Regenerate calls.
func NewWorldFromSnapshot(filename string, seed uint64, log *zap.Logger) (*World, error) {
	route, towers, err := datastructure.ReadWorldSnapshot(filename)
	if err != nil {
		return nil, err
	}

	w := &World{
		log:    log,
		rng:    rand.New(rand.NewSource(seed)),
		route:  route,
		towers: towers,
		index:  spatialindex.NewTowerIndex(),
	}
	w.index.Build(towers, log)
	return w, nil
}

func (w *World) Route() *datastructure.Route        { return w.route }
func (w *World) Towers() []*datastructure.CellTower { return w.towers }
func (w *World) Index() *spatialindex.TowerIndex    { return w.index }
func (w *World) Version() uint64                    { return w.version }

// DefaultRoute is the Charlotte LRV alignment scaled onto the world plane.
func DefaultRoute() *datastructure.Route {
	pts := []r2.Point{
		geo.NewPoint(120, 720), geo.NewPoint(200, 660), geo.NewPoint(260, 620),
		geo.NewPoint(320, 590), geo.NewPoint(380, 560), geo.NewPoint(460, 540),
		geo.NewPoint(520, 520), geo.NewPoint(560, 500), geo.NewPoint(600, 470),
		geo.NewPoint(630, 440), geo.NewPoint(660, 410), geo.NewPoint(690, 380),
		geo.NewPoint(720, 350), geo.NewPoint(750, 320), geo.NewPoint(770, 300),
		geo.NewPoint(820, 280), geo.NewPoint(860, 260), geo.NewPoint(900, 240),
		geo.NewPoint(940, 220), geo.NewPoint(980, 210), geo.NewPoint(1040, 200),
	}
	return datastructure.NewRouteFromPolyline(pts, pkg.DEFAULT_OPERATOR_PLMN)
}

// allowedChannels returns the whitelist for a technology in ascending order so
// generation is a pure function of the seed.
func allowedChannels(tech pkg.RadioTech) []int {
	channels := make([]int, 0, len(pkg.AllowedARFCN[tech]))
	for arfcn := range pkg.AllowedARFCN[tech] {
		channels = append(channels, arfcn)
	}
	sort.Ints(channels)
	return channels
}

// GenerateTowers builds a random tower field inside the world margins. Around
// 70% broadcast an on-plan channel; a sample of max(2, n/15) towers is then
// turned rogue with a foreign PLMN and an off-plan channel.
func GenerateTowers(n int, rng *rand.Rand) []*datastructure.CellTower {
	towers := make([]*datastructure.CellTower, 0, n)
	for i := 0; i < n; i++ {
		pos := geo.NewPoint(
			pkg.WORLD_MARGIN+rng.Float64()*(pkg.WORLD_WIDTH-2*pkg.WORLD_MARGIN),
			pkg.WORLD_MARGIN+rng.Float64()*(pkg.WORLD_HEIGHT-2*pkg.WORLD_MARGIN),
		)
		plmn := pkg.PLMNS[rng.Intn(len(pkg.PLMNS))]
		tech := pkg.RadioTech(rng.Intn(2))

		var arfcn int
		if rng.Float64() < 0.7 {
			channels := allowedChannels(tech)
			arfcn = channels[rng.Intn(len(channels))]
		} else {
			arfcn = pkg.RogueARFCNPool[rng.Intn(len(pkg.RogueARFCNPool))]
		}

		tac := 100 + rng.Intn(21)
		pci := 1 + rng.Intn(503)
		towers = append(towers, datastructure.NewCellTower(i, pos, plmn, tech, arfcn, tac, pci))
	}

	rogueCount := n / 15
	if rogueCount < 2 {
		rogueCount = 2
	}
	if rogueCount > n {
		rogueCount = n
	}
	for _, i := range rng.Perm(n)[:rogueCount] {
		tw := towers[i]
		tw.Rogue = true
		tw.PLMN = otherPLMN(tw.PLMN, rng)
		tw.ARFCN = pkg.RogueARFCNPool[rng.Intn(len(pkg.RogueARFCNPool))]
	}
	return towers
}

func otherPLMN(plmn string, rng *rand.Rand) string {
	others := make([]string, 0, len(pkg.PLMNS)-1)
	for _, p := range pkg.PLMNS {
		if p != plmn {
			others = append(others, p)
		}
	}
	return others[rng.Intn(len(others))]
}

// ToggleRogueNear flips the rogue flag on the tower nearest to pos within the
// toggle radius, rewriting its identity both ways: turning rogue assigns a
// foreign PLMN and an off-plan channel, turning back restores the operator
// PLMN and the lowest on-plan channel for its technology. Returns nil when no
// tower is in range. The caller must recalibrate afterwards.
func (w *World) ToggleRogueNear(pos r2.Point) *datastructure.CellTower {
	tw := w.index.NearestWithin(pos, pkg.ROGUE_TOGGLE_RADIUS)
	if tw == nil {
		return nil
	}

	tw.Rogue = !tw.Rogue
	if tw.Rogue {
		for _, p := range pkg.PLMNS {
			if p != w.route.OperatorPLMN {
				tw.PLMN = p
				break
			}
		}
		tw.ARFCN = pkg.RogueARFCNPool[0]
	} else {
		tw.PLMN = w.route.OperatorPLMN
		tw.ARFCN = allowedChannels(tw.Tech)[0]
	}

	w.version++
	w.log.Info("tower rogue toggled",
		zap.Int("tower", tw.ID), zap.Bool("rogue", tw.Rogue))
	return tw
}

// Regenerate replaces the tower field with a fresh random one and rebuilds the
// spatial index. The route is kept. The caller must recalibrate afterwards.
func (w *World) Regenerate() {
	w.towers = GenerateTowers(pkg.DEFAULT_TOWER_COUNT, w.rng)
	w.index.Build(w.towers, w.log)
	w.version++
	w.log.Info("tower field regenerated", zap.Int("towers", len(w.towers)))
}

// RogueCount is used by the metrics gauges.
func (w *World) RogueCount() int {
	count := 0
	for _, tw := range w.towers {
		if tw.Rogue {
			count++
		}
	}
	return count
}
