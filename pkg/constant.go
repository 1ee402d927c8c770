package pkg

// RadioTech is the radio access technology a cell broadcasts.
type RadioTech uint8

const (
	LTE RadioTech = iota
	NR
)

func (t RadioTech) String() string {
	switch t {
	case LTE:
		return "LTE"
	case NR:
		return "NR"
	default:
		return "UNKNOWN"
	}
}

// Decision is the per-poll classification of the serving candidate.
type Decision uint8

const (
	// DecisionNone means the poll was skipped by the rate limiter.
	DecisionNone Decision = iota
	DecisionAllowed
	// DecisionAllowedAnomalous: candidate outside the calibration window but
	// provisionally trusted by the legitimacy score.
	DecisionAllowedAnomalous
	DecisionBarred
)

func (d Decision) String() string {
	switch d {
	case DecisionAllowed:
		return "ALLOWED"
	case DecisionAllowedAnomalous:
		return "ALLOWED*"
	case DecisionBarred:
		return "BARRED"
	default:
		return "..."
	}
}

// demo operator PLMNs
var PLMNS = []string{"310260", "311480", "310410"}

// AllowedARFCN holds the per-technology channel whitelist used by the
// legitimacy check.
var AllowedARFCN = map[RadioTech]map[int]bool{
	LTE: {66486: true, 66490: true, 66500: true, 5140: true, 1302: true},
	NR:  {523800: true, 627936: true},
}

// RogueARFCNPool: off-plan channels assigned to rogue towers by the generator.
var RogueARFCNPool = []int{1492, 3350, 4990, 700000}

const (
	DEFAULT_OPERATOR_PLMN = "310260"

	DEFAULT_GRACE         = 1
	DEFAULT_HYSTERESIS    = 40.0
	DEFAULT_POLL_MS       = 250
	MIN_POLL_MS           = 50
	CALIBRATION_RADIUS    = 220.0
	ROGUE_TOGGLE_RADIUS   = 200.0
	EVENT_LOG_CAPACITY    = 8
	WINDOW_CACHE_CAPACITY = 128

	WORLD_WIDTH         = 1200.0
	WORLD_HEIGHT        = 800.0
	WORLD_MARGIN        = 60.0
	DEFAULT_TOWER_COUNT = 70

	TRAIN_MANUAL_SPEED = 120.0 // units/s
	TRAIN_AUTO_SPEED   = 140.0 // units/s along the route
)

const (
	DEBUG = false
)
