package controllers

import (
	"sort"
	"time"

	"github.com/openrlce/routelock/pkg/datastructure"
	"github.com/openrlce/routelock/pkg/engine"
	"github.com/openrlce/routelock/pkg/simulation"
)

type toggleRogueRequest struct {
	X *float64 `json:"x" validate:"required,gte=0"`
	Y *float64 `json:"y" validate:"required,gte=0"`
}

type autopilotRequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

type updateConfigRequest struct {
	Grace      *int     `json:"grace" validate:"omitempty,gte=0"`
	Hysteresis *float64 `json:"hysteresis" validate:"omitempty,gte=0"`
	PollMS     *int     `json:"poll_ms" validate:"omitempty,gte=50"`
}

type towerResponse struct {
	ID    int     `json:"id"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	PLMN  string  `json:"plmn"`
	Tech  string  `json:"tech"`
	ARFCN int     `json:"arfcn"`
	TAC   int     `json:"tac"`
	PCI   int     `json:"pci"`
	Rogue bool    `json:"rogue"`
}

func NewTowerResponse(tw *datastructure.CellTower) *towerResponse {
	if tw == nil {
		return nil
	}
	return &towerResponse{
		ID:    tw.ID,
		X:     tw.Pos.X,
		Y:     tw.Pos.Y,
		PLMN:  tw.PLMN,
		Tech:  tw.Tech.String(),
		ARFCN: tw.ARFCN,
		TAC:   tw.TAC,
		PCI:   tw.PCI,
		Rogue: tw.Rogue,
	}
}

func NewTowersResponse(towers []*datastructure.CellTower) []*towerResponse {
	resp := make([]*towerResponse, 0, len(towers))
	for _, tw := range towers {
		resp = append(resp, NewTowerResponse(tw))
	}
	return resp
}

type statusResponse struct {
	Segment    int            `json:"segment"`
	Decision   string         `json:"decision"`
	Serving    *towerResponse `json:"serving"`
	Grace      int            `json:"grace"`
	Hysteresis float64        `json:"hysteresis"`
	PollMS     int            `json:"poll_ms"`
	Auto       bool           `json:"auto"`
	TrainX     float64        `json:"train_x"`
	TrainY     float64        `json:"train_y"`
}

func NewStatusResponse(snap simulation.StatusSnapshot) statusResponse {
	return statusResponse{
		Segment:    snap.SegmentIdx,
		Decision:   snap.Decision.String(),
		Serving:    NewTowerResponse(snap.Serving),
		Grace:      snap.Grace,
		Hysteresis: snap.Hysteresis,
		PollMS:     snap.PollMS,
		Auto:       snap.Auto,
		TrainX:     snap.TrainPos.X,
		TrainY:     snap.TrainPos.Y,
	}
}

type segmentResponse struct {
	Idx int        `json:"idx"`
	A   [2]float64 `json:"a"`
	B   [2]float64 `json:"b"`
	Cal []int      `json:"cal"`
}

type routeResponse struct {
	OperatorPLMN string            `json:"operator_plmn"`
	Points       [][2]float64      `json:"points"`
	Polyline     string            `json:"polyline"`
	Segments     []segmentResponse `json:"segments"`
}

func NewRouteResponse(route *datastructure.Route) routeResponse {
	points := make([][2]float64, 0, len(route.Points))
	for _, p := range route.Points {
		points = append(points, [2]float64{p.X, p.Y})
	}

	segments := make([]segmentResponse, 0, route.NumSegments())
	for _, seg := range route.Segments {
		segments = append(segments, segmentResponse{
			Idx: seg.Idx,
			A:   [2]float64{seg.A.X, seg.A.Y},
			B:   [2]float64{seg.B.X, seg.B.Y},
			Cal: sortedIDs(seg.Cal),
		})
	}

	return routeResponse{
		OperatorPLMN: route.OperatorPLMN,
		Points:       points,
		Polyline:     route.EncodePolyline(),
		Segments:     segments,
	}
}

func sortedIDs(set map[int]bool) []int {
	ids := make([]int, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

type regenerateResponse struct {
	Towers int `json:"towers"`
}

// DecisionEvent is the websocket push payload for one evaluated poll.
type DecisionEvent struct {
	Time     string         `json:"time"`
	Segment  int            `json:"segment"`
	Decision string         `json:"decision"`
	Serving  *towerResponse `json:"serving"`
	TrainX   float64        `json:"train_x"`
	TrainY   float64        `json:"train_y"`
}

func NewDecisionEvent(res engine.PollResult, train *datastructure.Train, now time.Time) DecisionEvent {
	return DecisionEvent{
		Time:     now.Format(time.RFC3339),
		Segment:  res.SegmentIdx,
		Decision: res.Decision.String(),
		Serving:  NewTowerResponse(res.Serving),
		TrainX:   train.Pos.X,
		TrainY:   train.Pos.Y,
	}
}
