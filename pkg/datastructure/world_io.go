package datastructure

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dsnet/compress/bzip2"
	"github.com/golang/geo/r2"
	"github.com/openrlce/routelock/pkg"
	"github.com/openrlce/routelock/pkg/geo"
)

// WriteWorldSnapshot writes the route waypoints and the tower field to a
// bzip2-compressed text file so a generated world can be replayed later.
func WriteWorldSnapshot(filename string, route *Route, towers []*CellTower) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	bz, err := bzip2.NewWriter(f, &bzip2.WriterConfig{})
	if err != nil {
		return err
	}
	defer bz.Close()

	w := bufio.NewWriter(bz)
	defer w.Flush()

	fmt.Fprintf(w, "%d %d %s\n", len(route.Points), len(towers), route.OperatorPLMN)

	for _, p := range route.Points {
		xF := strconv.FormatFloat(p.X, 'f', -1, 64)
		yF := strconv.FormatFloat(p.Y, 'f', -1, 64)
		fmt.Fprintf(w, "%s %s\n", xF, yF)
	}

	for _, tw := range towers {
		xF := strconv.FormatFloat(tw.Pos.X, 'f', -1, 64)
		yF := strconv.FormatFloat(tw.Pos.Y, 'f', -1, 64)
		rogue := 0
		if tw.Rogue {
			rogue = 1
		}
		fmt.Fprintf(w, "%d %s %s %s %d %d %d %d %d\n",
			tw.ID, xF, yF, tw.PLMN, tw.Tech, tw.ARFCN, tw.TAC, tw.PCI, rogue)
	}

	return nil
}

// ReadWorldSnapshot reads a file written by WriteWorldSnapshot.
func ReadWorldSnapshot(filename string) (*Route, []*CellTower, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	bz, err := bzip2.NewReader(f, &bzip2.ReaderConfig{})
	if err != nil {
		return nil, nil, err
	}
	defer bz.Close()

	r := bufio.NewReader(bz)
	readLine := func() (string, error) {
		line, err := r.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || len(line) == 0) {
			return "", err
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	line, err := readLine()
	if err != nil {
		return nil, nil, err
	}
	parts := strings.Fields(line)
	if len(parts) != 3 {
		return nil, nil, fmt.Errorf("invalid snapshot header")
	}

	numPoints, err := strconv.Atoi(parts[0])
	if err != nil {
		return nil, nil, err
	}
	numTowers, err := strconv.Atoi(parts[1])
	if err != nil {
		return nil, nil, err
	}
	operatorPLMN := parts[2]

	if numPoints < 2 {
		return nil, nil, fmt.Errorf("snapshot route must contain at least 2 waypoints, got %d", numPoints)
	}

	points := make([]r2.Point, numPoints)
	for i := 0; i < numPoints; i++ {
		line, err = readLine()
		if err != nil {
			return nil, nil, err
		}
		parts = strings.Fields(line)
		if len(parts) != 2 {
			return nil, nil, fmt.Errorf("invalid waypoint line %q", line)
		}
		x, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return nil, nil, err
		}
		y, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return nil, nil, err
		}
		points[i] = geo.NewPoint(x, y)
	}

	towers := make([]*CellTower, 0, numTowers)
	for i := 0; i < numTowers; i++ {
		line, err = readLine()
		if err != nil {
			return nil, nil, err
		}
		parts = strings.Fields(line)
		if len(parts) != 9 {
			return nil, nil, fmt.Errorf("invalid tower line %q", line)
		}

		id, err := strconv.Atoi(parts[0])
		if err != nil {
			return nil, nil, err
		}
		x, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return nil, nil, err
		}
		y, err := strconv.ParseFloat(parts[2], 64)
		if err != nil {
			return nil, nil, err
		}
		tech, err := strconv.Atoi(parts[4])
		if err != nil {
			return nil, nil, err
		}
		arfcn, err := strconv.Atoi(parts[5])
		if err != nil {
			return nil, nil, err
		}
		tac, err := strconv.Atoi(parts[6])
		if err != nil {
			return nil, nil, err
		}
		pci, err := strconv.Atoi(parts[7])
		if err != nil {
			return nil, nil, err
		}

		tw := NewCellTower(id, geo.NewPoint(x, y), parts[3], pkg.RadioTech(tech), arfcn, tac, pci)
		tw.Rogue = parts[8] == "1"
		towers = append(towers, tw)
	}

	return NewRouteFromPolyline(points, operatorPLMN), towers, nil
}
