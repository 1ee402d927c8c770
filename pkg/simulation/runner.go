package simulation

import (
	"context"
	"time"

	"github.com/openrlce/routelock/pkg"
	"github.com/openrlce/routelock/pkg/datastructure"
	"github.com/openrlce/routelock/pkg/engine"
	"go.uber.org/zap"
)

// Listener receives every evaluated poll result along with how long the
// evaluation took. Listeners run on the control loop goroutine and must not
// block.
type Listener func(res engine.PollResult, train *datastructure.Train, elapsed time.Duration)

// Runner is the single-goroutine control loop. It owns all mutation of the
// world, the train and the engine: each tick it applies queued commands,
// advances the auto-pilot and polls the engine. Everything else (HTTP
// handlers, the websocket hub) talks to the simulation by posting commands.
type Runner struct {
	log   *zap.Logger
	eng   *engine.Engine
	world *World
	train *datastructure.Train

	tick      time.Duration
	commands  chan func()
	listeners []Listener
}

func NewRunner(eng *engine.Engine, world *World, train *datastructure.Train,
	log *zap.Logger) *Runner {

	return &Runner{
		log:      log,
		eng:      eng,
		world:    world,
		train:    train,
		tick:     pkg.MIN_POLL_MS * time.Millisecond,
		commands: make(chan func(), 64),
	}
}

// AddListener registers a decision listener. Call before Run starts; the
// listener slice is not guarded afterwards.
func (r *Runner) AddListener(l Listener) {
	r.listeners = append(r.listeners, l)
}

// Do posts a command onto the control loop. The command runs between ticks
// with exclusive access to the engine, world and train.
func (r *Runner) Do(cmd func()) {
	r.commands <- cmd
}

// DoSync posts a command and waits for it to complete. Handlers use it to
// read a consistent snapshot of the simulation state.
func (r *Runner) DoSync(cmd func()) {
	done := make(chan struct{})
	r.commands <- func() {
		cmd()
		close(done)
	}
	<-done
}

// Run drives the loop until the context is cancelled. It never returns an
// error; cancellation is the only way out.
func (r *Runner) Run(ctx context.Context) {
	ticker := time.NewTicker(r.tick)
	defer ticker.Stop()

	r.log.Info("control loop started", zap.Duration("tick", r.tick))
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			r.log.Info("control loop stopped")
			return
		case cmd := <-r.commands:
			cmd()
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now

			if r.train.Auto {
				AdvanceAlongRoute(r.train, r.world.Route(), dt)
			}
			start := time.Now()
			res := r.eng.Poll(r.train.Pos, now)
			elapsed := time.Since(start)
			if !res.Evaluated {
				continue
			}
			for _, l := range r.listeners {
				l(res, r.train, elapsed)
			}
		}
	}
}
