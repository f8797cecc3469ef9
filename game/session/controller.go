package session

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/wricardo/numdash/game/engine"
	"github.com/wricardo/numdash/game/score"
	"github.com/wricardo/numdash/game/service"
)

// MaxHistory bounds the per-session event log
const MaxHistory = 1000

// ControllerOptions configures a Controller
type ControllerOptions struct {
	Mode       service.Mode
	PlayerName string
	Seed       int64
	Recorder   *score.Recorder

	// ManualTick leaves the glitch timer off. Glitches wake after ManualGraceMoves
	// player moves and then step with every move; callers may also drive
	// Activate and Tick themselves.
	ManualTick bool

	// OnUpdate receives a snapshot after every committed transition, including
	// timer-driven glitch moves. It is called without the controller lock held.
	OnUpdate func(service.Snapshot)
}

// ManualGraceMoves is the move-count grace period of a session without a timer
const ManualGraceMoves = 5

// Controller runs the level state machine for one game:
// starting -> playing -> level_complete -> playing ... -> game_over.
//
// Player moves and timer ticks both go through the controller's mutex and the
// engine always reduces from its latest committed state. Every timer goroutine
// carries the epoch it was started in; stopping or replacing a level bumps the
// epoch so a late tick from a superseded level is dropped.
type Controller struct {
	mu     sync.Mutex
	config *engine.GameConfig
	opts   ControllerOptions
	rng    *rand.Rand
	engine *engine.GameEngine
	status service.Status

	epoch  uint64
	cancel context.CancelFunc

	events   []service.GameEvent
	seq      int
	recorded bool
	notice   string
}

// NewController builds level 1 in the starting state. Call Start to begin play.
func NewController(config *engine.GameConfig, opts ControllerOptions) (*Controller, error) {
	if config == nil {
		config = engine.DefaultGameConfig()
	}
	if opts.Mode == "" {
		opts.Mode = service.ModeNormal
	}
	if opts.Mode != service.ModeNormal && opts.Mode != service.ModeChallenge {
		return nil, fmt.Errorf("%w: %q", service.ErrInvalidMode, opts.Mode)
	}
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}

	c := &Controller{
		config: config,
		opts:   opts,
		rng:    rand.New(rand.NewSource(opts.Seed)),
		status: service.StatusStarting,
	}

	plan, ok := config.PlanLevel(1, c.challenge())
	if !ok {
		return nil, fmt.Errorf("config %q has no playable levels", config.Name)
	}
	eng, err := engine.NewEngine(config, plan, 0, config.Lives, c.rng)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}
	c.engine = eng
	c.appendEvent("level_started", fmt.Sprintf("Level %d: %s", plan.Number, eng.GetState().Rule.Name()), eng.GetState().PlayerPos)

	return c, nil
}

func (c *Controller) victoryMessage(points int) string {
	if c.config.Messages.Victory == "" {
		return fmt.Sprintf("You cleared every level! Final score: %d", points)
	}
	return fmt.Sprintf(c.config.Messages.Victory, points)
}

func (c *Controller) challenge() bool {
	return c.opts.Mode == service.ModeChallenge
}

// Start moves the controller from starting to playing and starts the glitch timer
func (c *Controller) Start() {
	c.mu.Lock()
	if c.status != service.StatusStarting {
		c.mu.Unlock()
		return
	}
	c.status = service.StatusPlaying
	c.startTimerLocked()
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(snap)
}

// Stop cancels the glitch timer. The game state is kept.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopTimerLocked()
}

// Epoch returns the current timer epoch
func (c *Controller) Epoch() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.epoch
}

// Status returns the state machine's current state
func (c *Controller) Status() service.Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Move resolves a player move in a direction
func (c *Controller) Move(direction engine.Direction) (engine.Resolution, []service.GameEvent, error) {
	dir, ok := engine.ParseDirection(string(direction))
	if !ok {
		return engine.Resolution{}, nil, fmt.Errorf("%w: %q", service.ErrInvalidDirection, direction)
	}
	return c.play(engine.MoveAction(dir))
}

// MoveTo resolves a player move onto an adjacent cell
func (c *Controller) MoveTo(dest engine.Position) (engine.Resolution, []service.GameEvent, error) {
	return c.play(engine.MoveToAction(dest))
}

func (c *Controller) play(action engine.Action) (engine.Resolution, []service.GameEvent, error) {
	c.mu.Lock()
	if c.status != service.StatusPlaying {
		status := c.status
		c.mu.Unlock()
		return engine.Resolution{}, nil, fmt.Errorf("%w: status is %s", service.ErrNotPlaying, status)
	}

	var res engine.Resolution
	if action.Destination != nil {
		res = c.engine.MoveTo(*action.Destination)
	} else {
		res = c.engine.Move(action.Direction)
	}
	events := c.afterResolutionLocked(res)
	if c.opts.ManualTick && c.status == service.StatusPlaying {
		if state := c.engine.GetState(); !state.GlitchesActive && state.TotalMoves >= ManualGraceMoves {
			events = append(events, c.afterResolutionLocked(c.engine.ActivateGlitches())...)
		}
	}
	snap := c.snapshotLocked()
	c.mu.Unlock()

	if res.Outcome != engine.OutcomeIgnored {
		c.notify(snap)
	}
	return res, events, nil
}

// Activate ends the grace period. It reports false when epoch is stale or the game is not in play.
func (c *Controller) Activate(epoch uint64) bool {
	c.mu.Lock()
	if epoch != c.epoch || c.status != service.StatusPlaying {
		c.mu.Unlock()
		return false
	}
	res := c.engine.ActivateGlitches()
	c.afterResolutionLocked(res)
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(snap)
	return true
}

// Tick advances the glitches one step. It reports false when epoch is stale or
// the game is not in play.
func (c *Controller) Tick(epoch uint64) bool {
	c.mu.Lock()
	if epoch != c.epoch || c.status != service.StatusPlaying {
		c.mu.Unlock()
		return false
	}
	res := c.engine.Tick()
	c.afterResolutionLocked(res)
	snap := c.snapshotLocked()
	c.mu.Unlock()

	if res.Outcome != engine.OutcomeIgnored {
		c.notify(snap)
	}
	return true
}

// NextLevel leaves level_complete. It builds the next level keeping the score and
// refilling lives, or finishes the game when no level follows.
func (c *Controller) NextLevel() ([]service.GameEvent, error) {
	c.mu.Lock()
	if c.status != service.StatusLevelComplete {
		status := c.status
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: status is %s", service.ErrLevelNotComplete, status)
	}

	first := c.seq
	current := c.engine.GetState()
	plan, ok := c.config.PlanLevel(current.Level+1, c.challenge())
	if !ok {
		c.status = service.StatusGameOver
		c.appendEvent("victory", c.victoryMessage(current.Score), current.PlayerPos)
		c.autoRecordLocked()
	} else {
		eng, err := engine.NewEngine(c.config, plan, current.Score, c.config.Lives, c.rng)
		if err != nil {
			c.mu.Unlock()
			return nil, fmt.Errorf("failed to build level %d: %w", plan.Number, err)
		}
		c.engine = eng
		c.status = service.StatusPlaying
		state := eng.GetState()
		c.appendEvent("level_started", fmt.Sprintf("Level %d: %s", plan.Number, state.Rule.Name()), state.PlayerPos)
		c.startTimerLocked()
	}
	events := c.eventsSinceLocked(first)
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(snap)
	return events, nil
}

// RecordScore saves the finished game's score under playerName. A game records at most once.
func (c *Controller) RecordScore(playerName string) (score.Entry, int, error) {
	c.mu.Lock()
	if c.status != service.StatusGameOver {
		c.mu.Unlock()
		return score.Entry{}, 0, service.ErrGameNotOver
	}
	if c.recorded {
		c.mu.Unlock()
		return score.Entry{}, 0, service.ErrScoreAlreadyRecorded
	}
	c.recorded = true
	entry := c.entryLocked(playerName)
	c.mu.Unlock()

	saved, rank, err := c.opts.Recorder.RecordSync(entry)
	c.scoreOutcome(saved, rank, err)
	if err != nil {
		c.mu.Lock()
		c.recorded = false
		c.mu.Unlock()
	}
	return saved, rank, err
}

// Snapshot returns the read-only view of the game
func (c *Controller) Snapshot() service.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// DescribeCell reports what occupies a cell of the current board
func (c *Controller) DescribeCell(p engine.Position) engine.CellView {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.engine.GetState().DescribeCell(p)
}

// History returns a page of the event log
func (c *Controller) History(opts service.HistoryOptions) service.HistoryResponse {
	c.mu.Lock()
	history := append([]service.GameEvent(nil), c.events...)
	c.mu.Unlock()

	// Set defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	total := len(history)
	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	var events []service.GameEvent
	if opts.Order == "desc" {
		// Most recent first
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			events = append(events, history[i])
		}
	} else if start < total {
		events = history[start:end]
	}
	if events == nil {
		events = []service.GameEvent{}
	}

	return service.HistoryResponse{
		Events:      events,
		TotalEvents: total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}
}

// afterResolutionLocked logs the resolution's events and applies terminal transitions.
// It returns the events it logged.
func (c *Controller) afterResolutionLocked(res engine.Resolution) []service.GameEvent {
	first := c.seq
	for _, ev := range res.Events {
		c.appendEngineEvent(ev)
	}

	state := c.engine.GetState()
	switch {
	case state.GameOver:
		c.status = service.StatusGameOver
		c.stopTimerLocked()
		c.autoRecordLocked()
	case state.LevelComplete:
		c.status = service.StatusLevelComplete
		c.stopTimerLocked()
	}
	return c.eventsSinceLocked(first)
}

func (c *Controller) appendEngineEvent(ev engine.Event) {
	c.seq++
	c.pushLocked(service.GameEvent{
		Seq:       c.seq,
		Type:      string(ev.Type),
		Message:   ev.Message,
		Timestamp: time.Now(),
		Position:  ev.Position,
		Score:     ev.Score,
		Lives:     ev.Lives,
		Level:     c.engine.GetPlan().Number,
	})
}

func (c *Controller) appendEvent(kind, message string, pos engine.Position) {
	c.seq++
	ev := service.GameEvent{
		Seq:       c.seq,
		Type:      kind,
		Message:   message,
		Timestamp: time.Now(),
		Position:  pos,
	}
	if c.engine != nil {
		ev.Score = c.engine.GetScore()
		ev.Lives = c.engine.GetLives()
		ev.Level = c.engine.GetPlan().Number
	}
	c.pushLocked(ev)
}

// eventsSinceLocked returns the logged events with a sequence number above seq
func (c *Controller) eventsSinceLocked(seq int) []service.GameEvent {
	i := len(c.events)
	for i > 0 && c.events[i-1].Seq > seq {
		i--
	}
	return append([]service.GameEvent{}, c.events[i:]...)
}

func (c *Controller) pushLocked(ev service.GameEvent) {
	c.events = append(c.events, ev)
	if len(c.events) > MaxHistory {
		c.events = append([]service.GameEvent(nil), c.events[len(c.events)-MaxHistory:]...)
	}
}

// autoRecordLocked records the score in the background when the game has a player name
func (c *Controller) autoRecordLocked() {
	if c.recorded || c.opts.PlayerName == "" || c.opts.Recorder == nil {
		return
	}
	c.recorded = true
	c.opts.Recorder.Record(c.entryLocked(c.opts.PlayerName), c.scoreOutcome)
}

func (c *Controller) entryLocked(playerName string) score.Entry {
	state := c.engine.GetState()
	return score.Entry{
		PlayerName:   playerName,
		Score:        state.Score,
		Level:        state.Level,
		RuleCategory: state.Rule.Name(),
		Mode:         string(c.opts.Mode),
	}
}

// scoreOutcome turns a save result into a notice. Gameplay state is not touched.
func (c *Controller) scoreOutcome(saved score.Entry, rank int, err error) {
	c.mu.Lock()
	pos := c.engine.GetPlayerPosition()
	if err != nil {
		c.notice = "Your score could not be saved."
		c.appendEvent("score_failed", err.Error(), pos)
	} else {
		if rank > 0 {
			c.notice = fmt.Sprintf("Score saved! You placed #%d.", rank)
		} else {
			c.notice = "Score saved."
		}
		c.appendEvent("score_recorded", fmt.Sprintf("%s scored %d", saved.PlayerName, saved.Score), pos)
	}
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(snap)
}

func (c *Controller) snapshotLocked() service.Snapshot {
	state := c.engine.GetState()
	plan := c.engine.GetPlan()

	moves := make([]string, 0, 4)
	if c.status == service.StatusPlaying {
		for _, d := range c.engine.GetPossibleMoves() {
			moves = append(moves, string(d))
		}
	}

	return service.Snapshot{
		Status:           c.status,
		Mode:             c.opts.Mode,
		PlayerName:       c.opts.PlayerName,
		Level:            state.Level,
		FinalLevel:       c.config.IsFinalLevel(state.Level, c.challenge()),
		Score:            state.Score,
		Lives:            state.Lives,
		RuleID:           state.Rule.ID(),
		RuleName:         state.Rule.Name(),
		RuleDescription:  state.Rule.Description(),
		Remaining:        state.RemainingMatching(),
		Multiplier:       plan.Difficulty.Multiplier,
		Tier:             plan.Difficulty.Tier,
		GlitchIntervalMs: plan.GlitchInterval.Milliseconds(),
		PossibleMoves:    moves,
		Rows:             state.RenderRows(),
		Message:          state.Message,
		Notice:           c.notice,
		State:            state,
	}
}

func (c *Controller) notify(snap service.Snapshot) {
	if c.opts.OnUpdate != nil {
		c.opts.OnUpdate(snap)
	}
}

// startTimerLocked launches the glitch timer for the current level in a new epoch
func (c *Controller) startTimerLocked() {
	c.stopTimerLocked()
	if c.opts.ManualTick {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel

	grace := time.Duration(c.config.GracePeriodMs) * time.Millisecond
	interval := c.engine.GetPlan().GlitchInterval
	if interval <= 0 {
		interval = engine.DefaultGlitchIntervalMs * time.Millisecond
	}
	go c.runTimer(ctx, c.epoch, grace, interval)
}

// stopTimerLocked cancels the running timer and invalidates its epoch
func (c *Controller) stopTimerLocked() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.epoch++
}

func (c *Controller) runTimer(ctx context.Context, epoch uint64, grace, interval time.Duration) {
	delay := time.NewTimer(grace)
	defer delay.Stop()

	select {
	case <-ctx.Done():
		return
	case <-delay.C:
	}
	if !c.Activate(epoch) {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !c.Tick(epoch) {
				return
			}
		}
	}
}
