package admission

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/savetube/savetube/internal/fetch"
)

// Reason explains an admission decision.
type Reason string

// Decision reasons surfaced to the HTTP layer.
const (
	ReasonAdmitted   Reason = "admitted"
	ReasonBlocked    Reason = "blocked"
	ReasonBurst      Reason = "burst_limit"
	ReasonHourly     Reason = "hourly_limit"
	ReasonSuspicious Reason = "suspicious"
)

// Decision is the terminal per-request outcome of an admission check.
// Rejections never raise; each caller maps the reason to a response code.
type Decision struct {
	Allowed    bool
	Reason     Reason
	Detail     string
	RetryAfter time.Duration
}

// Probe carries the request attributes the bot heuristic inspects.
type Probe struct {
	UserAgent      string
	AcceptLanguage string
}

// Config holds the admission thresholds.
type Config struct {
	// Window and WindowCap bound rapid bursts.
	Window    time.Duration
	WindowCap int
	// HourlyWindow and HourlyCap bound sustained scraping. The ledger is
	// pruned to this window, so burst entries keep counting toward the hourly
	// budget until they age out of it.
	HourlyWindow time.Duration
	HourlyCap    int
	// BlockDuration is advisory only: it is reported as retry-after but no
	// timer enforces it per identity.
	BlockDuration time.Duration
	// BlockClearSize triggers a wholesale clear of the block set once its
	// cardinality exceeds it. This is the only unblock mechanism.
	BlockClearSize int
}

// DefaultConfig mirrors the service's production thresholds.
func DefaultConfig() Config {
	return Config{
		Window:         60 * time.Second,
		WindowCap:      10,
		HourlyWindow:   time.Hour,
		HourlyCap:      50,
		BlockDuration:  5 * time.Minute,
		BlockClearSize: 100,
	}
}

// Controller owns the request ledger and block set.
type Controller struct {
	mu      sync.Mutex
	ledger  map[string][]time.Time
	blocked map[string]struct{}

	cfg    Config
	clock  fetch.Clock
	logger *zap.Logger
}

// New creates a Controller.
func New(cfg Config, clock fetch.Clock, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		ledger:  make(map[string][]time.Time),
		blocked: make(map[string]struct{}),
		cfg:     cfg,
		clock:   clock,
		logger:  logger,
	}
}

// Admit runs the admission algorithm for one request. The prune-then-append
// sequence is atomic per call so concurrent bursts from the same identity
// cannot undercount.
func (c *Controller) Admit(identity string, probe Probe) Decision {
	now := c.clock.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.maybeClearBlockSet()

	if _, ok := c.blocked[identity]; ok {
		c.logger.Warn("blocked identity attempted access", zap.String("identity", identity))
		return Decision{Reason: ReasonBlocked, RetryAfter: c.cfg.BlockDuration}
	}

	ts := pruneBefore(c.ledger[identity], now.Add(-c.cfg.HourlyWindow))
	c.ledger[identity] = ts

	if countSince(ts, now.Add(-c.cfg.Window)) >= c.cfg.WindowCap {
		c.blocked[identity] = struct{}{}
		c.logger.Warn("burst limit exceeded, identity blocked", zap.String("identity", identity))
		return Decision{Reason: ReasonBurst, RetryAfter: c.cfg.BlockDuration}
	}

	if len(ts) >= c.cfg.HourlyCap {
		c.logger.Warn("hourly limit exceeded", zap.String("identity", identity))
		return Decision{Reason: ReasonHourly, RetryAfter: c.cfg.HourlyWindow}
	}

	if sus, detail := Suspicious(probe.UserAgent, probe.AcceptLanguage); sus {
		c.logger.Warn("suspicious request rejected",
			zap.String("identity", identity),
			zap.String("detail", detail),
			zap.String("user_agent", probe.UserAgent),
		)
		return Decision{Reason: ReasonSuspicious, Detail: detail}
	}

	c.ledger[identity] = append(ts, now)
	return Decision{Allowed: true, Reason: ReasonAdmitted}
}

// Blocked reports whether an identity is currently in the block set.
func (c *Controller) Blocked(identity string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.blocked[identity]
	return ok
}

// maybeClearBlockSet drops every block once the set grows past the configured
// size. There is no per-identity expiry; the advisory block duration is never
// enforced by a timer. Callers hold c.mu.
func (c *Controller) maybeClearBlockSet() {
	if c.cfg.BlockClearSize <= 0 || len(c.blocked) <= c.cfg.BlockClearSize {
		return
	}
	c.logger.Warn("block set cleared wholesale", zap.Int("size", len(c.blocked)))
	c.blocked = make(map[string]struct{})
}

func pruneBefore(ts []time.Time, cutoff time.Time) []time.Time {
	kept := ts[:0]
	for _, t := range ts {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	return kept
}

func countSince(ts []time.Time, cutoff time.Time) int {
	n := 0
	for _, t := range ts {
		if t.After(cutoff) {
			n++
		}
	}
	return n
}
