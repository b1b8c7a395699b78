package cron

import (
	"context"
	"time"

	"go.uber.org/zap"

	"relaybot/internal/catalog"
	"relaybot/internal/retry"
	"relaybot/internal/schedule"
)

// Persistent infrastructure job ids. These survive every daily rebuild.
const (
	JobDailyReload = "daily_reload"
	JobHealthCheck = "health_check"
)

const probeTimeout = 30 * time.Second

// Forwarder delivers one item to all destinations.
type Forwarder interface {
	Forward(ctx context.Context, item string, messageID int) error
}

// Prober is the transport liveness check.
type Prober interface {
	GetMe() (string, error)
}

// ControllerOptions tune the rebuild cycle.
type ControllerOptions struct {
	StartHour      int
	IntervalHours  int
	RebuildHour    int
	HealthInterval time.Duration
	Mode           schedule.Mode
}

// Controller rebuilds the day's forwarding schedule: once at startup and
// then daily at the rebuild hour. It is the only writer of the job set
// besides the initial installers.
type Controller struct {
	sched     *Scheduler
	cat       *catalog.Catalog
	rotation  catalog.Rotation
	forwarder Forwarder
	prober    Prober
	opts      ControllerOptions
	logger    *zap.Logger
}

// NewController wires a rebuild controller. The catalog and rotation must
// already be validated.
func NewController(sched *Scheduler, cat *catalog.Catalog, rotation catalog.Rotation, forwarder Forwarder, prober Prober, opts ControllerOptions, logger *zap.Logger) *Controller {
	return &Controller{
		sched:     sched,
		cat:       cat,
		rotation:  rotation,
		forwarder: forwarder,
		prober:    prober,
		opts:      opts,
		logger:    logger,
	}
}

// Start clears any previous job set, builds today's schedule immediately
// (whatever the current time of day), installs the persistent reload and
// health-check jobs, and starts the scheduler. ctx bounds every job action
// for the life of the process.
func (c *Controller) Start(ctx context.Context) {
	c.sched.RemoveAll()

	c.logger.Info("Initial schedule build")
	c.Rebuild(ctx)

	c.sched.Add(JobDailyReload, Daily(c.opts.RebuildHour, 0), func() {
		c.Rebuild(ctx)
	})
	c.logger.Info("Daily reload installed",
		zap.Int("hour", c.opts.RebuildHour))

	if c.prober != nil && c.opts.HealthInterval > 0 {
		c.sched.Add(JobHealthCheck, Every(c.opts.HealthInterval), func() {
			c.healthCheck(ctx)
		})
		c.logger.Info("Health check installed",
			zap.Duration("interval", c.opts.HealthInterval))
	}

	c.sched.Start()
}

// Rebuild replaces all non-persistent jobs with today's rotation slots and
// reports the next run.
func (c *Controller) Rebuild(ctx context.Context) {
	c.logger.Info("Rebuilding today's schedule")

	c.sched.RemoveAll(JobDailyReload, JobHealthCheck)

	now := c.sched.Now()
	names, err := c.rotation.SelectForDay(c.cat, now.Weekday())
	if err != nil {
		// Tables are validated at startup; this indicates a bug.
		c.logger.Error("Rotation lookup failed", zap.Error(err))
		return
	}
	if len(names) == 0 {
		c.logger.Info("No rotation today, no forwarding jobs created",
			zap.String("weekday", now.Weekday().String()))
		c.reportNextRun()
		return
	}

	c.logger.Info("Rotation selected",
		zap.String("weekday", now.Weekday().String()),
		zap.Strings("items", names))

	slots := schedule.Assign(names, c.opts.StartHour, c.opts.IntervalHours, now, c.opts.Mode)
	for _, slot := range slots {
		messageID, err := c.cat.Resolve(slot.Item)
		if err != nil {
			c.logger.Error("Skipping unresolvable item", zap.Error(err))
			continue
		}
		item := slot.Item
		c.sched.Add(item, slot.Spec, func() {
			_ = c.forwarder.Forward(ctx, item, messageID)
			c.reportNextRun()
		})
	}

	c.logger.Info("Schedule built", zap.Int("jobs", len(slots)))
	c.reportNextRun()
}

func (c *Controller) healthCheck(ctx context.Context) {
	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	env := retry.New()
	var identity string
	err := env.Do(probeCtx, func() error {
		me, probeErr := c.prober.GetMe()
		identity = me
		return probeErr
	})
	if err != nil {
		c.logger.Warn("Health check failed", zap.Error(err))
		return
	}
	c.logger.Debug("Health check ok", zap.String("bot", identity))
}

func (c *Controller) reportNextRun() {
	id, at, ok := c.sched.NextFire()
	if !ok {
		c.logger.Info("No upcoming runs")
		return
	}
	c.logger.Info("Next run", zap.String("job", id), zap.Time("at", at))
}
