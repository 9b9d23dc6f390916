package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/medspa-api/internal/timezone"
	ucInventory "github.com/BruksfildServices01/medspa-api/internal/usecase/inventory"
)

var parser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

const jobTimeout = 2 * time.Minute

// Scheduler runs the periodic background jobs.
type Scheduler struct {
	cron *cron.Cron
}

// New registers the low-stock sweep on spec, evaluated in the clinic timezone.
// An empty spec disables the sweep.
func New(tz, spec string, sweep *ucInventory.SweepLowStock) (*Scheduler, error) {
	c := cron.New(
		cron.WithLocation(timezone.Location(tz)),
		cron.WithParser(parser),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)

	if spec != "" {
		if _, err := c.AddFunc(spec, func() { runSweep(sweep) }); err != nil {
			return nil, err
		}
	}

	return &Scheduler{cron: c}, nil
}

func runSweep(sweep *ucInventory.SweepLowStock) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	res, err := sweep.Execute(ctx)
	if err != nil {
		zap.L().Error("low stock sweep failed", zap.Error(err))
		return
	}
	zap.L().Info("low stock sweep",
		zap.Int("checked", res.Checked),
		zap.Int("opened", res.Opened),
		zap.Int("alerted", res.Alerted),
	)
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop waits for a running job to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		zap.L().Warn("scheduler stop timed out")
	}
}

func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}
