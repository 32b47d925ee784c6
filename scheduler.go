package notionpub

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// startScheduler rebuilds the site every interval until ctx is done or the
// returned scheduler is shut down. A run that is still going when the next
// one is due delays it instead of overlapping.
func (a *App) startScheduler(ctx context.Context, every time.Duration) (gocron.Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("notionpub: create scheduler: %w", err)
	}
	_, err = s.NewJob(
		gocron.DurationJob(every),
		gocron.NewTask(a.scheduledBuild, ctx),
		gocron.WithName("rebuild"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, fmt.Errorf("notionpub: schedule rebuild: %w", err)
	}
	s.Start()
	a.Log.Info("scheduled rebuilds", "every", every)
	return s, nil
}

func (a *App) scheduledBuild(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if _, err := a.Build(ctx, BuildOptions{}); err != nil {
		a.Log.Error("scheduled build failed", "err", err)
	}
}
