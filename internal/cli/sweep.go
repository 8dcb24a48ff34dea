package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"

	"chunkwise/internal/logger"
)

type SweepCmd struct {
	Watch    bool   `short:"w" help:"Keep running and sweep on a schedule."`
	Schedule string `short:"s" help:"Cron schedule for --watch." default:"@hourly"`
}

func (c *SweepCmd) Run(ctx *Context) error {
	run := func() {
		count, err := ctx.Engine.CheckExpired(ctx.Owner)
		if err != nil {
			logger.Error("expiry sweep failed", "error", err)
			fmt.Printf("Sweep failed: %v\n", err)
			return
		}
		if count == 0 {
			fmt.Println("No plans to expire")
		} else {
			fmt.Printf("Expired %d plan(s)\n", count)
		}
	}

	run()
	if !c.Watch {
		return nil
	}

	sched := cron.New()
	if _, err := sched.AddFunc(c.Schedule, run); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", c.Schedule, err)
	}
	sched.Start()
	defer sched.Stop()
	fmt.Printf("Watching; sweeping on schedule %q (ctrl-c to stop)\n", c.Schedule)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	fmt.Println("\nStopped")
	return nil
}
