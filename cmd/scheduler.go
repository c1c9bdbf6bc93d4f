package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"
)

// scheduler periodically rescans every video node. A nil scheduler is a no-op.
type scheduler struct {
	c     *cron.Cron
	jobId cron.EntryID
}

func newScheduler(ctx context.Context, schedule string, cameras *CameraService) (*scheduler, error) {
	if schedule == "" {
		return nil, nil
	}

	c := cron.New()
	jobId, err := c.AddFunc(schedule, func() {
		if err := cameras.ScanAll(ctx); err != nil {
			log.Printf("[v4l2] Scheduled rescan failed: %v", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add %s cron, check syntax: %w", schedule, err)
	}
	log.Printf("Added camera rescan schedule: cron='%s'", schedule)
	return &scheduler{
		c:     c,
		jobId: jobId,
	}, nil
}

func (s *scheduler) Start() {
	if s != nil {
		s.c.Start()
	}
}

func (s *scheduler) Stop() {
	if s != nil {
		<-s.c.Stop().Done()
	}
}
