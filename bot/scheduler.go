package bot

import (
	"context"
	"corp-bot/model"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"
)

// JobFunc is one run of a recurring job.
type JobFunc func(ctx context.Context) model.Result

// Notifier posts job output to a channel.
type Notifier interface {
	Send(channelID, content string) error
}

// JobInfo is a read-only view of a registered job.
type JobInfo struct {
	Name      string
	Interval  time.Duration
	ChannelID string
	LastRun   time.Time
	NextRun   time.Time
}

type job struct {
	name      string
	interval  time.Duration
	channelID string
	run       JobFunc
	lastRun   time.Time
	ran       bool
}

// Scheduler owns the recurring jobs. Jobs run one after another on the
// scheduler's goroutine, so their side effects never overlap.
type Scheduler struct {
	mu       sync.Mutex
	jobs     []*job
	notifier Notifier
	tick     time.Duration
	now      func() time.Time

	// OnFailure is called after a job fails, in addition to logging.
	OnFailure func(name string, err error)
	// OnWarning is called when a job completes with a warning.
	OnWarning func(name, warning string)
}

// NewScheduler creates a scheduler that checks for due jobs every tick.
func NewScheduler(notifier Notifier, tick time.Duration) *Scheduler {
	if tick <= 0 {
		tick = time.Second
	}
	return &Scheduler{
		notifier: notifier,
		tick:     tick,
		now:      time.Now,
	}
}

// Register adds a job that first runs one interval from now and then every
// interval after its previous run finished. Results are posted to channelID.
func (s *Scheduler) Register(name string, interval time.Duration, channelID string, run JobFunc) error {
	if interval <= 0 {
		return fmt.Errorf("job %s: interval must be positive", name)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, j := range s.jobs {
		if j.name == name {
			return fmt.Errorf("job %s already registered", name)
		}
	}
	log.Printf("Registering job %s every %s", name, interval)
	s.jobs = append(s.jobs, &job{
		name:      name,
		interval:  interval,
		channelID: channelID,
		run:       run,
		lastRun:   s.now(),
	})
	return nil
}

// Jobs returns a snapshot of the registered jobs.
func (s *Scheduler) Jobs() []JobInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	infos := make([]JobInfo, 0, len(s.jobs))
	for _, j := range s.jobs {
		info := JobInfo{
			Name:      j.name,
			Interval:  j.interval,
			ChannelID: j.channelID,
			NextRun:   j.lastRun.Add(j.interval),
		}
		if j.ran {
			info.LastRun = j.lastRun
		}
		infos = append(infos, info)
	}
	return infos
}

// Run checks for due jobs every tick until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	log.Println("Scheduler started")
	for {
		select {
		case <-ctx.Done():
			log.Println("Scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.RunPending(ctx)
		}
	}
}

// RunPending runs every job whose interval has elapsed. A job that was due
// several times over runs once.
func (s *Scheduler) RunPending(ctx context.Context) {
	s.mu.Lock()
	now := s.now()
	var due []*job
	for _, j := range s.jobs {
		if now.Sub(j.lastRun) >= j.interval {
			due = append(due, j)
		}
	}
	s.mu.Unlock()

	for _, j := range due {
		if ctx.Err() != nil {
			return
		}
		s.runJob(ctx, j)

		s.mu.Lock()
		j.lastRun = s.now()
		j.ran = true
		s.mu.Unlock()
	}
}

func (s *Scheduler) runJob(ctx context.Context, j *job) {
	start := time.Now()
	result := s.call(ctx, j)
	observeJob(j.name, result.Kind, time.Since(start))

	switch result.Kind {
	case model.ResultOk:
		for _, message := range result.Messages {
			if err := s.notifier.Send(j.channelID, message); err != nil {
				log.Printf("Job %s: failed to post to channel %s: %v", j.name, j.channelID, err)
			}
		}
	case model.ResultEmpty:
		log.Printf("Job %s: nothing to report", j.name)
	case model.ResultFailed:
		log.Printf("Job %s failed: %v", j.name, result.Err)
		if s.OnFailure != nil {
			s.OnFailure(j.name, result.Err)
		}
	}
	if result.Warning != "" {
		log.Printf("Job %s warning: %s", j.name, result.Warning)
		if s.OnWarning != nil {
			s.OnWarning(j.name, result.Warning)
		}
	}
}

func (s *Scheduler) call(ctx context.Context, j *job) (result model.Result) {
	defer func() {
		if r := recover(); r != nil {
			result = model.Failed(fmt.Errorf("panic: %v", r))
		}
	}()
	result = j.run(ctx)
	if result.Kind == model.ResultFailed && result.Err == nil {
		result.Err = errors.New("job failed without an error")
	}
	return result
}
