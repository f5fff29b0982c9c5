// Package poller runs the background loop that turns finished recording
// bots into completed-meeting records.
package poller

import (
	"context"
	"log/slog"
	"time"

	"github.com/postmeetinghq/postmeeting/internal/instrumentation"
	"github.com/postmeetinghq/postmeeting/internal/logging"
	"github.com/postmeetinghq/postmeeting/internal/recall"
	"github.com/postmeetinghq/postmeeting/internal/store"
)

const (
	// DefaultInterval is the wait between successful poll cycles.
	DefaultInterval = 120 * time.Second

	// DefaultErrorInterval is the shortened wait after a failed cycle.
	DefaultErrorInterval = 60 * time.Second
)

// Poller periodically asks Recall for finished bots and correlates them
// back to the calendar events they were scheduled for.
type Poller struct {
	store  store.Store
	recall *recall.Client
	logger *slog.Logger

	interval      time.Duration
	errorInterval time.Duration

	// OnCycle, when set, observes each cycle's outcome for metrics.
	OnCycle func(completed int, err error)

	// Metrics, when set, records each poll as a vendor API operation.
	Metrics *instrumentation.Metrics
}

// New builds a poller with the default intervals.
func New(st store.Store, rc *recall.Client, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		store:         st,
		recall:        rc,
		logger:        logging.WithService(logger, "poller"),
		interval:      DefaultInterval,
		errorInterval: DefaultErrorInterval,
	}
}

// Run loops until ctx is cancelled. A cycle runs immediately on entry; a
// failed cycle shortens the next wait.
func (p *Poller) Run(ctx context.Context) {
	p.logger.Info("background polling started",
		slog.Duration("interval", p.interval))

	for cycle := 1; ; cycle++ {
		completed, err := p.RunOnce(ctx)
		if p.OnCycle != nil {
			p.OnCycle(len(completed), err)
		}

		wait := p.interval
		if err != nil {
			if ctx.Err() != nil {
				p.logger.Info("background polling stopped")
				return
			}
			p.logger.Error("poll cycle failed",
				slog.Int("cycle", cycle), logging.Err(err))
			wait = p.errorInterval
		} else if len(completed) > 0 {
			p.logger.Info("poll cycle processed completed meetings",
				slog.Int("cycle", cycle), slog.Int("completed", len(completed)))
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			p.logger.Info("background polling stopped")
			return
		case <-timer.C:
		}
	}
}

// RunOnce executes a single poll cycle and returns the bots that completed
// during it. Completed bots with no matching schedule are logged and
// dropped.
func (p *Poller) RunOnce(ctx context.Context) ([]recall.CompletedBot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var completed []recall.CompletedBot
	_ = instrumentation.ObserveVendorOperation(ctx, p.Metrics, instrumentation.ServiceRecall, instrumentation.OperationPoll, "", func(ctx context.Context) error {
		completed = p.recall.PollManagedBots(ctx)
		return ctx.Err()
	})
	for _, bot := range completed {
		p.process(bot)
	}
	return completed, ctx.Err()
}

// process correlates one completed bot with its scheduled event and writes
// the permanent meeting record.
func (p *Poller) process(bot recall.CompletedBot) {
	eventID, ok := p.store.EventForBot(bot.BotID)
	if !ok {
		p.logger.Warn("no scheduled event found for completed bot",
			logging.BotID(bot.BotID))
		return
	}

	schedule, _ := p.store.ScheduledBot(eventID)
	info := schedule.MeetingInfo

	meeting := store.CompletedMeeting{
		MeetingID:   eventID,
		BotID:       bot.BotID,
		Transcript:  bot.Transcript,
		Status:      "completed",
		CompletedAt: bot.EndTime,
		Duration:    info.DurationMinutes,
		Attendees:   info.Attendees,
		Platform:    info.Platform,
		MeetingURL:  info.MeetingURL,
		Title:       info.Title,
	}
	if meeting.Title == "" {
		meeting.Title = "Untitled Meeting"
	}
	if meeting.Platform == "" {
		meeting.Platform = "unknown"
	}

	botCopy := bot
	p.store.CompleteScheduledBot(eventID, &botCopy)

	if !p.store.AddCompletedMeeting(meeting) {
		p.logger.Warn("completed meeting already recorded, keeping first record",
			logging.MeetingID(eventID), logging.BotID(bot.BotID))
		return
	}

	p.logger.Info("stored completed meeting",
		logging.MeetingID(eventID),
		logging.BotID(bot.BotID),
		slog.Int("transcript_chars", len(bot.Transcript)))
}
