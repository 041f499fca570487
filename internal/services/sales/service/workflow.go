package service

import (
	"context"
	"strconv"
	"sync"
	"time"

	"tradepost/internal/platform/logger"
	"tradepost/internal/services/sales/domain"
)

// DefaultConfirmWindow is how long a session waits for a choice before timing out
const DefaultConfirmWindow = 15 * time.Second

const (
	msgCancelled  = "Sell cancelled."
	msgTimedOut   = "No response. Sell cancelled."
	msgSellFailed = "Failed to sell item."
)

// workflow owns every pending confirmation session. Each session gets a
// buffered event channel of capacity one and a single consumer goroutine,
// so the first delivered choice wins and everything after it is dropped
type workflow struct {
	log      *logger.Logger
	window   time.Duration
	now      func() time.Time
	exec     domain.ExecutorPort
	notifier domain.NotifierPort
	audit    domain.AuditPort

	mu       sync.Mutex
	sessions map[string]*liveSession
}

type liveSession struct {
	sess   domain.Session
	token  string
	events chan domain.Choice
}

func newWorkflow(window time.Duration, exec domain.ExecutorPort, notifier domain.NotifierPort, audit domain.AuditPort) *workflow {
	if window <= 0 {
		window = DefaultConfirmWindow
	}
	return &workflow{
		log:      logger.Named("sales.workflow"),
		window:   window,
		now:      time.Now,
		exec:     exec,
		notifier: notifier,
		audit:    audit,
		sessions: make(map[string]*liveSession),
	}
}

// Open registers the session and starts its consumer goroutine.
// The returned deadline is what the prompt advertises to the requester
func (w *workflow) Open(sess domain.Session, token string) time.Time {
	sess.CreatedAt = w.now()
	sess.Deadline = sess.CreatedAt.Add(w.window)

	live := &liveSession{
		sess:   sess,
		token:  token,
		events: make(chan domain.Choice, 1),
	}

	w.mu.Lock()
	w.sessions[sess.ID] = live
	w.mu.Unlock()

	go w.await(live)
	return sess.Deadline
}

// Resolve hands a choice to the session's consumer. Unknown sessions,
// actors other than the requester, and events racing a terminal transition
// are all dropped silently
func (w *workflow) Resolve(ctx context.Context, sessionID, actorID string, choice domain.Choice) {
	w.mu.Lock()
	live, ok := w.sessions[sessionID]
	w.mu.Unlock()
	if !ok {
		logger.C(ctx).Debug().Str("session_id", sessionID).Msg("resolve for unknown session dropped")
		return
	}
	if actorID != live.sess.RequesterID {
		logger.C(ctx).Debug().
			Str("session_id", sessionID).
			Str("actor_id", actorID).
			Msg("resolve from non-requester ignored")
		return
	}

	select {
	case live.events <- choice:
	default:
		// a choice already landed; this one loses the race
	}
}

func (w *workflow) await(live *liveSession) {
	defer func() {
		if rec := recover(); rec != nil {
			w.log.Error().Interface("panic", rec).Str("session_id", live.sess.ID).Msg("session consumer panicked")
			w.remove(live.sess.ID)
			// the session is abandoned; still owe the requester a reply.
			// the notifier may be what panicked, so guard the attempt
			func() {
				defer func() { _ = recover() }()
				_ = w.notifier.FinalOutcome(context.Background(), domain.FinalMessage{
					SessionID:   live.sess.ID,
					RequesterID: live.sess.RequesterID,
					Content:     "Error while selling item. Please try again later.",
				})
			}()
		}
	}()

	timer := time.NewTimer(live.sess.Deadline.Sub(w.now()))
	defer timer.Stop()

	select {
	case choice := <-live.events:
		w.remove(live.sess.ID)
		switch choice {
		case domain.ChoiceConfirm:
			w.finish(live, domain.ResolutionConfirmed)
		default:
			w.finish(live, domain.ResolutionCancelled)
		}
	case <-timer.C:
		w.remove(live.sess.ID)
		w.finish(live, domain.ResolutionTimedOut)
	}
}

func (w *workflow) remove(sessionID string) {
	w.mu.Lock()
	delete(w.sessions, sessionID)
	w.mu.Unlock()
}

// finish runs after the session has left the registry, exactly once per session
func (w *workflow) finish(live *liveSession, res domain.Resolution) {
	ctx := context.Background()
	sess := live.sess

	var outcome domain.Outcome
	switch res {
	case domain.ResolutionConfirmed:
		outcome = w.execute(ctx, live)
		if outcome.Success {
			outcome.Message = "Successfully sold `" + sess.Item.Name + "` for " +
				formatCredits(sess.Item.Price*float64(sess.Amount)) + " credits!"
		}
	case domain.ResolutionCancelled:
		outcome = domain.Outcome{Success: false, Message: msgCancelled}
	case domain.ResolutionTimedOut:
		outcome = domain.Outcome{Success: false, Message: msgTimedOut}
	}

	final := domain.FinalMessage{
		SessionID:   sess.ID,
		RequesterID: sess.RequesterID,
		Resolution:  res,
		Content:     outcome.Message,
	}
	if err := w.notifier.FinalOutcome(ctx, final); err != nil {
		w.log.Warn().Err(err).Str("session_id", sess.ID).Msg("final message delivery failed")
	}

	entry := domain.AuditEntry{
		SessionID:   sess.ID,
		RequesterID: sess.RequesterID,
		ItemID:      sess.Item.ID,
		Amount:      sess.Amount,
		Resolution:  res,
		Success:     outcome.Success,
		Message:     outcome.Message,
		At:          w.now(),
	}
	if err := w.audit.Append(ctx, entry); err != nil {
		w.log.Warn().Err(err).Str("session_id", sess.ID).Msg("audit append failed")
	}
}

// execute runs the confirmed sell; a panicking executor counts as a failed sell
func (w *workflow) execute(ctx context.Context, live *liveSession) (outcome domain.Outcome) {
	defer func() {
		if rec := recover(); rec != nil {
			w.log.Error().Interface("panic", rec).Str("session_id", live.sess.ID).Msg("executor panicked")
			outcome = domain.Outcome{Success: false, Message: msgSellFailed}
		}
	}()
	return w.exec.Execute(ctx, live.token, live.sess.Item.ID, live.sess.Amount)
}

func formatCredits(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
