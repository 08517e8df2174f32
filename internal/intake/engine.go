package intake

import (
	"context"
	"database/sql"

	"github.com/homeservice/hsbot/core/logger"
	"github.com/homeservice/hsbot/internal/validate"
	"log/slog"
)

// Keyboard selects which reply keyboard accompanies an engine reply.
type Keyboard int

const (
	// KeyboardKeep leaves the current keyboard untouched.
	KeyboardKeep Keyboard = iota
	// KeyboardMain shows the main menu.
	KeyboardMain
	// KeyboardServices shows the service type menu.
	KeyboardServices
)

// Reply is what the engine wants said back to the user.
type Reply struct {
	Text     string
	Keyboard Keyboard
}

// SubmissionStore persists completed service requests.
type SubmissionStore interface {
	Submit(ctx context.Context, sub Submission) (Submission, bool, error)
}

// Notifier relays completed submissions and reviews to the operator.
type Notifier interface {
	Submission(ctx context.Context, sub Submission) error
	Review(ctx context.Context, text string) error
}

// Engine drives the intake dialogue. It owns the session store and decides
// replies; delivery is left to the transport layer.
type Engine struct {
	store  *Store
	repo   SubmissionStore
	notify Notifier
}

// NewEngine wires the dialogue engine.
func NewEngine(store *Store, repo SubmissionStore, notify Notifier) *Engine {
	return &Engine{store: store, repo: repo, notify: notify}
}

// Sessions exposes the session store for routing and handler registration.
func (e *Engine) Sessions() *Store {
	return e.store
}

// Welcome resets any active dialogue and greets the user with the main menu.
func (e *Engine) Welcome(userID int64) Reply {
	e.store.Clear(userID)
	return Reply{Text: textWelcome, Keyboard: KeyboardMain}
}

// Services offers the service type choice.
func (e *Engine) Services(int64) Reply {
	return Reply{Text: textChooseServiceType, Keyboard: KeyboardServices}
}

// About describes the business.
func (e *Engine) About(int64) Reply {
	return Reply{Text: textAbout}
}

// Back returns the user to the main menu.
func (e *Engine) Back(userID int64) Reply {
	e.store.Clear(userID)
	return Reply{Text: textWelcome, Keyboard: KeyboardMain}
}

// BeginIntake starts a fresh request dialogue for an individual or a company.
func (e *Engine) BeginIntake(userID int64, isCompany bool) Reply {
	e.store.Update(userID, func(sess *Session) {
		*sess = Session{State: StateAwaitingDescription, IsCompany: isCompany}
	})
	if isCompany {
		return Reply{Text: textCompanyIntro}
	}
	return Reply{Text: textIndividualIntro}
}

// StartReview opens the free-form review dialogue.
func (e *Engine) StartReview(userID int64) Reply {
	e.store.Update(userID, func(sess *Session) {
		*sess = Session{State: StateAwaitingReview}
	})
	return Reply{Text: textAskReview}
}

// HandleDescription records the problem description and advances the dialogue.
func (e *Engine) HandleDescription(ctx context.Context, userID int64, text string) Reply {
	var isCompany bool
	e.store.Update(userID, func(sess *Session) {
		sess.Description = text
		isCompany = sess.IsCompany
		if isCompany {
			sess.State = StateAwaitingTaxID
		} else {
			sess.State = StateAwaitingName
		}
	})
	e.logStep(ctx, userID, StateAwaitingDescription, isCompany)
	if isCompany {
		return Reply{Text: textAskTaxID}
	}
	return Reply{Text: textAskName}
}

// HandleTaxID validates and records the company tax id.
// Invalid input keeps the dialogue on the same step.
func (e *Engine) HandleTaxID(ctx context.Context, userID int64, text string) Reply {
	if !validate.TaxID(text) {
		logger.Info(ctx, "service.intake", "taxid.rejected",
			slog.String("status", "fail"),
			slog.Int64("user_id", userID),
		)
		return Reply{Text: textBadTaxID}
	}
	e.store.Update(userID, func(sess *Session) {
		sess.TaxID = text
		sess.State = StateAwaitingName
	})
	e.logStep(ctx, userID, StateAwaitingTaxID, true)
	return Reply{Text: textAskName}
}

// HandleName records the contact name and asks for the phone number.
func (e *Engine) HandleName(ctx context.Context, userID int64, text string) Reply {
	var isCompany bool
	e.store.Update(userID, func(sess *Session) {
		sess.Name = text
		sess.State = StateAwaitingPhone
		isCompany = sess.IsCompany
	})
	e.logStep(ctx, userID, StateAwaitingName, isCompany)
	return Reply{Text: textAskPhone}
}

// HandlePhone validates the phone number, persists the submission, and
// relays it to the operator. A storage failure keeps the dialogue open so
// the user can retry; a relay failure after a successful write is only logged.
func (e *Engine) HandlePhone(ctx context.Context, userID int64, text string) Reply {
	if !validate.Phone(text) {
		logger.Info(ctx, "service.intake", "phone.rejected",
			slog.String("status", "fail"),
			slog.Int64("user_id", userID),
		)
		return Reply{Text: textBadPhone}
	}

	sess := e.store.Get(userID)
	sub := Submission{
		Description: sess.Description,
		Name:        sess.Name,
		Phone:       text,
	}
	if sess.IsCompany && sess.TaxID != "" {
		sub.TaxID = sql.NullString{String: sess.TaxID, Valid: true}
	}

	stored, existing, err := e.repo.Submit(ctx, sub)
	if err != nil {
		logger.Error(ctx, "service.intake", "submission.store_failed",
			slog.String("status", "fail"),
			slog.Int64("user_id", userID),
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
		)
		return Reply{Text: textSubmitFail}
	}

	if err := e.notify.Submission(ctx, stored); err != nil {
		// The request is already persisted; losing the relay must not
		// fail the dialogue.
		logger.Error(ctx, "service.notify", "submission.relay_failed",
			slog.String("status", "fail"),
			slog.Int64("request_id", stored.UserID),
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
		)
	}

	logger.Info(ctx, "service.intake", "submission.accepted",
		slog.String("status", "ok"),
		slog.Int64("user_id", userID),
		slog.Int64("request_id", stored.UserID),
		slog.Bool("company", sess.IsCompany),
		slog.Bool("existing", existing),
	)

	e.store.Clear(userID)
	return Reply{Text: textSubmitted, Keyboard: KeyboardMain}
}

// HandleReview relays review text to the operator. Reviews are not stored,
// so a relay failure keeps the dialogue open.
func (e *Engine) HandleReview(ctx context.Context, userID int64, text string) Reply {
	if err := e.notify.Review(ctx, text); err != nil {
		logger.Error(ctx, "service.notify", "review.relay_failed",
			slog.String("status", "fail"),
			slog.Int64("user_id", userID),
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
		)
		return Reply{Text: textReviewFail}
	}

	logger.Info(ctx, "service.intake", "review.accepted",
		slog.String("status", "ok"),
		slog.Int64("user_id", userID),
	)

	e.store.Clear(userID)
	return Reply{Text: textReviewDone, Keyboard: KeyboardMain}
}

func (e *Engine) logStep(ctx context.Context, userID int64, from State, isCompany bool) {
	if !logger.ShouldSampleDebug() {
		return
	}
	next := e.store.GetState(userID)
	logger.Debug(ctx, "service.intake", "dialog.step",
		slog.String("status", "ok"),
		slog.Int64("user_id", userID),
		slog.String("state", string(from)),
		slog.String("next_state", string(next)),
		slog.Bool("company", isCompany),
	)
}
