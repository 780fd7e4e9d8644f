// Package app holds the explicit application state of the client: the active
// session, the transaction ledger, the sync scheduler and their lifecycle.
// All user actions (login, register, submit, refresh, logout) flow through
// the App so there is no package-level mutable state anywhere in the client.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/Azaziop/systeme-detect-fraude/internal/alert"
	"github.com/Azaziop/systeme-detect-fraude/internal/api"
	"github.com/Azaziop/systeme-detect-fraude/internal/core"
	"github.com/Azaziop/systeme-detect-fraude/internal/ledger"
	"github.com/Azaziop/systeme-detect-fraude/internal/metrics"
	"github.com/Azaziop/systeme-detect-fraude/internal/scheduler"
	"github.com/Azaziop/systeme-detect-fraude/internal/view"
)

var (
	ErrUsernameTooShort = errors.New("username must be at least 3 characters")
	ErrPasswordTooShort = errors.New("password must be at least 8 characters")
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrEmptyEmail       = errors.New("empty email")
)

// Gateway is the outbound port to the backend services.
type Gateway interface {
	Login(ctx context.Context, username, password string) (string, error)
	Register(ctx context.Context, username, email, password, passwordConfirm string) error
	CreateTransaction(ctx context.Context, req api.CreateTransactionRequest) (core.Transaction, error)
	ListTransactions(ctx context.Context) ([]core.Transaction, error)
}

// StateStore persists the session snapshot across restarts.
type StateStore interface {
	Save(ctx context.Context, sess core.Session) error
	Load(ctx context.Context) (core.Session, bool)
	Clear(ctx context.Context) error
}

// Options configures a new App.
type Options struct {
	// SyncInterval is the period of the silent background refresh.
	SyncInterval time.Duration
	// Render receives the updated view model after every ledger change.
	// Optional; nil disables rendering.
	Render func(view.Model)
}

type App struct {
	gateway  Gateway
	store    StateStore
	notifier alert.Notifier
	ledger   *ledger.Ledger
	sched    *scheduler.Scheduler
	render   func(view.Model)

	mu      sync.Mutex
	session core.Session
	filter  ledger.Filter
	// gen counts teardowns. A network result that started under an older
	// generation belongs to a destroyed session and must be discarded.
	gen uint64
}

func New(gateway Gateway, store StateStore, notifier alert.Notifier, opts Options) *App {
	if notifier == nil {
		notifier = alert.LogNotifier{}
	}
	a := &App{
		gateway:  gateway,
		store:    store,
		notifier: notifier,
		ledger:   ledger.New(),
		render:   opts.Render,
	}
	a.sched = scheduler.New(a.Refresh, scheduler.Config{Interval: opts.SyncInterval})
	return a
}

// Session returns a copy of the current session.
func (a *App) Session() core.Session {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session
}

// Credential returns the active bearer credential, or "" when logged out.
// Suitable as an api.TokenProvider.
func (a *App) Credential() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session.Credential
}

// Ledger exposes the transaction collection for read-side consumers.
func (a *App) Ledger() *ledger.Ledger {
	return a.ledger
}

// Scheduler exposes the background sync handle.
func (a *App) Scheduler() *scheduler.Scheduler {
	return a.sched
}

// Restore resumes a persisted session at startup. It refreshes the ledger
// and starts the background sync; an expired credential is detected by the
// refresh and clears the session again.
func (a *App) Restore(ctx context.Context) bool {
	sess, ok := a.store.Load(ctx)
	if !ok {
		return false
	}

	a.mu.Lock()
	a.session = sess
	a.mu.Unlock()

	slog.InfoContext(ctx, "Session restored", "username", sess.Username)

	if err := a.Refresh(ctx, false); err != nil {
		if api.AuthExpired(err) {
			// forceLogout already ran inside Refresh.
			return false
		}
		slog.WarnContext(ctx, "Initial refresh after restore failed", "error", err)
	}

	if err := a.sched.Start(ctx); err != nil {
		slog.WarnContext(ctx, "Failed to start sync scheduler", "error", err)
	}
	a.notify(ctx, alert.SeverityInfo, "Session restored")
	return true
}

// Login authenticates, persists the session and starts the background sync.
func (a *App) Login(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		err := errors.New("username and password are required")
		a.notify(ctx, alert.SeverityError, err.Error())
		return err
	}

	credential, err := a.gateway.Login(ctx, username, password)
	if err != nil {
		a.notify(ctx, alert.SeverityError, "Login failed: "+err.Error())
		return err
	}

	sess := core.Session{Username: username, Credential: credential}
	a.mu.Lock()
	a.session = sess
	a.mu.Unlock()

	if err := a.store.Save(ctx, sess); err != nil {
		slog.WarnContext(ctx, "Failed to persist session", "error", err)
	}

	a.notify(ctx, alert.SeveritySuccess, "Logged in")

	if err := a.Refresh(ctx, false); err != nil {
		if api.AuthExpired(err) {
			return err
		}
		slog.WarnContext(ctx, "Initial refresh after login failed", "error", err)
	}
	if err := a.sched.Start(ctx); err != nil {
		slog.WarnContext(ctx, "Failed to start sync scheduler", "error", err)
	}
	return nil
}

// Register creates an account. Validation failures are local and never reach
// the network.
func (a *App) Register(ctx context.Context, username, email, password, passwordConfirm string) error {
	if err := validateRegistration(username, email, password, passwordConfirm); err != nil {
		a.notify(ctx, alert.SeverityError, err.Error())
		return err
	}

	if err := a.gateway.Register(ctx, username, email, password, passwordConfirm); err != nil {
		a.notify(ctx, alert.SeverityError, "Registration failed: "+err.Error())
		return err
	}

	a.notify(ctx, alert.SeveritySuccess, "Registration successful, you can now log in")
	return nil
}

func validateRegistration(username, email, password, passwordConfirm string) error {
	if len(strings.TrimSpace(username)) < 3 {
		return ErrUsernameTooShort
	}
	if !strings.Contains(email, "@") {
		return ErrEmptyEmail
	}
	if len(password) < 8 {
		return ErrPasswordTooShort
	}
	if password != passwordConfirm {
		return ErrPasswordMismatch
	}
	return nil
}

// Logout stops the background sync, then discards the session, the ledger
// contents and the persisted snapshot as one transition, so no stale refresh
// can repopulate a destroyed session's data.
func (a *App) Logout(ctx context.Context) {
	a.teardown(ctx)
	a.notify(ctx, alert.SeverityInfo, "Logged out")
}

// forceLogout is the 401 path: identical teardown, distinct message.
func (a *App) forceLogout(ctx context.Context) {
	a.teardown(ctx)
	a.notify(ctx, alert.SeverityError, "Session expired, please log in again")
}

func (a *App) teardown(ctx context.Context) {
	// Async stop: a forced logout can originate inside the scheduler's own
	// refresh call, where waiting for the loop would deadlock.
	a.sched.StopAsync()

	a.mu.Lock()
	a.session = core.Session{}
	a.gen++
	a.mu.Unlock()

	a.ledger.Clear()
	if err := a.store.Clear(ctx); err != nil {
		slog.WarnContext(ctx, "Failed to clear persisted session", "error", err)
	}
	a.renderNow()
}

// Submit runs the optimistic submission state machine: local validation, a
// provisional head insert rendered before the network call resolves, then
// reconciliation with the authoritative record or a rollback on failure.
func (a *App) Submit(ctx context.Context, amount float64, merchant, category, description string) error {
	a.mu.Lock()
	sess := a.session
	gen := a.gen
	a.mu.Unlock()

	if !sess.Active() {
		a.notify(ctx, alert.SeverityError, core.ErrNoActiveSession.Error())
		return core.ErrNoActiveSession
	}

	draft := core.Transaction{Amount: amount, Merchant: merchant, Category: category}
	if err := draft.Validate(); err != nil {
		a.notify(ctx, alert.SeverityError, err.Error())
		return err
	}

	provisional := core.NewProvisional(sess.Username, amount, merchant, category, description)
	a.ledger.InsertProvisional(provisional)
	a.renderNow()
	a.notify(ctx, alert.SeverityInfo, "Transaction submitted, scoring in progress...")
	metrics.SubmittedTransactions.Inc()

	started := time.Now()
	authoritative, err := a.gateway.CreateTransaction(ctx, api.CreateTransactionRequest{
		UserID:      provisional.UserID,
		Amount:      provisional.Amount,
		Merchant:    provisional.Merchant,
		Category:    provisional.Category,
		Description: provisional.Description,
		Timestamp:   provisional.Timestamp,
	})
	if err != nil {
		a.ledger.ReconcileFailure(provisional.ID)
		a.renderNow()
		metrics.FailedSubmissions.Inc()
		if a.staleSince(gen) {
			return err
		}
		if api.AuthExpired(err) {
			a.forceLogout(ctx)
			return err
		}
		a.notify(ctx, alert.SeverityError, "Transaction failed: "+err.Error())
		return err
	}
	metrics.SubmissionDuration.Observe(time.Since(started).Seconds())

	if a.staleSince(gen) {
		// The session was torn down while the call was in flight. The record
		// was created server-side; the next login's refresh delivers it.
		return nil
	}

	a.ledger.ReconcileSuccess(provisional.ID, authoritative)
	a.renderNow()

	switch {
	case authoritative.IsFraud:
		metrics.FraudAlerts.Inc()
		a.notify(ctx, alert.SeverityFraud,
			fmt.Sprintf("FRAUD ALERT: transaction of %.2f at %s was blocked", authoritative.Amount, authoritative.Merchant))
	case authoritative.HighRisk():
		metrics.FraudAlerts.Inc()
		a.notify(ctx, alert.SeverityFraud,
			fmt.Sprintf("High risk score %.1f%% for transaction at %s", *authoritative.FraudScore*100, authoritative.Merchant))
	default:
		a.notify(ctx, alert.SeveritySuccess, "Transaction created")
	}
	return nil
}

// Refresh replaces the ledger with the backend's current transaction list.
// Silent refreshes swallow errors (logged only); a 401 forces logout either
// way. A failed refresh leaves the ledger unchanged.
func (a *App) Refresh(ctx context.Context, silent bool) error {
	a.mu.Lock()
	active := a.session.Active()
	gen := a.gen
	a.mu.Unlock()
	if !active {
		return core.ErrNoActiveSession
	}

	txs, err := a.gateway.ListTransactions(ctx)

	if a.staleSince(gen) {
		// A logout landed while the fetch was outstanding. The result must
		// not repopulate the cleared ledger.
		return core.ErrNoActiveSession
	}

	if err != nil {
		metrics.LedgerRefreshes.WithLabelValues("error").Inc()
		if api.AuthExpired(err) {
			a.forceLogout(ctx)
			return err
		}
		if silent {
			slog.DebugContext(ctx, "Silent refresh failed", "error", err)
		} else {
			a.notify(ctx, alert.SeverityError, "Refresh failed: "+err.Error())
		}
		return err
	}

	metrics.LedgerRefreshes.WithLabelValues("ok").Inc()
	a.ledger.ReplaceAll(txs)
	a.renderNow()
	return nil
}

// SetFilter updates the projection filter and re-renders. Filters never touch
// the underlying ledger order.
func (a *App) SetFilter(f ledger.Filter) {
	a.mu.Lock()
	a.filter = f
	a.mu.Unlock()
	a.renderNow()
}

// View returns the current projection of the ledger through the active filter.
func (a *App) View() view.Model {
	a.mu.Lock()
	f := a.filter
	a.mu.Unlock()
	return view.Render(a.ledger.Snapshot(), f)
}

// ExportCSV writes the full unfiltered ledger snapshot as CSV.
func (a *App) ExportCSV(w io.Writer) error {
	return view.WriteCSV(w, a.ledger.Snapshot())
}

// Shutdown stops background work. The state store is closed by the caller
// that opened it.
func (a *App) Shutdown(ctx context.Context) {
	if err := a.sched.Stop(ctx); err != nil {
		slog.WarnContext(ctx, "Scheduler stop failed during shutdown", "error", err)
	}
}

// staleSince reports whether a teardown ran after the given generation was
// observed.
func (a *App) staleSince(gen uint64) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.gen != gen
}

func (a *App) renderNow() {
	if a.render == nil {
		return
	}
	a.render(a.View())
}

func (a *App) notify(ctx context.Context, sev alert.Severity, text string) {
	a.notifier.Notify(ctx, alert.Notification{Severity: sev, Text: text})
}
