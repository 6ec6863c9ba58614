// Package autosave turns a stream of form edits into coalesced draft saves.
//
// Every edit re-arms a single timer; a save is attempted only after a quiet
// period with no edits. Saves run on the timer's goroutine and never block
// the caller that reports the edit.
package autosave

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/oybek/wellness/entity"
	"github.com/oybek/wellness/model"
)

const (
	DefaultInterval    = 5 * time.Second
	DefaultSaveTimeout = 10 * time.Second
)

type Field string

const (
	FieldSessionID  Field = "sessionId"
	FieldTitle      Field = "title"
	FieldTags       Field = "tags"
	FieldContentURL Field = "json_file_url"
)

// Saver is the save contract of the session service as seen by one editor.
type Saver interface {
	SaveDraft(ctx context.Context, in model.SessionInput) (entity.Session, error)
	Publish(ctx context.Context, in model.SessionInput) (entity.Session, error)
}

// Form holds the editor's field values. Tags is the raw comma-delimited text.
type Form struct {
	SessionID  string
	Title      string
	Tags       string
	ContentURL string
}

func (f Form) ready() bool {
	return strings.TrimSpace(f.Title) != "" && strings.TrimSpace(f.ContentURL) != ""
}

func (f Form) Input() model.SessionInput {
	return model.SessionInput{
		SessionID:  f.SessionID,
		Title:      f.Title,
		Tags:       model.ParseTags(f.Tags),
		ContentURL: f.ContentURL,
	}
}

// Status is what a save indicator shows.
type Status struct {
	Saving    bool
	LastSaved time.Time
	LastError error
}

type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d, like time.AfterFunc.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

type Persistor struct {
	saver       Saver
	interval    time.Duration
	saveTimeout time.Duration
	afterFunc   AfterFunc
	now         func() time.Time
	log         zerolog.Logger

	mu        sync.Mutex
	form      Form
	timer     Timer
	gen       uint64
	closed    bool
	inflight  int
	lastSaved time.Time
	lastErr   error

	// createDone is non-nil while a save for a form without a session id
	// is outstanding, and is closed once that save has returned.
	createDone chan struct{}

	wg sync.WaitGroup
}

type Option func(*Persistor)

func WithInterval(d time.Duration) Option {
	return func(p *Persistor) { p.interval = d }
}

func WithSaveTimeout(d time.Duration) Option {
	return func(p *Persistor) { p.saveTimeout = d }
}

func WithAfterFunc(af AfterFunc) Option {
	return func(p *Persistor) { p.afterFunc = af }
}

func WithClock(now func() time.Time) Option {
	return func(p *Persistor) { p.now = now }
}

func WithLogger(l zerolog.Logger) Option {
	return func(p *Persistor) { p.log = l }
}

func New(saver Saver, opts ...Option) *Persistor {
	p := &Persistor{
		saver:       saver,
		interval:    DefaultInterval,
		saveTimeout: DefaultSaveTimeout,
		afterFunc:   realAfterFunc,
		now:         time.Now,
		log:         zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Load replaces the form state, e.g. with a session fetched for editing.
// It does not schedule a save.
func (p *Persistor) Load(f Form) {
	p.mu.Lock()
	p.form = f
	p.mu.Unlock()
}

func (p *Persistor) Form() Form {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.form
}

func (p *Persistor) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Status{Saving: p.inflight > 0, LastSaved: p.lastSaved, LastError: p.lastErr}
}

// OnFieldChange merges value into the form and restarts the quiet period.
func (p *Persistor) OnFieldChange(field Field, value string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch field {
	case FieldSessionID:
		p.form.SessionID = value
	case FieldTitle:
		p.form.Title = value
	case FieldTags:
		p.form.Tags = value
	case FieldContentURL:
		p.form.ContentURL = value
	default:
		p.log.Debug().Str("field", string(field)).Msg("ignoring unknown field")
		return
	}
	if !p.closed {
		p.armLocked()
	}
}

func (p *Persistor) armLocked() {
	p.cancelLocked()
	gen := p.gen
	p.timer = p.afterFunc(p.interval, func() { p.fire(gen) })
}

// cancelLocked stops the pending timer. Bumping gen also neutralises a timer
// whose callback has already started.
func (p *Persistor) cancelLocked() {
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	p.gen++
}

func (p *Persistor) fire(gen uint64) {
	p.mu.Lock()
	if p.closed || gen != p.gen {
		p.mu.Unlock()
		return
	}
	p.timer = nil
	form := p.form
	if !form.ready() {
		p.mu.Unlock()
		return
	}
	if form.SessionID == "" && p.createDone != nil {
		// Wait for the pending create to hand us an id before saving again.
		p.armLocked()
		p.mu.Unlock()
		return
	}
	creating := p.beginCreateLocked(form)
	p.inflight++
	p.wg.Add(1)
	p.mu.Unlock()
	defer p.wg.Done()

	ctx, cancel := context.WithTimeout(context.Background(), p.saveTimeout)
	defer cancel()
	sess, err := p.saver.SaveDraft(ctx, form.Input())

	p.mu.Lock()
	defer p.mu.Unlock()
	defer p.endCreateLocked(creating)
	p.inflight--
	if err != nil {
		p.lastErr = err
		p.log.Warn().Err(err).Str("session_id", form.SessionID).Msg("autosave failed")
		return
	}
	p.recordLocked(sess)
	p.log.Debug().Str("session_id", sess.ID).Msg("draft autosaved")
}

func (p *Persistor) beginCreateLocked(form Form) bool {
	if form.SessionID != "" {
		return false
	}
	p.createDone = make(chan struct{})
	return true
}

func (p *Persistor) endCreateLocked(creating bool) {
	if creating {
		close(p.createDone)
		p.createDone = nil
	}
}

// recordLocked notes a successful save and adopts the id of a newly created
// session so later saves update it.
func (p *Persistor) recordLocked(sess entity.Session) {
	p.lastSaved = p.now()
	p.lastErr = nil
	if p.form.SessionID == "" && sess.ID != "" {
		p.form.SessionID = sess.ID
	}
}

// SaveNow saves the current form as a draft right away.
func (p *Persistor) SaveNow(ctx context.Context) (entity.Session, error) {
	return p.saveImmediately(ctx, p.saver.SaveDraft)
}

// Publish sends the current form to the publish call right away.
func (p *Persistor) Publish(ctx context.Context) (entity.Session, error) {
	return p.saveImmediately(ctx, p.saver.Publish)
}

// saveImmediately waits for a pending create so it reuses the new id, then
// drops a pending autosave and calls save. If save fails the dropped
// autosave is scheduled again.
func (p *Persistor) saveImmediately(
	ctx context.Context,
	save func(context.Context, model.SessionInput) (entity.Session, error),
) (entity.Session, error) {
	p.mu.Lock()
	for p.createDone != nil {
		done := p.createDone
		p.mu.Unlock()
		select {
		case <-done:
		case <-ctx.Done():
			return entity.Session{}, ctx.Err()
		}
		p.mu.Lock()
	}
	hadPending := p.timer != nil
	p.cancelLocked()
	form := p.form
	creating := p.beginCreateLocked(form)
	p.inflight++
	p.mu.Unlock()

	sess, err := save(ctx, form.Input())

	p.mu.Lock()
	defer p.mu.Unlock()
	defer p.endCreateLocked(creating)
	p.inflight--
	if err != nil {
		p.lastErr = err
		if hadPending && !p.closed {
			p.armLocked()
		}
		return entity.Session{}, err
	}
	p.recordLocked(sess)
	return sess, nil
}

// Close cancels any pending save, stops further scheduling and waits for an
// in-flight autosave to return.
func (p *Persistor) Close() {
	p.mu.Lock()
	p.closed = true
	p.cancelLocked()
	p.mu.Unlock()

	p.wg.Wait()
}
