package booking

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"smokyloft/internal/config"
	"smokyloft/internal/events"
	"smokyloft/internal/handoff"
	"smokyloft/internal/metrics"
	"smokyloft/internal/models"
	"smokyloft/internal/phone"
)

// State represents the current step of the booking wizard.
type State string

const (
	StateClosed            State = "closed"
	StateSelectingSchedule State = "selecting_schedule"
	StateSelectingTable    State = "selecting_table"
	StateEnteringContact   State = "entering_contact"
	StateConfirmed         State = "confirmed"
)

// Guard errors returned when a transition is rejected. The host UI maps
// these to disabled affordances, not error messages.
var (
	ErrWizardClosed       = errors.New("wizard is closed")
	ErrWrongStep          = errors.New("action not available at this step")
	ErrScheduleIncomplete = errors.New("date and time must both be selected")
	ErrUnknownDate        = errors.New("date label is not offered")
	ErrUnknownTime        = errors.New("time slot is not offered")
	ErrUnknownTable       = errors.New("table does not exist in the hall layout")
	ErrTableTaken         = errors.New("table is already taken for the selected slot")
	ErrNoTableSelected    = errors.New("no table selected")
	ErrContactIncomplete  = errors.New("name and phone must both be filled in")
)

// FSM manages the allowed wizard transitions.
type FSM struct {
	transitions map[State][]State
}

// NewFSM creates the wizard FSM. Backward transitions are always allowed;
// forward ones are additionally gated by the wizard's guards.
func NewFSM() *FSM {
	return &FSM{
		transitions: map[State][]State{
			StateClosed:            {StateSelectingSchedule},
			StateSelectingSchedule: {StateSelectingTable, StateClosed},
			StateSelectingTable:    {StateEnteringContact, StateSelectingSchedule, StateClosed},
			StateEnteringContact:   {StateConfirmed, StateSelectingTable, StateClosed},
			StateConfirmed:         {StateClosed},
		},
	}
}

// CanTransition checks if transition is allowed.
func (f *FSM) CanTransition(from, to State) bool {
	allowed, ok := f.transitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// Session holds the transient selections of one wizard run. Selections are
// owned by the wizard alone; the store is touched only through Create.
type Session struct {
	ID        string
	State     State
	Draft     models.Draft
	StartedAt time.Time
	UpdatedAt time.Time

	// prevPhoneInput tracks the raw phone text between keystrokes so the
	// mask can tell typing from deleting.
	prevPhoneInput string
}

// TableInfo is what a table click yields: either a selection or an info
// view of the existing booking when the table is taken.
type TableInfo struct {
	Table   config.TableConfig
	Taken   bool
	Booking *models.Reservation
}

// Cart is the collaborator the wizard reads for the order summary and
// clears on success.
type Cart interface {
	Items() []models.CartItem
	Clear() error
}

// AdminNotifier pushes the booking summary to the venue side channel.
type AdminNotifier interface {
	Notify(ctx context.Context, text string)
}

// Wizard drives the three-step booking flow:
// schedule -> table -> contact -> confirmed.
type Wizard struct {
	store    *Store
	cart     Cart
	cfg      *config.Config
	hall     *config.HallConfig
	opener   handoff.Opener
	notifier AdminNotifier
	bus      *events.EventBus
	fsm      *FSM
	logger   *zerolog.Logger

	mu      sync.Mutex
	session *Session
}

// NewWizard wires the wizard with its collaborators. notifier may be nil.
func NewWizard(store *Store, cart Cart, cfg *config.Config, hall *config.HallConfig,
	opener handoff.Opener, notifier AdminNotifier, bus *events.EventBus, logger *zerolog.Logger) *Wizard {
	return &Wizard{
		store:    store,
		cart:     cart,
		cfg:      cfg,
		hall:     hall,
		opener:   opener,
		notifier: notifier,
		bus:      bus,
		fsm:      NewFSM(),
		logger:   logger,
	}
}

// Open starts a fresh wizard run. Whatever a prior abandoned session left
// behind is discarded.
func (w *Wizard) Open() {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := time.Now()
	w.session = &Session{
		ID:        uuid.NewString(),
		State:     StateSelectingSchedule,
		StartedAt: now,
		UpdatedAt: now,
	}
	w.logger.Debug().Str("session", w.session.ID).Msg("wizard opened")
}

// Close abandons the current run.
func (w *Wizard) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.session != nil {
		w.logger.Debug().Str("session", w.session.ID).Str("state", string(w.session.State)).Msg("wizard closed")
	}
	w.session = nil
}

// State returns the current wizard state; Closed when no session is open.
func (w *Wizard) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.session == nil {
		return StateClosed
	}
	return w.session.State
}

// Draft returns a snapshot of the accumulated selections.
func (w *Wizard) Draft() models.Draft {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.session == nil {
		return models.Draft{}
	}
	return w.session.Draft
}

// SelectDate picks a date label at the schedule step.
func (w *Wizard) SelectDate(date string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.require(StateSelectingSchedule); err != nil {
		return err
	}
	if !w.cfg.ValidDate(date) {
		return ErrUnknownDate
	}
	w.session.Draft.Date = date
	w.touch()
	return nil
}

// SelectTime picks a time slot at the schedule step.
func (w *Wizard) SelectTime(timeSlot string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.require(StateSelectingSchedule); err != nil {
		return err
	}
	if !w.cfg.ValidTime(timeSlot) {
		return ErrUnknownTime
	}
	w.session.Draft.Time = timeSlot
	w.touch()
	return nil
}

// SelectTable handles a table click at the table step. Clicking a taken
// table yields an info view of the existing booking and selects nothing.
func (w *Wizard) SelectTable(tableID int) (*TableInfo, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.require(StateSelectingTable); err != nil {
		return nil, err
	}

	table := w.hall.TableByID(tableID)
	if table == nil {
		return nil, ErrUnknownTable
	}

	info := &TableInfo{Table: *table}
	if w.store.IsTableTaken(tableID, w.session.Draft.Date, w.session.Draft.Time) {
		info.Taken = true
		info.Booking = w.store.ForTable(tableID, w.session.Draft.Date)
		return info, nil
	}

	w.session.Draft.TableID = tableID
	w.touch()
	return info, nil
}

// SetName fills the guest name at the contact step.
func (w *Wizard) SetName(name string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.require(StateEnteringContact); err != nil {
		return err
	}
	w.session.Draft.Name = name
	w.touch()
	return nil
}

// InputPhone feeds raw phone input through the progressive mask and stores
// the result. Returns the masked value the input field should show.
func (w *Wizard) InputPhone(raw string) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.require(StateEnteringContact); err != nil {
		return "", err
	}
	masked := phone.Format(raw, w.session.prevPhoneInput)
	w.session.prevPhoneInput = raw
	w.session.Draft.Phone = masked
	w.touch()
	return masked, nil
}

// Next attempts the forward transition from the current step, running its
// guard. A rejected guard leaves the state unchanged.
func (w *Wizard) Next() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.session == nil {
		return ErrWizardClosed
	}

	switch w.session.State {
	case StateSelectingSchedule:
		if !w.session.Draft.HasSchedule() {
			return ErrScheduleIncomplete
		}
		return w.transition(StateSelectingTable)

	case StateSelectingTable:
		if w.session.Draft.TableID == 0 {
			return ErrNoTableSelected
		}
		// The availability guard re-runs on every forward attempt: going
		// back and forth does not carry a stale check.
		if w.store.IsTableTaken(w.session.Draft.TableID, w.session.Draft.Date, w.session.Draft.Time) {
			return ErrTableTaken
		}
		return w.transition(StateEnteringContact)

	default:
		return ErrWrongStep
	}
}

// Back steps to the previous wizard step without clearing entered data.
func (w *Wizard) Back() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.session == nil {
		return ErrWizardClosed
	}

	switch w.session.State {
	case StateSelectingTable:
		return w.transition(StateSelectingSchedule)
	case StateEnteringContact:
		return w.transition(StateSelectingTable)
	default:
		return ErrWrongStep
	}
}

// Confirm finishes the flow: persists the reservation, opens the deep link,
// notifies the admin channel, clears the cart and closes the wizard. The
// reservation is committed the moment the store write returns; handoff
// failures do not roll it back.
func (w *Wizard) Confirm(ctx context.Context) (models.Reservation, string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.session == nil {
		return models.Reservation{}, "", ErrWizardClosed
	}
	if w.session.State != StateEnteringContact {
		return models.Reservation{}, "", ErrWrongStep
	}
	if !w.session.Draft.HasContact() {
		metrics.IncWizardConfirm("rejected")
		return models.Reservation{}, "", ErrContactIncomplete
	}

	reservation, err := w.store.Create(w.session.Draft)
	if err != nil {
		metrics.IncWizardConfirm("error")
		return models.Reservation{}, "", err
	}

	table := w.hall.TableByID(reservation.TableID)
	items := w.cart.Items()
	summary := handoff.Summary(w.cfg, table, reservation, items)
	link := handoff.DeepLink(w.cfg.Venue.TelegramAdmin, summary)

	if w.opener != nil {
		// Best effort: a deep link that fails to open is not detected or
		// retried, and the local record stays.
		if err := w.opener.Open(link); err != nil {
			w.logger.Warn().Err(err).Msg("deep link open failed")
		}
	}
	if w.notifier != nil {
		w.notifier.Notify(ctx, summary)
	}

	if err := w.cart.Clear(); err != nil {
		w.logger.Warn().Err(err).Msg("cart clear failed")
	}

	if w.bus != nil {
		w.bus.Publish(events.TypeBookingConfirmed, reservation)
	}
	metrics.IncWizardConfirm("success")

	w.session.State = StateConfirmed
	w.logger.Info().
		Str("session", w.session.ID).
		Str("reservation", reservation.ID).
		Msg("booking confirmed")
	w.session = nil

	return reservation, link, nil
}

func (w *Wizard) require(state State) error {
	if w.session == nil {
		return ErrWizardClosed
	}
	if w.session.State != state {
		return ErrWrongStep
	}
	return nil
}

func (w *Wizard) transition(to State) error {
	if !w.fsm.CanTransition(w.session.State, to) {
		return ErrWrongStep
	}
	w.session.State = to
	w.touch()
	return nil
}

func (w *Wizard) touch() {
	w.session.UpdatedAt = time.Now()
}
