package booking

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smokyloft/internal/cart"
	"smokyloft/internal/config"
	"smokyloft/internal/events"
	"smokyloft/internal/handoff"
	"smokyloft/internal/models"
	"smokyloft/internal/storage"
)

func TestFSMTransitions(t *testing.T) {
	fsm := NewFSM()

	tests := []struct {
		name        string
		from        State
		to          State
		shouldAllow bool
	}{
		{"open", StateClosed, StateSelectingSchedule, true},
		{"schedule to table", StateSelectingSchedule, StateSelectingTable, true},
		{"table to contact", StateSelectingTable, StateEnteringContact, true},
		{"contact to confirmed", StateEnteringContact, StateConfirmed, true},
		{"confirmed to closed", StateConfirmed, StateClosed, true},
		// Back transitions
		{"table back to schedule", StateSelectingTable, StateSelectingSchedule, true},
		{"contact back to table", StateEnteringContact, StateSelectingTable, true},
		// Close from any step
		{"close from schedule", StateSelectingSchedule, StateClosed, true},
		{"close from contact", StateEnteringContact, StateClosed, true},
		// Invalid transitions
		{"closed straight to contact", StateClosed, StateEnteringContact, false},
		{"schedule straight to confirmed", StateSelectingSchedule, StateConfirmed, false},
		{"confirmed cannot reopen a step", StateConfirmed, StateEnteringContact, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			allowed := fsm.CanTransition(tt.from, tt.to)
			if allowed != tt.shouldAllow {
				t.Errorf("transition %s -> %s: expected allowed=%v, got %v",
					tt.from, tt.to, tt.shouldAllow, allowed)
			}
		})
	}
}

type fakeOpener struct {
	opened []string
	err    error
}

var _ handoff.Opener = (*fakeOpener)(nil)

func (f *fakeOpener) Open(url string) error {
	f.opened = append(f.opened, url)
	return f.err
}

type fakeNotifier struct {
	texts []string
}

func (f *fakeNotifier) Notify(_ context.Context, text string) {
	f.texts = append(f.texts, text)
}

type wizardFixture struct {
	wizard   *Wizard
	store    *Store
	cart     *cart.Cart
	opener   *fakeOpener
	notifier *fakeNotifier
	bus      *events.EventBus
}

func newWizardFixture(t *testing.T) *wizardFixture {
	t.Helper()

	port := storage.NewMemory()
	logger := zerolog.New(io.Discard)
	store := NewStore(port, &logger)
	basket := cart.New(port, &logger)
	opener := &fakeOpener{}
	notifier := &fakeNotifier{}
	bus := events.NewEventBus()

	w := NewWizard(store, basket, config.Default(), config.DefaultHall(), opener, notifier, bus, &logger)
	return &wizardFixture{wizard: w, store: store, cart: basket, opener: opener, notifier: notifier, bus: bus}
}

func TestOpenResetsState(t *testing.T) {
	f := newWizardFixture(t)

	// Leave a half-finished session behind
	f.wizard.Open()
	require.NoError(t, f.wizard.SelectDate("Сегодня"))
	require.NoError(t, f.wizard.SelectTime("18:00"))
	require.NoError(t, f.wizard.Next())

	// Reopening discards everything
	f.wizard.Open()
	assert.Equal(t, StateSelectingSchedule, f.wizard.State())
	draft := f.wizard.Draft()
	assert.Empty(t, draft.Date)
	assert.Empty(t, draft.Time)
	assert.Zero(t, draft.TableID)
	assert.Empty(t, draft.Name)
	assert.Empty(t, draft.Phone)
}

func TestClosedWizardRejectsEverything(t *testing.T) {
	f := newWizardFixture(t)

	assert.Equal(t, StateClosed, f.wizard.State())
	assert.ErrorIs(t, f.wizard.SelectDate("Сегодня"), ErrWizardClosed)
	assert.ErrorIs(t, f.wizard.Next(), ErrWizardClosed)
	assert.ErrorIs(t, f.wizard.Back(), ErrWizardClosed)
	_, _, err := f.wizard.Confirm(context.Background())
	assert.ErrorIs(t, err, ErrWizardClosed)
}

func TestScheduleGuard(t *testing.T) {
	f := newWizardFixture(t)
	f.wizard.Open()

	// Neither selected
	assert.ErrorIs(t, f.wizard.Next(), ErrScheduleIncomplete)

	// Date only
	require.NoError(t, f.wizard.SelectDate("Сегодня"))
	assert.ErrorIs(t, f.wizard.Next(), ErrScheduleIncomplete)
	assert.Equal(t, StateSelectingSchedule, f.wizard.State())

	// Both: transition allowed
	require.NoError(t, f.wizard.SelectTime("18:00"))
	require.NoError(t, f.wizard.Next())
	assert.Equal(t, StateSelectingTable, f.wizard.State())
}

func TestScheduleGuardTimeOnly(t *testing.T) {
	f := newWizardFixture(t)
	f.wizard.Open()

	require.NoError(t, f.wizard.SelectTime("18:00"))
	assert.ErrorIs(t, f.wizard.Next(), ErrScheduleIncomplete)
}

func TestSelectDateValidatesLabel(t *testing.T) {
	f := newWizardFixture(t)
	f.wizard.Open()

	assert.ErrorIs(t, f.wizard.SelectDate("01.01.2026"), ErrUnknownDate)
	assert.ErrorIs(t, f.wizard.SelectTime("19:30"), ErrUnknownTime)
}

func TestSelectTakenTableShowsInfo(t *testing.T) {
	f := newWizardFixture(t)

	existing, err := f.store.Create(models.Draft{
		TableID: 3, Date: "Сегодня", Time: "18:00",
		Name: "Александр К.", Phone: "+7 (999) 123-45-67",
	})
	require.NoError(t, err)

	f.wizard.Open()
	require.NoError(t, f.wizard.SelectDate("Сегодня"))
	require.NoError(t, f.wizard.SelectTime("18:00"))
	require.NoError(t, f.wizard.Next())

	info, err := f.wizard.SelectTable(3)
	require.NoError(t, err)
	assert.True(t, info.Taken)
	require.NotNil(t, info.Booking)
	assert.Equal(t, existing.ID, info.Booking.ID)

	// The click was an info view, not a selection
	assert.Zero(t, f.wizard.Draft().TableID)
	assert.ErrorIs(t, f.wizard.Next(), ErrNoTableSelected)
}

func TestSelectUnknownTable(t *testing.T) {
	f := newWizardFixture(t)
	f.wizard.Open()
	require.NoError(t, f.wizard.SelectDate("Сегодня"))
	require.NoError(t, f.wizard.SelectTime("18:00"))
	require.NoError(t, f.wizard.Next())

	_, err := f.wizard.SelectTable(42)
	assert.ErrorIs(t, err, ErrUnknownTable)
}

func TestAvailabilityRecheckedOnForward(t *testing.T) {
	f := newWizardFixture(t)

	f.wizard.Open()
	require.NoError(t, f.wizard.SelectDate("Сегодня"))
	require.NoError(t, f.wizard.SelectTime("18:00"))
	require.NoError(t, f.wizard.Next())

	info, err := f.wizard.SelectTable(3)
	require.NoError(t, err)
	require.False(t, info.Taken)

	// Another writer grabs the table between selection and advancing
	_, err = f.store.Create(models.Draft{
		TableID: 3, Date: "Сегодня", Time: "18:00", Name: "Сосед", Phone: "+7 (111) 111-11-11",
	})
	require.NoError(t, err)

	assert.ErrorIs(t, f.wizard.Next(), ErrTableTaken)
	assert.Equal(t, StateSelectingTable, f.wizard.State())
}

func TestBackPreservesData(t *testing.T) {
	f := newWizardFixture(t)

	f.wizard.Open()
	require.NoError(t, f.wizard.SelectDate("Завтра"))
	require.NoError(t, f.wizard.SelectTime("20:00"))
	require.NoError(t, f.wizard.Next())

	_, err := f.wizard.SelectTable(5)
	require.NoError(t, err)
	require.NoError(t, f.wizard.Next())

	require.NoError(t, f.wizard.SetName("Анна"))

	// Back twice, then check nothing was cleared
	require.NoError(t, f.wizard.Back())
	assert.Equal(t, StateSelectingTable, f.wizard.State())
	require.NoError(t, f.wizard.Back())
	assert.Equal(t, StateSelectingSchedule, f.wizard.State())

	draft := f.wizard.Draft()
	assert.Equal(t, "Завтра", draft.Date)
	assert.Equal(t, "20:00", draft.Time)
	assert.Equal(t, 5, draft.TableID)
	assert.Equal(t, "Анна", draft.Name)
}

func TestConfirmRequiresContact(t *testing.T) {
	f := newWizardFixture(t)

	f.wizard.Open()
	require.NoError(t, f.wizard.SelectDate("Сегодня"))
	require.NoError(t, f.wizard.SelectTime("16:00"))
	require.NoError(t, f.wizard.Next())
	_, err := f.wizard.SelectTable(1)
	require.NoError(t, err)
	require.NoError(t, f.wizard.Next())

	_, _, err = f.wizard.Confirm(context.Background())
	assert.ErrorIs(t, err, ErrContactIncomplete)

	require.NoError(t, f.wizard.SetName("Анна"))
	_, _, err = f.wizard.Confirm(context.Background())
	assert.ErrorIs(t, err, ErrContactIncomplete)

	// Nothing was persisted by the rejected attempts
	assert.Empty(t, f.store.List())
}

func TestInputPhoneMasksProgressively(t *testing.T) {
	f := newWizardFixture(t)

	f.wizard.Open()
	require.NoError(t, f.wizard.SelectDate("Сегодня"))
	require.NoError(t, f.wizard.SelectTime("16:00"))
	require.NoError(t, f.wizard.Next())
	_, err := f.wizard.SelectTable(1)
	require.NoError(t, err)
	require.NoError(t, f.wizard.Next())

	masked, err := f.wizard.InputPhone("999")
	require.NoError(t, err)
	assert.Equal(t, "+7 (999", masked)

	masked, err = f.wizard.InputPhone("9991234567")
	require.NoError(t, err)
	assert.Equal(t, "+7 (999) 123-45-67", masked)

	// Deleting passes raw through instead of re-masking
	masked, err = f.wizard.InputPhone("999123456")
	require.NoError(t, err)
	assert.Equal(t, "999123456", masked)
}

func TestEndToEndBooking(t *testing.T) {
	f := newWizardFixture(t)

	require.NoError(t, f.cart.Add(models.CartItem{ID: 1, Title: "Кальян Classic", Price: 1200}))
	require.NoError(t, f.cart.Add(models.CartItem{ID: 2, Title: "Авторский Микс", Price: 1700}))

	var confirmed []models.Reservation
	f.bus.Subscribe(events.TypeBookingConfirmed, func(e events.Event) {
		if r, ok := e.Payload.(models.Reservation); ok {
			confirmed = append(confirmed, r)
		}
	})

	f.wizard.Open()
	require.NoError(t, f.wizard.SelectDate("Сегодня"))
	require.NoError(t, f.wizard.SelectTime("18:00"))
	require.NoError(t, f.wizard.Next())

	info, err := f.wizard.SelectTable(3)
	require.NoError(t, err)
	require.False(t, info.Taken)
	require.NoError(t, f.wizard.Next())

	require.NoError(t, f.wizard.SetName("Ann"))
	_, err = f.wizard.InputPhone("+7 (999) 000-00-00")
	require.NoError(t, err)

	reservation, link, err := f.wizard.Confirm(context.Background())
	require.NoError(t, err)

	// Exactly one persisted record with the entered fields
	list := f.store.List()
	require.Len(t, list, 1)
	assert.Equal(t, reservation.ID, list[0].ID)
	assert.Equal(t, 3, list[0].TableID)
	assert.Equal(t, "Сегодня", list[0].Date)
	assert.Equal(t, "18:00", list[0].Time)
	assert.Equal(t, "Ann", list[0].Name)
	assert.Equal(t, "+7 (999) 000-00-00", list[0].Phone)

	// Cart cleared, wizard back to closed
	assert.Empty(t, f.cart.Items())
	assert.Equal(t, StateClosed, f.wizard.State())

	// Deep link opened with the encoded summary
	require.Len(t, f.opener.opened, 1)
	assert.Equal(t, link, f.opener.opened[0])
	assert.True(t, strings.HasPrefix(link, "https://t.me/"))
	assert.Contains(t, link, "Ann")

	// Side effects: admin notified, event published
	require.Len(t, f.notifier.texts, 1)
	assert.Contains(t, f.notifier.texts[0], "Smoky Loft")
	assert.Contains(t, f.notifier.texts[0], "Итого:* 2900")
	require.Len(t, confirmed, 1)
	assert.Equal(t, reservation.ID, confirmed[0].ID)
}

func TestDeepLinkFailureKeepsReservation(t *testing.T) {
	f := newWizardFixture(t)
	f.opener.err = assert.AnError

	f.wizard.Open()
	require.NoError(t, f.wizard.SelectDate("Сегодня"))
	require.NoError(t, f.wizard.SelectTime("14:00"))
	require.NoError(t, f.wizard.Next())
	_, err := f.wizard.SelectTable(2)
	require.NoError(t, err)
	require.NoError(t, f.wizard.Next())
	require.NoError(t, f.wizard.SetName("Ann"))
	_, err = f.wizard.InputPhone("9990000000")
	require.NoError(t, err)

	_, _, err = f.wizard.Confirm(context.Background())
	require.NoError(t, err)
	assert.Len(t, f.store.List(), 1)
}
