// Package booking owns the reservation collection and the table-booking
// wizard that feeds it.
package booking

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"smokyloft/internal/metrics"
	"smokyloft/internal/models"
	"smokyloft/internal/phone"
	"smokyloft/internal/storage"
)

// StorageKey is the key the reservation collection persists under.
const StorageKey = "smoky_loft_bookings"

// Store is the booking store: durable CRUD over the reservation collection
// plus advisory availability reads. Every mutation persists synchronously
// before returning. There is deliberately no conflict check on create:
// availability is advisory only, and two writers over the same medium can
// race into a double booking.
type Store struct {
	port   storage.Port
	logger *zerolog.Logger

	// Guards id generation so two creates in the same millisecond
	// still get distinct ids.
	mu     sync.Mutex
	lastID int64
}

// NewStore creates a store over the given persistence port.
func NewStore(port storage.Port, logger *zerolog.Logger) *Store {
	return &Store{port: port, logger: logger}
}

// List returns all stored reservations. Storage faults and corrupt payloads
// degrade to an empty collection; List never returns an error.
func (s *Store) List() []models.Reservation {
	raw, ok, err := s.port.Get(StorageKey)
	if err != nil {
		s.logger.Warn().Err(err).Msg("booking storage unavailable, treating as empty")
		return []models.Reservation{}
	}
	if !ok || raw == "" {
		return []models.Reservation{}
	}

	var reservations []models.Reservation
	if err := json.Unmarshal([]byte(raw), &reservations); err != nil {
		s.logger.Warn().Err(err).Msg("booking storage corrupt, treating as empty")
		return []models.Reservation{}
	}
	return reservations
}

// Create assigns an id and creation timestamp, appends and persists the
// record, and returns it. No field validation and no conflict check happen
// here; the wizard gates on both before calling.
func (s *Store) Create(draft models.Draft) (models.Reservation, error) {
	reservation := models.Reservation{
		ID:        s.nextID(),
		TableID:   draft.TableID,
		Date:      draft.Date,
		Time:      draft.Time,
		Name:      draft.Name,
		Phone:     draft.Phone,
		CreatedAt: time.Now(),
	}

	reservations := append(s.List(), reservation)
	if err := s.save(reservations); err != nil {
		return models.Reservation{}, fmt.Errorf("persist reservation: %w", err)
	}

	metrics.IncReservationCreated()
	s.logger.Info().
		Str("id", reservation.ID).
		Int("table", reservation.TableID).
		Str("date", reservation.Date).
		Str("time", reservation.Time).
		Msg("reservation created")
	return reservation, nil
}

// Cancel removes the reservation with the given id and reports whether one
// was found. Absent ids are not an error: Cancel returns false and leaves
// the collection untouched.
func (s *Store) Cancel(id string) (bool, error) {
	reservations := s.List()
	for i := range reservations {
		if reservations[i].ID == id {
			reservations = append(reservations[:i], reservations[i+1:]...)
			if err := s.save(reservations); err != nil {
				return false, fmt.Errorf("persist after cancel: %w", err)
			}
			metrics.IncReservationCancelled()
			s.logger.Info().Str("id", id).Msg("reservation cancelled")
			return true, nil
		}
	}
	return false, nil
}

// FindByID returns the reservation with the given id, or nil.
func (s *Store) FindByID(id string) *models.Reservation {
	for _, r := range s.List() {
		if r.ID == id {
			return &r
		}
	}
	return nil
}

// ForDate returns reservations whose date label matches exactly.
func (s *Store) ForDate(date string) []models.Reservation {
	result := make([]models.Reservation, 0)
	for _, r := range s.List() {
		if r.Date == date {
			result = append(result, r)
		}
	}
	return result
}

// ForTable returns the first reservation for the table on the date, or nil.
// Used by the seating chart to show who holds a taken table.
func (s *Store) ForTable(tableID int, date string) *models.Reservation {
	for _, r := range s.List() {
		if r.TableID == tableID && r.Date == date {
			return &r
		}
	}
	return nil
}

// ForPhone returns reservations whose phone matches the given number after
// digit normalization ("my bookings" view; country-code differences ignored).
func (s *Store) ForPhone(rawPhone string) []models.Reservation {
	result := make([]models.Reservation, 0)
	for _, r := range s.List() {
		if phone.Equal(r.Phone, rawPhone) {
			result = append(result, r)
		}
	}
	return result
}

// IsTableTaken reports whether a reservation exists for the exact
// (table, date, time) triple. This is a render-time advisory read; Create
// does not consult it.
func (s *Store) IsTableTaken(tableID int, date, timeSlot string) bool {
	for _, r := range s.List() {
		if r.Matches(tableID, date, timeSlot) {
			return true
		}
	}
	return false
}

// ActiveReservations returns reservations whose date label is still in the
// active set. Expired records are excluded from the view but not deleted.
func (s *Store) ActiveReservations() []models.Reservation {
	result := make([]models.Reservation, 0)
	for _, r := range s.List() {
		if r.IsActive() {
			result = append(result, r)
		}
	}
	return result
}

// CleanupExpired rewrites the collection keeping only active-date records
// and returns how many were dropped.
func (s *Store) CleanupExpired() (int, error) {
	reservations := s.List()
	active := make([]models.Reservation, 0, len(reservations))
	for _, r := range reservations {
		if r.IsActive() {
			active = append(active, r)
		}
	}

	dropped := len(reservations) - len(active)
	if dropped == 0 {
		return 0, nil
	}
	if err := s.save(active); err != nil {
		return 0, fmt.Errorf("persist after cleanup: %w", err)
	}
	s.logger.Info().Int("dropped", dropped).Msg("expired reservations cleaned up")
	return dropped, nil
}

// SeedOnce inserts the demo records if the store is empty; a no-op when any
// record already exists.
func (s *Store) SeedOnce() error {
	if len(s.List()) > 0 {
		return nil
	}
	for _, draft := range demoReservations {
		if _, err := s.Create(draft); err != nil {
			return err
		}
	}
	s.logger.Info().Int("count", len(demoReservations)).Msg("demo reservations seeded")
	return nil
}

// Purge deletes the entire collection unconditionally.
func (s *Store) Purge() error {
	return s.port.Remove(StorageKey)
}

func (s *Store) save(reservations []models.Reservation) error {
	data, err := json.Marshal(reservations)
	if err != nil {
		return err
	}
	return s.port.Set(StorageKey, string(data))
}

// nextID returns a millisecond-timestamp id, bumped forward on collision so
// ids stay unique within the store.
func (s *Store) nextID() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := time.Now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return fmt.Sprintf("%d", id)
}

// Demo data matching the nine-table layout.
var demoReservations = []models.Draft{
	{TableID: 3, Date: "Сегодня", Time: "18:00", Name: "Александр К.", Phone: "+7 (999) 123-45-67"},
	{TableID: 7, Date: "Сегодня", Time: "20:00", Name: "VIP Гость", Phone: "+7 (999) 000-00-00"},
	{TableID: 1, Date: "Сегодня", Time: "22:00", Name: "Дмитрий", Phone: "+7 (999) 777-88-99"},
	{TableID: 4, Date: "Завтра", Time: "16:00", Name: "Мария С.", Phone: "+7 (999) 555-33-22"},
	{TableID: 5, Date: "Завтра", Time: "18:00", Name: `Компания "Дружба"`, Phone: "+7 (999) 111-22-33"},
	{TableID: 7, Date: "Завтра", Time: "22:00", Name: "VIP День Рождения", Phone: "+7 (999) 444-55-66"},
}
