// Package models defines the persisted entities of the lounge booking core.
package models

import "time"

// Reservation is the sole persisted entity: a table held for a guest
// on a symbolic date label at a fixed time slot.
type Reservation struct {
	ID        string    `json:"id"`
	TableID   int       `json:"tableId"`
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"createdAt"`
}

// Draft carries the fields a caller supplies when creating a reservation.
// The store copies it verbatim; validation happens in the wizard.
type Draft struct {
	TableID int
	Date    string
	Time    string
	Name    string
	Phone   string
}

// Complete reports whether every field required at confirmation is set.
func (d Draft) Complete() bool {
	return d.TableID != 0 && d.Date != "" && d.Time != "" && d.Name != "" && d.Phone != ""
}

// HasSchedule reports whether date and time are both selected.
func (d Draft) HasSchedule() bool {
	return d.Date != "" && d.Time != ""
}

// HasContact reports whether name and phone are both filled in.
func (d Draft) HasContact() bool {
	return d.Name != "" && d.Phone != ""
}

// CartItem is an entry of the cart collaborator.
type CartItem struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	Price int    `json:"price"`
}

// Date labels are opaque strings, not calendar dates. Reservations whose
// label falls outside this set are considered expired but are not deleted
// until an explicit cleanup.
var ActiveDates = []string{"Сегодня", "Завтра", "Послезавтра"}

// IsActiveDate reports whether the label belongs to the active set.
func IsActiveDate(date string) bool {
	for _, d := range ActiveDates {
		if d == date {
			return true
		}
	}
	return false
}

// IsActive reports whether the reservation's date label is still active.
func (r *Reservation) IsActive() bool {
	return IsActiveDate(r.Date)
}

// Matches reports whether the reservation occupies the given slot exactly.
func (r *Reservation) Matches(tableID int, date, timeSlot string) bool {
	return r.TableID == tableID && r.Date == date && r.Time == timeSlot
}
