// Package hall builds the data-driven seating chart: per-table status for a
// chosen date and time slot. The visual layering lives with whatever UI
// consumes the snapshot; the core only computes statuses.
package hall

import (
	"fmt"
	"sort"
	"strings"

	"smokyloft/internal/booking"
	"smokyloft/internal/config"
	"smokyloft/internal/models"
)

// Status of a table on the chart.
type Status string

const (
	StatusFree     Status = "free"
	StatusSelected Status = "selected"
	StatusTaken    Status = "taken"
)

// TableStatus pairs a table with its rendered state.
type TableStatus struct {
	Table   config.TableConfig
	Status  Status
	Booking *models.Reservation // set when taken
}

// Snapshot computes the chart for the given schedule. selectedID 0 means no
// selection. Availability is the store's advisory read; the snapshot can be
// stale the moment another writer commits.
func Snapshot(layout *config.HallConfig, store *booking.Store, date, timeSlot string, selectedID int) []TableStatus {
	result := make([]TableStatus, 0, len(layout.Tables))
	for _, table := range layout.Tables {
		ts := TableStatus{Table: table, Status: StatusFree}
		switch {
		case store.IsTableTaken(table.ID, date, timeSlot):
			ts.Status = StatusTaken
			ts.Booking = store.ForTable(table.ID, date)
		case table.ID == selectedID:
			ts.Status = StatusSelected
		}
		result = append(result, ts)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Table.ID < result[j].Table.ID
	})
	return result
}

// RenderText renders the snapshot as a terminal table with a legend.
func RenderText(snapshot []TableStatus, date, timeSlot string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Схема зала — %s %s\n", date, timeSlot)
	for _, ts := range snapshot {
		marker := "🟢"
		note := "свободен"
		switch ts.Status {
		case StatusSelected:
			marker = "🟡"
			note = "выбран"
		case StatusTaken:
			marker = "🔴"
			note = "занят"
			if ts.Booking != nil {
				note = fmt.Sprintf("занят (%s, %s)", ts.Booking.Name, ts.Booking.Time)
			}
		}
		fmt.Fprintf(&b, "  %s %-8s %-10s до %d чел., от %d — %s\n",
			marker, ts.Table.Label, ts.Table.TypeName(), ts.Table.Seats, ts.Table.MinOrder, note)
	}
	b.WriteString("  🟢 свободен  🟡 выбран  🔴 занят\n")
	return b.String()
}
