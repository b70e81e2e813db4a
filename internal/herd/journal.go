package herd

import (
	"sort"
	"strings"
	"time"

	"github.com/icsherer/Herd-Ledger/internal/domain/models"
)

// AddNote writes a farm journal entry. Entries are kept newest first.
type AddNote struct {
	Title string     `json:"title,omitempty"`
	Body  string     `json:"body"`
	Date  *time.Time `json:"date,omitempty"`
}

func (AddNote) Op() string { return "add_note" }

func (c AddNote) apply(t *tx) error {
	body := strings.TrimSpace(c.Body)
	if body == "" {
		return models.Invalid("body", "is required")
	}
	when := t.env.Now
	if c.Date != nil && !c.Date.IsZero() {
		when = *c.Date
	}
	title := strings.TrimSpace(c.Title)
	if title == "" {
		title = "Entry: " + when.In(t.env.Loc).Format("January 2, 2006")
	}
	n := models.JournalNote{ID: t.env.NewID(), Title: title, Body: body, Date: when}
	t.state.Notes = append([]models.JournalNote{n}, t.state.Notes...)
	sort.SliceStable(t.state.Notes, func(i, j int) bool {
		return t.state.Notes[i].Date.After(t.state.Notes[j].Date)
	})
	t.record(EntityNote, ActionCreate, n.ID)
	return nil
}

// RemoveNote deletes a journal entry.
type RemoveNote struct {
	ID string `json:"-"`
}

func (RemoveNote) Op() string { return "remove_note" }

func (c RemoveNote) apply(t *tx) error {
	for i, n := range t.state.Notes {
		if n.ID == c.ID {
			t.state.Notes = append(t.state.Notes[:i:i], t.state.Notes[i+1:]...)
			t.record(EntityNote, ActionDelete, c.ID)
			return nil
		}
	}
	return models.Missing(EntityNote, c.ID)
}
