package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/icsherer/Herd-Ledger/internal/herd"
)

// ListFeeders returns every feeder program with days on feed and cost.
func (h *LedgerHandler) ListFeeders(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.FeederPrograms())
}

// FeederStatus returns the program of the animal in the path.
func (h *LedgerHandler) FeederStatus(c *gin.Context) {
	st, err := h.svc.FeederStatus(c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// EnrollFeeder starts a feeder program for an animal.
func (h *LedgerHandler) EnrollFeeder(c *gin.Context) {
	var cmd herd.EnrollFeeder
	if !h.bind(c, &cmd, false) {
		return
	}
	h.execute(c, http.StatusCreated, cmd, herd.EntityFeeder, "")
}

// UpdateFeeder patches a feeder program.
func (h *LedgerHandler) UpdateFeeder(c *gin.Context) {
	var cmd herd.UpdateFeeder
	if !h.bind(c, &cmd, false) {
		return
	}
	cmd.ID = c.Param("id")
	h.execute(c, http.StatusOK, cmd, herd.EntityFeeder, cmd.ID)
}

// RemoveFeeder ends a feeder program.
func (h *LedgerHandler) RemoveFeeder(c *gin.Context) {
	id := c.Param("id")
	h.execute(c, http.StatusOK, herd.RemoveFeeder{ID: id}, herd.EntityFeeder, id)
}

// ListNotes returns the farm journal, newest first.
func (h *LedgerHandler) ListNotes(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Notes())
}

// AddNote appends an entry to the farm journal.
func (h *LedgerHandler) AddNote(c *gin.Context) {
	var cmd herd.AddNote
	if !h.bind(c, &cmd, false) {
		return
	}
	h.execute(c, http.StatusCreated, cmd, herd.EntityNote, "")
}

// RemoveNote deletes a journal entry.
func (h *LedgerHandler) RemoveNote(c *gin.Context) {
	id := c.Param("id")
	h.execute(c, http.StatusOK, herd.RemoveNote{ID: id}, herd.EntityNote, id)
}
