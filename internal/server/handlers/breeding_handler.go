package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/icsherer/Herd-Ledger/internal/herd"
)

// ListBreeding returns all breeding records, or one dam's with ?animalId=.
func (h *LedgerHandler) ListBreeding(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.BreedingRecords(c.Query("animalId")))
}

// LogBreeding opens a breeding record for a dam.
func (h *LedgerHandler) LogBreeding(c *gin.Context) {
	var cmd herd.LogBreeding
	if !h.bind(c, &cmd, false) {
		return
	}
	h.execute(c, http.StatusCreated, cmd, herd.EntityBreeding, "")
}

// EditBreeding changes the dates, sire or notes of a record.
func (h *LedgerHandler) EditBreeding(c *gin.Context) {
	var cmd herd.EditBreeding
	if !h.bind(c, &cmd, false) {
		return
	}
	cmd.ID = c.Param("id")
	h.execute(c, http.StatusOK, cmd, herd.EntityBreeding, cmd.ID)
}

// MarkDelivered closes the record. The body, with an optional outcome, may
// be omitted.
func (h *LedgerHandler) MarkDelivered(c *gin.Context) {
	var cmd herd.MarkDelivered
	if !h.bind(c, &cmd, true) {
		return
	}
	cmd.ID = c.Param("id")
	h.execute(c, http.StatusOK, cmd, herd.EntityBreeding, cmd.ID)
}

// SetCalfOutcome sets or replaces the calving result of a record.
func (h *LedgerHandler) SetCalfOutcome(c *gin.Context) {
	var cmd herd.SetCalfOutcome
	if !h.bind(c, &cmd, false) {
		return
	}
	cmd.BreedingID = c.Param("id")
	h.execute(c, http.StatusOK, cmd, herd.EntityBreeding, cmd.BreedingID)
}

// RemoveCalfOutcome clears the calving result and removes the calf.
func (h *LedgerHandler) RemoveCalfOutcome(c *gin.Context) {
	id := c.Param("id")
	h.execute(c, http.StatusOK, herd.RemoveCalfOutcome{BreedingID: id}, herd.EntityBreeding, id)
}

// RemoveBreeding deletes a record and unlinks its offspring entry.
func (h *LedgerHandler) RemoveBreeding(c *gin.Context) {
	id := c.Param("id")
	h.execute(c, http.StatusOK, herd.RemoveBreeding{ID: id}, herd.EntityBreeding, id)
}

// ListOffspring returns the dam's offspring entries.
func (h *LedgerHandler) ListOffspring(c *gin.Context) {
	out, err := h.svc.Offspring(c.Param("motherId"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// AddOffspring records a birth; the response id is the offspring entry.
func (h *LedgerHandler) AddOffspring(c *gin.Context) {
	var cmd herd.AddOffspring
	if !h.bind(c, &cmd, false) {
		return
	}
	cmd.MotherID = c.Param("motherId")
	h.execute(c, http.StatusCreated, cmd, herd.EntityOffspring, "")
}

// EditOffspring replaces an entry's outcome. The response id is the
// entry id after the edit, which changes when a stillborn calf turns live.
func (h *LedgerHandler) EditOffspring(c *gin.Context) {
	var cmd herd.EditOffspring
	if !h.bind(c, &cmd, false) {
		return
	}
	cmd.MotherID, cmd.ID = c.Param("motherId"), c.Param("id")
	h.execute(c, http.StatusOK, cmd, herd.EntityOffspring, cmd.ID)
}

// DeleteOffspring removes an entry and, for a live calf, its animal.
func (h *LedgerHandler) DeleteOffspring(c *gin.Context) {
	cmd := herd.DeleteOffspring{MotherID: c.Param("motherId"), ID: c.Param("id")}
	h.execute(c, http.StatusOK, cmd, herd.EntityOffspring, cmd.ID)
}
