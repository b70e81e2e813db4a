package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/icsherer/Herd-Ledger/internal/domain/models"
	"github.com/icsherer/Herd-Ledger/internal/herd"
)

// ListAnimals returns active animals, or every animal with ?all=true.
func (h *LedgerHandler) ListAnimals(c *gin.Context) {
	animals := h.svc.ActiveAnimals()
	if c.Query("all") == "true" {
		animals = h.svc.Animals()
	}
	species := models.Species(c.Query("species"))

	out := make([]models.Animal, 0, len(animals))
	for _, a := range animals {
		if species != "" && a.Species != species {
			continue
		}
		out = append(out, a)
	}
	c.JSON(http.StatusOK, out)
}

// GetAnimal returns one animal with its derived figures.
func (h *LedgerHandler) GetAnimal(c *gin.Context) {
	sum, err := h.svc.Summary(c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

// RegisterAnimal adds an animal to the herd.
func (h *LedgerHandler) RegisterAnimal(c *gin.Context) {
	var cmd herd.RegisterAnimal
	if !h.bind(c, &cmd, false) {
		return
	}
	h.execute(c, http.StatusCreated, cmd, herd.EntityAnimal, "")
}

// EditAnimal patches the identity fields of an animal.
func (h *LedgerHandler) EditAnimal(c *gin.Context) {
	var cmd herd.EditAnimal
	if !h.bind(c, &cmd, false) {
		return
	}
	cmd.ID = c.Param("id")
	h.execute(c, http.StatusOK, cmd, herd.EntityAnimal, cmd.ID)
}

// RemoveAnimal deletes the animal and runs the reference cascade. The
// response lists every record the cascade touched.
func (h *LedgerHandler) RemoveAnimal(c *gin.Context) {
	id := c.Param("id")
	h.execute(c, http.StatusOK, herd.RemoveAnimal{AnimalID: id}, herd.EntityAnimal, id)
}

// AttachWeight appends a weight entry.
func (h *LedgerHandler) AttachWeight(c *gin.Context) {
	var entry models.WeightEntry
	if !h.bind(c, &entry, false) {
		return
	}
	id := c.Param("id")
	h.execute(c, http.StatusCreated, herd.AttachWeight{AnimalID: id, Entry: entry}, herd.EntityAnimal, id)
}

// AttachTreatment logs a treatment against the animal.
func (h *LedgerHandler) AttachTreatment(c *gin.Context) {
	var tr models.Treatment
	if !h.bind(c, &tr, false) {
		return
	}
	id := c.Param("id")
	h.execute(c, http.StatusCreated, herd.AttachTreatment{AnimalID: id, Treatment: tr}, herd.EntityAnimal, id)
}

// RemoveTreatment drops one treatment entry.
func (h *LedgerHandler) RemoveTreatment(c *gin.Context) {
	id := c.Param("id")
	h.execute(c, http.StatusOK, herd.RemoveTreatment{AnimalID: id, TreatmentID: c.Param("treatmentId")}, herd.EntityAnimal, id)
}

// AttachVaccination logs a vaccination.
func (h *LedgerHandler) AttachVaccination(c *gin.Context) {
	var v models.Vaccination
	if !h.bind(c, &v, false) {
		return
	}
	id := c.Param("id")
	h.execute(c, http.StatusCreated, herd.AttachVaccination{AnimalID: id, Vaccination: v}, herd.EntityAnimal, id)
}

// RemoveVaccination drops one vaccination entry.
func (h *LedgerHandler) RemoveVaccination(c *gin.Context) {
	id := c.Param("id")
	h.execute(c, http.StatusOK, herd.RemoveVaccination{AnimalID: id, VaccinationID: c.Param("vaccinationId")}, herd.EntityAnimal, id)
}

// AttachMovement records a pasture or pen move.
func (h *LedgerHandler) AttachMovement(c *gin.Context) {
	var m models.Movement
	if !h.bind(c, &m, false) {
		return
	}
	id := c.Param("id")
	h.execute(c, http.StatusCreated, herd.AttachMovement{AnimalID: id, Movement: m}, herd.EntityAnimal, id)
}

// MarkDeceased records the death of the animal.
func (h *LedgerHandler) MarkDeceased(c *gin.Context) {
	var d models.Death
	if !h.bind(c, &d, false) {
		return
	}
	id := c.Param("id")
	h.execute(c, http.StatusOK, herd.MarkDeceased{AnimalID: id, Death: d}, herd.EntityAnimal, id)
}

// MarkSold records a sale.
func (h *LedgerHandler) MarkSold(c *gin.Context) {
	var s models.Sale
	if !h.bind(c, &s, false) {
		return
	}
	id := c.Param("id")
	h.execute(c, http.StatusOK, herd.MarkSold{AnimalID: id, Sale: s}, herd.EntityAnimal, id)
}

// MarkCastrated records a castration on a male animal.
func (h *LedgerHandler) MarkCastrated(c *gin.Context) {
	var cs models.Castration
	if !h.bind(c, &cs, false) {
		return
	}
	id := c.Param("id")
	h.execute(c, http.StatusOK, herd.MarkCastrated{AnimalID: id, Castration: cs}, herd.EntityAnimal, id)
}
