package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/icsherer/Herd-Ledger/internal/domain/models"
	"github.com/icsherer/Herd-Ledger/internal/herd"
	"github.com/icsherer/Herd-Ledger/internal/service/ledger"
)

const (
	defaultDueDays         = 30
	defaultVaccinationDays = 14
	maxWindowDays          = 3650
)

// LedgerService is what the REST surface reads and writes through.
type LedgerService interface {
	Execute(ctx context.Context, cmd herd.Command) (herd.Result, error)
	Animals() []models.Animal
	ActiveAnimals() []models.Animal
	Summary(id string) (ledger.AnimalSummary, error)
	BreedingRecords(animalID string) []models.BreedingRecord
	Offspring(motherID string) ([]models.OffspringRecord, error)
	FeederPrograms() []herd.FeederStatus
	FeederStatus(animalID string) (herd.FeederStatus, error)
	Notes() []models.JournalNote
	Dashboard() herd.Dashboard
	DueWithin(days int) []herd.DueItem
	Overdue() []herd.DueItem
	VaccinationsDue(days int) []herd.VaccinationDue
	Verify() []models.IntegrityViolation
}

// LedgerHandler serves the /api/v1 herd ledger routes.
type LedgerHandler struct {
	svc    LedgerService
	logger *zap.Logger
}

// NewLedgerHandler constructs the REST handler adapter.
func NewLedgerHandler(svc LedgerService, logger *zap.Logger) *LedgerHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerHandler{svc: svc, logger: logger}
}

// mutationResponse is returned by every write.
type mutationResponse struct {
	ID      string        `json:"id,omitempty"`
	Changes []herd.Change `json:"changes"`
}

// execute runs cmd and writes the mutation response. entity names the
// record whose created id is reported; fallbackID is used otherwise.
func (h *LedgerHandler) execute(c *gin.Context, status int, cmd herd.Command, entity, fallbackID string) {
	res, err := h.svc.Execute(c.Request.Context(), cmd)
	if err != nil {
		h.writeError(c, err)
		return
	}
	id := fallbackID
	if created := res.Created(entity); created != "" {
		id = created
	}
	c.JSON(status, mutationResponse{ID: id, Changes: res.Changes})
}

// bind decodes the JSON body into dst. An empty body leaves dst untouched
// when optional is set.
func (h *LedgerHandler) bind(c *gin.Context, dst any, optional bool) bool {
	if optional && c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		h.logger.Debug("invalid request body", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return false
	}
	return true
}

// writeError maps domain errors to status codes: validation 422, missing
// records 404, a ledger that is not open 503, anything else 500.
func (h *LedgerHandler) writeError(c *gin.Context, err error) {
	switch {
	case models.IsValidation(err):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case models.IsReference(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ledger.ErrNotOpen):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "ledger not ready"})
	default:
		h.logger.Error("ledger request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// Dashboard returns the farm overview.
func (h *LedgerHandler) Dashboard(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Dashboard())
}

// Due lists dams due within ?days= (default 30).
func (h *LedgerHandler) Due(c *gin.Context) {
	days, ok := h.daysParam(c, defaultDueDays)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"days": days, "items": h.svc.DueWithin(days)})
}

// Overdue lists dams past their due window.
func (h *LedgerHandler) Overdue(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": h.svc.Overdue()})
}

// VaccinationsDue lists boosters due within ?days= (default 14).
func (h *LedgerHandler) VaccinationsDue(c *gin.Context) {
	days, ok := h.daysParam(c, defaultVaccinationDays)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"days": days, "items": h.svc.VaccinationsDue(days)})
}

// Integrity reports broken references in the committed state.
func (h *LedgerHandler) Integrity(c *gin.Context) {
	violations := h.svc.Verify()
	out := make([]gin.H, 0, len(violations))
	for _, v := range violations {
		out = append(out, gin.H{"entity": v.Entity, "id": v.ID, "detail": v.Detail})
	}
	c.JSON(http.StatusOK, gin.H{"ok": len(out) == 0, "violations": out})
}

func (h *LedgerHandler) daysParam(c *gin.Context, fallback int) (int, bool) {
	raw := c.Query("days")
	if raw == "" {
		return fallback, true
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days < 0 || days > maxWindowDays {
		c.JSON(http.StatusBadRequest, gin.H{"error": "days must be a whole number between 0 and 3650"})
		return 0, false
	}
	return days, true
}
