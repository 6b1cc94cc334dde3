package ginserver

import (
	"errors"
	"net/http"

	gin "github.com/gin-gonic/gin"

	domainbooking "stayd/internal/domain/booking"
	domainrates "stayd/internal/domain/rates"
	domainunit "stayd/internal/domain/unit"
)

// writeError maps domain errors onto HTTP statuses. Conflicts carry the
// competing reservations so clients can offer alternatives.
func writeError(c *gin.Context, err error) {
	var validation *domainbooking.ValidationError
	if errors.As(err, &validation) {
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Error(), "field": validation.Field})
		return
	}
	var conflict *domainbooking.ConflictError
	if errors.As(err, &conflict) {
		c.JSON(http.StatusConflict, gin.H{"error": conflict.Error(), "conflicts": len(conflict.Conflicts)})
		return
	}
	var lost *domainbooking.LostRaceError
	if errors.As(err, &lost) {
		c.JSON(http.StatusConflict, gin.H{"error": lost.Error(), "winner_id": string(lost.WinnerID)})
		return
	}
	switch {
	case errors.Is(err, domainbooking.ErrNotFound),
		errors.Is(err, domainunit.ErrNotFound),
		errors.Is(err, domainrates.ErrRuleNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domainrates.ErrRuleOverlap):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domainbooking.ErrInvalidState),
		errors.Is(err, domainbooking.ErrPaymentRequired):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, domainrates.ErrRuleConflict):
		// Stored rules violating the no-overlap invariant are a data fault.
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	case errors.Is(err, domainrates.ErrLabelRequired),
		errors.Is(err, domainrates.ErrBadRuleRange),
		errors.Is(err, domainrates.ErrMultiplierRange),
		errors.Is(err, domainunit.ErrOwnerRequired),
		errors.Is(err, domainunit.ErrNameRequired),
		errors.Is(err, domainunit.ErrBaseRate),
		errors.Is(err, domainunit.ErrMaxGuests),
		errors.Is(err, domainunit.ErrNegativeFee),
		errors.Is(err, domainunit.ErrPercentRange),
		errors.Is(err, domainunit.ErrUnknownStatus),
		errors.Is(err, domainunit.ErrInvalidCurrency):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
