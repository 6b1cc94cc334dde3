package ginserver

import (
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"

	"stayd/internal/app/dto"
	availabilityapp "stayd/internal/app/handlers/availability"
	"stayd/internal/app/queries"
)

type AvailabilityHandler struct {
	Queries queries.Bus
}

func (h AvailabilityHandler) Check(c *gin.Context) {
	checkIn, err := parseDateParam(c.Query("check_in"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "check_in: " + err.Error()})
		return
	}
	checkOut, err := parseDateParam(c.Query("check_out"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "check_out: " + err.Error()})
		return
	}
	query := availabilityapp.CheckAvailabilityQuery{
		UnitID:               c.Param("id"),
		CheckIn:              checkIn,
		CheckOut:             checkOut,
		ExcludeReservationID: c.Query("exclude"),
	}
	result, err := queries.Ask[availabilityapp.CheckAvailabilityQuery, dto.AvailabilityDTO](c.Request.Context(), h.Queries, query)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// parseDateParam accepts both plain calendar dates and RFC3339 timestamps.
func parseDateParam(raw string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}

var _ AvailabilityHTTP = AvailabilityHandler{}
