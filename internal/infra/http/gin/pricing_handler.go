package ginserver

import (
	"net/http"
	"strconv"

	gin "github.com/gin-gonic/gin"

	"stayd/internal/app/dto"
	pricingapp "stayd/internal/app/handlers/pricing"
	"stayd/internal/app/queries"
)

type PricingHandler struct {
	Queries queries.Bus
}

func (h PricingHandler) Quote(c *gin.Context) {
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
	guests, err := strconv.Atoi(c.DefaultQuery("guests", "1"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "guests must be a number"})
		return
	}
	query := pricingapp.QuotePriceQuery{
		UnitID:   c.Param("id"),
		CheckIn:  checkIn,
		CheckOut: checkOut,
		Guests:   guests,
	}
	result, err := queries.Ask[pricingapp.QuotePriceQuery, dto.QuoteDTO](c.Request.Context(), h.Queries, query)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ PricingHTTP = PricingHandler{}
