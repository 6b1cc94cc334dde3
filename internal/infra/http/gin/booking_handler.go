package ginserver

import (
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"stayd/internal/app/commands"
	"stayd/internal/app/dto"
	bookingapp "stayd/internal/app/handlers/booking"
	"stayd/internal/app/queries"
	domainbooking "stayd/internal/domain/booking"
)

type BookingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

type createBookingRequest struct {
	UnitID          string    `json:"unit_id"`
	RequesterID     string    `json:"requester_id"`
	CheckIn         time.Time `json:"check_in"`
	CheckOut        time.Time `json:"check_out"`
	Guests          int       `json:"guests"`
	GuestName       string    `json:"guest_name"`
	GuestEmail      string    `json:"guest_email"`
	GuestPhone      string    `json:"guest_phone"`
	SpecialRequests string    `json:"special_requests"`
}

func (h BookingHandler) Create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := bookingapp.CreateBookingCommand{
		CommandID:   generateCommandID(),
		UnitID:      req.UnitID,
		RequesterID: req.RequesterID,
		CheckIn:     req.CheckIn,
		CheckOut:    req.CheckOut,
		Guests:      req.Guests,
		Guest: domainbooking.GuestInfo{
			FullName: req.GuestName,
			Email:    req.GuestEmail,
			Phone:    req.GuestPhone,
		},
		SpecialRequests: req.SpecialRequests,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[bookingapp.CreateBookingCommand, *bookingapp.CreateBookingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

type confirmBookingRequest struct {
	PaymentRef string `json:"payment_ref"`
}

func (h BookingHandler) Confirm(c *gin.Context) {
	var req confirmBookingRequest
	_ = c.ShouldBindJSON(&req)
	cmd := bookingapp.ConfirmBookingCommand{ReservationID: c.Param("id"), PaymentRef: req.PaymentRef}
	result, err := commands.Dispatch[bookingapp.ConfirmBookingCommand, *bookingapp.ConfirmBookingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	if result.LostRace() {
		// The cancellation is already committed; only the response is an error.
		writeError(c, &domainbooking.LostRaceError{
			ReservationID: domainbooking.ReservationID(result.ReservationID),
			WinnerID:      domainbooking.ReservationID(result.WinnerID),
		})
		return
	}
	c.JSON(http.StatusOK, result)
}

type cancelBookingRequest struct {
	Reason string `json:"reason"`
}

func (h BookingHandler) Cancel(c *gin.Context) {
	var req cancelBookingRequest
	_ = c.ShouldBindJSON(&req)
	cmd := bookingapp.CancelBookingCommand{ReservationID: c.Param("id"), Reason: req.Reason}
	result, err := commands.Dispatch[bookingapp.CancelBookingCommand, *bookingapp.CancelBookingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BookingHandler) Get(c *gin.Context) {
	query := bookingapp.GetBookingQuery{ReservationID: c.Param("id")}
	result, err := queries.Ask[bookingapp.GetBookingQuery, dto.ReservationSummary](c.Request.Context(), h.Queries, query)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BookingHandler) ListByGuest(c *gin.Context) {
	query := bookingapp.ListGuestBookingsQuery{RequesterID: c.Query("requester_id")}
	result, err := queries.Ask[bookingapp.ListGuestBookingsQuery, dto.ReservationCollection](c.Request.Context(), h.Queries, query)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type expirePendingRequest struct {
	UnitID string `json:"unit_id"`
}

// ExpirePending is the maintenance sweep endpoint; an external scheduler
// calls it instead of the engine running its own timer.
func (h BookingHandler) ExpirePending(c *gin.Context) {
	var req expirePendingRequest
	_ = c.ShouldBindJSON(&req)
	cmd := bookingapp.ExpirePendingCommand{UnitID: req.UnitID}
	result, err := commands.Dispatch[bookingapp.ExpirePendingCommand, *bookingapp.ExpirePendingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func generateCommandID() string {
	return uuid.NewString()
}

var _ BookingHTTP = BookingHandler{}
