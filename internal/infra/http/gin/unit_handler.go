package ginserver

import (
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"

	"stayd/internal/app/commands"
	"stayd/internal/app/dto"
	unitsapp "stayd/internal/app/handlers/units"
	"stayd/internal/app/queries"
)

type UnitHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

type createUnitRequest struct {
	OwnerID          string `json:"owner_id"`
	Name             string `json:"name"`
	Currency         string `json:"currency"`
	BaseRateCents    int64  `json:"base_rate_cents"`
	CleaningFeeCents int64  `json:"cleaning_fee_cents"`
	ServiceFeePct    int64  `json:"service_fee_pct"`
	TaxPct           int64  `json:"tax_pct"`
	TouristTaxCents  int64  `json:"tourist_tax_cents"`
	MaxGuests        int    `json:"max_guests"`
}

func (h UnitHandler) Create(c *gin.Context) {
	var req createUnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := unitsapp.CreateUnitCommand{
		CommandID:        generateCommandID(),
		OwnerID:          req.OwnerID,
		Name:             req.Name,
		Currency:         req.Currency,
		BaseRateCents:    req.BaseRateCents,
		CleaningFeeCents: req.CleaningFeeCents,
		ServiceFeePct:    req.ServiceFeePct,
		TaxPct:           req.TaxPct,
		TouristTaxCents:  req.TouristTaxCents,
		MaxGuests:        req.MaxGuests,
	}
	result, err := commands.Dispatch[unitsapp.CreateUnitCommand, *unitsapp.CreateUnitResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h UnitHandler) Get(c *gin.Context) {
	query := unitsapp.GetUnitQuery{UnitID: c.Param("id")}
	result, err := queries.Ask[unitsapp.GetUnitQuery, dto.UnitSummary](c.Request.Context(), h.Queries, query)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h UnitHandler) ListByOwner(c *gin.Context) {
	query := unitsapp.ListOwnerUnitsQuery{OwnerID: c.Query("owner_id")}
	result, err := queries.Ask[unitsapp.ListOwnerUnitsQuery, dto.UnitCollection](c.Request.Context(), h.Queries, query)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type setStatusRequest struct {
	Status string `json:"status"`
}

func (h UnitHandler) SetStatus(c *gin.Context) {
	var req setStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := unitsapp.SetUnitStatusCommand{UnitID: c.Param("id"), Status: req.Status}
	result, err := commands.Dispatch[unitsapp.SetUnitStatusCommand, *unitsapp.SetUnitStatusResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type upsertRuleRequest struct {
	RuleID        string    `json:"rule_id"`
	Label         string    `json:"label"`
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
	MultiplierPct int64     `json:"multiplier_pct"`
}

func (h UnitHandler) UpsertRule(c *gin.Context) {
	var req upsertRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := unitsapp.UpsertPricingRuleCommand{
		CommandID:     generateCommandID(),
		RuleID:        req.RuleID,
		UnitID:        c.Param("id"),
		Label:         req.Label,
		Start:         req.Start,
		End:           req.End,
		MultiplierPct: req.MultiplierPct,
	}
	result, err := commands.Dispatch[unitsapp.UpsertPricingRuleCommand, *unitsapp.PricingRuleResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h UnitHandler) DeactivateRule(c *gin.Context) {
	cmd := unitsapp.DeactivatePricingRuleCommand{RuleID: c.Param("ruleID")}
	result, err := commands.Dispatch[unitsapp.DeactivatePricingRuleCommand, *unitsapp.PricingRuleResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ UnitHTTP = UnitHandler{}
