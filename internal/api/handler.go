package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/mandipulse/internal/domain/dto"
	"github.com/guttosm/mandipulse/internal/domain/models"
	"github.com/guttosm/mandipulse/internal/middleware"
	"github.com/guttosm/mandipulse/internal/pricing"
	"github.com/guttosm/mandipulse/internal/service"
)

// Handler provides the HTTP handlers for prices, the assistant and accounts.
//
// Responsibilities:
//   - Validate incoming query parameters and JSON bodies
//   - Delegate to the service layer
//   - Translate results and errors into response DTOs
type Handler struct {
	prices    service.PriceService
	assistant service.AssistantService
	auth      service.AuthService
}

// NewHandler constructs a Handler. Any service may be nil when the matching
// routes are not mounted.
func NewHandler(prices service.PriceService, assistant service.AssistantService, auth service.AuthService) *Handler {
	return &Handler{prices: prices, assistant: assistant, auth: auth}
}

// GetPrices godoc
// @Summary      Raw market price records
// @Description  Fetches AGMARKNET daily prices and keeps the rows whose arrival date is inside [from, to]
// @Tags         prices
// @Produce      json
// @Param        commodity  query     string  false  "Commodity"  example(Wheat)
// @Param        state      query     string  false  "State"
// @Param        district   query     string  false  "District"
// @Param        market     query     string  false  "Market"
// @Param        variety    query     string  false  "Variety"
// @Param        grade      query     string  false  "Grade"
// @Param        from       query     string  false  "Start date YYYY-MM-DD"  example(2024-03-01)
// @Param        to         query     string  false  "End date YYYY-MM-DD"    example(2024-03-31)
// @Param        limit      query     int     false  "Page size (default 500)"
// @Param        offset     query     int     false  "Page offset (default 0)"
// @Success      200  {object}  dto.RecordsResponse
// @Failure      400  {object}  dto.ErrorResponse  "Bad Request"
// @Failure      500  {object}  dto.ErrorResponse  "Missing credential"
// @Failure      502  {object}  dto.ErrorResponse  "Upstream failure"
// @Failure      504  {object}  dto.ErrorResponse  "Upstream timeout"
// @Router       /api/prices [get]
func (h *Handler) GetPrices(c *gin.Context) {
	q, ok := bindPriceQuery(c)
	if !ok {
		return
	}

	records, err := h.prices.GetRecords(c.Request.Context(), q)
	if err != nil {
		abortWithServiceError(c, "failed to fetch prices", err)
		return
	}
	if records == nil {
		records = []models.PriceRecord{}
	}
	c.JSON(http.StatusOK, dto.RecordsResponse{Records: records})
}

// GetSeries godoc
// @Summary      Daily modal price series
// @Description  Averages modal_price per arrival date and reports the change between the last two days
// @Tags         prices
// @Produce      json
// @Param        commodity  query     string  false  "Commodity"  example(Wheat)
// @Param        state      query     string  false  "State"
// @Param        district   query     string  false  "District"
// @Param        market     query     string  false  "Market"
// @Param        variety    query     string  false  "Variety"
// @Param        grade      query     string  false  "Grade"
// @Param        from       query     string  false  "Start date YYYY-MM-DD"
// @Param        to         query     string  false  "End date YYYY-MM-DD"
// @Param        limit      query     int     false  "Page size (default 500)"
// @Param        offset     query     int     false  "Page offset (default 0)"
// @Success      200  {object}  dto.SeriesResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Failure      502  {object}  dto.ErrorResponse
// @Failure      504  {object}  dto.ErrorResponse
// @Router       /api/prices/series [get]
func (h *Handler) GetSeries(c *gin.Context) {
	q, ok := bindPriceQuery(c)
	if !ok {
		return
	}

	trend, err := h.prices.GetTrend(c.Request.Context(), q)
	if err != nil {
		abortWithServiceError(c, "failed to fetch price series", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSeriesResponse(trend))
}

// bindPriceQuery reads the price filters and paging parameters. It answers
// 400 itself and reports false when a parameter is invalid.
func bindPriceQuery(c *gin.Context) (models.PriceQuery, bool) {
	q := models.PriceQuery{
		Commodity: c.Query("commodity"),
		State:     c.Query("state"),
		District:  c.Query("district"),
		Market:    c.Query("market"),
		Variety:   c.Query("variety"),
		Grade:     c.Query("grade"),
		From:      strings.TrimSpace(c.Query("from")),
		To:        strings.TrimSpace(c.Query("to")),
	}

	var err error
	if q.Limit, err = intParam(c, "limit", 1); err != nil {
		middleware.AbortWithError(c, http.StatusBadRequest, "limit must be a positive integer", err)
		return q, false
	}
	if q.Offset, err = intParam(c, "offset", 0); err != nil {
		middleware.AbortWithError(c, http.StatusBadRequest, "offset must be a non-negative integer", err)
		return q, false
	}

	for name, v := range map[string]string{"from": q.From, "to": q.To} {
		if v == "" {
			continue
		}
		if err := pricing.ValidateISODate(v); err != nil {
			middleware.AbortWithError(c, http.StatusBadRequest, "invalid "+name+" format, expected YYYY-MM-DD", err)
			return q, false
		}
	}
	return q, true
}

// intParam parses an optional integer parameter; an absent value yields 0.
func intParam(c *gin.Context, name string, min int) (int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if n < min {
		return 0, errors.New(name + " out of range")
	}
	return n, nil
}

func abortWithServiceError(c *gin.Context, message string, err error) {
	var mde *pricing.MalformedDateError
	if errors.As(err, &mde) {
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse("invalid date", err).WithCode("invalid_date"))
		return
	}
	middleware.AbortWithUpstreamError(c, message, err)
}
