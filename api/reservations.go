package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/ccrew/flightinventory/internal/auth"
	"github.com/ccrew/flightinventory/internal/domain"
	"github.com/ccrew/flightinventory/internal/metrics"
	"github.com/ccrew/flightinventory/internal/service/reservation"
	"github.com/gin-gonic/gin"
)

type ReservationHandler struct {
	service reservation.ReservationUseCase
}

type makeOneWayRequest struct {
	FlightNumber    int64  `json:"flight_number" binding:"required"`
	TicketTypeCode  string `json:"ticket_type_code" binding:"required"`
	TravelClassCode string `json:"travel_class_code" binding:"required"`
}

type reservationResponse struct {
	ReservationID   int64  `json:"reservation_id"`
	Status          string `json:"status"`
	TicketTypeCode  string `json:"ticket_type_code"`
	TravelClassCode string `json:"travel_class_code"`
	DateMade        string `json:"date_reservation_made"`
}

func NewReservationHandler(service reservation.ReservationUseCase) *ReservationHandler {
	return &ReservationHandler{service: service}
}

func (h *ReservationHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.makeOneWay)
	router.GET("/", h.list)
	router.DELETE("/:id", h.cancel)
	router.POST("/:id/reverse", h.reverse)
}

func (h *ReservationHandler) makeOneWay(c *gin.Context) {
	identity := auth.FromContext(c)
	if identity == nil {
		writeError(c, domain.ErrUnauthorized)
		return
	}

	var req makeOneWayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.service.MakeOneWay(c.Request.Context(), identity.CustomerID, reservation.MakeOneWayInput{
		FlightNumber:    req.FlightNumber,
		TicketTypeCode:  domain.TicketTypeCode(req.TicketTypeCode),
		TravelClassCode: domain.TravelClassCode(req.TravelClassCode),
	})
	if err != nil {
		metrics.ReservationOutcomes.WithLabelValues("make_one_way", outcome(err)).Inc()
		writeError(c, err)
		return
	}

	metrics.ReservationOutcomes.WithLabelValues("make_one_way", "success").Inc()
	c.JSON(http.StatusCreated, toReservationResponse(created))
}

func (h *ReservationHandler) list(c *gin.Context) {
	identity := auth.FromContext(c)
	if identity == nil {
		writeError(c, domain.ErrUnauthorized)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "0"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))

	result, err := h.service.List(c.Request.Context(), identity.CustomerID, page, size)
	if err != nil {
		writeError(c, err)
		return
	}

	items := make([]reservationResponse, 0, len(result.Reservations))
	for i := range result.Reservations {
		items = append(items, toReservationResponse(&result.Reservations[i]))
	}
	c.JSON(http.StatusOK, gin.H{"reservations": items, "total": result.Total})
}

func (h *ReservationHandler) cancel(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid reservation id"})
		return
	}

	updated, err := h.service.Cancel(c.Request.Context(), id)
	if err != nil {
		metrics.ReservationOutcomes.WithLabelValues("cancel", outcome(err)).Inc()
		writeError(c, err)
		return
	}

	metrics.ReservationOutcomes.WithLabelValues("cancel", "success").Inc()
	c.JSON(http.StatusOK, toReservationResponse(updated))
}

func (h *ReservationHandler) reverse(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid reservation id"})
		return
	}

	if err := h.service.Reverse(c.Request.Context(), id); err != nil {
		metrics.ReservationOutcomes.WithLabelValues("reverse", outcome(err)).Inc()
		writeError(c, err)
		return
	}

	metrics.ReservationOutcomes.WithLabelValues("reverse", "success").Inc()
	c.Status(http.StatusNoContent)
}

func toReservationResponse(r *domain.ItineraryReservation) reservationResponse {
	return reservationResponse{
		ReservationID:   r.ReservationID,
		Status:          string(r.Status),
		TicketTypeCode:  string(r.TicketTypeCode),
		TravelClassCode: string(r.TravelClassCode),
		DateMade:        r.DateMade.Format(time.RFC3339),
	}
}

func outcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrCapacityExceeded):
		return "capacity_exceeded"
	case errors.Is(err, domain.ErrValidation):
		return "validation_failed"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}
