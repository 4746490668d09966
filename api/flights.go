package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/ccrew/flightinventory/internal/domain"
	"github.com/ccrew/flightinventory/internal/service/flights"
	"github.com/gin-gonic/gin"
)

type FlightHandler struct {
	service flights.FlightUseCase
}

func NewFlightHandler(service flights.FlightUseCase) *FlightHandler {
	return &FlightHandler{service: service}
}

func (h *FlightHandler) Register(router *gin.RouterGroup) {
	router.GET("/oneway", h.listOneWay)
	router.GET("/:flightNumber", h.get)
	router.POST("/", h.add)
	router.DELETE("/:flightNumber", h.delete)
	router.POST("/:flightNumber/legs", h.addLeg)
}

func (h *FlightHandler) listOneWay(c *gin.Context) {
	origin := c.Query("origin")
	destination := c.Query("destination")
	date, err := time.Parse("2006-01-02", c.Query("date"))
	if origin == "" || destination == "" || err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "origin, destination and date=YYYY-MM-DD are required"})
		return
	}

	offers := make([]domain.OneWayOffer, 0)
	for offer, err := range h.service.ListAvailableOneWay(c.Request.Context(), origin, destination, date) {
		if err != nil {
			writeError(c, err)
			return
		}
		offers = append(offers, offer)
	}
	c.JSON(http.StatusOK, gin.H{"offers": offers})
}

func (h *FlightHandler) get(c *gin.Context) {
	flightNumber, err := strconv.ParseInt(c.Param("flightNumber"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid flight number"})
		return
	}

	details, err := h.service.Get(c.Request.Context(), flightNumber)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, details)
}

func (h *FlightHandler) add(c *gin.Context) {
	var input flights.AddFlightInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	flight, err := h.service.Add(c.Request.Context(), input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, flight)
}

func (h *FlightHandler) delete(c *gin.Context) {
	flightNumber, err := strconv.ParseInt(c.Param("flightNumber"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid flight number"})
		return
	}

	if err := h.service.Delete(c.Request.Context(), flightNumber); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *FlightHandler) addLeg(c *gin.Context) {
	flightNumber, err := strconv.ParseInt(c.Param("flightNumber"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid flight number"})
		return
	}

	var input flights.AddLegInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	input.FlightNumber = flightNumber

	leg, err := h.service.AddLeg(c.Request.Context(), input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, leg)
}
