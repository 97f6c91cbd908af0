package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Domenick1991/railbooking/internal/domain"
	"github.com/Domenick1991/railbooking/internal/service/trains"
	"github.com/gin-gonic/gin"
)

type TrainHandler struct {
	service trains.TrainUseCase
}

func NewTrainHandler(service trains.TrainUseCase) *TrainHandler {
	return &TrainHandler{service: service}
}

func (h *TrainHandler) Register(router *gin.RouterGroup) {
	router.GET("/trains", h.list)
	router.GET("/trains/:id", h.get)
	router.GET("/fares", h.fares)
}

// list returns the whole timetable, or the available trains on a route when
// origin and destination are given.
func (h *TrainHandler) list(c *gin.Context) {
	origin, destination := c.Query("origin"), c.Query("destination")
	if origin == "" && destination == "" {
		all, err := h.service.List(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, all)
		return
	}

	var date time.Time
	if raw := c.Query("date"); raw != "" {
		d, err := domain.ParseDate(raw)
		if err != nil {
			writeError(c, err)
			return
		}
		date = d
	}

	found, err := h.service.FindAvailable(c.Request.Context(), origin, destination, date)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, found)
}

func (h *TrainHandler) get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		writeError(c, fmt.Errorf("%w: invalid id", domain.ErrValidation))
		return
	}
	train, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, train)
}

func (h *TrainHandler) fares(c *gin.Context) {
	origin, destination := c.Query("origin"), c.Query("destination")
	if origin == "" || destination == "" {
		writeError(c, fmt.Errorf("%w: origin and destination are required", domain.ErrValidation))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"origin":      domain.NormalizeStation(origin),
		"destination": domain.NormalizeStation(destination),
		"fares":       h.service.ClassFares(origin, destination),
	})
}
