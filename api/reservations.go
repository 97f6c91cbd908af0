package api

import (
	"fmt"
	"net/http"

	"github.com/Domenick1991/railbooking/internal/domain"
	"github.com/Domenick1991/railbooking/internal/fare"
	"github.com/Domenick1991/railbooking/internal/service/booking"
	"github.com/gin-gonic/gin"
)

type ReservationHandler struct {
	service booking.BookingUseCase
}

type reservationResponse struct {
	*domain.Reservation
	TravelDate string `json:"travel_date"`
	Price      string `json:"price"`
}

func newReservationResponse(r *domain.Reservation) reservationResponse {
	return reservationResponse{
		Reservation: r,
		TravelDate:  r.TravelDate.Format(domain.DateLayout),
		Price:       fare.Format(r.PriceCents),
	}
}

func NewReservationHandler(service booking.BookingUseCase) *ReservationHandler {
	return &ReservationHandler{service: service}
}

func (h *ReservationHandler) Register(router *gin.RouterGroup) {
	router.POST("/fares/quote", h.quote)
	router.GET("/stats", h.stats)
}

// RegisterProtected mounts routes that act on behalf of the calling customer.
func (h *ReservationHandler) RegisterProtected(router *gin.RouterGroup) {
	router.POST("/reservations", h.create)
	router.GET("/reservations/:code", h.get)
	router.DELETE("/reservations/:code", h.cancel)
	router.GET("/customers/me/reservations", h.listMine)
}

func (h *ReservationHandler) create(c *gin.Context) {
	var req booking.CreateReservationInput
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, fmt.Errorf("%w: %v", domain.ErrValidation, err))
		return
	}
	req.CustomerID = customerID(c)

	res, err := h.service.CreateReservation(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newReservationResponse(res))
}

// owned loads a reservation and hides it from customers who do not own it.
func (h *ReservationHandler) owned(c *gin.Context) (*domain.Reservation, bool) {
	res, err := h.service.GetReservation(c.Request.Context(), c.Param("code"))
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	if res.CustomerID != customerID(c) {
		writeError(c, domain.ErrReservationNotFound)
		return nil, false
	}
	return res, true
}

func (h *ReservationHandler) get(c *gin.Context) {
	res, ok := h.owned(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, newReservationResponse(res))
}

func (h *ReservationHandler) cancel(c *gin.Context) {
	current, ok := h.owned(c)
	if !ok {
		return
	}
	res, err := h.service.CancelReservation(c.Request.Context(), current.ConfirmationCode)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newReservationResponse(res))
}

func (h *ReservationHandler) listMine(c *gin.Context) {
	list, err := h.service.ListCustomerReservations(c.Request.Context(), customerID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]reservationResponse, 0, len(list))
	for i := range list {
		out = append(out, newReservationResponse(&list[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (h *ReservationHandler) quote(c *gin.Context) {
	var req booking.QuoteInput
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, fmt.Errorf("%w: %v", domain.ErrValidation, err))
		return
	}
	q, err := h.service.QuoteFare(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, q)
}

func (h *ReservationHandler) stats(c *gin.Context) {
	st, err := h.service.Stats(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}
