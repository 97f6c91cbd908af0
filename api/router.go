package api

import (
	"net/http"

	"github.com/Domenick1991/railbooking/config"
	"github.com/Domenick1991/railbooking/internal/service/booking"
	"github.com/Domenick1991/railbooking/internal/service/customers"
	"github.com/Domenick1991/railbooking/internal/service/trains"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Services struct {
	Trains    trains.TrainUseCase
	Customers customers.CustomerUseCase
	Booking   booking.BookingUseCase
	Tokens    TokenParser
}

// NewRouter builds the REST engine serving /api/v1.
func NewRouter(cfg config.HTTPConfig, auth config.AuthConfig, svc Services, log logrus.FieldLogger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(log))

	corsCfg := cors.DefaultConfig()
	if len(cfg.AllowOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.AllowOrigins
	} else {
		corsCfg.AllowAllOrigins = true
	}
	corsCfg.AddAllowHeaders("Authorization", requestIDHeader, customerIDHeader)
	corsCfg.AddExposeHeaders(requestIDHeader)
	router.Use(cors.New(corsCfg))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	trainHandler := NewTrainHandler(svc.Trains)
	customerHandler := NewCustomerHandler(svc.Customers)
	reservationHandler := NewReservationHandler(svc.Booking)

	v1 := router.Group("/api/v1")
	trainHandler.Register(v1)
	customerHandler.Register(v1)
	reservationHandler.Register(v1)

	protected := v1.Group("")
	protected.Use(Authenticate(svc.Tokens, auth.RequireToken))
	customerHandler.RegisterProtected(protected)
	reservationHandler.RegisterProtected(protected)

	return router
}
