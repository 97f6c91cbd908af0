package api

import (
	"fmt"
	"net/http"

	"github.com/Domenick1991/railbooking/internal/domain"
	"github.com/Domenick1991/railbooking/internal/service/customers"
	"github.com/gin-gonic/gin"
)

type CustomerHandler struct {
	service customers.CustomerUseCase
}

type loginRequest struct {
	LoginID  string `json:"login_id"`
	Password string `json:"password"`
}

func NewCustomerHandler(service customers.CustomerUseCase) *CustomerHandler {
	return &CustomerHandler{service: service}
}

func (h *CustomerHandler) Register(router *gin.RouterGroup) {
	router.POST("/customers", h.register)
	router.POST("/auth/login", h.login)
}

// RegisterProtected mounts routes that need an authenticated customer.
func (h *CustomerHandler) RegisterProtected(router *gin.RouterGroup) {
	router.GET("/customers/me", h.me)
}

func (h *CustomerHandler) register(c *gin.Context) {
	var req customers.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, fmt.Errorf("%w: %v", domain.ErrValidation, err))
		return
	}

	customer, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, customer)
}

func (h *CustomerHandler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, fmt.Errorf("%w: %v", domain.ErrValidation, err))
		return
	}

	res, err := h.service.Login(c.Request.Context(), req.LoginID, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *CustomerHandler) me(c *gin.Context) {
	customer, err := h.service.Profile(c.Request.Context(), customerID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}
