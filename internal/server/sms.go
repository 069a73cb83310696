package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	billingdomain "github.com/nalotext/smsmargin/internal/billing/domain"
)

func (s *Server) ChargeSMS(c *gin.Context) {
	var req billingdomain.ChargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.billingSvc.Charge(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}
