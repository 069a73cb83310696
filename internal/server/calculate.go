package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	pricingdomain "github.com/nalotext/smsmargin/internal/pricing/domain"
)

func (s *Server) CalculatePricing(c *gin.Context) {
	var req pricingdomain.CalculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.pricingSvc.Calculate(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

func (s *Server) BulkCalculatePricing(c *gin.Context) {
	var req pricingdomain.BulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.pricingSvc.BulkCalculate(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}
