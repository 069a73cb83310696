package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	ledgerdomain "github.com/nalotext/smsmargin/internal/profitledger/domain"
)

func (s *Server) GetProfitAnalytics(c *gin.Context) {
	var req ledgerdomain.AnalyticsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.ledgerSvc.Analytics(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetPricingRecommendations(c *gin.Context) {
	resp, err := s.insightsSvc.Recommendations(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
