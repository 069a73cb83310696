package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	markupruledomain "github.com/nalotext/smsmargin/internal/markuprule/domain"
)

// Tiers are volume-banded markup rules. The endpoints pin the rule kind so
// tier listings never mix with plain markup rules.

func (s *Server) ListPricingTiers(c *gin.Context) {
	tiers, err := s.ruleSvc.List(c.Request.Context(), markupruledomain.ListFilter{
		Kind: markupruledomain.RuleKindVolumeTier,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": tiers})
}

func (s *Server) CreatePricingTier(c *gin.Context) {
	var req markupruledomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.Kind = markupruledomain.RuleKindVolumeTier

	tier, err := s.ruleSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": tier})
}
