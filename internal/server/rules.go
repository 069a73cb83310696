package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	markupruledomain "github.com/nalotext/smsmargin/internal/markuprule/domain"
)

func (s *Server) ListMarkupRules(c *gin.Context) {
	filter := markupruledomain.ListFilter{
		Kind: markupruledomain.RuleKind(c.Query("kind")),
	}
	if raw := c.Query("include_inactive"); raw != "" {
		includeInactive, err := strconv.ParseBool(raw)
		if err != nil {
			AbortWithError(c, invalidRequestError())
			return
		}
		filter.IncludeInactive = includeInactive
	}

	rules, err := s.ruleSvc.List(c.Request.Context(), filter)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": rules})
}

func (s *Server) CreateMarkupRule(c *gin.Context) {
	var req markupruledomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	rule, err := s.ruleSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": rule})
}

func (s *Server) GetMarkupRuleByID(c *gin.Context) {
	rule, err := s.ruleSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": rule})
}

func (s *Server) UpdateMarkupRule(c *gin.Context) {
	var req markupruledomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	rule, err := s.ruleSvc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": rule})
}

func (s *Server) DeleteMarkupRule(c *gin.Context) {
	if err := s.ruleSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}
