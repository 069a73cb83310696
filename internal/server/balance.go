package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	walletdomain "github.com/nalotext/smsmargin/internal/wallet/domain"
)

func (s *Server) GetBalance(c *gin.Context) {
	balance, err := s.walletSvc.Balance(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": balance})
}

func (s *Server) ListWalletTransactions(c *gin.Context) {
	var req walletdomain.TransactionsRequest
	if err := c.ShouldBindQuery(&req.Pagination); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.walletSvc.Transactions(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      resp.Data,
		"page_info": resp.PageInfo,
	})
}

func (s *Server) DistributeBalance(c *gin.Context) {
	var req walletdomain.DistributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.walletSvc.Distribute(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

func (s *Server) AutoDistributeBalance(c *gin.Context) {
	result, err := s.walletSvc.AutoDistribute(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

func (s *Server) UpsertAutoRecharge(c *gin.Context) {
	var req walletdomain.AutoRechargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	cfg, err := s.walletSvc.UpsertAutoRecharge(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": cfg})
}
