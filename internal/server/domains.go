package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	customdomaindomain "github.com/smallbiznis/whitelabel/internal/customdomain/domain"
)

type createDomainRequest struct {
	Domain string `json:"domain"`
}

type verifyDomainRequest struct {
	DNSRecordValue string `json:"dns_record_value"`
}

func (s *Server) CreateDomain(c *gin.Context) {
	clientID, err := pathID(c, paramClientID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req createDomainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.domainSvc.Create(c.Request.Context(), currentUserID(c), clientID, customdomaindomain.CreateDomainRequest{
		Domain: strings.TrimSpace(req.Domain),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListDomains(c *gin.Context) {
	clientID, err := pathID(c, paramClientID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.domainSvc.List(c.Request.Context(), currentUserID(c), clientID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) VerifyDomain(c *gin.Context) {
	domainID, err := pathID(c, paramDomainID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req verifyDomainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.domainSvc.Verify(c.Request.Context(), currentUserID(c), domainID, req.DNSRecordValue)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
