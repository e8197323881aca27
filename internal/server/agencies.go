package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	tenancydomain "github.com/smallbiznis/whitelabel/internal/tenancy/domain"
)

type createAgencyRequest struct {
	Name              string `json:"name"`
	Tier              string `json:"tier"`
	PrimaryClientName string `json:"primary_client_name"`
}

type createClientRequest struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type switchClientRequest struct {
	ClientID string `json:"client_id"`
}

func (s *Server) CreateAgency(c *gin.Context) {
	var req createAgencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.tenancySvc.CreateAgency(c.Request.Context(), currentUserID(c), tenancydomain.CreateAgencyRequest{
		Name:              strings.TrimSpace(req.Name),
		Tier:              strings.TrimSpace(req.Tier),
		PrimaryClientName: strings.TrimSpace(req.PrimaryClientName),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) GetAgency(c *gin.Context) {
	agencyID, err := pathID(c, paramAgencyID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.tenancySvc.GetAgency(c.Request.Context(), currentUserID(c), agencyID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListClients(c *gin.Context) {
	agencyID, err := pathID(c, paramAgencyID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.tenancySvc.ListClients(c.Request.Context(), currentUserID(c), agencyID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CreateClient(c *gin.Context) {
	agencyID, err := pathID(c, paramAgencyID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req createClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.tenancySvc.CreateClient(c.Request.Context(), currentUserID(c), agencyID, tenancydomain.CreateClientRequest{
		Name: strings.TrimSpace(req.Name),
		Slug: strings.TrimSpace(req.Slug),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) GetContext(c *gin.Context) {
	agencyID, err := pathID(c, paramAgencyID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.tenancySvc.GetContext(c.Request.Context(), currentUserID(c), agencyID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) SwitchClient(c *gin.Context) {
	agencyID, err := pathID(c, paramAgencyID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req switchClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	clientID, err := parseOptionalID("client_id", req.ClientID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if clientID == nil {
		AbortWithError(c, newValidationError("client_id", "required", "client_id is required"))
		return
	}

	resp, err := s.tenancySvc.SwitchClient(c.Request.Context(), currentUserID(c), agencyID, *clientID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
