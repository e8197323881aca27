package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	invitationdomain "github.com/smallbiznis/whitelabel/internal/invitation/domain"
)

type issueInvitationRequest struct {
	Email    string `json:"email"`
	Role     string `json:"role"`
	ClientID string `json:"client_id"`
}

type acceptInvitationRequest struct {
	Email string `json:"email"`
}

func (s *Server) IssueInvitation(c *gin.Context) {
	agencyID, err := pathID(c, paramAgencyID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req issueInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	clientID, err := parseOptionalID("client_id", req.ClientID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.invitationSvc.Issue(c.Request.Context(), currentUserID(c), agencyID, invitationdomain.IssueInvitationRequest{
		Email:    strings.TrimSpace(req.Email),
		Role:     strings.TrimSpace(req.Role),
		ClientID: clientID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListInvitations(c *gin.Context) {
	agencyID, err := pathID(c, paramAgencyID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.invitationSvc.List(c.Request.Context(), currentUserID(c), agencyID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) RevokeInvitation(c *gin.Context) {
	agencyID, err := pathID(c, paramAgencyID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	invitationID, err := pathID(c, paramInvitationID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.invitationSvc.Revoke(c.Request.Context(), currentUserID(c), agencyID, invitationID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) AcceptInvitation(c *gin.Context) {
	var req acceptInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.invitationSvc.Accept(c.Request.Context(), currentUserID(c), c.Param("token"), invitationdomain.AcceptInvitationRequest{
		Email: strings.TrimSpace(req.Email),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
