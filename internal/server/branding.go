package server

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	brandingdomain "github.com/smallbiznis/whitelabel/internal/branding/domain"
)

// optionalString tells an omitted JSON key apart from an explicit null.
type optionalString struct {
	Present bool
	Value   *string
}

func (o *optionalString) UnmarshalJSON(data []byte) error {
	o.Present = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	o.Value = &value
	return nil
}

// Omitted fields are kept, null clears the override and a string sets it.
type updateBrandingRequest struct {
	CompanyName    optionalString `json:"company_name"`
	LogoURL        optionalString `json:"logo_url"`
	PrimaryColor   optionalString `json:"primary_color"`
	SecondaryColor optionalString `json:"secondary_color"`
	AccentColor    optionalString `json:"accent_color"`
}

func (r updateBrandingRequest) patch() brandingdomain.Patch {
	var p brandingdomain.Patch
	for _, f := range []struct {
		name  brandingdomain.Field
		value optionalString
		dst   **string
	}{
		{brandingdomain.FieldCompanyName, r.CompanyName, &p.Set.CompanyName},
		{brandingdomain.FieldLogoURL, r.LogoURL, &p.Set.LogoURL},
		{brandingdomain.FieldPrimaryColor, r.PrimaryColor, &p.Set.PrimaryColor},
		{brandingdomain.FieldSecondaryColor, r.SecondaryColor, &p.Set.SecondaryColor},
		{brandingdomain.FieldAccentColor, r.AccentColor, &p.Set.AccentColor},
	} {
		switch {
		case !f.value.Present:
		case f.value.Value == nil:
			p.Clear = append(p.Clear, f.name)
		default:
			*f.dst = f.value.Value
		}
	}
	return p
}

func (s *Server) UpdateAgencyBranding(c *gin.Context) {
	agencyID, err := pathID(c, paramAgencyID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req updateBrandingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.brandingSvc.UpdateAgencyBranding(c.Request.Context(), currentUserID(c), agencyID, req.patch())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetAgencyBranding(c *gin.Context) {
	agencyID, err := pathID(c, paramAgencyID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.brandingSvc.ResolveForAgency(c.Request.Context(), currentUserID(c), agencyID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateClientBranding(c *gin.Context) {
	clientID, err := pathID(c, paramClientID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req updateBrandingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.brandingSvc.UpdateClientBranding(c.Request.Context(), currentUserID(c), clientID, req.patch())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetClientBranding(c *gin.Context) {
	clientID, err := pathID(c, paramClientID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.brandingSvc.ResolveForClient(c.Request.Context(), currentUserID(c), clientID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetBrandingByDomain(c *gin.Context) {
	resp, err := s.brandingSvc.ResolveForDomain(c.Request.Context(), c.Param("domain"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
