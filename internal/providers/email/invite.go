package email

import (
	"context"
	"strings"
	"time"
)

// Invite is the content of an invitation email.
type Invite struct {
	To         string
	AgencyName string
	Role       string
	Token      string
	PortalURL  string
	ExpiresAt  time.Time
}

func (i Invite) AcceptURL() string {
	return strings.TrimSuffix(strings.TrimSpace(i.PortalURL), "/") + "/invitations/" + i.Token
}

func SendInvite(ctx context.Context, p Provider, invite Invite) error {
	return p.SendTemplate(ctx, []string{invite.To}, TemplateInviteMember, map[string]any{
		"agency_name": invite.AgencyName,
		"role":        invite.Role,
		"accept_url":  invite.AcceptURL(),
		"expires_at":  invite.ExpiresAt.UTC().Format(time.RFC1123),
	})
}
