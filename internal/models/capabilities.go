package models

import (
	"strings"

	"github.com/customeros/mailtriage/internal/enum"
)

// Capabilities is what the mail collaborator has been granted.
type Capabilities struct {
	CanRead   bool `json:"can_read"`
	CanDraft  bool `json:"can_draft"`
	CanSend   bool `json:"can_send"`
	CanModify bool `json:"can_modify"`
}

func FullCapabilities() Capabilities {
	return Capabilities{CanRead: true, CanDraft: true, CanSend: true, CanModify: true}
}

func (c Capabilities) Mode() enum.OperatingMode {
	switch {
	case c.CanRead && c.CanDraft && c.CanSend:
		return enum.ModeFull
	case c.CanRead && c.CanDraft:
		return enum.ModeDraftOnly
	case c.CanRead:
		return enum.ModeReadOnly
	default:
		return enum.ModeUnavailable
	}
}

// Missing lists the capability names that were not granted.
func (c Capabilities) Missing() []string {
	var missing []string
	if !c.CanRead {
		missing = append(missing, "read")
	}
	if !c.CanDraft {
		missing = append(missing, "draft")
	}
	if !c.CanSend {
		missing = append(missing, "send")
	}
	if !c.CanModify {
		missing = append(missing, "modify")
	}
	return missing
}

// CapabilitiesFromScopes maps OAuth style scope strings to capabilities.
// Matching is by substring so both short and URL scopes work.
func CapabilitiesFromScopes(scopes []string) Capabilities {
	var c Capabilities
	for _, scope := range scopes {
		s := strings.ToLower(scope)
		switch {
		case strings.Contains(s, "readonly"):
			c.CanRead = true
		case strings.Contains(s, "compose"):
			c.CanDraft = true
		case strings.Contains(s, "send"):
			c.CanSend = true
		case strings.Contains(s, "modify"):
			c.CanModify = true
		}
	}
	return c
}
