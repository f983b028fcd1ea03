package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	triage_errors "github.com/customeros/mailtriage/internal/errors"
	"github.com/customeros/mailtriage/internal/models"
)

// PolicyFile holds the lists too long for env vars. Every list present in
// the file is appended to the env list of the same name.
type PolicyFile struct {
	VIPEmails       []string `yaml:"vip_emails"`
	VIPDomains      []string `yaml:"vip_domains"`
	TeamDomains     []string `yaml:"team_domains"`
	VendorEmails    []string `yaml:"vendor_emails"`
	AllowedDomains  []string `yaml:"allowed_domains"`
	BlockedDomains  []string `yaml:"blocked_domains"`
	UrgencyKeywords []string `yaml:"urgency_keywords"`
	LegalKeywords   []string `yaml:"legal_keywords"`
	FinanceKeywords []string `yaml:"finance_keywords"`
	SpamIndicators  []string `yaml:"spam_indicators"`
}

func LoadPolicyFile(path string) (*PolicyFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read policy file %s", path)
	}
	var file PolicyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.Wrap(triage_errors.ErrPolicyFileInvalid, err.Error())
	}
	return &file, nil
}

// ToPolicy builds the normalized run policy from env values and the policy
// file, when one is configured.
func (c *PolicyConfig) ToPolicy() (models.Policy, error) {
	p := models.DefaultPolicy()
	p.PriorityThreshold = c.PriorityThreshold
	p.MaxEmails = c.MaxEmails
	p.VIPEmails = c.VIPEmails
	p.VIPDomains = c.VIPDomains
	p.TeamDomains = c.TeamDomains
	p.AllowedDomains = c.AllowedDomains
	p.BlockedDomains = c.BlockedDomains
	p.DNDMode = c.DNDMode
	p.AutoResponder = c.AutoResponder
	p.RequireApprovalForExternal = c.RequireApprovalForExternal
	p.EnablePIIDetection = c.EnablePIIDetection
	p.EnableDomainRestrictions = c.EnableDomainRestrictions
	p.EnableToneEnforcement = c.EnableToneEnforcement

	if c.PolicyFile != "" {
		file, err := LoadPolicyFile(c.PolicyFile)
		if err != nil {
			return models.Policy{}, err
		}
		file.apply(&p)
	}
	return p.Normalized(), nil
}

func (f *PolicyFile) apply(p *models.Policy) {
	p.VIPEmails = append(p.VIPEmails, f.VIPEmails...)
	p.VIPDomains = append(p.VIPDomains, f.VIPDomains...)
	p.TeamDomains = append(p.TeamDomains, f.TeamDomains...)
	p.VendorEmails = append(p.VendorEmails, f.VendorEmails...)
	p.AllowedDomains = append(p.AllowedDomains, f.AllowedDomains...)
	p.BlockedDomains = append(p.BlockedDomains, f.BlockedDomains...)
	// keyword lists replace the defaults instead of extending them
	if len(f.UrgencyKeywords) > 0 {
		p.UrgencyKeywords = f.UrgencyKeywords
	}
	if len(f.LegalKeywords) > 0 {
		p.LegalKeywords = f.LegalKeywords
	}
	if len(f.FinanceKeywords) > 0 {
		p.FinanceKeywords = f.FinanceKeywords
	}
	if len(f.SpamIndicators) > 0 {
		p.SpamIndicators = f.SpamIndicators
	}
}

func (c *CapabilitiesConfig) ToCapabilities() models.Capabilities {
	return models.CapabilitiesFromScopes(c.Scopes)
}
