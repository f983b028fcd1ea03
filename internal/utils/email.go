package utils

import (
	"regexp"
	"strings"

	"github.com/customeros/mailsherpa/mailvalidate"
)

var senderDomainRegex = regexp.MustCompile(`@([\w.-]+)`)

// Address is the parsed view of one mailbox string.
type Address struct {
	Raw           string
	Email         string
	User          string
	Domain        string
	IsValid       bool
	IsFreeAccount bool
	IsRoleAccount bool
	IsSystem      bool
}

// ParseAddress validates an address with mailsherpa. Invalid addresses keep
// the raw string and whatever domain the @ match finds.
func ParseAddress(raw string) Address {
	addr := Address{Raw: raw, Email: strings.TrimSpace(raw)}
	if addr.Email == "" {
		return addr
	}
	v := mailvalidate.ValidateEmailSyntax(StripDisplayName(addr.Email))
	addr.IsValid = v.IsValid
	if v.IsValid {
		addr.Email = v.CleanEmail
		addr.User = strings.ToLower(v.User)
		addr.Domain = strings.ToLower(v.Domain)
		addr.IsFreeAccount = v.IsFreeAccount
		addr.IsRoleAccount = v.IsRoleAccount
		addr.IsSystem = v.IsSystemGenerated
		return addr
	}
	addr.Domain = ExtractDomain(addr.Email)
	addr.User = LocalPart(addr.Email)
	return addr
}

// ExtractDomain returns the lower-cased text after the first @ run of word
// characters, dots and dashes, or "" when there is none.
func ExtractDomain(email string) string {
	match := senderDomainRegex.FindStringSubmatch(email)
	if len(match) < 2 {
		return ""
	}
	return strings.ToLower(match[1])
}

// LocalPart is the lower-cased part before the @, or the whole string.
func LocalPart(email string) string {
	email = strings.TrimSpace(StripDisplayName(email))
	if i := strings.Index(email, "@"); i >= 0 {
		return strings.ToLower(email[:i])
	}
	return strings.ToLower(email)
}

// StripDisplayName turns "Name <addr>" into "addr".
func StripDisplayName(email string) string {
	if strings.Contains(email, "<") && strings.Contains(email, ">") {
		startIdx := strings.LastIndex(email, "<") + 1
		endIdx := strings.LastIndex(email, ">")
		if startIdx > 0 && endIdx > startIdx {
			return email[startIdx:endIdx]
		}
	}
	return email
}

func UniqueEmails(emails []string) []string {
	seen := make(map[string]struct{}, len(emails))
	unique := make([]string, 0, len(emails))

	for _, email := range emails {
		if _, exists := seen[email]; !exists {
			seen[email] = struct{}{}
			unique = append(unique, email)
		}
	}

	return unique
}

// ReplySubject prefixes "Re: " unless the subject already starts with it.
func ReplySubject(subject string) string {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(subject)), "re:") {
		return subject
	}
	return "Re: " + subject
}
