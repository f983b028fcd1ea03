package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/customeros/mailtriage/internal/enum"
	"github.com/customeros/mailtriage/internal/logger"
	"github.com/customeros/mailtriage/internal/models"
)

func testPolicy() models.Policy {
	p := models.DefaultPolicy()
	p.VIPDomains = []string{"Company.com"}
	p.VIPEmails = []string{"investor@fund.io"}
	p.TeamDomains = []string{"mycorp.io"}
	p.VendorEmails = []string{"billing@supplier.net"}
	return p
}

func classify(sender string) *models.ClassificationResult {
	svc := NewClassifierService(logger.NewNopLogger(), testPolicy())
	return svc.Classify(&models.MessageRecord{MessageID: "m1", Sender: sender})
}

func TestClassify_TypePrecedence(t *testing.T) {
	tests := []struct {
		name   string
		sender string
		want   enum.SenderType
		vip    bool
	}{
		{"vip domain", "alice@company.com", enum.SenderVIP, true},
		{"vip email", "investor@fund.io", enum.SenderVIP, true},
		{"vip beats team", "investor@fund.io", enum.SenderVIP, true},
		{"team", "bob@mycorp.io", enum.SenderTeam, false},
		{"vendor", "billing@supplier.net", enum.SenderVendor, false},
		{"bulk pattern", "newsletter@shop.com", enum.SenderSpam, false},
		{"free mail long local part", "averyveryverylongname@gmail.com", enum.SenderSpam, false},
		{"free mail digit run", "john1234@yahoo.com", enum.SenderSpam, false},
		{"free mail plain", "john@gmail.com", enum.SenderUnknown, false},
		{"customer", "jane@acme.org", enum.SenderCustomer, false},
		{"no domain", "not-an-address", enum.SenderUnknown, false},
		{"empty", "", enum.SenderUnknown, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := classify(tt.sender)
			assert.Equal(t, tt.want, res.SenderType)
			assert.Equal(t, tt.vip, res.IsVIP)
		})
	}
}

func TestClassify_TitleKeywordMakesVIPWithoutChangingType(t *testing.T) {
	res := classify("ceo@acme.org")
	assert.True(t, res.IsVIP)
	assert.Equal(t, enum.SenderCustomer, res.SenderType)
	assert.Equal(t, 1.0, res.Confidence)
}

func TestClassify_ConfidenceTable(t *testing.T) {
	assert.Equal(t, 0.95, classify("bob@mycorp.io").Confidence)
	assert.Equal(t, 0.80, classify("billing@supplier.net").Confidence)
	assert.Equal(t, 0.70, classify("jane@acme.org").Confidence)
	assert.Equal(t, 0.85, classify("promo@shop.com").Confidence)
	assert.Equal(t, 0.50, classify("john@gmail.com").Confidence)
}

func TestClassify_DomainAndNotes(t *testing.T) {
	res := classify("Alice <Alice@Company.COM>")
	require.NotNil(t, res)
	assert.Equal(t, "company.com", res.SenderDomain)
	assert.Contains(t, res.Notes, "VIP sender")
	assert.Contains(t, res.Notes, "Type: vip")
	assert.Contains(t, res.Notes, "Domain: company.com")

	res = classify("bob@mycorp.io")
	assert.True(t, res.IsInternal)
	assert.Contains(t, res.Notes, "Internal team member")
}

func TestClassify_Deterministic(t *testing.T) {
	svc := NewClassifierService(logger.NewNopLogger(), testPolicy())
	msg := &models.MessageRecord{MessageID: "m1", Sender: "ceo@company.com"}
	assert.Equal(t, svc.Classify(msg), svc.Classify(msg))
}

func TestRules_CoverEveryNamedType(t *testing.T) {
	var types []enum.SenderType
	for _, r := range Rules {
		types = append(types, r.Type)
	}
	assert.Equal(t, []enum.SenderType{
		enum.SenderVIP, enum.SenderTeam, enum.SenderVendor, enum.SenderSpam, enum.SenderCustomer,
	}, types)
}
