package spam

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/customeros/mailtriage/internal/enum"
	"github.com/customeros/mailtriage/internal/logger"
	"github.com/customeros/mailtriage/internal/models"
)

func TestScore(t *testing.T) {
	unknown := &models.ClassificationResult{SenderType: enum.SenderUnknown}
	spammer := &models.ClassificationResult{SenderType: enum.SenderSpam}
	one := []string{"me@mycorp.io"}

	tests := []struct {
		name string
		msg  *models.MessageRecord
		cls  *models.ClassificationResult
		want int
		spam bool
	}{
		{
			name: "plain message",
			msg:  &models.MessageRecord{Subject: "Lunch", BodyText: "See you at noon", Recipients: one},
			cls:  unknown,
			want: 0,
		},
		{
			name: "spam sender alone is not enough",
			msg:  &models.MessageRecord{Subject: "Hello", BodyText: "Hi there", Recipients: one},
			cls:  spammer,
			want: 40,
		},
		{
			name: "spam sender without recipients",
			msg:  &models.MessageRecord{Subject: "Hello", BodyText: "Hi there"},
			cls:  spammer,
			want: 55,
			spam: true,
		},
		{
			name: "indicator hits are capped",
			msg: &models.MessageRecord{
				Subject:    "Winner! Congratulations",
				BodyText:   "Act now, limited time offer, free gift",
				Recipients: one,
			},
			cls:  unknown,
			want: 30,
		},
		{
			name: "unsubscribe counts twice",
			msg:  &models.MessageRecord{Subject: "News", BodyText: "To unsubscribe follow the link", Recipients: one},
			cls:  unknown,
			want: 30,
		},
		{
			name: "spam label",
			msg:  &models.MessageRecord{Subject: "x", BodyText: "y", Recipients: one, Labels: []string{"SPAM"}},
			cls:  unknown,
			want: 50,
			spam: true,
		},
		{
			name: "too many links",
			msg: &models.MessageRecord{
				Subject:    "Links",
				BodyText:   strings.Repeat("see https://example.com ", 6),
				Recipients: one,
			},
			cls:  unknown,
			want: 15,
		},
	}

	svc := NewSpamService(logger.NewNopLogger(), models.DefaultPolicy())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, svc.Score(tt.msg, tt.cls))
			assert.Equal(t, tt.spam, svc.IsSpam(tt.msg, tt.cls))
		})
	}
}

func TestScore_TooManyRecipients(t *testing.T) {
	recipients := make([]string, 11)
	for i := range recipients {
		recipients[i] = "user@mycorp.io"
	}
	svc := NewSpamService(logger.NewNopLogger(), models.DefaultPolicy())
	msg := &models.MessageRecord{Subject: "All hands", BodyText: "Agenda attached", Recipients: recipients}

	assert.Equal(t, 15, svc.Score(msg, nil))
}
