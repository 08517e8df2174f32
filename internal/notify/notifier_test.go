package notify

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	"github.com/homeservice/hsbot/internal/intake"
)

type fakeSender struct {
	recipients []tele.Recipient
	messages   []string
	failWith   error
}

func (f *fakeSender) Send(to tele.Recipient, what interface{}, _ ...interface{}) (*tele.Message, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	f.recipients = append(f.recipients, to)
	text, _ := what.(string)
	f.messages = append(f.messages, text)
	return &tele.Message{}, nil
}

func TestSubmissionSummaryWithTaxID(t *testing.T) {
	got := SubmissionSummary(intake.Submission{
		Description: "протекает крыша",
		Name:        "Ирина",
		Phone:       "89991370001",
		TaxID:       sql.NullString{String: "7707083893", Valid: true},
	})
	want := "Новая заявка:\nОписание: протекает крыша\nИмя: Ирина\nТелефон: 89991370001\nИНН: 7707083893"
	require.Equal(t, want, got)
}

func TestSubmissionSummaryWithoutTaxID(t *testing.T) {
	got := SubmissionSummary(intake.Submission{
		Description: "сломался кран",
		Name:        "Олег",
		Phone:       "89991370002",
	})
	require.Equal(t, "Новая заявка:\nОписание: сломался кран\nИмя: Олег\nТелефон: 89991370002\nИНН: —", got)
}

func TestSubmissionRelayTargetsAdmin(t *testing.T) {
	bot := &fakeSender{}
	n := New(555)
	n.Bind(bot)

	err := n.Submission(context.Background(), intake.Submission{
		Description: "описание",
		Name:        "Олег",
		Phone:       "89991370003",
	})
	require.NoError(t, err)
	require.Len(t, bot.recipients, 1)
	require.Equal(t, tele.ChatID(555), bot.recipients[0])
}

func TestReviewRelayPrefixesText(t *testing.T) {
	bot := &fakeSender{}
	n := New(555)
	n.Bind(bot)

	require.NoError(t, n.Review(context.Background(), "Отличный сервис!"))
	require.Equal(t, []string{"Новый отзыв:\nОтличный сервис!"}, bot.messages)
}

func TestRelayBeforeBindFails(t *testing.T) {
	n := New(555)
	err := n.Review(context.Background(), "отзыв")
	require.ErrorIs(t, err, ErrNotBound)
}

func TestRelayErrorIsWrapped(t *testing.T) {
	sendErr := errors.New("telegram api: Bad Gateway (502)")
	n := New(555)
	n.Bind(&fakeSender{failWith: sendErr})

	err := n.Submission(context.Background(), intake.Submission{})
	require.ErrorIs(t, err, sendErr)
}
