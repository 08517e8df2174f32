package intake

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	submissions []Submission
	nextID      int64
	failWith    error

	existing    bool
	storedTaxID sql.NullString
}

func (f *fakeRepo) Submit(_ context.Context, sub Submission) (Submission, bool, error) {
	if f.failWith != nil {
		return Submission{}, false, f.failWith
	}
	f.submissions = append(f.submissions, sub)
	if f.nextID == 0 {
		f.nextID = 1
	}
	sub.UserID = f.nextID
	if f.existing {
		sub.TaxID = f.storedTaxID
		return sub, true, nil
	}
	return sub, false, nil
}

type fakeNotifier struct {
	submissions []Submission
	reviews     []string
	failWith    error
}

func (f *fakeNotifier) Submission(_ context.Context, sub Submission) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.submissions = append(f.submissions, sub)
	return nil
}

func (f *fakeNotifier) Review(_ context.Context, text string) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.reviews = append(f.reviews, text)
	return nil
}

func newTestEngine(repo SubmissionStore, notify Notifier) *Engine {
	return NewEngine(NewStore(), repo, notify)
}

func TestCompanyFlowSubmitsOnce(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{nextID: 42}
	relay := &fakeNotifier{}
	e := newTestEngine(repo, relay)
	const userID int64 = 100

	r := e.BeginIntake(userID, true)
	require.Equal(t, textCompanyIntro, r.Text)
	require.Equal(t, StateAwaitingDescription, e.Sessions().GetState(userID))

	r = e.HandleDescription(ctx, userID, "протекает крыша")
	require.Equal(t, textAskTaxID, r.Text)
	require.Equal(t, StateAwaitingTaxID, e.Sessions().GetState(userID))

	r = e.HandleTaxID(ctx, userID, "1234567894")
	require.Equal(t, textAskName, r.Text)

	r = e.HandleName(ctx, userID, "Ирина")
	require.Equal(t, textAskPhone, r.Text)

	r = e.HandlePhone(ctx, userID, "89991370001")
	require.Equal(t, textSubmitted, r.Text)
	require.Equal(t, KeyboardMain, r.Keyboard)

	require.Len(t, repo.submissions, 1)
	sub := repo.submissions[0]
	require.Equal(t, "протекает крыша", sub.Description)
	require.Equal(t, "Ирина", sub.Name)
	require.Equal(t, "89991370001", sub.Phone)
	require.True(t, sub.TaxID.Valid)
	require.Equal(t, "1234567894", sub.TaxID.String)

	require.Len(t, relay.submissions, 1)
	require.EqualValues(t, 42, relay.submissions[0].UserID)

	require.False(t, e.Sessions().InProgress(userID))
}

func TestIndividualFlowSkipsTaxID(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{}
	e := newTestEngine(repo, &fakeNotifier{})
	const userID int64 = 101

	e.BeginIntake(userID, false)
	r := e.HandleDescription(ctx, userID, "сломался кран")
	require.Equal(t, textAskName, r.Text)
	require.Equal(t, StateAwaitingName, e.Sessions().GetState(userID))

	e.HandleName(ctx, userID, "Олег")
	r = e.HandlePhone(ctx, userID, "89991370002")
	require.Equal(t, textSubmitted, r.Text)

	require.Len(t, repo.submissions, 1)
	require.False(t, repo.submissions[0].TaxID.Valid)
}

func TestInvalidTaxIDKeepsDialogue(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{}
	e := newTestEngine(repo, &fakeNotifier{})
	const userID int64 = 102

	e.BeginIntake(userID, true)
	e.HandleDescription(ctx, userID, "описание")

	r := e.HandleTaxID(ctx, userID, "12345")
	require.Equal(t, textBadTaxID, r.Text)
	require.Equal(t, StateAwaitingTaxID, e.Sessions().GetState(userID))

	r = e.HandleTaxID(ctx, userID, "123456789012")
	require.Equal(t, textAskName, r.Text)
	require.Equal(t, StateAwaitingName, e.Sessions().GetState(userID))
}

func TestInvalidPhoneKeepsDialogue(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{}
	e := newTestEngine(repo, &fakeNotifier{})
	const userID int64 = 103

	e.BeginIntake(userID, false)
	e.HandleDescription(ctx, userID, "описание")
	e.HandleName(ctx, userID, "Олег")

	for _, phone := range []string{"79991370000", "81234567890", "899913700", "телефон"} {
		r := e.HandlePhone(ctx, userID, phone)
		require.Equal(t, textBadPhone, r.Text, "phone %q must be rejected", phone)
		require.Equal(t, StateAwaitingPhone, e.Sessions().GetState(userID))
	}
	require.Empty(t, repo.submissions)
}

func TestStorageFailureKeepsDialogue(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{failWith: errors.New("db down")}
	relay := &fakeNotifier{}
	e := newTestEngine(repo, relay)
	const userID int64 = 104

	e.BeginIntake(userID, false)
	e.HandleDescription(ctx, userID, "описание")
	e.HandleName(ctx, userID, "Олег")

	r := e.HandlePhone(ctx, userID, "89991370003")
	require.Equal(t, textSubmitFail, r.Text)
	require.Empty(t, relay.submissions)
	require.Equal(t, StateAwaitingPhone, e.Sessions().GetState(userID))
}

func TestRelayFailureStillConfirms(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{}
	relay := &fakeNotifier{failWith: errors.New("telegram down")}
	e := newTestEngine(repo, relay)
	const userID int64 = 105

	e.BeginIntake(userID, false)
	e.HandleDescription(ctx, userID, "описание")
	e.HandleName(ctx, userID, "Олег")

	r := e.HandlePhone(ctx, userID, "89991370004")
	require.Equal(t, textSubmitted, r.Text)
	require.Len(t, repo.submissions, 1)
	require.False(t, e.Sessions().InProgress(userID))
}

func TestExistingPhoneReportsStoredTaxID(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{
		nextID:      7,
		existing:    true,
		storedTaxID: sql.NullString{String: "7707083893", Valid: true},
	}
	relay := &fakeNotifier{}
	e := newTestEngine(repo, relay)
	const userID int64 = 106

	e.BeginIntake(userID, true)
	e.HandleDescription(ctx, userID, "описание")
	e.HandleTaxID(ctx, userID, "1234567894")
	e.HandleName(ctx, userID, "Ирина")
	e.HandlePhone(ctx, userID, "89991370005")

	require.Len(t, relay.submissions, 1)
	require.Equal(t, "7707083893", relay.submissions[0].TaxID.String)
}

func TestReviewRelaysVerbatim(t *testing.T) {
	ctx := context.Background()
	relay := &fakeNotifier{}
	e := newTestEngine(&fakeRepo{}, relay)
	const userID int64 = 107

	r := e.StartReview(userID)
	require.Equal(t, textAskReview, r.Text)
	require.Equal(t, StateAwaitingReview, e.Sessions().GetState(userID))

	r = e.HandleReview(ctx, userID, "Отличный сервис!")
	require.Equal(t, textReviewDone, r.Text)
	require.Equal(t, []string{"Отличный сервис!"}, relay.reviews)
	require.False(t, e.Sessions().InProgress(userID))
}

func TestReviewRelayFailureKeepsDialogue(t *testing.T) {
	ctx := context.Background()
	relay := &fakeNotifier{failWith: errors.New("telegram down")}
	e := newTestEngine(&fakeRepo{}, relay)
	const userID int64 = 108

	e.StartReview(userID)
	r := e.HandleReview(ctx, userID, "отзыв")
	require.Equal(t, textReviewFail, r.Text)
	require.Equal(t, StateAwaitingReview, e.Sessions().GetState(userID))
}

func TestWelcomeResetsDialogue(t *testing.T) {
	e := newTestEngine(&fakeRepo{}, &fakeNotifier{})
	const userID int64 = 109

	e.BeginIntake(userID, true)
	require.True(t, e.Sessions().InProgress(userID))

	r := e.Welcome(userID)
	require.Equal(t, textWelcome, r.Text)
	require.Equal(t, KeyboardMain, r.Keyboard)
	require.False(t, e.Sessions().InProgress(userID))
}

func TestBackReturnsMainMenu(t *testing.T) {
	e := newTestEngine(&fakeRepo{}, &fakeNotifier{})
	r := e.Back(110)
	require.Equal(t, textWelcome, r.Text)
	require.Equal(t, KeyboardMain, r.Keyboard)
}
