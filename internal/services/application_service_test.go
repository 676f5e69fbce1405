package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"emploi_backend/internal/models"
	"emploi_backend/internal/services/dto"
	"emploi_backend/pkg/apperrors"
)

type applicationTestEnv struct {
	users  *fakeUserRepo
	offers *fakeOfferRepo
	apps   *fakeApplicationRepo
	scorer *fakeScorer
	store  *fakeStorage
	svc    ApplicationService
}

func newApplicationTestEnv() *applicationTestEnv {
	users := newFakeUserRepo()
	offers := newFakeOfferRepo()
	apps := newFakeApplicationRepo()
	scorer := &fakeScorer{}
	store := newFakeStorage()
	policy := NewAccessPolicy(users)

	return &applicationTestEnv{
		users:  users,
		offers: offers,
		apps:   apps,
		scorer: scorer,
		store:  store,
		svc:    NewApplicationService(apps, offers, users, policy, scorer, store),
	}
}

func validLetter() string {
	return strings.Repeat("motivation ", 10) // 110 chars
}

func errCode(t *testing.T, err error) apperrors.ErrorCode {
	t.Helper()
	var appErr *apperrors.AppError
	require.True(t, apperrors.As(err, &appErr), "expected *apperrors.AppError, got %v", err)
	return appErr.Code
}

func TestSubmitCreatesPendingApplication(t *testing.T) {
	env := newApplicationTestEnv()
	cvPath := "cv/abc.pdf"
	_, candidate := env.users.addCandidate("cand@test.io", "AB123456", &cvPath)
	_, employer := env.users.addEmployer("emp@test.io", "F-001")
	offer := env.offers.addOffer(employer.ID, "Go developer", models.OfferStatusActive)

	env.scorer.fn = func(cvPath, offerText string) (float64, error) {
		assert.Contains(t, offerText, "Go developer")
		return 0.82, nil
	}

	app, err := env.svc.Submit(context.Background(), "cand@test.io", &dto.SubmitApplicationRequest{
		OfferID:          offer.ID,
		MotivationLetter: validLetter(),
	})
	require.NoError(t, err)

	assert.Equal(t, models.ApplicationStatusPending, app.Status)
	assert.Empty(t, app.Decision)
	assert.Equal(t, candidate.ID, app.CandidateID)
	assert.Equal(t, offer.ID, app.OfferID)
	assert.InDelta(t, 0.82, app.Score, 1e-9)
	assert.WithinDuration(t, time.Now(), app.SubmittedAt, time.Second)
	assert.Equal(t, 1, env.scorer.callCount())
}

func TestSubmitWithoutCVSkipsScoring(t *testing.T) {
	env := newApplicationTestEnv()
	env.users.addCandidate("cand@test.io", "AB123456", nil)
	_, employer := env.users.addEmployer("emp@test.io", "F-001")
	offer := env.offers.addOffer(employer.ID, "Go developer", models.OfferStatusActive)

	app, err := env.svc.Submit(context.Background(), "cand@test.io", &dto.SubmitApplicationRequest{
		OfferID:          offer.ID,
		MotivationLetter: validLetter(),
	})
	require.NoError(t, err)

	assert.Zero(t, app.Score)
	assert.Equal(t, 0, env.scorer.callCount())
}

func TestSubmitScoringFailureStillCreates(t *testing.T) {
	env := newApplicationTestEnv()
	cvPath := "cv/abc.pdf"
	env.users.addCandidate("cand@test.io", "AB123456", &cvPath)
	_, employer := env.users.addEmployer("emp@test.io", "F-001")
	offer := env.offers.addOffer(employer.ID, "Go developer", models.OfferStatusActive)

	env.scorer.fn = func(cvPath, offerText string) (float64, error) {
		return 0, errors.New("matching service down")
	}

	app, err := env.svc.Submit(context.Background(), "cand@test.io", &dto.SubmitApplicationRequest{
		OfferID:          offer.ID,
		MotivationLetter: validLetter(),
	})
	require.NoError(t, err)

	assert.Zero(t, app.Score)
	assert.Equal(t, models.ApplicationStatusPending, app.Status)
}

func TestSubmitValidatesMotivationLetter(t *testing.T) {
	env := newApplicationTestEnv()
	env.users.addCandidate("cand@test.io", "AB123456", nil)
	_, employer := env.users.addEmployer("emp@test.io", "F-001")
	offer := env.offers.addOffer(employer.ID, "Go developer", models.OfferStatusActive)

	cases := []struct {
		name    string
		letter  string
		message string
	}{
		{"empty", "", "required"},
		{"whitespace only", "   \n\t  ", "required"},
		{"too short", "too short", "at least 50"},
		{"too short after trim", "  " + strings.Repeat("a", 49) + "  ", "at least 50"},
		{"too long", strings.Repeat("a", 2001), "at most 2000"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.svc.Submit(context.Background(), "cand@test.io", &dto.SubmitApplicationRequest{
				OfferID:          offer.ID,
				MotivationLetter: tc.letter,
			})
			require.Error(t, err)
			assert.Equal(t, apperrors.CodeValidationFailed, errCode(t, err))
			assert.Contains(t, err.Error(), tc.message)
		})
	}
}

func TestSubmitPersistsTrimmedLetter(t *testing.T) {
	env := newApplicationTestEnv()
	env.users.addCandidate("cand@test.io", "AB123456", nil)
	_, employer := env.users.addEmployer("emp@test.io", "F-001")
	offer := env.offers.addOffer(employer.ID, "Go developer", models.OfferStatusActive)

	letter := "  " + validLetter() + "  "
	app, err := env.svc.Submit(context.Background(), "cand@test.io", &dto.SubmitApplicationRequest{
		OfferID:          offer.ID,
		MotivationLetter: letter,
	})
	require.NoError(t, err)
	assert.Equal(t, strings.TrimSpace(letter), app.MotivationLetter)
}

func TestSubmitDuplicateIsConflict(t *testing.T) {
	env := newApplicationTestEnv()
	env.users.addCandidate("cand@test.io", "AB123456", nil)
	_, employer := env.users.addEmployer("emp@test.io", "F-001")
	offer := env.offers.addOffer(employer.ID, "Go developer", models.OfferStatusActive)

	req := &dto.SubmitApplicationRequest{OfferID: offer.ID, MotivationLetter: validLetter()}

	_, err := env.svc.Submit(context.Background(), "cand@test.io", req)
	require.NoError(t, err)

	_, err = env.svc.Submit(context.Background(), "cand@test.io", req)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeConflict, errCode(t, err))
}

func TestSubmitClosedOfferIsRefused(t *testing.T) {
	env := newApplicationTestEnv()
	env.users.addCandidate("cand@test.io", "AB123456", nil)
	_, employer := env.users.addEmployer("emp@test.io", "F-001")
	offer := env.offers.addOffer(employer.ID, "Go developer", models.OfferStatusClosed)

	_, err := env.svc.Submit(context.Background(), "cand@test.io", &dto.SubmitApplicationRequest{
		OfferID:          offer.ID,
		MotivationLetter: validLetter(),
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidStatus, errCode(t, err))
}

func TestSubmitUnknownOffer(t *testing.T) {
	env := newApplicationTestEnv()
	env.users.addCandidate("cand@test.io", "AB123456", nil)

	_, err := env.svc.Submit(context.Background(), "cand@test.io", &dto.SubmitApplicationRequest{
		OfferID:          "missing",
		MotivationLetter: validLetter(),
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeNotFound, errCode(t, err))
}

func TestSubmitRequiresCandidateRole(t *testing.T) {
	env := newApplicationTestEnv()
	_, employer := env.users.addEmployer("emp@test.io", "F-001")
	offer := env.offers.addOffer(employer.ID, "Go developer", models.OfferStatusActive)

	_, err := env.svc.Submit(context.Background(), "emp@test.io", &dto.SubmitApplicationRequest{
		OfferID:          offer.ID,
		MotivationLetter: validLetter(),
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeRoleMismatch, errCode(t, err))
}

func submitApplication(t *testing.T, env *applicationTestEnv, candidateEmail, offerID string) *models.Application {
	t.Helper()
	app, err := env.svc.Submit(context.Background(), candidateEmail, &dto.SubmitApplicationRequest{
		OfferID:          offerID,
		MotivationLetter: validLetter(),
	})
	require.NoError(t, err)
	return app
}

func TestDecideAccepted(t *testing.T) {
	env := newApplicationTestEnv()
	env.users.addCandidate("cand@test.io", "AB123456", nil)
	_, employer := env.users.addEmployer("emp@test.io", "F-001")
	offer := env.offers.addOffer(employer.ID, "Go developer", models.OfferStatusActive)
	app := submitApplication(t, env, "cand@test.io", offer.ID)

	decided, err := env.svc.Decide("emp@test.io", app.ID, "accepted")
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusAccepted, decided.Status)
	assert.Equal(t, models.DecisionAccepted, decided.Decision)
}

func TestDecideRejected(t *testing.T) {
	env := newApplicationTestEnv()
	env.users.addCandidate("cand@test.io", "AB123456", nil)
	_, employer := env.users.addEmployer("emp@test.io", "F-001")
	offer := env.offers.addOffer(employer.ID, "Go developer", models.OfferStatusActive)
	app := submitApplication(t, env, "cand@test.io", offer.ID)

	decided, err := env.svc.Decide("emp@test.io", app.ID, "REJECTED")
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusRejected, decided.Status)
	assert.Equal(t, models.DecisionRejected, decided.Decision)
}

func TestDecideUnknownDecisionIsValidationError(t *testing.T) {
	env := newApplicationTestEnv()
	env.users.addCandidate("cand@test.io", "AB123456", nil)
	_, employer := env.users.addEmployer("emp@test.io", "F-001")
	offer := env.offers.addOffer(employer.ID, "Go developer", models.OfferStatusActive)
	app := submitApplication(t, env, "cand@test.io", offer.ID)

	_, err := env.svc.Decide("emp@test.io", app.ID, "maybe")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeValidationFailed, errCode(t, err))

	// The application must be untouched.
	stored, findErr := env.apps.FindByID(app.ID)
	require.NoError(t, findErr)
	assert.Equal(t, models.ApplicationStatusPending, stored.Status)
}

func TestDecideTwiceFails(t *testing.T) {
	env := newApplicationTestEnv()
	env.users.addCandidate("cand@test.io", "AB123456", nil)
	_, employer := env.users.addEmployer("emp@test.io", "F-001")
	offer := env.offers.addOffer(employer.ID, "Go developer", models.OfferStatusActive)
	app := submitApplication(t, env, "cand@test.io", offer.ID)

	_, err := env.svc.Decide("emp@test.io", app.ID, "accepted")
	require.NoError(t, err)

	_, err = env.svc.Decide("emp@test.io", app.ID, "rejected")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidStatus, errCode(t, err))
}

func TestDecideRequiresOfferOwner(t *testing.T) {
	env := newApplicationTestEnv()
	env.users.addCandidate("cand@test.io", "AB123456", nil)
	_, employer := env.users.addEmployer("emp@test.io", "F-001")
	env.users.addEmployer("other@test.io", "F-002")
	offer := env.offers.addOffer(employer.ID, "Go developer", models.OfferStatusActive)
	app := submitApplication(t, env, "cand@test.io", offer.ID)

	_, err := env.svc.Decide("other@test.io", app.ID, "accepted")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeForbidden, errCode(t, err))
}

func TestWithdrawPendingApplication(t *testing.T) {
	env := newApplicationTestEnv()
	env.users.addCandidate("cand@test.io", "AB123456", nil)
	_, employer := env.users.addEmployer("emp@test.io", "F-001")
	offer := env.offers.addOffer(employer.ID, "Go developer", models.OfferStatusActive)
	app := submitApplication(t, env, "cand@test.io", offer.ID)

	require.NoError(t, env.svc.Withdraw("cand@test.io", app.ID))

	_, err := env.apps.FindByID(app.ID)
	assert.Error(t, err)
}

func TestWithdrawDecidedApplicationFails(t *testing.T) {
	env := newApplicationTestEnv()
	env.users.addCandidate("cand@test.io", "AB123456", nil)
	_, employer := env.users.addEmployer("emp@test.io", "F-001")
	offer := env.offers.addOffer(employer.ID, "Go developer", models.OfferStatusActive)
	app := submitApplication(t, env, "cand@test.io", offer.ID)

	_, err := env.svc.Decide("emp@test.io", app.ID, "accepted")
	require.NoError(t, err)

	err = env.svc.Withdraw("cand@test.io", app.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidStatus, errCode(t, err))
}

func TestWithdrawRequiresOwner(t *testing.T) {
	env := newApplicationTestEnv()
	env.users.addCandidate("cand@test.io", "AB123456", nil)
	env.users.addCandidate("other@test.io", "CD789012", nil)
	_, employer := env.users.addEmployer("emp@test.io", "F-001")
	offer := env.offers.addOffer(employer.ID, "Go developer", models.OfferStatusActive)
	app := submitApplication(t, env, "cand@test.io", offer.ID)

	err := env.svc.Withdraw("other@test.io", app.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeForbidden, errCode(t, err))
}

func TestGetByIDAccessRules(t *testing.T) {
	env := newApplicationTestEnv()
	env.users.addCandidate("cand@test.io", "AB123456", nil)
	env.users.addCandidate("other@test.io", "CD789012", nil)
	_, employer := env.users.addEmployer("emp@test.io", "F-001")
	env.users.addEmployer("stranger@test.io", "F-002")
	offer := env.offers.addOffer(employer.ID, "Go developer", models.OfferStatusActive)
	app := submitApplication(t, env, "cand@test.io", offer.ID)

	_, err := env.svc.GetByID("cand@test.io", app.ID)
	assert.NoError(t, err)

	_, err = env.svc.GetByID("emp@test.io", app.ID)
	assert.NoError(t, err)

	_, err = env.svc.GetByID("other@test.io", app.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeForbidden, errCode(t, err))

	_, err = env.svc.GetByID("stranger@test.io", app.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeForbidden, errCode(t, err))
}

func TestRankByOfferOrdersByScoreDesc(t *testing.T) {
	env := newApplicationTestEnv()
	_, employer := env.users.addEmployer("emp@test.io", "F-001")
	offer := env.offers.addOffer(employer.ID, "Go developer", models.OfferStatusActive)

	scores := []float64{0.2, 0.9, 0.5}
	for i, score := range scores {
		cvPath := "cv/some.pdf"
		email := string(rune('a'+i)) + "@test.io"
		env.users.addCandidate(email, "CIN-"+email, &cvPath)
		env.scorer.fn = func(cvPath, offerText string) (float64, error) { return score, nil }
		submitApplication(t, env, email, offer.ID)
	}

	ranked, err := env.svc.RankByOffer(offer.ID)
	require.NoError(t, err)
	require.Len(t, ranked, 3)
	assert.Equal(t, 0.9, ranked[0].Score)
	assert.Equal(t, 0.5, ranked[1].Score)
	assert.Equal(t, 0.2, ranked[2].Score)
}

func TestRecalculateAllScoresSkipsCandidatesWithoutCV(t *testing.T) {
	env := newApplicationTestEnv()
	cvPath := "cv/one.pdf"
	_, withCV := env.users.addCandidate("with@test.io", "AB123456", &cvPath)
	_, withoutCV := env.users.addCandidate("without@test.io", "CD789012", nil)
	_, employer := env.users.addEmployer("emp@test.io", "F-001")
	offer := env.offers.addOffer(employer.ID, "Go developer", models.OfferStatusActive)

	appWith := submitApplication(t, env, "with@test.io", offer.ID)
	appWithout := submitApplication(t, env, "without@test.io", offer.ID)

	// FindAll in the fake does not preload; attach relations by hand the way
	// the gorm repository would.
	stored, _ := env.apps.FindByID(appWith.ID)
	stored.Candidate = withCV
	stored.Offer = offer
	stored, _ = env.apps.FindByID(appWithout.ID)
	stored.Candidate = withoutCV
	stored.Offer = offer

	env.scorer.fn = func(cvPath, offerText string) (float64, error) { return 0.77, nil }

	updated, err := env.svc.RecalculateAllScores(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, updated)

	stored, _ = env.apps.FindByID(appWith.ID)
	assert.InDelta(t, 0.77, stored.Score, 1e-9)

	stored, _ = env.apps.FindByID(appWithout.ID)
	assert.Zero(t, stored.Score)
}

func TestRecalculateAllScoresIsolatesFailures(t *testing.T) {
	env := newApplicationTestEnv()
	cvPath := "cv/one.pdf"
	_, candidate := env.users.addCandidate("cand@test.io", "AB123456", &cvPath)
	_, employer := env.users.addEmployer("emp@test.io", "F-001")
	offerA := env.offers.addOffer(employer.ID, "Go developer", models.OfferStatusActive)
	offerB := env.offers.addOffer(employer.ID, "Rust developer", models.OfferStatusActive)

	appA := submitApplication(t, env, "cand@test.io", offerA.ID)

	env.scorer.fn = func(cvPath, offerText string) (float64, error) { return 0.4, nil }
	appB := submitApplication(t, env, "cand@test.io", offerB.ID)

	storedA, _ := env.apps.FindByID(appA.ID)
	storedA.Candidate = candidate
	storedA.Offer = offerA
	storedB, _ := env.apps.FindByID(appB.ID)
	storedB.Candidate = candidate
	storedB.Offer = offerB

	// First offer fails to score, the batch still finishes and the failed
	// row falls back to zero.
	env.scorer.fn = func(cvPath, offerText string) (float64, error) {
		if strings.Contains(offerText, "Go developer") {
			return 0, errors.New("boom")
		}
		return 0.9, nil
	}

	updated, err := env.svc.RecalculateAllScores(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, updated)

	storedA, _ = env.apps.FindByID(appA.ID)
	assert.Zero(t, storedA.Score)
	storedB, _ = env.apps.FindByID(appB.ID)
	assert.InDelta(t, 0.9, storedB.Score, 1e-9)
}
