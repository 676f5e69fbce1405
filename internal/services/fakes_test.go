package services

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"emploi_backend/internal/models"
	"emploi_backend/internal/repositories"
)

// In-memory repository fakes so the service layer can be tested without a
// database.

type fakeUserRepo struct {
	mu     sync.Mutex
	users  map[string]*models.User // keyed by user ID
	tokens map[string]*models.PasswordResetToken
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:  map[string]*models.User{},
		tokens: map[string]*models.PasswordResetToken{},
	}
}

func (r *fakeUserRepo) addCandidate(email, cin string, cvPath *string) (*models.User, *models.Candidate) {
	user := &models.User{
		BaseModel: models.BaseModel{ID: uuid.NewString()},
		Email:     email,
		Role:      models.UserRoleCandidate,
		FirstName: "Test",
		LastName:  "Candidate",
	}
	user.Candidate = &models.Candidate{
		BaseModel: models.BaseModel{ID: uuid.NewString()},
		UserID:    user.ID,
		CIN:       cin,
		CVPath:    cvPath,
	}
	if cvPath != nil {
		now := time.Now()
		user.Candidate.CVUploadedAt = &now
	}
	r.users[user.ID] = user
	return user, user.Candidate
}

func (r *fakeUserRepo) addEmployer(email, fiscalID string) (*models.User, *models.Employer) {
	user := &models.User{
		BaseModel: models.BaseModel{ID: uuid.NewString()},
		Email:     email,
		Role:      models.UserRoleEmployer,
		FirstName: "Test",
		LastName:  "Employer",
	}
	user.Employer = &models.Employer{
		BaseModel:   models.BaseModel{ID: uuid.NewString()},
		UserID:      user.ID,
		CompanyName: "Acme",
		FiscalID:    fiscalID,
	}
	r.users[user.ID] = user
	return user, user.Employer
}

func (r *fakeUserRepo) FindByID(id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user, ok := r.users[id]; ok {
		return user, nil
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) FindByEmail(email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) Create(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return repositories.ErrUserAlreadyExists
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.Candidate != nil && user.Candidate.ID == "" {
		user.Candidate.ID = uuid.NewString()
		user.Candidate.UserID = user.ID
	}
	if user.Employer != nil && user.Employer.ID == "" {
		user.Employer.ID = uuid.NewString()
		user.Employer.UserID = user.ID
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) Update(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return repositories.ErrUserNotFound
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) UpdatePassword(userID, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	user.PasswordHash = passwordHash
	return nil
}

func (r *fakeUserRepo) Delete(userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[userID]; !ok {
		return repositories.ErrUserNotFound
	}
	delete(r.users, userID)
	return nil
}

func (r *fakeUserRepo) ExistsByEmail(email string) (bool, error) {
	_, err := r.FindByEmail(email)
	if err != nil {
		return false, nil
	}
	return true, nil
}

func (r *fakeUserRepo) FindCandidateByID(id string) (*models.Candidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Candidate != nil && user.Candidate.ID == id {
			return user.Candidate, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) UpdateCandidate(candidate *models.Candidate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Candidate != nil && user.Candidate.ID == candidate.ID {
			user.Candidate = candidate
			return nil
		}
	}
	return repositories.ErrUserNotFound
}

func (r *fakeUserRepo) UpdateEmployer(employer *models.Employer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Employer != nil && user.Employer.ID == employer.ID {
			user.Employer = employer
			return nil
		}
	}
	return repositories.ErrUserNotFound
}

func (r *fakeUserRepo) ExistsByCIN(cin string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Candidate != nil && user.Candidate.CIN == cin {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeUserRepo) ExistsByFiscalID(fiscalID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Employer != nil && user.Employer.FiscalID == fiscalID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeUserRepo) CreateResetToken(token *models.PasswordResetToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[token.UserID]; !ok {
		return repositories.ErrUserNotFound
	}
	r.tokens[token.Token] = token
	return nil
}

func (r *fakeUserRepo) FindResetToken(token string) (*models.PasswordResetToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.tokens[token]; ok {
		return t, nil
	}
	return nil, repositories.ErrTokenNotFound
}

func (r *fakeUserRepo) DeleteResetToken(token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tokens, token)
	return nil
}

func (r *fakeUserRepo) DeleteUserResetTokens(userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, t := range r.tokens {
		if t.UserID == userID {
			delete(r.tokens, key)
		}
	}
	return nil
}

type fakeOfferRepo struct {
	mu     sync.Mutex
	offers map[string]*models.Offer
}

func newFakeOfferRepo() *fakeOfferRepo {
	return &fakeOfferRepo{offers: map[string]*models.Offer{}}
}

func (r *fakeOfferRepo) addOffer(employerID, title string, status models.OfferStatus) *models.Offer {
	offer := &models.Offer{
		BaseModel:   models.BaseModel{ID: uuid.NewString()},
		EmployerID:  employerID,
		Title:       title,
		Description: "Some description for " + title,
		PublishedAt: time.Now(),
		ExpiresAt:   time.Now().Add(30 * 24 * time.Hour),
		Status:      status,
	}
	r.offers[offer.ID] = offer
	return offer
}

func (r *fakeOfferRepo) Create(offer *models.Offer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if offer.ID == "" {
		offer.ID = uuid.NewString()
	}
	r.offers[offer.ID] = offer
	return nil
}

func (r *fakeOfferRepo) FindByID(id string) (*models.Offer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if offer, ok := r.offers[id]; ok {
		return offer, nil
	}
	return nil, repositories.ErrOfferNotFound
}

func (r *fakeOfferRepo) Update(offer *models.Offer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.offers[offer.ID]; !ok {
		return repositories.ErrOfferNotFound
	}
	r.offers[offer.ID] = offer
	return nil
}

func (r *fakeOfferRepo) UpdateStatus(offerID string, status models.OfferStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	offer, ok := r.offers[offerID]
	if !ok {
		return repositories.ErrOfferNotFound
	}
	offer.Status = status
	return nil
}

func (r *fakeOfferRepo) Delete(offerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.offers[offerID]; !ok {
		return repositories.ErrOfferNotFound
	}
	delete(r.offers, offerID)
	return nil
}

func (r *fakeOfferRepo) FindActive() ([]models.Offer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var offers []models.Offer
	for _, offer := range r.offers {
		if offer.Status == models.OfferStatusActive {
			offers = append(offers, *offer)
		}
	}
	sort.Slice(offers, func(i, j int) bool {
		return offers[i].PublishedAt.After(offers[j].PublishedAt)
	})
	return offers, nil
}

func (r *fakeOfferRepo) FindByEmployer(employerID string) ([]models.Offer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var offers []models.Offer
	for _, offer := range r.offers {
		if offer.EmployerID == employerID {
			offers = append(offers, *offer)
		}
	}
	return offers, nil
}

func (r *fakeOfferRepo) Search(criteria repositories.OfferFilter) ([]models.Offer, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var offers []models.Offer
	for _, offer := range r.offers {
		if offer.Status != models.OfferStatusActive {
			continue
		}
		if criteria.Title != "" && !strings.Contains(strings.ToLower(offer.Title), strings.ToLower(criteria.Title)) {
			continue
		}
		if criteria.Location != "" && !strings.Contains(strings.ToLower(offer.Location), strings.ToLower(criteria.Location)) {
			continue
		}
		offers = append(offers, *offer)
	}
	return offers, int64(len(offers)), nil
}

func (r *fakeOfferRepo) FindAll() ([]models.Offer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var offers []models.Offer
	for _, offer := range r.offers {
		offers = append(offers, *offer)
	}
	return offers, nil
}

type fakeApplicationRepo struct {
	mu           sync.Mutex
	applications map[string]*models.Application
	failUpdate   bool // when set, UpdateScore fails to exercise isolation
}

func newFakeApplicationRepo() *fakeApplicationRepo {
	return &fakeApplicationRepo{applications: map[string]*models.Application{}}
}

func (r *fakeApplicationRepo) Create(application *models.Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.applications {
		if existing.CandidateID == application.CandidateID && existing.OfferID == application.OfferID {
			return repositories.ErrApplicationAlreadyExists
		}
	}
	if application.ID == "" {
		application.ID = uuid.NewString()
	}
	r.applications[application.ID] = application
	return nil
}

func (r *fakeApplicationRepo) FindByID(id string) (*models.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if application, ok := r.applications[id]; ok {
		return application, nil
	}
	return nil, repositories.ErrApplicationNotFound
}

func (r *fakeApplicationRepo) FindByCandidate(candidateID string) ([]models.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var applications []models.Application
	for _, application := range r.applications {
		if application.CandidateID == candidateID {
			applications = append(applications, *application)
		}
	}
	return applications, nil
}

func (r *fakeApplicationRepo) FindByOffer(offerID string) ([]models.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var applications []models.Application
	for _, application := range r.applications {
		if application.OfferID == offerID {
			applications = append(applications, *application)
		}
	}
	return applications, nil
}

func (r *fakeApplicationRepo) FindByOfferOrderByScoreDesc(offerID string) ([]models.Application, error) {
	applications, _ := r.FindByOffer(offerID)
	sort.Slice(applications, func(i, j int) bool {
		if applications[i].Score != applications[j].Score {
			return applications[i].Score > applications[j].Score
		}
		return applications[i].SubmittedAt.Before(applications[j].SubmittedAt)
	})
	return applications, nil
}

func (r *fakeApplicationRepo) FindAll() ([]models.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var applications []models.Application
	for _, application := range r.applications {
		applications = append(applications, *application)
	}
	sort.Slice(applications, func(i, j int) bool {
		return applications[i].SubmittedAt.Before(applications[j].SubmittedAt)
	})
	return applications, nil
}

func (r *fakeApplicationRepo) ExistsByCandidateAndOffer(candidateID, offerID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, application := range r.applications {
		if application.CandidateID == candidateID && application.OfferID == offerID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeApplicationRepo) UpdateScore(applicationID string, score float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failUpdate {
		return repositories.ErrApplicationNotFound
	}
	application, ok := r.applications[applicationID]
	if !ok {
		return repositories.ErrApplicationNotFound
	}
	application.Score = score
	return nil
}

func (r *fakeApplicationRepo) UpdateStatusIfPending(applicationID string, status models.ApplicationStatus, decision models.Decision) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	application, ok := r.applications[applicationID]
	if !ok {
		return repositories.ErrApplicationNotFound
	}
	if application.Status != models.ApplicationStatusPending {
		return repositories.ErrApplicationAlreadyDecided
	}
	application.Status = status
	application.Decision = decision
	return nil
}

func (r *fakeApplicationRepo) DeleteIfPending(applicationID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	application, ok := r.applications[applicationID]
	if !ok {
		return repositories.ErrApplicationNotFound
	}
	if application.Status != models.ApplicationStatusPending {
		return repositories.ErrApplicationAlreadyDecided
	}
	delete(r.applications, applicationID)
	return nil
}

// fakeScorer records calls and delegates to a configurable function.
type fakeScorer struct {
	mu    sync.Mutex
	calls int
	fn    func(cvPath, offerText string) (float64, error)
}

func (s *fakeScorer) Score(ctx context.Context, cvPath, offerText string) (float64, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.fn == nil {
		return 0.5, nil
	}
	return s.fn(cvPath, offerText)
}

func (s *fakeScorer) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// fakeStorage keeps blobs in a map.
type fakeStorage struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{blobs: map[string][]byte{}}
}

func (s *fakeStorage) Save(ctx context.Context, path string, reader io.Reader, contentType string) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[path] = data
	return nil
}

func (s *fakeStorage) Get(ctx context.Context, path string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.blobs[path]
	if !ok {
		return nil, io.ErrUnexpectedEOF
	}
	return io.NopCloser(strings.NewReader(string(data))), nil
}

func (s *fakeStorage) Delete(ctx context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, path)
	return nil
}

func (s *fakeStorage) Exists(ctx context.Context, path string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.blobs[path]
	return ok, nil
}

func (s *fakeStorage) AbsolutePath(path string) (string, error) {
	return "/uploads/" + path, nil
}
