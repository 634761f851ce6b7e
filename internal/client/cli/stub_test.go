package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/dmitrijs2005/healthkeeper/internal/client/client"
	"github.com/dmitrijs2005/healthkeeper/internal/client/config"
	"github.com/dmitrijs2005/healthkeeper/internal/client/models"
	"github.com/dmitrijs2005/healthkeeper/internal/client/services"
	"github.com/dmitrijs2005/healthkeeper/internal/client/session"
	"github.com/google/uuid"
)

var testUserID = uuid.MustParse("6f1c1f3e-5a7b-4c61-9a39-2f1f5f0b7d11")

func testSession() *models.Session {
	return &models.Session{
		AccessToken:  "access",
		RefreshToken: "refresh",
		TokenType:    "bearer",
		ExpiresIn:    3600,
		ExpiresAt:    1893456000,
		User:         &models.User{ID: testUserID, Email: "ann@example.com"},
	}
}

// stubStore is a scripted sessionStore.
type stubStore struct {
	snap session.Snapshot

	initErr      error
	subscribeErr error
	torndown     bool

	signInSess   *models.Session
	signInErr    error
	gotEmail     string
	gotPassword  string
	signUpResult *client.SignUpResult
	signUpErr    error

	oauthProvider string
	oauthErr      error
	completeIn    string
	completeOK    bool
	completeErr   error

	signOutHits int

	refreshSess *models.Session
	refreshErr  error
}

func signedIn() *stubStore {
	return &stubStore{snap: session.Snapshot{State: session.StateAuthenticated, Session: testSession()}}
}

func signedOut() *stubStore {
	return &stubStore{snap: session.Snapshot{State: session.StateUnauthenticated}}
}

func (s *stubStore) Current() session.Snapshot           { return s.snap }
func (s *stubStore) Initialize(ctx context.Context) error { return s.initErr }
func (s *stubStore) Subscribe(ctx context.Context) error  { return s.subscribeErr }
func (s *stubStore) Teardown()                            { s.torndown = true }

func (s *stubStore) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	s.gotEmail, s.gotPassword = email, password
	if s.signInErr != nil {
		return nil, s.signInErr
	}
	s.snap = session.Snapshot{State: session.StateAuthenticated, Session: s.signInSess}
	return s.signInSess, nil
}

func (s *stubStore) SignUp(ctx context.Context, email, password string) (*client.SignUpResult, error) {
	s.gotEmail, s.gotPassword = email, password
	if s.signUpErr != nil {
		return nil, s.signUpErr
	}
	if s.signUpResult.Session != nil {
		s.snap = session.Snapshot{State: session.StateAuthenticated, Session: s.signUpResult.Session}
	}
	return s.signUpResult, nil
}

func (s *stubStore) BeginOAuth(provider string) (string, error) {
	s.oauthProvider = provider
	if s.oauthErr != nil {
		return "", s.oauthErr
	}
	return "https://backend.test/auth/v1/authorize?provider=" + provider, nil
}

func (s *stubStore) CompleteOAuth(ctx context.Context, redirectURL string) (bool, error) {
	s.completeIn = redirectURL
	if s.completeErr != nil || !s.completeOK {
		return false, s.completeErr
	}
	s.snap = session.Snapshot{State: session.StateAuthenticated, Session: testSession()}
	return true, nil
}

func (s *stubStore) SignOut(ctx context.Context) {
	s.signOutHits++
	s.snap = session.Snapshot{State: session.StateUnauthenticated}
}

func (s *stubStore) Refresh(ctx context.Context) (*models.Session, error) {
	if s.refreshErr != nil {
		return nil, s.refreshErr
	}
	s.snap.Session = s.refreshSess
	return s.refreshSess, nil
}

// stubData is a scripted services.DataService.
type stubData struct {
	profile    *models.Profile
	profileErr error
	patches    []models.ProfileUpdate

	logged    []int
	logErr    error
	today     *models.DailyHydration
	todayErr  error
	todayHits int

	meds    []models.Medication
	medsErr error
	added   []models.NewMedication
	addErr  error

	summary    *models.DashboardSummary
	summaryErr error
}

var _ services.DataService = (*stubData)(nil)

func (d *stubData) GetProfile(ctx context.Context, sess *models.Session, userID uuid.UUID) (*models.Profile, error) {
	return d.profile, d.profileErr
}

func (d *stubData) UpdateProfile(ctx context.Context, sess *models.Session, userID uuid.UUID, patch models.ProfileUpdate) (*models.Profile, error) {
	if d.profileErr != nil {
		return nil, d.profileErr
	}
	d.patches = append(d.patches, patch)
	return &models.Profile{ID: userID}, nil
}

func (d *stubData) LogWaterIntake(ctx context.Context, sess *models.Session, profileID uuid.UUID, amountML int) (*models.HydrationLog, error) {
	if d.logErr != nil {
		return nil, d.logErr
	}
	d.logged = append(d.logged, amountML)
	return &models.HydrationLog{ProfileID: profileID, AmountML: amountML}, nil
}

func (d *stubData) GetTodayHydration(ctx context.Context, sess *models.Session, profileID uuid.UUID) (*models.DailyHydration, error) {
	d.todayHits++
	if d.todayErr != nil {
		return nil, d.todayErr
	}
	if d.today == nil {
		return &models.DailyHydration{}, nil
	}
	return d.today, nil
}

func (d *stubData) GetMedications(ctx context.Context, sess *models.Session, profileID uuid.UUID) ([]models.Medication, error) {
	return d.meds, d.medsErr
}

func (d *stubData) AddMedication(ctx context.Context, sess *models.Session, m models.NewMedication) (*models.Medication, error) {
	if d.addErr != nil {
		return nil, d.addErr
	}
	d.added = append(d.added, m)
	return &models.Medication{Name: m.Name, Form: m.WithDefaults().Form}, nil
}

func (d *stubData) GetDashboardSummary(ctx context.Context, sess *models.Session, profileID uuid.UUID) (*models.DashboardSummary, error) {
	return d.summary, d.summaryErr
}

func (d *stubData) InitializeUserDefaults(ctx context.Context, sess *models.Session, userID uuid.UUID) error {
	return nil
}

// newTestApp builds an App reading answers from input and writing to the
// returned buffer.
func newTestApp(t *testing.T, store sessionStore, data services.DataService, input string) (*App, *bytes.Buffer) {
	t.Helper()
	cfg := &config.Config{}
	cfg.LoadDefaults()
	var out bytes.Buffer
	return newApp(cfg, store, data, nil, strings.NewReader(input), &out), &out
}

// withPassword makes getPassword return pw without touching the terminal.
func withPassword(t *testing.T, pw string) {
	t.Helper()
	orig := getPassword
	getPassword = func(io.Writer) ([]byte, error) {
		return []byte(pw), nil
	}
	t.Cleanup(func() { getPassword = orig })
}
