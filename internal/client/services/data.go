// Package services contains the client's application services: the
// data-access layer over the backend tables and RPCs, and the hydration
// tracker built on it.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dmitrijs2005/healthkeeper/internal/client/client"
	"github.com/dmitrijs2005/healthkeeper/internal/client/models"
	"github.com/dmitrijs2005/healthkeeper/internal/logging"
	"github.com/dmitrijs2005/healthkeeper/internal/timex"
	"github.com/google/uuid"
)

const (
	tableProfiles      = "profiles"
	tableHydrationLogs = "hydration_logs"
	tableMedications   = "medications"

	rpcDashboardSummary = "get_dashboard_summary"
	rpcInitializeUser   = "initialize_user_defaults"
)

var (
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrInvalidMedication = errors.New("medication name is required")
	ErrInvalidProfile    = errors.New("invalid profile update")
)

// DataService is the data-access layer. Every call takes the caller's
// session explicitly and makes exactly one backend round trip. Failures
// are logged and returned; a missing profile is the only absorbed case.
type DataService interface {
	GetProfile(ctx context.Context, sess *models.Session, userID uuid.UUID) (*models.Profile, error)
	UpdateProfile(ctx context.Context, sess *models.Session, userID uuid.UUID, patch models.ProfileUpdate) (*models.Profile, error)
	LogWaterIntake(ctx context.Context, sess *models.Session, profileID uuid.UUID, amountML int) (*models.HydrationLog, error)
	GetTodayHydration(ctx context.Context, sess *models.Session, profileID uuid.UUID) (*models.DailyHydration, error)
	GetMedications(ctx context.Context, sess *models.Session, profileID uuid.UUID) ([]models.Medication, error)
	AddMedication(ctx context.Context, sess *models.Session, m models.NewMedication) (*models.Medication, error)
	GetDashboardSummary(ctx context.Context, sess *models.Session, profileID uuid.UUID) (*models.DashboardSummary, error)
	InitializeUserDefaults(ctx context.Context, sess *models.Session, userID uuid.UUID) error
}

type dataService struct {
	backend client.Data
	log     logging.Logger
	now     func() time.Time
}

// NewDataService builds a DataService over backend. now decides what
// "today" is; nil means time.Now.
func NewDataService(backend client.Data, log logging.Logger, now func() time.Time) DataService {
	if log == nil {
		log = logging.Nop{}
	}
	if now == nil {
		now = time.Now
	}
	return &dataService{backend: backend, log: log.With("module", "data"), now: now}
}

// GetProfile returns (nil, nil) when the user has no profile row yet, for
// example right after sign-up and before the backend created it.
func (d *dataService) GetProfile(ctx context.Context, sess *models.Session, userID uuid.UUID) (*models.Profile, error) {
	var p models.Profile
	err := d.backend.SelectSingle(ctx, sess, client.From(tableProfiles).Eq("id", userID), &p)
	if errors.Is(err, client.ErrNotFound) {
		d.log.Info(ctx, "profile not found", "user_id", userID)
		return nil, nil
	}
	if err != nil {
		d.log.Error(ctx, "get profile failed", "user_id", userID, "error", err)
		return nil, err
	}
	return &p, nil
}

func (d *dataService) UpdateProfile(ctx context.Context, sess *models.Session, userID uuid.UUID, patch models.ProfileUpdate) (*models.Profile, error) {
	if patch.Empty() || !patch.Valid() {
		return nil, ErrInvalidProfile
	}

	var p models.Profile
	if err := d.backend.Update(ctx, sess, client.From(tableProfiles).Eq("id", userID), patch, &p); err != nil {
		d.log.Error(ctx, "update profile failed", "user_id", userID, "error", err)
		return nil, err
	}
	return &p, nil
}

// LogWaterIntake appends one hydration entry. Non-positive amounts are
// rejected before any request is made.
func (d *dataService) LogWaterIntake(ctx context.Context, sess *models.Session, profileID uuid.UUID, amountML int) (*models.HydrationLog, error) {
	if amountML <= 0 {
		return nil, ErrInvalidAmount
	}

	var out models.HydrationLog
	row := models.NewHydrationLog{ProfileID: profileID, AmountML: amountML}
	if err := d.backend.Insert(ctx, sess, tableHydrationLogs, row, &out); err != nil {
		d.log.Error(ctx, "log water intake failed", "profile_id", profileID, "amount_ml", amountML, "error", err)
		return nil, err
	}
	return &out, nil
}

// GetTodayHydration sums the entries whose log date is today's UTC date.
func (d *dataService) GetTodayHydration(ctx context.Context, sess *models.Session, profileID uuid.UUID) (*models.DailyHydration, error) {
	today := timex.UTCDate(d.now())

	var logs []models.HydrationLog
	q := client.From(tableHydrationLogs).Eq("profile_id", profileID).Eq("log_date", today)
	if err := d.backend.Select(ctx, sess, q, &logs); err != nil {
		d.log.Error(ctx, "get today hydration failed", "profile_id", profileID, "date", today, "error", err)
		return nil, err
	}
	return &models.DailyHydration{Total: models.SumAmounts(logs), Logs: logs}, nil
}

// GetMedications lists active medications ordered by name.
func (d *dataService) GetMedications(ctx context.Context, sess *models.Session, profileID uuid.UUID) ([]models.Medication, error) {
	meds := []models.Medication{}
	q := client.From(tableMedications).
		Eq("profile_id", profileID).
		Eq("is_active", true).
		Order("name", true)
	if err := d.backend.Select(ctx, sess, q, &meds); err != nil {
		d.log.Error(ctx, "get medications failed", "profile_id", profileID, "error", err)
		return nil, err
	}
	return meds, nil
}

// AddMedication inserts an active medication, defaulting form and color.
func (d *dataService) AddMedication(ctx context.Context, sess *models.Session, m models.NewMedication) (*models.Medication, error) {
	m.Name = strings.TrimSpace(m.Name)
	if m.Name == "" || m.ProfileID == uuid.Nil {
		return nil, ErrInvalidMedication
	}
	m = m.WithDefaults()
	m.IsActive = true

	var out models.Medication
	if err := d.backend.Insert(ctx, sess, tableMedications, m, &out); err != nil {
		d.log.Error(ctx, "add medication failed", "profile_id", m.ProfileID, "error", err)
		return nil, err
	}
	return &out, nil
}

type profileArgs struct {
	UserProfileID uuid.UUID `json:"user_profile_id"`
}

type userArgs struct {
	UserID uuid.UUID `json:"user_id"`
}

// GetDashboardSummary returns the first row of the summary RPC, or nil
// when it produced none.
func (d *dataService) GetDashboardSummary(ctx context.Context, sess *models.Session, profileID uuid.UUID) (*models.DashboardSummary, error) {
	var rows []models.DashboardSummary
	if err := d.backend.RPC(ctx, sess, rpcDashboardSummary, profileArgs{UserProfileID: profileID}, &rows); err != nil {
		d.log.Error(ctx, "get dashboard summary failed", "profile_id", profileID, "error", err)
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// InitializeUserDefaults asks the backend to seed a new user's data.
func (d *dataService) InitializeUserDefaults(ctx context.Context, sess *models.Session, userID uuid.UUID) error {
	if err := d.backend.RPC(ctx, sess, rpcInitializeUser, userArgs{UserID: userID}, nil); err != nil {
		d.log.Error(ctx, "initialize user defaults failed", "user_id", userID, "error", err)
		return err
	}
	return nil
}
