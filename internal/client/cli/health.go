package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/healthkeeper/internal/client/models"
	"github.com/dmitrijs2005/healthkeeper/internal/client/services"
	"github.com/dmitrijs2005/healthkeeper/internal/timex"
	"github.com/google/uuid"
)

func (a *App) Profile(ctx context.Context) error {
	sess, userID, err := a.currentSession()
	if err != nil {
		return err
	}

	p, err := a.data.GetProfile(ctx, sess, userID)
	if err != nil {
		return a.report("Loading profile", err)
	}
	if p == nil {
		fmt.Fprintln(a.out, "Profile not set up yet. Use 'editprofile' to fill it in.")
		return nil
	}

	fmt.Fprintf(a.out, "Email:          %s\n", p.Email)
	fmt.Fprintf(a.out, "Name:           %s\n", orDash(p.Name))
	if p.Weight != nil {
		fmt.Fprintf(a.out, "Weight:         %.1f kg\n", *p.Weight)
	} else {
		fmt.Fprintln(a.out, "Weight:         -")
	}
	fmt.Fprintf(a.out, "Gender:         %s\n", orDash(p.Gender))
	fmt.Fprintf(a.out, "Activity level: %s\n", orDash(p.ActivityLevel))
	fmt.Fprintf(a.out, "Plan:           %s (%s)\n", p.PlanType, p.SubscriptionStatus)
	if p.TrialEndsAt != nil {
		fmt.Fprintf(a.out, "Trial ends:     %s\n", p.TrialEndsAt.Local().Format(time.DateOnly))
	}
	return nil
}

// EditProfile prompts for each editable field; empty answers keep the
// current value.
func (a *App) EditProfile(ctx context.Context) error {
	sess, userID, err := a.currentSession()
	if err != nil {
		return err
	}

	var patch models.ProfileUpdate

	if patch.Name, err = GetOptionalText(a.reader, "Name", a.out); err != nil {
		return err
	}
	if patch.Weight, err = GetOptionalFloat(a.reader, "Weight in kg", a.out); err != nil {
		return a.report("Updating profile", err)
	}
	gender, err := GetOptionalText(a.reader, "Gender (male/female/other)", a.out)
	if err != nil {
		return err
	}
	if gender != nil {
		g := models.Gender(strings.ToLower(*gender))
		patch.Gender = &g
	}
	level, err := GetOptionalText(a.reader, "Activity level (sedentary/light/moderate/active/very_active)", a.out)
	if err != nil {
		return err
	}
	if level != nil {
		l := models.ActivityLevel(strings.ToLower(*level))
		patch.ActivityLevel = &l
	}

	if patch.Empty() {
		fmt.Fprintln(a.out, "Nothing to update")
		return nil
	}

	if _, err := a.data.UpdateProfile(ctx, sess, userID, patch); err != nil {
		return a.report("Updating profile", err)
	}
	fmt.Fprintln(a.out, "Profile updated")
	return nil
}

// Water logs amount millilitres, prompting for it when empty, and prints
// the running total for today.
func (a *App) Water(ctx context.Context, amount string) error {
	sess, userID, err := a.currentSession()
	if err != nil {
		return err
	}

	if amount == "" {
		amount, err = getSimpleText(a.reader, fmt.Sprintf("Amount in ml (e.g. %s)", quickAmounts()), a.out)
		if err != nil {
			return err
		}
	}
	ml, err := parseAmount(amount)
	if err != nil {
		return a.report("Logging water", err)
	}

	tracker, err := a.trackerFor(ctx, sess, userID)
	if err != nil {
		return a.report("Logging water", err)
	}

	if _, err := tracker.Log(ctx, sess, ml); err != nil {
		return a.report("Logging water", err)
	}
	fmt.Fprintf(a.out, "Logged %d ml. Today: %d / %d ml (%.0f%%)\n",
		ml, tracker.Total(), tracker.Goal(), tracker.Percentage())
	return nil
}

func (a *App) Today(ctx context.Context) error {
	sess, userID, err := a.currentSession()
	if err != nil {
		return err
	}

	day, err := a.data.GetTodayHydration(ctx, sess, userID)
	if err != nil {
		return a.report("Loading hydration", err)
	}

	if len(day.Logs) == 0 {
		fmt.Fprintln(a.out, "No water logged today")
	}
	for _, l := range day.Logs {
		fmt.Fprintf(a.out, "  %s  %5d ml\n", l.LoggedAt.Local().Format("15:04"), l.AmountML)
	}
	fmt.Fprintf(a.out, "Total: %d / %d ml\n", day.Total, a.goal())
	return nil
}

func (a *App) Meds(ctx context.Context) error {
	sess, userID, err := a.currentSession()
	if err != nil {
		return err
	}

	meds, err := a.data.GetMedications(ctx, sess, userID)
	if err != nil {
		return a.report("Loading medications", err)
	}
	if len(meds) == 0 {
		fmt.Fprintln(a.out, "No medications yet. Use 'addmed' to add one.")
		return nil
	}

	for _, m := range meds {
		line := fmt.Sprintf("- %s (%s)", m.Name, m.Form)
		if m.Dosage != nil && *m.Dosage != "" {
			line += ", " + *m.Dosage
		}
		fmt.Fprintln(a.out, line)
	}
	return nil
}

func (a *App) AddMed(ctx context.Context) error {
	sess, userID, err := a.currentSession()
	if err != nil {
		return err
	}

	name, err := getSimpleText(a.reader, "Medication name", a.out)
	if err != nil {
		return err
	}
	dosage, err := GetOptionalText(a.reader, "Dosage (e.g. 500 mg)", a.out)
	if err != nil {
		return err
	}
	form, err := GetOptionalText(a.reader, "Form (default "+models.DefaultMedicationForm+")", a.out)
	if err != nil {
		return err
	}
	notes, err := GetOptionalText(a.reader, "Notes", a.out)
	if err != nil {
		return err
	}

	med := models.NewMedication{
		ProfileID: userID,
		Name:      name,
		Dosage:    dosage,
		Notes:     notes,
	}
	if form != nil {
		med.Form = *form
	}

	created, err := a.data.AddMedication(ctx, sess, med)
	if err != nil {
		return a.report("Adding medication", err)
	}
	fmt.Fprintf(a.out, "Added %s\n", created.Name)
	return nil
}

func (a *App) Dashboard(ctx context.Context) error {
	sess, userID, err := a.currentSession()
	if err != nil {
		return err
	}

	sum, err := a.data.GetDashboardSummary(ctx, sess, userID)
	if err != nil {
		return a.report("Loading dashboard", err)
	}
	if sum == nil {
		fmt.Fprintln(a.out, "Nothing to show yet")
		return nil
	}

	fmt.Fprintf(a.out, "Hydration:   %d / %d ml (%.0f%%)\n", sum.HydrationTodayML, sum.HydrationGoalML, sum.HydrationPercentage)
	next := "none"
	if sum.NextMedicationName != nil {
		next = *sum.NextMedicationName
		if sum.NextMedicationTime != nil {
			next += " at " + *sum.NextMedicationTime
		}
	}
	fmt.Fprintf(a.out, "Next dose:   %s\n", next)
	fmt.Fprintf(a.out, "Due today:   %d\n", sum.MedicationsDueCount)
	fmt.Fprintf(a.out, "Streak:      %d days\n", sum.StreakDays)
	return nil
}

// trackerFor returns the hydration tracker of userID for the current UTC
// day, loading the day's total the first time it is needed.
func (a *App) trackerFor(ctx context.Context, sess *models.Session, userID uuid.UUID) (*services.HydrationTracker, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	day := timex.UTCDate(a.now())
	if a.tracker != nil && a.trackerUser == userID && a.trackerDay == day {
		return a.tracker, nil
	}

	t := services.NewHydrationTracker(a.data, userID, a.goal())
	if _, err := t.Load(ctx, sess); err != nil {
		return nil, err
	}
	a.tracker, a.trackerUser, a.trackerDay = t, userID, day
	return t, nil
}

func (a *App) resetTracker() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.tracker, a.trackerUser, a.trackerDay = nil, uuid.Nil, ""
}
