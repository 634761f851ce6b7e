package client

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/dmitrijs2005/healthkeeper/internal/client/models"
	"github.com/dmitrijs2005/healthkeeper/internal/common"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userSession = &models.Session{AccessToken: "user-token"}

func TestSelect_BuildsFiltersAndOrder(t *testing.T) {
	fb := newFakeBackend(t)
	profileID := uuid.New()

	fb.Handle(routeRest, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "medications", chi.URLParam(r, "table"))
		q := r.URL.Query()
		assert.Equal(t, "*", q.Get("select"))
		assert.Equal(t, "eq."+profileID.String(), q.Get("profile_id"))
		assert.Equal(t, "eq.true", q.Get("is_active"))
		assert.Equal(t, "name.asc", q.Get("order"))
		writeJSON(w, http.StatusOK, []map[string]any{{"name": "Aspirin"}, {"name": "Zinc"}})
	})

	c := newTestClient(t, fb, nil)

	var meds []models.Medication
	q := From("medications").Select("*").Eq("profile_id", profileID).Eq("is_active", true).Order("name", true)
	require.NoError(t, c.Select(context.Background(), userSession, q, &meds))

	require.Len(t, meds, 2)
	assert.Equal(t, "Aspirin", meds[0].Name)
	assert.Equal(t, "Bearer user-token", fb.Last().Header.Get(common.AuthorizationHeaderName))
	assert.Equal(t, testAPIKey, fb.Last().Header.Get(common.APIKeyHeaderName))
}

func TestSelectSingle_NoRowsIsNotFound(t *testing.T) {
	fb := newFakeBackend(t)
	fb.Handle(routeRest, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, mediaObject, r.Header.Get("Accept"))
		writeJSON(w, http.StatusNotAcceptable, map[string]any{
			"code":    "PGRST116",
			"message": "JSON object requested, multiple (or no) rows returned",
			"details": "The result contains 0 rows",
		})
	})

	c := newTestClient(t, fb, nil)

	var p models.Profile
	err := c.SelectSingle(context.Background(), userSession, From("profiles").Eq("id", uuid.New()), &p)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestInsert_ReturnsRepresentation(t *testing.T) {
	fb := newFakeBackend(t)
	profileID := uuid.New()
	created := uuid.New()

	fb.Handle(routeRest, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "return=representation", r.Header.Get("Prefer"))
		assert.Equal(t, mediaObject, r.Header.Get("Accept"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var in models.NewHydrationLog
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		writeJSON(w, http.StatusCreated, map[string]any{"id": created, "profile_id": in.ProfileID, "amount_ml": in.AmountML, "log_date": "2024-01-01"})
	})

	c := newTestClient(t, fb, nil)

	var out models.HydrationLog
	err := c.Insert(context.Background(), userSession, "hydration_logs", models.NewHydrationLog{ProfileID: profileID, AmountML: 250}, &out)
	require.NoError(t, err)
	assert.Equal(t, created, out.ID)
	assert.Equal(t, 250, out.AmountML)
}

func TestInsert_WithoutOutputAsksForMinimal(t *testing.T) {
	fb := newFakeBackend(t)
	fb.Handle(routeRest, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "return=minimal", r.Header.Get("Prefer"))
		w.WriteHeader(http.StatusCreated)
	})

	c := newTestClient(t, fb, nil)
	require.NoError(t, c.Insert(context.Background(), userSession, "hydration_logs", map[string]any{"amount_ml": 1}, nil))
}

func TestUpdate_PatchesMatchedRow(t *testing.T) {
	fb := newFakeBackend(t)
	id := uuid.New()

	fb.Handle(routeRest, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "eq."+id.String(), r.URL.Query().Get("id"))

		var patch map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&patch))
		assert.Equal(t, map[string]any{"name": "Ada"}, patch)

		writeJSON(w, http.StatusOK, map[string]any{"id": id, "email": "a@x.com", "name": "Ada"})
	})

	c := newTestClient(t, fb, nil)
	name := "Ada"

	var out models.Profile
	require.NoError(t, c.Update(context.Background(), userSession, From("profiles").Eq("id", id), models.ProfileUpdate{Name: &name}, &out))
	require.NotNil(t, out.Name)
	assert.Equal(t, "Ada", *out.Name)
}

func TestRPC_PostsArguments(t *testing.T) {
	fb := newFakeBackend(t)
	id := uuid.New()

	fb.Handle(routeRPC, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "get_dashboard_summary", chi.URLParam(r, "fn"))
		var args map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&args))
		assert.Equal(t, id.String(), args["user_profile_id"])
		writeJSON(w, http.StatusOK, []map[string]any{{"hydration_today_ml": 750, "hydration_goal_ml": 2000}})
	})

	c := newTestClient(t, fb, nil)

	var rows []models.DashboardSummary
	require.NoError(t, c.RPC(context.Background(), userSession, "get_dashboard_summary", map[string]string{"user_profile_id": id.String()}, &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, 750, rows[0].HydrationTodayML)
}

func TestRPC_NilArgsSendsEmptyObject(t *testing.T) {
	fb := newFakeBackend(t)
	fb.Handle(routeRPC, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	c := newTestClient(t, fb, nil)
	require.NoError(t, c.RPC(context.Background(), nil, "noop", nil, nil))
	assert.JSONEq(t, `{}`, string(fb.Last().Body))
	assert.Equal(t, "Bearer "+testAPIKey, fb.Last().Header.Get(common.AuthorizationHeaderName))
}

func TestDo_ServerErrorIsUnavailable(t *testing.T) {
	fb := newFakeBackend(t)
	fb.Handle(routeRest, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	})

	c := newTestClient(t, fb, nil)
	err := c.Select(context.Background(), userSession, From("profiles"), &[]models.Profile{})
	require.ErrorIs(t, err, ErrUnavailable)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "bad gateway", apiErr.Message)
}

func TestDo_ExpiredJWTIsUnauthorized(t *testing.T) {
	fb := newFakeBackend(t)
	fb.Handle(routeRest, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"code": "PGRST301", "message": "JWT expired"})
	})

	c := newTestClient(t, fb, nil)
	err := c.Select(context.Background(), userSession, From("profiles"), &[]models.Profile{})
	require.ErrorIs(t, err, ErrUnauthorized)
}
