package wizard_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fasplanners/internal/config"
	"fasplanners/internal/database"
	"fasplanners/internal/services"
	"fasplanners/internal/store"
	"fasplanners/internal/transport"
	"fasplanners/internal/wizard"
)

type fixedCode string

func (c fixedCode) Generate() string { return string(c) }

func TestWizardAgainstAPI(t *testing.T) {
	conn, err := database.Open(config.DatabaseConfig{URL: "sqlite://:memory:"})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(conn))

	cfg := &config.Config{
		App:        config.AppConfig{Name: "Fas Exclusive Planners API", Version: "test"},
		CORS:       config.CORSConfig{AllowedOrigins: []string{"*"}},
		Submission: config.SubmissionConfig{MaxBodyBytes: 1 << 20},
	}
	svc := services.NewEventRequestService(store.NewGormStore(conn), services.Options{
		Codes:  fixedCode("EVT-K7M2QP"),
		Limits: cfg.Submission,
	})
	health := services.NewHealthService(cfg.App.Name, cfg.App.Version, nil)
	srv := httptest.NewServer(transport.NewHandler(cfg, transport.NewEndpoints(svc, health)))
	t.Cleanup(func() {
		srv.Close()
		svc.Wait()
		if sqlDB, err := conn.DB(); err == nil {
			sqlDB.Close()
		}
	})

	client := wizard.NewHTTPClient(srv.URL, srv.Client())
	session := wizard.NewSession(client)

	steps := [][]wizard.Action{
		{wizard.SelectCategory{Category: "corporate"}},
		{wizard.SelectEventType{EventType: "conference"}},
		{wizard.SelectMenuCategory{Category: "mediterranean"}},
		{wizard.SetMenuSection{Section: "appetizers", Items: []string{"Item A"}}, wizard.SetMenuSection{Section: "grill"}},
		{wizard.SetText{Field: wizard.FieldEventDate, Value: "2026-11-20"}, wizard.SetGuestCount{Count: 120}},
		{
			wizard.SetText{Field: wizard.FieldName, Value: "Juma"},
			wizard.SetText{Field: wizard.FieldEmail, Value: "Juma@Example.com"},
			wizard.SetText{Field: wizard.FieldPhone, Value: "0712345678"},
		},
		{wizard.SetDecorColors{Colors: []string{"navy"}}},
	}
	for _, actions := range steps {
		for _, a := range actions {
			session.Dispatch(a)
		}
		require.NoError(t, session.Next())
	}
	session.Dispatch(wizard.SelectBudget{Budget: "above-10m"})

	receipt, err := session.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "EVT-K7M2QP", receipt.TrackingCode)
	assert.Equal(t, wizard.PhaseSubmitted, session.State().Phase)

	var record struct {
		Email        string              `json:"email"`
		GuestCount   int                 `json:"guest_count"`
		MenuSections map[string][]string `json:"menu_sections"`
		DecorColors  []string            `json:"decor_colors"`
		Status       string              `json:"status"`
	}
	require.NoError(t, json.Unmarshal(receipt.Record, &record))
	assert.Equal(t, "juma@example.com", record.Email)
	assert.Equal(t, 120, record.GuestCount)
	assert.Equal(t, []string{"Item A"}, record.MenuSections["appetizers"])
	assert.Equal(t, []string{}, record.MenuSections["soups"])
	assert.Equal(t, []string{"navy"}, record.DecorColors)
	assert.Equal(t, "new", record.Status)

	tracked, err := client.Track(context.Background(), "evt-k7m2qp")
	require.NoError(t, err)
	var view struct {
		TrackingCode string `json:"tracking_code"`
		StatusLabel  string `json:"statusLabel"`
	}
	require.NoError(t, json.Unmarshal(tracked, &view))
	assert.Equal(t, "EVT-K7M2QP", view.TrackingCode)
	assert.Equal(t, "New Request", view.StatusLabel)
}
