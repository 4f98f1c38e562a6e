package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"switchbot_dashboard/internal/models"
	"switchbot_dashboard/internal/service"
	"switchbot_dashboard/internal/switchbot"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	genTokenToken string
	genTokenErr   error
	parseName     string
	parseErr      error

	lastGenUsername string
	lastGenPassword string
	lastParseToken  string
}

func (m *mockAuth) GenerateToken(username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (string, error) {
	m.lastParseToken = token
	return m.parseName, m.parseErr
}

type mockSettings struct {
	current  models.Settings
	saveErr  error
	saved    []models.Settings
	credsErr error
}

func (m *mockSettings) Init(ctx context.Context) (service.SettingsSource, error) {
	return service.SourceStored, nil
}
func (m *mockSettings) Get() models.Settings { return m.current }
func (m *mockSettings) Save(ctx context.Context, s models.Settings) error {
	m.saved = append(m.saved, s)
	if m.saveErr != nil {
		return m.saveErr
	}
	m.current = s
	return nil
}
func (m *mockSettings) Credentials() (models.Credentials, error) {
	return m.current.Credentials(), m.credsErr
}

type mockDevices struct {
	resp models.DeviceListResult
	err  error
}

func (m *mockDevices) Fetch(ctx context.Context) (models.DeviceListResult, error) {
	return m.resp, m.err
}

type mockControl struct {
	resp models.CommandResult
	err  error

	lastDeviceID string
	lastCommand  string
	lastAcState  models.AcState
	lastRequest  switchbot.CommandRequest
}

func (m *mockControl) ApplyAirConditioner(ctx context.Context, deviceID string, st models.AcState) (models.CommandResult, error) {
	m.lastDeviceID = deviceID
	m.lastAcState = st
	return m.resp, m.err
}
func (m *mockControl) SendTV(ctx context.Context, deviceID, command string) (models.CommandResult, error) {
	m.lastDeviceID = deviceID
	m.lastCommand = command
	return m.resp, m.err
}
func (m *mockControl) SendLight(ctx context.Context, deviceID, command string) (models.CommandResult, error) {
	m.lastDeviceID = deviceID
	m.lastCommand = command
	return m.resp, m.err
}
func (m *mockControl) SendCommand(ctx context.Context, deviceID string, cmd switchbot.CommandRequest) (models.CommandResult, error) {
	m.lastDeviceID = deviceID
	m.lastRequest = cmd
	return m.resp, m.err
}

type mockMeter struct {
	mu     sync.Mutex
	resp   models.MeterStatusResult
	err    error
	calls  int
	lastID string
}

func (m *mockMeter) Status(ctx context.Context, deviceID string) (models.MeterStatusResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.lastID = deviceID
	return m.resp, m.err
}

func (m *mockMeter) Sample(ctx context.Context, deviceID string) (models.MeterStatusResult, error) {
	return m.Status(ctx, deviceID)
}

type mockActivity struct {
	resp     []models.ActivityEntry
	err      error
	lastFrom time.Time
	lastTo   time.Time
	lastType string
}

func (m *mockActivity) Record(typ, message, command string) {}
func (m *mockActivity) List(ctx context.Context, f service.LogFilter) ([]models.ActivityEntry, error) {
	m.lastFrom = f.From
	m.lastTo = f.To
	m.lastType = f.Type
	return m.resp, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
