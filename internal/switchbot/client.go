package switchbot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"switchbot_dashboard/internal/models"
)

const (
	DefaultBaseURL     = "https://api.switch-bot.com/v1.1"
	DefaultRelayPrefix = "https://corsproxy.io/?"
	defaultTimeout     = 15 * time.Second

	// statusSuccess is the vendor's application-level OK sentinel.
	statusSuccess = 100

	defaultParameter   = "default"
	defaultCommandType = "command"
	acCommand          = "setAll"

	proxyHint = "Try enabling CORS Proxy."
)

// Endpoint labels reported to the observer. Device ids are left out to keep
// metric cardinality bounded.
const (
	EndpointDevices  = "devices"
	EndpointCommands = "commands"
	EndpointStatus   = "status"
)

// Request outcomes reported to the observer.
const (
	OutcomeSuccess      = "success"
	OutcomeAPIError     = "api_error"
	OutcomeNetworkError = "network_error"
)

// RequestObserver receives one callback per vendor call.
type RequestObserver interface {
	ObserveRequest(endpoint, outcome string, duration time.Duration)
}

// Client issues signed calls to the vendor API. It carries transport settings
// only; credentials are passed into every call.
type Client struct {
	baseURL     string
	relayPrefix string
	httpClient  *http.Client
	observer    RequestObserver
}

// NewClient builds a client. Empty values fall back to the public endpoints.
func NewClient(baseURL, relayPrefix string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if relayPrefix == "" {
		relayPrefix = DefaultRelayPrefix
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		relayPrefix: relayPrefix,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

// WithObserver attaches a request observer and returns the client.
func (c *Client) WithObserver(o RequestObserver) *Client {
	c.observer = o
	return c
}

// CommandRequest is the body of a device command.
type CommandRequest struct {
	Command     string `json:"command"`
	Parameter   string `json:"parameter"`
	CommandType string `json:"commandType"`
}

type envelope struct {
	StatusCode int             `json:"statusCode"`
	Message    string          `json:"message"`
	Body       json.RawMessage `json:"body"`
}

type deviceListBody struct {
	DeviceList         []models.Device `json:"deviceList"`
	InfraredRemoteList []models.Device `json:"infraredRemoteList"`
}

type meterStatusBody struct {
	DeviceID    string  `json:"deviceId"`
	DeviceType  string  `json:"deviceType"`
	HubDeviceID string  `json:"hubDeviceId"`
	Humidity    float64 `json:"humidity"`
	Temperature float64 `json:"temperature"`
}

// FetchDevices lists the account's devices and categorizes them.
func (c *Client) FetchDevices(ctx context.Context, token, secret string, useProxy bool) models.DeviceListResult {
	creds := models.Credentials{Token: token, Secret: secret, UseProxy: useProxy}

	env, err := c.do(ctx, creds, http.MethodGet, EndpointDevices, "/devices", nil)
	if err != nil {
		return models.DeviceListResult{
			Message: faultMessage(err),
			Devices: models.EmptyCategorizedDevices(),
		}
	}
	if env.StatusCode != statusSuccess {
		return models.DeviceListResult{
			Message: fmt.Sprintf("API Error (%d): %s", env.StatusCode, env.Message),
			Devices: models.EmptyCategorizedDevices(),
		}
	}

	var body deviceListBody
	if len(env.Body) > 0 {
		if err := json.Unmarshal(env.Body, &body); err != nil {
			return models.DeviceListResult{
				Message: faultMessage(fmt.Errorf("decode device list: %w", err)),
				Devices: models.EmptyCategorizedDevices(),
			}
		}
	}

	return models.DeviceListResult{
		Success: true,
		Message: "Devices fetched successfully",
		Devices: Categorize(body.DeviceList, body.InfraredRemoteList),
	}
}

// SendCommand posts a command to one device. Empty parameter and commandType
// take the vendor defaults.
func (c *Client) SendCommand(ctx context.Context, creds models.Credentials, deviceID string, cmd CommandRequest) models.CommandResult {
	if cmd.Parameter == "" {
		cmd.Parameter = defaultParameter
	}
	if cmd.CommandType == "" {
		cmd.CommandType = defaultCommandType
	}

	payload, err := json.Marshal(cmd)
	if err != nil {
		return models.CommandResult{Message: faultMessage(err)}
	}

	path := "/devices/" + url.PathEscape(deviceID) + "/commands"
	env, err := c.do(ctx, creds, http.MethodPost, EndpointCommands, path, payload)
	if err != nil {
		return models.CommandResult{Message: faultMessage(err)}
	}
	if env.StatusCode != statusSuccess {
		return models.CommandResult{Message: apiErrorMessage(env)}
	}
	return models.CommandResult{Success: true, Message: "Success"}
}

// GetMeterStatus reads temperature and humidity from a meter.
func (c *Client) GetMeterStatus(ctx context.Context, creds models.Credentials, deviceID string) models.MeterStatusResult {
	path := "/devices/" + url.PathEscape(deviceID) + "/status"
	env, err := c.do(ctx, creds, http.MethodGet, EndpointStatus, path, nil)
	if err != nil {
		return models.MeterStatusResult{Message: faultMessage(err)}
	}
	if env.StatusCode != statusSuccess {
		return models.MeterStatusResult{Message: apiErrorMessage(env)}
	}

	var body meterStatusBody
	if err := json.Unmarshal(env.Body, &body); err != nil {
		return models.MeterStatusResult{Message: faultMessage(fmt.Errorf("decode meter status: %w", err))}
	}

	return models.MeterStatusResult{
		Success: true,
		Message: "Success",
		Data: &models.MeterReading{
			Temp:     body.Temperature,
			Humidity: body.Humidity,
		},
	}
}

// SendAirConditionerCommand applies a full AC state with a single setAll
// command. The payload is returned whatever the outcome.
func (c *Client) SendAirConditionerCommand(ctx context.Context, creds models.Credentials, deviceID string, state models.AcState) models.CommandResult {
	parameter := state.Parameter()
	res := c.SendCommand(ctx, creds, deviceID, CommandRequest{
		Command:     acCommand,
		Parameter:   parameter,
		CommandType: defaultCommandType,
	})
	res.Payload = parameter
	return res
}

// URL returns the request URL for endpoint, wrapped by the relay if useProxy.
func (c *Client) URL(endpoint string, useProxy bool) string {
	target := c.baseURL + endpoint
	if !useProxy {
		return target
	}
	return c.relayPrefix + url.QueryEscape(target)
}

func (c *Client) do(ctx context.Context, creds models.Credentials, method, label, endpoint string, body []byte) (env envelope, err error) {
	start := time.Now()
	defer func() {
		c.observe(label, outcomeOf(env, err), time.Since(start))
	}()

	headers, err := Sign(creds.Token, creds.Secret)
	if err != nil {
		return envelope{}, err
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.URL(endpoint, creds.UseProxy), reader)
	if err != nil {
		return envelope{}, fmt.Errorf("creating request: %w", err)
	}
	headers.Apply(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return envelope{}, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return envelope{}, fmt.Errorf("reading response: %w", err)
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return envelope{}, fmt.Errorf("parsing response (HTTP %d): %w", resp.StatusCode, err)
	}
	return env, nil
}

func (c *Client) observe(label, outcome string, d time.Duration) {
	if c.observer != nil {
		c.observer.ObserveRequest(label, outcome, d)
	}
}

func outcomeOf(env envelope, err error) string {
	switch {
	case err != nil:
		return OutcomeNetworkError
	case env.StatusCode != statusSuccess:
		return OutcomeAPIError
	default:
		return OutcomeSuccess
	}
}

func apiErrorMessage(env envelope) string {
	return fmt.Sprintf("Error %d: %s", env.StatusCode, env.Message)
}

func faultMessage(err error) string {
	return fmt.Sprintf("Network Error: %v. %s", err, proxyHint)
}
