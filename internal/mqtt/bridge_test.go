package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"switchbot_dashboard/internal/models"
	"switchbot_dashboard/internal/switchbot"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// ---- paho test doubles ----

type fakeToken struct{ err error }

func (t *fakeToken) Wait() bool { return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t *fakeToken) Error() error { return t.err }

type fakeMessage struct {
	topic   string
	payload []byte
}

func (m *fakeMessage) Duplicate() bool { return false }
func (m *fakeMessage) Qos() byte { return qos }
func (m *fakeMessage) Retained() bool { return false }
func (m *fakeMessage) Topic() string { return m.topic }
func (m *fakeMessage) MessageID() uint16 { return 1 }
func (m *fakeMessage) Payload() []byte { return m.payload }
func (m *fakeMessage) Ack() {}

type published struct {
	topic   string
	payload []byte
}

type fakeClient struct {
	mu         sync.Mutex
	connectErr error
	handlers   map[string]paho.MessageHandler
	published  []published
}

func (c *fakeClient) IsConnected() bool { return c.connectErr == nil }
func (c *fakeClient) IsConnectionOpen() bool { return true }
func (c *fakeClient) Connect() paho.Token { return &fakeToken{err: c.connectErr} }
func (c *fakeClient) Disconnect(uint) {}
func (c *fakeClient) Publish(topic string, _ byte, _ bool, payload interface{}) paho.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.published = append(c.published, published{topic: topic, payload: payload.([]byte)})
	return &fakeToken{}
}
func (c *fakeClient) Subscribe(topic string, _ byte, cb paho.MessageHandler) paho.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.handlers == nil {
		c.handlers = map[string]paho.MessageHandler{}
	}
	c.handlers[topic] = cb
	return &fakeToken{}
}
func (c *fakeClient) SubscribeMultiple(map[string]byte, paho.MessageHandler) paho.Token {
	return &fakeToken{}
}
func (c *fakeClient) Unsubscribe(...string) paho.Token { return &fakeToken{} }
func (c *fakeClient) AddRoute(string, paho.MessageHandler) {}
func (c *fakeClient) OptionsReader() paho.ClientOptionsReader { return paho.ClientOptionsReader{} }

func (c *fakeClient) deliver(topic string, payload string) {
	c.mu.Lock()
	cb := c.handlers["switchbot/command/+"]
	c.mu.Unlock()
	cb(c, &fakeMessage{topic: topic, payload: []byte(payload)})
}

func (c *fakeClient) publishedCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.published)
}

// commandRecorder satisfies CommandHandler.
type commandRecorder struct {
	mu    sync.Mutex
	calls []incomingCommand
}

func (r *commandRecorder) SendCommand(ctx context.Context, deviceID string, cmd switchbot.CommandRequest) (models.CommandResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, incomingCommand{deviceID: deviceID, request: cmd})
	return models.CommandResult{Success: true, Message: "Success"}, nil
}

func (r *commandRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

// ---- tests ----

func TestParseCommandMessage(t *testing.T) {
	cases := []struct {
		name    string
		topic   string
		payload string
		want    incomingCommand
		wantErr bool
	}{
		{
			name:    "valid",
			topic:   "switchbot/command/ABC123",
			payload: `{"command":"turnOn"}`,
			want:    incomingCommand{deviceID: "ABC123", request: switchbot.CommandRequest{Command: "turnOn"}},
		},
		{
			name:    "full body",
			topic:   "switchbot/command/ac-1",
			payload: `{"command":"setAll","parameter":"26,2,1,on","commandType":"command"}`,
			want:    incomingCommand{deviceID: "ac-1", request: switchbot.CommandRequest{Command: "setAll", Parameter: "26,2,1,on", CommandType: "command"}},
		},
		{name: "wrong prefix", topic: "remo/command/ABC", payload: `{"command":"turnOn"}`, wantErr: true},
		{name: "nested topic", topic: "switchbot/command/a/b", payload: `{"command":"turnOn"}`, wantErr: true},
		{name: "missing device", topic: "switchbot/command/", payload: `{"command":"turnOn"}`, wantErr: true},
		{name: "bad json", topic: "switchbot/command/ABC", payload: `turnOn`, wantErr: true},
		{name: "empty command", topic: "switchbot/command/ABC", payload: `{"parameter":"x"}`, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseCommandMessage("switchbot", tc.topic, []byte(tc.payload))
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestBridge_Topics(t *testing.T) {
	b := newBridge(&fakeClient{}, Config{}, nil)
	if b.CommandTopic() != "switchbot/command/+" {
		t.Fatalf("unexpected command topic %q", b.CommandTopic())
	}
	if b.MeterTopic("m1") != "switchbot/meter/m1" {
		t.Fatalf("unexpected meter topic %q", b.MeterTopic("m1"))
	}

	custom := newBridge(&fakeClient{}, Config{Prefix: "home/sb"}, nil)
	if custom.CommandTopic() != "home/sb/command/+" {
		t.Fatalf("unexpected custom topic %q", custom.CommandTopic())
	}
}

func TestBridge_ConnectError(t *testing.T) {
	b := newBridge(&fakeClient{connectErr: errors.New("refused")}, Config{}, nil)
	if err := b.Connect(); err == nil {
		t.Fatalf("expected connect error")
	}
	if b.IsConnected() {
		t.Fatalf("bridge reports connected after a failed connect")
	}
}

func TestBridge_SubscribeCommandsDispatches(t *testing.T) {
	client := &fakeClient{}
	b := newBridge(client, Config{}, nil)
	handler := &commandRecorder{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := b.SubscribeCommands(ctx, handler); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	client.deliver("switchbot/command/tv-1", `{"command":"volumeAdd"}`)
	client.deliver("switchbot/command/tv-1", `not json`)

	deadline := time.Now().Add(2 * time.Second)
	for handler.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if handler.count() != 1 {
		t.Fatalf("expected 1 dispatched command, got %d", handler.count())
	}
	handler.mu.Lock()
	got := handler.calls[0]
	handler.mu.Unlock()
	if got.deviceID != "tv-1" || got.request.Command != "volumeAdd" {
		t.Fatalf("unexpected command: %+v", got)
	}
}

func TestBridge_MeterReadingsArePublished(t *testing.T) {
	client := &fakeClient{}
	b := newBridge(client, Config{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	b.StartMeterPublisher(ctx)

	b.RecordMeterReading("meter-1", models.MeterReading{Temp: 24.5, Humidity: 58})

	deadline := time.Now().Add(2 * time.Second)
	for client.publishedCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if client.publishedCount() != 1 {
		t.Fatalf("expected 1 publish, got %d", client.publishedCount())
	}

	client.mu.Lock()
	p := client.published[0]
	client.mu.Unlock()
	if p.topic != "switchbot/meter/meter-1" {
		t.Fatalf("unexpected topic %q", p.topic)
	}
	var msg MeterMessage
	if err := json.Unmarshal(p.payload, &msg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if msg.DeviceID != "meter-1" || msg.Temp != 24.5 || msg.Humidity != 58 || msg.Timestamp.IsZero() {
		t.Fatalf("unexpected message: %+v", msg)
	}
}
