package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"switchbot_dashboard/internal/logger"
	"switchbot_dashboard/internal/models"
	"switchbot_dashboard/internal/switchbot"

	paho "github.com/eclipse/paho.mqtt.golang"
)

const (
	DefaultPrefix = "switchbot"

	qos            = 1
	publishBuffer  = 100
	disconnectWait = 250 // ms
)

// Config holds MQTT configuration.
type Config struct {
	Broker   string
	Port     int
	Username string
	Password string
	ClientID string
	Prefix   string
}

// CommandHandler executes a command received over MQTT.
type CommandHandler interface {
	SendCommand(ctx context.Context, deviceID string, cmd switchbot.CommandRequest) (models.CommandResult, error)
}

// MeterMessage is published on <prefix>/meter/<deviceId>.
type MeterMessage struct {
	DeviceID  string    `json:"device_id"`
	Temp      float64   `json:"temp"`
	Humidity  float64   `json:"humidity"`
	Timestamp time.Time `json:"timestamp"`
}

type incomingCommand struct {
	deviceID string
	request  switchbot.CommandRequest
}

var errInvalidTopic = errors.New("invalid command topic")

// Bridge relays commands from the broker to the dashboard and publishes
// meter readings back.
type Bridge struct {
	client paho.Client
	config Config
	log    *logger.Logger

	commands chan incomingCommand
	meters   chan MeterMessage
}

// NewBridge creates a bridge; call Connect before use.
func NewBridge(config Config, log *logger.Logger) *Bridge {
	if config.Prefix == "" {
		config.Prefix = DefaultPrefix
	}

	opts := paho.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", config.Broker, config.Port))
	opts.SetClientID(config.ClientID)
	opts.SetUsername(config.Username)
	opts.SetPassword(config.Password)
	opts.SetPingTimeout(60 * time.Second)
	opts.SetKeepAlive(30 * time.Second)
	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(10 * time.Second)
	opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		if log != nil {
			log.Warnw("mqtt_connection_lost", "err", err)
		}
	})
	opts.SetOnConnectHandler(func(paho.Client) {
		if log != nil {
			log.Infow("mqtt_connected", "broker", config.Broker, "port", config.Port)
		}
	})

	return newBridge(paho.NewClient(opts), config, log)
}

func newBridge(client paho.Client, config Config, log *logger.Logger) *Bridge {
	if config.Prefix == "" {
		config.Prefix = DefaultPrefix
	}
	return &Bridge{
		client:   client,
		config:   config,
		log:      log,
		commands: make(chan incomingCommand, publishBuffer),
		meters:   make(chan MeterMessage, publishBuffer),
	}
}

// Connect establishes the broker connection.
func (b *Bridge) Connect() error {
	if token := b.client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}
	return nil
}

// Disconnect closes the broker connection.
func (b *Bridge) Disconnect() {
	b.client.Disconnect(disconnectWait)
}

// CommandTopic is the subscription filter for device commands.
func (b *Bridge) CommandTopic() string {
	return b.config.Prefix + "/command/+"
}

// MeterTopic is where readings for deviceID are published.
func (b *Bridge) MeterTopic(deviceID string) string {
	return b.config.Prefix + "/meter/" + deviceID
}

// SubscribeCommands subscribes to <prefix>/command/+ and dispatches each
// message to handler until ctx is canceled.
func (b *Bridge) SubscribeCommands(ctx context.Context, handler CommandHandler) error {
	topic := b.CommandTopic()
	token := b.client.Subscribe(topic, qos, func(_ paho.Client, msg paho.Message) {
		cmd, err := parseCommandMessage(b.config.Prefix, msg.Topic(), msg.Payload())
		if err != nil {
			b.warn("mqtt_command_dropped", "topic", msg.Topic(), "err", err)
			return
		}
		select {
		case b.commands <- cmd:
		default:
			b.warn("mqtt_command_queue_full", "device_id", cmd.deviceID)
		}
	})
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to subscribe to commands: %w", token.Error())
	}
	if b.log != nil {
		b.log.Infow("mqtt_subscribed", "topic", topic)
	}

	go b.processCommands(ctx, handler)
	return nil
}

// RecordMeterReading queues a reading for publishing. It never blocks the caller.
func (b *Bridge) RecordMeterReading(deviceID string, r models.MeterReading) {
	msg := MeterMessage{DeviceID: deviceID, Temp: r.Temp, Humidity: r.Humidity, Timestamp: time.Now().UTC()}
	select {
	case b.meters <- msg:
	default:
		b.warn("mqtt_meter_queue_full", "device_id", deviceID)
	}
}

// StartMeterPublisher publishes queued readings until ctx is canceled.
func (b *Bridge) StartMeterPublisher(ctx context.Context) {
	go func() {
		for {
			select {
			case msg := <-b.meters:
				if err := b.PublishMeterReading(msg); err != nil {
					b.warn("mqtt_publish_failed", "device_id", msg.DeviceID, "err", err)
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}

// PublishMeterReading publishes one reading synchronously.
func (b *Bridge) PublishMeterReading(msg MeterMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal meter reading: %w", err)
	}
	token := b.client.Publish(b.MeterTopic(msg.DeviceID), qos, false, payload)
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to publish meter reading: %w", token.Error())
	}
	return nil
}

// IsConnected checks if the client is connected.
func (b *Bridge) IsConnected() bool {
	return b.client.IsConnected()
}

func (b *Bridge) processCommands(ctx context.Context, handler CommandHandler) {
	for {
		select {
		case cmd := <-b.commands:
			res, err := handler.SendCommand(ctx, cmd.deviceID, cmd.request)
			switch {
			case err != nil:
				b.warn("mqtt_command_rejected", "device_id", cmd.deviceID, "command", cmd.request.Command, "err", err)
			case !res.Success:
				b.warn("mqtt_command_failed", "device_id", cmd.deviceID, "command", cmd.request.Command, "message", res.Message)
			default:
				if b.log != nil {
					b.log.Infow("mqtt_command_sent", "device_id", cmd.deviceID, "command", cmd.request.Command)
				}
			}
		case <-ctx.Done():
			return
		}
	}
}

func (b *Bridge) warn(event string, kv ...interface{}) {
	if b.log != nil {
		b.log.Warnw(event, kv...)
	}
}

// parseCommandMessage turns <prefix>/command/<deviceId> and a JSON body into
// a command request.
func parseCommandMessage(prefix, topic string, payload []byte) (incomingCommand, error) {
	rest, ok := strings.CutPrefix(topic, prefix+"/command/")
	if !ok || rest == "" || strings.Contains(rest, "/") {
		return incomingCommand{}, fmt.Errorf("%w: %s", errInvalidTopic, topic)
	}

	var req switchbot.CommandRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return incomingCommand{}, fmt.Errorf("failed to parse command payload: %w", err)
	}
	if strings.TrimSpace(req.Command) == "" {
		return incomingCommand{}, errors.New("command is required")
	}
	return incomingCommand{deviceID: rest, request: req}, nil
}
