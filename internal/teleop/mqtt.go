package teleop

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/edaniels/golog"
)

const mqttConnectTimeout = 5 * time.Second

type velocityMsg struct {
	X   float64 `json:"x"`
	Y   float64 `json:"y"`
	Yaw float64 `json:"yaw"`
}

// MQTTSource subscribes to a velocity topic and hands the latest command to
// the navigation mode. Messages are JSON objects with x, y and yaw fields;
// malformed payloads are logged and dropped, keeping the previous command.
type MQTTSource struct {
	log    golog.Logger
	client mqtt.Client

	mu        sync.RWMutex
	x, y, yaw float64
}

// NewMQTTSource connects to the broker and subscribes. It blocks until the
// connection settles or the timeout expires.
func NewMQTTSource(broker, topic, clientID string, log golog.Logger) (*MQTTSource, error) {
	s := &MQTTSource{log: log}

	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true)
	s.client = mqtt.NewClient(opts)

	token := s.client.Connect()
	if !token.WaitTimeout(mqttConnectTimeout) {
		return nil, fmt.Errorf("teleop: connecting to %s timed out", broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("teleop: connecting to %s: %w", broker, err)
	}

	if token := s.client.Subscribe(topic, 0, s.onMessage); token.Wait() && token.Error() != nil {
		s.client.Disconnect(250)
		return nil, fmt.Errorf("teleop: subscribing to %s: %w", topic, token.Error())
	}
	return s, nil
}

func (s *MQTTSource) onMessage(_ mqtt.Client, msg mqtt.Message) {
	var v velocityMsg
	if err := json.Unmarshal(msg.Payload(), &v); err != nil {
		if s.log != nil {
			s.log.Warnf("dropping malformed velocity message on %s: %v", msg.Topic(), err)
		}
		return
	}
	s.mu.Lock()
	s.x, s.y, s.yaw = v.X, v.Y, v.Yaw
	s.mu.Unlock()
}

// Velocity implements robot.VelocitySource.
func (s *MQTTSource) Velocity() (float64, float64, float64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.x, s.y, s.yaw
}

// Close tears the connection down.
func (s *MQTTSource) Close() {
	s.client.Disconnect(250)
}
