package discovery

import (
	"encoding/json"
	"fmt"
	"path"
)

type configPayload struct {
	Name        string  `json:"name"`
	ObjectID    string  `json:"object_id,omitempty"`
	UniqueID    string  `json:"unique_id,omitempty"`
	StateTopic  string  `json:"state_topic"`
	Device      *Device `json:"device,omitempty"`
	Icon        string  `json:"icon,omitempty"`
	DeviceClass string  `json:"device_class,omitempty"`
	ExpireAfter int     `json:"expire_after,omitempty"`

	UnitOfMeasurement         string `json:"unit_of_measurement,omitempty"`
	StateClass                string `json:"state_class,omitempty"`
	SuggestedDisplayPrecision *int   `json:"suggested_display_precision,omitempty"`
	ValueTemplate             string `json:"value_template,omitempty"`

	PayloadOn  string `json:"payload_on,omitempty"`
	PayloadOff string `json:"payload_off,omitempty"`
}

// ConfigPayload renders the retained discovery message for e.
func ConfigPayload(e Entity, stateTopic string) ([]byte, error) {
	p := configPayload{
		Name:        e.Name,
		ObjectID:    e.ObjectID,
		UniqueID:    e.UniqueID,
		StateTopic:  stateTopic,
		Device:      e.Device,
		Icon:        e.Icon,
		DeviceClass: e.DeviceClass,
		ExpireAfter: e.ExpireAfter,
	}

	switch e.Component {
	case ComponentSensor:
		if e.Binary != nil {
			return nil, fmt.Errorf("sensor %q carries binary sensor fields", e.Name)
		}
		if s := e.Sensor; s != nil {
			p.UnitOfMeasurement = s.UnitOfMeasurement
			p.StateClass = s.StateClass
			p.SuggestedDisplayPrecision = s.SuggestedDisplayPrecision
			p.ValueTemplate = s.ValueTemplate
		}
	case ComponentBinarySensor:
		if e.Sensor != nil {
			return nil, fmt.Errorf("binary sensor %q carries sensor fields", e.Name)
		}
		if b := e.Binary; b != nil {
			p.PayloadOn = b.PayloadOn
			p.PayloadOff = b.PayloadOff
			p.ValueTemplate = b.ValueTemplate
		}
	default:
		return nil, fmt.Errorf("%w: %q is %q", ErrUnknownComponent, e.Name, e.Component)
	}

	return json.Marshal(p)
}

// ConfigTopic is where Home Assistant looks for the entity's configuration.
func ConfigTopic(discoveryPrefix string, e Entity) string {
	node := "vantron"
	if e.Device != nil {
		node = e.Device.NodeID()
	}
	return path.Join(discoveryPrefix, string(e.Component), node, e.ObjectID, "config")
}

// StateTopic is the collectd write_mqtt topic the entity reads.
func StateTopic(statePrefix string, entry Entry) string {
	node := ""
	if entry.Entity.Device != nil {
		node = entry.Entity.Device.NodeID()
	}
	return path.Join(statePrefix, node, entry.Path)
}

// Message is one discovery publish.
type Message struct {
	Topic      string
	StateTopic string
	Payload    []byte
	Entry      Entry
}

// Plan renders the messages for entries without publishing them.
func Plan(discoveryPrefix, statePrefix string, entries []Entry) ([]Message, error) {
	msgs := make([]Message, 0, len(entries))
	for _, entry := range entries {
		state := StateTopic(statePrefix, entry)
		payload, err := ConfigPayload(entry.Entity, state)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, Message{
			Topic:      ConfigTopic(discoveryPrefix, entry.Entity),
			StateTopic: state,
			Payload:    payload,
			Entry:      entry,
		})
	}
	return msgs, nil
}
