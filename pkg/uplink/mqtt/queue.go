// Package mqtt mirrors the node's protocol lines over an MQTT broker:
// outbound lines are republished on <prefix><node>/evt and command
// lines received on <prefix><node>/cmd are injected into the dispatch
// loop as if they had arrived on the serial uplink.
package mqtt

import (
	"net/url"
	"strings"
	"sync"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/glog"
)

// Handler is the callback when a message is received.
type Handler func(topic string, payload []byte)

// Queue wraps an MQTT client with prefixed topics and automatic
// resubscription after a reconnect.
type Queue struct {
	Client      paho.Client
	TopicPrefix string

	subsLock sync.RWMutex
	subs     map[string]Handler
}

// ClientOptionsFromURL creates ClientOptions from a broker URL of the
// form mqtt://host:port/topic-prefix.
func ClientOptionsFromURL(serverURL string) (*paho.ClientOptions, string, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return nil, "", err
	}
	var server string
	if u.Scheme == "" || u.Scheme == "mqtt" {
		server = "tcp"
	} else {
		server = u.Scheme
	}
	server += "://" + u.Host

	topicPrefix := strings.TrimPrefix(u.Path, "/")

	opts := paho.NewClientOptions()
	opts.AddBroker(server).
		SetAutoReconnect(true).
		SetCleanSession(true)
	if u.User != nil {
		opts.SetUsername(u.User.Username())
		if pwd, ok := u.User.Password(); ok {
			opts.SetPassword(pwd)
		}
	}
	if clientID := u.Query().Get("client-id"); clientID != "" {
		opts.SetClientID(clientID)
	}
	return opts, topicPrefix, nil
}

// NewQueue creates a Queue from a broker URL.
func NewQueue(brokerURL string) (*Queue, error) {
	opts, topicPrefix, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	q := &Queue{TopicPrefix: topicPrefix, subs: make(map[string]Handler)}
	opts.SetOnConnectHandler(q.onConnect)
	opts.SetConnectionLostHandler(q.onConnectionLost)
	q.Client = paho.NewClient(opts)
	return q, nil
}

// Connect connects the client.
func (q *Queue) Connect() paho.Token {
	return q.Client.Connect()
}

// Close implements io.Closer.
func (q *Queue) Close() error {
	q.Client.Disconnect(0)
	return nil
}

// Sub subscribes a topic below the prefix.
func (q *Queue) Sub(topic string, handler Handler) paho.Token {
	q.subsLock.Lock()
	q.subs[topic] = handler
	q.subsLock.Unlock()
	glog.V(2).Infof("SUB %q", q.TopicPrefix+topic)
	return q.Client.Subscribe(q.TopicPrefix+topic, 0, q.dispatch)
}

// Pub publishes to a topic below the prefix.
func (q *Queue) Pub(topic string, payload []byte) paho.Token {
	return q.Client.Publish(q.TopicPrefix+topic, 0, false, payload)
}

func (q *Queue) onConnect(paho.Client) {
	glog.Info("broker connected")
	q.subsLock.RLock()
	defer q.subsLock.RUnlock()
	for topic := range q.subs {
		q.Client.Subscribe(q.TopicPrefix+topic, 0, q.dispatch)
	}
}

func (q *Queue) onConnectionLost(c paho.Client, err error) {
	glog.Warningf("broker connection lost: %v", err)
}

func (q *Queue) dispatch(c paho.Client, msg paho.Message) {
	topic := msg.Topic()
	if !strings.HasPrefix(topic, q.TopicPrefix) {
		return
	}
	topic = topic[len(q.TopicPrefix):]
	q.subsLock.RLock()
	handler := q.subs[topic]
	q.subsLock.RUnlock()
	if handler != nil {
		handler(topic, msg.Payload())
	}
}
