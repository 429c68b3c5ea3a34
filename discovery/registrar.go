// Package discovery announces a running unitsvc instance to its peers over
// NATS. Peers learn about instances from register and deregister
// announcements, and can ask every live instance to identify itself by
// publishing a request on SubjPing.
package discovery

import (
	"encoding/json"
	"sync"

	"github.com/go-kit/kit/sd"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

const (
	SubjRegister   = "discovery.register"
	SubjDeregister = "discovery.deregister"
	SubjPing       = "discovery.ping"
)

var _ sd.Registrar = (*Registrar)(nil)

// Instance describes one running service instance.
type Instance struct {
	Service string `json:"service"`
	ID      string `json:"id"`
	Address string `json:"address"`
}

// NewInstance returns an Instance with a fresh id.
func NewInstance(service, address string) Instance {
	return Instance{Service: service, ID: uuid.NewString(), Address: address}
}

// Conn is the part of *nats.Conn the registrar needs.
type Conn interface {
	Publish(subj string, data []byte) error
	Subscribe(subj string, cb nats.MsgHandler) (*nats.Subscription, error)
}

// Registrar registers an Instance over NATS.
type Registrar struct {
	conn     Conn
	instance Instance
	logger   log.Logger

	mu  sync.Mutex
	sub *nats.Subscription
}

func NewRegistrar(conn Conn, instance Instance, logger log.Logger) *Registrar {
	return &Registrar{
		conn:     conn,
		instance: instance,
		logger:   log.With(logger, "service", instance.Service, "instance", instance.ID),
	}
}

// Register announces the instance and starts answering pings. Calling it
// again re-announces without subscribing twice.
func (r *Registrar) Register() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sub == nil {
		sub, err := r.conn.Subscribe(SubjPing, r.handlePing)
		if err != nil {
			_ = level.Error(r.logger).Log("msg", "subscribe failed", "subject", SubjPing, "err", err)
		} else {
			r.sub = sub
		}
	}
	if err := r.publish(SubjRegister); err != nil {
		_ = level.Error(r.logger).Log("msg", "register failed", "err", err)
		return
	}
	_ = level.Info(r.logger).Log("msg", "registered", "address", r.instance.Address)
}

// Deregister announces that the instance is going away and stops answering
// pings.
func (r *Registrar) Deregister() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sub != nil {
		_ = r.sub.Unsubscribe()
		r.sub = nil
	}
	if err := r.publish(SubjDeregister); err != nil {
		_ = level.Error(r.logger).Log("msg", "deregister failed", "err", err)
		return
	}
	_ = level.Info(r.logger).Log("msg", "deregistered")
}

func (r *Registrar) handlePing(m *nats.Msg) {
	if m.Reply == "" {
		return
	}
	data, err := json.Marshal(r.instance)
	if err != nil {
		return
	}
	if err := r.conn.Publish(m.Reply, data); err != nil {
		_ = level.Warn(r.logger).Log("msg", "ping reply failed", "err", err)
	}
}

func (r *Registrar) publish(subj string) error {
	data, err := json.Marshal(r.instance)
	if err != nil {
		return err
	}
	return r.conn.Publish(subj, data)
}
