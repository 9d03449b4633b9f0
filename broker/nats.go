package broker

import (
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

type NATSBroker struct {
	conn *nats.Conn
}

// NewNATSBroker connects to the NATS server at url.
func NewNATSBroker(url string, log *zap.Logger) (*NATSBroker, error) {
	conn, err := nats.Connect(url,
		nats.Name("notes-app"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(10),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn("nats disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Info("nats reconnected", zap.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, err
	}
	return &NATSBroker{conn: conn}, nil
}

func (b *NATSBroker) Publish(subject string, data []byte) error {
	return b.conn.Publish(subject, data)
}

func (b *NATSBroker) Subscribe(subject string, handler Handler) (Subscription, error) {
	sub, err := b.conn.Subscribe(subject, func(m *nats.Msg) {
		handler(Message{Subject: m.Subject, Data: m.Data})
	})
	if err != nil {
		return nil, err
	}
	return sub, nil
}

func (b *NATSBroker) Close() {
	if err := b.conn.Drain(); err != nil {
		b.conn.Close()
	}
}

// Connect returns a NATS broker when url is set and reachable, otherwise an in-memory one.
func Connect(url string, log *zap.Logger) Broker {
	if url == "" {
		log.Info("NATS_URL not set, using in-memory broker")
		return NewMemoryBroker()
	}
	b, err := NewNATSBroker(url, log)
	if err != nil {
		log.Warn("failed to connect to NATS, using in-memory broker", zap.String("url", url), zap.Error(err))
		return NewMemoryBroker()
	}
	log.Info("connected to NATS", zap.String("url", url))
	return b
}
