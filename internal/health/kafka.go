package health

import (
	"context"
	"log"

	"github.com/segmentio/kafka-go"
)

// partitionReader is the subset of *kafka.Conn used by KafkaProber.
type partitionReader interface {
	ReadPartitions(topics ...string) ([]kafka.Partition, error)
	Close() error
}

type dialFunc func(ctx context.Context, addr string) (partitionReader, error)

func dialKafka(ctx context.Context, addr string) (partitionReader, error) {
	conn, err := kafka.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}
	return conn, nil
}

// KafkaProber succeeds if at least one topic can be listed from any of the
// bootstrap servers.
type KafkaProber struct {
	bootstrapServers []string
	dial             dialFunc
}

var _ Prober = (*KafkaProber)(nil)

func NewKafkaProber(bootstrapServers []string) *KafkaProber {
	return &KafkaProber{
		bootstrapServers: bootstrapServers,
		dial:             dialKafka,
	}
}

func (p *KafkaProber) Probe(ctx context.Context) bool {
	for _, addr := range p.bootstrapServers {
		n, err := p.countTopics(ctx, addr)
		if err != nil {
			log.Printf("Could not list Kafka topics from %s: %v", addr, err)
			continue
		}
		if n > 0 {
			return true
		}
	}
	return false
}

func (p *KafkaProber) countTopics(ctx context.Context, addr string) (int, error) {
	conn, err := p.dial(ctx, addr)
	if err != nil {
		return 0, err
	}
	defer conn.Close()

	partitions, err := conn.ReadPartitions()
	if err != nil {
		return 0, err
	}
	topics := make(map[string]bool)
	for _, pt := range partitions {
		topics[pt.Topic] = true
	}
	return len(topics), nil
}
