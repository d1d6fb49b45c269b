// Package health probes the collaborators of the tag sync service:
// the message broker that carries catalog notifications and the policy
// engine that receives service resources.
package health

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dnswlt/tagsync/internal/config"
)

// Prober reports whether a single dependency is reachable.
// Failures are reported as false, never as errors.
type Prober interface {
	Probe(ctx context.Context) bool
}

// Status is the JSON body of the health endpoint.
type Status struct {
	Kafka  bool `json:"Kafka"`
	Ranger bool `json:"Ranger"`
}

type Checker struct {
	Kafka   Prober
	Ranger  Prober
	Timeout time.Duration
}

// NewChecker creates a Checker with probes configured from props.
func NewChecker(props config.Properties) (*Checker, error) {
	ranger, err := NewRangerProber(props)
	if err != nil {
		return nil, fmt.Errorf("invalid ranger probe configuration: %w", err)
	}
	return &Checker{
		Kafka:   NewKafkaProber(props.List(config.PropKafkaBootstrapServers)),
		Ranger:  ranger,
		Timeout: props.Duration(config.PropHealthTimeout, config.DefaultHealthTimeout),
	}, nil
}

func probe(ctx context.Context, p Prober) bool {
	if p == nil {
		return false
	}
	return p.Probe(ctx)
}

// Check runs both probes concurrently.
func (c *Checker) Check(ctx context.Context) Status {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}
	var st Status
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		st.Kafka = probe(ctx, c.Kafka)
	}()
	go func() {
		defer wg.Done()
		st.Ranger = probe(ctx, c.Ranger)
	}()
	wg.Wait()
	return st
}
