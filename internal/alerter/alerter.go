// Package alerter periodically evaluates host resource samples against
// configured threshold rules and triggers notifications when they are
// violated.
package alerter

import (
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"TunnelSpectra/internal/config"
	"TunnelSpectra/internal/sysmon"
)

// AlertSink receives consolidated alert notifications.
type AlertSink interface {
	NotifySystemAlert(alertType, details, serverName string)
}

// Alerter samples host resources on a fixed interval and checks each sample
// against the configured rules.
type Alerter struct {
	sampler       *sysmon.Sampler
	rules         []config.AlerterRule
	sink          AlertSink
	serverName    string
	checkInterval time.Duration
	stopChan      chan struct{}
	wg            sync.WaitGroup
}

// NewAlerter creates a new Alerter instance.
func NewAlerter(cfg *config.AlerterConfig, sampler *sysmon.Sampler, sink AlertSink, serverName string) (*Alerter, error) {
	interval, err := time.ParseDuration(cfg.CheckInterval)
	if err != nil {
		return nil, fmt.Errorf("invalid check_interval for alerter: %w", err)
	}

	return &Alerter{
		sampler:       sampler,
		rules:         cfg.Rules,
		sink:          sink,
		serverName:    serverName,
		checkInterval: interval,
		stopChan:      make(chan struct{}),
	}, nil
}

// Start begins the periodic evaluation of alert rules.
func (a *Alerter) Start() {
	log.Println("Alerter started")

	a.wg.Add(1)
	defer a.wg.Done()

	ticker := time.NewTicker(a.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.evaluate()
		case <-a.stopChan:
			return
		}
	}
}

// Stop gracefully stops the alerter's evaluation loop.
func (a *Alerter) Stop() {
	log.Println("Stopping Alerter...")
	close(a.stopChan)
	a.wg.Wait()
}

// evaluate takes one sample and checks every rule against it. Violations are
// consolidated into a single notification.
func (a *Alerter) evaluate() {
	sample, err := a.sampler.Sample()
	if err != nil {
		log.Printf("Alerter skipping check, failed to sample host: %v", err)
		return
	}

	messages := Evaluate(a.rules, sample)
	if len(messages) == 0 {
		return
	}

	log.Printf("Alerter evaluation completed. %d alert(s) triggered.", len(messages))
	a.sink.NotifySystemAlert(
		fmt.Sprintf("%d threshold(s) exceeded", len(messages)),
		strings.Join(messages, "\n"),
		a.serverName,
	)
}

// Evaluate returns one message per rule the sample violates. Unknown metric
// names are logged and skipped.
func Evaluate(rules []config.AlerterRule, sample *sysmon.Sample) []string {
	var messages []string
	for _, rule := range rules {
		var value float64
		switch rule.Metric {
		case "cpu_percent":
			value = sample.CPUPercent
		case "memory_percent":
			value = sample.MemoryPercent
		case "disk_percent":
			value = sample.DiskPercent
		default:
			log.Printf("Unknown alerter metric %q, skipping rule", rule.Metric)
			continue
		}
		if value > rule.Threshold {
			messages = append(messages, fmt.Sprintf("%s at %.1f%% exceeds threshold %.1f%%", rule.Metric, value, rule.Threshold))
		}
	}
	return messages
}
