package devicestatus

import (
	"context"
	"sync"
	"time"
)

// BatteryPollInterval is how often the battery source is sampled.
const BatteryPollInterval = 30 * time.Second

// NetworkSource delivers platform network readings. Events fires whenever
// the active network changes; Capabilities reads the current state.
type NetworkSource interface {
	Capabilities() Capabilities
	Events() <-chan struct{}
}

// BatterySource reads the current battery sample.
type BatterySource interface {
	Sample() BatteryState
}

// LightSource delivers ambient light readings in lux.
type LightSource interface {
	Events() <-chan float64
}

// Monitor tracks the latest network, battery and light samples. Start spawns
// one goroutine per source; cancelling the context deregisters everything.
type Monitor struct {
	network NetworkSource
	battery BatterySource
	light   LightSource
	poll    time.Duration

	mu      sync.Mutex
	current Report
}

// NewMonitor builds a monitor over the given sources. Any source may be nil,
// in which case its reading stays at the zero value.
func NewMonitor(network NetworkSource, battery BatterySource, light LightSource) *Monitor {
	m := &Monitor{
		network: network,
		battery: battery,
		light:   light,
		poll:    BatteryPollInterval,
	}
	m.current.Network.Type = NetworkNone
	m.current.Light = LightDark
	return m
}

// SetPollInterval overrides the battery poll interval. Must be called before
// Start.
func (m *Monitor) SetPollInterval(d time.Duration) { m.poll = d }

// Report returns the latest sample of every source.
func (m *Monitor) Report() Report {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Start begins observing. It takes an initial reading of each source
// synchronously, so Report is meaningful as soon as Start returns.
func (m *Monitor) Start(ctx context.Context) {
	if m.network != nil {
		m.setNetwork(ClassifyNetwork(m.network.Capabilities()))
		go m.runNetwork(ctx)
	}
	if m.battery != nil {
		m.setBattery(m.battery.Sample())
		go m.runBattery(ctx)
	}
	if m.light != nil {
		go m.runLight(ctx)
	}
}

func (m *Monitor) runNetwork(ctx context.Context) {
	events := m.network.Events()
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-events:
			if !ok {
				return
			}
			m.setNetwork(ClassifyNetwork(m.network.Capabilities()))
		}
	}
}

func (m *Monitor) runBattery(ctx context.Context) {
	ticker := time.NewTicker(m.poll)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.setBattery(m.battery.Sample())
		}
	}
}

func (m *Monitor) runLight(ctx context.Context) {
	events := m.light.Events()
	for {
		select {
		case <-ctx.Done():
			return
		case lux, ok := <-events:
			if !ok {
				return
			}
			m.setLight(ClassifyLight(lux))
		}
	}
}

func (m *Monitor) setNetwork(s NetworkState) {
	m.mu.Lock()
	m.current.Network = s
	m.mu.Unlock()
}

func (m *Monitor) setBattery(s BatteryState) {
	m.mu.Lock()
	m.current.Battery = s
	m.mu.Unlock()
}

func (m *Monitor) setLight(l LightLevel) {
	m.mu.Lock()
	m.current.Light = l
	m.mu.Unlock()
}
