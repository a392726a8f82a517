package healthcheck

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/aman-churiwal/tutor-gateway/internal/metrics"
)

// ProbeFunc reports whether a dependency is usable.
type ProbeFunc func(ctx context.Context) error

// Probe is a named dependency check. A failing critical probe makes the
// service unhealthy, any other failing probe only degrades it.
type Probe struct {
	Name     string
	Critical bool
	Check    ProbeFunc
}

// Periodically probes the service's dependencies
type Checker struct {
	mu           sync.RWMutex
	probes       []Probe
	healthStatus map[string]*Status
	interval     time.Duration
	timeout      time.Duration
	maxFailures  int
	stopChan     chan struct{}
	running      bool
}

// Holds health checker configuration
type Config struct {
	Probes      []Probe
	Interval    time.Duration // How often to check (default: 15s)
	Timeout     time.Duration // Per-probe timeout (default: 3s)
	MaxFailures int           // Failures before marking unhealthy (default: 2)
}

func NewChecker(cfg *Config) *Checker {
	if cfg.Interval <= 0 {
		cfg.Interval = 15 * time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 3 * time.Second
	}
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = 2
	}

	checker := &Checker{
		probes:       cfg.Probes,
		healthStatus: make(map[string]*Status),
		interval:     cfg.Interval,
		timeout:      cfg.Timeout,
		maxFailures:  cfg.MaxFailures,
		stopChan:     make(chan struct{}),
	}

	for _, probe := range cfg.Probes {
		checker.healthStatus[probe.Name] = &Status{
			Target:    probe.Name,
			Critical:  probe.Critical,
			IsHealthy: true, // Assume healthy until proven otherwise
			LastCheck: time.Now(),
		}
	}

	return checker
}

// Begins periodic health checks
func (c *Checker) Start() {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return
	}
	c.running = true
	c.mu.Unlock()

	log.Printf("Starting dependency checks for %d probes (interval: %v)", len(c.probes), c.interval)

	c.CheckAll(context.Background())

	go func() {
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				c.CheckAll(context.Background())
			case <-c.stopChan:
				return
			}
		}
	}()
}

// Stops the health checker
func (c *Checker) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		close(c.stopChan)
		c.running = false
		log.Printf("Health checker stopped")
	}
}

// Runs every probe once, concurrently
func (c *Checker) CheckAll(ctx context.Context) {
	var wg sync.WaitGroup

	for _, probe := range c.probes {
		wg.Add(1)
		go func(p Probe) {
			defer wg.Done()
			c.checkProbe(ctx, p)
		}(probe)
	}

	wg.Wait()
}

func (c *Checker) checkProbe(ctx context.Context, probe Probe) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := probe.Check(ctx); err != nil {
		c.recordFailure(probe.Name, err)
		return
	}
	c.recordSuccess(probe.Name)
}

func (c *Checker) recordSuccess(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	status := c.healthStatus[name]
	status.LastCheck = time.Now()
	status.LastSuccess = status.LastCheck
	status.FailureCount = 0
	status.LastError = ""

	if !status.IsHealthy {
		log.Printf("Dependency %s is now healthy", name)
		status.IsHealthy = true
	}
	metrics.DependencyUp.WithLabelValues(name).Set(1)
}

func (c *Checker) recordFailure(name string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	status := c.healthStatus[name]
	status.LastCheck = time.Now()
	status.LastFailure = status.LastCheck
	status.FailureCount++
	status.LastError = err.Error()

	if status.IsHealthy && status.FailureCount >= c.maxFailures {
		log.Printf("Dependency %s is now unhealthy (failures: %d): %v", name, status.FailureCount, err)
		status.IsHealthy = false
	}
	if !status.IsHealthy {
		metrics.DependencyUp.WithLabelValues(name).Set(0)
	}
}

// Return the health status of a specific dependency
func (c *Checker) GetStatus(name string) *Status {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if status, exists := c.healthStatus[name]; exists {
		statusCopy := *status
		return &statusCopy
	}

	return nil
}

// Returns health status of all dependencies
func (c *Checker) GetAllStatus() map[string]*Status {
	c.mu.RLock()
	defer c.mu.RUnlock()

	statusMap := make(map[string]*Status)
	for name, status := range c.healthStatus {
		statusCopy := *status
		statusMap[name] = &statusCopy
	}

	return statusMap
}

// Returns the overall health status
func (c *Checker) OverallHealth() HealthStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()

	overall := Healthy
	for _, status := range c.healthStatus {
		if status.IsHealthy {
			continue
		}
		if status.Critical {
			return Unhealthy
		}
		overall = Degraded
	}

	return overall
}
