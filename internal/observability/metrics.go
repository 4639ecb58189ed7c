package observability

import (
	"sort"
	"strconv"
	"sync"
	"time"
)

// Metrics provides basic in-memory counters.
type Metrics struct {
	mu                sync.Mutex
	requestCount      map[string]int64
	requestLatency    map[string]time.Duration
	errorCount        map[string]int64
	transitionCount   map[string]int64
	notificationCount map[string]int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount:      make(map[string]int64),
		requestLatency:    make(map[string]time.Duration),
		errorCount:        make(map[string]int64),
		transitionCount:   make(map[string]int64),
		notificationCount: make(map[string]int64),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + strconv.Itoa(status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
	m.requestLatency[key] += duration
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// RecordTransition counts committed status changes, keyed "from>to".
func (m *Metrics) RecordTransition(from, to string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transitionCount[from+">"+to]++
}

// RecordNotification counts notification outcomes by kind and result
// ("sent", "skipped" or "failed").
func (m *Metrics) RecordNotification(kind, result string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notificationCount[kind+"|"+result]++
}

// Counter is one named value in a snapshot.
type Counter struct {
	Key   string `json:"key"`
	Value int64  `json:"value"`
}

// Snapshot is a point-in-time copy of every counter, sorted by key.
type Snapshot struct {
	Requests         []Counter `json:"requests"`
	RequestLatencyMs []Counter `json:"requestLatencyMs"`
	Errors           []Counter `json:"errors"`
	Transitions      []Counter `json:"transitions"`
	Notifications    []Counter `json:"notifications"`
}

// Snapshot copies the counters.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	latency := make(map[string]int64, len(m.requestLatency))
	for k, v := range m.requestLatency {
		latency[k] = v.Milliseconds()
	}
	return Snapshot{
		Requests:         counters(m.requestCount),
		RequestLatencyMs: counters(latency),
		Errors:           counters(m.errorCount),
		Transitions:      counters(m.transitionCount),
		Notifications:    counters(m.notificationCount),
	}
}

// Get returns a single counter from a snapshot list, zero when absent.
func Get(list []Counter, key string) int64 {
	for _, c := range list {
		if c.Key == key {
			return c.Value
		}
	}
	return 0
}

func counters(src map[string]int64) []Counter {
	out := make([]Counter, 0, len(src))
	for k, v := range src {
		out = append(out, Counter{Key: k, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
