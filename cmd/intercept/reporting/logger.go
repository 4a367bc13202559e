package reporting

import (
	"fmt"
	"io"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/fatih/color"

	"github.com/picogrid/interceptor-simulations/cmd/intercept/controllers"
	"github.com/picogrid/interceptor-simulations/cmd/intercept/core"
	"github.com/picogrid/interceptor-simulations/pkg/logger"
)

// SimulationLogger keeps the engagement event log and run metrics, echoing notable
// events to the console
type SimulationLogger struct {
	simulationID string
	startTime    time.Time
	out          io.Writer
	verbose      bool
	maxEvents    int
	events       []SimulationEvent
	metrics      map[string]Metric
	mu           sync.RWMutex
}

// SimulationEvent represents a logged simulation event
type SimulationEvent struct {
	Timestamp time.Time              `json:"timestamp"`
	TimeStep  int                    `json:"time_step"`
	Type      string                 `json:"type"`
	Severity  string                 `json:"severity"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

// Metric represents a tracked metric
type Metric struct {
	Name        string        `json:"name"`
	Value       float64       `json:"value"`
	Unit        string        `json:"unit"`
	LastUpdated time.Time     `json:"last_updated"`
	History     []MetricPoint `json:"-"`
}

// MetricPoint represents a metric value at a point in time
type MetricPoint struct {
	TimeStep int
	Value    float64
}

// EventType constants
const (
	EventTypeCountermeasure = "countermeasure"
	EventTypeDetection      = "detection"
	EventTypeTermination    = "termination"
	EventTypeSystem         = "system"
)

// Severity constants
const (
	SeverityDebug   = "debug"
	SeverityInfo    = "info"
	SeverityWarning = "warning"
	SeverityError   = "error"
)

// Metric names
const (
	MetricDetections     = "detections"
	MetricDecoyShare     = "decoy_share"
	MetricActiveDecoys   = "active_decoys"
	MetricClosestMissile = "closest_missile"
)

const metricHistoryLimit = 1000

var (
	colorDebug   = color.New(color.FgHiBlack)
	colorInfo    = color.New(color.FgCyan)
	colorWarning = color.New(color.FgYellow)
	colorError   = color.New(color.FgRed)
	colorChaff   = color.New(color.FgMagenta, color.Bold)
	colorCorner  = color.New(color.FgBlue, color.Bold)
	colorSuccess = color.New(color.FgGreen)
)

// NewSimulationLogger creates a logger for one run. A nil out writes to stdout;
// maxEvents <= 0 keeps 10000 events.
func NewSimulationLogger(simulationID string, out io.Writer, verbose bool, maxEvents int) *SimulationLogger {
	if out == nil {
		out = os.Stdout
	}
	if maxEvents <= 0 {
		maxEvents = 10000
	}
	sl := &SimulationLogger{
		simulationID: simulationID,
		startTime:    time.Now(),
		out:          out,
		verbose:      verbose,
		maxEvents:    maxEvents,
		metrics:      make(map[string]Metric),
	}

	sl.logColoredMessage(SeverityInfo, "Simulation Started",
		fmt.Sprintf("ID: %s | Time: %s", simulationID, sl.startTime.Format("15:04:05")))

	return sl
}

// RecordTick logs countermeasure transitions and termination, and updates per-tick metrics
func (sl *SimulationLogger) RecordTick(frame controllers.TickFrame) {
	for _, t := range frame.Transitions {
		sl.LogCountermeasure(frame.TimeStep, t)
	}

	detections, decoys := 0, 0
	for _, rec := range frame.Records {
		for _, slot := range rec.Slots {
			if !slot.Detected() {
				continue
			}
			detections++
			if slot.Class == core.TargetClassDecoy {
				decoys++
			}
		}
	}
	sl.UpdateMetric(frame.TimeStep, MetricDetections, float64(detections), "slots")
	share := 0.0
	if detections > 0 {
		share = float64(decoys) / float64(detections)
	}
	sl.UpdateMetric(frame.TimeStep, MetricDecoyShare, share, "ratio")
	sl.UpdateMetric(frame.TimeStep, MetricActiveDecoys, float64(len(frame.Chaff)+len(frame.CornerReflectors)), "decoys")

	if closest, ok := closestApproach(frame); ok {
		sl.UpdateMetric(frame.TimeStep, MetricClosestMissile, closest, "units")
	}

	if sl.verbose {
		sl.LogDetections(frame.TimeStep, detections, decoys)
	}

	if frame.Terminated {
		sl.LogTermination(frame.TimeStep, frame.Reason)
	}
}

// closestApproach is the smallest distance of any missile to its assigned carrier
func closestApproach(frame controllers.TickFrame) (float64, bool) {
	if len(frame.Missiles) == 0 || len(frame.Carriers) == 0 {
		return 0, false
	}
	best := -1.0
	for i, m := range frame.Missiles {
		d := m.DistanceTo(frame.Carriers[core.AssignedCarrier(i, len(frame.Carriers))])
		if best < 0 || d < best {
			best = d
		}
	}
	return best, true
}

// LogCountermeasure logs a countermeasure spawn or expiry
func (sl *SimulationLogger) LogCountermeasure(timeStep int, t controllers.Transition) {
	verb := "expired"
	if t.To == controllers.CountermeasureActive {
		verb = "deployed"
	}
	details := map[string]interface{}{
		"class":      string(t.Class),
		"to":         string(t.To),
		"decoys":     t.Decoys,
		"occurrence": t.Occurred,
	}
	if t.Variant != "" {
		details["variant"] = string(t.Variant)
	}

	sl.logEvent(SimulationEvent{
		Timestamp: time.Now(),
		TimeStep:  timeStep,
		Type:      EventTypeCountermeasure,
		Severity:  SeverityInfo,
		Message:   fmt.Sprintf("%s %s (%d decoys)", t.Class, verb, t.Decoys),
		Details:   details,
	})

	label := string(t.Class)
	if t.Variant != "" {
		label = fmt.Sprintf("%s/%s", t.Class, t.Variant)
	}
	sl.logColoredMessage(SeverityInfo, "Countermeasure",
		fmt.Sprintf("Tick %d | %s %s | Decoys: %d | Occurrence: %d",
			timeStep, sl.classColor(t.Class).Sprint(label), verb, t.Decoys, t.Occurred))
}

// LogDetections logs the detection totals of one tick
func (sl *SimulationLogger) LogDetections(timeStep, detections, decoys int) {
	sl.logEvent(SimulationEvent{
		Timestamp: time.Now(),
		TimeStep:  timeStep,
		Type:      EventTypeDetection,
		Severity:  SeverityDebug,
		Message:   fmt.Sprintf("%d detections (%d decoy)", detections, decoys),
		Details: map[string]interface{}{
			"detections": detections,
			"decoys":     decoys,
		},
	})

	sl.logColoredMessage(SeverityDebug, "Detection",
		fmt.Sprintf("Tick %d | %d slots filled | %d on decoys", timeStep, detections, decoys))
}

// LogTermination logs the end of the run
func (sl *SimulationLogger) LogTermination(timeStep int, reason controllers.TerminationReason) {
	sl.logEvent(SimulationEvent{
		Timestamp: time.Now(),
		TimeStep:  timeStep,
		Type:      EventTypeTermination,
		Severity:  SeverityInfo,
		Message:   fmt.Sprintf("Run terminated: %s", reason),
		Details: map[string]interface{}{
			"reason": string(reason),
		},
	})

	sl.logColoredMessage(SeverityInfo, "Termination",
		fmt.Sprintf("Tick %d | %s", timeStep, colorSuccess.Sprint(string(reason))))
}

// LogError logs an error event
func (sl *SimulationLogger) LogError(message string, err error, details map[string]interface{}) {
	if details == nil {
		details = make(map[string]interface{})
	}
	details["error"] = err.Error()

	sl.logEvent(SimulationEvent{
		Timestamp: time.Now(),
		Type:      EventTypeSystem,
		Severity:  SeverityError,
		Message:   message,
		Details:   details,
	})

	logger.Errorf("%s: %v", message, err)
}

// UpdateMetric updates a metric value
func (sl *SimulationLogger) UpdateMetric(timeStep int, name string, value float64, unit string) {
	sl.mu.Lock()
	defer sl.mu.Unlock()

	metric, exists := sl.metrics[name]
	if !exists {
		metric = Metric{Name: name, Unit: unit}
	}

	metric.Value = value
	metric.LastUpdated = time.Now()
	metric.History = append(metric.History, MetricPoint{TimeStep: timeStep, Value: value})

	if len(metric.History) > metricHistoryLimit {
		metric.History = metric.History[len(metric.History)-metricHistoryLimit:]
	}

	sl.metrics[name] = metric
}

// GetEvents returns all logged events
func (sl *SimulationLogger) GetEvents() []SimulationEvent {
	sl.mu.RLock()
	defer sl.mu.RUnlock()

	events := make([]SimulationEvent, len(sl.events))
	copy(events, sl.events)
	return events
}

// GetMetrics returns current metrics
func (sl *SimulationLogger) GetMetrics() map[string]Metric {
	sl.mu.RLock()
	defer sl.mu.RUnlock()

	metrics := make(map[string]Metric, len(sl.metrics))
	for k, v := range sl.metrics {
		metrics[k] = v
	}
	return metrics
}

// SimulationSummary represents a summary of the simulation
type SimulationSummary struct {
	SimulationID string
	StartTime    time.Time
	Duration     time.Duration
	TotalEvents  int
	EventCounts  map[string]int
	Metrics      map[string]Metric
}

// GetSummary returns a simulation summary
func (sl *SimulationLogger) GetSummary() SimulationSummary {
	sl.mu.RLock()
	defer sl.mu.RUnlock()

	eventCounts := make(map[string]int)
	for _, event := range sl.events {
		eventCounts[event.Type]++
	}

	metrics := make(map[string]Metric, len(sl.metrics))
	for k, v := range sl.metrics {
		metrics[k] = v
	}

	return SimulationSummary{
		SimulationID: sl.simulationID,
		StartTime:    sl.startTime,
		Duration:     time.Since(sl.startTime),
		TotalEvents:  len(sl.events),
		EventCounts:  eventCounts,
		Metrics:      metrics,
	}
}

func (sl *SimulationLogger) logEvent(event SimulationEvent) {
	sl.mu.Lock()
	defer sl.mu.Unlock()

	sl.events = append(sl.events, event)
	if len(sl.events) > sl.maxEvents {
		sl.events = sl.events[len(sl.events)-sl.maxEvents:]
	}
}

// logColoredMessage writes a console line; debug lines only appear in verbose mode
func (sl *SimulationLogger) logColoredMessage(severity, eventType, message string) {
	if severity == SeverityDebug && !sl.verbose {
		return
	}

	var severityColor *color.Color
	switch severity {
	case SeverityDebug:
		severityColor = colorDebug
	case SeverityWarning:
		severityColor = colorWarning
	case SeverityError:
		severityColor = colorError
	default:
		severityColor = colorInfo
	}

	fmt.Fprintf(sl.out, "[%s] %s %s | %s\n",
		time.Now().Format("15:04:05.000"),
		severityColor.Sprint(fmt.Sprintf("%-8s", severity)),
		eventType,
		message)
}

func (sl *SimulationLogger) classColor(class controllers.CountermeasureClass) *color.Color {
	if class == controllers.CountermeasureChaff {
		return colorChaff
	}
	return colorCorner
}

// PrintSummary prints a formatted summary
func (sl *SimulationLogger) PrintSummary() {
	summary := sl.GetSummary()
	id := summary.SimulationID
	if len(id) > 8 {
		id = id[:8]
	}

	line := "══════════════════════════════════════════════════════════"
	fmt.Fprintln(sl.out, colorSuccess.Sprint("\n"+line))
	fmt.Fprintln(sl.out, colorSuccess.Sprintf("  SIMULATION SUMMARY - %s", id))
	fmt.Fprintln(sl.out, colorSuccess.Sprint(line))

	fmt.Fprintf(sl.out, "\nDuration: %v | Total Events: %d\n", summary.Duration.Round(time.Millisecond), summary.TotalEvents)

	types := make([]string, 0, len(summary.EventCounts))
	for t := range summary.EventCounts {
		types = append(types, t)
	}
	sort.Strings(types)

	fmt.Fprintln(sl.out, "\nEvent Distribution:")
	for _, t := range types {
		fmt.Fprintf(sl.out, "   %-20s: %d\n", t, summary.EventCounts[t])
	}

	if len(summary.Metrics) > 0 {
		names := make([]string, 0, len(summary.Metrics))
		for name := range summary.Metrics {
			names = append(names, name)
		}
		sort.Strings(names)

		fmt.Fprintln(sl.out, "\nFinal Metrics:")
		for _, name := range names {
			m := summary.Metrics[name]
			fmt.Fprintf(sl.out, "   %-20s: %.3f %s\n", name, m.Value, m.Unit)
		}
	}

	fmt.Fprintln(sl.out, colorSuccess.Sprint(line))
}
