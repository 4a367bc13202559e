package reporting

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/picogrid/interceptor-simulations/cmd/intercept/controllers"
	"github.com/picogrid/interceptor-simulations/cmd/intercept/core"
	"github.com/picogrid/interceptor-simulations/pkg/logger"
)

// StatsCollector accumulates run statistics tick by tick
type StatsCollector struct {
	mu sync.Mutex

	ticks     int
	reason    controllers.TerminationReason
	records   int
	offered   int // slots that had a target behind them
	primary   int
	decoy     int
	maxDecoys int

	activations map[controllers.CountermeasureClass]int
	activeTicks map[controllers.CountermeasureClass]int
	variants    map[controllers.ReflectorVariant]int
	categories  map[float64]*categoryAccumulator
}

type categoryAccumulator struct {
	samples  int
	major    float64
	minor    float64
	posError float64
}

// NewStatsCollector creates an empty collector
func NewStatsCollector() *StatsCollector {
	return &StatsCollector{
		activations: make(map[controllers.CountermeasureClass]int),
		activeTicks: make(map[controllers.CountermeasureClass]int),
		variants:    make(map[controllers.ReflectorVariant]int),
		categories:  make(map[float64]*categoryAccumulator),
	}
}

// RecordTick folds one frame into the statistics
func (s *StatsCollector) RecordTick(frame controllers.TickFrame) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ticks++
	s.reason = frame.Reason

	for _, t := range frame.Transitions {
		if t.To == controllers.CountermeasureActive {
			s.activations[t.Class]++
			if t.Variant != "" {
				s.variants[t.Variant]++
			}
		}
	}
	for _, st := range frame.Countermeasures {
		if st.Status == controllers.CountermeasureActive {
			s.activeTicks[st.Class]++
		}
	}
	if n := len(frame.Chaff) + len(frame.CornerReflectors); n > s.maxDecoys {
		s.maxDecoys = n
	}

	targets := len(frame.Targets)
	if targets > core.MaxTargets {
		targets = core.MaxTargets
	}

	for _, rec := range frame.Records {
		s.records++
		s.offered += targets
		for i, slot := range rec.Slots {
			if !slot.Detected() {
				continue
			}
			if slot.Class == core.TargetClassPrimary {
				s.primary++
			} else {
				s.decoy++
			}

			scatter, _ := slot.Scatter.Get()
			acc, ok := s.categories[scatter]
			if !ok {
				acc = &categoryAccumulator{}
				s.categories[scatter] = acc
			}
			major, _ := slot.MajorAxis.Get()
			minor, _ := slot.MinorAxis.Get()
			acc.samples++
			acc.major += major
			acc.minor += minor

			if i < len(frame.Targets) {
				x, _ := slot.X.Get()
				y, _ := slot.Y.Get()
				z, _ := slot.Z.Get()
				acc.posError += core.Vector3D{X: x, Y: y, Z: z}.DistanceTo(frame.Targets[i].Position)
			}
		}
	}
}

// DetectionStats summarizes sensor output over the run
type DetectionStats struct {
	Records         int     `json:"records"`
	SlotsOffered    int     `json:"slots_offered"`
	Detections      int     `json:"detections"`
	Misses          int     `json:"misses"`
	MissRate        float64 `json:"miss_rate"`
	PrimaryDetected int     `json:"primary_detections"`
	DecoyDetected   int     `json:"decoy_detections"`
	DecoyShare      float64 `json:"decoy_share"`
}

// CategoryStats summarizes measurements of one sensor error category
type CategoryStats struct {
	ErrorDeg          float64 `json:"error_deg"`
	Samples           int     `json:"samples"`
	MeanMajorAxis     float64 `json:"mean_major_axis"`
	MeanMinorAxis     float64 `json:"mean_minor_axis"`
	MeanPositionError float64 `json:"mean_position_error"`
}

// CountermeasureStats summarizes one countermeasure class
type CountermeasureStats struct {
	Class       controllers.CountermeasureClass `json:"class"`
	Activations int                             `json:"activations"`
	ActiveTicks int                             `json:"active_ticks"`
}

// RunReport is the after-action summary of one run
type RunReport struct {
	Metadata        ReportMetadata         `json:"metadata"`
	Configuration   map[string]interface{} `json:"configuration,omitempty"`
	Outcome         OutcomeSummary         `json:"outcome"`
	Countermeasures []CountermeasureStats  `json:"countermeasures"`
	ReflectorModes  map[string]int         `json:"reflector_variants"`
	Detections      DetectionStats         `json:"detections"`
	Categories      []CategoryStats        `json:"categories"`
	EventCounts     map[string]int         `json:"event_counts"`
}

// ReportMetadata identifies the run
type ReportMetadata struct {
	RunID       string    `json:"run_id"`
	Seed        int64     `json:"seed"`
	GeneratedAt time.Time `json:"generated_at"`
	StartedAt   time.Time `json:"started_at"`
	Duration    string    `json:"duration"`
}

// OutcomeSummary describes how the run ended
type OutcomeSummary struct {
	Ticks             int       `json:"ticks"`
	TerminationReason string    `json:"termination_reason"`
	MissDistances     []float64 `json:"miss_distances"`
	MeanMissDistance  float64   `json:"mean_miss_distance"`
	PeakActiveDecoys  int       `json:"peak_active_decoys"`
}

// ReportConfig configures report generation
type ReportConfig struct {
	OutputDir        string
	Format           string                 // "json", "markdown"
	SimulationConfig map[string]interface{} // Configuration used for the simulation
}

// ReportGenerator builds and saves run reports
type ReportGenerator struct {
	stats  *StatsCollector
	logger *SimulationLogger
	config ReportConfig
}

// NewReportGenerator creates a generator over a run's collector and event log
func NewReportGenerator(stats *StatsCollector, logger *SimulationLogger, config ReportConfig) *ReportGenerator {
	return &ReportGenerator{stats: stats, logger: logger, config: config}
}

// Generate builds the report. missDistances are the final missile to carrier distances.
func (g *ReportGenerator) Generate(seed int64, missDistances []float64) *RunReport {
	summary := g.logger.GetSummary()

	s := g.stats
	s.mu.Lock()
	defer s.mu.Unlock()

	report := &RunReport{
		Metadata: ReportMetadata{
			RunID:       summary.SimulationID,
			Seed:        seed,
			GeneratedAt: time.Now(),
			StartedAt:   summary.StartTime,
			Duration:    summary.Duration.Round(time.Millisecond).String(),
		},
		Configuration: g.config.SimulationConfig,
		Outcome: OutcomeSummary{
			Ticks:             s.ticks,
			TerminationReason: string(s.reason),
			MissDistances:     append([]float64(nil), missDistances...),
			MeanMissDistance:  mean(missDistances),
			PeakActiveDecoys:  s.maxDecoys,
		},
		ReflectorModes: make(map[string]int),
		EventCounts:    summary.EventCounts,
	}

	for _, class := range []controllers.CountermeasureClass{controllers.CountermeasureChaff, controllers.CountermeasureCornerReflector} {
		report.Countermeasures = append(report.Countermeasures, CountermeasureStats{
			Class:       class,
			Activations: s.activations[class],
			ActiveTicks: s.activeTicks[class],
		})
	}
	for v, n := range s.variants {
		report.ReflectorModes[string(v)] = n
	}

	detections := s.primary + s.decoy
	report.Detections = DetectionStats{
		Records:         s.records,
		SlotsOffered:    s.offered,
		Detections:      detections,
		Misses:          s.offered - detections,
		PrimaryDetected: s.primary,
		DecoyDetected:   s.decoy,
	}
	if s.offered > 0 {
		report.Detections.MissRate = float64(s.offered-detections) / float64(s.offered)
	}
	if detections > 0 {
		report.Detections.DecoyShare = float64(s.decoy) / float64(detections)
	}

	keys := make([]float64, 0, len(s.categories))
	for k := range s.categories {
		keys = append(keys, k)
	}
	sort.Float64s(keys)
	for _, k := range keys {
		acc := s.categories[k]
		n := float64(acc.samples)
		report.Categories = append(report.Categories, CategoryStats{
			ErrorDeg:          k,
			Samples:           acc.samples,
			MeanMajorAxis:     acc.major / n,
			MeanMinorAxis:     acc.minor / n,
			MeanPositionError: acc.posError / n,
		})
	}

	return report
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Save writes the report in the configured format and returns its path
func (g *ReportGenerator) Save(report *RunReport) (string, error) {
	if err := os.MkdirAll(g.config.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	id := report.Metadata.RunID
	if len(id) > 8 {
		id = id[:8]
	}
	filename := fmt.Sprintf("report_%s_%s", id, report.Metadata.GeneratedAt.Format("20060102_150405"))

	var (
		path string
		err  error
	)
	switch g.config.Format {
	case "json":
		path = filepath.Join(g.config.OutputDir, filename+".json")
		err = saveJSON(report, path)
	case "markdown":
		path = filepath.Join(g.config.OutputDir, filename+".md")
		err = os.WriteFile(path, []byte(RenderMarkdown(report)), 0644)
	default:
		return "", fmt.Errorf("unsupported format: %s", g.config.Format)
	}
	if err != nil {
		return "", err
	}

	logger.Successf("Report saved to: %s", path)
	return path, nil
}

func saveJSON(report *RunReport, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// RenderMarkdown formats the report as Markdown
func RenderMarkdown(report *RunReport) string {
	var sb strings.Builder

	sb.WriteString("# Engagement Report\n\n")
	sb.WriteString(fmt.Sprintf("**Run ID:** %s\n", report.Metadata.RunID))
	sb.WriteString(fmt.Sprintf("**Seed:** %d\n", report.Metadata.Seed))
	sb.WriteString(fmt.Sprintf("**Generated:** %s\n", report.Metadata.GeneratedAt.Format("2006-01-02 15:04:05")))
	sb.WriteString(fmt.Sprintf("**Duration:** %s\n\n", report.Metadata.Duration))

	sb.WriteString("## Outcome\n\n")
	sb.WriteString(fmt.Sprintf("- **Ticks:** %d\n", report.Outcome.Ticks))
	sb.WriteString(fmt.Sprintf("- **Termination:** %s\n", report.Outcome.TerminationReason))
	sb.WriteString(fmt.Sprintf("- **Mean Miss Distance:** %.3f\n", report.Outcome.MeanMissDistance))
	sb.WriteString(fmt.Sprintf("- **Peak Active Decoys:** %d\n\n", report.Outcome.PeakActiveDecoys))

	if len(report.Outcome.MissDistances) > 0 {
		sb.WriteString("| Missile | Miss Distance |\n|---|---|\n")
		for i, d := range report.Outcome.MissDistances {
			sb.WriteString(fmt.Sprintf("| %d | %.3f |\n", i, d))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Countermeasures\n\n")
	sb.WriteString("| Class | Activations | Active Ticks |\n|---|---|---|\n")
	for _, c := range report.Countermeasures {
		sb.WriteString(fmt.Sprintf("| %s | %d | %d |\n", c.Class, c.Activations, c.ActiveTicks))
	}
	if len(report.ReflectorModes) > 0 {
		modes := make([]string, 0, len(report.ReflectorModes))
		for m := range report.ReflectorModes {
			modes = append(modes, m)
		}
		sort.Strings(modes)
		sb.WriteString("\nCorner reflector variants: ")
		for i, m := range modes {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(fmt.Sprintf("%s=%d", m, report.ReflectorModes[m]))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	d := report.Detections
	sb.WriteString("## Detections\n\n")
	sb.WriteString(fmt.Sprintf("- **Records:** %d\n", d.Records))
	sb.WriteString(fmt.Sprintf("- **Detections:** %d of %d (%.1f%% miss rate)\n", d.Detections, d.SlotsOffered, d.MissRate*100))
	sb.WriteString(fmt.Sprintf("- **Primary:** %d\n", d.PrimaryDetected))
	sb.WriteString(fmt.Sprintf("- **Decoy:** %d (%.1f%% of detections)\n\n", d.DecoyDetected, d.DecoyShare*100))

	if len(report.Categories) > 0 {
		sb.WriteString("## Sensor Error Categories\n\n")
		sb.WriteString("| Error (deg) | Samples | Mean Major Axis | Mean Minor Axis | Mean Position Error |\n")
		sb.WriteString("|---|---|---|---|---|\n")
		for _, c := range report.Categories {
			sb.WriteString(fmt.Sprintf("| %.2f | %d | %.4f | %.4f | %.4f |\n",
				c.ErrorDeg, c.Samples, c.MeanMajorAxis, c.MeanMinorAxis, c.MeanPositionError))
		}
		sb.WriteString("\n")
	}

	if len(report.EventCounts) > 0 {
		types := make([]string, 0, len(report.EventCounts))
		for t := range report.EventCounts {
			types = append(types, t)
		}
		sort.Strings(types)
		sb.WriteString("## Events\n\n")
		for _, t := range types {
			sb.WriteString(fmt.Sprintf("- %s: %d\n", t, report.EventCounts[t]))
		}
	}

	return sb.String()
}
