package simulation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/picogrid/interceptor-simulations/cmd/intercept/config"
	"github.com/picogrid/interceptor-simulations/cmd/intercept/controllers"
	"github.com/picogrid/interceptor-simulations/cmd/intercept/reporting"
	"github.com/picogrid/interceptor-simulations/pkg/logger"
	"github.com/picogrid/interceptor-simulations/pkg/simulation"
)

// Name is the registry name of the simulation
const Name = "Interceptor Decoy Engagement"

// ErrNotConfigured is returned by Run before a successful Configure
var ErrNotConfigured = errors.New("simulation not configured")

// InterceptSimulation runs one interceptor vs carrier engagement per Run
type InterceptSimulation struct {
	// Configuration
	config *config.SimulationConfig

	// Controllers
	engagement *controllers.EngagementController

	// Reporting
	recorder  *reporting.MeasurementRecorder
	stats     *reporting.StatsCollector
	simLogger *reporting.SimulationLogger
	stream    *reporting.FrameStream
	console   io.Writer

	result *Result

	// Synchronization
	mu       sync.RWMutex
	stopChan chan struct{}
	stopOnce sync.Once
}

// Result describes a finished run and the files it produced
type Result struct {
	RunID            string
	Seed             int64
	Ticks            int
	Reason           controllers.TerminationReason
	MissDistances    []float64
	MeasurementsPath string
	CarriersPath     string
	ReportPath       string
	Report           *reporting.RunReport
}

// NewInterceptSimulation creates a new instance of the interceptor simulation
func NewInterceptSimulation() simulation.Simulation {
	return newInterceptSimulation(os.Stdout)
}

func newInterceptSimulation(console io.Writer) *InterceptSimulation {
	return &InterceptSimulation{
		console:  console,
		stopChan: make(chan struct{}),
	}
}

// Name returns the simulation name
func (s *InterceptSimulation) Name() string {
	return Name
}

// Description returns the simulation description
func (s *InterceptSimulation) Description() string {
	return "Interceptor missiles with noisy five-sensor suites home on a carrier fleet deploying chaff and corner reflectors"
}

// Configure loads the scenario file named by the "config_file" parameter (or the default
// scenario) and applies the remaining parameters on top of it
func (s *InterceptSimulation) Configure(params map[string]interface{}) error {
	logger.Info("Configuring interceptor simulation...")

	path, _ := params["config_file"].(string)
	cfg, err := config.LoadConfigWithOverrides(path, params)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger.SetLevel(logger.ParseLevel(cfg.Logging.ConsoleLevel))

	s.mu.Lock()
	s.config = cfg
	s.mu.Unlock()

	logger.Infof("Configuration: %d carriers vs %d missiles, max %d steps",
		cfg.Fleet.CarrierCount, cfg.Swarm.MissileCount, cfg.Swarm.MaxSteps)
	logger.Debug(cfg.String())

	return nil
}

// Run executes the engagement until termination, cancellation or Stop, then writes
// the exports and the run report
func (s *InterceptSimulation) Run(ctx context.Context) error {
	s.mu.RLock()
	cfg := s.config
	s.mu.RUnlock()
	if cfg == nil {
		return ErrNotConfigured
	}

	runID := uuid.NewString()
	seed := cfg.Simulation.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	logger.Infof("Starting %s simulation (run %s, seed %d)", s.Name(), runID[:8], seed)

	if err := s.initialize(runID, seed, cfg); err != nil {
		return fmt.Errorf("failed to initialize simulation: %w", err)
	}

	if s.stream != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := s.stream.Shutdown(shutdownCtx); err != nil {
				logger.Warnf("Failed to shut down frame stream: %v", err)
			}
		}()
	}

	loopErr := s.runSimulationLoop(ctx, cfg)

	if err := s.finish(runID, seed, cfg); err != nil {
		return err
	}
	return loopErr
}

// initialize sets up the engagement and its sinks
func (s *InterceptSimulation) initialize(runID string, seed int64, cfg *config.SimulationConfig) error {
	logger.Debug("Initializing engagement controller and sinks...")

	s.recorder = reporting.NewMeasurementRecorder()
	s.stats = reporting.NewStatsCollector()
	s.simLogger = reporting.NewSimulationLogger(runID, s.console, cfg.Logging.VerboseLogging, cfg.Logging.EventBufferSize)
	s.engagement = controllers.NewEngagementController(s.recorder, s.stats, s.simLogger)

	if cfg.Stream.Enabled {
		s.stream = reporting.NewFrameStream(runID)
		if _, err := s.stream.Start(cfg.Stream.Address); err != nil {
			return fmt.Errorf("failed to start frame stream: %w", err)
		}
		s.engagement.AddSink(s.stream)
	}

	if err := s.engagement.Init(cfg.EngineConfig(seed)); err != nil {
		return fmt.Errorf("failed to initialize engagement: %w", err)
	}
	return nil
}

// runSimulationLoop steps the engagement, paced by the tick interval when one is set
func (s *InterceptSimulation) runSimulationLoop(ctx context.Context, cfg *config.SimulationConfig) error {
	var tick <-chan time.Time
	if cfg.Simulation.TickInterval > 0 {
		ticker := time.NewTicker(cfg.Simulation.TickInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	bar := logger.NewProgressBar(cfg.Swarm.MaxSteps, "Engagement")
	defer bar.Finish()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Simulation cancelled by context")
			return ctx.Err()
		case <-s.stopChan:
			logger.Info("Simulation stopped by user")
			return nil
		default:
		}

		if tick != nil {
			select {
			case <-ctx.Done():
				logger.Info("Simulation cancelled by context")
				return ctx.Err()
			case <-s.stopChan:
				logger.Info("Simulation stopped by user")
				return nil
			case <-tick:
			}
		}

		done := s.engagement.Step()
		bar.Update(s.engagement.Tick())
		if done {
			return nil
		}
	}
}

// finish writes exports and the report for whatever ran
func (s *InterceptSimulation) finish(runID string, seed int64, cfg *config.SimulationConfig) error {
	_, reason := s.engagement.Terminated()
	result := &Result{
		RunID:         runID,
		Seed:          seed,
		Ticks:         s.engagement.Tick(),
		Reason:        reason,
		MissDistances: s.engagement.MissDistances(),
	}

	s.simLogger.PrintSummary()

	id := runID[:8]
	if cfg.Recording.ExportMeasurements {
		result.MeasurementsPath = filepath.Join(cfg.Recording.OutputDir, fmt.Sprintf("measurement_data_%s.csv", id))
		if err := s.recorder.ExportMeasurementsCSV(result.MeasurementsPath); err != nil {
			return fmt.Errorf("failed to export measurements: %w", err)
		}
		logger.Successf("Measurements saved to: %s", result.MeasurementsPath)
	}

	if cfg.Recording.ExportCarriers {
		result.CarriersPath = filepath.Join(cfg.Recording.OutputDir, fmt.Sprintf("carrier_locations_%s.csv", id))
		if err := s.recorder.ExportCarriersCSV(result.CarriersPath); err != nil {
			return fmt.Errorf("failed to export carrier locations: %w", err)
		}
		logger.Successf("Carrier locations saved to: %s", result.CarriersPath)
	}

	generator := reporting.NewReportGenerator(s.stats, s.simLogger, reporting.ReportConfig{
		OutputDir:        cfg.Recording.OutputDir,
		Format:           cfg.Recording.ReportFormat,
		SimulationConfig: configSummary(cfg),
	})
	result.Report = generator.Generate(seed, result.MissDistances)

	if cfg.Recording.EnableReport {
		path, err := generator.Save(result.Report)
		if err != nil {
			s.simLogger.LogError("Failed to save run report", err, nil)
			return fmt.Errorf("failed to save report: %w", err)
		}
		result.ReportPath = path
	}

	s.mu.Lock()
	s.result = result
	s.mu.Unlock()

	logger.Infof("Simulation completed after %d ticks: %s", result.Ticks, displayReason(reason))
	return nil
}

func displayReason(reason controllers.TerminationReason) string {
	if reason == controllers.TerminationNone {
		return "interrupted"
	}
	return string(reason)
}

// configSummary is the configuration echoed into the run report
func configSummary(cfg *config.SimulationConfig) map[string]interface{} {
	return map[string]interface{}{
		"num_carriers":                     cfg.Fleet.CarrierCount,
		"num_missiles":                     cfg.Swarm.MissileCount,
		"carrier_speed":                    cfg.Fleet.CarrierSpeed,
		"missile_speed":                    cfg.Swarm.MissileSpeed,
		"max_steps":                        cfg.Swarm.MaxSteps,
		"chaff_max_occurrences":            cfg.Countermeasures.Chaff.MaxOccurrences,
		"corner_reflector_max_occurrences": cfg.Countermeasures.CornerReflector.MaxOccurrences,
		"detection_probability":            cfg.Sensor.DetectionProbability,
		"sensor_categories":                cfg.Sensor.Categories,
	}
}

// Result returns the outcome of the last completed Run, or nil
func (s *InterceptSimulation) Result() *Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.result
}

// Stop gracefully shuts down the simulation
func (s *InterceptSimulation) Stop() error {
	s.stopOnce.Do(func() { close(s.stopChan) })
	return nil
}

// init registers the simulation
func init() {
	err := simulation.DefaultRegistry.Register(Name, NewInterceptSimulation)
	if err != nil {
		logger.Errorf("Failed to register interceptor simulation: %v", err)
		return
	}
}
