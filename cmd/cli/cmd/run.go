package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/picogrid/interceptor-simulations/pkg/config"
	"github.com/picogrid/interceptor-simulations/pkg/logger"
	"github.com/picogrid/interceptor-simulations/pkg/simulation"
	"github.com/picogrid/interceptor-simulations/pkg/utils"

	// Import simulations to register them
	_ "github.com/picogrid/interceptor-simulations/cmd/intercept/simulation"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a simulation",
	Long: `Run a simulation interactively or with specified parameters.

Parameters come from a --preset, overlaid by a --params file, then
INTERCEPTOR_<NAME> environment variables and the simulation's defaults. Prompting is skipped when
a params file or preset is given, or when INTERCEPTOR_SKIP_PROMPTS=true.`,
	RunE: runSimulation,
}

func init() {
	runCmd.Flags().StringP("simulation", "s", "", "simulation name to run")
	runCmd.Flags().StringP("params", "p", "", "parameters file (YAML)")
	runCmd.Flags().String("preset", "", "saved parameter preset to run with")
}

func runSimulation(cmd *cobra.Command, _ []string) error {
	simName, err := selectSimulation(cmd)
	if err != nil {
		return fmt.Errorf("failed to select simulation: %w", err)
	}

	if !simulation.DefaultRegistry.Has(simName) {
		return fmt.Errorf("simulation %s is not registered (available: %s)",
			simName, strings.Join(simulation.DefaultRegistry.List(), ", "))
	}
	sim, err := simulation.DefaultRegistry.Get(simName)
	if err != nil {
		return fmt.Errorf("failed to get simulation: %w", err)
	}

	info, err := utils.FindSimulation(simName)
	if err != nil {
		return err
	}

	params, err := resolveParameters(cmd, info.Config.Parameters)
	if err != nil {
		return fmt.Errorf("failed to get parameters: %w", err)
	}

	if scenario := viper.GetString("scenario"); scenario != "" {
		params["config_file"] = scenario
	}
	if output := viper.GetString("output"); output != "" {
		params["output_dir"] = output
	}

	if err := sim.Configure(params); err != nil {
		return fmt.Errorf("failed to configure simulation: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case <-sigChan:
		case <-ctx.Done():
			return
		}
		logger.Warn("\nReceived interrupt signal, stopping simulation...")
		if err := sim.Stop(); err != nil {
			logger.Errorf("Failed to stop simulation: %v", err)
		}
		cancel()
	}()

	logger.LogSection(fmt.Sprintf("Starting %s", sim.Name()))
	err = sim.Run(ctx)
	if ctx.Err() != nil {
		logger.Warn("Simulation stopped before completion")
		return nil
	}
	if err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}

	logger.Success("Simulation completed successfully")
	return nil
}

// resolveParameters gathers parameters from a params file, a preset, or the user
func resolveParameters(cmd *cobra.Command, descriptors []simulation.Parameter) (map[string]interface{}, error) {
	paramsFile, _ := cmd.Flags().GetString("params")
	presetName, _ := cmd.Flags().GetString("preset")

	var base map[string]interface{}

	if presetName != "" {
		presets, err := config.LoadPresets()
		if err != nil {
			return nil, fmt.Errorf("failed to load presets: %w", err)
		}
		preset, ok := presets.Find(presetName)
		if !ok {
			return nil, fmt.Errorf("preset %s not found", presetName)
		}
		logger.Infof("Using preset %s", preset.Name)
		base = make(map[string]interface{}, len(preset.Parameters))
		for k, v := range preset.Parameters {
			base[k] = v
		}
	}

	if paramsFile != "" {
		fileParams, err := loadParamsFile(paramsFile)
		if err != nil {
			return nil, err
		}
		if base == nil {
			base = fileParams
		} else {
			for k, v := range fileParams {
				base[k] = v
			}
		}
	}

	if base != nil || utils.SkipPrompts() {
		return utils.DefaultParameters(descriptors, base)
	}
	return utils.PromptForParameters(descriptors)
}

func loadParamsFile(path string) (map[string]interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read parameters file: %w", err)
	}

	params := make(map[string]interface{})
	if err := yaml.Unmarshal(data, &params); err != nil {
		return nil, fmt.Errorf("failed to parse parameters file: %w", err)
	}
	return params, nil
}

func selectSimulation(cmd *cobra.Command) (string, error) {
	// Check if simulation is specified via flag
	simName, _ := cmd.Flags().GetString("simulation")
	if simName != "" {
		return simName, nil
	}

	// Discover available simulations
	simInfos, err := utils.DiscoverSimulations()
	if err != nil {
		return "", err
	}

	if len(simInfos) == 0 {
		return "", fmt.Errorf("no simulations found")
	}

	// A single simulation needs no menu
	if len(simInfos) == 1 {
		return simInfos[0].Config.Name, nil
	}

	// Build options for selection
	options := make([]string, len(simInfos))
	descriptions := make(map[string]string)

	for i, info := range simInfos {
		options[i] = info.Config.Name
		descriptions[info.Config.Name] = info.Config.Description
	}

	// Interactive selection
	var selected string
	prompt := &survey.Select{
		Message: "Select simulation:",
		Options: options,
		Description: func(value string, index int) string {
			return descriptions[value]
		},
	}

	if err := survey.AskOne(prompt, &selected); err != nil {
		return "", err
	}

	return selected, nil
}
