package cmd

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/picogrid/interceptor-simulations/pkg/config"
	"github.com/picogrid/interceptor-simulations/pkg/logger"
	"github.com/picogrid/interceptor-simulations/pkg/utils"
)

var presetCmd = &cobra.Command{
	Use:   "preset",
	Short: "Manage parameter presets",
	Long:  `Manage saved simulation parameter presets used by 'run --preset'`,
}

var presetListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved presets",
	RunE:  listPresets,
}

var presetShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show the parameters of a preset",
	Args:  cobra.ExactArgs(1),
	RunE:  showPreset,
}

var presetAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a new preset",
	RunE:  addPreset,
}

var presetRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Remove a preset",
	RunE:  removePreset,
}

func init() {
	presetCmd.AddCommand(presetListCmd)
	presetCmd.AddCommand(presetShowCmd)
	presetCmd.AddCommand(presetAddCmd)
	presetCmd.AddCommand(presetRemoveCmd)
}

func listPresets(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadPresets()
	if err != nil {
		return fmt.Errorf("failed to load presets: %w", err)
	}

	if len(cfg.Presets) == 0 {
		fmt.Println("No presets configured")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tSIMULATION\tPARAMETERS\tDESCRIPTION")
	_, _ = fmt.Fprintln(w, "----\t----------\t----------\t-----------")

	for _, p := range cfg.Presets {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", p.Name, p.Simulation, len(p.Parameters), p.Description)
	}

	return w.Flush()
}

func showPreset(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadPresets()
	if err != nil {
		return fmt.Errorf("failed to load presets: %w", err)
	}

	preset, ok := cfg.Find(args[0])
	if !ok {
		return fmt.Errorf("preset %s not found", args[0])
	}

	logger.LogSection(preset.Name)
	logger.LogKeyValue("Simulation", preset.Simulation)
	if preset.Description != "" {
		logger.LogKeyValue("Description", preset.Description)
	}

	keys := make([]string, 0, len(preset.Parameters))
	for k := range preset.Parameters {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	table := logger.NewTable("Parameter", "Value")
	for _, k := range keys {
		table.AddRow(k, fmt.Sprintf("%v", preset.Parameters[k]))
	}
	table.Print()
	return nil
}

func addPreset(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadPresets()
	if err != nil {
		return fmt.Errorf("failed to load presets: %w", err)
	}

	var preset config.Preset

	// Prompt for name
	namePrompt := &survey.Input{
		Message: "Preset name:",
	}
	if err := survey.AskOne(namePrompt, &preset.Name, survey.WithValidator(survey.Required)); err != nil {
		return err
	}

	if _, exists := cfg.Find(preset.Name); exists {
		return fmt.Errorf("preset %s already exists", preset.Name)
	}

	descPrompt := &survey.Input{
		Message: "Description (optional):",
	}
	if err := survey.AskOne(descPrompt, &preset.Description); err != nil {
		return err
	}

	preset.Simulation, err = selectSimulation(cmd)
	if err != nil {
		return err
	}

	info, err := utils.FindSimulation(preset.Simulation)
	if err != nil {
		return err
	}

	preset.Parameters, err = utils.PromptForParameters(info.Config.Parameters)
	if err != nil {
		return fmt.Errorf("failed to get parameters: %w", err)
	}

	if err := cfg.Add(preset); err != nil {
		return err
	}

	if err := config.SavePresets(cfg); err != nil {
		return fmt.Errorf("failed to save presets: %w", err)
	}

	logger.Successf("Preset %s added successfully", preset.Name)
	return nil
}

func removePreset(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadPresets()
	if err != nil {
		return fmt.Errorf("failed to load presets: %w", err)
	}

	if len(cfg.Presets) == 0 {
		fmt.Println("No presets to remove")
		return nil
	}

	// Prompt for selection
	var selected string
	prompt := &survey.Select{
		Message: "Select preset to remove:",
		Options: cfg.Names(),
	}
	if err := survey.AskOne(prompt, &selected); err != nil {
		return err
	}

	// Confirm removal
	var confirm bool
	confirmPrompt := &survey.Confirm{
		Message: fmt.Sprintf("Are you sure you want to remove %s?", selected),
		Default: false,
	}
	if err := survey.AskOne(confirmPrompt, &confirm); err != nil {
		return err
	}

	if !confirm {
		fmt.Println("Removal cancelled")
		return nil
	}

	cfg.Remove(selected)

	if err := config.SavePresets(cfg); err != nil {
		return fmt.Errorf("failed to save presets: %w", err)
	}

	logger.Successf("Preset %s removed successfully", selected)
	return nil
}
