// cmd/tools/registry-updater/main.go
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"query-intent-workers/internal/common/errors"
	"query-intent-workers/internal/common/validation"
	"query-intent-workers/pkg/registry"
)

var registryPath string

var rootCmd = &cobra.Command{
	Use:          "registry-updater",
	Short:        "Check and edit the activity registry",
	SilenceUsage: true,
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the registry (the embedded one when --path is empty)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := load()
		if err != nil {
			return err
		}
		problems := checkRegistry(reg)
		for _, p := range problems {
			fmt.Fprintln(cmd.ErrOrStderr(), "  -", p)
		}
		if len(problems) > 0 {
			return fmt.Errorf("registry validation failed with %d problem(s)", len(problems))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Registry validation passed. Found %d activities.\n", len(reg.Activities))
		return nil
	},
}

var (
	updateID    string
	updateField string
	updateValue string
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update one field of an activity in the registry file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if registryPath == "" {
			return fmt.Errorf("--path is required for update")
		}
		reg, err := registry.LoadRegistry(registryPath)
		if err != nil {
			return fmt.Errorf("failed to load registry: %w", err)
		}
		if err := updateActivity(reg, updateID, updateField, updateValue); err != nil {
			return err
		}
		reg.LastUpdated = time.Now().Format("2006-01-02")
		if err := saveRegistry(reg, registryPath); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated activity %s, field %s to %s\n", updateID, updateField, updateValue)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&registryPath, "path", "", "path to a registry JSON file")

	updateCmd.Flags().StringVar(&updateID, "id", "", "activity ID, e.g. query.intent.build")
	updateCmd.Flags().StringVar(&updateField, "field", "", "status, version, description, timeout or retries")
	updateCmd.Flags().StringVar(&updateValue, "value", "", "new value")
	_ = updateCmd.MarkFlagRequired("id")
	_ = updateCmd.MarkFlagRequired("field")
	_ = updateCmd.MarkFlagRequired("value")

	rootCmd.AddCommand(validateCmd, updateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func load() (*registry.ActivityRegistry, error) {
	if registryPath == "" {
		return registry.Default()
	}
	return registry.LoadRegistry(registryPath)
}

// checkRegistry reports every problem found rather than stopping at the
// first one.
func checkRegistry(reg *registry.ActivityRegistry) []string {
	var problems []string
	if len(reg.Activities) == 0 {
		return append(problems, "registry contains no activities")
	}

	for name, def := range reg.Definitions {
		if _, err := validation.NewValidator(def); err != nil {
			problems = append(problems, fmt.Sprintf("definition %s: %v", name, err))
		}
	}

	ids := make(map[string]bool)
	taskTypes := make(map[string]bool)
	for _, a := range reg.Activities {
		if a.ID == "" {
			problems = append(problems, "activity missing required field: id")
			continue
		}
		if ids[a.ID] {
			problems = append(problems, "duplicate activity ID: "+a.ID)
		}
		ids[a.ID] = true

		if err := validation.ValidateActivityNaming(a.ID); err != nil {
			problems = append(problems, fmt.Sprintf("%s: %v", a.ID, err))
		}
		if a.TaskType == "" {
			problems = append(problems, a.ID+": missing taskType")
		} else if taskTypes[a.TaskType] {
			problems = append(problems, "duplicate taskType: "+a.TaskType)
		}
		taskTypes[a.TaskType] = true

		if len(a.InputSchema) > 0 {
			if _, err := validation.NewValidator(a.InputSchema); err != nil {
				problems = append(problems, fmt.Sprintf("%s: inputSchema: %v", a.ID, err))
			}
		}
		if len(a.OutputSchema) > 0 {
			if _, err := validation.NewValidator(a.OutputSchema); err != nil {
				problems = append(problems, fmt.Sprintf("%s: outputSchema: %v", a.ID, err))
			}
		}
		if a.Timeout != "" {
			if _, err := time.ParseDuration(a.Timeout); err != nil {
				problems = append(problems, fmt.Sprintf("%s: timeout %q: %v", a.ID, a.Timeout, err))
			}
		}
		for _, code := range a.ErrorCodes {
			if _, ok := errors.BPMNErrorMapping[errors.ErrorCode(code)]; !ok {
				problems = append(problems, fmt.Sprintf("%s: unknown error code %s", a.ID, code))
			}
		}
	}

	return problems
}

func updateActivity(reg *registry.ActivityRegistry, id, field, value string) error {
	for i := range reg.Activities {
		a := &reg.Activities[i]
		if a.ID != id {
			continue
		}
		switch field {
		case "status":
			a.ImplementationStatus = value
		case "version":
			a.Version = value
		case "description":
			a.Description = value
		case "timeout":
			if _, err := time.ParseDuration(value); err != nil {
				return fmt.Errorf("invalid timeout value: %w", err)
			}
			a.Timeout = value
		case "retries":
			retries, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("invalid retries value: %w", err)
			}
			a.Retries = retries
		default:
			return fmt.Errorf("unknown field: %s", field)
		}
		return nil
	}
	return fmt.Errorf("activity with ID %s not found", id)
}

func saveRegistry(reg *registry.ActivityRegistry, path string) error {
	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}
	return nil
}
