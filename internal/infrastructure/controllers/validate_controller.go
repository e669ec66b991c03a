package controllers

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/monphare/monphare/internal/domain/entities"
	"github.com/monphare/monphare/internal/infrastructure/config"
)

// ValidateController handles the "validate" subcommand: load a
// configuration file and report whether it is well-formed, without running
// a scan.
type ValidateController struct{}

// NewValidateController creates a new ValidateController.
func NewValidateController() *ValidateController {
	return &ValidateController{}
}

// GetBind returns the Cobra command metadata for the validate controller.
func (c *ValidateController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "validate [file]",
		Short: "Validate a monphare configuration file",
		Long: `Load and validate a configuration file without running a scan. Defaults to
auto-discovering the file the same way "scan" does when no path is given.`,
	}
}

// Execute loads and validates the given (or auto-discovered) configuration
// file, printing a confirmation on success.
func (c *ValidateController) Execute(cmd *cobra.Command, args []string) error {
	path := ""
	if len(args) > 0 {
		path = args[0]
	}
	if path == "" {
		found, err := config.FindConfigFile()
		if err != nil {
			return &entities.InputError{Message: "no configuration file found and none was given"}
		}
		path = found
	}

	if _, err := config.Load(path); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s is valid\n", path)
	return nil
}
