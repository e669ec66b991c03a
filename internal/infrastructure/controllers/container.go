package controllers

import (
	"github.com/spf13/cobra"
	"go.uber.org/dig"

	"github.com/monphare/monphare/internal/domain/entities"
)

// RegisterProviders registers all controller constructors with the DIG
// container, the way the teacher's own container.go registers its
// RunController/LocalController pair.
func RegisterProviders(container *dig.Container) error {
	if err := container.Provide(NewScanController); err != nil {
		return err
	}
	if err := container.Provide(NewGraphController); err != nil {
		return err
	}
	if err := container.Provide(NewInitController); err != nil {
		return err
	}
	if err := container.Provide(NewValidateController); err != nil {
		return err
	}
	if err := container.Provide(NewControllers); err != nil {
		return err
	}
	return nil
}

// NewControllers aggregates every controller into the slice cmd/monphare
// iterates to build Cobra subcommands.
func NewControllers(
	scanController *ScanController,
	graphController *GraphController,
	initController *InitController,
	validateController *ValidateController,
) *[]entities.Controller {
	return &[]entities.Controller{
		scanController,
		graphController,
		initController,
		validateController,
	}
}

// AddFlags adds the flags specific to ctrl's subcommand, dispatching on its
// concrete type the same way cmd/autoupdate/main.go's addSubcommands type-
// switches on *controllers.RunController to call its AddFlags.
func AddFlags(ctrl entities.Controller, cmd *cobra.Command) {
	switch ctrl.(type) {
	case *ScanController:
		bindScanFlags(cmd)
	case *GraphController:
		bindGraphFlags(cmd)
	case *InitController:
		bindInitFlags(cmd)
	}
}
