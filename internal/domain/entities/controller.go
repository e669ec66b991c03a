package entities

import "github.com/spf13/cobra"

// ControllerBind is the Cobra command metadata a controller exposes, so
// cmd/monphare can register subcommands without knowing their concrete type.
type ControllerBind struct {
	Use   string
	Short string
	Long  string
}

// Controller is implemented by every CLI subcommand handler wired through
// the DIG container.
type Controller interface {
	GetBind() ControllerBind
	Execute(cmd *cobra.Command, args []string) error
}
