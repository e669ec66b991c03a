package main

import (
	"errors"
	"os"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/monphare/monphare/internal/domain/entities"
	"github.com/monphare/monphare/internal/infrastructure/controllers"
)

func buildRootCommand(ctrls []entities.Controller) *cobra.Command {
	//nolint:exhaustruct // Minimal Command initialization with required fields only
	root := &cobra.Command{
		Use:   "monphare",
		Short: "Terraform and OpenTofu dependency and drift auditor",
		Long: `monphare inventories the module and provider versions pinned across a set of
Terraform/OpenTofu repositories, flags risky version constraints and
deprecated or disallowed dependencies, and reports the result as a
policy-scored pass/warn/fail outcome.`,
	}

	for _, ctrl := range ctrls {
		bind := ctrl.GetBind()
		current := ctrl
		//nolint:exhaustruct // Minimal Command initialization with required fields only
		subCmd := &cobra.Command{
			Use:   bind.Use,
			Short: bind.Short,
			Long:  bind.Long,
			RunE: func(command *cobra.Command, args []string) error {
				return current.Execute(command, args)
			},
			SilenceUsage:  true,
			SilenceErrors: true,
		}
		controllers.AddFlags(current, subCmd)
		root.AddCommand(subCmd)
	}

	return root
}

func main() {
	//nolint:exhaustruct // Minimal TextFormatter initialization with required fields only
	logger.SetFormatter(&logger.TextFormatter{
		ForceColors:   true,
		FullTimestamp: true,
	})
	if os.Getenv("DEBUG") == "true" {
		logger.SetLevel(logger.DebugLevel)
	}

	root := buildRootCommand(injectControllers())

	if err := root.Execute(); err != nil {
		var exitErr *entities.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(int(exitErr.Code))
		}

		var inputErr *entities.InputError
		if errors.As(err, &inputErr) {
			logger.Errorf("%s", err)
			os.Exit(1)
		}

		logger.Errorf("monphare: %s", err)
		os.Exit(1)
	}
}
