package main

import (
	"go.uber.org/dig"

	"github.com/monphare/monphare/internal/domain/entities"
	"github.com/monphare/monphare/internal/infrastructure/controllers"
)

func injectControllers() []entities.Controller {
	container := dig.New()

	if err := controllers.RegisterProviders(container); err != nil {
		panic(err)
	}

	var list *[]entities.Controller
	if err := container.Invoke(func(c *[]entities.Controller) {
		list = c
	}); err != nil {
		panic(err)
	}

	return *list
}
