// Package cmd provides common initialization functions for command-line
// applications.
package cmd

import (
	"log/slog"

	"github.com/aegisflow/aegis/pkg/executors/draftcontract"
	"github.com/aegisflow/aegis/pkg/executors/drivefolder"
	"github.com/aegisflow/aegis/pkg/executors/githubrepo"
	"github.com/aegisflow/aegis/pkg/executors/notionboard"
	"github.com/aegisflow/aegis/pkg/executors/slackchannel"
	"github.com/aegisflow/aegis/pkg/executors/stripebilling"
	"github.com/aegisflow/aegis/pkg/executors/welcomeemail"
	"github.com/aegisflow/aegis/pkg/registry"
)

// NewRegistry creates the executor registry with every native step executor
// registered.
func NewRegistry(logger *slog.Logger) *registry.Registry {
	reg := registry.NewRegistry(logger)

	reg.RegisterExecutor(drivefolder.NewExecutorFactory())
	reg.RegisterExecutor(draftcontract.NewExecutorFactory())
	reg.RegisterExecutor(slackchannel.NewExecutorFactory())
	reg.RegisterExecutor(githubrepo.NewExecutorFactory())
	reg.RegisterExecutor(notionboard.NewExecutorFactory())
	reg.RegisterExecutor(welcomeemail.NewExecutorFactory())
	reg.RegisterExecutor(stripebilling.NewExecutorFactory())

	return reg
}
