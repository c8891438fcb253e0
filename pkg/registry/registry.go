// Package registry holds the step executor factories known to the engine and
// validates step configurations against the schemas the factories declare.
package registry

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/aegisflow/aegis/pkg/protocol"
)

type Registry struct {
	logger            *slog.Logger
	executorFactories map[string]protocol.ExecutorFactory
}

func NewRegistry(log *slog.Logger) *Registry {
	return &Registry{
		logger:            log,
		executorFactories: make(map[string]protocol.ExecutorFactory),
	}
}

// RegisterExecutor adds an executor factory, replacing any previous factory
// with the same id.
func (r *Registry) RegisterExecutor(factory protocol.ExecutorFactory) {
	r.executorFactories[factory.ID()] = factory
}

// CreateExecutor validates the configuration against the factory schema and
// instantiates the executor.
func (r *Registry) CreateExecutor(executorID string, config map[string]any) (protocol.StepExecutor, error) {
	factory, ok := r.executorFactories[executorID]
	if !ok {
		return nil, fmt.Errorf("executor '%s' not registered", executorID)
	}

	if config == nil {
		config = map[string]any{}
	}

	err := validateConfig(factory.Schema(), config)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration for executor '%s': %w", executorID, err)
	}

	return factory.Create(config)
}

// ExecutorIDs returns the registered executor identifiers.
func (r *Registry) ExecutorIDs() []string {
	ids := make([]string, 0, len(r.executorFactories))
	for id := range r.executorFactories {
		ids = append(ids, id)
	}

	return ids
}

// HealthCheck reports whether the registry has any executors registered.
func (r *Registry) HealthCheck() (string, bool) {
	if len(r.executorFactories) == 0 {
		return "No step executors registered", false
	}

	return fmt.Sprintf("%d step executors registered", len(r.executorFactories)), true
}

func validateConfig(schema, config map[string]any) error {
	if schema == nil {
		return nil
	}

	schemaLoader := gojsonschema.NewGoLoader(schema)
	dataLoader := gojsonschema.NewGoLoader(config)

	result, err := gojsonschema.Validate(schemaLoader, dataLoader)
	if err != nil {
		return err
	}

	if !result.Valid() {
		messages := make([]string, 0, len(result.Errors()))
		for _, resultError := range result.Errors() {
			messages = append(messages, resultError.String())
		}

		return fmt.Errorf("JSON schema validation failed: %s", strings.Join(messages, "; "))
	}

	return nil
}
