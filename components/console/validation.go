package console

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ConfigValidator checks a widget placement against its definition and
// returns the instance with its configuration normalized.
type ConfigValidator interface {
	ValidateInstance(def WidgetDefinition, instance WidgetInstance) (WidgetInstance, error)
}

// WidgetInstanceError reports why a layout entry was rejected.
type WidgetInstanceError struct {
	InstanceID string
	Definition string
	Err        error
}

func (e *WidgetInstanceError) Error() string {
	return fmt.Sprintf("console: widget %s (%s): %v", e.InstanceID, e.Definition, e.Err)
}

func (e *WidgetInstanceError) Unwrap() error { return e.Err }

var knownAreas = map[string]struct{}{AreaMain: {}, AreaSidebar: {}, AreaFooter: {}}

// JSONSchemaValidator validates layout entries: area, scope and roles must be
// known, and the configuration must satisfy the definition schema once schema
// defaults are applied. Compiled schemas are kept per definition code.
type JSONSchemaValidator struct {
	mu       sync.RWMutex
	compiled map[string]*jsonschema.Schema
}

// NewJSONSchemaValidator builds a validator backed by jsonschema v5.
func NewJSONSchemaValidator() *JSONSchemaValidator {
	return &JSONSchemaValidator{compiled: make(map[string]*jsonschema.Schema)}
}

// ValidateInstance returns instance with defaults filled into Configuration.
func (v *JSONSchemaValidator) ValidateInstance(def WidgetDefinition, instance WidgetInstance) (WidgetInstance, error) {
	fail := func(err error) (WidgetInstance, error) {
		return instance, &WidgetInstanceError{InstanceID: instance.ID, Definition: def.Code, Err: err}
	}
	if _, ok := knownAreas[instance.Area]; !ok {
		return fail(fmt.Errorf("unknown area %q", instance.Area))
	}
	switch instance.Scope {
	case "", ScopeAdmin, ScopeHost:
	default:
		return fail(fmt.Errorf("unknown scope %q", instance.Scope))
	}
	for _, role := range instance.Roles {
		if !ParseRole(role).Known() {
			return fail(fmt.Errorf("unknown role %q", role))
		}
	}

	config, err := normalizeConfig(def, instance.Configuration)
	if err != nil {
		return fail(err)
	}
	if len(def.Schema) > 0 {
		schema, err := v.schemaFor(def)
		if err != nil {
			return fail(err)
		}
		if err := schema.Validate(config); err != nil {
			return fail(err)
		}
	}
	instance.Configuration = config
	return instance, nil
}

// normalizeConfig applies schema defaults and round trips through JSON so
// YAML ints and typed slices match schema types.
func normalizeConfig(def WidgetDefinition, config map[string]any) (map[string]any, error) {
	merged := map[string]any{}
	for key, value := range schemaDefaults(def.Schema) {
		merged[key] = value
	}
	for key, value := range config {
		merged[key] = value
	}
	data, err := json.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("marshal configuration: %w", err)
	}
	out := map[string]any{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode configuration: %w", err)
	}
	return out, nil
}

func schemaDefaults(schema map[string]any) map[string]any {
	props, _ := schema["properties"].(map[string]any)
	defaults := map[string]any{}
	for key, raw := range props {
		prop, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if value, ok := prop["default"]; ok {
			defaults[key] = value
		}
	}
	return defaults
}

func (v *JSONSchemaValidator) schemaFor(def WidgetDefinition) (*jsonschema.Schema, error) {
	v.mu.RLock()
	schema, ok := v.compiled[def.Code]
	v.mu.RUnlock()
	if ok {
		return schema, nil
	}
	data, err := json.Marshal(def.Schema)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	name := def.Code + ".json"
	if err := compiler.AddResource(name, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}
	compiled, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	v.mu.Lock()
	v.compiled[def.Code] = compiled
	v.mu.Unlock()
	return compiled, nil
}
