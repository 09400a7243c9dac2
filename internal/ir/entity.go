package ir

// ProcessInstance is a persisted process instance as seen by the query layer.
// The execution engine owns its lifecycle; queries treat it as read-only.
type ProcessInstance struct {
	ID                   string `json:"id"`
	TenantID             string `json:"tenant_id"`      // May contain literal %, _ and |
	Name                 string `json:"name,omitempty"` // Empty means no name (stored as NULL)
	ProcessDefinitionID  string `json:"process_definition_id"`
	ProcessDefinitionKey string `json:"process_definition_key,omitempty"`
}

// Variable is a named, typed value attached to a process instance.
// Name is unique per instance.
type Variable struct {
	InstanceID string `json:"instance_id"`
	Name       string `json:"name"`
	Value      Value  `json:"-"`
}
