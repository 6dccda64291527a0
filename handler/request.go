package handler

import (
	"encoding/json"
	"strings"
)

// An Action is the lifecycle operation requested for a resource.
type Action string

// Supported actions.
const (
	Create Action = "CREATE"
	Read   Action = "READ"
	Update Action = "UPDATE"
	Delete Action = "DELETE"
	List   Action = "LIST"
)

// Actions lists all supported actions.
var Actions = []Action{Create, Read, Update, Delete, List}

// ParseAction parses a case insensitive action name.
func ParseAction(s string) (Action, bool) {
	a := Action(strings.ToUpper(strings.TrimSpace(s)))
	for _, v := range Actions {
		if a == v {
			return a, true
		}
	}
	return "", false
}

// Credentials are the caller credentials to use for remote calls.
type Credentials struct {
	AccessKeyID     string `json:"accessKeyId"`
	SecretAccessKey string `json:"secretAccessKey"`
	SessionToken    string `json:"sessionToken,omitempty"`
}

// A CallbackContext is carried between invocations of the same logical
// operation. It is returned on IN_PROGRESS events and must be passed back
// unmodified on the next invocation.
type CallbackContext struct {
	// Stage names the step the handler is waiting on, for example "create"
	// while a resource is being provisioned.
	Stage string `json:"stage,omitempty"`

	// Attempts counts how many times the stage has been checked.
	Attempts int `json:"attempts,omitempty"`
}

// A Request is a single handler invocation.
//
// Resource states are kept as raw json so that the request can be decoded
// before the resource type is known. Handlers decode them into their own
// model with DecodeModel.
type Request struct {
	Action             Action       `json:"action"`
	TypeName           string       `json:"typeName"`
	ClientRequestToken string       `json:"clientRequestToken,omitempty"`
	LogicalResourceID  string       `json:"logicalResourceIdentifier,omitempty"`
	Region             string       `json:"region,omitempty"`
	Credentials        *Credentials `json:"credentials,omitempty"`

	DesiredResourceState  json.RawMessage `json:"desiredResourceState,omitempty"`
	PreviousResourceState json.RawMessage `json:"previousResourceState,omitempty"`

	// Tags applied to the resource from the stack, in addition to the tags
	// set on the resource model itself.
	DesiredResourceTags  map[string]string `json:"desiredResourceTags,omitempty"`
	PreviousResourceTags map[string]string `json:"previousResourceTags,omitempty"`
	SystemTags           map[string]string `json:"systemTags,omitempty"`

	CallbackContext *CallbackContext `json:"callbackContext,omitempty"`
	NextToken       *string          `json:"nextToken,omitempty"`
}

// Stage returns the callback stage, or an empty string if the request is the
// first invocation of an operation.
func (r *Request) Stage() string {
	if r.CallbackContext == nil {
		return ""
	}
	return r.CallbackContext.Stage
}

// DecodeModel decodes a raw resource state into v. An empty state leaves v
// untouched.
//
// Returns an InvalidRequest error if the state is not valid json for v.
func DecodeModel(raw json.RawMessage, v interface{}) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return Errorf(InvalidRequest, "Invalid request provided: %v", err)
	}
	return nil
}
