package net

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/civgym/gym/internal/gym"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Request types.
const (
	TypeNewGame      = "new_game"
	TypeObserve      = "observe"
	TypeValidActions = "valid_actions"
	TypeStep         = "step"
	TypeCatalog      = "catalog"
	TypeReset        = "reset"
)

// StatusBadRequest is returned for requests that fail to parse or validate.
// It sits outside the range of gym.Status codes.
const StatusBadRequest = -400

type Request struct {
	Type   string          `json:"type"`
	Config *gym.GameConfig `json:"config,omitempty"`
	Action *gym.Action     `json:"action,omitempty"`
}

// Response answers one Request. Only the field matching Type is set.
type Response struct {
	Type        string           `json:"type"`
	Status      int              `json:"status"`
	Error       string           `json:"error,omitempty"`
	Observation *gym.Observation `json:"observation,omitempty"`
	Mask        *gym.ActionMask  `json:"mask,omitempty"`
	Legal       []gym.Action     `json:"legal,omitempty"`
	Result      *gym.StepResult  `json:"result,omitempty"`
	Catalog     *gym.Catalog     `json:"catalog,omitempty"`
}

//go:embed schema/request.schema.json
var requestSchemaJSON string

var requestSchema = jsonschema.MustCompileString("request.schema.json", requestSchemaJSON)

// DecodeRequest validates msg against the request schema and decodes it.
func DecodeRequest(msg []byte) (Request, error) {
	var doc any
	if err := json.Unmarshal(msg, &doc); err != nil {
		return Request{}, fmt.Errorf("malformed json: %w", err)
	}
	if err := requestSchema.Validate(doc); err != nil {
		return Request{}, fmt.Errorf("invalid request: %s", strings.TrimSpace(err.Error()))
	}
	var req Request
	if err := json.Unmarshal(msg, &req); err != nil {
		return Request{}, fmt.Errorf("decode request: %w", err)
	}
	return req, nil
}
