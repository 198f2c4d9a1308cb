package api

import (
	"bytes"
	"encoding/json"

	"goportfolio/domain/evaluation"
	"goportfolio/internal/errors"
)

// decodeSpecs accepts either one evaluation object or an array
func decodeSpecs(body []byte) ([]evaluation.Spec, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, errors.InvalidInput("request body is empty")
	}
	if trimmed[0] == '[' {
		var specs []evaluation.Spec
		if err := json.Unmarshal(trimmed, &specs); err != nil {
			return nil, errors.InvalidInput("invalid evaluations: " + err.Error())
		}
		return specs, nil
	}
	var spec evaluation.Spec
	if err := json.Unmarshal(trimmed, &spec); err != nil {
		return nil, errors.InvalidInput("invalid evaluation: " + err.Error())
	}
	return []evaluation.Spec{spec}, nil
}
