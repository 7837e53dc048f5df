// Copyright (c) 2024, The OTNS Authors.
// All rights reserved.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions are met:
// 1. Redistributions of source code must retain the above copyright
//    notice, this list of conditions and the following disclaimer.
// 2. Redistributions in binary form must reproduce the above copyright
//    notice, this list of conditions and the following disclaimer in the
//    documentation and/or other materials provided with the distribution.
// 3. Neither the name of the copyright holder nor the
//    names of its contributors may be used to endorse or promote products
//    derived from this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS "AS IS"
// AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT LIMITED TO, THE
// IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE
// ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR CONTRIBUTORS BE
// LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL, SPECIAL, EXEMPLARY, OR
// CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT LIMITED TO, PROCUREMENT OF
// SUBSTITUTE GOODS OR SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
// INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY, WHETHER IN
// CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING NEGLIGENCE OR OTHERWISE)
// ARISING IN ANY WAY OUT OF THE USE OF THIS SOFTWARE, EVEN IF ADVISED OF THE
// POSSIBILITY OF SUCH DAMAGE.

package radiomodel

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"

	. "github.com/openthread/ot-proploss/types"
)

// factory creates a model from untyped parameters, e.g. as read from a config file or typed in the CLI.
type factory func(raw map[string]interface{}) (Model, error)

var registry = map[Kind]factory{
	KindFriis: func(raw map[string]interface{}) (Model, error) {
		return build(raw, NewFriisParams, NewFriisModel)
	},
	KindTwoRayGround: func(raw map[string]interface{}) (Model, error) {
		return build(raw, NewTwoRayGroundParams, NewTwoRayGroundModel)
	},
	KindLogDistance: func(raw map[string]interface{}) (Model, error) {
		return build(raw, NewLogDistanceParams, NewLogDistanceModel)
	},
	KindThreeLogDistance: func(raw map[string]interface{}) (Model, error) {
		return build(raw, NewThreeLogDistanceParams, NewThreeLogDistanceModel)
	},
	KindRange: func(raw map[string]interface{}) (Model, error) {
		return build(raw, NewRangeParams, NewRangeModel)
	},
	KindMatrix: func(raw map[string]interface{}) (Model, error) {
		return build(raw, NewMatrixParams, NewMatrixModel)
	},
	KindFixedRss: func(raw map[string]interface{}) (Model, error) {
		return build(raw, NewFixedRssParams, NewFixedRssModel)
	},
	KindRandom: func(raw map[string]interface{}) (Model, error) {
		return build(raw, NewRandomParams, NewRandomModel)
	},
	KindThreeGpp: func(raw map[string]interface{}) (Model, error) {
		return build(raw, NewThreeGppParams, NewThreeGppModel)
	},
	KindV2vUrban: func(raw map[string]interface{}) (Model, error) {
		return build(raw, NewV2vParams, NewV2vUrbanModel)
	},
	KindV2vHighway: func(raw map[string]interface{}) (Model, error) {
		return build(raw, NewV2vParams, NewV2vHighwayModel)
	},
	KindNakagami: func(raw map[string]interface{}) (Model, error) {
		return build(raw, NewNakagamiParams, NewNakagamiModel)
	},
	KindTerahertz: func(raw map[string]interface{}) (Model, error) {
		return build(raw, NewTerahertzParams, NewTerahertzModel)
	},
}

func build[P any, M Model](raw map[string]interface{}, newParams func() *P, newModel func(*P) (M, error)) (Model, error) {
	params := newParams()
	if err := DecodeParams(raw, params); err != nil {
		return nil, err
	}
	m, err := newModel(params)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Kinds returns the names of all model kinds, sorted.
func Kinds() []Kind {
	kinds := make([]Kind, 0, len(registry))
	for k := range registry {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool {
		return kinds[i] < kinds[j]
	})
	return kinds
}

// ParseKind parses a model name. Matching ignores case, '-' and '_'.
func ParseKind(name string) (Kind, error) {
	k := Kind(strings.NewReplacer("-", "", "_", "").Replace(strings.ToLower(name)))
	if _, ok := registry[k]; !ok {
		return "", errors.Wrapf(ErrUnknownModel, "%q", name)
	}
	return k, nil
}

// NewModel creates a model of the named kind. Parameters not given in params keep their default value;
// unknown parameter names are an error.
func NewModel(name string, params map[string]interface{}) (Model, error) {
	kind, err := ParseKind(name)
	if err != nil {
		return nil, err
	}
	m, err := registry[kind](params)
	if err != nil {
		return nil, errors.Wrapf(err, "model %s", kind)
	}
	return m, nil
}

// NormalizeKey converts a parameter name to its canonical form: lowercase, with '_' separators.
func NormalizeKey(key string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(key)), "-", "_")
}

// DecodeParams decodes untyped parameters into a typed parameter struct. Keys are normalized with NormalizeKey,
// values are converted weakly (e.g. "2.4e9" to float64), and enum names are parsed. Unknown keys are an error.
func DecodeParams(raw map[string]interface{}, result interface{}) error {
	if len(raw) == 0 {
		return nil
	}
	// mapstructure keeps only the text of hook errors, so the enum parse error is kept here.
	var enumErr error
	hook := func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		v, err := enumDecodeHook(from, to, data)
		if err != nil && enumErr == nil {
			enumErr = err
		}
		return v, err
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       hook,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		Result:           result,
	})
	if err != nil {
		return err
	}
	if err = decoder.Decode(normalizeKeys(raw)); err != nil {
		if enumErr != nil {
			return errors.WithStack(fmt.Errorf("%w: %w", ErrInvalidParam, enumErr))
		}
		return errors.Wrapf(ErrInvalidParam, "%v", err)
	}
	return nil
}

func normalizeKeys(v interface{}) interface{} {
	switch v := v.(type) {
	case map[string]interface{}:
		res := make(map[string]interface{}, len(v))
		for k, val := range v {
			res[NormalizeKey(k)] = normalizeKeys(val)
		}
		return res
	case map[interface{}]interface{}:
		res := make(map[string]interface{}, len(v))
		for k, val := range v {
			if ks, ok := k.(string); ok {
				res[NormalizeKey(ks)] = normalizeKeys(val)
			}
		}
		return res
	case []interface{}:
		res := make([]interface{}, len(v))
		for i, val := range v {
			res[i] = normalizeKeys(val)
		}
		return res
	default:
		return v
	}
}

var (
	scenarioType  = reflect.TypeOf(Scenario(0))
	rolesType     = reflect.TypeOf(RoleAssignment(0))
	conditionType = reflect.TypeOf(LosCondition(0))
)

func enumDecodeHook(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if from.Kind() != reflect.String {
		return data, nil
	}
	s := reflect.ValueOf(data).String()
	switch to {
	case scenarioType:
		return ParseScenario(s)
	case rolesType:
		return ParseRoleAssignment(s)
	case conditionType:
		return ParseLosCondition(s)
	default:
		return data, nil
	}
}
