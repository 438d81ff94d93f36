package indexer

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/jsphweid/polyindex/model"
)

type SettingKind uint8

const (
	String SettingKind = iota
	Float
	Int
	Bool
)

// SettingSpec declares one recognised option of an indexer. Rule is a
// validator tag checked against the coerced value.
type SettingSpec struct {
	Name     string
	Kind     SettingKind
	Required bool
	Default  any
	Rule     string
}

// MP is the setting shared by every indexer that toggles the worker pool.
var MP = SettingSpec{Name: "mp", Kind: Bool, Default: true}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
	})
	return validate
}

// ValidateSettings merges defaults with the caller's values and checks every
// declared option. Unrecognised keys are ignored.
func ValidateSettings(name string, specs []SettingSpec, given model.Settings) (model.Settings, error) {
	res := make(model.Settings, len(specs))
	for _, s := range specs {
		raw, ok := given[s.Name]
		if !ok || raw == nil {
			if s.Required {
				return nil, &SettingsError{Indexer: name, Setting: s.Name, Reason: "setting is missing"}
			}
			if s.Default != nil {
				res[s.Name] = s.Default
			}
			continue
		}
		v, err := coerce(s.Kind, raw)
		if err != nil {
			return nil, &SettingsError{Indexer: name, Setting: s.Name, Reason: err.Error()}
		}
		if s.Rule != "" {
			if err := getValidator().Var(v, s.Rule); err != nil {
				reason := fmt.Sprintf("value %v fails %q", v, s.Rule)
				return nil, &SettingsError{Indexer: name, Setting: s.Name, Reason: reason}
			}
		}
		res[s.Name] = v
	}
	return res, nil
}

func coerce(kind SettingKind, raw any) (any, error) {
	switch kind {
	case String:
		if v, ok := raw.(string); ok {
			return v, nil
		}
		if raw == false {
			// "method": false meant "no fill" in older run files
			return "none", nil
		}
	case Float:
		switch v := raw.(type) {
		case float64:
			return v, nil
		case float32:
			return float64(v), nil
		case int:
			return float64(v), nil
		case int64:
			return float64(v), nil
		case uint64:
			return float64(v), nil
		case string:
			return strconv.ParseFloat(strings.TrimSpace(v), 64)
		}
	case Int:
		switch v := raw.(type) {
		case int:
			return v, nil
		case int64:
			return int(v), nil
		case float64:
			if v == float64(int(v)) {
				return int(v), nil
			}
		case string:
			return strconv.Atoi(strings.TrimSpace(v))
		}
	case Bool:
		switch v := raw.(type) {
		case bool:
			return v, nil
		case string:
			return strconv.ParseBool(strings.TrimSpace(v))
		}
	}
	return nil, fmt.Errorf("unexpected value %v (%T)", raw, raw)
}

func GetString(s model.Settings, key string) string {
	v, _ := s[key].(string)
	return v
}

func GetFloat(s model.Settings, key string) float64 {
	v, _ := s[key].(float64)
	return v
}

func GetInt(s model.Settings, key string) int {
	v, _ := s[key].(int)
	return v
}

func GetBool(s model.Settings, key string) bool {
	v, _ := s[key].(bool)
	return v
}
