package indexer

import (
	"fmt"

	"github.com/jsphweid/polyindex/model"
)

// TypeError reports input sequences of the wrong kind.
type TypeError struct {
	Indexer  string
	Expected model.Kind
	Actual   model.Kind
	Position int
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("%v requires %v sequences, not %v (input %d)", e.Indexer, e.Expected, e.Actual, e.Position)
}

// SettingsError reports a missing or invalid setting.
type SettingsError struct {
	Indexer string
	Setting string
	Reason  string
}

func (e *SettingsError) Error() string {
	return fmt.Sprintf("%v requires a %q setting: %v", e.Indexer, e.Setting, e.Reason)
}
