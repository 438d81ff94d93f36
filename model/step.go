package model

import "strings"

// Step names one analyzer of a chain and the settings it runs with.
type Step struct {
	Analyzer string   `json:"analyzer" yaml:"analyzer" validate:"required"`
	Settings Settings `json:"settings,omitempty" yaml:"settings,omitempty"`
}

func StepNames(steps []Step) []string {
	res := make([]string, len(steps))
	for i, s := range steps {
		res[i] = s.Analyzer
	}
	return res
}

func ChainName(steps []Step) string {
	return strings.Join(StepNames(steps), ">")
}
