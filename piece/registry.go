package piece

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/go-logr/logr"
	"github.com/jsphweid/polyindex/indexer"
	"github.com/jsphweid/polyindex/interval"
	"github.com/jsphweid/polyindex/model"
	"github.com/jsphweid/polyindex/ngram"
	"github.com/jsphweid/polyindex/noterest"
	"github.com/jsphweid/polyindex/offset"
	"github.com/jsphweid/polyindex/repeat"
	"github.com/jsphweid/polyindex/result"
)

var ErrUnknownAnalyzer = errors.New("unknown analyzer")

const (
	NoteRest           = "noterest"
	VerticalInterval   = "vertical_interval"
	HorizontalInterval = "horizontal_interval"
	Offset             = "offset"
	Repeat             = "repeat"
	NGram              = "ngram"
)

type Runner interface {
	Run(ctx context.Context) (*result.Table, error)
}

type Constructor func(parts []model.Sequence, settings model.Settings, log logr.Logger) (Runner, error)

// Registry maps analyzer names to their constructors.
type Registry map[string]Constructor

func DefaultRegistry() Registry {
	return Registry{
		NoteRest: func(parts []model.Sequence, settings model.Settings, log logr.Logger) (Runner, error) {
			return noterest.New(parts, settings, indexer.WithLogger(log))
		},
		VerticalInterval: func(parts []model.Sequence, settings model.Settings, log logr.Logger) (Runner, error) {
			return interval.NewVertical(parts, settings, indexer.WithLogger(log))
		},
		HorizontalInterval: func(parts []model.Sequence, settings model.Settings, log logr.Logger) (Runner, error) {
			return interval.NewHorizontal(parts, settings, log)
		},
		Offset: func(parts []model.Sequence, settings model.Settings, log logr.Logger) (Runner, error) {
			return offset.New(parts, settings, log)
		},
		Repeat: func(parts []model.Sequence, settings model.Settings, log logr.Logger) (Runner, error) {
			return repeat.New(parts, settings, log)
		},
		NGram: func(parts []model.Sequence, settings model.Settings, log logr.Logger) (Runner, error) {
			return ngram.New(parts, settings, log)
		},
	}
}

func (r Registry) Lookup(name string) (Constructor, error) {
	c, ok := r[name]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownAnalyzer, name)
	}
	return c, nil
}

func (r Registry) Names() []string {
	res := make([]string, 0, len(r))
	for k := range r {
		res = append(res, k)
	}
	sort.Strings(res)
	return res
}

// Validate checks that every step names a registered analyzer.
func (r Registry) Validate(steps []model.Step) error {
	for _, s := range steps {
		if _, err := r.Lookup(s.Analyzer); err != nil {
			return err
		}
	}
	return nil
}
