// Package ngram strings consecutive vertical intervals together, joined by the
// melodic motion of a chosen part between them.
//
// An n-gram of two-part intervals for soprano and bass looks like
// "[12] (-5) [19]": the vertical interval, the bass motion to the next
// simultaneity in parentheses, then the next vertical interval. A part that
// holds its note while the other moves contributes the continuer ("_").
package ngram

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-logr/logr"
	"github.com/jsphweid/polyindex/align"
	"github.com/jsphweid/polyindex/constants"
	"github.com/jsphweid/polyindex/indexer"
	"github.com/jsphweid/polyindex/interval"
	"github.com/jsphweid/polyindex/metrics"
	"github.com/jsphweid/polyindex/model"
	"github.com/jsphweid/polyindex/parallel"
	"github.com/jsphweid/polyindex/result"
)

const (
	N           = "n"
	Vertical    = "vertical"
	Horizontal  = "horizontal"
	MarkSingles = "mark_singles"
	Hanging     = "hanging"
	Terminator  = "terminator"
	Continuer   = "continuer"

	AllPairs = "all pairs"
	Lowest   = "lowest"
	Highest  = "highest"
	NoMotion = "none"
)

type Indexer struct {
	parts       []model.Sequence
	settings    model.Settings
	n           int
	vertical    [][]string
	horizontal  [][]string
	horizMode   string
	markSingles bool
	hanging     bool
	terminators map[string]bool
	continuer   string
	workers     int
	log         logr.Logger
}

var Spec = indexer.Spec{
	Name:         indexer.QualifiedName(Indexer{}),
	RequiredKind: model.KindSeries,
	Settings: append([]indexer.SettingSpec{
		{Name: N, Kind: indexer.Int, Required: true, Rule: "min=1"},
		{Name: Vertical, Kind: indexer.String, Default: AllPairs, Rule: "required"},
		{Name: Horizontal, Kind: indexer.String, Default: Lowest},
		{Name: MarkSingles, Kind: indexer.Bool, Default: true},
		{Name: Hanging, Kind: indexer.Bool, Default: false},
		{Name: Terminator, Kind: indexer.String, Default: ""},
		{Name: Continuer, Kind: indexer.String, Default: "_", Rule: "required"},
	}, interval.CommonSettings...),
}

// New builds an n-gram indexer over note/rest parts. Vertical and horizontal
// selections are groups separated by ";", each holding space separated
// column labels, e.g. "0,1 0,2;1,2". Horizontal may instead be "lowest" or
// "highest" (the part with the larger or smaller number in each group's first
// pair) or "none".
func New(parts []model.Sequence, settings model.Settings, log logr.Logger) (*Indexer, error) {
	merged, err := indexer.Prepare(Spec, parts, settings)
	if err != nil {
		return nil, err
	}
	i := &Indexer{
		parts:       parts,
		settings:    merged,
		n:           indexer.GetInt(merged, N),
		markSingles: indexer.GetBool(merged, MarkSingles),
		hanging:     indexer.GetBool(merged, Hanging),
		terminators: make(map[string]bool),
		continuer:   indexer.GetString(merged, Continuer),
		workers:     constants.GetMaxWorkers(),
		log:         log.WithValues("indexer", Spec.Name),
	}
	if !indexer.GetBool(merged, indexer.MP.Name) {
		i.workers = 1
	}
	for _, t := range strings.Split(indexer.GetString(merged, Terminator), ",") {
		if t = strings.TrimSpace(t); t != "" {
			i.terminators[t] = true
		}
	}

	if v := indexer.GetString(merged, Vertical); v != AllPairs {
		i.vertical = splitGroups(v)
	}
	switch h := indexer.GetString(merged, Horizontal); h {
	case Lowest, Highest, NoMotion, "":
		i.horizMode = h
	default:
		i.horizontal = splitGroups(h)
		if i.vertical == nil || len(i.horizontal) != len(i.vertical) {
			return nil, &indexer.SettingsError{Indexer: Spec.Name, Setting: Horizontal,
				Reason: "explicit groups need one group per explicit vertical group"}
		}
	}
	return i, nil
}

func splitGroups(s string) [][]string {
	var res [][]string
	for _, g := range strings.Split(s, ";") {
		if labels := strings.Fields(g); len(labels) > 0 {
			res = append(res, labels)
		}
	}
	return res
}

type group struct {
	label      string
	vertical   []model.Sequence
	horizontal []model.Sequence
}

func (i *Indexer) intervalSettings(attachLater bool) model.Settings {
	return model.Settings{
		interval.Directed:         i.settings[interval.Directed],
		interval.SimpleOrCompound: i.settings[interval.SimpleOrCompound],
		interval.HorizAttachLater: attachLater,
		indexer.MP.Name:           i.settings[indexer.MP.Name],
	}
}

func (i *Indexer) Run(ctx context.Context) (*result.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	v, err := interval.NewVertical(i.parts, i.intervalSettings(false),
		indexer.WithLogger(i.log), indexer.WithWorkers(i.workers))
	if err != nil {
		return nil, err
	}
	vt, err := v.Run(ctx)
	if err != nil {
		return nil, err
	}
	var ht *result.Table
	if i.horizontal != nil || (i.horizMode != NoMotion && i.horizMode != "") {
		h, err := interval.NewHorizontal(i.parts, i.intervalSettings(true), i.log)
		if err != nil {
			return nil, err
		}
		if ht, err = h.Run(ctx); err != nil {
			return nil, err
		}
	}

	groups, err := i.groups(vt, ht)
	if err != nil {
		return nil, err
	}
	post, err := parallel.Map(ctx, len(groups), i.workers, func(_ context.Context, n int) (model.Sequence, error) {
		return i.grams(groups[n]), nil
	})
	if err != nil {
		return nil, err
	}

	labels := make([]string, len(groups))
	var rows int
	for n, g := range groups {
		labels[n] = g.label
		rows += post[n].Len()
	}
	metrics.IndexerRuns.WithLabelValues(Spec.Name).Inc()
	metrics.IndexedRows.WithLabelValues(Spec.Name).Add(float64(rows))
	i.log.V(1).Info("indexed", "groups", len(groups), "n", i.n, "rows", rows)
	return result.MakeReturn(Spec.Name, labels, post)
}

func byPart(t *result.Table, name string) map[string]model.Sequence {
	res := make(map[string]model.Sequence)
	for _, s := range t.Select(name) {
		res[s.Label] = s
	}
	return res
}

func (i *Indexer) groups(vt, ht *result.Table) ([]group, error) {
	verticals := byPart(vt, interval.VerticalSpec.Name)
	vgroups := i.vertical
	if vgroups == nil {
		for _, l := range vt.Labels {
			vgroups = append(vgroups, []string{l.Part})
		}
	}

	var horizontals map[string]model.Sequence
	if ht != nil {
		horizontals = byPart(ht, interval.HorizontalSpec.Name)
	}

	res := make([]group, len(vgroups))
	for n, labels := range vgroups {
		g := group{label: strings.Join(labels, " ")}
		for _, l := range labels {
			s, ok := verticals[l]
			if !ok {
				return nil, &indexer.SettingsError{Indexer: Spec.Name, Setting: Vertical,
					Reason: fmt.Sprintf("no vertical interval column %q", l)}
			}
			g.vertical = append(g.vertical, s)
		}

		hlabels, err := i.horizontalLabels(n, labels[0], ht)
		if err != nil {
			return nil, err
		}
		for _, l := range hlabels {
			s, ok := horizontals[l]
			if !ok {
				return nil, &indexer.SettingsError{Indexer: Spec.Name, Setting: Horizontal,
					Reason: fmt.Sprintf("no horizontal interval column %q", l)}
			}
			g.horizontal = append(g.horizontal, s)
		}
		if len(hlabels) > 0 {
			g.label += " : " + strings.Join(hlabels, " ")
		}
		res[n] = g
	}
	return res, nil
}

// horizontalLabels picks the horizontal columns for the n-th group, whose
// first vertical column is pair.
func (i *Indexer) horizontalLabels(n int, pair string, ht *result.Table) ([]string, error) {
	if i.horizontal != nil {
		return i.horizontal[n], nil
	}
	if ht == nil {
		return nil, nil
	}
	var positions []int
	for _, p := range strings.Split(pair, ",") {
		pos, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || pos < 0 || pos >= ht.Width() {
			return nil, &indexer.SettingsError{Indexer: Spec.Name, Setting: Horizontal,
				Reason: fmt.Sprintf("cannot find the %v part of %q", i.horizMode, pair)}
		}
		positions = append(positions, pos)
	}
	pick := positions[0]
	for _, p := range positions[1:] {
		if (i.horizMode == Lowest && p > pick) || (i.horizMode == Highest && p < pick) {
			pick = p
		}
	}
	return []string{ht.Labels[pick].Part}, nil
}

type token struct {
	text  string
	valid bool
}

func (i *Indexer) join(values []string, left, right string) string {
	s := strings.Join(values, " ")
	if i.markSingles || len(values) > 1 {
		return left + s + right
	}
	return s
}

// tokens renders every row of the group: verticals carry forward, a
// horizontal column without an event at a row gives the continuer.
func (i *Indexer) tokens(g group, grid []model.Offset) (vertical, horizontal []token) {
	vcells := make([][]model.Cell, len(g.vertical))
	for n, s := range g.vertical {
		vcells[n] = align.Reindex(s, grid, align.FFill)
	}
	hcells := make([][]model.Cell, len(g.horizontal))
	for n, s := range g.horizontal {
		hcells[n] = align.Reindex(s, grid, align.Exact)
	}

	vertical = make([]token, len(grid))
	horizontal = make([]token, len(grid))
	for r := range grid {
		values := make([]string, len(vcells))
		valid := true
		for n := range vcells {
			c := vcells[n][r]
			valid = valid && c.Valid && !i.terminators[c.Value]
			values[n] = c.Value
		}
		vertical[r] = token{text: i.join(values, "[", "]"), valid: valid}

		if len(hcells) == 0 {
			continue
		}
		values = make([]string, len(hcells))
		valid = true
		for n := range hcells {
			c := hcells[n][r]
			values[n] = i.continuer
			if c.Valid {
				values[n] = c.Value
				valid = valid && !i.terminators[c.Value]
			}
		}
		horizontal[r] = token{text: i.join(values, "(", ")"), valid: valid}
	}
	return vertical, horizontal
}

// grams slides a window of n verticals over the group. The motion between
// rows r and r+1 is the horizontal interval attached to row r+1.
func (i *Indexer) grams(g group) model.Sequence {
	s := model.Sequence{Kind: model.KindSeries}
	grid := align.Offsets(append(append([]model.Sequence{}, g.vertical...), g.horizontal...)...)
	vertical, horizontal := i.tokens(g, grid)
	withMotion := len(g.horizontal) > 0

	span := i.n
	if withMotion && i.hanging {
		span++
	}
	for r := 0; r+span <= len(grid); r++ {
		var parts []string
		ok := true
		for x := 0; x < i.n && ok; x++ {
			v := vertical[r+x]
			parts = append(parts, v.text)
			ok = v.valid
			if withMotion && (x < i.n-1 || i.hanging) {
				h := horizontal[r+x+1]
				parts = append(parts, h.text)
				ok = ok && h.valid
			}
		}
		if ok {
			s.Events = append(s.Events, model.Event{Offset: grid[r], Value: strings.Join(parts, " ")})
		}
	}
	return s
}
