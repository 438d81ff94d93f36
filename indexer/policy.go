package indexer

import "github.com/jsphweid/polyindex/model"

// Policy chooses which part combinations an indexer analyses, given the
// number of input parts.
type Policy interface {
	Combinations(numParts int) []model.Combination
}

type PolicyFunc func(numParts int) []model.Combination

func (f PolicyFunc) Combinations(numParts int) []model.Combination {
	return f(numParts)
}

// EachPart analyses every part alone: [0] [1] ...
var EachPart = PolicyFunc(func(n int) []model.Combination {
	res := make([]model.Combination, n)
	for i := range res {
		res[i] = model.Combination{i}
	}
	return res
})

// AllPairs analyses every unordered pair with the higher part first:
// [0 1] [0 2] ... [1 2] ...
var AllPairs = PolicyFunc(func(n int) []model.Combination {
	var res []model.Combination
	for left := 0; left < n; left++ {
		for right := left + 1; right < n; right++ {
			res = append(res, model.Combination{left, right})
		}
	}
	return res
})

// AllParts analyses every part at once.
var AllParts = PolicyFunc(func(n int) []model.Combination {
	if n == 0 {
		return nil
	}
	all := make(model.Combination, n)
	for i := range all {
		all[i] = i
	}
	return []model.Combination{all}
})

// Explicit analyses exactly the given combinations, in order.
func Explicit(combos ...model.Combination) Policy {
	return PolicyFunc(func(n int) []model.Combination {
		res := make([]model.Combination, len(combos))
		copy(res, combos)
		return res
	})
}
