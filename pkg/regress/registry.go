package regress

import (
	"fmt"
	"sort"

	"github.com/spf13/cast"
)

// Model kinds understood by New
const (
	KindLinear       = "LinearRegression"
	KindRidge        = "Ridge"
	KindLasso        = "Lasso"
	KindSVR          = "SVR"
	KindRandomForest = "RandomForestRegressor"
	KindBoosting     = "XGBRegressor"
)

// ModelSpec names a model kind and its constructor parameters
type ModelSpec struct {
	Name   string                 `mapstructure:"name" json:"name"`
	Kind   string                 `mapstructure:"kind" json:"kind"`
	Params map[string]interface{} `mapstructure:"params" json:"params,omitempty"`
}

// DisplayName returns Name, falling back to Kind
func (s ModelSpec) DisplayName() string {
	if s.Name != "" {
		return s.Name
	}
	return s.Kind
}

// DefaultModels returns the model line-up of the daily experiment
func DefaultModels() []ModelSpec {
	return []ModelSpec{
		{Kind: KindLinear, Params: map[string]interface{}{"fit_intercept": false}},
		{Kind: KindRidge, Params: map[string]interface{}{"fit_intercept": false, "alpha": 100}},
		{Kind: KindLasso, Params: map[string]interface{}{"fit_intercept": false, "alpha": 100}},
		{Kind: KindSVR, Params: map[string]interface{}{"c": 0.1}},
		{Kind: KindRandomForest, Params: map[string]interface{}{"n_estimators": 50, "max_depth": 5}},
		{Kind: KindBoosting, Params: map[string]interface{}{"n_estimators": 50, "reg_lambda": 0.005, "max_depth": 5}},
	}
}

// Kinds lists every supported model kind
func Kinds() []string {
	kinds := make([]string, 0, len(constructors))
	for k := range constructors {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// New constructs the model described by spec
func New(spec ModelSpec) (Regressor, error) {
	build, ok := constructors[spec.Kind]
	if !ok {
		return nil, fmt.Errorf("unknown model kind %q", spec.Kind)
	}
	p := params{name: spec.DisplayName(), values: spec.Params}
	model := build(&p)
	if p.err != nil {
		return nil, fmt.Errorf("model %s: %w", spec.DisplayName(), p.err)
	}
	return model, nil
}

var constructors = map[string]func(p *params) Regressor{
	KindLinear: func(p *params) Regressor {
		return NewLinearRegression(p.name, p.boolean("fit_intercept", true))
	},
	KindRidge: func(p *params) Regressor {
		return NewRidge(p.name, p.float("alpha", 1), p.boolean("fit_intercept", true))
	},
	KindLasso: func(p *params) Regressor {
		m := NewLasso(p.name, p.float("alpha", 1), p.boolean("fit_intercept", true))
		m.MaxIter = p.integer("max_iter", m.MaxIter)
		m.Tol = p.float("tol", m.Tol)
		return m
	},
	KindSVR: func(p *params) Regressor {
		m := NewSVR(p.name, p.float("c", 1))
		m.Epsilon = p.float("epsilon", m.Epsilon)
		m.Gamma = p.float("gamma", 0)
		m.MaxIter = p.integer("max_iter", m.MaxIter)
		return m
	},
	KindRandomForest: func(p *params) Regressor {
		m := NewRandomForest(p.name, p.integer("n_estimators", 100), p.integer("max_depth", 5), int64(p.integer("random_state", 42)))
		m.MinSamplesLeaf = p.integer("min_samples_leaf", m.MinSamplesLeaf)
		return m
	},
	KindBoosting: func(p *params) Regressor {
		m := NewGradientBoosting(p.name, p.integer("n_estimators", 100), p.integer("max_depth", 6), p.float("reg_lambda", 1))
		m.LearningRate = p.float("learning_rate", m.LearningRate)
		m.MinChildWeight = p.float("min_child_weight", m.MinChildWeight)
		return m
	},
}

// params reads loosely typed configuration values, keeping the first error
type params struct {
	name   string
	values map[string]interface{}
	err    error
}

func (p *params) lookup(key string) (interface{}, bool) {
	v, ok := p.values[key]
	return v, ok && v != nil
}

func (p *params) float(key string, def float64) float64 {
	v, ok := p.lookup(key)
	if !ok {
		return def
	}
	f, err := cast.ToFloat64E(v)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("param %s: %w", key, err)
	}
	return f
}

func (p *params) integer(key string, def int) int {
	v, ok := p.lookup(key)
	if !ok {
		return def
	}
	i, err := cast.ToIntE(v)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("param %s: %w", key, err)
	}
	return i
}

func (p *params) boolean(key string, def bool) bool {
	v, ok := p.lookup(key)
	if !ok {
		return def
	}
	b, err := cast.ToBoolE(v)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("param %s: %w", key, err)
	}
	return b
}
