package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"sort"
	"strings"
)

//go:embed data/role_mapping.json
var defaultRoleMapping []byte

// weightEpsilon is the tolerance for weight tables summing to 1.0.
const weightEpsilon = 1e-6

// ConfigError reports an invalid registry. It is fatal at startup and never
// produced while a batch is running.
type ConfigError struct {
	Field  string
	Reason string
}

func (e ConfigError) Error() string {
	if e.Field == "" {
		return "catalog config: " + e.Reason
	}
	return fmt.Sprintf("catalog config: %s: %s", e.Field, e.Reason)
}

// RoleTable lists the roles of one category split into a primary and a secondary
// bucket, with the probability of drawing from each.
type RoleTable struct {
	Primary   []string  `json:"primary"`
	Secondary []string  `json:"secondary"`
	Weights   []float64 `json:"weights"`
}

// Bucket identifies which half of a RoleTable a role was drawn from.
type Bucket int

const (
	BucketPrimary Bucket = iota
	BucketSecondary
)

// Selection is the content chosen for one generation request.
type Selection struct {
	Category string
	Role     string
	Bucket   Bucket
	Tier     Tier
	Years    int
}

// Registry is an immutable category/role table. Select is a pure function of
// the registry and the random source, so one Registry can be shared by any
// number of tasks.
type Registry struct {
	categories []string
	tables     map[string]RoleTable
	cumulative []float64
}

// Load reads a role mapping from path, or the embedded default when path is empty.
func Load(path string, categoryWeights map[string]float64) (*Registry, error) {
	data := defaultRoleMapping
	if strings.TrimSpace(path) != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, ConfigError{Field: "catalog.path", Reason: err.Error()}
		}
		data = raw
	}
	return Parse(data, categoryWeights)
}

// Parse decodes and validates a role mapping. An empty categoryWeights map selects
// categories uniformly.
func Parse(data []byte, categoryWeights map[string]float64) (*Registry, error) {
	var tables map[string]RoleTable
	if err := json.Unmarshal(data, &tables); err != nil {
		return nil, ConfigError{Reason: "decode role mapping: " + err.Error()}
	}
	if len(tables) == 0 {
		return nil, ConfigError{Reason: "role mapping has no categories"}
	}

	categories := make([]string, 0, len(tables))
	for name, table := range tables {
		if strings.TrimSpace(name) == "" {
			return nil, ConfigError{Reason: "category name is empty"}
		}
		if err := validateTable(name, table); err != nil {
			return nil, err
		}
		categories = append(categories, name)
	}
	sort.Strings(categories)

	cumulative, err := categoryCumulative(categories, categoryWeights)
	if err != nil {
		return nil, err
	}

	return &Registry{
		categories: categories,
		tables:     tables,
		cumulative: cumulative,
	}, nil
}

func validateTable(name string, table RoleTable) error {
	if len(table.Weights) != 2 {
		return ConfigError{Field: name + ".weights", Reason: fmt.Sprintf("expected 2 weights, got %d", len(table.Weights))}
	}
	if err := checkWeights(name+".weights", table.Weights); err != nil {
		return err
	}
	if table.Weights[0] > 0 && len(table.Primary) == 0 {
		return ConfigError{Field: name + ".primary", Reason: "no roles for a non-zero weight"}
	}
	if table.Weights[1] > 0 && len(table.Secondary) == 0 {
		return ConfigError{Field: name + ".secondary", Reason: "no roles for a non-zero weight"}
	}
	return nil
}

func checkWeights(field string, weights []float64) error {
	sum := 0.0
	for i, w := range weights {
		if math.IsNaN(w) || w < 0 {
			return ConfigError{Field: fmt.Sprintf("%s[%d]", field, i), Reason: "weight must be non-negative"}
		}
		sum += w
	}
	if math.Abs(sum-1.0) > weightEpsilon {
		return ConfigError{Field: field, Reason: fmt.Sprintf("weights sum to %g, want 1.0", sum)}
	}
	return nil
}

func categoryCumulative(categories []string, weights map[string]float64) ([]float64, error) {
	out := make([]float64, len(categories))
	if len(weights) == 0 {
		for i := range categories {
			out[i] = float64(i+1) / float64(len(categories))
		}
		return out, nil
	}

	// Keys are matched case-insensitively; config layers lowercase map keys.
	index := make(map[string]int, len(categories))
	for i, c := range categories {
		index[strings.ToLower(c)] = i
	}
	ordered := make([]float64, len(categories))
	seen := make(map[int]bool, len(weights))
	for name, w := range weights {
		i, ok := index[strings.ToLower(name)]
		if !ok {
			return nil, ConfigError{Field: "catalog.category_weights", Reason: fmt.Sprintf("unknown category %q", name)}
		}
		if seen[i] {
			return nil, ConfigError{Field: "catalog.category_weights", Reason: fmt.Sprintf("category %q weighted twice", categories[i])}
		}
		seen[i] = true
		ordered[i] = w
	}
	if err := checkWeights("catalog.category_weights", ordered); err != nil {
		return nil, err
	}
	running := 0.0
	for i, w := range ordered {
		running += w
		out[i] = running
	}
	return out, nil
}

// Categories returns the registered categories in sorted order.
func (r *Registry) Categories() []string {
	return append([]string(nil), r.categories...)
}

// Table returns the role table for a category.
func (r *Registry) Table(category string) (RoleTable, bool) {
	t, ok := r.tables[category]
	return t, ok
}

// Select draws a category, a role within it and a seniority tier with
// years-of-experience.
func (r *Registry) Select(rng *rand.Rand) Selection {
	category := r.SelectCategory(rng)
	role, bucket := r.SelectRole(rng, category)
	tier, years := SelectSeniority(rng)
	return Selection{
		Category: category,
		Role:     role,
		Bucket:   bucket,
		Tier:     tier,
		Years:    years,
	}
}

// SelectCategory draws a category according to the configured weights.
func (r *Registry) SelectCategory(rng *rand.Rand) string {
	return r.categories[pickCumulative(rng, r.cumulative)]
}

// SelectRole draws the bucket by its weight, then a role uniformly within it.
func (r *Registry) SelectRole(rng *rand.Rand, category string) (string, Bucket) {
	table := r.tables[category]
	if rng.Float64() < table.Weights[0] {
		return table.Primary[rng.IntN(len(table.Primary))], BucketPrimary
	}
	if len(table.Secondary) == 0 {
		return table.Primary[rng.IntN(len(table.Primary))], BucketPrimary
	}
	return table.Secondary[rng.IntN(len(table.Secondary))], BucketSecondary
}

func pickCumulative(rng *rand.Rand, cumulative []float64) int {
	u := rng.Float64()
	for i, bound := range cumulative {
		if u < bound {
			return i
		}
	}
	// Rounding can leave the last bound slightly below 1.
	for i := len(cumulative) - 1; i > 0; i-- {
		if cumulative[i] > cumulative[i-1] {
			return i
		}
	}
	return 0
}
