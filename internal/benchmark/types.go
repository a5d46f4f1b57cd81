package benchmark

import "time"

// Test is the record of a single workload: one duration per pass.
type Test struct {
	Name  string          `json:"name"`
	Times []time.Duration `json:"times"`
}

// Category groups the tests sharing an identifier prefix. Times holds the
// summed duration of all its tests, one entry per pass.
type Category struct {
	Name  string          `json:"name"`
	Times []time.Duration `json:"times"`

	tests *orderedMap[*Test]
}

// Tests returns the category's tests in registration order.
func (c *Category) Tests() []*Test {
	return c.tests.Values()
}

// Test returns the named test record.
func (c *Category) Test(name string) (*Test, bool) {
	return c.tests.Get(name)
}

// Results is the root of the aggregation tree. Times holds the grand total
// of every pass.
type Results struct {
	Times []time.Duration `json:"times"`

	categories *orderedMap[*Category]
}

// NewResults returns an empty result tree.
func NewResults() *Results {
	return &Results{categories: newOrderedMap[*Category]()}
}

// Categories returns the categories in registration order.
func (r *Results) Categories() []*Category {
	return r.categories.Values()
}

// Category returns the named category record.
func (r *Results) Category(name string) (*Category, bool) {
	return r.categories.Get(name)
}

// TestCount returns the number of distinct tests in the tree.
func (r *Results) TestCount() int {
	n := 0
	for _, c := range r.categories.Values() {
		n += c.tests.Len()
	}
	return n
}
