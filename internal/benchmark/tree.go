package benchmark

// Build creates the result tree for ids. Categories appear in the order they
// are first seen and tests keep their order within a category.
//
// Registering the same category and name twice replaces the earlier record.
func Build(ids []ID) *Results {
	results := NewResults()
	for _, id := range ids {
		category := results.categories.GetOrInsert(id.Category, func() *Category {
			return &Category{Name: id.Category, tests: newOrderedMap[*Test]()}
		})
		category.tests.Set(id.Name, &Test{Name: id.Name})
	}
	return results
}
