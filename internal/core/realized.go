package core

// RealizedByCategory sums transaction amounts per category, excluding
// transfers. The projection engine and the display layers share this one
// routine so "realized" always means the same thing in both places.
func RealizedByCategory(transactions []Transaction) map[string]Money {
	realized := make(map[string]Money)
	for _, t := range transactions {
		if t.IsTransfer() {
			continue
		}
		realized[t.Category] = realized[t.Category].Add(t.Amount)
	}
	return realized
}
