package property

// priceWindow returns the inclusive price range a similar listing may fall
// in: within 20% of the source price either way.
func priceWindow(price float64) (float64, float64) {
	return price * 0.8, price * 1.2
}

// bedroomWindow returns the inclusive bedroom range around n: one below and
// one above, with the lower bound clamped to 1.
func bedroomWindow(n int) (int, int) {
	low := n - 1
	if low < 1 {
		low = 1
	}
	return low, n + 1
}

const defaultSimilarLimit = 4

func clampSimilarLimit(n int) int {
	if n < 1 {
		return defaultSimilarLimit
	}
	if n > maxPageSize {
		return maxPageSize
	}
	return n
}
