package need

// Resolve returns the highest threshold whose value is at or below current.
// Thresholds must be sorted ascending by value (ParseConfig and
// NewInstance guarantee this). A value below every threshold floor
// resolves to the lowest threshold. The second return is false only when
// the list is empty.
//
// Resolve is a pure function: identical inputs always yield identical
// results.
func Resolve(thresholds []Threshold, current float64) (Threshold, bool) {
	if len(thresholds) == 0 {
		return Threshold{}, false
	}
	for i := len(thresholds) - 1; i >= 0; i-- {
		if thresholds[i].Value <= current {
			return thresholds[i], true
		}
	}
	return thresholds[0], true
}
