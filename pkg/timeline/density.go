package timeline

// threshold is one row of the density table: widths below Below get Variant.
type threshold struct {
	Below   float64
	Variant Variant
}

// densityTable is ordered by ascending width. Widths at or above the last
// threshold are VariantNormal.
var densityTable = []threshold{
	{3, VariantTinyLabel},
	{6, VariantNano},
	{10, VariantMicro},
	{14, VariantSmall},
}

// Classify maps a width percentage to exactly one label-density variant.
// Thresholds are percentages of the window width, so the result does not
// depend on the rendered resolution.
func Classify(widthPct float64) Variant {
	for _, t := range densityTable {
		if widthPct < t.Below {
			return t.Variant
		}
	}
	return VariantNormal
}
