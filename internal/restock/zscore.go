package restock

// ZScore interpolates linearly over table, clamping outside its range. Exact
// table levels return their tabulated z.
func ZScore(serviceLevel float64, table []ZPoint) float64 {
	if len(table) == 0 {
		return 0
	}
	if serviceLevel <= table[0].ServiceLevel {
		return table[0].Z
	}
	last := table[len(table)-1]
	if serviceLevel >= last.ServiceLevel {
		return last.Z
	}
	for i := 1; i < len(table); i++ {
		hi := table[i]
		if serviceLevel == hi.ServiceLevel {
			return hi.Z
		}
		if serviceLevel < hi.ServiceLevel {
			lo := table[i-1]
			frac := (serviceLevel - lo.ServiceLevel) / (hi.ServiceLevel - lo.ServiceLevel)
			return lo.Z + frac*(hi.Z-lo.Z)
		}
	}
	return last.Z
}

// Z looks up serviceLevel in the configured table.
func (p Params) Z(serviceLevel float64) float64 {
	return ZScore(serviceLevel, p.ZTable)
}
