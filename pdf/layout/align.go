package layout

// distribute shares free space between count objects laid out along an
// axis. It returns the offset of the first object and the extra space added
// between neighbours. Negative free space is never spread: space-between
// packs from the start and space-around and space-evenly center instead.
func distribute(mode Justify, free float64, count int) (start, between float64) {
	if count <= 0 {
		return 0, 0
	}
	switch mode {
	case JustifyFlexEnd:
		return free, 0
	case JustifyCenter:
		return free / 2, 0
	case JustifySpaceBetween:
		if free <= 0 || count == 1 {
			return 0, 0
		}
		return 0, free / float64(count-1)
	case JustifySpaceAround:
		if free <= 0 {
			return free / 2, 0
		}
		s := free / float64(count)
		return s / 2, s
	case JustifySpaceEvenly:
		if free <= 0 {
			return free / 2, 0
		}
		s := free / float64(count+1)
		return s, s
	}
	return 0, 0
}

// alignOffset returns the offset of an object inside a slot with free
// leftover space.
func alignOffset(a Align, free float64) float64 {
	switch a {
	case AlignFlexEnd:
		return free
	case AlignCenter:
		return free / 2
	}
	return 0
}
