package vision

// Pixel classifiers: fixed, hand-tuned predicates over one RGB triple.
// The thresholds below are behavioral contracts shared with the deployed
// monitoring dashboards, do not retune them.

// IsSkinTone reports whether the pixel falls in the skin-tone envelope.
func IsSkinTone(r, g, b uint8) bool {
	ri, gi, bi := int(r), int(g), int(b)
	if ri <= 95 || gi <= 40 || bi <= 20 {
		return false
	}
	if maxChannel(ri, gi, bi)-minChannel(ri, gi, bi) <= 15 {
		return false
	}
	if absInt(ri-gi) <= 15 {
		return false
	}
	return ri > gi && ri > bi
}

// IsFabricLike reports whether the pixel looks like common mask fabric:
// blue-dominant, near-white, near-gray or near-black.
func IsFabricLike(r, g, b uint8) bool {
	ri, gi, bi := int(r), int(g), int(b)

	blueDominant := bi > ri && bi > gi && bi > 100
	nearWhite := ri > 200 && gi > 200 && bi > 200
	nearGray := absInt(ri-gi) < 20 && absInt(gi-bi) < 20 && absInt(ri-bi) < 20
	nearBlack := ri < 50 && gi < 50 && bi < 50

	return blueDominant || nearWhite || nearGray || nearBlack
}

// IsFireColor reports whether the pixel falls in one of the flame color bands.
func IsFireColor(r, g, b uint8) bool {
	ri, gi, bi := int(r), int(g), int(b)

	orange := ri > 200 && gi > 100 && gi < 200 && bi < 100
	red := ri > 180 && gi < 100 && bi < 100
	yellow := ri > 200 && gi > 200 && bi < 150
	brightYellow := ri > 220 && gi > 220 && bi < 100
	intense := ri+gi > 350 && bi < 150 && ri > gi

	return orange || red || yellow || brightYellow || intense
}

// IsSmokeColor reports whether the pixel is a low-variation gray typical of
// smoke plumes.
func IsSmokeColor(r, g, b uint8) bool {
	ri, gi, bi := int(r), int(g), int(b)

	avg := float64(ri+gi+bi) / 3
	variation := maxFloat(absFloat(float64(ri)-avg),
		absFloat(float64(gi)-avg),
		absFloat(float64(bi)-avg))

	grayish := avg > 80 && avg < 200 && variation < 30
	lightSmoke := ri > 150 && gi > 150 && bi > 150 && variation < 25
	darkSmoke := avg > 60 && avg < 140 && variation < 20

	return grayish || lightSmoke || darkSmoke
}

func maxChannel(a, b, c int) int {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	return m
}

func minChannel(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func maxFloat(a, b, c float64) float64 {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	return m
}
