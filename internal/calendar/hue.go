package calendar

// Hue maps a tag to a hue in [0, 360) for its color marker. It is a 31-based
// rolling hash over the tag's code points with int32 wraparound. Different
// tags may share a hue.
func Hue(tag string) int {
	var h int32
	for _, r := range tag {
		h = h*31 + int32(r)
	}
	v := int64(h)
	if v < 0 {
		v = -v
	}
	return int(v % 360)
}
