package flashcode

// Checksum computes the check digit of p, a value in [0, 9].
//
// Even positions contribute the digit sum of the doubled byte, odd positions
// the digit sum of the byte itself.
func Checksum(p Payload) int {
	result := 0
	for i, b := range p {
		v := int(b)
		if i%2 == 0 {
			v *= 2
		}
		result += digitSum(v)
	}
	return (10 - result%10) % 10
}

// ChecksumChar returns the check digit of p as a code symbol.
func ChecksumChar(p Payload) byte {
	c, _ := CharOf(Checksum(p))
	return c
}

func digitSum(v int) int {
	return v/100 + (v%100)/10 + v%10
}
