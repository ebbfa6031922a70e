package tm1637

const (
	// MaxInteger is the largest value DisplayInteger shows as a number.
	MaxInteger = 9999
	// MinInteger is the smallest value DisplayInteger shows as a number.
	MinInteger = -999

	overflow  = "E999"
	underflow = "E-99"
)

// FormatInteger returns the 4 characters DisplayInteger shows for n:
// right-justified decimal with a leading '-' for negative values, "E999"
// above MaxInteger and "E-99" below MinInteger.
func FormatInteger(n int) string {
	switch {
	case n > MaxInteger:
		return overflow
	case n < MinInteger:
		return underflow
	}

	buf := [Positions]byte{' ', ' ', ' ', ' '}
	negative := n < 0
	if negative {
		n = -n
	}

	i := Positions - 1
	if n == 0 {
		buf[i] = '0'
		return string(buf[:])
	}
	for ; n > 0; i-- {
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if negative {
		buf[i] = '-'
	}
	return string(buf[:])
}
