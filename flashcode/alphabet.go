package flashcode

// AlphabetSize is the number of symbols a code is written in.
const AlphabetSize = 64

const alphabet = "0123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghjkmnpqrstuvwxyz#(+$)&%"

var symbolValues = buildSymbolValues()

func buildSymbolValues() [256]int8 {
	if len(alphabet) != AlphabetSize {
		panic("flashcode: alphabet is not 64 symbols long")
	}
	var table [256]int8
	for i := range table {
		table[i] = -1
	}
	for i := 0; i < len(alphabet); i++ {
		if table[alphabet[i]] != -1 {
			panic("flashcode: duplicate symbol in alphabet")
		}
		table[alphabet[i]] = int8(i)
	}
	return table
}

// Alphabet returns the ordered symbol set. The index of a symbol is its value.
func Alphabet() string {
	return alphabet
}

// ValueOf returns the value of symbol c and whether c is part of the alphabet.
func ValueOf(c byte) (int, bool) {
	v := symbolValues[c]
	if v < 0 {
		return 0, false
	}
	return int(v), true
}

// CharOf returns the symbol for value v and whether v is in [0, 63].
func CharOf(v int) (byte, bool) {
	if v < 0 || v >= AlphabetSize {
		return 0, false
	}
	return alphabet[v], true
}
