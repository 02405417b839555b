package flashcode

import "fmt"

// Range addresses a contiguous run of bits inside one payload byte. It covers
// bits [BitOffset-BitSize+1, BitOffset], where bit 0 is the least
// significant bit.
type Range struct {
	ByteOffset int // 1-based payload byte
	BitOffset  int // highest bit of the run
	BitSize    int
}

// Validate reports ErrInvalidRange when the range falls outside the payload
// or spans below bit 0 or above bit 7.
func (r Range) Validate() error {
	switch {
	case r.ByteOffset < 1 || r.ByteOffset > PayloadSize:
		return fmt.Errorf("%w: byte offset %d outside 1..%d", ErrInvalidRange, r.ByteOffset, PayloadSize)
	case r.BitOffset < 0 || r.BitOffset > 7:
		return fmt.Errorf("%w: bit offset %d outside 0..7", ErrInvalidRange, r.BitOffset)
	case r.BitSize < 1:
		return fmt.Errorf("%w: bit size %d must be at least 1", ErrInvalidRange, r.BitSize)
	case r.BitOffset-r.BitSize+1 < 0:
		return fmt.Errorf("%w: %d bits ending at bit %d span below bit 0", ErrInvalidRange, r.BitSize, r.BitOffset)
	}
	return nil
}

// Mask returns the byte mask of the range. The range must be valid.
func (r Range) Mask() byte {
	var mask byte
	for bit := r.BitOffset - r.BitSize + 1; bit <= r.BitOffset; bit++ {
		mask |= 1 << bit
	}
	return mask
}

func (r Range) String() string {
	return fmt.Sprintf("D%d B%d S%d", r.ByteOffset, r.BitOffset, r.BitSize)
}

// setBits, unsetBits and checkBits act on a payload in place. They validate
// before touching p, so a failed call never mutates it.

func setBits(p *Payload, r Range) error {
	if err := r.Validate(); err != nil {
		return err
	}
	i := r.ByteOffset - 1
	v := p[i] | r.Mask()
	if int(v) >= AlphabetSize {
		return fmt.Errorf("%w: setting %s gives %d, outside the alphabet", ErrInvalidRange, r, v)
	}
	p[i] = v
	return nil
}

func unsetBits(p *Payload, r Range) error {
	if err := r.Validate(); err != nil {
		return err
	}
	p[r.ByteOffset-1] &^= r.Mask()
	return nil
}

func checkBits(p *Payload, r Range) (bool, error) {
	if err := r.Validate(); err != nil {
		return false, err
	}
	mask := r.Mask()
	return p[r.ByteOffset-1]&mask == mask, nil
}
