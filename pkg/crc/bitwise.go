package crc

// Bitwise computes the checksum bit by bit, straight from the polynomial
// division definition. It is slow and only meant as a reference.
func Bitwise[T Word](p Params[T], data []byte) T {
	mask, top := p.mask(), p.top()
	crc := p.Init & mask
	if p.RefOut {
		// Init is given in the bit order of the result.
		crc = reflect(crc, p.Width)
	}
	for _, b := range data {
		v := T(b)
		if p.RefIn {
			v = reflect(v, 8)
		}
		crc ^= v << (p.Width - 8)
		for i := 0; i < 8; i++ {
			if crc&top != 0 {
				crc = (crc << 1) ^ p.Poly
			} else {
				crc <<= 1
			}
		}
		crc &= mask
	}
	if p.RefOut {
		crc = reflect(crc, p.Width)
	}
	return (crc ^ p.XorOut) & mask
}
