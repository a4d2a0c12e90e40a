package crc

// Table is the precomputed lookup table of a configuration.
type Table[T Word] struct {
	params Params[T]
	mask   T
	data   [256]T
}

// Checksummer is the width-agnostic view of a Table.
type Checksummer interface {
	Name() string
	Width() uint
	Check() uint64
	Sum64(data []byte) uint64
}

// MakeTable builds the lookup table for p.
// It panics if p is not a valid configuration.
func MakeTable[T Word](p Params[T]) *Table[T] {
	if err := p.Validate(); err != nil {
		panic(err)
	}
	t := &Table[T]{params: p, mask: p.mask()}
	for i := range t.data {
		t.data[i] = t.entry(byte(i))
	}
	return t
}

// entry runs the 8 division steps for one index byte. Reflected
// configurations get the reflected entry so the register shifts right.
func (t *Table[T]) entry(index byte) T {
	p := t.params
	c := T(index)
	if p.RefIn {
		c = reflect(c, 8)
	}
	c <<= p.Width - 8
	top := p.top()
	for i := 0; i < 8; i++ {
		if c&top != 0 {
			c = (c << 1) ^ p.Poly
		} else {
			c <<= 1
		}
	}
	c &= t.mask
	if p.RefIn {
		c = reflect(c, p.Width)
	}
	return c
}

// Params returns the configuration of the table.
func (t *Table[T]) Params() Params[T] {
	return t.params
}

// Name implements Checksummer.
func (t *Table[T]) Name() string {
	return t.params.Name
}

// Width implements Checksummer.
func (t *Table[T]) Width() uint {
	return t.params.Width
}

// Check implements Checksummer.
func (t *Table[T]) Check() uint64 {
	return uint64(t.params.Check)
}

// Init returns the initial register value to be passed to Update.
// Complete(Init()) is Params.Init ^ XorOut.
func (t *Table[T]) Init() T {
	if t.params.RefIn != t.params.RefOut {
		return reflect(t.params.Init, t.params.Width)
	}
	return t.params.Init
}

// Update feeds data into the register crc and returns the new register.
func (t *Table[T]) Update(crc T, data []byte) T {
	switch {
	case t.params.Width == 8:
		for _, b := range data {
			crc = t.data[byte(crc)^b]
		}
	case t.params.RefIn:
		for _, b := range data {
			crc = t.data[byte(crc)^b] ^ (crc >> 8)
		}
	default:
		shift := t.params.Width - 8
		for _, b := range data {
			crc = t.data[byte(crc>>shift)^b] ^ (crc << 8)
			crc &= t.mask
		}
	}
	return crc
}

// Complete turns a register value into the final checksum.
func (t *Table[T]) Complete(crc T) T {
	if t.params.RefIn != t.params.RefOut {
		crc = reflect(crc, t.params.Width)
	}
	return (crc ^ t.params.XorOut) & t.mask
}

// Checksum returns the checksum of data.
func (t *Table[T]) Checksum(data []byte) T {
	return t.Complete(t.Update(t.Init(), data))
}

// Sum64 implements Checksummer.
func (t *Table[T]) Sum64(data []byte) uint64 {
	return uint64(t.Checksum(data))
}
