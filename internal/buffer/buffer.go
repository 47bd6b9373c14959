package buffer

// Buffer defines a simple float buffer that acts like a constant size queue
type Buffer struct {
	size   int
	values []float64
}

// NewBuffer creates a new buffer.
func NewBuffer(size int) *Buffer {
	return &Buffer{
		size:   size,
		values: make([]float64, 0),
	}
}

// Push adds an element to the buffer.
// It returns the evicted element, if the buffer overflowed.
func (b *Buffer) Push(x float64) (float64, bool) {
	b.values = append(b.values, x)
	if len(b.values) > b.size {
		value := b.values[0]
		b.values = b.values[1:]
		return value, true
	}
	return 0, false
}

// Len returns the current length of the buffer.
func (b *Buffer) Len() int {
	return len(b.values)
}

// Last returns the last element in the buffer.
func (b *Buffer) Last() float64 {
	if len(b.values) > 0 {
		return b.values[len(b.values)-1]
	}
	return 0.0
}

// Get returns the buffer elements in the order they were added.
func (b *Buffer) Get() []float64 {
	vv := make([]float64, len(b.values))
	copy(vv, b.values)
	return vv
}
