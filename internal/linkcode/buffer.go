package linkcode

// Buffer collects typed runes until a full code has been entered.
type Buffer struct {
	size  int
	runes []rune
}

// NewBuffer returns a buffer for codes of the given length.
func NewBuffer(size int) *Buffer {
	if size < 1 {
		size = 1
	}
	return &Buffer{size: size, runes: make([]rune, 0, size)}
}

// Push appends r. Once the buffer holds a full code it returns the code,
// reports complete and starts over.
func (b *Buffer) Push(r rune) (code string, complete bool) {
	b.runes = append(b.runes, r)
	if len(b.runes) < b.size {
		return "", false
	}
	code = string(b.runes)
	b.Reset()
	return code, true
}

// Reset discards any partial code.
func (b *Buffer) Reset() { b.runes = b.runes[:0] }

// Len is the number of runes typed towards the current code.
func (b *Buffer) Len() int { return len(b.runes) }

// Size is the code length the buffer waits for.
func (b *Buffer) Size() int { return b.size }
