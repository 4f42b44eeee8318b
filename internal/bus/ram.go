/*
 * r3000 - RAM device
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

package bus

// RAM is a flat byte array backing the machine's main memory. Aligned
// 1/2/4-byte reads and writes succeed anywhere in range.
type RAM struct {
	name string
	mem  []byte
	order Endian
}

// NewRAM allocates size bytes of RAM, encoded in the given byte order.
func NewRAM(name string, size uint32, order Endian) *RAM {
	return &RAM{name: name, mem: make([]byte, size), order: order}
}

func (r *RAM) Name() string { return r.name }
func (r *RAM) Size() uint32 { return uint32(len(r.mem)) }

func (r *RAM) Read(offset uint32, size int) (uint32, bool) {
	if offset+uint32(size) > uint32(len(r.mem)) {
		return 0, false
	}
	switch size {
	case Byte:
		return uint32(r.mem[offset]), true
	case Half:
		return uint32(DecodeHalf(r.order, r.mem[offset:])), true
	case Word:
		return DecodeWord(r.order, r.mem[offset:]), true
	default:
		return 0, false
	}
}

func (r *RAM) Write(offset uint32, size int, value uint32) bool {
	if offset+uint32(size) > uint32(len(r.mem)) {
		return false
	}
	switch size {
	case Byte:
		r.mem[offset] = byte(value)
	case Half:
		EncodeHalf(r.order, r.mem[offset:], uint16(value))
	case Word:
		EncodeWord(r.order, r.mem[offset:], value)
	default:
		return false
	}
	return true
}

// Bytes exposes the backing array for bulk load (ROM boot image copy into
// RAM-backed test fixtures) and the monitor's memory dump command.
func (r *RAM) Bytes() []byte { return r.mem }
