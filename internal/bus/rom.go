/*
 * r3000 - ROM device
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

import "fmt"

// ROM is an immutable byte array. Writes are rejected with a bus error,
// surfaced by the MMU as DBE.
type ROM struct {
	name  string
	mem   []byte
	order Endian
}

// NewROM wraps image as a read-only device occupying len(image) bytes. The
// image's size is not limited here, nor by the machine driver that calls
// this.
func NewROM(name string, image []byte, order Endian) *ROM {
	mem := make([]byte, len(image))
	copy(mem, image)
	return &ROM{name: name, mem: mem, order: order}
}

func (r *ROM) Name() string { return r.name }
func (r *ROM) Size() uint32 { return uint32(len(r.mem)) }

func (r *ROM) Read(offset uint32, size int) (uint32, bool) {
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

func (r *ROM) Write(_ uint32, _ int, _ uint32) bool {
	return false
}

func (r *ROM) String() string {
	return fmt.Sprintf("%s (%d bytes, %s)", r.name, len(r.mem), r.order)
}
