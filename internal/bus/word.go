/*
 * r3000 - Endian-aware word codec
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

import "encoding/binary"

// Endian selects the byte order a machine uses for every multi-byte bus
// access. It is fixed at machine construction from the ROM's declared
// endianness and never varies per access.
type Endian int

const (
	BigEndian Endian = iota
	LittleEndian
)

// Order returns the stdlib codec for this endianness.
func (e Endian) Order() binary.ByteOrder {
	if e == LittleEndian {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

// String implements fmt.Stringer.
func (e Endian) String() string {
	if e == LittleEndian {
		return "little"
	}
	return "big"
}

// EncodeHalf writes a 16-bit value into buf[0:2] in e's byte order.
func EncodeHalf(e Endian, buf []byte, v uint16) {
	e.Order().PutUint16(buf, v)
}

// DecodeHalf reads a 16-bit value from buf[0:2] in e's byte order.
func DecodeHalf(e Endian, buf []byte) uint16 {
	return e.Order().Uint16(buf)
}

// EncodeWord writes a 32-bit value into buf[0:4] in e's byte order.
func EncodeWord(e Endian, buf []byte, v uint32) {
	e.Order().PutUint32(buf, v)
}

// DecodeWord reads a 32-bit value from buf[0:4] in e's byte order.
func DecodeWord(e Endian, buf []byte) uint32 {
	return e.Order().Uint32(buf)
}
