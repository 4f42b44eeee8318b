/*
 * r3000 - Physical bus device interface
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

// Package bus implements the physical address map: a set of non-overlapping
// ranges, each owned by a Device, routing word-aligned big- or
// little-endian accesses to whichever device's window contains the
// address.
package bus

// Device is anything that can live on the physical bus: RAM, ROM, or a
// memory-mapped register.
type Device interface {
	Name() string                                  // Device name, for diagnostics.
	Size() uint32                                   // Size of the device's address window in bytes.
	Read(offset uint32, size int) (uint32, bool)    // Read size (1/2/4) bytes at offset; false on failure.
	Write(offset uint32, size int, value uint32) bool // Write size (1/2/4) bytes at offset; false on failure.
}

// Sizes accepted by Read/Write.
const (
	Byte int = 1
	Half int = 2
	Word int = 4
)
