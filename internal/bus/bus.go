/*
 * r3000 - Physical memory map
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

import (
	"fmt"
	"sort"

	"github.com/rcornwell/r3000/internal/trace"
)

// ErrBus is returned by Bus.Read/Write when no range covers the requested
// access, or the access straddles the end of the owning range. The MMU
// turns this into IBE (fetch) or DBE (load/store).
type ErrBus struct {
	Addr uint32
	Size int
}

func (e *ErrBus) Error() string {
	return fmt.Sprintf("bus error at %#08x (size %d)", e.Addr, e.Size)
}

type region struct {
	base   uint32
	length uint32
	dev    Device
}

// Bus is the ordered, non-overlapping set of physical ranges a machine
// maps devices into.
type Bus struct {
	regions []region
}

// New returns an empty physical bus.
func New() *Bus {
	return &Bus{}
}

// Map installs dev at [base, base+length). It is a ConfigError (reported
// by the caller, usually the machine driver at startup) for the range to
// overlap an existing one.
func (b *Bus) Map(base, length uint32, dev Device) error {
	if length == 0 {
		return fmt.Errorf("bus: zero-length map for %s", dev.Name())
	}
	end := base + length
	for _, r := range b.regions {
		rend := r.base + r.length
		if base < rend && r.base < end {
			return fmt.Errorf("bus: %s at %#08x overlaps %s at %#08x", dev.Name(), base, r.dev.Name(), r.base)
		}
	}
	b.regions = append(b.regions, region{base: base, length: length, dev: dev})
	sort.Slice(b.regions, func(i, j int) bool { return b.regions[i].base < b.regions[j].base })
	return nil
}

// find locates the region containing addr, or nil.
func (b *Bus) find(addr uint32) *region {
	i := sort.Search(len(b.regions), func(i int) bool {
		return b.regions[i].base+b.regions[i].length > addr
	})
	if i < len(b.regions) && b.regions[i].base <= addr {
		return &b.regions[i]
	}
	return nil
}

// Read fetches size (1/2/4) bytes at physical addr.
func (b *Bus) Read(addr uint32, size int) (uint32, error) {
	r := b.find(addr)
	if r == nil || addr+uint32(size) > r.base+r.length {
		return 0, &ErrBus{Addr: addr, Size: size}
	}
	v, ok := r.dev.Read(addr-r.base, size)
	if !ok {
		return 0, &ErrBus{Addr: addr, Size: size}
	}
	return v, nil
}

// Write stores size (1/2/4) bytes at physical addr.
func (b *Bus) Write(addr uint32, size int, value uint32) error {
	r := b.find(addr)
	if r == nil || addr+uint32(size) > r.base+r.length {
		return &ErrBus{Addr: addr, Size: size}
	}
	if !r.dev.Write(addr-r.base, size, value) {
		return &ErrBus{Addr: addr, Size: size}
	}
	trace.Tracef(trace.Bus, "write dev=%s addr=%#08x size=%d value=%#x", r.dev.Name(), addr, size, value)
	return nil
}

// DeviceAt returns the device mapped at addr, if any, for monitor/debug
// stub memory inspection that bypasses device semantics.
func (b *Bus) DeviceAt(addr uint32) (Device, uint32, bool) {
	r := b.find(addr)
	if r == nil {
		return nil, 0, false
	}
	return r.dev, addr - r.base, true
}
