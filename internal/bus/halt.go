/*
 * r3000 - Halt and trace/test devices
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

// HaltDevice is a single memory-mapped register: any write to it
// terminates the simulation. It records a cause string, which the machine
// driver passes on in its halt stop report (StopInfo.HaltCause).
type HaltDevice struct {
	name    string
	Halted  bool
	Cause   string
	onHalt  func(cause string)
}

// NewHaltDevice builds a halt register. onHalt, if non-nil, is invoked the
// instant a write lands, letting the machine driver stop the fetch-execute
// loop within the same instruction.
func NewHaltDevice(name string, onHalt func(cause string)) *HaltDevice {
	return &HaltDevice{name: name, onHalt: onHalt}
}

func (h *HaltDevice) Name() string { return h.name }
func (h *HaltDevice) Size() uint32 { return 4 }

func (h *HaltDevice) Read(_ uint32, _ int) (uint32, bool) {
	if h.Halted {
		return 1, true
	}
	return 0, true
}

func (h *HaltDevice) Write(_ uint32, _ int, value uint32) bool {
	h.Halted = true
	h.Cause = "halt device write"
	if h.onHalt != nil {
		h.onHalt(h.Cause)
	}
	_ = value
	return true
}

// TraceDevice captures writes for test assertions and returns the last
// value written on read.
type TraceDevice struct {
	name    string
	last    uint32
	History []uint32
}

// NewTraceDevice builds a trace/test register.
func NewTraceDevice(name string) *TraceDevice {
	return &TraceDevice{name: name}
}

func (t *TraceDevice) Name() string { return t.name }
func (t *TraceDevice) Size() uint32 { return 4 }

func (t *TraceDevice) Read(_ uint32, _ int) (uint32, bool) {
	return t.last, true
}

func (t *TraceDevice) Write(_ uint32, _ int, value uint32) bool {
	t.last = value
	t.History = append(t.History, value)
	return true
}
