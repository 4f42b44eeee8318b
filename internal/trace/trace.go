/*
 * r3000 - Leveled instruction/bus trace
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

// Package trace implements a leveled instruction/bus/tlb/mmu log, gated
// per module so a caller can enable only the categories it cares about.
package trace

import (
	"fmt"
	"io"
	"os"
)

// Module trace bits.
const (
	CPU = 1 << iota
	MMU
	TLB
	Bus
)

var moduleOption = map[string]int{
	"cpu": CPU,
	"mmu": MMU,
	"tlb": TLB,
	"bus": Bus,
}

var (
	mask int
	out  io.Writer = os.Stderr
)

// Enable turns on tracing for a comma-style list of module names; "all"
// enables every module.
func Enable(modules ...string) {
	for _, m := range modules {
		if m == "all" {
			mask = CPU | MMU | TLB | Bus
			return
		}
		if bit, ok := moduleOption[m]; ok {
			mask |= bit
		}
	}
}

// SetOutput redirects trace output, used by tests to capture it.
func SetOutput(w io.Writer) {
	out = w
}

// Tracef writes a trace line for module if it is enabled.
func Tracef(module int, format string, a ...interface{}) {
	if (mask & module) == 0 {
		return
	}
	fmt.Fprintf(out, format+"\n", a...)
}
