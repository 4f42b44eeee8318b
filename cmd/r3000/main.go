/*
 * r3000 - Main process
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

package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	getopt "github.com/pborman/getopt/v2"

	"github.com/rcornwell/r3000/internal/bus"
	"github.com/rcornwell/r3000/internal/debugstub"
	"github.com/rcornwell/r3000/internal/logger"
	"github.com/rcornwell/r3000/internal/machine"
	"github.com/rcornwell/r3000/internal/monitor"
	"github.com/rcornwell/r3000/internal/trace"
)

var log *slog.Logger

func main() {
	os.Exit(run())
}

func run() int {
	optDebug := getopt.BoolLong("debug", 'd', "Enable the remote GDB debug stub")
	optDebugAddr := getopt.StringLong("debug-addr", 0, "127.0.0.1:9001", "Debug stub listen address")
	optRAMSize := getopt.Uint32Long("ram-size", 0, 1024, "RAM size in KB")
	optHaltAddr := getopt.Uint32Long("halt-addr", 0, 0, "Halt device physical address")
	optROMAddr := getopt.Uint32Long("rom-addr", 0, machine.DefaultROMAddr, "ROM physical load address")
	optTrace := getopt.BoolLong("trace", 't', "Instruction trace to stderr")
	optBig := getopt.BoolLong("big-endian", 0, "Force big-endian")
	optLittle := getopt.BoolLong("little-endian", 0, "Force little-endian")
	optLogFile := getopt.StringLong("log", 'l', "", "Log file")
	optHelp := getopt.BoolLong("help", 'h', "Help")
	getopt.Parse()

	if *optHelp {
		getopt.Usage()
		return 0
	}

	// file stays a nil io.Writer (not a typed-nil *os.File) when no log
	// file is requested, so logger.Handler's "out != nil" check works.
	var file io.Writer
	if *optLogFile != "" {
		f, err := os.Create(*optLogFile)
		if err != nil {
			fmt.Fprintln(os.Stderr, "log file: "+err.Error())
			return 3
		}
		file = f
	}
	programLevel := new(slog.LevelVar)
	if *optTrace {
		programLevel.Set(slog.LevelDebug)
		trace.Enable("cpu", "mmu", "tlb", "bus")
	} else {
		programLevel.Set(slog.LevelInfo)
	}
	log = slog.New(logger.NewHandler(file, &slog.HandlerOptions{Level: programLevel}, *optTrace))
	slog.SetDefault(log)

	args := getopt.Args()
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: r3000 [flags] <rom-image>")
		return 3
	}
	romPath := args[0]

	image, err := os.ReadFile(romPath)
	if err != nil {
		log.Error("reading ROM image", "err", err)
		return 3
	}

	endian := endianFor(romPath, *optBig, *optLittle)

	m, err := machine.New(machine.Config{
		ROMImage: image,
		ROMAddr:  uint32(*optROMAddr),
		RAMSize:  *optRAMSize * 1024,
		HaltAddr: uint32(*optHaltAddr),
		Endian:   endian,
	})
	if err != nil {
		log.Error("config error", "err", err)
		return 3
	}
	log.Info("machine configured", "config", m.String())

	if *optDebug {
		stub := debugstub.New(*optDebugAddr, m.Master())
		if err := stub.Start(); err != nil {
			log.Error("debug stub", "err", err)
			return 3
		}
		defer stub.Stop()
	} else {
		go monitor.New(m.Master()).Run()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan int, 1)
	go func() { done <- m.Run() }()

	select {
	case code := <-done:
		return code
	case <-sigChan:
		log.Info("interrupted")
		return 130 // conventional SIGINT exit code; the process is tearing down regardless
	}
}

// endianFor resolves the machine's byte order: an explicit flag wins,
// otherwise a `_be`/`_le` filename hint, defaulting to little-endian (the
// common R3000 board convention) if neither is present.
func endianFor(path string, big, little bool) bus.Endian {
	switch {
	case big:
		return bus.BigEndian
	case little:
		return bus.LittleEndian
	case strings.Contains(path, "_be"):
		return bus.BigEndian
	case strings.Contains(path, "_le"):
		return bus.LittleEndian
	default:
		return bus.LittleEndian
	}
}
