package inter

import (
	"context"
	"fmt"
	"io"
	"math/big"
	"slices"

	"github.com/rs/zerolog"

	"rui/bytecode"
)

type thread struct {
	reg    *big.Int
	line   int
	offset int
}

func newThread(line int) *thread {
	return &thread{reg: new(big.Int), line: line}
}

// ThreadState is a copy of a thread's state, in scheduling order.
type ThreadState struct {
	Register *big.Int
	Line     int // 0-based
	Offset   int
}

type Options struct {
	Mode   Mode
	Input  Input     // defaults to an empty Queue
	Output io.Writer // defaults to io.Discard
	// Log receives one debug event per executed instruction.
	Log *zerolog.Logger
	// MaxTicks stops the run with ErrTickLimit; 0 means no limit.
	MaxTicks uint64
	// MaxThreads bounds active plus pending threads. Spawning past it fails
	// with ErrTooManyThreads; 0 means DefaultMaxThreads.
	MaxThreads int
}

const DefaultMaxThreads = 1 << 20

type Stats struct {
	Ticks        uint64
	Instructions uint64
	PeakThreads  int
}

// Interpreter runs a Program on a round-robin scheduler. Each tick every
// active thread executes exactly one instruction in list order; threads
// spawned during a tick join the end of the list when the tick is over.
type Interpreter struct {
	Program bytecode.Program

	mode       Mode
	input      Input
	out        io.Writer
	log        *zerolog.Logger
	maxTicks   uint64
	maxThreads int

	threads []*thread
	spawned []*thread
	stats   Stats
}

func NewInterpreter(program bytecode.Program, opts Options) *Interpreter {
	in := &Interpreter{
		Program:    program,
		mode:       opts.Mode,
		input:      opts.Input,
		out:        opts.Output,
		log:        opts.Log,
		maxTicks:   opts.MaxTicks,
		maxThreads: opts.MaxThreads,
		threads:    []*thread{newThread(0)},
	}
	if in.maxThreads <= 0 {
		in.maxThreads = DefaultMaxThreads
	}
	if in.input == nil {
		in.input = NewQueue()
	}
	if in.out == nil {
		in.out = io.Discard
	}
	in.stats.PeakThreads = 1
	return in
}

// Run executes ticks until no thread is left, an instruction fails or ctx
// is done.
func (in *Interpreter) Run(ctx context.Context) error {
	for !in.Done() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if in.maxTicks > 0 && in.stats.Ticks >= in.maxTicks {
			return fmt.Errorf("%w: %d", ErrTickLimit, in.maxTicks)
		}
		if err := in.Tick(); err != nil {
			return err
		}
	}
	return nil
}

func (in *Interpreter) Done() bool {
	return len(in.threads) == 0
}

// Tick walks the active list once.
func (in *Interpreter) Tick() error {
	in.stats.Ticks++
	for pos := 0; pos < len(in.threads); {
		t := in.threads[pos]
		if !in.resolve(t) {
			in.threads = slices.Delete(in.threads, pos, pos+1)
			continue
		}
		line, offset := t.line, t.offset
		ins, _ := in.Program.At(line, offset)
		t.offset++
		in.trace(pos, t, line, offset, ins)

		next, err := in.step(pos, t, ins)
		if err != nil {
			return &RuntimeError{Err: err, Tick: in.stats.Ticks, Line: line, Offset: offset, Instruction: ins}
		}
		in.stats.Instructions++
		pos = next
	}

	in.threads = append(in.threads, in.spawned...)
	clear(in.spawned)
	in.spawned = in.spawned[:0]
	in.stats.PeakThreads = max(in.stats.PeakThreads, len(in.threads))
	return nil
}

// resolve moves t past the end of its line, skipping empty lines. It
// reports false when t has run off the end of the program.
func (in *Interpreter) resolve(t *thread) bool {
	lines := in.Program.Lines
	if t.line >= len(lines) {
		return false
	}
	if t.offset < len(lines[t.line]) {
		return true
	}
	t.offset = 0
	t.line++
	for t.line < len(lines) && len(lines[t.line]) == 0 {
		t.line++
	}
	return t.line < len(lines)
}

// step executes ins for the thread at pos and returns the position of the
// next thread to run.
func (in *Interpreter) step(pos int, t *thread, ins bytecode.Instruction) (int, error) {
	switch ins.Op {
	case bytecode.Set:
		t.reg.Set(ins.Value)
	case bytecode.Spawn:
		line, err := in.target(ins.Value)
		if err != nil {
			return pos, err
		}
		if err := in.reserve(big.NewInt(1)); err != nil {
			return pos, err
		}
		in.spawned = append(in.spawned, newThread(line))
	case bytecode.SpawnMulti:
		line, err := in.target(ins.Value)
		if err != nil {
			return pos, err
		}
		if err := in.reserve(t.reg); err != nil {
			return pos, err
		}
		for i, n := 0, int(t.reg.Int64()); i < n; i++ {
			in.spawned = append(in.spawned, newThread(line))
		}
	case bytecode.Kill:
		return in.kill(pos, ins.Value), nil
	case bytecode.Jump:
		line, err := in.target(ins.Value)
		if err != nil {
			return pos, err
		}
		t.line, t.offset = line, 0
	case bytecode.Read:
		v, err := in.input.Next()
		if err != nil {
			return pos, err
		}
		t.reg.Set(v)
	case bytecode.Write:
		s, err := in.mode.Format(t.reg)
		if err != nil {
			return pos, err
		}
		if _, err := io.WriteString(in.out, s); err != nil {
			return pos, fmt.Errorf("write output: %w", err)
		}
	case bytecode.Halt:
		in.threads = slices.Delete(in.threads, pos, pos+1)
		return pos, nil
	case bytecode.Sleep:
	case bytecode.GlobalAdd:
		for i, other := range in.threads {
			if i != pos {
				other.reg.Add(other.reg, t.reg)
			}
		}
	case bytecode.GlobalSubtract:
		for i, other := range in.threads {
			if i == pos {
				continue
			}
			if other.reg.Cmp(t.reg) <= 0 {
				other.reg.SetUint64(0)
			} else {
				other.reg.Sub(other.reg, t.reg)
			}
		}
	default:
		return pos, fmt.Errorf("unknown instruction %s", ins.Op)
	}
	return pos + 1, nil
}

// kill removes every thread except the one at pos whose register equals v,
// stores the number removed in the killer's register and returns the
// position after the killer in the compacted list.
func (in *Interpreter) kill(pos int, v *big.Int) int {
	self := in.threads[pos]
	kept := make([]*thread, 0, len(in.threads))
	removed, before := 0, 0
	for i, other := range in.threads {
		if i != pos && other.reg.Cmp(v) == 0 {
			removed++
			if i < pos {
				before++
			}
			continue
		}
		kept = append(kept, other)
	}
	in.threads = kept
	self.reg.SetInt64(int64(removed))
	return pos - before + 1
}

// target converts a 1-based line number into a line index.
func (in *Interpreter) target(l *big.Int) (int, error) {
	if l.Sign() <= 0 || !l.IsInt64() || l.Int64() > int64(len(in.Program.Lines)) {
		return 0, fmt.Errorf("%w: %s", ErrInvalidTarget, l)
	}
	return int(l.Int64()) - 1, nil
}

// reserve checks that n more threads fit under the thread limit.
func (in *Interpreter) reserve(n *big.Int) error {
	room := int64(in.maxThreads - len(in.threads) - len(in.spawned))
	if n.Cmp(big.NewInt(room)) > 0 {
		return fmt.Errorf("%w: %s more would exceed %d", ErrTooManyThreads, n, in.maxThreads)
	}
	return nil
}

func (in *Interpreter) Stats() Stats {
	return in.stats
}

// Threads returns a snapshot of the active threads.
func (in *Interpreter) Threads() []ThreadState {
	states := make([]ThreadState, len(in.threads))
	for i, t := range in.threads {
		states[i] = ThreadState{Register: new(big.Int).Set(t.reg), Line: t.line, Offset: t.offset}
	}
	return states
}

// Pending returns the number of threads waiting to join at the next tick.
func (in *Interpreter) Pending() int {
	return len(in.spawned)
}
