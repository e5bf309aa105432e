// Package trace parses and replays allocation traces.
//
// A trace is a text file with one request per line:
//
//	a <id> <size>   Malloc(size), remembered as id
//	f <id>          Free the block remembered as id
//	r <id> <size>   Realloc the block remembered as id
//
// Blank lines and lines starting with '#' are ignored. Ids are arbitrary
// non-negative integers; an id may be reused once its block is freed.
// Allocating an id that still holds a block is a syntax error.
package trace

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/internal/logger"
)

// Kind identifies a trace request.
type Kind byte

const (
	Malloc  Kind = 'a'
	Free    Kind = 'f'
	Realloc Kind = 'r'
)

func (k Kind) String() string {
	switch k {
	case Malloc:
		return "malloc"
	case Free:
		return "free"
	case Realloc:
		return "realloc"
	default:
		return fmt.Sprintf("Kind(%q)", byte(k))
	}
}

// Op is one parsed trace request.
type Op struct {
	Kind Kind
	ID   int
	Size int
	Line int // 1-based source line
}

var (
	// ErrSyntax indicates a malformed trace line.
	ErrSyntax = errors.New("trace: syntax error")

	// ErrUnknownID indicates a free or realloc of an id with no live block.
	ErrUnknownID = errors.New("trace: unknown id")
)

// Parse reads a trace from r.
func Parse(r io.Reader) ([]Op, error) {
	var ops []Op
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		op, err := parseLine(text, line)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("trace: read: %w", err)
	}
	return ops, nil
}

func parseLine(text string, line int) (Op, error) {
	fields := strings.Fields(text)
	if len(fields[0]) != 1 {
		return Op{}, fmt.Errorf("%w: line %d: unknown request %q", ErrSyntax, line, fields[0])
	}

	op := Op{Kind: Kind(fields[0][0]), Line: line}
	want := 3
	switch op.Kind {
	case Malloc, Realloc:
	case Free:
		want = 2
	default:
		return Op{}, fmt.Errorf("%w: line %d: unknown request %q", ErrSyntax, line, fields[0])
	}
	if len(fields) != want {
		return Op{}, fmt.Errorf("%w: line %d: %s takes %d arguments, got %d",
			ErrSyntax, line, op.Kind, want-1, len(fields)-1)
	}

	id, err := strconv.Atoi(fields[1])
	if err != nil || id < 0 {
		return Op{}, fmt.Errorf("%w: line %d: bad id %q", ErrSyntax, line, fields[1])
	}
	op.ID = id

	if want == 3 {
		size, err := strconv.Atoi(fields[2])
		if err != nil {
			return Op{}, fmt.Errorf("%w: line %d: bad size %q", ErrSyntax, line, fields[2])
		}
		op.Size = size
	}
	return op, nil
}

// Result summarises a replay.
type Result struct {
	Ops      int // Requests executed
	Failures int // Malloc/Realloc requests that returned an error
	Live     int // Ids still holding a block at the end
}

// Options controls Replay.
type Options struct {
	// Check runs the allocator's full consistency check after every request
	// and stops at the first violation.
	Check bool

	// After, when set, is called after every request.
	After func(i int, op Op) error
}

// Replay executes ops against a, mapping trace ids to live pointers.
//
// Allocation failures are counted and the trace continues. A free that
// faults is converted from a panic into an error, and replay stops.
func Replay(a *alloc.Allocator, ops []Op, opts Options) (Result, error) {
	r := NewReplayer(a)
	for i, op := range ops {
		if err := r.Step(op); err != nil {
			return r.Result(), err
		}

		if opts.Check {
			if err := a.Check(); err != nil {
				return r.Result(), fmt.Errorf("line %d (%s %d): heap check: %w", op.Line, op.Kind, op.ID, err)
			}
		}
		if opts.After != nil {
			if err := opts.After(i, op); err != nil {
				return r.Result(), err
			}
		}
	}
	return r.Result(), nil
}

// Replayer applies trace requests one at a time.
type Replayer struct {
	a    *alloc.Allocator
	live map[int]alloc.Ptr
	res  Result
}

// NewReplayer returns a Replayer driving a.
func NewReplayer(a *alloc.Allocator) *Replayer {
	return &Replayer{a: a, live: make(map[int]alloc.Ptr)}
}

// Result returns the counters so far.
func (r *Replayer) Result() Result {
	res := r.res
	res.Live = len(r.live)
	return res
}

// Ptr returns the live pointer for a trace id.
func (r *Replayer) Ptr(id int) (alloc.Ptr, bool) {
	p, ok := r.live[id]
	return p, ok
}

// Step executes one request. Allocation failures are counted, not returned.
func (r *Replayer) Step(op Op) (err error) {
	switch op.Kind {
	case Malloc:
		if _, live := r.live[op.ID]; live {
			return fmt.Errorf("%w: line %d: malloc %d: id is still live", ErrSyntax, op.Line, op.ID)
		}
		p, _, merr := r.a.Malloc(op.Size)
		if merr != nil {
			r.res.Failures++
			logger.Debug("trace malloc failed", "line", op.Line, "id", op.ID, "size", op.Size, "err", merr)
			break
		}
		if p != alloc.Nil {
			r.live[op.ID] = p
		}

	case Free:
		p, ok := r.live[op.ID]
		if !ok {
			return fmt.Errorf("%w: line %d: free %d", ErrUnknownID, op.Line, op.ID)
		}
		defer func() {
			if rec := recover(); rec != nil {
				fault, isFault := rec.(*alloc.Fault)
				if !isFault {
					panic(rec)
				}
				err = fmt.Errorf("line %d: %w", op.Line, fault)
			}
		}()
		r.a.Free(p)
		delete(r.live, op.ID)

	case Realloc:
		p, ok := r.live[op.ID]
		if !ok {
			return fmt.Errorf("%w: line %d: realloc %d", ErrUnknownID, op.Line, op.ID)
		}
		np, _, rerr := r.a.Realloc(p, op.Size)
		switch {
		case rerr != nil:
			r.res.Failures++
			logger.Debug("trace realloc failed", "line", op.Line, "id", op.ID, "size", op.Size, "err", rerr)
		case np == alloc.Nil:
			delete(r.live, op.ID)
		default:
			r.live[op.ID] = np
		}

	default:
		return fmt.Errorf("%w: line %d: unknown request %s", ErrSyntax, op.Line, op.Kind)
	}

	r.res.Ops++
	return nil
}
