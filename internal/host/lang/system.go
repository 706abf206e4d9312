package lang

import (
	"fmt"
	"io"
	"math"
	"math/rand"
	"sync"
	"time"
)

// PrintStream is System.out / System.err.
type PrintStream struct {
	mu sync.Mutex
	w  io.Writer
}

func NewPrintStream(w io.Writer) *PrintStream { return &PrintStream{w: w} }

func (p *PrintStream) write(s string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	io.WriteString(p.w, s)
}

// Println prints its arguments separated by nothing, then a newline.
func (p *PrintStream) Println(args ...any) { p.write(joinArgs(args) + "\n") }
func (p *PrintStream) Print(args ...any)   { p.write(joinArgs(args)) }
func (p *PrintStream) Flush()              {}

func (p *PrintStream) Printf(format string, args ...any) (*PrintStream, error) {
	s, err := Format(format, args...)
	if err != nil {
		return nil, err
	}
	p.write(s)
	return p, nil
}

func joinArgs(args []any) string {
	s := ""
	for _, a := range args {
		s += ToString(a)
	}
	return s
}

var startTime = time.Now()

func currentTimeMillis() int64 { return time.Now().UnixMilli() }
func nanoTime() int64          { return int64(time.Since(startTime)) }

func identityHashCode(v any) int32 { return HashCode(v) }

// Math functions, overloaded per primitive kind where Java overloads them.
func mathStatics() map[string][]any {
	return map[string][]any{
		"abs": {
			func(x int32) int32 {
				if x < 0 {
					return -x
				}
				return x
			},
			func(x int64) int64 {
				if x < 0 {
					return -x
				}
				return x
			},
			func(x float32) float32 { return float32(math.Abs(float64(x))) },
			math.Abs,
		},
		"max": {
			func(a, b int32) int32 { return max(a, b) },
			func(a, b int64) int64 { return max(a, b) },
			func(a, b float32) float32 { return float32(math.Max(float64(a), float64(b))) },
			math.Max,
		},
		"min": {
			func(a, b int32) int32 { return min(a, b) },
			func(a, b int64) int64 { return min(a, b) },
			func(a, b float32) float32 { return float32(math.Min(float64(a), float64(b))) },
			math.Min,
		},
		"pow":   {math.Pow},
		"sqrt":  {math.Sqrt},
		"cbrt":  {math.Cbrt},
		"floor": {math.Floor},
		"ceil":  {math.Ceil},
		"round": {
			func(x float32) int32 { return int32(math.Floor(float64(x) + 0.5)) },
			func(x float64) int64 { return int64(math.Floor(x + 0.5)) },
		},
		"sin":    {math.Sin},
		"cos":    {math.Cos},
		"tan":    {math.Tan},
		"atan2":  {math.Atan2},
		"exp":    {math.Exp},
		"log":    {math.Log},
		"log10":  {math.Log10},
		"hypot":  {math.Hypot},
		"signum": {func(x float64) float64 { return float64(cmpFloat(x)) }},
		"random": {rand.Float64},
		"floorDiv": {func(a, b int64) (int64, error) {
			if b == 0 {
				return 0, NewArithmeticException("/ by zero")
			}
			q := a / b
			if (a%b != 0) && ((a < 0) != (b < 0)) {
				q--
			}
			return q, nil
		}},
	}
}

func cmpFloat(x float64) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}

// Thread runs a Runnable on its own goroutine.
type Thread struct {
	target Runnable
	done   chan struct{}
	once   sync.Once
	name   string

	mu      sync.Mutex
	started bool
	failure any
}

var threadSeq struct {
	sync.Mutex
	n int
}

func NewThread(target Runnable) *Thread {
	threadSeq.Lock()
	threadSeq.n++
	n := threadSeq.n
	threadSeq.Unlock()
	return &Thread{target: target, done: make(chan struct{}), name: fmt.Sprintf("Thread-%d", n)}
}

func (t *Thread) Run() {
	if t.target != nil {
		t.target.Run()
	}
}

// Start runs the target concurrently; a failure is kept for Join.
func (t *Thread) Start() error {
	started := false
	t.once.Do(func() {
		started = true
		t.mu.Lock()
		t.started = true
		t.mu.Unlock()
		go func() {
			defer close(t.done)
			defer func() {
				if r := recover(); r != nil {
					t.mu.Lock()
					t.failure = r
					t.mu.Unlock()
				}
			}()
			t.Run()
		}()
	})
	if !started {
		return NewIllegalStateException("thread already started")
	}
	return nil
}

// Join waits for the thread to finish and reports an error the target failed with.
func (t *Thread) Join() error {
	t.mu.Lock()
	started := t.started
	t.mu.Unlock()
	if !started {
		return nil
	}
	<-t.done
	t.mu.Lock()
	defer t.mu.Unlock()
	switch f := t.failure.(type) {
	case nil:
		return nil
	case error:
		return f
	default:
		return NewRuntimeException(fmt.Sprint(f))
	}
}

func (t *Thread) GetName() string { return t.name }

func (t *Thread) IsAlive() bool {
	select {
	case <-t.done:
		return false
	default:
		return true
	}
}

func sleep(ms int64) { time.Sleep(time.Duration(ms) * time.Millisecond) }
