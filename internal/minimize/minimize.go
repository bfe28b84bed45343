// Package minimize shrinks a failing input with line-based delta debugging.
//
// The input is split into lines. Each pass partitions the current lines into
// k contiguous chunks and tries to drop one of them; the oracle decides
// whether the reduced text still reproduces the finding. k starts at 2,
// doubles after a pass without success and resets to 2 after a success. The
// search ends when a pass at single-line granularity removes nothing, so the
// result is 1-minimal: dropping any one remaining line loses the finding.
package minimize

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"

	"fortio.org/safecast"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"
)

// ErrPrecondition means the original input does not reproduce the target.
var ErrPrecondition = errors.New("input does not reproduce the target diagnostic")

// DefaultCacheSize bounds the oracle memo.
const DefaultCacheSize = 4096

// Candidate is one reduced input handed to the oracle. Lines maps every kept
// line to its 1-based line number in the original input.
type Candidate struct {
	Text  string
	Lines []uint32
}

// OriginalLine translates a 1-based line of Text back to the original input.
// Out of range lines are returned unchanged.
func (c Candidate) OriginalLine(line uint32) uint32 {
	if line == 0 || int(line) > len(c.Lines) {
		return line
	}
	return c.Lines[line-1]
}

// Oracle reports whether the candidate still reproduces the finding.
type Oracle func(ctx context.Context, c Candidate) (bool, error)

// Options tune a run.
type Options struct {
	// Jobs evaluates up to Jobs chunks of one pass concurrently; <=1 is sequential.
	Jobs int
	// CacheSize of the memo; 0 means DefaultCacheSize.
	CacheSize int
	// OnStep is called after every pass.
	OnStep func(Step)
}

// Step describes a finished pass.
type Step struct {
	Granularity int
	Lines       int
	Removed     bool
}

// Result of a run. Text is the best reduction found so far even when the run
// stopped early with a context error.
type Result struct {
	Text          string
	Lines         []uint32
	OriginalLines int
	Tests         int
	CacheHits     int
}

type line struct {
	orig uint32
	text string
}

type runner struct {
	oracle Oracle
	opts   Options
	memo   *lru.Cache[string, bool]

	mu    sync.Mutex // counters are bumped from errgroup workers
	tests int
	hits  int
}

// Minimize runs ddmin over the lines of text.
func Minimize(ctx context.Context, text string, oracle Oracle, opts Options) (res Result, err error) {
	if oracle == nil {
		return Result{}, errors.New("minimize: nil oracle")
	}
	size := opts.CacheSize
	if size <= 0 {
		size = DefaultCacheSize
	}
	memo, err := lru.New[string, bool](size)
	if err != nil {
		return Result{}, fmt.Errorf("minimize: %w", err)
	}
	r := &runner{oracle: oracle, opts: opts, memo: memo}

	lines := splitLines(text)
	res.OriginalLines = len(lines)
	defer func() {
		res.Tests, res.CacheHits = r.tests, r.hits
	}()
	res.Text, res.Lines = join(lines)

	ok, err := r.test(ctx, lines)
	if err != nil {
		return res, err
	}
	if !ok {
		return res, ErrPrecondition
	}

	k := 2
	for len(lines) > 0 {
		if err := ctx.Err(); err != nil {
			res.Text, res.Lines = join(lines)
			return res, err
		}
		k = min(k, len(lines))
		chunks := partition(len(lines), k)
		idx, err := r.firstRemovable(ctx, lines, chunks)
		if err != nil {
			res.Text, res.Lines = join(lines)
			return res, err
		}
		if idx >= 0 {
			lines = without(lines, chunks[idx])
			k = 2
			r.step(Step{Granularity: len(chunks), Lines: len(lines), Removed: true})
			continue
		}
		r.step(Step{Granularity: len(chunks), Lines: len(lines)})
		if k == len(lines) {
			break
		}
		k *= 2
	}
	res.Text, res.Lines = join(lines)
	return res, nil
}

func (r *runner) step(s Step) {
	if r.opts.OnStep != nil {
		r.opts.OnStep(s)
	}
}

// firstRemovable returns the lowest chunk index whose removal keeps the
// finding, or -1. Chunks are evaluated in windows of Jobs; the first window
// containing a success decides, which gives the same answer as a sequential
// scan.
func (r *runner) firstRemovable(ctx context.Context, lines []line, chunks []span) (int, error) {
	jobs := max(r.opts.Jobs, 1)
	for base := 0; base < len(chunks); base += jobs {
		window := chunks[base:min(base+jobs, len(chunks))]
		if len(window) == 1 {
			ok, err := r.test(ctx, without(lines, window[0]))
			if err != nil {
				return -1, err
			}
			if ok {
				return base, nil
			}
			continue
		}
		results := make([]bool, len(window))
		g, gctx := errgroup.WithContext(ctx)
		for i, c := range window {
			g.Go(func() error {
				ok, err := r.test(gctx, without(lines, c))
				results[i] = ok
				return err
			})
		}
		if err := g.Wait(); err != nil {
			return -1, err
		}
		for i, ok := range results {
			if ok {
				return base + i, nil
			}
		}
	}
	return -1, nil
}

func (r *runner) test(ctx context.Context, lines []line) (bool, error) {
	c := Candidate{}
	c.Text, c.Lines = join(lines)
	key := cacheKey(c)
	if ok, hit := r.memo.Get(key); hit {
		r.count(true)
		return ok, nil
	}
	r.count(false)
	ok, err := r.oracle(ctx, c)
	if err != nil {
		return false, err
	}
	r.memo.Add(key, ok)
	return ok, nil
}

func (r *runner) count(hit bool) {
	r.mu.Lock()
	if hit {
		r.hits++
	} else {
		r.tests++
	}
	r.mu.Unlock()
}

// cacheKey covers the line mapping too: equal text from different original
// lines reports findings at different original locations.
func cacheKey(c Candidate) string {
	h := sha256.New()
	h.Write([]byte(c.Text))
	var buf [4]byte
	for _, l := range c.Lines {
		binary.LittleEndian.PutUint32(buf[:], l)
		h.Write(buf[:])
	}
	return hex.EncodeToString(h.Sum(nil))
}

type span struct{ start, end int }

// partition splits n items into k contiguous chunks whose sizes differ by at most one.
func partition(n, k int) []span {
	out := make([]span, 0, k)
	start := 0
	for i := range k {
		size := n / k
		if i < n%k {
			size++
		}
		out = append(out, span{start, start + size})
		start += size
	}
	return out
}

func without(lines []line, s span) []line {
	out := make([]line, 0, len(lines)-(s.end-s.start))
	out = append(out, lines[:s.start]...)
	return append(out, lines[s.end:]...)
}

func splitLines(text string) []line {
	if text == "" {
		return nil
	}
	parts := strings.SplitAfter(text, "\n")
	if parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	out := make([]line, len(parts))
	for i, p := range parts {
		n, err := safecast.Conv[uint32](i + 1)
		if err != nil {
			panic(fmt.Errorf("line number overflow: %w", err))
		}
		out[i] = line{orig: n, text: p}
	}
	return out
}

func join(lines []line) (string, []uint32) {
	var b strings.Builder
	nums := make([]uint32, len(lines))
	for i, l := range lines {
		b.WriteString(l.text)
		nums[i] = l.orig
	}
	return b.String(), nums
}
