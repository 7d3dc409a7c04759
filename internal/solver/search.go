package solver

import (
	"context"
	"fmt"
	"runtime"
	"slices"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"
)

// DefaultMinLength is the shortest word a solve reports unless configured otherwise.
const DefaultMinLength = 3

var tracer = otel.Tracer("github.com/bodul/wordhunt/internal/solver")

// Solver finds every dictionary word on a board. A Solver holds no per-solve
// state and may be shared between goroutines.
type Solver struct {
	dict      *Dictionary
	minLength int
	workers   int
}

// Option configures a Solver.
type Option func(*Solver)

// WithMinLength sets the shortest word reported. Values below three have no
// effect in practice since dictionaries never hold shorter words.
func WithMinLength(n int) Option {
	return func(s *Solver) {
		if n > 0 {
			s.minLength = n
		}
	}
}

// WithWorkers bounds the number of root searches running at once.
// Zero or less means GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(s *Solver) {
		if n > 0 {
			s.workers = n
		}
	}
}

// New returns a Solver over dict.
func New(dict *Dictionary, opts ...Option) *Solver {
	s := &Solver{
		dict:      dict,
		minLength: DefaultMinLength,
		workers:   runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// With returns a copy of s with opts applied on top of its settings.
func (s *Solver) With(opts ...Option) *Solver {
	cp := *s
	for _, opt := range opts {
		opt(&cp)
	}
	return &cp
}

// MinLength returns the configured minimum word length.
func (s *Solver) MinLength() int { return s.minLength }

// Solve normalizes raw and returns every word found on it, deduplicated and
// ordered by score. A grid without matches yields an empty slice and no error.
func (s *Solver) Solve(ctx context.Context, raw [][]string) ([]Result, error) {
	ctx, span := tracer.Start(ctx, "solver.Solve")
	defer span.End()

	if s.dict == nil {
		span.SetStatus(codes.Error, ErrDictionaryUnavailable.Error())
		return nil, ErrDictionaryUnavailable
	}

	board, err := NormalizeBoard(raw)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("board.rows", board.Rows()),
		attribute.Int("board.cols", board.Cols()),
		attribute.Int("solver.workers", s.workers),
		attribute.Int("solver.min_length", s.minLength),
	)

	// One slot per root, filled independently and merged in row-major order
	// so the kept path does not depend on scheduling.
	roots := board.Rows() * board.Cols()
	found := make([]*Aggregator, roots)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i := range roots {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			w := newWalker(board, s.dict, s.minLength)
			w.walk(Position{Row: i / board.Cols(), Col: i % board.Cols()}, "")
			found[i] = w.found
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("solve: %w", err)
	}

	all := NewAggregator()
	for _, agg := range found {
		all.Merge(agg)
	}
	results := all.Results()
	span.SetAttributes(attribute.Int("solver.results", len(results)))
	return results, nil
}

// walker is the state of one root search: visited markers, the current path
// and the words found from this root.
type walker struct {
	board     *Board
	dict      *Dictionary
	minLength int
	visited   []bool
	path      []Position
	found     *Aggregator
}

func newWalker(b *Board, dict *Dictionary, minLength int) *walker {
	return &walker{
		board:     b,
		dict:      dict,
		minLength: minLength,
		visited:   make([]bool, b.Rows()*b.Cols()),
		found:     NewAggregator(),
	}
}

func (w *walker) walk(p Position, prefix string) {
	tok := w.board.Tile(p)
	if tok == "" {
		return
	}
	candidate := prefix + tok
	isWord := w.dict.Contains(candidate)
	if !isWord && !w.dict.HasPrefix(candidate) {
		return
	}

	idx := p.Row*w.board.Cols() + p.Col
	w.visited[idx] = true
	w.path = append(w.path, p)

	if isWord && len(candidate) >= w.minLength {
		w.found.Add(Result{
			Word:  candidate,
			Path:  slices.Clone(w.path),
			Score: Score(candidate),
		})
	}

	for _, off := range neighborOffsets {
		n := Position{Row: p.Row + off[0], Col: p.Col + off[1]}
		if !w.board.InBounds(n) || w.visited[n.Row*w.board.Cols()+n.Col] {
			continue
		}
		w.walk(n, candidate)
	}

	w.path = w.path[:len(w.path)-1]
	w.visited[idx] = false
}
