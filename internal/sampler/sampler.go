package sampler

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/emrzvv/rcg/internal/density"
	"github.com/emrzvv/rcg/internal/envelope"
	"github.com/emrzvv/rcg/internal/model"
)

type Settings struct {
	MaxProposals int // потолок предложений на одно принятое значение
	BatchSize    int // сколько предложений генерировать за раз
}

func DefaultSettings() Settings {
	return Settings{MaxProposals: 100_000, BatchSize: 64}
}

func (s Settings) Validate() error {
	if s.MaxProposals <= 0 {
		return model.DomainError("sampler.Settings", "max proposals must be > 0, got %d", s.MaxProposals)
	}
	if s.BatchSize <= 0 {
		return model.DomainError("sampler.Settings", "batch size must be > 0, got %d", s.BatchSize)
	}
	return nil
}

// Batch is an ordered set of accepted draws.
type Batch struct {
	Values     []float64
	Proposals  int
	Violations int // предложения, где f > M*g (не должно случаться)
}

func (b Batch) AcceptanceRate() float64 {
	if b.Proposals == 0 {
		return 0
	}
	return float64(len(b.Values)) / float64(b.Proposals)
}

// Sampler draws exact variates of the ratio by rejection from an envelope.
type Sampler struct {
	engine   *density.Engine
	spec     *envelope.Spec
	settings Settings
}

func New(e *density.Engine, spec *envelope.Spec, s Settings) (*Sampler, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if spec == nil || spec.Envelope == nil || !(spec.M > 0) {
		return nil, model.EnvelopeError("sampler.New", "missing envelope", nil).WithParams(e.Params())
	}
	return &Sampler{engine: e, spec: spec, settings: s}, nil
}

func (s *Sampler) Spec() *envelope.Spec { return s.spec }
func (s *Sampler) Settings() Settings   { return s.settings }

// WithSettings returns a sampler sharing the engine and envelope.
func (s *Sampler) WithSettings(set Settings) (*Sampler, error) {
	return New(s.engine, s.spec, set)
}

type proposal struct {
	y, u float64
}

// stream hands out proposals generated BatchSize at a time.
type stream struct {
	s   *Sampler
	src rand.Source
	buf []proposal
	pos int
}

func (st *stream) next() (proposal, error) {
	if st.pos == len(st.buf) {
		st.buf = st.buf[:0]
		unif := distuv.Uniform{Min: 0, Max: 1, Src: st.src}
		for i := 0; i < st.s.settings.BatchSize; i++ {
			y, err := st.s.spec.Envelope.Rand(st.src)
			if err != nil {
				return proposal{}, err
			}
			st.buf = append(st.buf, proposal{y: y, u: unif.Rand()})
		}
		st.pos = 0
	}
	p := st.buf[st.pos]
	st.pos++
	return p, nil
}

// accept reports u <= f(y) / (M g(y)) and whether the envelope failed to
// dominate at y.
func (s *Sampler) accept(p proposal) (ok, violated bool, err error) {
	if !(p.y > 0) || math.IsInf(p.y, 1) {
		return false, false, nil
	}
	lf, err := s.engine.LogPDF(p.y)
	if err != nil {
		return false, false, err
	}
	if math.IsInf(lf, -1) {
		return false, false, nil
	}
	lr := lf - s.spec.LogM - s.spec.Envelope.LogPDF(p.y)
	return math.Log(p.u) <= lr, lr > 1e-9, nil
}

func (s *Sampler) draw(st *stream, b *Batch) (float64, error) {
	for i := 0; i < s.settings.MaxProposals; i++ {
		p, err := st.next()
		if err != nil {
			return 0, err
		}
		b.Proposals++
		ok, violated, err := s.accept(p)
		if err != nil {
			return 0, err
		}
		if violated {
			b.Violations++
		}
		if ok {
			return p.y, nil
		}
	}
	return 0, model.ExhaustedError("sampler.Draw", s.settings.MaxProposals).WithParams(s.engine.Params())
}

// Draw returns one accepted value and the proposals it took.
func (s *Sampler) Draw(src rand.Source) (float64, int, error) {
	if src == nil {
		return 0, 0, model.DomainError("sampler.Draw", "nil random source")
	}
	set := s.settings
	set.BatchSize = 1
	one := &Sampler{engine: s.engine, spec: s.spec, settings: set}
	var b Batch
	y, err := one.draw(&stream{s: one, src: src}, &b)
	return y, b.Proposals, err
}

// Sample draws n values from one stream; a fixed seed reproduces the batch.
func (s *Sampler) Sample(n int, src rand.Source) (Batch, error) {
	if n < 0 {
		return Batch{}, model.DomainError("sampler.Sample", "n must be >= 0, got %d", n)
	}
	if src == nil {
		return Batch{}, model.DomainError("sampler.Sample", "nil random source")
	}
	b := Batch{Values: make([]float64, 0, n)}
	st := &stream{s: s, src: src, buf: make([]proposal, 0, s.settings.BatchSize)}
	for len(b.Values) < n {
		y, err := s.draw(st, &b)
		if err != nil {
			return b, err
		}
		b.Values = append(b.Values, y)
	}
	return b, nil
}
