package parser

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/cyp0633/icsitems/item"
	"github.com/cyp0633/icsitems/timezone"
	"github.com/emersion/go-ical"
)

// ErrNoCalendar is logged when the input holds no VCALENDAR component
var ErrNoCalendar = errors.New("no calendar component found")

// Parser materializes calendar items from parsed component trees. A Parser
// holds no per-parse state and may run several parses concurrently.
type Parser struct {
	logger   *slog.Logger
	factory  item.Factory
	reporter Reporter
}

// Option represents a configuration option for the Parser
type Option func(*Parser)

// WithLogger sets the logger for the parser
func WithLogger(logger *slog.Logger) Option {
	return func(p *Parser) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithFactory sets the factory items are created with
func WithFactory(factory item.Factory) Option {
	return func(p *Parser) {
		if factory != nil {
			p.factory = factory
		}
	}
}

// WithReporter sets the sink for timezone errors. By default they are
// logged at warn level.
func WithReporter(reporter Reporter) Option {
	return func(p *Parser) {
		if reporter != nil {
			p.reporter = reporter
		}
	}
}

// New creates a new parser
func New(opts ...Option) *Parser {
	p := &Parser{
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		factory: item.DefaultFactory{},
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.reporter == nil {
		p.reporter = logReporter{logger: p.logger}
	}
	return p
}

// ParseComponents processes roots synchronously. Every VCALENDAR among roots
// contributes to the same result; other roots are ignored.
func (p *Parser) ParseComponents(roots []*ical.Component) *Result {
	var res *Result
	p.run(roots, nil, func(r *Result) { res = r })
	return res
}

// ParseComponentsAsync dispatches the classification of every subcomponent
// onto exec and calls done exactly once, after resolution. The error passed
// to done is always nil; it exists to match ParseAsync.
func (p *Parser) ParseComponentsAsync(roots []*ical.Component, exec Executor, done func(*Result, error)) {
	if exec == nil {
		done(p.ParseComponents(roots), nil)
		return
	}
	p.run(roots, exec, func(r *Result) { done(r, nil) })
}

// Parse decodes every calendar in r and processes them synchronously.
// Decoding errors are returned as is, without any resolution work.
func (p *Parser) Parse(r io.Reader) (*Result, error) {
	roots, err := decode(r)
	if err != nil {
		return nil, err
	}
	return p.ParseComponents(roots), nil
}

// ParseAsync decodes every calendar in r, then continues like
// ParseComponentsAsync. A decoding error is passed to done instead.
func (p *Parser) ParseAsync(r io.Reader, exec Executor, done func(*Result, error)) {
	roots, err := decode(r)
	if err != nil {
		done(nil, err)
		return
	}
	p.ParseComponentsAsync(roots, exec, done)
}

func (p *Parser) run(roots []*ical.Component, exec Executor, done func(*Result)) {
	var calendars []*ical.Component
	for _, root := range roots {
		if root != nil && root.Name == ical.CompCalendar {
			calendars = append(calendars, root)
		}
	}

	st := newState()
	if len(calendars) == 0 {
		p.logger.Error("nothing to parse", "error", ErrNoCalendar)
		done(st.result())
		return
	}

	zones, err := timezone.FromCalendars(calendars)
	if err != nil {
		p.logger.Debug("skipped timezone definitions", "error", err)
	}

	c := &classifier{
		st:       st,
		factory:  p.factory,
		zones:    zones,
		reporter: p.reporter,
		logger:   p.logger,
	}
	runner := newRunner(st, c, exec, p.logger)

	for _, cal := range calendars {
		st.collectProperties(cal)
		for _, child := range cal.Children {
			runner.Submit(child)
		}
	}

	runner.Join(func() {
		st.settle(p.logger)
		p.resolve(st)
		p.logger.Debug("parse completed",
			"calendars", len(calendars),
			"items", len(st.items),
			"parentless", len(st.parentlessItems),
			"extra", len(st.extraComponents))
		done(st.result())
	})
}

// decode reads calendars until the end of r
func decode(r io.Reader) ([]*ical.Component, error) {
	dec := ical.NewDecoder(r)
	var roots []*ical.Component
	for {
		cal, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			return roots, nil
		}
		if err != nil {
			return nil, fmt.Errorf("decode calendar: %w", err)
		}
		roots = append(roots, cal.Component)
	}
}
