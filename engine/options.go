package engine

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/cpcf/t4toolbox/postprocess"
)

type settings struct {
	id             string
	logger         *slog.Logger
	failMode       FailureMode
	postprocessors *postprocess.Chain
}

func newSettings(opts []Option) settings {
	s := settings{
		logger:         slog.Default(),
		postprocessors: postprocess.NewChain(),
	}
	for _, opt := range opts {
		opt(&s)
	}
	if s.id == "" {
		s.id = uuid.NewString()
	}
	return s
}

// Option configures a Context or an Engine.
type Option func(*settings)

func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

// WithID overrides the generated transformation identifier.
func WithID(id string) Option {
	return func(s *settings) {
		s.id = id
	}
}

// WithPostProcessor appends a processor applied to every output file before
// it is handed to the host.
func WithPostProcessor(processor postprocess.Processor) Option {
	return func(s *settings) {
		s.postprocessors.Add(processor)
	}
}

func withChain(chain *postprocess.Chain) Option {
	return func(s *settings) {
		s.postprocessors = chain
	}
}

// WithFailureMode sets how Engine.RenderAll treats failing templates.
func WithFailureMode(mode FailureMode) Option {
	return func(s *settings) {
		s.failMode = mode
	}
}
