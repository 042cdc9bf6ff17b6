package service

import (
	"time"

	workerpool "github.com/AVSAkash/interview-assistant/internal/adapters/mq/worker"
	"github.com/AVSAkash/interview-assistant/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of completion event publishers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the completion event queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many submission claims are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSink sets where completion events are published.
func WithSink(sink workerpool.Sink) Option {
	return func(s *Service) {
		if sink != nil {
			s.sink = sink
		}
	}
}

// WithExtractor replaces the resume extractor.
func WithExtractor(e ResumeExtractor) Option {
	return func(s *Service) {
		if e != nil {
			s.extractor = e
		}
	}
}

// WithCountdown replaces the per-question countdown length.
func WithCountdown(fn func(index int) time.Duration) Option {
	return func(s *Service) {
		if fn != nil {
			s.countdown = fn
		}
	}
}

// WithClock replaces the clock used to date candidate records.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}
