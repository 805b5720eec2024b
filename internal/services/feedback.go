package services

import (
	"sync"

	"adbuilder/internal/interfaces"
	"adbuilder/internal/logger"
)

// LogFeedback writes user-facing messages to the log.
type LogFeedback struct {
	log *logger.Logger
}

func NewLogFeedback(log *logger.Logger) *LogFeedback {
	return &LogFeedback{log: logger.OrNop(log).With("service", "Feedback")}
}

func (f *LogFeedback) Report(kind interfaces.FeedbackKind, title, detail string) {
	if kind == interfaces.FeedbackError {
		f.log.Warn(title, "detail", detail)
		return
	}
	f.log.Info(title, "detail", detail)
}

type FeedbackEntry struct {
	Kind   interfaces.FeedbackKind `json:"kind"`
	Title  string                  `json:"title"`
	Detail string                  `json:"detail"`
}

// FeedbackCollector keeps messages for one request and forwards them to
// an optional next sink.
type FeedbackCollector struct {
	next interfaces.FeedbackSink

	mu      sync.Mutex
	entries []FeedbackEntry
	onEntry func(FeedbackEntry)
}

func NewFeedbackCollector(next interfaces.FeedbackSink) *FeedbackCollector {
	return &FeedbackCollector{next: next}
}

// OnEntry registers a callback run for every message, e.g. to stream it.
func (c *FeedbackCollector) OnEntry(fn func(FeedbackEntry)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onEntry = fn
}

func (c *FeedbackCollector) Report(kind interfaces.FeedbackKind, title, detail string) {
	e := FeedbackEntry{Kind: kind, Title: title, Detail: detail}
	c.mu.Lock()
	c.entries = append(c.entries, e)
	fn := c.onEntry
	c.mu.Unlock()

	if fn != nil {
		fn(e)
	}
	if c.next != nil {
		c.next.Report(kind, title, detail)
	}
}

func (c *FeedbackCollector) Entries() []FeedbackEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]FeedbackEntry(nil), c.entries...)
}
