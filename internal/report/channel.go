package report

import (
	"sync/atomic"

	"tscan/internal/diag"
)

// EventKind tells which Reporter method produced an Event.
type EventKind uint8

const (
	EventErr EventKind = iota + 1
	EventOut
	EventInfo
	EventProgress
	EventStatus
)

// Event is the flattened form of a Reporter call.
type Event struct {
	Kind       EventKind
	Diag       diag.Diagnostic // EventErr, EventInfo
	Msg        string          // EventOut
	File       string          // EventProgress
	Stage      Stage
	Percent    int
	UnitIndex  int // EventStatus
	UnitCount  int
	BytesDone  int64
	BytesTotal int64
}

// Channel forwards events into a buffered channel without ever blocking: when
// the consumer is slow the event is dropped and counted.
type Channel struct {
	Ch      chan<- Event
	dropped atomic.Int64
}

// NewChannel returns a reporter over ch.
func NewChannel(ch chan<- Event) *Channel {
	return &Channel{Ch: ch}
}

func (c *Channel) send(ev Event) {
	if c == nil || c.Ch == nil {
		return
	}
	select {
	case c.Ch <- ev:
	default:
		c.dropped.Add(1)
	}
}

// Dropped returns how many events did not fit into the channel.
func (c *Channel) Dropped() int64 {
	if c == nil {
		return 0
	}
	return c.dropped.Load()
}

func (c *Channel) ReportErr(d diag.Diagnostic)  { c.send(Event{Kind: EventErr, Diag: d}) }
func (c *Channel) ReportOut(msg string)         { c.send(Event{Kind: EventOut, Msg: msg}) }
func (c *Channel) ReportInfo(d diag.Diagnostic) { c.send(Event{Kind: EventInfo, Diag: d}) }

func (c *Channel) ReportProgress(file string, stage Stage, percent int) {
	c.send(Event{Kind: EventProgress, File: file, Stage: stage, Percent: percent})
}

func (c *Channel) ReportStatus(unitIndex, unitCount int, bytesDone, bytesTotal int64) {
	c.send(Event{
		Kind:       EventStatus,
		UnitIndex:  unitIndex,
		UnitCount:  unitCount,
		BytesDone:  bytesDone,
		BytesTotal: bytesTotal,
	})
}
