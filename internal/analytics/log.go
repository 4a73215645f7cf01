package analytics

import (
	"sync"
	"time"

	"github.com/temirov/repomerge/internal/execshell"
)

// ExecutionRecord describes one finished external command.
type ExecutionRecord struct {
	Command         string  `yaml:"command"`
	Succeeded       bool    `yaml:"succeeded"`
	DurationSeconds float64 `yaml:"duration_seconds"`
}

// Log is an append-only, insertion ordered list of execution records.
type Log struct {
	mutex   sync.Mutex
	records []ExecutionRecord
}

// NewLog constructs an empty Log.
func NewLog() *Log {
	return &Log{}
}

// Append adds a record to the end of the log.
func (log *Log) Append(record ExecutionRecord) {
	log.mutex.Lock()
	defer log.mutex.Unlock()
	log.records = append(log.records, record)
}

// Records returns a copy of the recorded entries in insertion order.
func (log *Log) Records() []ExecutionRecord {
	log.mutex.Lock()
	defer log.mutex.Unlock()
	return append([]ExecutionRecord{}, log.records...)
}

// Recorder appends command lifecycle events to a Log.
type Recorder struct {
	log    *Log
	clock  func() time.Time
	mutex  sync.Mutex
	starts map[string]time.Time
}

// NewRecorder constructs a Recorder writing into log. A nil clock selects time.Now.
func NewRecorder(log *Log, clock func() time.Time) *Recorder {
	if clock == nil {
		clock = time.Now
	}
	return &Recorder{log: log, clock: clock, starts: map[string]time.Time{}}
}

// CommandStarted implements execshell.CommandEventObserver.
func (recorder *Recorder) CommandStarted(command execshell.ShellCommand) {
	recorder.mutex.Lock()
	defer recorder.mutex.Unlock()
	recorder.starts[command.String()] = recorder.clock()
}

// CommandCompleted implements execshell.CommandEventObserver.
func (recorder *Recorder) CommandCompleted(command execshell.ShellCommand, result execshell.ExecutionResult) {
	recorder.forget(command)
	recorder.log.Append(ExecutionRecord{
		Command:         command.String(),
		Succeeded:       result.ExitCode == 0,
		DurationSeconds: result.Duration.Seconds(),
	})
}

// CommandExecutionFailed implements execshell.CommandEventObserver.
func (recorder *Recorder) CommandExecutionFailed(command execshell.ShellCommand, _ error) {
	startedAt, known := recorder.forget(command)
	durationSeconds := 0.0
	if known {
		durationSeconds = recorder.clock().Sub(startedAt).Seconds()
	}
	recorder.log.Append(ExecutionRecord{Command: command.String(), Succeeded: false, DurationSeconds: durationSeconds})
}

func (recorder *Recorder) forget(command execshell.ShellCommand) (time.Time, bool) {
	recorder.mutex.Lock()
	defer recorder.mutex.Unlock()
	commandLabel := command.String()
	startedAt, known := recorder.starts[commandLabel]
	delete(recorder.starts, commandLabel)
	return startedAt, known
}
