// Package workflow models the lifecycle of one user-triggered operation:
// Idle -> Busy -> Succeeded or Failed, and back through Busy on the next
// submission. Each screen owns one Status per sub-workflow, so illegal
// combinations (busy with a stale error still showing) cannot be expressed.
package workflow

// Phase is the lifecycle position of a workflow.
type Phase int

const (
	Idle Phase = iota
	Busy
	Succeeded
	Failed
)

// String returns the display name for each phase.
func (p Phase) String() string {
	names := []string{"Idle", "Busy", "Succeeded", "Failed"}
	if int(p) < len(names) {
		return names[p]
	}
	return "Unknown"
}

// Status is a single-submission state machine. At most one submission is in
// flight: Start refuses re-entry while Busy, which is how rapid repeated
// triggers collapse into exactly one request.
type Status struct {
	phase Phase
	err   string
}

// Start moves to Busy and clears any prior outcome. It reports false, with
// no side effects, when a submission is already in flight.
func (s *Status) Start() bool {
	if s.phase == Busy {
		return false
	}
	s.phase = Busy
	s.err = ""
	return true
}

// Succeed records a successful completion.
func (s *Status) Succeed() {
	s.phase = Succeeded
	s.err = ""
}

// Fail records a failed completion with the message to display.
func (s *Status) Fail(msg string) {
	s.phase = Failed
	s.err = msg
}

// Reset returns to Idle, dropping any recorded outcome.
func (s *Status) Reset() {
	*s = Status{}
}

// Phase returns the current lifecycle position.
func (s *Status) Phase() Phase { return s.phase }

// Busy reports whether a submission is in flight.
func (s *Status) Busy() bool { return s.phase == Busy }

// Failed reports whether the last submission failed.
func (s *Status) Failed() bool { return s.phase == Failed }

// Err returns the displayed failure message, or "" outside Failed.
func (s *Status) Err() string { return s.err }
