package cmdbuffer

// Buffer is an append-only sequence of typed Commands, single-writer but
// handed to the backend from any thread, per spec.md §3's CommandBuffer.
//
// recordingTag stands in for the spec's "recorded-thread ID (debug only)":
// Go exposes no stable goroutine identity, so callers that care about
// single-writer discipline tag the buffer with whatever identifies their
// recording context (a goroutine label, a stage name) instead.
type Buffer struct {
	commands     []Command
	poolID       uint64
	recordingTag string

	scopeDepth int // live Begin/End nesting guard, checked as commands are recorded
}

// newBuffer constructs an empty Buffer owned by the given pool ID.
func newBuffer(poolID uint64) *Buffer {
	return &Buffer{poolID: poolID}
}

// PoolID returns the ID of the Pool this buffer was checked out from.
func (b *Buffer) PoolID() uint64 {
	return b.poolID
}

// Tag sets the debug-only recording tag.
func (b *Buffer) Tag(tag string) {
	b.recordingTag = tag
}

// RecordingTag returns the debug-only recording tag.
func (b *Buffer) RecordingTag() string {
	return b.recordingTag
}

// Commands returns the recorded command sequence.
func (b *Buffer) Commands() []Command {
	return b.commands
}

// Len returns the number of recorded commands.
func (b *Buffer) Len() int {
	return len(b.commands)
}

// Record appends cmd to the buffer. BeginDebugScope/EndDebugScope update
// the live scope-depth counter immediately so a negative depth is caught
// at record time rather than waiting for Validate.
func (b *Buffer) Record(cmd Command) error {
	switch cmd.(type) {
	case BeginDebugScope:
		b.scopeDepth++
	case EndDebugScope:
		if b.scopeDepth == 0 {
			return ErrUnmatchedScope
		}
		b.scopeDepth--
	}
	b.commands = append(b.commands, cmd)
	return nil
}

// reset clears the buffer for reuse by a Pool, without releasing the
// backing command slice.
func (b *Buffer) reset() {
	b.commands = b.commands[:0]
	b.scopeDepth = 0
	b.recordingTag = ""
}
