package bufferpool

// Replacer tracks the set of frames that are resident and unpinned
// ("victimizable") and picks one to reclaim when the pool needs a frame.
// All methods must be safe for concurrent use; BufferPoolManager calls them
// while holding its own manager lock, so a Replacer only needs to protect
// itself against concurrent Pin/Unpin calls.
type Replacer interface {
	// Victim removes and returns a frame chosen by the replacement policy.
	// ok is false if the victimizable set is empty.
	Victim() (frame FrameID, ok bool)

	// Pin removes frame from the victimizable set. A no-op if frame isn't
	// currently tracked.
	Pin(frame FrameID)

	// Unpin admits frame to the victimizable set if it isn't already a
	// member. A no-op if frame is already present.
	Unpin(frame FrameID)

	// Size reports the current cardinality of the victimizable set.
	Size() int
}
