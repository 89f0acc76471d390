package txq

// Config holds configuration for the submission queue.
type Config struct {
	// QueueSize is how many signed requests may wait for the next block.
	// Submissions beyond it are rejected rather than blocking the caller.
	QueueSize int

	// MaxPerBlock caps how many queued requests one block applies.
	// Zero means the whole queue.
	MaxPerBlock int
}

// DefaultConfig returns the default queue configuration.
func DefaultConfig() Config {
	return Config{
		QueueSize:   256,
		MaxPerBlock: 0,
	}
}
