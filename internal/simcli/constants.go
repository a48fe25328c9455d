package simcli

// Worker configuration constants.
const (
	workerChannelMultiplier = 2
)

// Report configuration constants.
const (
	topDisplayCount      = 10
	percentageMultiplier = 100
)
