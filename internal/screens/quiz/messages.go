package quiz

// snapshotMsg carries a state change published by the machine.
type snapshotMsg struct {
	snap Snapshot
}

// closedMsg is sent once the machine has stopped publishing.
type closedMsg struct{}

// sendFailedMsg reports a command the machine refused to queue.
type sendFailedMsg struct {
	err error
}
