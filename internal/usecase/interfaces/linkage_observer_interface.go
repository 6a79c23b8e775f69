package interfaces

// ILinkageObserver receives one event per linkage operation outcome.
type ILinkageObserver interface {
	LinkageOperation(operation, outcome string)
}
