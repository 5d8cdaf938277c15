package models

// SoftDeletable is implemented by every entity whose deletion is a flag flip
// rather than a row removal. Read paths exclude flagged rows unless a caller
// explicitly opts in to see them.
type SoftDeletable interface {
	MarkDeleted()
	Deleted() bool
}

// ClientOwned is implemented by entities that must survive the deletion of
// their owning client: deleting a client soft-marks the client only, never
// its invoices or resources.
type ClientOwned interface {
	OwningClientID() uint
}
