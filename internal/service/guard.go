// Package service holds the application's business rules on top of the repositories.
package service

// CanMutate reports whether actorID may delete a resource owned by ownerID.
// Create, read and like operations never consult it.
func CanMutate(actorID, ownerID uint) bool {
	return actorID != 0 && actorID == ownerID
}
