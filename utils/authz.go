package utils

// AuthorizeOwner is the single ownership policy: only the user who created a
// resource may mutate it. Every mutating handler goes through here so the
// check cannot drift between endpoints.
func AuthorizeOwner(resourceOwnerID, requesterID int64) bool {
	return resourceOwnerID != 0 && resourceOwnerID == requesterID
}
