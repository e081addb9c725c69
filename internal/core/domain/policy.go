package domain

// CanDelete reports whether actor may delete post: admins may delete any
// post, everyone else only their own. The role check runs first.
func CanDelete(actor *Account, post *Post) bool {
	if actor == nil || post == nil {
		return false
	}
	if actor.IsAdmin() {
		return true
	}
	return post.OwnerID == actor.ID
}
