// Package permissions implements the two access policies as pure functions of
// (actor, method, object author). A nil actor is an anonymous request.
//
// Handlers must evaluate the collection-level policy before resolving the
// object and the object-level policy after, so a missing object reports 404
// rather than leaking a permission decision.
package permissions

import (
	"net/http"

	"reviewhub/internal/httpapi/models"
)

// SafeMethod reports whether method is read-only.
func SafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

// CatalogAccess is the collection-level policy for titles, categories and
// genres: anyone may read, only admins may write.
func CatalogAccess(actor *models.User, method string) bool {
	if actor != nil {
		if actor.IsAdmin() {
			return true
		}
	}
	return SafeMethod(method)
}

// CatalogObjectAccess mirrors CatalogAccess: there is no owner concept on
// catalog objects.
func CatalogObjectAccess(actor *models.User, method string) bool {
	if SafeMethod(method) {
		return true
	}
	return actor != nil && actor.IsAdmin()
}

// ReviewCommentAccess is the collection-level policy for reviews and
// comments: reads are public, writes require authentication.
func ReviewCommentAccess(actor *models.User, method string) bool {
	return actor != nil || SafeMethod(method)
}

// ReviewCommentObjectAccess is the object-level policy for reviews and
// comments: unsafe methods are restricted to admins, moderators and the
// object's author.
func ReviewCommentObjectAccess(actor *models.User, method string, authorID string) bool {
	if SafeMethod(method) {
		return true
	}
	if actor == nil {
		return false
	}
	return actor.IsAdmin() || actor.IsModerator() || actor.ID == authorID
}
