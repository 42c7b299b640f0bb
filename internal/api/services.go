package api

import (
	"github.com/nichehunt/nichehunt-server/internal/service"
)

// Services groups the business logic services used by the API server.
// This reduces the parameter count for NewServer and improves testability.
type Services struct {
	Auth         *service.AuthService
	Session      *service.SessionService
	Profile      *service.ProfileService
	Product      *service.ProductService
	Vote         *service.VoteService
	Comment      *service.CommentService
	Collection   *service.CollectionService
	Category     *service.CategoryService
	Tag          *service.TagService
	Search       *service.SearchService
	Notification *service.NotificationService
}
