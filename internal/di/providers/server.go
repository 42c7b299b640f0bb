package providers

import (
	"context"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/nichehunt/nichehunt-server/internal/api"
	"github.com/nichehunt/nichehunt-server/internal/auth"
	"github.com/nichehunt/nichehunt-server/internal/config"
	"github.com/nichehunt/nichehunt-server/internal/logger"
	"github.com/nichehunt/nichehunt-server/internal/service"
)

// HTTPServerHandle wraps http.Server with graceful shutdown.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server with all routes configured.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokens := do.MustInvoke[*auth.TokenService](i)
	oauthHandle := do.MustInvoke[*OAuthProviderHandle](i)

	authService := do.MustInvoke[*service.AuthService](i)
	sessionService := do.MustInvoke[*service.SessionService](i)
	profileService := do.MustInvoke[*service.ProfileService](i)
	productService := do.MustInvoke[*service.ProductService](i)
	voteService := do.MustInvoke[*service.VoteService](i)
	commentService := do.MustInvoke[*service.CommentService](i)
	collectionService := do.MustInvoke[*service.CollectionService](i)
	categoryService := do.MustInvoke[*service.CategoryService](i)
	tagService := do.MustInvoke[*service.TagService](i)
	searchService := do.MustInvoke[*service.SearchService](i)
	notificationService := do.MustInvoke[*service.NotificationService](i)

	// Ensure the built-in categories exist before serving traffic.
	if err := categoryService.Seed(context.Background()); err != nil {
		return nil, err
	}

	services := &api.Services{
		Auth:         authService,
		Session:      sessionService,
		Profile:      profileService,
		Product:      productService,
		Vote:         voteService,
		Comment:      commentService,
		Collection:   collectionService,
		Category:     categoryService,
		Tag:          tagService,
		Search:       searchService,
		Notification: notificationService,
	}

	handler := api.NewServer(storeHandle.Store, services, tokens, oauthHandle.Provider, log.Logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
		}
	}()

	log.Info("Server running", "addr", srv.Addr)

	return &HTTPServerHandle{Server: srv}, nil
}
