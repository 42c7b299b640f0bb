package providers

import (
	"github.com/samber/do/v2"

	"github.com/nichehunt/nichehunt-server/internal/config"
	"github.com/nichehunt/nichehunt-server/internal/logger"
	"github.com/nichehunt/nichehunt-server/internal/media/images"
)

// ImageStorages holds the image storage backends.
type ImageStorages struct {
	Avatars *images.Storage
}

// ProvideImageStorages provides the on-disk image storages.
func ProvideImageStorages(i do.Injector) (*ImageStorages, error) {
	cfg := do.MustInvoke[*config.Config](i)

	avatars, err := images.NewStorage(cfg.Data.BasePath, "avatars")
	if err != nil {
		return nil, err
	}

	return &ImageStorages{Avatars: avatars}, nil
}

// ProvideAvatarMirror provides the remote avatar mirror.
func ProvideAvatarMirror(i do.Injector) (*images.Mirror, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storages := do.MustInvoke[*ImageStorages](i)

	return images.NewMirror(storages.Avatars, cfg.Avatar.MaxBytes, cfg.Avatar.FetchTimeout, log.Logger), nil
}
