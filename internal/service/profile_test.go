package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/nichehunt/nichehunt-server/internal/errors"
)

func TestProfileService_UpdateMine(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.registerUser(t, "alice@example.com", "alice").User

	bio := "I build small tools."
	website := "https://alice.example.com"
	updated, err := env.profiles.UpdateMine(ctx, user.ID, UpdateProfileRequest{
		Bio:        &bio,
		WebsiteURL: &website,
	})
	require.NoError(t, err)
	assert.Equal(t, bio, updated.Bio)
	assert.Equal(t, website, updated.WebsiteURL)

	// Unset fields are left alone.
	name := "Alice Liddell"
	updated, err = env.profiles.UpdateMine(ctx, user.ID, UpdateProfileRequest{
		DisplayName: &name,
	})
	require.NoError(t, err)
	assert.Equal(t, name, updated.DisplayName)
	assert.Equal(t, bio, updated.Bio)
}

func TestProfileService_UpdateMineValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.registerUser(t, "alice@example.com", "alice").User

	badURL := "not a url"
	_, err := env.profiles.UpdateMine(ctx, user.ID, UpdateProfileRequest{
		WebsiteURL: &badURL,
	})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestProfileService_GetByUsernameUnknown(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.profiles.GetByUsername(ctx, "ghost")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestProfileService_MirrorAvatar(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.registerUser(t, "alice@example.com", "alice").User

	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 8), G: uint8(y * 8), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(buf.Bytes())
	}))
	defer server.Close()

	profile, err := env.profiles.MirrorAvatar(ctx, user.ID, server.URL+"/avatar.png")
	require.NoError(t, err)
	assert.Contains(t, profile.AvatarURL, "/api/v1/avatars/"+user.ID)
	assert.NotEmpty(t, profile.AvatarBlurhash)

	// The mirrored copy is served from local storage.
	data, hash, err := env.profiles.GetAvatar(user.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
	assert.Len(t, hash, 64)
}

func TestProfileService_MirrorAvatarBadSource(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.registerUser(t, "alice@example.com", "alice").User

	_, err := env.profiles.MirrorAvatar(ctx, user.ID, "ftp://example.com/a.png")
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	_, err = env.profiles.MirrorAvatar(ctx, user.ID, server.URL+"/missing.png")
	assert.ErrorIs(t, err, domainerrors.ErrUpstream)
}

func TestProfileService_GetAvatarMissing(t *testing.T) {
	env := newTestEnv(t)

	_, _, err := env.profiles.GetAvatar("user_nobody")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}
