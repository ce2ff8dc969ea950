package services

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pngBytes starts with the PNG signature followed by an IHDR chunk header,
// enough for content sniffing to report image/png.
var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

var jpegBytes = []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00\x01\x01\x00\x00\x01\x00\x01\x00\x00")

func TestAvatarService_UploadAndGet(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice@example.com")

	require.NoError(t, env.avatars.Upload(ctx, alice, "me.PNG", pngBytes))
	assert.True(t, alice.User.HasAvatar())
	assert.True(t, strings.HasPrefix(alice.User.AvatarKey, "avatars/"+alice.User.ID+"/"))
	assert.Equal(t, "image/png", alice.User.AvatarContentType)

	data, contentType, err := env.avatars.Get(ctx, alice.User.ID)
	require.NoError(t, err)
	assert.Equal(t, pngBytes, data)
	assert.Equal(t, "image/png", contentType)
}

func TestAvatarService_UploadReplacesPreviousObject(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice@example.com")

	require.NoError(t, env.avatars.Upload(ctx, alice, "me.png", pngBytes))
	first := alice.User.AvatarKey

	require.NoError(t, env.avatars.Upload(ctx, alice, "me.jpg", jpegBytes))
	assert.NotEqual(t, first, alice.User.AvatarKey)
	assert.Equal(t, "image/jpeg", alice.User.AvatarContentType)

	_, err := env.objects.Get(ctx, first)
	assert.ErrorIs(t, err, common.ErrorNotFound)
	assert.Len(t, env.objects.objects, 1)
}

func TestAvatarService_UploadRejections(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		data     []byte
	}{
		{name: "too large", filename: "big.png", data: append(append([]byte(nil), pngBytes...), bytes.Repeat([]byte{0}, 1_000_000)...)},
		{name: "wrong extension", filename: "me.gif", data: pngBytes},
		{name: "no extension", filename: "me", data: pngBytes},
		{name: "not an image", filename: "me.png", data: []byte("hello, world")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			alice := env.register(t, "alice@example.com")

			err := env.avatars.Upload(context.Background(), alice, tt.filename, tt.data)
			assert.ErrorIs(t, err, common.ErrValidation)

			var ve *common.ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, "avatar", ve.Field)
			assert.False(t, alice.User.HasAvatar())
			assert.Empty(t, env.objects.objects)
		})
	}
}

func TestAvatarService_UploadStoreFailure(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "alice@example.com")
	env.objects.putErr = errors.New("bucket unavailable")

	err := env.avatars.Upload(context.Background(), alice, "me.png", pngBytes)
	require.Error(t, err)
	assert.False(t, alice.User.HasAvatar())
	assert.False(t, env.st.Users[alice.User.ID].HasAvatar())
}

func TestAvatarService_Remove(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice@example.com")

	// nothing to remove yet
	require.NoError(t, env.avatars.Remove(ctx, alice))

	require.NoError(t, env.avatars.Upload(ctx, alice, "me.png", pngBytes))
	require.NoError(t, env.avatars.Remove(ctx, alice))
	assert.False(t, alice.User.HasAvatar())
	assert.Empty(t, env.objects.objects)

	_, _, err := env.avatars.Get(ctx, alice.User.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestAvatarService_GetNotFound(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice@example.com")

	for _, id := range []string{"garbage", uuid.NewString(), alice.User.ID} {
		_, _, err := env.avatars.Get(ctx, id)
		assert.ErrorIs(t, err, common.ErrorNotFound, "id %q", id)
	}
}

func TestAvatarService_MaxSize(t *testing.T) {
	env := newTestEnv(t)
	assert.Equal(t, int64(1_000_000), env.avatars.MaxSize())
}
