package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"testing"

	"eventhub/internal/media"
	"eventhub/internal/microservices/http-api/dto"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type stubHost struct {
	folder    string
	size      int
	destroyed []string
	err       error
}

func (h *stubHost) Upload(ctx context.Context, r io.Reader, folder string) (*media.Uploaded, error) {
	if h.err != nil {
		return nil, h.err
	}
	data, _ := io.ReadAll(r)
	h.folder, h.size = folder, len(data)
	return &media.Uploaded{URL: "https://cdn.example.com/" + folder + "/x.png", PublicID: folder + "/x"}, nil
}

func (h *stubHost) Destroy(ctx context.Context, publicID string) error {
	h.destroyed = append(h.destroyed, publicID)
	return h.err
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestUpload_ResizesForKind(t *testing.T) {
	host := &stubHost{}
	svc := NewUploadService(host, newMockStore(), zerolog.Nop())

	res, err := svc.Upload(context.Background(), regularUser("u1"), media.KindAvatar, pngBytes(t, 640, 480))

	require.NoError(t, err)
	assert.Equal(t, "event-management/avatars", host.folder)
	assert.Positive(t, host.size)
	assert.Equal(t, 200, res.Width)
	assert.Equal(t, 200, res.Height)
	assert.Equal(t, "event-management/avatars/x", res.PublicID)
}

func TestUpload_Rejects(t *testing.T) {
	svc := NewUploadService(&stubHost{}, newMockStore(), zerolog.Nop())

	_, err := svc.Upload(context.Background(), regularUser("u1"), media.KindBanner, []byte("GIF89a not allowed"))
	assert.ErrorIs(t, err, ErrInvalidImageType)

	disabled := NewUploadService(nil, newMockStore(), zerolog.Nop())
	_, err = disabled.Upload(context.Background(), regularUser("u1"), media.KindBanner, pngBytes(t, 10, 10))
	assert.ErrorIs(t, err, ErrMediaDisabled)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestUpload_HostFailure(t *testing.T) {
	svc := NewUploadService(&stubHost{err: errors.New("timeout")}, newMockStore(), zerolog.Nop())

	_, err := svc.Upload(context.Background(), regularUser("u1"), media.KindBanner, pngBytes(t, 10, 10))

	require.Error(t, err)
	var svcErr *Error
	assert.False(t, errors.As(err, &svcErr))
}

func TestDeleteImage(t *testing.T) {
	host := &stubHost{}
	store := newMockStore()
	store.users.On("AvatarOwners", mock.Anything, mock.Anything).Return([]string{}, nil)
	store.events.On("BannerOwners", mock.Anything, "event-management/events/abc").Return([]string{"u1"}, nil)
	store.events.On("BannerOwners", mock.Anything, "event-management/events/def").Return([]string{}, nil)
	svc := NewUploadService(host, store, zerolog.Nop())
	ctx := context.Background()

	require.NoError(t, svc.Delete(ctx, regularUser("u1"), dto.DeleteImageRequest{PublicID: "event-management/events/abc"}))
	require.NoError(t, svc.Delete(ctx, regularUser("u1"), dto.DeleteImageRequest{
		ImageURL: "https://res.cloudinary.com/demo/image/upload/v1712/event-management/events/def.jpg",
	}))
	assert.Equal(t, []string{"event-management/events/abc", "event-management/events/def"}, host.destroyed)

	assert.ErrorIs(t, svc.Delete(ctx, regularUser("u1"), dto.DeleteImageRequest{}), ErrNoImage)
	assert.ErrorIs(t, svc.Delete(ctx, regularUser("u1"), dto.DeleteImageRequest{ImageURL: "https://example.com/"}), ErrNoPublicID)
}

func TestDeleteImage_ForeignFolder(t *testing.T) {
	host := &stubHost{}
	store := newMockStore()
	svc := NewUploadService(host, store, zerolog.Nop())

	for _, publicID := range []string{"other-app/logo", "event-management", "event-managementx/a"} {
		err := svc.Delete(context.Background(), adminUser("a1"), dto.DeleteImageRequest{PublicID: publicID})
		assert.ErrorIs(t, err, ErrForeignImage, publicID)
		assert.ErrorIs(t, err, ErrForbidden, publicID)
	}
	assert.Empty(t, host.destroyed)
	store.users.AssertNotCalled(t, "AvatarOwners", mock.Anything, mock.Anything)
}

func TestDeleteImage_OtherUsersImage(t *testing.T) {
	tests := []struct {
		name     string
		publicID string
		avatars  []string
		banners  []string
	}{
		{"someone else's avatar", "event-management/avatars/a", []string{"u2"}, []string{}},
		{"another organizer's banner", "event-management/events/b", []string{}, []string{"u2"}},
		{"banner shared with another organizer", "event-management/events/c", []string{}, []string{"u1", "u2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host := &stubHost{}
			store := newMockStore()
			store.users.On("AvatarOwners", mock.Anything, tt.publicID).Return(tt.avatars, nil)
			store.events.On("BannerOwners", mock.Anything, tt.publicID).Return(tt.banners, nil)
			svc := NewUploadService(host, store, zerolog.Nop())

			err := svc.Delete(context.Background(), regularUser("u1"), dto.DeleteImageRequest{PublicID: tt.publicID})

			assert.ErrorIs(t, err, ErrPermissionDenied)
			assert.Empty(t, host.destroyed)

			require.NoError(t, svc.Delete(context.Background(), adminUser("a1"), dto.DeleteImageRequest{PublicID: tt.publicID}))
			assert.Equal(t, []string{tt.publicID}, host.destroyed)
		})
	}
}
