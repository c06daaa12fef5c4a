package bot

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	return img
}

func TestDeepFryKeepsDimensions(t *testing.T) {
	fried, err := deepFry(testImage(50, 40))
	require.NoError(t, err)

	decoded, err := imaging.Decode(bytes.NewReader(fried))
	require.NoError(t, err)
	require.Equal(t, 50, decoded.Bounds().Dx())
	require.Equal(t, 40, decoded.Bounds().Dy())
}

func TestPowNeverReturnsZero(t *testing.T) {
	require.Equal(t, 1, pow(1, 0.75))
	require.Equal(t, 1, pow(0, 0.9))
	require.Greater(t, pow(500, 0.75), 1)
}

func TestJpegRepliesOnFetchFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	f := newCommandsFixture(t)
	f.client.On("Send", mock.Anything, "g1", "Could not fetch that image", mock.Anything).Return(nil).Once()

	require.NoError(t, f.commands.jpeg(context.Background(), ccFor("g1", "u1", "jpeg", server.URL+"/missing.png")))
	f.client.AssertExpectations(t)
}

func TestJpegRepliesOnNonImagePayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("definitely not pixels"))
	}))
	defer server.Close()

	f := newCommandsFixture(t)
	f.client.On("Send", mock.Anything, "g1", "That does not look like an image", mock.Anything).Return(nil).Once()

	require.NoError(t, f.commands.jpeg(context.Background(), ccFor("g1", "u1", "jpeg", server.URL+"/page.html")))
	f.client.AssertExpectations(t)
}

func TestJpegUploadsFriedImage(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, testImage(20, 20), imaging.PNG))
	source := buf.Bytes()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(source)
	}))
	defer server.Close()

	f := newCommandsFixture(t)
	f.client.On("UploadImage", mock.Anything, mock.MatchedBy(func(data []byte) bool {
		return len(data) > 0
	})).Return("https://i.groupme.com/fried", nil).Once()
	f.client.On("Send", mock.Anything, "g1", "https://i.groupme.com/fried", mock.Anything).Return(nil).Once()

	require.NoError(t, f.commands.jpeg(context.Background(), ccFor("g1", "u1", "jpeg", server.URL+"/pic.png")))
	f.client.AssertExpectations(t)
}
