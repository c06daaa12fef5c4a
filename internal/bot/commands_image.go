package bot

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"math"
	"net/http"

	"github.com/disintegration/imaging"
)

const maxImageDownload = 20 << 20 // 20 MiB

// jpeg downloads an image, ruins it, and posts the re-hosted result.
func (c *Commands) jpeg(ctx context.Context, cc *CommandContext) error {
	groupID := cc.Event.GroupID

	data, err := downloadImage(ctx, cc.Args)
	if err != nil {
		return c.send(ctx, groupID, "Could not fetch that image")
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return c.send(ctx, groupID, "That does not look like an image")
	}

	fried, err := deepFry(img)
	if err != nil {
		return fmt.Errorf("encode image: %w", err)
	}

	url, err := c.client.UploadImage(ctx, fried)
	if err != nil {
		return fmt.Errorf("upload image: %w", err)
	}
	return c.send(ctx, groupID, url)
}

// deepFry degrades the image through repeated lossy resizes, cranked
// contrast, saturation and sharpening, then a bottom-quality JPEG encode.
func deepFry(img image.Image) ([]byte, error) {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	img = imaging.Resize(img, pow(width, 0.75), pow(height, 0.75), imaging.Lanczos)
	img = imaging.Resize(img, pow(width, 0.88), pow(height, 0.88), imaging.Linear)
	img = imaging.Resize(img, pow(width, 0.9), pow(height, 0.9), imaging.CatmullRom)
	img = imaging.Resize(img, width, height, imaging.CatmullRom)

	img = imaging.AdjustContrast(img, 45)
	img = imaging.AdjustSaturation(img, 80)
	img = imaging.AdjustBrightness(img, 10)
	img = imaging.Sharpen(img, 12)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(4)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func pow(n int, exp float64) int {
	scaled := int(math.Pow(float64(n), exp))
	if scaled < 1 {
		return 1
	}
	return scaled
}

func downloadImage(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("download image: status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxImageDownload))
}
