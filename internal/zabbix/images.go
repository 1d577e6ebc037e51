package zabbix

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

// imageTypeBackground is the Zabbix image type of map backgrounds.
const imageTypeBackground = 2

type zbxImage struct {
	ImageID string `json:"imageid"`
	Name    string `json:"name"`
	Image   string `json:"image"`
}

// Image returns the raw bytes of the image with id imageID.
func (c *Client) Image(ctx context.Context, imageID string) ([]byte, error) {
	var images []zbxImage
	params := map[string]any{
		"imageids":     imageID,
		"select_image": true,
	}
	if err := c.call(ctx, "image.get", params, &images); err != nil {
		return nil, err
	}
	img, err := one(images, fmt.Sprintf("image %s", imageID))
	if err != nil {
		return nil, err
	}
	data, err := base64.StdEncoding.DecodeString(img.Image)
	if err != nil {
		return nil, fmt.Errorf("image %s: %w", imageID, err)
	}
	return data, nil
}

// ImageSize returns the pixel size of the image with id imageID.
func (c *Client) ImageSize(ctx context.Context, imageID string) (width, height int, err error) {
	data, err := c.Image(ctx, imageID)
	if err != nil {
		return 0, 0, err
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, fmt.Errorf("image %s: %w", imageID, err)
	}
	return cfg.Width, cfg.Height, nil
}

// UploadImage stores png under name as a background image, replacing an
// existing image of that name. It returns the image id.
func (c *Client) UploadImage(ctx context.Context, name string, png []byte) (string, error) {
	var existing []zbxImage
	params := map[string]any{
		"filter": map[string]any{"name": name},
		"output": []string{"imageid", "name"},
	}
	if err := c.call(ctx, "image.get", params, &existing); err != nil {
		return "", err
	}

	encoded := base64.StdEncoding.EncodeToString(png)
	var result struct {
		ImageIDs []string `json:"imageids"`
	}

	if len(existing) > 0 {
		params := map[string]any{"imageid": existing[0].ImageID, "image": encoded}
		if err := c.call(ctx, "image.update", params, &result); err != nil {
			return "", err
		}
	} else {
		params := map[string]any{"name": name, "imagetype": imageTypeBackground, "image": encoded}
		if err := c.call(ctx, "image.create", params, &result); err != nil {
			return "", err
		}
	}

	id, err := one(result.ImageIDs, fmt.Sprintf("uploaded image %q", name))
	if err != nil {
		return "", err
	}
	c.log.Debug("uploaded image", "name", name, "imageid", id, "bytes", len(png))
	return id, nil
}
