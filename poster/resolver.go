// Package poster resolves uploaded poster files to stable image URLs by
// pushing them to Cloudinary's unsigned upload API.
package poster

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"time"

	"moviecatalog/errs"
	"moviecatalog/movie"
)

// MaxUploadSize is the largest accepted poster file, in bytes.
const MaxUploadSize = 5 << 20

var (
	ErrInvalidImageType = errs.Errorf(errs.EINVALID, "invalid image file: must be JPEG, PNG, GIF, or WebP")
	ErrImageTooLarge    = errs.Errorf(errs.EINVALID, "image file must be under 5MB")
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// Cloudinary implements movie.PosterResolver against the unsigned upload
// endpoint of a Cloudinary account.
type Cloudinary struct {
	// BaseURL can be overridden in tests; defaults to the public API.
	BaseURL string

	cloudName    string
	uploadPreset string
	client       *http.Client
}

func NewCloudinary(cloudName, uploadPreset string) *Cloudinary {
	return &Cloudinary{
		BaseURL:      "https://api.cloudinary.com",
		cloudName:    cloudName,
		uploadPreset: uploadPreset,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Resolve validates the upload and returns the hosted image URL. Type and
// size rejections are client errors; transport or API failures are internal.
func (c *Cloudinary) Resolve(ctx context.Context, up movie.PosterUpload) (string, error) {
	if err := validate(up); err != nil {
		return "", err
	}

	body, contentType, err := encodeUpload(up, c.uploadPreset)
	if err != nil {
		return "", errs.Errorf(errs.EINTERNAL, "encode upload: %v", err)
	}

	url := fmt.Sprintf("%s/v1_1/%s/image/upload", c.BaseURL, c.cloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return "", errs.Errorf(errs.EINTERNAL, "build upload request: %v", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", errs.Errorf(errs.EINTERNAL, "image upload failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", errs.Errorf(errs.EINTERNAL, "image host returned status %d", resp.StatusCode)
	}

	var result struct {
		SecureURL string `json:"secure_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", errs.Errorf(errs.EINTERNAL, "decode upload response: %v", err)
	}
	if result.SecureURL == "" {
		return "", errs.Errorf(errs.EINTERNAL, "image host returned no URL")
	}

	return result.SecureURL, nil
}

func validate(up movie.PosterUpload) error {
	if len(up.Data) > MaxUploadSize {
		return ErrImageTooLarge
	}

	contentType := up.ContentType
	if contentType == "" {
		contentType = http.DetectContentType(up.Data)
	}
	if !allowedImageTypes[contentType] {
		return ErrInvalidImageType
	}

	return nil
}

func encodeUpload(up movie.PosterUpload, preset string) (*bytes.Buffer, string, error) {
	body := new(bytes.Buffer)
	w := multipart.NewWriter(body)

	if err := w.WriteField("upload_preset", preset); err != nil {
		return nil, "", err
	}

	part, err := w.CreateFormFile("file", up.Filename)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(up.Data); err != nil {
		return nil, "", err
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}

	return body, w.FormDataContentType(), nil
}
