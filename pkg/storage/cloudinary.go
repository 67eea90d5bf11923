package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/admin"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// CloudinaryStore keeps note files as Cloudinary assets. The reference is the
// asset's secure URL.
type CloudinaryStore struct {
	cld    *cloudinary.Cloudinary
	folder string
	client *http.Client
}

// NewCloudinaryStore uses cloudinaryURL when set, otherwise the CLOUDINARY_URL
// environment variable.
func NewCloudinaryStore(cloudinaryURL, folder string) (*CloudinaryStore, error) {
	var (
		cld *cloudinary.Cloudinary
		err error
	)
	if cloudinaryURL != "" {
		cld, err = cloudinary.NewFromURL(cloudinaryURL)
	} else {
		cld, err = cloudinary.New()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary client: %w", err)
	}
	cld.Config.URL.Secure = true

	return &CloudinaryStore{cld: cld, folder: folder, client: http.DefaultClient}, nil
}

func (s *CloudinaryStore) Save(ctx context.Context, r io.Reader, suggestedName string) (StoredFile, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return StoredFile{}, fmt.Errorf("failed to read upload: %w", err)
	}

	name := uniqueName(suggestedName)
	params := uploader.UploadParams{
		Folder:       s.folder,
		PublicID:     strings.TrimSuffix(name, filepath.Ext(name)),
		Overwrite:    api.Bool(false),
		ResourceType: "auto",
	}
	// Raw assets keep the extension in their public id.
	if !isImageLike(name) {
		params.PublicID = name
		params.ResourceType = "raw"
	}

	resp, err := s.cld.Upload.Upload(ctx, bytes.NewReader(content), params)
	if err != nil {
		return StoredFile{}, fmt.Errorf("failed to upload file to cloudinary: %w", err)
	}
	if resp.SecureURL == "" {
		return StoredFile{}, fmt.Errorf("cloudinary upload failed: %s", resp.Error.Message)
	}

	return StoredFile{Ref: resp.SecureURL, Size: int64(len(content))}, nil
}

func (s *CloudinaryStore) Delete(ctx context.Context, ref string) (bool, error) {
	resourceType, publicID := parseAssetURL(ref)
	if publicID == "" {
		return false, fmt.Errorf("could not extract public ID from URL %q: %w", ref, ErrBlobNotFound)
	}

	resp, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: resourceType,
		Invalidate:   api.Bool(true),
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete file from cloudinary: %w", err)
	}

	switch resp.Result {
	case "ok":
		return true, nil
	case "not found":
		return false, nil
	default:
		return false, fmt.Errorf("cloudinary destroy api returned result: %s", resp.Result)
	}
}

func (s *CloudinaryStore) Exists(ctx context.Context, ref string) (bool, error) {
	_, err := s.Size(ctx, ref)
	if err == ErrBlobNotFound {
		return false, nil
	}
	return err == nil, err
}

func (s *CloudinaryStore) Size(ctx context.Context, ref string) (int64, error) {
	resourceType, publicID := parseAssetURL(ref)
	if publicID == "" {
		return 0, ErrBlobNotFound
	}

	resp, err := s.cld.Admin.Asset(ctx, admin.AssetParams{
		AssetType: api.AssetType(resourceType),
		PublicID:  publicID,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to look up cloudinary asset: %w", err)
	}
	if resp.Error.Message != "" {
		return 0, ErrBlobNotFound
	}
	return int64(resp.Bytes), nil
}

func (s *CloudinaryStore) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch cloudinary asset: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		resp.Body.Close()
		return nil, ErrBlobNotFound
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("cloudinary returned status %d", resp.StatusCode)
	}
	return resp.Body, nil
}

func isImageLike(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg", ".png", ".pdf":
		return true
	}
	return false
}

// parseAssetURL extracts the resource type and public id from a delivery URL.
// https://res.cloudinary.com/demo/image/upload/v123/folder/sample.pdf -> image, folder/sample
// https://res.cloudinary.com/demo/raw/upload/v123/folder/notes.docx -> raw, folder/notes.docx
func parseAssetURL(fileURL string) (string, string) {
	u, err := url.Parse(fileURL)
	if err != nil {
		return "", ""
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	uploadIndex := -1
	for i, p := range parts {
		if p == "upload" {
			uploadIndex = i
			break
		}
	}
	if uploadIndex < 1 || uploadIndex+1 >= len(parts) {
		return "", ""
	}

	resourceType := parts[uploadIndex-1]
	rest := parts[uploadIndex+1:]
	if len(rest) > 1 && isVersion(rest[0]) {
		rest = rest[1:]
	}

	publicID := strings.Join(rest, "/")
	if resourceType != "raw" {
		publicID = strings.TrimSuffix(publicID, filepath.Ext(publicID))
	}
	return resourceType, publicID
}

func isVersion(segment string) bool {
	if len(segment) < 2 || segment[0] != 'v' {
		return false
	}
	for _, r := range segment[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
