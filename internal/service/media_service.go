package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/zaeom/storefront-bfa-go/internal/domain"
	"github.com/zaeom/storefront-bfa-go/internal/infra/imaging"
	"github.com/zaeom/storefront-bfa-go/internal/infra/observability"
	"github.com/zaeom/storefront-bfa-go/internal/infra/resilience"
	"github.com/zaeom/storefront-bfa-go/internal/port"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var mediaTracer = otel.Tracer("service/media")

// UploadKind selects the folder an image lands in.
type UploadKind string

const (
	UploadProduct UploadKind = "product"
	UploadAd      UploadKind = "ad"
	UploadLogo    UploadKind = "logo"
	UploadFavicon UploadKind = "favicon"
)

var uploadFolders = map[UploadKind]string{
	UploadProduct: "product-covers",
	UploadAd:      "ads",
	UploadLogo:    "branding",
	UploadFavicon: "branding",
}

// uploadCacheControl is sent with every stored object.
const uploadCacheControl = time.Hour

// UploadResult describes a stored image.
type UploadResult struct {
	URL    string `json:"url"`
	Path   string `json:"path"`
	Bytes  int    `json:"bytes"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// MediaService compresses images and stores them publicly.
type MediaService struct {
	storage    port.ObjectStorage
	compressor *imaging.Compressor
	bulkhead   *resilience.Bulkhead
	metrics    *observability.Metrics
	logger     *zap.Logger
	now        func() time.Time
}

// NewMediaService creates the upload service. At most maxConcurrent
// compressions run at once.
func NewMediaService(storage port.ObjectStorage, compressor *imaging.Compressor, maxConcurrent int, metrics *observability.Metrics, logger *zap.Logger) *MediaService {
	return &MediaService{
		storage:    storage,
		compressor: compressor,
		bulkhead:   resilience.NewBulkhead(maxConcurrent),
		metrics:    metrics,
		logger:     logger,
		now:        time.Now,
	}
}

// Upload compresses the image and returns its public URL. Branding assets
// need master; product and ad images need admin tier.
func (s *MediaService) Upload(ctx context.Context, actor domain.Actor, kind UploadKind, filename string, r io.Reader) (*UploadResult, error) {
	ctx, span := mediaTracer.Start(ctx, "MediaService.Upload")
	defer span.End()
	span.SetAttributes(attribute.String("upload.kind", string(kind)))

	folder, ok := uploadFolders[kind]
	if !ok {
		return nil, &domain.ErrValidation{Field: "kind", Message: "must be product, ad, logo or favicon"}
	}
	var err error
	if kind == UploadLogo || kind == UploadFavicon {
		err = requireMaster(actor, "upload branding")
	} else {
		err = requireAdmin(actor, "upload image")
	}
	if err != nil {
		return nil, err
	}

	if err := s.bulkhead.Acquire(ctx); err != nil {
		return nil, &domain.ErrTimeout{Operation: "image compression queue"}
	}
	res, err := s.compressor.Compress(r)
	s.bulkhead.Release()
	if err != nil {
		if errors.Is(err, imaging.ErrUnsupportedImage) {
			return nil, &domain.ErrValidation{Field: "file", Message: "must be a JPEG, PNG, GIF or WebP image"}
		}
		if errors.Is(err, imaging.ErrImageTooLarge) {
			return nil, &domain.ErrValidation{Field: "file", Message: "image dimensions are too large"}
		}
		return nil, fmt.Errorf("compress upload: %w", err)
	}

	objectPath := path.Join(folder, objectName(s.now(), filename))
	if err := s.storage.Upload(ctx, objectPath, imaging.ContentType, bytes.NewReader(res.Data), uploadCacheControl); err != nil {
		s.metrics.IncrBackendError("storage")
		s.logger.Error("media: upload failed", zap.String("path", objectPath), zap.Error(err))
		return nil, err
	}

	s.metrics.RecordUpload(string(kind), len(res.Data))
	s.logger.Info("media: uploaded",
		zap.String("path", objectPath),
		zap.Int("bytes", len(res.Data)),
		zap.Int("quality", res.Quality),
		zap.String("actor", actor.UserID),
	)
	return &UploadResult{
		URL:    s.storage.PublicURL(objectPath),
		Path:   objectPath,
		Bytes:  len(res.Data),
		Width:  res.Width,
		Height: res.Height,
	}, nil
}

// objectName is <unix-millis>-<slugified base name>.jpg.
func objectName(now time.Time, filename string) string {
	base := path.Base(strings.ReplaceAll(filename, `\`, "/"))
	base = strings.TrimSuffix(base, path.Ext(base))
	base = domain.Slugify(base)
	if base == "" || base == "." {
		base = uuid.NewString()[:8]
	}
	return fmt.Sprintf("%d-%s.jpg", now.UnixMilli(), base)
}
