package imageproc

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"time"

	"ticketing-backend/internal/domain/customer"
	"ticketing-backend/internal/infrastructure/monitoring"
	"ticketing-backend/internal/pkg/apperrors"

	"github.com/disintegration/imaging"
)

const (
	// Normalized pictures fit inside a maxDimension square; smaller images
	// pass through at their original size.
	maxDimension = 800

	jpegQuality = 80
)

// Normalizer decodes an uploaded image, bounds it to maxDimension on the
// longer side without enlarging, and re-encodes it as JPEG. Identical input
// bytes produce identical output bytes.
type Normalizer struct {
	logger *slog.Logger
}

var _ customer.ImageNormalizer = (*Normalizer)(nil)

func NewNormalizer(logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewNormalizer, using default stderr handler")
	}
	return &Normalizer{
		logger: logger.With("component", "ImageNormalizer"),
	}
}

func (n *Normalizer) Normalize(raw []byte) ([]byte, error) {
	start := time.Now()

	img, err := imaging.Decode(bytes.NewReader(raw))
	if err != nil {
		monitoring.RecordImageNormalize(time.Since(start), false)
		n.logger.Warn("Failed to decode uploaded image", slog.Any("error", err))
		return nil, fmt.Errorf("%w: %w", apperrors.ErrInvalidImage, err)
	}

	bounds := img.Bounds()
	if bounds.Dx() > maxDimension || bounds.Dy() > maxDimension {
		img = imaging.Fit(img, maxDimension, maxDimension, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		monitoring.RecordImageNormalize(time.Since(start), false)
		n.logger.Error("Failed to re-encode image", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to encode image: %w", apperrors.ErrInternalServer, err)
	}

	monitoring.RecordImageNormalize(time.Since(start), true)
	n.logger.Debug("Image normalized",
		slog.Int("input_bytes", len(raw)),
		slog.Int("output_bytes", buf.Len()),
		slog.Int("width", img.Bounds().Dx()),
		slog.Int("height", img.Bounds().Dy()),
	)
	return buf.Bytes(), nil
}
