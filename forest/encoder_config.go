package forest

import (
	"fmt"

	"github.com/arloliu/canopy/compress"
	"github.com/arloliu/canopy/errs"
	"github.com/arloliu/canopy/format"
	"github.com/arloliu/canopy/internal/options"
	"github.com/arloliu/canopy/section"
)

// EncoderConfig holds the settings of an Encoder.
type EncoderConfig struct {
	header *section.ForestHeader
	codec  compress.Codec
}

// EncoderOption configures an Encoder.
type EncoderOption = options.Option[*EncoderConfig]

func newEncoderConfig(groupCount, treesPerGroup int) *EncoderConfig {
	header := section.NewForestHeader(uint32(groupCount), uint32(treesPerGroup), uint32(treesPerGroup)) //nolint:gosec
	if treesPerGroup == 1 {
		header.NumClasses = 1
	}
	header.Flag.SetCompression(format.CompressionZstd)

	return &EncoderConfig{
		header: header,
		codec:  compress.NewZstdCompressor(),
	}
}

func (c *EncoderConfig) setCompression(ct format.CompressionType) error {
	codec, err := compress.CreateCodec(ct, "tree payload")
	if err != nil {
		return err
	}

	c.codec = codec
	c.header.Flag.SetCompression(ct)

	return nil
}

// WithCompression selects the codec for the tree payload. Zstd is the default.
func WithCompression(ct format.CompressionType) EncoderOption {
	return options.New(func(c *EncoderConfig) error {
		return c.setCompression(ct)
	})
}

// WithResponseColumn marks column col as the response. Its domain, if any,
// labels the classes of the model.
func WithResponseColumn(col int) EncoderOption {
	return options.New(func(c *EncoderConfig) error {
		if col < 0 || col >= section.ForestMaxColumns {
			return fmt.Errorf("%w: %d", errs.ErrInvalidResponseColumn, col)
		}
		c.header.ResponseColumn = uint16(col) //nolint:gosec

		return nil
	})
}

// WithNumClasses sets the number of output classes. It defaults to 1 for one
// tree per group and to the trees per group otherwise; binomial models need
// WithNumClasses(2).
func WithNumClasses(n int) EncoderOption {
	return options.New(func(c *EncoderConfig) error {
		if n < 1 {
			return fmt.Errorf("%w: %d", errs.ErrInvalidNumClasses, n)
		}
		c.header.NumClasses = uint32(n) //nolint:gosec

		return nil
	})
}
