package forest

import (
	"bytes"
	"fmt"

	"github.com/arloliu/canopy/endian"
	"github.com/arloliu/canopy/errs"
	"github.com/arloliu/canopy/internal/collision"
	"github.com/arloliu/canopy/internal/hash"
	ienc "github.com/arloliu/canopy/internal/encoding"
	"github.com/arloliu/canopy/internal/options"
	"github.com/arloliu/canopy/internal/pool"
	"github.com/arloliu/canopy/section"
	"github.com/arloliu/canopy/tree"
)

// Encoder assembles a forest container.
//
// Columns are added in column id order with AddColumn, trees are placed with
// SetTree in any order, and Finish produces the container. An Encoder is not
// safe for concurrent use and cannot be reused after Finish.
type Encoder struct {
	config   *EncoderConfig
	tracker  *collision.Tracker
	domains  [][]string
	trees    [][]byte
	engine   endian.EndianEngine
	finished bool
}

// NewEncoder creates an encoder for groupCount groups of treesPerGroup trees.
//
// Parameters:
//   - groupCount: Number of tree groups (boosting rounds or forest size)
//   - treesPerGroup: Trees per group, 1 for regression and binomial models
//   - opts: Encoder options
//
// Returns:
//   - *Encoder: The encoder
//   - error: ErrInvalidEnsembleShape or an option error
func NewEncoder(groupCount, treesPerGroup int, opts ...EncoderOption) (*Encoder, error) {
	if groupCount <= 0 || treesPerGroup <= 0 || groupCount > 1<<24 || treesPerGroup > 1<<16 {
		return nil, fmt.Errorf("%w: %d groups of %d trees", errs.ErrInvalidEnsembleShape, groupCount, treesPerGroup)
	}

	config := newEncoderConfig(groupCount, treesPerGroup)
	if err := options.Apply(config, opts...); err != nil {
		return nil, err
	}

	return &Encoder{
		config:  config,
		tracker: collision.NewTracker(),
		trees:   make([][]byte, groupCount*treesPerGroup),
		engine:  endian.GetTreeEngine(),
	}, nil
}

// AddColumn appends a column and returns its id. domain holds the ordered
// level names of a categorical column and is nil for numeric columns.
func (e *Encoder) AddColumn(name string, domain []string) (int, error) {
	if e.finished {
		return 0, errs.ErrEncoderAlreadyFinished
	}

	if e.tracker.Count() >= section.ForestMaxColumns {
		return 0, fmt.Errorf("%w: maximum is %d", errs.ErrTooManyColumns, section.ForestMaxColumns)
	}

	if len(domain) > ienc.MaxNames {
		return 0, fmt.Errorf("%w: column %q has %d levels", errs.ErrInvalidNamesCount, name, len(domain))
	}

	if err := e.tracker.TrackColumn(name, hash.ID(name)); err != nil {
		return 0, err
	}
	e.domains = append(e.domains, domain)

	return e.tracker.Count() - 1, nil
}

// SetTree places the compressed tree for a group and class slot. The bytes
// are copied when the container is finished, not before.
func (e *Encoder) SetTree(group, class int, data []byte) error {
	if e.finished {
		return errs.ErrEncoderAlreadyFinished
	}

	h := e.config.header
	if group < 0 || group >= int(h.GroupCount) || class < 0 || class >= int(h.TreesPerGroup) {
		return fmt.Errorf("%w: group %d class %d, ensemble is %dx%d",
			errs.ErrInvalidTreeIndex, group, class, h.GroupCount, h.TreesPerGroup)
	}

	if len(data) == 0 {
		return fmt.Errorf("%w: group %d class %d", errs.ErrEmptyTree, group, class)
	}

	e.trees[class*int(h.GroupCount)+group] = data

	return nil
}

// Finish validates the ensemble and returns the encoded container.
//
// Returns:
//   - []byte: The container
//   - error: ErrMissingTree, ErrInvalidResponseColumn, ensemble shape errors or compression errors
func (e *Encoder) Finish() ([]byte, error) {
	if e.finished {
		return nil, errs.ErrEncoderAlreadyFinished
	}
	e.finished = true

	header := *e.config.header

	for i, t := range e.trees {
		if t == nil {
			return nil, fmt.Errorf("%w: tree %d (group %d, class %d)",
				errs.ErrMissingTree, i, i%int(header.GroupCount), i/int(header.GroupCount))
		}
	}

	if _, err := tree.NewEnsemble(e.trees, int(header.GroupCount), int(header.TreesPerGroup), int(header.NumClasses)); err != nil {
		return nil, err
	}

	header.ColumnCount = uint16(e.tracker.Count()) //nolint:gosec
	if header.HasResponseColumn() && header.ResponseColumn >= header.ColumnCount {
		return nil, fmt.Errorf("%w: column %d of %d", errs.ErrInvalidResponseColumn, header.ResponseColumn, header.ColumnCount)
	}
	header.Flag.SetHashIndex(!e.tracker.HasCollision())

	buf := pool.GetForestBuffer()
	defer pool.PutForestBuffer(buf)

	buf.MustWrite(make([]byte, section.ForestHeaderSize))
	if err := e.writeMetadata(buf, header.Flag.HasHashIndex()); err != nil {
		return nil, err
	}

	header.TreeIndexOffset = uint32(buf.Len()) //nolint:gosec
	buf.Grow(len(e.trees) * section.ForestIndexEntrySize)
	for _, t := range e.trees {
		buf.B = e.engine.AppendUint32(buf.B, uint32(len(t))) //nolint:gosec
	}

	payload := pool.GetForestBuffer()
	defer pool.PutForestBuffer(payload)
	for _, t := range e.trees {
		payload.MustWrite(t)
	}
	header.Checksum = hash.Checksum(payload.Bytes())

	compressed, err := e.config.codec.Compress(payload.Bytes())
	if err != nil {
		return nil, fmt.Errorf("failed to compress tree payload: %w", err)
	}

	header.TreePayloadOffset = uint32(buf.Len()) //nolint:gosec
	buf.MustWrite(compressed)
	copy(buf.B[:section.ForestHeaderSize], header.Bytes())

	return bytes.Clone(buf.Bytes()), nil
}

func (e *Encoder) writeMetadata(buf *pool.ByteBuffer, withHashes bool) error {
	var err error

	if buf.B, err = ienc.AppendNames(buf.B, e.tracker.Names(), e.engine); err != nil {
		return fmt.Errorf("failed to encode column names: %w", err)
	}

	if withHashes {
		buf.B = ienc.AppendHashes(buf.B, e.tracker.Hashes(), e.engine)
	}

	for col, domain := range e.domains {
		if domain == nil {
			buf.B = append(buf.B, section.ForestDomainKindNumeric)
			continue
		}

		buf.B = append(buf.B, section.ForestDomainKindEnum)
		if buf.B, err = ienc.AppendNames(buf.B, domain, e.engine); err != nil {
			return fmt.Errorf("failed to encode domain of column %d: %w", col, err)
		}
	}

	return nil
}
