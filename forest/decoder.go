package forest

import (
	"fmt"

	"github.com/arloliu/canopy/compress"
	"github.com/arloliu/canopy/endian"
	"github.com/arloliu/canopy/errs"
	"github.com/arloliu/canopy/graph"
	"github.com/arloliu/canopy/internal/hash"
	ienc "github.com/arloliu/canopy/internal/encoding"
	"github.com/arloliu/canopy/section"
	"github.com/arloliu/canopy/tree"
)

// Decode parses a forest container.
//
// The header, metadata and tree index are validated, the tree payload is
// decompressed and checked against the header checksum, and the ensemble
// shape is validated. With format.CompressionNone the trees of the returned
// Model alias data, which must then not be modified.
//
// Returns:
//   - *Model: The decoded model
//   - error: Header, offset, metadata, decompression or checksum errors
func Decode(data []byte) (*Model, error) {
	header, err := section.ParseForestHeader(data)
	if err != nil {
		return nil, err
	}

	engine := endian.GetTreeEngine()
	treeCount := header.TreeCount()

	indexOffset := int(header.TreeIndexOffset)
	if indexOffset < section.ForestHeaderSize || indexOffset > len(data) {
		return nil, fmt.Errorf("%w: %d", errs.ErrInvalidTreeIndexOffset, indexOffset)
	}

	if treeCount < 0 || treeCount > (len(data)-indexOffset)/section.ForestIndexEntrySize {
		return nil, fmt.Errorf("%w: %d trees do not fit the container", errs.ErrInvalidTreePayloadOffset, treeCount)
	}

	payloadOffset := int(header.TreePayloadOffset)
	if payloadOffset != indexOffset+treeCount*section.ForestIndexEntrySize || payloadOffset > len(data) {
		return nil, fmt.Errorf("%w: %d", errs.ErrInvalidTreePayloadOffset, payloadOffset)
	}

	m := &Model{
		compression: header.Flag.Compression(),
		response:    graph.NoResponse,
	}

	if err := m.parseMetadata(data[section.ForestHeaderSize:indexOffset], &header, engine); err != nil {
		return nil, err
	}

	if header.HasResponseColumn() {
		if header.ResponseColumn >= header.ColumnCount {
			return nil, fmt.Errorf("%w: column %d of %d", errs.ErrInvalidResponseColumn, header.ResponseColumn, header.ColumnCount)
		}
		m.response = int(header.ResponseColumn)
	}

	lengths := make([]int, treeCount)
	total := 0
	for i := range lengths {
		lengths[i] = int(engine.Uint32(data[indexOffset+i*section.ForestIndexEntrySize:]))
		total += lengths[i]
	}

	codec, err := compress.GetCodec(header.Flag.Compression())
	if err != nil {
		return nil, err
	}

	payload, err := compress.DecompressSized(codec, data[payloadOffset:], total)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrInvalidCompressionPayload, err)
	}
	if len(payload) != total {
		return nil, fmt.Errorf("%w: %d bytes, tree index expects %d", errs.ErrInvalidCompressionPayload, len(payload), total)
	}

	if sum := hash.Checksum(payload); sum != header.Checksum {
		return nil, fmt.Errorf("%w: computed 0x%08x, header has 0x%08x", errs.ErrChecksumMismatch, sum, header.Checksum)
	}

	trees := make([][]byte, treeCount)
	offset := 0
	for i, n := range lengths {
		trees[i] = payload[offset : offset+n : offset+n]
		offset += n
	}

	m.ensemble, err = tree.NewEnsemble(trees, int(header.GroupCount), int(header.TreesPerGroup), int(header.NumClasses))
	if err != nil {
		return nil, err
	}

	return m, nil
}

func (m *Model) parseMetadata(data []byte, header *section.ForestHeader, engine endian.EndianEngine) error {
	names, offset, err := ienc.DecodeNames(data, engine)
	if err != nil {
		return fmt.Errorf("column names: %w", err)
	}

	if len(names) != int(header.ColumnCount) {
		return fmt.Errorf("%w: %d names, header declares %d columns", errs.ErrInvalidNamesCount, len(names), header.ColumnCount)
	}

	if header.Flag.HasHashIndex() {
		ids, n, err := ienc.DecodeHashes(data[offset:], len(names), engine)
		if err != nil {
			return err
		}
		offset += n

		if err := ienc.VerifyNameHashes(names, ids, hash.ID); err != nil {
			return err
		}

		m.byHash = make(map[uint64]int, len(ids))
		for col, id := range ids {
			if prev, ok := m.byHash[id]; ok {
				// Encoders drop the hash table when ids collide.
				return fmt.Errorf("%w: columns %d and %d", errs.ErrHashCollision, prev, col)
			}
			m.byHash[id] = col
		}
	} else {
		m.byName = make(map[string]int, len(names))
		for col, name := range names {
			m.byName[name] = col
		}
	}

	domains := make([][]string, len(names))
	for col := range names {
		if offset >= len(data) {
			return fmt.Errorf("%w: missing domain kind of column %d", errs.ErrInvalidNamesPayload, col)
		}

		kind := data[offset]
		offset++

		switch kind {
		case section.ForestDomainKindNumeric:
		case section.ForestDomainKindEnum:
			domain, n, err := ienc.DecodeNames(data[offset:], engine)
			if err != nil {
				return fmt.Errorf("domain of column %d: %w", col, err)
			}
			domains[col] = domain
			offset += n
		default:
			return fmt.Errorf("%w: %d for column %d", errs.ErrInvalidDomainKind, kind, col)
		}
	}

	if offset != len(data) {
		return fmt.Errorf("%w: %d trailing bytes", errs.ErrInvalidNamesPayload, len(data)-offset)
	}

	m.names = names
	m.domains = domains

	return nil
}
