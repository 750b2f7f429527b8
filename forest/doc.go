// Package forest stores a tree ensemble and its column metadata in a single
// binary container.
//
// Layout (all integers little-endian):
//
//	[header: 32 bytes][metadata][tree index][tree payload]
//
// The metadata holds the column names, their xxHash64 ids (unless two names
// collide) and the level names of every categorical column. The tree index
// holds one uint32 length per tree in flat ensemble order, and the tree
// payload holds the trees back to back, compressed as a whole with the codec
// named in the header. The header carries a checksum of the uncompressed
// payload.
//
// Encoding:
//
//	enc, err := forest.NewEncoder(50, 1, forest.WithCompression(format.CompressionZstd))
//	enc.AddColumn("sepal_len", nil)
//	enc.AddColumn("species", []string{"setosa", "versicolor", "virginica"})
//	for g, tree := range trees {
//		enc.SetTree(g, 0, tree)
//	}
//	data, err := enc.Finish()
//
// Decoding:
//
//	model, err := forest.Decode(data)
//	preds, err := model.Score(row)
//
// A decoded Model is immutable and safe for concurrent use. It implements
// graph.Metadata, so it can be handed straight to graph.Build.
package forest
