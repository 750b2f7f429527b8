// Package encoding implements the metadata payload codecs of the forest
// container.
//
// Column names and categorical domains are stored as length-prefixed name
// lists:
//
//	[Count: uint16] [Len1: uint16][Name1: UTF-8] [Len2: uint16][Name2: UTF-8] ...
//
// followed, for column names, by an optional table of xxHash64 ids used to
// verify the names and to index columns by hash.
package encoding
