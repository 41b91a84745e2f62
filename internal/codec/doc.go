// Package codec provides snapshot encoding to various file formats.
//
// This package implements codecs for converting buffer snapshots into files
// suitable for storage and analytics, with configurable compression.
//
// # Supported Formats
//
// Document formats write the whole snapshot as one value:
//
//   - JSON: one object with label, capacity, capture time and values
//   - YAML: the same document in YAML
//   - MsgPack: the same document in MessagePack binary
//
// Row formats flatten the snapshot into one row per buffered value, each row
// carrying the value's kind tag and its canonical JSON text:
//
//   - CSV: delimited rows under a header, configurable delimiter
//   - Avro: OCF container with embedded schema
//   - Parquet: columnar format optimized for analytics and Athena queries
//
// Row formats refuse an empty snapshot; document formats encode it as an
// empty values list.
//
// # Codec Factory
//
// Use Factory to create codec instances:
//
//	factory := codec.NewFactory(sample.FormatParquet, "snappy", 0)
//	c, err := factory.Create()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Direct Codec Creation
//
// Create codecs directly when the format is known:
//
//	// Parquet with Snappy compression
//	parquetCodec := codec.NewParquetCodec("snappy")
//
//	// Avro with GZIP compression
//	avroCodec, err := codec.NewAvroCodec("gzip")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Encoding Snapshots
//
// All codecs implement the pkg/codec.Codec interface:
//
//	stats, err := c.Encode(filePath, snap)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Printf("Encoded %d values, %d bytes\n",
//	    stats.RecordCount, stats.SizeBytes)
//
// # Compression Options
//
// Supported compression codecs:
//
//	Parquet: "snappy", "gzip", "lz4", "zstd", "uncompressed"
//	Avro:    "gzip", "uncompressed"
//
// Document formats and CSV are written uncompressed.
//
// # File Extensions
//
// Codecs provide appropriate file extensions:
//
//	parquetCodec.FileExtension()  // ".parquet"
//	avroCodec.FileExtension()     // ".avro.gz" (with gzip)
//
// # Thread Safety
//
// Codec instances are safe for concurrent use. Factory.Create() creates
// independent codec instances.
package codec
