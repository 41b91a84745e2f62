// Package sample defines core sample types and interfaces for buffer ingestion.
//
// This package provides the public API for working with labeled samples as
// they travel from Kafka into buffers and out to snapshot files.
//
// # Core Types
//
// Sample represents one labeled observation. The label selects the target
// buffer and the value may be any JSON value:
//
//	s := &sample.Sample{
//	    Label: "temperature",
//	    Value: 21.5,
//	    At:    time.Now().UTC(),
//	}
//
// # CloudEvents Envelope
//
// Envelope is the CloudEvents 1.0 form of a sample. The subject names the
// buffer and the data carries the value:
//
//	var env sample.Envelope
//	if err := json.Unmarshal(payload, &env); err != nil {
//	    return err
//	}
//	s, err := env.ToSample()
//
// # Consumed Samples
//
// ConsumedSample combines a sample with Kafka metadata and an offset commit
// callback for complete ingestion context:
//
//	consumed := &sample.ConsumedSample{
//	    Sample: s,
//	    Metadata: sample.KafkaMetadata{
//	        Topic:     "samples",
//	        Partition: 0,
//	        Offset:    12345,
//	        Timestamp: time.Now(),
//	    },
//	}
//
// SampleTime falls back to the Kafka timestamp when the sample carries no
// timestamp of its own.
//
// # Partition Identification
//
// PartitionID uniquely identifies a Kafka topic partition:
//
//	pid := sample.PartitionID{Topic: "samples", Partition: 5}
//	key := pid.String() // "samples-5"
//
// # Snapshots
//
// Snapshot is a point-in-time capture of one buffer. Rows flattens its
// heterogeneous values into (label, seq, kind, value) records for columnar
// file formats:
//
//	snap := &sample.Snapshot{Label: "temperature", Capacity: 8, Values: values}
//	rows := snap.Rows()
//
// # File Formats
//
// The package defines the supported snapshot file formats:
//
//	sample.FormatJSON     // single JSON document
//	sample.FormatCSV      // delimited rows
//	sample.FormatYAML     // single YAML document
//	sample.FormatMsgPack  // MessagePack document
//	sample.FormatAvro     // Avro OCF with schema
//	sample.FormatParquet  // columnar format for analytics
//
// ParseFormat resolves user-facing format names, accepting the yml alias.
//
// # Validation
//
// Use the Validator interface to validate samples before buffering:
//
//	type Validator interface {
//	    Validate(s *Sample) error
//	}
package sample
