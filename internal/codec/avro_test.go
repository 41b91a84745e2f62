package codec

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/linkedin/goavro/v2"

	"github.com/jittakal/bufstore/pkg/sample"
)

func TestNewAvroCodec(t *testing.T) {
	tests := []struct {
		name        string
		compression string
		wantErr     bool
	}{
		{"gzip compression", "gzip", false},
		{"uncompressed", "uncompressed", false},
		{"none", "none", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewAvroCodec(tt.compression)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewAvroCodec() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && c == nil {
				t.Error("expected non-nil codec")
			}
			if !tt.wantErr && c.compression != tt.compression {
				t.Errorf("compression = %v, want %v", c.compression, tt.compression)
			}
		})
	}
}

func TestAvroCodec_FileExtension(t *testing.T) {
	tests := []struct {
		name        string
		compression string
		want        string
	}{
		{"no compression", "none", ".avro"},
		{"gzip compression", "gzip", ".avro.gz"},
		{"GZIP compression", "GZIP", ".avro.gz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewAvroCodec(tt.compression)
			if err != nil {
				t.Fatalf("NewAvroCodec() error = %v", err)
			}

			ext := c.FileExtension()
			if ext != tt.want {
				t.Errorf("FileExtension() = %v, want %v", ext, tt.want)
			}
		})
	}
}

func TestAvroCodec_Format(t *testing.T) {
	c, err := NewAvroCodec("gzip")
	if err != nil {
		t.Fatalf("NewAvroCodec() error = %v", err)
	}

	format := c.Format()
	if format != sample.FormatAvro {
		t.Errorf("Format() = %v, want %v", format, sample.FormatAvro)
	}
}

func TestAvroCodec_Encode(t *testing.T) {
	tempDir := t.TempDir()
	testFile := filepath.Join(tempDir, "snapshot.avro.gz")

	c, err := NewAvroCodec("gzip")
	if err != nil {
		t.Fatalf("NewAvroCodec() error = %v", err)
	}

	snap := testSnapshot(1, "steady", 3.5)

	stats, err := c.Encode(testFile, snap)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	if stats == nil {
		t.Fatal("expected non-nil stats")
	}
	if stats.RecordCount != 3 {
		t.Errorf("RecordCount = %d, want 3", stats.RecordCount)
	}
	if stats.SizeBytes <= 0 {
		t.Errorf("SizeBytes = %d, want > 0", stats.SizeBytes)
	}

	// Verify file exists
	if _, err := os.Stat(testFile); os.IsNotExist(err) {
		t.Errorf("expected file at %s", testFile)
	}
}

func TestAvroCodec_EncodeUncompressedRoundTrip(t *testing.T) {
	tempDir := t.TempDir()
	testFile := filepath.Join(tempDir, "snapshot.avro")

	c, err := NewAvroCodec("uncompressed")
	if err != nil {
		t.Fatalf("NewAvroCodec() error = %v", err)
	}

	snap := testSnapshot(1, "steady")

	stats, err := c.Encode(testFile, snap)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if stats.RecordCount != 2 {
		t.Errorf("RecordCount = %d, want 2", stats.RecordCount)
	}

	file, err := os.Open(testFile)
	if err != nil {
		t.Fatalf("failed to open file: %v", err)
	}
	defer file.Close()

	reader, err := goavro.NewOCFReader(file)
	if err != nil {
		t.Fatalf("failed to create OCF reader: %v", err)
	}

	var got []map[string]interface{}
	for reader.Scan() {
		datum, err := reader.Read()
		if err != nil {
			t.Fatalf("failed to read datum: %v", err)
		}
		rec, ok := datum.(map[string]interface{})
		if !ok {
			t.Fatalf("datum type = %T, want map", datum)
		}
		got = append(got, rec)
	}

	if len(got) != 2 {
		t.Fatalf("read %d rows, want 2", len(got))
	}
	if got[0]["label"] != "temperature" {
		t.Errorf("label = %v, want temperature", got[0]["label"])
	}
	if got[0]["seq"] != int64(0) {
		t.Errorf("seq = %v, want 0", got[0]["seq"])
	}
	if got[0]["kind"] != "number" {
		t.Errorf("kind = %v, want number", got[0]["kind"])
	}
	if got[0]["value"] != "1" {
		t.Errorf("value = %v, want 1", got[0]["value"])
	}
	if got[0]["capacity"] != int32(8) {
		t.Errorf("capacity = %v, want 8", got[0]["capacity"])
	}
	if got[1]["kind"] != "string" {
		t.Errorf("kind = %v, want string", got[1]["kind"])
	}
	if got[1]["value"] != `"steady"` {
		t.Errorf("value = %v, want %q", got[1]["value"], `"steady"`)
	}
}

func TestAvroCodec_EncodeEmptySnapshot(t *testing.T) {
	tempDir := t.TempDir()
	testFile := filepath.Join(tempDir, "empty.avro")

	c, err := NewAvroCodec("gzip")
	if err != nil {
		t.Fatalf("NewAvroCodec() error = %v", err)
	}

	snap := testSnapshot()

	_, err = c.Encode(testFile, snap)
	if err == nil {
		t.Error("expected error for empty snapshot")
	}
}

func TestAvroCodec_EncodeToBytes(t *testing.T) {
	c, err := NewAvroCodec("gzip")
	if err != nil {
		t.Fatalf("NewAvroCodec() error = %v", err)
	}

	snap := testSnapshot(1, 2, 3)

	bytes, err := c.EncodeToBytes(snap)
	if err != nil {
		t.Fatalf("EncodeToBytes() error = %v", err)
	}

	if len(bytes) == 0 {
		t.Error("expected non-empty bytes")
	}
}

func TestAvroSchema(t *testing.T) {
	schema := avroSchema()

	if len(schema) == 0 {
		t.Error("expected non-empty schema")
	}

	// Verify schema contains required fields
	requiredFields := []string{
		"label",
		"seq",
		"kind",
		"value",
		"capacity",
		"taken_at",
	}

	for _, field := range requiredFields {
		if !strings.Contains(schema, field) {
			t.Errorf("schema missing required field: %s", field)
		}
	}
}
