package archive

import (
	"fmt"
	"io"
	"strings"

	"github.com/dsnet/compress/bzip2"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"
)

// Compression identifies the codec wrapped around a tar stream.
type Compression uint8

const (
	CompressionNone Compression = iota
	CompressionGzip
	CompressionBzip2
	CompressionXZ
	CompressionZstd
	CompressionLZ4
)

var compressionNames = map[Compression]string{
	CompressionNone:  "none",
	CompressionGzip:  "gz",
	CompressionBzip2: "bz2",
	CompressionXZ:    "xz",
	CompressionZstd:  "zst",
	CompressionLZ4:   "lz4",
}

// String returns the name used in config.yaml and on the command line.
func (c Compression) String() string {
	if name, ok := compressionNames[c]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", c)
}

// Extension returns the file suffix of a tarball with this compression.
func (c Compression) Extension() string {
	if c == CompressionNone {
		return ".tar"
	}
	return ".tar." + c.String()
}

// ParseCompression parses a compression name. The empty string means no
// compression.
func ParseCompression(name string) (Compression, error) {
	switch strings.ToLower(name) {
	case "", "none":
		return CompressionNone, nil
	case "gz", "gzip":
		return CompressionGzip, nil
	case "bz2", "bzip2":
		return CompressionBzip2, nil
	case "xz":
		return CompressionXZ, nil
	case "zst", "zstd":
		return CompressionZstd, nil
	case "lz4":
		return CompressionLZ4, nil
	default:
		return 0, fmt.Errorf("unknown compression: %q", name)
	}
}

// compressionFromName detects the tarball compression from a file name.
func compressionFromName(name string) (Compression, bool) {
	switch {
	case strings.HasSuffix(name, ".tar"):
		return CompressionNone, true
	case strings.HasSuffix(name, ".tgz"):
		return CompressionGzip, true
	}
	for c := CompressionGzip; c <= CompressionLZ4; c++ {
		if strings.HasSuffix(name, c.Extension()) {
			return c, true
		}
	}
	return 0, false
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// compressWriter wraps w with the encoder for c. Closing the result
// flushes the encoder but does not close w.
func compressWriter(w io.Writer, c Compression) (io.WriteCloser, error) {
	switch c {
	case CompressionNone:
		return nopWriteCloser{w}, nil
	case CompressionGzip:
		return gzip.NewWriter(w), nil
	case CompressionBzip2:
		return bzip2.NewWriter(w, nil)
	case CompressionXZ:
		return xz.NewWriter(w)
	case CompressionZstd:
		return zstd.NewWriter(w)
	case CompressionLZ4:
		return lz4.NewWriter(w), nil
	default:
		return nil, fmt.Errorf("unsupported compression: %s", c)
	}
}

// decompressReader wraps r with the decoder for c.
func decompressReader(r io.Reader, c Compression) (io.ReadCloser, error) {
	switch c {
	case CompressionNone:
		return io.NopCloser(r), nil
	case CompressionGzip:
		return gzip.NewReader(r)
	case CompressionBzip2:
		return bzip2.NewReader(r, nil)
	case CompressionXZ:
		xr, err := xz.NewReader(r)
		if err != nil {
			return nil, err
		}
		return io.NopCloser(xr), nil
	case CompressionZstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return zr.IOReadCloser(), nil
	case CompressionLZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	default:
		return nil, fmt.Errorf("unsupported compression: %s", c)
	}
}
