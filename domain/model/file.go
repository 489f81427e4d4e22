package model

import (
	"path/filepath"
	"strings"
)

// FileType represents supported source file types
type FileType int

const (
	// FileTypeCSV represents CSV file type
	FileTypeCSV FileType = iota
	// FileTypeTSV represents TSV file type
	FileTypeTSV
	// FileTypeXLSX represents Excel workbook file type
	FileTypeXLSX
	// FileTypeParquet represents Parquet file type
	FileTypeParquet
	// FileTypeUnsupported represents unsupported file type
	FileTypeUnsupported
)

// File extensions
const (
	// ExtCSV is the CSV file extension
	ExtCSV = ".csv"
	// ExtTSV is the TSV file extension
	ExtTSV = ".tsv"
	// ExtXLSX is the Excel workbook extension
	ExtXLSX = ".xlsx"
	// ExtParquet is the Parquet file extension
	ExtParquet = ".parquet"
	// ExtGZ is the gzip compression extension
	ExtGZ = ".gz"
	// ExtBZ2 is the bzip2 compression extension
	ExtBZ2 = ".bz2"
	// ExtXZ is the xz compression extension
	ExtXZ = ".xz"
	// ExtZSTD is the zstd compression extension
	ExtZSTD = ".zst"
)

var compressionExtensions = []string{ExtGZ, ExtBZ2, ExtXZ, ExtZSTD}

// String returns the lowercase format name.
func (ft FileType) String() string {
	switch ft {
	case FileTypeCSV:
		return "csv"
	case FileTypeTSV:
		return "tsv"
	case FileTypeXLSX:
		return "xlsx"
	case FileTypeParquet:
		return "parquet"
	default:
		return "unsupported"
	}
}

// IsText reports whether the format is delimited text that needs decoding.
func (ft FileType) IsText() bool {
	return ft == FileTypeCSV || ft == FileTypeTSV
}

// DetectFileType returns the format of path, ignoring a compression suffix.
func DetectFileType(path string) FileType {
	base := strings.ToLower(filepath.Base(path))
	for _, ext := range compressionExtensions {
		if strings.HasSuffix(base, ext) {
			base = strings.TrimSuffix(base, ext)
			break
		}
	}

	switch filepath.Ext(base) {
	case ExtCSV:
		return FileTypeCSV
	case ExtTSV:
		return FileTypeTSV
	case ExtXLSX:
		return FileTypeXLSX
	case ExtParquet:
		return FileTypeParquet
	default:
		return FileTypeUnsupported
	}
}

// DetectCompressionType returns the compression of path from its suffix.
func DetectCompressionType(path string) CompressionType {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ExtGZ):
		return CompressionGZ
	case strings.HasSuffix(lower, ExtBZ2):
		return CompressionBZ2
	case strings.HasSuffix(lower, ExtXZ):
		return CompressionXZ
	case strings.HasSuffix(lower, ExtZSTD):
		return CompressionZSTD
	default:
		return CompressionNone
	}
}

// IsSupportedFile checks if the file has a supported extension
func IsSupportedFile(fileName string) bool {
	return DetectFileType(fileName) != FileTypeUnsupported
}
