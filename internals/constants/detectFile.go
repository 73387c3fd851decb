package constants

import (
	"path/filepath"
	"strings"
)

// Format file import kurikulum
type ImportFormat int

const (
	ImportUnknown ImportFormat = iota
	ImportXLSX
	ImportXLS // Excel 97-2003, tidak didukung excelize
	ImportCSV
)

func DetectImportFormat(filename string) ImportFormat {
	ext := strings.ToLower(filepath.Ext(strings.TrimSpace(filename)))

	switch ext {
	case ".xlsx", ".xlsm":
		return ImportXLSX
	case ".xls":
		return ImportXLS
	case ".csv":
		return ImportCSV
	default:
		return ImportUnknown
	}
}
