package constants

import "testing"

func TestDetectImportFormat(t *testing.T) {
	cases := map[string]ImportFormat{
		"kurikulum.xlsx": ImportXLSX,
		"Physics.XLSX":   ImportXLSX,
		"macro.xlsm":     ImportXLSX,
		"old.xls":        ImportXLS,
		"rows.csv":       ImportCSV,
		"notes.pdf":      ImportUnknown,
		"no-extension":   ImportUnknown,
		" spaced.xlsx ":  ImportXLSX,
	}
	for name, want := range cases {
		if got := DetectImportFormat(name); got != want {
			t.Errorf("DetectImportFormat(%q) = %d, want %d", name, got, want)
		}
	}
}
