package pdf

import (
	"bytes"
	"fmt"

	pdfreader "github.com/ledongthuc/pdf"
)

// DocumentInfo summarizes rendered output.
type DocumentInfo struct {
	Pages int
	Size  int64
}

// Inspect reads the page count of a rendered PDF.
func Inspect(data []byte) (info DocumentInfo, err error) {
	if len(data) == 0 {
		return DocumentInfo{}, NewError(KindValidation, "pdf data is empty", nil)
	}
	defer func() {
		if r := recover(); r != nil {
			err = NewError(KindValidation, "malformed pdf", fmt.Errorf("%v", r))
		}
	}()

	reader, err := pdfreader.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return DocumentInfo{}, NewError(KindValidation, "malformed pdf", err)
	}
	return DocumentInfo{Pages: reader.NumPage(), Size: int64(len(data))}, nil
}
