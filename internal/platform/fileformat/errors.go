package fileformat

import "fmt"

// UnsupportedFormatError reports an extension with no codec, or a codec that
// cannot perform the requested operation.
type UnsupportedFormatError struct {
	Ext string
	Op  string
}

func (e *UnsupportedFormatError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("unsupported format %q for %s", e.Ext, e.Op)
	}
	return fmt.Sprintf("unsupported format %q", e.Ext)
}
