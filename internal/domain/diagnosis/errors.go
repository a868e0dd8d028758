package diagnosis

import (
	"errors"
)

// ErrorKind tags an Error so the transport layer can pick a status code
// without inspecting message text.
type ErrorKind string

const (
	KindValidation  ErrorKind = "validation"
	KindDownload    ErrorKind = "download"
	KindUnsupported ErrorKind = "unsupported"
	KindPermission  ErrorKind = "permission"
	KindDocument    ErrorKind = "document"
	KindDecode      ErrorKind = "decode"
	KindRemoteModel ErrorKind = "remote_model"
	KindInternal    ErrorKind = "internal"
)

// User-facing messages yang dipakai lebih dari satu tempat
const (
	MsgNoURL          = "No URL provided"
	MsgDownloadFailed = "Failed to download file"
	MsgNoFile         = "No file provided"
	MsgNoFileReceived = "No file received"
	MsgPermissionPage = "Google Drive returned an HTML page instead of the actual file. Check the file permissions."
	MsgUnsupported    = "Unknown or unsupported file type."
	MsgNoPages        = "PDF has no pages"
)

// Error is the single error type of the analysis pipeline.
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Msg == "" && e.Err != nil:
		return e.Err.Error()
	case e.Err == nil:
		return e.Msg
	default:
		return e.Msg + ": " + e.Err.Error()
	}
}

func (e *Error) Unwrap() error { return e.Err }

// E builds an *Error. err may be nil.
func E(kind ErrorKind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or
// KindInternal when there is none.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// PublicMessage is the text shown to API callers. Download failures keep a
// fixed message; the cause only goes to the log.
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind == KindDownload {
		return MsgDownloadFailed
	}
	return err.Error()
}
