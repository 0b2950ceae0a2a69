/*
document.go - File attachment encoding and limits

PURPOSE:
  Applications may carry supporting documents (medical certificates, birth
  certificates). Files travel base64-encoded inside the envelope's data
  block, with the data-URL prefix stripped. This file enforces the two
  hard limits: 10 MB per file and a fixed MIME allowlist.
*/
package envelope

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/warp/absence-engine/entity"
)

// MaxDocumentSize is the per-file limit in bytes.
const MaxDocumentSize = 10 << 20 // 10 MB

var (
	// ErrDocumentTooLarge is returned for files over MaxDocumentSize.
	ErrDocumentTooLarge = errors.New("document exceeds size limit")

	// ErrUnsupportedDocumentType is returned for MIME types outside the
	// allowlist.
	ErrUnsupportedDocumentType = errors.New("unsupported document type")
)

// allowedMIME is the fixed set of accepted attachment types.
var allowedMIME = map[string]bool{
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"text/plain": true,
}

// NewAttachment validates and encodes raw file bytes into an attachment.
func NewAttachment(fileName, mimeType string, data []byte) (entity.Attachment, error) {
	if !allowedMIME[mimeType] {
		return entity.Attachment{}, fmt.Errorf("%w: %s", ErrUnsupportedDocumentType, mimeType)
	}
	if int64(len(data)) > MaxDocumentSize {
		return entity.Attachment{}, fmt.Errorf("%w: %s is %d bytes", ErrDocumentTooLarge, fileName, len(data))
	}
	return entity.Attachment{
		FileName:   fileName,
		FileSize:   int64(len(data)),
		FileType:   mimeType,
		Base64Data: base64.StdEncoding.EncodeToString(data),
	}, nil
}

// AttachmentFromDataURL validates an already-encoded upload. The accepted
// input is either a bare base64 string or a data URL
// (data:<mime>;base64,<payload>); the prefix is stripped before submission.
func AttachmentFromDataURL(fileName, mimeType, encoded string) (entity.Attachment, error) {
	if !allowedMIME[mimeType] {
		return entity.Attachment{}, fmt.Errorf("%w: %s", ErrUnsupportedDocumentType, mimeType)
	}

	payload := encoded
	if strings.HasPrefix(encoded, "data:") {
		_, rest, ok := strings.Cut(encoded, ",")
		if !ok {
			return entity.Attachment{}, fmt.Errorf("%w: malformed data URL for %s", ErrUnsupportedDocumentType, fileName)
		}
		payload = rest
	}

	size, err := decodedSize(payload)
	if err != nil {
		return entity.Attachment{}, fmt.Errorf("%w: malformed base64 payload for %s", ErrUnsupportedDocumentType, fileName)
	}
	if size > MaxDocumentSize {
		return entity.Attachment{}, fmt.Errorf("%w: %s is %d bytes", ErrDocumentTooLarge, fileName, size)
	}

	return entity.Attachment{
		FileName:   fileName,
		FileSize:   size,
		FileType:   mimeType,
		Base64Data: payload,
	}, nil
}

// decodedSize computes the byte size of a base64 payload without decoding.
// Standard encoding only: the length must be a multiple of four and padding
// can never exceed the final quantum.
func decodedSize(payload string) (int64, error) {
	n := int64(len(payload))
	if n == 0 {
		return 0, nil
	}
	if n%4 != 0 {
		return 0, errors.New("base64 payload length is not a multiple of 4")
	}
	padding := int64(strings.Count(payload[len(payload)-2:], "="))
	size := n/4*3 - padding
	if size <= 0 {
		return 0, errors.New("base64 payload is all padding")
	}
	return size, nil
}
