package event

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// DefaultMaxAttachmentBytes matches the 5MB image limit of the web form.
const DefaultMaxAttachmentBytes = 5 * 1024 * 1024

var ErrAttachmentNotDataURI = errors.New("attachment must be a base64 data URI")
var ErrAttachmentTooLarge = errors.New("attachment is too large")

type Attachment struct {
	MediaType string
	Data      []byte
}

// ParseAttachment decodes a "data:<media type>;base64,<payload>" URI.
func ParseAttachment(uri string) (Attachment, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return Attachment{}, ErrAttachmentNotDataURI
	}
	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return Attachment{}, ErrAttachmentNotDataURI
	}
	mediaType, ok := strings.CutSuffix(header, ";base64")
	if !ok {
		return Attachment{}, ErrAttachmentNotDataURI
	}
	if mediaType == "" {
		mediaType = "text/plain;charset=US-ASCII"
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Attachment{}, fmt.Errorf("%w: %v", ErrAttachmentNotDataURI, err)
	}
	return Attachment{MediaType: mediaType, Data: data}, nil
}

// checkAttachment enforces the size limit on a non-empty attachment.
func checkAttachment(uri string, maxBytes int) error {
	if uri == "" {
		return nil
	}
	// base64 expands 3 bytes into 4, reject obviously oversized payloads before decoding
	if maxBytes > 0 && len(uri) > base64.StdEncoding.EncodedLen(maxBytes)+256 {
		return ErrAttachmentTooLarge
	}
	attachment, err := ParseAttachment(uri)
	if err != nil {
		return err
	}
	if maxBytes > 0 && len(attachment.Data) > maxBytes {
		return ErrAttachmentTooLarge
	}
	return nil
}
