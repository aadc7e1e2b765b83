package signing

import (
	"encoding/base64"
	"fmt"
)

// DecodeSignature extracts the signature bytes and format from release
// metadata.
//
// Failure kinds are distinct: [ErrMissingSourceArchive] when the metadata has
// no source-archive resource, [ErrNotSigned] when the resource carries no
// signature, [ErrMissingSignatureFormat] and [ErrUnknownSignatureFormat] for
// format token problems, and [ErrMalformedSignature] when the payload is not
// valid base64. Only [ErrNotSigned] is routed to the unsigned-handling policy;
// the rest are terminal.
func DecodeSignature(meta *ReleaseMetadata) ([]byte, SignatureFormat, error) {
	archive := meta.SourceArchive()
	if archive == nil {
		return nil, "", ErrMissingSourceArchive
	}

	if archive.Signing == nil || archive.Signing.SignatureBase64Encoded == "" {
		return nil, "", ErrNotSigned
	}

	if archive.Signing.SignatureFormat == "" {
		return nil, "", ErrMissingSignatureFormat
	}
	format, err := ParseSignatureFormat(archive.Signing.SignatureFormat)
	if err != nil {
		return nil, "", err
	}

	signature, err := base64.StdEncoding.DecodeString(archive.Signing.SignatureBase64Encoded)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrMalformedSignature, err)
	}

	return signature, format, nil
}
