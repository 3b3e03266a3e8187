// Package download streams files attached to catalog records: resources
// hosted on the Isogeo platform and the ISO 19139 XML export of a metadata
// record.
package download

import (
	"context"
	"fmt"
	"io"
	"math"
	"mime"
	"net/http"
	"regexp"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/isogeo/isogeo-sdk-go/catalog"
	"github.com/isogeo/isogeo-sdk-go/session"
)

// HostedFile is an open download of a hosted resource. The caller owns Body
// and must close it.
type HostedFile struct {
	// Body streams the file content.
	Body io.ReadCloser
	// Filename is resolved from the Content-Disposition header, falling back
	// to the link title. MIME encoded-words are decoded and characters unsafe
	// for filesystems stripped.
	Filename string
	// Size is the declared size in bytes; -1 when unknown.
	Size int64
	// HumanSize is the declared size in readable form, e.g. "2.1 Mo".
	HumanSize string
}

// Hosted downloads a resource stored on the Isogeo platform. The link must be
// of type "hosted", as found in a metadata record's links subresource.
func Hosted(ctx context.Context, s *session.Session, link catalog.Link) (*HostedFile, error) {
	if link.Type != "hosted" {
		return nil, errors.Newf("download: link %q is not hosted (type %q)", link.ID, link.Type)
	}
	if link.URL == "" {
		return nil, errors.Newf("download: link %q carries no URL", link.ID)
	}

	resp, err := s.Request(ctx, http.MethodGet, link.URL)
	if err != nil {
		return nil, err
	}
	if err := session.CheckResponse(resp); err != nil {
		return nil, err
	}

	filename := filenameFromDisposition(resp.Header.Get("Content-Disposition"))
	if filename == "" {
		filename = link.Title
	}
	filename = cleanFilename(filename)

	size := link.Size
	if size <= 0 {
		size = resp.ContentLength
	}

	return &HostedFile{
		Body:      resp.Body,
		Filename:  filename,
		Size:      size,
		HumanSize: HumanSize(size),
	}, nil
}

// XML19139 streams the ISO 19139 XML export of a metadata record. mdID must
// be a valid UUID, with or without hyphens.
func XML19139(ctx context.Context, s *session.Session, mdID string) (io.ReadCloser, error) {
	if _, err := uuid.Parse(mdID); err != nil {
		return nil, errors.Wrapf(err, "download: metadata ID %q is not a valid UUID", mdID)
	}

	resp, err := s.Request(ctx, http.MethodGet, "/resources/"+mdID+".xml")
	if err != nil {
		return nil, err
	}
	if err := session.CheckResponse(resp); err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// filenameFromDisposition extracts the filename of a Content-Disposition
// header, decoding RFC 2047 encoded-words some hosted files carry.
func filenameFromDisposition(disposition string) string {
	if disposition == "" {
		return ""
	}

	if _, params, err := mime.ParseMediaType(disposition); err == nil {
		if name := params["filename"]; name != "" {
			return decodeEncodedWords(name)
		}
	}

	// Malformed headers seen in the wild: fall back to a raw cut.
	if _, after, found := strings.Cut(disposition, "filename="); found {
		return decodeEncodedWords(strings.Trim(after, `"`))
	}
	return ""
}

func decodeEncodedWords(name string) string {
	decoder := mime.WordDecoder{}
	decoded, err := decoder.DecodeHeader(name)
	if err != nil {
		return name
	}
	return decoded
}

// unsafeFilenameChars matches everything outside letters, digits, hyphens,
// underscores, dots and spaces.
var unsafeFilenameChars = regexp.MustCompile(`[^\p{L}\p{N}_\-. ]`)

func cleanFilename(name string) string {
	return unsafeFilenameChars.ReplaceAllString(name, "")
}

var sizeUnits = []string{"octets", "Ko", "Mo", "Go", "To", "Po"}

// HumanSize renders a byte count the way the Isogeo web applications do.
func HumanSize(size int64) string {
	if size < 0 {
		return "unknown"
	}
	if size == 0 {
		return "0 octet"
	}

	i := int(math.Floor(math.Log(float64(size)) / math.Log(1024)))
	if i >= len(sizeUnits) {
		i = len(sizeUnits) - 1
	}
	value := float64(size) / math.Pow(1024, float64(i))
	value = math.Round(value*100) / 100
	return fmt.Sprintf("%g %s", value, sizeUnits[i])
}
