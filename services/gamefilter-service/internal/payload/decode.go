// Package payload holds the HTTP request and response bodies and decodes
// requests sent either as JSON or as forms.
package payload

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"net/url"

	"github.com/go-playground/form/v4"
)

const maxMultipartMemory = 1 << 20

var ErrEmptyBody = errors.New("request body is empty")

// formDecoder reads form fields by their json names so one struct serves
// both encodings. It is safe for concurrent use.
var formDecoder = newFormDecoder()

func newFormDecoder() *form.Decoder {
	d := form.NewDecoder()
	d.SetTagName("json")
	d.RegisterCustomTypeFunc(func(vals []string) (any, error) {
		return StringList(append([]string(nil), vals...)), nil
	}, StringList(nil))
	return d
}

// Decode fills dst, a pointer to a struct, from the request body. JSON bodies
// are buffered and put back so later stages can decode them again. Form
// fields are matched by json tag; net/http keeps parsed forms, so form
// bodies can be decoded again as well.
func Decode(r *http.Request, dst any) error {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	switch mediaType {
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return err
		}
		return formDecoder.Decode(dst, r.PostForm)
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			return err
		}
		return formDecoder.Decode(dst, url.Values(r.MultipartForm.Value))
	default:
		return decodeJSON(r, dst)
	}
}

func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return ErrEmptyBody
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}
	_ = r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(body))

	if len(bytes.TrimSpace(body)) == 0 {
		return ErrEmptyBody
	}

	return json.Unmarshal(body, dst)
}
