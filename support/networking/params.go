package networking

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/google/go-querystring/query"
)

// EncodeParams appends the url-encoded form of params to the passed in path.
// params can be nil (no-op), a map[string]string, or a struct tagged with
// `url:"..."` tags as understood by the go-querystring package.
func EncodeParams(path string, params interface{}) (string, error) {
	if params == nil {
		return path, nil
	}

	var values url.Values
	switch p := params.(type) {
	case map[string]string:
		values = url.Values{}
		for k, v := range p {
			values.Set(k, v)
		}
	case url.Values:
		values = p
	default:
		v, e := query.Values(params)
		if e != nil {
			return "", fmt.Errorf("could not encode url params: %s", e)
		}
		values = v
	}

	encoded := values.Encode()
	if encoded == "" {
		return path, nil
	}

	separator := "?"
	if strings.Contains(path, "?") {
		separator = "&"
	}
	return path + separator + encoded, nil
}
