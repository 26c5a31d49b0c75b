package sdk

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/plumeapp/plume-go/support/networking"
)

type headerMapper struct {
	timestamp int64
}

// makeHeaderMappingsFromNewTimestamp creates a new headerMapper so the timestamp can be consistent across HeaderFns and returns the required map
func makeHeaderMappingsFromNewTimestamp() map[string]networking.HeaderFnFactory {
	m := &headerMapper{
		timestamp: time.Now().Unix(),
	}

	return map[string]networking.HeaderFnFactory{
		"PLUME__X-PLUME-SIGNATURE": networking.HeaderFnFactory(m.signFn),
		"TIMESTAMP":                networking.HeaderFnFactory(m.timestampFn),
	}
}

func (m *headerMapper) signFn(base64EncodedSigningKey string) (networking.HeaderFn, error) {
	base64DecodedSigningKey, e := base64.StdEncoding.DecodeString(base64EncodedSigningKey)
	if e != nil {
		return nil, fmt.Errorf("could not decode signing key (%s): %s", base64EncodedSigningKey, e)
	}

	// return this inline method casted as a HeaderFn to work as a headerValue
	return networking.HeaderFn(func(method string, requestPath string, body string) string {
		uppercaseMethod := strings.ToUpper(method)
		payload := fmt.Sprintf("%d%s%s%s", m.timestamp, uppercaseMethod, requestPath, body)

		// sign
		mac := hmac.New(sha256.New, base64DecodedSigningKey)
		mac.Write([]byte(payload))
		signature := mac.Sum(nil)
		base64EncodedSignature := base64.StdEncoding.EncodeToString(signature)

		return base64EncodedSignature
	}), nil
}

func (m *headerMapper) timestampFn(_ string) (networking.HeaderFn, error) {
	return networking.HeaderFn(func(method string, requestPath string, body string) string {
		return strconv.FormatInt(m.timestamp, 10)
	}), nil
}

// InstallConfiguredHeaders parses header values in HeaderFn syntax (see
// networking.MakeHeaderFn) and registers them on the passed in client. This is
// how headers listed in the CLI config file end up on every request.
func InstallConfiguredHeaders(client *networking.Client, headers map[string]string) error {
	mappings := makeHeaderMappingsFromNewTimestamp()
	for header, value := range headers {
		headerFn, e := networking.MakeHeaderFn(value, mappings)
		if e != nil {
			return fmt.Errorf("unable to make header function with key (%s) and value (%s): %s", header, value, e)
		}
		client.SetHeaderFn(header, headerFn)
	}
	return nil
}
