package chpp

import (
	"errors"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/htstatus/chpp-client/internal/provider"
)

// ParseEnvelope parses a CHPP response body and checks it for an embedded
// error. CHPP reports application failures inside a normal 200 response, so
// every body goes through here before a domain parser sees it.
//
// A non-empty <ErrorCode> anywhere in the document yields an *APIError.
// Bodies that are not well-formed XML yield an *AuthError.
func ParseEnvelope(body []byte) (*etree.Element, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(body); err != nil {
		return nil, authErr("parse xml", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, authErr("parse xml", errors.New("document has no root element"))
	}

	for _, el := range root.FindElements(".//ErrorCode") {
		code := strings.TrimSpace(el.Text())
		if code == "" {
			continue
		}
		n, err := strconv.Atoi(code)
		if err != nil {
			n = 0
		}
		// The message sits next to the code that fired.
		return nil, &APIError{
			Code:    n,
			Message: provider.Text(el.Parent(), "Error", unknownError),
		}
	}
	return root, nil
}
