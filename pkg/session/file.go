package session

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"

	nerrors "github.com/matzehuels/nodegraph/pkg/errors"
)

// Sentinel errors for document decoding.
var (
	// ErrDuplicateKey is returned when the nodes object repeats an id.
	ErrDuplicateKey = errors.New("duplicate node id key")

	// ErrEndpointArity is returned when a connection endpoint is not a
	// two-element [id, port] array.
	ErrEndpointArity = errors.New("endpoint must be [node_id, port]")

	// ErrMissingEndpoint is returned when a connection lacks "out" or "in".
	ErrMissingEndpoint = errors.New("connection needs both out and in")
)

// validate is a singleton validator instance.
var validate = validator.New()

// Parse decodes and validates a session document held in memory.
func Parse(data []byte) (*Document, error) {
	return ReadJSON(bytes.NewReader(data))
}

// ReadJSON decodes a session document from r and validates it.
//
// ReadJSON returns an INVALID_DOCUMENT error if:
//   - The JSON is malformed
//   - The nodes object is missing, repeats an id, or has a record without a name
//   - A connection lacks an endpoint, or an endpoint is not a two-element array
//
// Ids referenced by connections are not checked here; that is the identity
// resolver's job. ReadJSON does not close r.
func ReadJSON(r io.Reader) (*Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, nerrors.Wrap(nerrors.ErrCodeInvalidDocument, err, "decode session")
	}
	if err := Validate(&doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// ImportJSON reads the session document at path.
//
// A missing file yields a FILE_NOT_FOUND error; decoding failures are the
// same as for [ReadJSON] with the path added for context.
func ImportJSON(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nerrors.Wrap(nerrors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	doc, err := ReadJSON(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Validate checks struct-level constraints of a decoded document.
func Validate(doc *Document) error {
	if doc == nil {
		return nerrors.New(nerrors.ErrCodeInvalidDocument, "document is nil")
	}
	if err := validate.Struct(doc); err != nil {
		return formatValidationError(doc, err)
	}
	return nil
}

func formatValidationError(doc *Document, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nerrors.Wrap(nerrors.ErrCodeInvalidDocument, err, "validate session")
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describeField(doc, fe))
	}
	return nerrors.New(nerrors.ErrCodeInvalidDocument, "%s", strings.Join(msgs, "; "))
}

// describeField turns a validator error into a message that names the
// offending node id rather than a slice index.
func describeField(doc *Document, fe validator.FieldError) string {
	ns := fe.StructNamespace()
	var idx int
	if _, err := fmt.Sscanf(ns, "Document.Nodes[%d]", &idx); err == nil && idx < len(doc.Nodes) {
		return fmt.Sprintf("node %s: %s is %s", doc.Nodes[idx].ID, strings.ToLower(fe.Field()), fe.Tag())
	}
	return fmt.Sprintf("%s: %s", strings.ToLower(fe.Field()), fe.Tag())
}
