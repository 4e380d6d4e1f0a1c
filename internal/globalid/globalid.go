package globalid

import (
	"encoding/base64"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/2beens/blogql/internal/apperr"
)

const (
	TypeBlog    = "BlogNode"
	TypeComment = "CommentNode"
	TypeUser    = "AppUser"

	// TypeCursor is used for connection cursors, not for entities.
	TypeCursor = "arrayconnection"

	// MaxKey matches the INTEGER primary keys of the store.
	MaxKey = math.MaxInt32
)

// Codec maps (type name, internal key) pairs to opaque identifiers and back.
// Encode trusts its caller, Decode accepts only registered type names and
// keys in canonical decimal form. Entity keys start at 1, cursor positions at 0.
type Codec struct {
	types map[string]bool
}

func NewCodec(typeNames ...string) *Codec {
	types := make(map[string]bool, len(typeNames))
	for _, t := range typeNames {
		types[t] = true
	}
	return &Codec{types: types}
}

// Default knows every entity type exposed by the API, plus cursors.
func Default() *Codec {
	return NewCodec(TypeBlog, TypeComment, TypeUser, TypeCursor)
}

func (c *Codec) Encode(typeName string, key int) string {
	return base64.StdEncoding.EncodeToString(
		[]byte(typeName + ":" + strconv.Itoa(key)),
	)
}

func (c *Codec) Decode(id string) (string, int, error) {
	raw, err := base64.StdEncoding.DecodeString(id)
	if err != nil {
		return "", 0, fmt.Errorf("%w: not base64", apperr.ErrMalformedIdentifier)
	}

	typeName, keyStr, found := strings.Cut(string(raw), ":")
	if !found || typeName == "" {
		return "", 0, fmt.Errorf("%w: missing type", apperr.ErrMalformedIdentifier)
	}
	if !c.types[typeName] {
		return "", 0, fmt.Errorf("%w: unknown type %q", apperr.ErrMalformedIdentifier, typeName)
	}

	key64, err := strconv.ParseInt(keyStr, 10, 32)
	if err != nil {
		return "", 0, fmt.Errorf("%w: invalid key", apperr.ErrMalformedIdentifier)
	}
	key := int(key64)
	if strconv.Itoa(key) != keyStr {
		return "", 0, fmt.Errorf("%w: non canonical key %q", apperr.ErrMalformedIdentifier, keyStr)
	}

	minKey := 1
	if typeName == TypeCursor {
		minKey = 0
	}
	if key < minKey {
		return "", 0, fmt.Errorf("%w: key %d out of range", apperr.ErrMalformedIdentifier, key)
	}

	return typeName, key, nil
}

// DecodeAs decodes id and checks that it addresses an entity of expectedType.
func (c *Codec) DecodeAs(id, expectedType string) (int, error) {
	typeName, key, err := c.Decode(id)
	if err != nil {
		return 0, err
	}
	if typeName != expectedType {
		return 0, fmt.Errorf("%w: expected %s, got %s", apperr.ErrMalformedIdentifier, expectedType, typeName)
	}
	return key, nil
}
