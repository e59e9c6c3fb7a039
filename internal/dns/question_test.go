package dns

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuestionMarshal(t *testing.T) {
	q := Question{Name: "google.com", Type: TypeA, Class: ClassIN}
	b, err := q.Marshal()
	require.NoError(t, err)
	exp := []byte{
		6, 'g', 'o', 'o', 'g', 'l', 'e', 3, 'c', 'o', 'm', 0,
		0, 1, // type A
		0, 1, // class IN
	}
	assert.Equal(t, exp, b)
}

func TestQuestionRoundTrip(t *testing.T) {
	q := Question{Name: "www.example.org", Type: TypeAAAA, Class: ClassIN}
	b, err := q.Marshal()
	require.NoError(t, err)

	off := 0
	parsed, err := ParseQuestion(b, &off)
	require.NoError(t, err)
	assert.Equal(t, q, parsed)
	assert.Equal(t, len(b), off)
}

func TestQuestionMarshal_InvalidName(t *testing.T) {
	q := Question{Name: "bad..name", Type: TypeA, Class: ClassIN}
	_, err := q.Marshal()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestParseQuestion_TruncatedAfterName(t *testing.T) {
	b, err := EncodeName("example.com")
	require.NoError(t, err)
	b = append(b, 0, 1) // type only, class missing

	off := 0
	_, err = ParseQuestion(b, &off)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedResponse)
}
