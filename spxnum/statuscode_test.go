package spxnum_test

import (
	"testing"

	"github.com/spxlog/spx-go/spxnum"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusCodeRoundTrip(t *testing.T) {
	names := spxnum.StatusCodeStrings()
	require.Len(t, names, 17)
	for _, s := range names {
		v, err := spxnum.StatusCodeString(s)
		assert.NoError(t, err, s)
		assert.Equal(t, s, v.String())
		assert.True(t, v.Valid())
	}
	assert.Equal(t, "OK", spxnum.StatusCodeOK.String())
	assert.Equal(t, "UNAUTHENTICATED", spxnum.StatusCodeUnauthenticated.String())
}

func TestStatusCodeInvalid(t *testing.T) {
	_, err := spxnum.StatusCodeString("NOT_A_CODE")
	assert.Error(t, err)
	assert.False(t, spxnum.StatusCode(-1).Valid())
	assert.False(t, (spxnum.MaxStatusCode + 1).Valid())
	assert.Equal(t, "UNKNOWN", spxnum.StatusCode(99).String())
}

func TestMessageEventTypeRoundTrip(t *testing.T) {
	for _, v := range []spxnum.MessageEventType{
		spxnum.MessageEventTypeUnspecified,
		spxnum.MessageEventTypeSent,
		spxnum.MessageEventTypeReceived,
	} {
		got, err := spxnum.MessageEventTypeString(v.String())
		assert.NoError(t, err)
		assert.Equal(t, v, got)
	}
	_, err := spxnum.MessageEventTypeString("sideways")
	assert.Error(t, err)
}

func TestLinkTypeRoundTrip(t *testing.T) {
	for _, v := range []spxnum.LinkType{
		spxnum.LinkTypeUnspecified,
		spxnum.LinkTypeChild,
		spxnum.LinkTypeParent,
	} {
		got, err := spxnum.LinkTypeString(v.String())
		assert.NoError(t, err)
		assert.Equal(t, v, got)
	}
	_, err := spxnum.LinkTypeString("sibling-of")
	assert.Error(t, err)
}

func TestSpanKindRoundTrip(t *testing.T) {
	for _, v := range []spxnum.SpanKind{
		spxnum.SpanKindUnspecified,
		spxnum.SpanKindServer,
		spxnum.SpanKindClient,
	} {
		got, err := spxnum.SpanKindString(v.String())
		assert.NoError(t, err)
		assert.Equal(t, v, got)
	}
	_, err := spxnum.SpanKindString("proxy")
	assert.Error(t, err)
}
