package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMaterialTypeAcceptsBothVocabularies(t *testing.T) {
	cases := map[string]MaterialType{
		"summary":     MaterialTypeSummary,
		"application": MaterialTypeApplication,
		"요약":          MaterialTypeSummary,
		"적용":          MaterialTypeApplication,
		" summary ":   MaterialTypeSummary,
	}
	for input, want := range cases {
		got, err := ParseMaterialType(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}
}

func TestParseMaterialTypeRejectsUnknown(t *testing.T) {
	for _, input := range []string{"", "sumary", "요약본", "SUMMARY"} {
		_, err := ParseMaterialType(input)
		assert.True(t, errors.Is(err, ErrUnknownMaterialType), input)
	}
}

func TestMaterialTypeRoundTrip(t *testing.T) {
	for _, mt := range []MaterialType{MaterialTypeSummary, MaterialTypeApplication} {
		label, err := mt.StorageLabel()
		require.NoError(t, err)
		back, err := MaterialTypeFromStorage(label)
		require.NoError(t, err)
		assert.Equal(t, mt, back)

		assert.Equal(t, string(mt), FromStorage(ToStorage(string(mt))))
	}
}

func TestPermissiveMappingPassesUnknownThrough(t *testing.T) {
	for _, input := range []string{"memo", "", "요약본"} {
		assert.Equal(t, input, ToStorage(input))
		assert.Equal(t, input, FromStorage(input))
	}
	assert.Equal(t, "요약", ToStorage("summary"))
	assert.Equal(t, "요약", ToStorage("요약"))
	assert.Equal(t, "application", FromStorage("적용"))
	assert.Equal(t, "application", FromStorage("application"))
}

func TestMaterialTypeValueAndScan(t *testing.T) {
	v, err := MaterialTypeSummary.Value()
	require.NoError(t, err)
	assert.Equal(t, "요약", v)

	_, err = MaterialType("memo").Value()
	assert.ErrorIs(t, err, ErrUnknownMaterialType)

	var mt MaterialType
	require.NoError(t, mt.Scan([]byte("적용")))
	assert.Equal(t, MaterialTypeApplication, mt)

	require.NoError(t, mt.Scan("memo"))
	assert.Equal(t, MaterialType("memo"), mt)

	assert.Error(t, mt.Scan(42))
}
