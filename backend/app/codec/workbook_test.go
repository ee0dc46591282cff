package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	sheets := map[string][]Row{
		SheetStructures: {
			{"id": "s1", "name": "roadmap", "title": "Roadmap", "description": "q3 plan", "ownerId": "u1", "visibility": "private", "imageUrl": "", "markmapShowWbs": "true", "createdAt": "2026-01-02T10:00:00Z", "updatedAt": "2026-01-02T10:00:00Z"},
		},
		SheetElements: {
			{"id": "e1", "name": "root", "structureId": "s1", "parentId": "", "recordId": "", "elementLinkId": "", "orderIndex": "0"},
			{"id": "e2", "name": "child", "structureId": "s1", "parentId": "e1", "recordId": "r1", "elementLinkId": "e1", "orderIndex": "1"},
		},
		SheetRecords: {
			{"id": "r1", "metadata": `{"k":"v"}`, "tags": `[]`},
		},
		SheetStructureMaps: {
			{"id": "m1", "structureId": "s1", "name": "wbs", "description": ""},
		},
	}

	data, err := EncodeWorkbook(sheets)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	back, err := DecodeWorkbook(data)
	require.NoError(t, err)

	require.Len(t, back[SheetStructures], 1)
	assert.Equal(t, "s1", back[SheetStructures][0]["id"])
	assert.Equal(t, "true", back[SheetStructures][0]["markmapShowWbs"])

	require.Len(t, back[SheetElements], 2)
	assert.Equal(t, "e1", back[SheetElements][1]["parentId"])
	assert.Equal(t, "e1", back[SheetElements][1]["elementLinkId"])
	assert.Equal(t, "", back[SheetElements][0]["parentId"])

	require.Len(t, back[SheetRecords], 1)
	assert.Equal(t, `{"k":"v"}`, back[SheetRecords][0]["metadata"])

	require.Len(t, back[SheetStructureMaps], 1)
	assert.Equal(t, "s1", back[SheetStructureMaps][0]["structureId"])
}

func TestDecodeMissingSheetIsEmpty(t *testing.T) {
	data, err := EncodeWorkbook(map[string][]Row{
		SheetStructures: {{"id": "s1", "name": "solo"}},
	})
	require.NoError(t, err)

	back, err := DecodeWorkbook(data)
	require.NoError(t, err)

	assert.Len(t, back[SheetStructures], 1)
	assert.Empty(t, back[SheetElements])
	assert.Empty(t, back[SheetRecords])
	assert.Empty(t, back[SheetStructureMaps])
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := DecodeWorkbook([]byte("definitely not a workbook"))
	assert.Error(t, err)
}
